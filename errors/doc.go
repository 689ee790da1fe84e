// Package errors provides structured error types for host-to-guest call preparation.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/WIT type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindTypeMismatch).
//		Path("callee-context", "chain-id").
//		GoType("string").
//		WitType("hash-value").
//		Detail("expected a record").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.IndexOverflow([]string{"effect-id", "index"}, idx)
//	err := errors.OutOfBounds(errors.PhaseLower, path, 65536, 8)
//
// Index narrowing failures match ErrIndexOverflow:
//
//	if errors.Is(err, errors.ErrIndexOverflow) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
