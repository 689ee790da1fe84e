// Package host defines the execution engine's identifiers and call contexts as
// they exist before crossing into a guest module.
//
// The types are plain values: the engine builds them right before a guest call
// and hands them to the convert package, which never mutates them.
//
// Indices (operation, effect and session positions) use the engine's wide
// integer type, uint256.Int. Guests only see u64, so every index is checked
// when it is converted.
package host
