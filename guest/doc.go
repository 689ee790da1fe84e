// Package guest prepares and issues host-to-guest calls against an
// instantiated wazero module.
//
// A Contract or Service binds one module instance. Binding checks that the
// module has linear memory, a cabi_realloc allocator and every export of its
// namespace; all absent names are reported together in a
// *errors.MissingExportError.
//
// Each call converts the host records (package convert), lowers them
// (package lower) and invokes the export:
//
//	host record --convert--> ABI record --lower--> core values --Call--> guest
//
// A conversion failure is returned as a "prepare" phase error wrapping the
// conversion error, so errors.Is(err, errors.ErrIndexOverflow) still holds.
// The guest is not invoked in that case and nothing is allocated. A lowering
// failure frees whatever was already allocated. A guest trap is returned as a
// "runtime" phase error.
//
// Results are returned as raw core values; lifting them is up to the caller.
package guest
