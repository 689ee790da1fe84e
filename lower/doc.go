// Package lower implements the Canonical ABI "lower" direction for ABI
// records: Go values of the contract and service namespaces become core wasm
// values, or bytes in guest linear memory, exactly as the guest's generated
// bindings expect them.
//
// # Flattening
//
// Records flatten to the concatenation of their fields, variants to an i32
// discriminant followed by the joined payload of all cases, options to an i32
// discriminant followed by the payload, lists to (ptr, len):
//
//	operation-context            -> 10 x i64
//	option<application-id>       -> i32, i32, 18 x i64
//	list<u8>                     -> i32, i32
//
// # Memory
//
// Values that do not fit the flat limit (MaxFlatParams = 16) and list
// elements are stored in guest memory using the canonical size and alignment:
//
//	Type            Size    Alignment
//	──────────────────────────────────
//	u8/bool         1       1
//	u16             2       2
//	u32             4       4
//	u64             8       8
//	list<T>         8       4 (ptr + len)
//	record          sum     max field align
//	variant         varies  max(disc, case align)
//	option<T>       1+size  max(1, T align)
//
// # Ownership
//
// Allocations go through the guest's allocator (cabi_realloc). If the call is
// abandoned, Lowerer.Discard frees them; once the guest has been invoked it
// owns them and Lowerer.Commit only stops tracking.
//
// # Thread Safety
//
// FlattenType is safe for concurrent use. Lowerer, Calculator and Scratch are
// NOT thread-safe; use one per call.
package lower
