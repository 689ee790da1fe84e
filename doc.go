// Package chainabi converts a blockchain execution engine's call contexts and
// identifiers into the ABI records a WebAssembly guest expects, and lowers
// those records across the host/guest boundary.
//
// # Architecture Overview
//
//	chainabi/            Root package with the guest Memory and Allocator interfaces
//	├── host/            Engine-side identifiers and call contexts
//	├── abi/             Shared hash layout, WIT schema helpers, export descriptions
//	│   ├── contract/    ABI records of state-mutating entry points
//	│   └── service/     ABI records of read-only entry points
//	├── convert/         host -> ABI record conversions
//	├── lower/           ABI records -> canonical ABI core values and guest memory
//	├── guest/           Call preparation against an instantiated wazero module
//	├── errors/          Structured error types
//	└── cmd/abidump/     Prints converted records and their lowering
//
// Data flows one way:
//
//	host.OperationContext
//	  -> convert.OperationContext   (index narrowing, hash splitting)
//	  -> contract.OperationContext
//	  -> lower.Lowerer.Params        (flat i64/i32 values, or a pointer to guest memory)
//	  -> guest export
//
// # Quick Start
//
//	c, err := guest.NewContract(mod) // mod is an instantiated api.Module
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results, err := c.ExecuteOperation(ctx, host.OperationContext{
//	    ChainID: host.NewChainID([]byte("genesis")),
//	    Height:  10,
//	    Index:   host.NewIndex(0),
//	}, operationBytes)
//
// A host index that does not fit the guest's u64 fails the call before the
// guest runs; the error matches errors.ErrIndexOverflow.
//
// # Thread Safety
//
// Conversions and schemas are safe for concurrent use. Lowerer, Scratch and
// guest.Contract/Service are bound to one call or one module instance and
// are NOT thread-safe.
package chainabi
