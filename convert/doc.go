// Package convert turns host identifiers and call contexts into the ABI
// records of the contract and service namespaces.
//
// # Conversions
//
//	HashValue        host.HashValue   -> contract/service HashValue   total
//	ChainID          host.ChainID     -> contract/service ChainID     total
//	ApplicationID    host.ApplicationID -> contract.ApplicationID     fallible
//	EffectID         host.EffectID    -> contract.EffectID            fallible
//	SessionID        host.SessionID   -> contract.SessionID           fallible
//	OperationContext                  -> contract.OperationContext    fallible
//	EffectContext                     -> contract.EffectContext       fallible
//	CalleeContext                     -> contract.CalleeContext       fallible
//	QueryContext                      -> service.QueryContext         total
//
// Hash and chain id conversions are generic over abi.HashShape, so one
// implementation serves both namespaces:
//
//	cid := convert.ChainID[contract.ChainID](hostChain)
//	sid := convert.ChainID[service.ChainID](hostChain)
//
// # Errors
//
// Host indices are wider than the guest's u64. A conversion fails with an
// error matching errors.ErrIndexOverflow when an index does not fit; the path
// of the error names the offending field:
//
//	[convert] index_overflow at callee-context.authenticated-caller-id.user.creation.index
//
// No conversion panics on any input.
//
// # Thread Safety
//
// All conversions are pure functions and safe for concurrent use.
package convert
