package host

import "github.com/holiman/uint256"

// OperationContext locates an operation in a chain's history.
type OperationContext struct {
	ChainID ChainID
	Height  BlockHeight
	Index   uint256.Int
}

// EffectContext locates where an effect is being executed and which effect it is.
type EffectContext struct {
	ChainID  ChainID
	Height   BlockHeight
	EffectID EffectID
}

// CalleeContext describes a cross-application call.
// AuthenticatedCallerID is nil when the caller is not authenticated.
type CalleeContext struct {
	ChainID               ChainID
	AuthenticatedCallerID *ApplicationID
}

// QueryContext is the context of a read-only service query.
type QueryContext struct {
	ChainID ChainID
}
