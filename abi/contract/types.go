// Package contract holds the ABI records of the contract interface: the
// vocabulary of state-mutating guest entry points.
//
// Field order follows the WIT schema in schema.go; the lower package relies
// on it.
package contract

// HashValue is a 64-byte hash split into eight little-endian words.
type HashValue struct {
	Part1, Part2, Part3, Part4, Part5, Part6, Part7, Part8 uint64
}

// ChainID is `type chain-id = hash-value`.
type ChainID = HashValue

// BytecodeID is `type bytecode-id = hash-value`.
type BytecodeID = HashValue

type EffectID struct {
	ChainID ChainID
	Height  uint64
	Index   uint64
}

type UserApplicationID struct {
	Bytecode BytecodeID
	Creation EffectID
}

// ApplicationIDTag is the discriminant of ApplicationID.
type ApplicationIDTag uint8

const (
	ApplicationIDSystem ApplicationIDTag = iota
	ApplicationIDUser
)

// ApplicationID is `variant application-id { system, user(user-application-id) }`.
// Exactly one case pointer is non-nil; use the constructors.
type ApplicationID struct {
	System *struct{}
	User   *UserApplicationID
}

// NewSystemApplicationID returns the system case.
func NewSystemApplicationID() ApplicationID {
	return ApplicationID{System: &struct{}{}}
}

// NewUserApplicationID returns the user case carrying u.
func NewUserApplicationID(u UserApplicationID) ApplicationID {
	return ApplicationID{User: &u}
}

// Tag returns the active case.
func (a ApplicationID) Tag() ApplicationIDTag {
	if a.User != nil {
		return ApplicationIDUser
	}
	return ApplicationIDSystem
}

type SessionID struct {
	ApplicationID ApplicationID
	Kind          uint64
	Index         uint64
}

type OperationContext struct {
	ChainID ChainID
	Height  uint64
	Index   uint64
}

type EffectContext struct {
	ChainID  ChainID
	Height   uint64
	EffectID EffectID
}

// CalleeContext carries `option<application-id>` as a nil-able pointer.
type CalleeContext struct {
	ChainID               ChainID
	AuthenticatedCallerID *ApplicationID
}
