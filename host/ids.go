package host

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ChainID identifies a chain.
type ChainID struct {
	Hash HashValue
}

// NewChainID derives a chain id from an arbitrary seed, e.g. a genesis description.
func NewChainID(seed []byte) ChainID {
	return ChainID{Hash: NewHashValue(seed)}
}

func (c ChainID) String() string {
	return c.Hash.String()
}

// BlockHeight is the height of a block within its chain.
type BlockHeight uint64

// NewIndex returns a host index holding v.
//
// Indices are kept in the engine's wide representation; narrowing to the
// guest's u64 is checked at conversion time.
func NewIndex(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// BytecodeID identifies published application bytecode.
type BytecodeID struct {
	Hash HashValue
}

// EffectID identifies an effect produced at a given position of a chain.
type EffectID struct {
	ChainID ChainID
	Height  BlockHeight
	Index   uint256.Int
}

// UserApplicationID is the payload of a user application id.
type UserApplicationID struct {
	Bytecode BytecodeID
	Creation EffectID
}

// ApplicationID is either the system application or a user application.
// The zero value is the system application.
type ApplicationID struct {
	user *UserApplicationID
}

// SystemApplication returns the system application id.
func SystemApplication() ApplicationID {
	return ApplicationID{}
}

// UserApplication returns a user application id carrying u.
func UserApplication(u UserApplicationID) ApplicationID {
	return ApplicationID{user: &u}
}

// IsSystem reports whether id is the system application.
func (id ApplicationID) IsSystem() bool {
	return id.user == nil
}

// User returns the user payload, or false for the system application.
func (id ApplicationID) User() (UserApplicationID, bool) {
	if id.user == nil {
		return UserApplicationID{}, false
	}
	return *id.user, true
}

func (id ApplicationID) String() string {
	return MatchApplicationID(id,
		func() string { return "system" },
		func(u UserApplicationID) string {
			return fmt.Sprintf("user(%s, %s:%d:%s)", u.Bytecode.Hash, u.Creation.ChainID, u.Creation.Height, u.Creation.Index.Dec())
		},
	)
}

// MatchApplicationID calls exactly one of the callbacks depending on the
// variant of id. Every variant has its own callback parameter, so a new
// variant breaks all call sites until they handle it.
func MatchApplicationID[R any](id ApplicationID, onSystem func() R, onUser func(UserApplicationID) R) R {
	if u, ok := id.User(); ok {
		return onUser(u)
	}
	return onSystem()
}

// SessionID identifies a session created by an application.
type SessionID struct {
	ApplicationID ApplicationID
	Kind          uint64
	Index         uint256.Int
}
