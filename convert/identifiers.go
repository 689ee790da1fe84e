package convert

import (
	"strconv"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/errors"
	"github.com/wippyai/chain-abi/host"
)

// ChainID converts a chain id for either namespace.
func ChainID[H abi.HashShape](c host.ChainID) H {
	return HashValue[H](c.Hash)
}

// ApplicationID maps System to the system case and User to the user case.
// It fails only when the creation effect's index overflows u64.
func ApplicationID(id host.ApplicationID) (contract.ApplicationID, error) {
	return applicationID(id, []string{"application-id"})
}

// EffectID narrows the effect's index to u64.
func EffectID(id host.EffectID) (contract.EffectID, error) {
	return effectID(id, []string{"effect-id"})
}

// SessionID converts the owning application and narrows the session index.
func SessionID(id host.SessionID) (contract.SessionID, error) {
	return sessionID(id, []string{"session-id"})
}

// SessionIDs converts a list of sessions, failing on the first that does not fit.
func SessionIDs(ids []host.SessionID) ([]contract.SessionID, error) {
	out := make([]contract.SessionID, len(ids))
	for i, id := range ids {
		s, err := sessionID(id, []string{"session-ids", strconv.Itoa(i)})
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

type convertedApplicationID struct {
	id  contract.ApplicationID
	err error
}

func applicationID(id host.ApplicationID, path []string) (contract.ApplicationID, error) {
	r := host.MatchApplicationID(id,
		func() convertedApplicationID {
			return convertedApplicationID{id: contract.NewSystemApplicationID()}
		},
		func(u host.UserApplicationID) convertedApplicationID {
			creation, err := effectID(u.Creation, subPath(path, "user", "creation"))
			if err != nil {
				return convertedApplicationID{err: err}
			}
			return convertedApplicationID{id: contract.NewUserApplicationID(contract.UserApplicationID{
				Bytecode: HashValue[contract.BytecodeID](u.Bytecode.Hash),
				Creation: creation,
			})}
		},
	)
	return r.id, r.err
}

func effectID(id host.EffectID, path []string) (contract.EffectID, error) {
	index, err := narrowIndex(id.Index, subPath(path, "index"))
	if err != nil {
		return contract.EffectID{}, err
	}
	return contract.EffectID{
		ChainID: ChainID[contract.ChainID](id.ChainID),
		Height:  uint64(id.Height),
		Index:   index,
	}, nil
}

func sessionID(id host.SessionID, path []string) (contract.SessionID, error) {
	app, err := applicationID(id.ApplicationID, subPath(path, "application-id"))
	if err != nil {
		return contract.SessionID{}, err
	}
	index, err := narrowIndex(id.Index, subPath(path, "index"))
	if err != nil {
		return contract.SessionID{}, err
	}
	return contract.SessionID{
		ApplicationID: app,
		Kind:          id.Kind,
		Index:         index,
	}, nil
}

// narrowIndex is the only fallible step of every conversion.
func narrowIndex(idx uint256.Int, path []string) (uint64, error) {
	if !idx.IsUint64() {
		Logger().Debug("index does not fit in u64",
			zap.Strings("path", path),
			zap.String("index", idx.Dec()))
		return 0, errors.IndexOverflow(path, idx.Dec())
	}
	return idx.Uint64(), nil
}

func subPath(path []string, elems ...string) []string {
	out := make([]string, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}
