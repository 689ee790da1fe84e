package convert

import (
	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/abi/service"
	"github.com/wippyai/chain-abi/host"
)

// OperationContext converts the context of a contract operation.
func OperationContext(c host.OperationContext) (contract.OperationContext, error) {
	index, err := narrowIndex(c.Index, []string{"operation-context", "index"})
	if err != nil {
		return contract.OperationContext{}, err
	}
	return contract.OperationContext{
		ChainID: ChainID[contract.ChainID](c.ChainID),
		Height:  uint64(c.Height),
		Index:   index,
	}, nil
}

// EffectContext converts the context of a contract effect.
func EffectContext(c host.EffectContext) (contract.EffectContext, error) {
	effect, err := effectID(c.EffectID, []string{"effect-context", "effect-id"})
	if err != nil {
		return contract.EffectContext{}, err
	}
	return contract.EffectContext{
		ChainID:  ChainID[contract.ChainID](c.ChainID),
		Height:   uint64(c.Height),
		EffectID: effect,
	}, nil
}

// CalleeContext converts the context of a cross-application call. An absent
// caller stays absent.
func CalleeContext(c host.CalleeContext) (contract.CalleeContext, error) {
	out := contract.CalleeContext{
		ChainID: ChainID[contract.ChainID](c.ChainID),
	}
	if c.AuthenticatedCallerID != nil {
		caller, err := applicationID(*c.AuthenticatedCallerID, []string{"callee-context", "authenticated-caller-id"})
		if err != nil {
			return contract.CalleeContext{}, err
		}
		out.AuthenticatedCallerID = &caller
	}
	return out, nil
}

// QueryContext converts the context of a service query. It cannot fail.
func QueryContext(c host.QueryContext) service.QueryContext {
	return service.QueryContext{
		ChainID: ChainID[service.ChainID](c.ChainID),
	}
}
