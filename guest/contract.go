package guest

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/convert"
	"github.com/wippyai/chain-abi/host"
)

// Contract calls the contract exports of one guest module instance.
// Like the module itself it must not be used concurrently.
type Contract struct {
	inst *instance
}

// NewContract binds mod as a contract. It fails with a
// *errors.MissingExportError when memory, cabi_realloc or any contract
// export is absent.
func NewContract(mod api.Module) (*Contract, error) {
	inst, err := bind(mod, contract.Namespace)
	if err != nil {
		return nil, err
	}
	return &Contract{inst: inst}, nil
}

// Module returns the bound module.
func (c *Contract) Module() api.Module {
	return c.inst.mod
}

// ExecuteOperation runs an operation proposed in a block.
func (c *Contract) ExecuteOperation(ctx context.Context, hc host.OperationContext, operation []byte) ([]uint64, error) {
	name := contract.ExecuteOperation.Name
	abiCtx, err := convert.OperationContext(hc)
	if err != nil {
		return nil, prepareError(name, err)
	}
	return c.inst.call(ctx, name, abiCtx, operation)
}

// ExecuteEffect applies an effect received from another chain or block.
func (c *Contract) ExecuteEffect(ctx context.Context, hc host.EffectContext, effect []byte) ([]uint64, error) {
	name := contract.ExecuteEffect.Name
	abiCtx, err := convert.EffectContext(hc)
	if err != nil {
		return nil, prepareError(name, err)
	}
	return c.inst.call(ctx, name, abiCtx, effect)
}

// CallApplication invokes the application on behalf of a caller, forwarding
// the given sessions.
func (c *Contract) CallApplication(ctx context.Context, hc host.CalleeContext, argument []byte, forwarded []host.SessionID) ([]uint64, error) {
	name := contract.CallApplication.Name
	abiCtx, err := convert.CalleeContext(hc)
	if err != nil {
		return nil, prepareError(name, err)
	}
	sessions, err := convert.SessionIDs(forwarded)
	if err != nil {
		return nil, prepareError(name, err)
	}
	return c.inst.call(ctx, name, abiCtx, argument, sessions)
}

// CallSession invokes one session of the application.
func (c *Contract) CallSession(ctx context.Context, hc host.CalleeContext, session host.SessionID, argument []byte, forwarded []host.SessionID) ([]uint64, error) {
	name := contract.CallSession.Name
	abiCtx, err := convert.CalleeContext(hc)
	if err != nil {
		return nil, prepareError(name, err)
	}
	target, err := convert.SessionID(session)
	if err != nil {
		return nil, prepareError(name, err)
	}
	sessions, err := convert.SessionIDs(forwarded)
	if err != nil {
		return nil, prepareError(name, err)
	}
	return c.inst.call(ctx, name, abiCtx, target, argument, sessions)
}
