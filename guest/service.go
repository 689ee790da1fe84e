package guest

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/chain-abi/abi/service"
	"github.com/wippyai/chain-abi/convert"
	"github.com/wippyai/chain-abi/host"
)

// Service calls the service exports of one guest module instance.
type Service struct {
	inst *instance
}

// NewService binds mod as a service.
func NewService(mod api.Module) (*Service, error) {
	inst, err := bind(mod, service.Namespace)
	if err != nil {
		return nil, err
	}
	return &Service{inst: inst}, nil
}

func (s *Service) Module() api.Module {
	return s.inst.mod
}

// QueryApplication runs a read-only query. Query contexts carry no index,
// so conversion cannot fail.
func (s *Service) QueryApplication(ctx context.Context, hc host.QueryContext, argument []byte) ([]uint64, error) {
	return s.inst.call(ctx, service.QueryApplication.Name, convert.QueryContext(hc), argument)
}
