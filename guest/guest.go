package guest

import (
	"context"
	stderrors "errors"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/errors"
	"github.com/wippyai/chain-abi/lower"
)

const (
	// CabiRealloc is the guest allocator export.
	CabiRealloc = "cabi_realloc"
	// MemoryExport names the linear memory in missing-export reports.
	MemoryExport = "memory"
)

// instance binds one namespace to one wazero module.
type instance struct {
	mod     api.Module
	mem     api.Memory
	realloc api.Function
	ns      abi.Namespace
	exports map[string]api.Function
}

// bind resolves memory, allocator and every export of ns, reporting all
// absent ones at once.
func bind(mod api.Module, ns abi.Namespace) (*instance, error) {
	inst := &instance{
		mod:     mod,
		ns:      ns,
		exports: make(map[string]api.Function, len(ns.Exports)),
	}

	var missing []string
	if inst.mem = mod.Memory(); inst.mem == nil {
		missing = append(missing, MemoryExport)
	}
	if inst.realloc = mod.ExportedFunction(CabiRealloc); inst.realloc == nil {
		missing = append(missing, CabiRealloc)
	}
	for _, fn := range ns.Exports {
		f := mod.ExportedFunction(fn.Name)
		if f == nil {
			missing = append(missing, fn.Name)
			continue
		}
		inst.exports[fn.Name] = f
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingExportError(ns.Name, missing)
	}

	Logger().Debug("bound guest module",
		zap.String("module", mod.Name()),
		zap.String("namespace", ns.Name),
		zap.Int("exports", len(inst.exports)))
	return inst, nil
}

// call lowers args for export fn and invokes it. On a lowering failure the
// allocations are freed and the guest is not invoked. Once invoked, the
// guest owns the lowered arguments.
func (in *instance) call(ctx context.Context, name string, args ...any) ([]uint64, error) {
	fn, ok := in.ns.Export(name)
	if !ok {
		return nil, errors.Unsupported(errors.PhasePrepare, in.ns.Name+" has no export "+name)
	}

	l := lower.NewLowerer(WrapMemory(in.mem), WrapAllocator(ctx, in.realloc))
	params, err := l.Params(fn, args...)
	if err != nil {
		l.Discard()
		return nil, err
	}

	Logger().Debug("calling guest export",
		zap.String("namespace", in.ns.Name),
		zap.String("export", name),
		zap.Int("params", len(params)),
		zap.Int("allocations", l.Allocations().Count()),
		zap.Uint32("allocated", l.Allocations().TotalSize()))

	l.Commit()
	results, err := in.exports[name].Call(ctx, params...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindTrap, err, name)
	}
	return results, nil
}

// prepareError reports a failed host conversion for export name.
func prepareError(name string, err error) error {
	kind := errors.KindInvalidData
	var e *errors.Error
	if stderrors.As(err, &e) {
		kind = e.Kind
	}
	Logger().Debug("guest call not prepared",
		zap.String("export", name),
		zap.Error(err))
	return errors.Wrap(errors.PhasePrepare, kind, err, name)
}
