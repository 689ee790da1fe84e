// Command abidump shows how a host context crosses into a guest: the ABI
// record it converts to and the core values it lowers to.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/abi/service"
	"github.com/wippyai/chain-abi/convert"
	"github.com/wippyai/chain-abi/guest"
	"github.com/wippyai/chain-abi/host"
	"github.com/wippyai/chain-abi/lower"
)

type options struct {
	kind        string
	chainSeed   string
	height      uint64
	index       string
	caller      string
	sessionKind uint64
}

func main() {
	var (
		opts    options
		list    = flag.Bool("list", false, "List contract and service exports with their flat signatures and exit")
		verbose = flag.Bool("v", false, "Enable development logging")
	)
	flag.StringVar(&opts.kind, "kind", "operation", "Context kind: operation, effect, callee, session, query")
	flag.StringVar(&opts.chainSeed, "chain", "chain", "Seed the chain id is derived from")
	flag.Uint64Var(&opts.height, "height", 0, "Block height")
	flag.StringVar(&opts.index, "index", "0", "Decimal index (may exceed 64 bits)")
	flag.StringVar(&opts.caller, "caller", "", "Application: empty for none, \"system\", or a bytecode seed for a user application")
	flag.Uint64Var(&opts.sessionKind, "session-kind", 0, "Session kind (session contexts only)")
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = l.Sync() }()
		convert.SetLogger(l.Named("convert"))
		guest.SetLogger(l.Named("guest"))
	}

	out := newPrinter(os.Stdout)

	if *list {
		out.exports()
		return
	}

	if err := run(out, opts); err != nil {
		out.fail(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out *printer, opts options) error {
	idx, err := uint256.FromDecimal(opts.index)
	if err != nil {
		return fmt.Errorf("parse index %q: %w", opts.index, err)
	}
	chain := host.NewChainID([]byte(opts.chainSeed))
	height := host.BlockHeight(opts.height)

	var app *host.ApplicationID
	switch opts.caller {
	case "":
	case "system":
		id := host.SystemApplication()
		app = &id
	default:
		id := host.UserApplication(host.UserApplicationID{
			Bytecode: host.BytecodeID{Hash: host.NewHashValue([]byte(opts.caller))},
			Creation: host.EffectID{ChainID: chain, Height: height, Index: *idx},
		})
		app = &id
	}

	var (
		typ    wit.Type
		record any
		hostV  any
	)
	switch opts.kind {
	case "operation":
		hc := host.OperationContext{ChainID: chain, Height: height, Index: *idx}
		hostV, typ = hc, contract.OperationContextType
		record, err = convert.OperationContext(hc)

	case "effect":
		hc := host.EffectContext{
			ChainID:  chain,
			Height:   height,
			EffectID: host.EffectID{ChainID: chain, Height: height, Index: *idx},
		}
		hostV, typ = hc, contract.EffectContextType
		record, err = convert.EffectContext(hc)

	case "callee":
		hc := host.CalleeContext{ChainID: chain, AuthenticatedCallerID: app}
		hostV, typ = hc, contract.CalleeContextType
		record, err = convert.CalleeContext(hc)

	case "session":
		owner := host.SystemApplication()
		if app != nil {
			owner = *app
		}
		id := host.SessionID{ApplicationID: owner, Kind: opts.sessionKind, Index: *idx}
		hostV, typ = id, contract.SessionIDType
		record, err = convert.SessionID(id)

	case "query":
		hc := host.QueryContext{ChainID: chain}
		hostV, typ = hc, service.QueryContextType
		record = convert.QueryContext(hc)

	default:
		return fmt.Errorf("unknown context kind %q", opts.kind)
	}
	if err != nil {
		return err
	}

	flat, err := lower.NewLowerer(nil, nil).Flatten(typ, record)
	if err != nil {
		return err
	}

	scratch := lower.NewScratch(4096)
	l := lower.NewLowerer(scratch, scratch)
	info := lower.NewCalculator().Calculate(typ)
	addr, err := scratch.Alloc(info.Size, info.Align)
	if err != nil {
		return err
	}
	if err := l.Store(typ, record, addr); err != nil {
		return err
	}
	stored, err := scratch.Read(addr, info.Size)
	if err != nil {
		return err
	}

	out.record(typ, hostV, record)
	out.flat(typ, flat)
	out.memory(info, stored)
	return nil
}
