package contract

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/chain-abi/abi"
)

var (
	HashValueType  = abi.NewHashValueType()
	ChainIDType    = abi.Alias("chain-id", HashValueType)
	BytecodeIDType = abi.Alias("bytecode-id", HashValueType)

	EffectIDType = abi.Named("effect-id", abi.Record(
		abi.Field("chain-id", ChainIDType),
		abi.Field("height", wit.U64{}),
		abi.Field("index", wit.U64{}),
	))

	UserApplicationIDType = abi.Named("user-application-id", abi.Record(
		abi.Field("bytecode", BytecodeIDType),
		abi.Field("creation", EffectIDType),
	))

	ApplicationIDType = abi.Named("application-id", &wit.Variant{
		Cases: []wit.Case{
			{Name: "system"},
			{Name: "user", Type: UserApplicationIDType},
		},
	})

	SessionIDType = abi.Named("session-id", abi.Record(
		abi.Field("application-id", ApplicationIDType),
		abi.Field("kind", wit.U64{}),
		abi.Field("index", wit.U64{}),
	))

	OperationContextType = abi.Named("operation-context", abi.Record(
		abi.Field("chain-id", ChainIDType),
		abi.Field("height", wit.U64{}),
		abi.Field("index", wit.U64{}),
	))

	EffectContextType = abi.Named("effect-context", abi.Record(
		abi.Field("chain-id", ChainIDType),
		abi.Field("height", wit.U64{}),
		abi.Field("effect-id", EffectIDType),
	))

	CalleeContextType = abi.Named("callee-context", abi.Record(
		abi.Field("chain-id", ChainIDType),
		abi.Field("authenticated-caller-id", abi.OptionOf(ApplicationIDType)),
	))
)

// Entry points a contract module exports.
var (
	ExecuteOperation = abi.Function{
		Name: "execute-operation",
		Params: []abi.Param{
			{Name: "context", Type: OperationContextType},
			{Name: "operation", Type: abi.Bytes},
		},
	}

	ExecuteEffect = abi.Function{
		Name: "execute-effect",
		Params: []abi.Param{
			{Name: "context", Type: EffectContextType},
			{Name: "effect", Type: abi.Bytes},
		},
	}

	CallApplication = abi.Function{
		Name: "call-application",
		Params: []abi.Param{
			{Name: "context", Type: CalleeContextType},
			{Name: "argument", Type: abi.Bytes},
			{Name: "forwarded-sessions", Type: abi.ListOf(SessionIDType)},
		},
	}

	CallSession = abi.Function{
		Name: "call-session",
		Params: []abi.Param{
			{Name: "context", Type: CalleeContextType},
			{Name: "session", Type: SessionIDType},
			{Name: "argument", Type: abi.Bytes},
			{Name: "forwarded-sessions", Type: abi.ListOf(SessionIDType)},
		},
	}
)

// Namespace is the contract interface.
var Namespace = abi.Namespace{
	Name:    "contract",
	Exports: []abi.Function{ExecuteOperation, ExecuteEffect, CallApplication, CallSession},
}
