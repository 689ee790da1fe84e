// Package service holds the ABI records of the service interface. Services
// are read-only, so the package has no effect, session or application
// identifiers.
package service

import "github.com/wippyai/chain-abi/abi"

// HashValue is a 64-byte hash split into eight little-endian words.
type HashValue struct {
	Part1, Part2, Part3, Part4, Part5, Part6, Part7, Part8 uint64
}

// ChainID is `type chain-id = hash-value`.
type ChainID = HashValue

type QueryContext struct {
	ChainID ChainID
}

var (
	HashValueType = abi.NewHashValueType()
	ChainIDType   = abi.Alias("chain-id", HashValueType)

	QueryContextType = abi.Named("query-context", abi.Record(
		abi.Field("chain-id", ChainIDType),
	))
)

// QueryApplication is the single entry point of a service module.
var QueryApplication = abi.Function{
	Name: "query-application",
	Params: []abi.Param{
		{Name: "context", Type: QueryContextType},
		{Name: "argument", Type: abi.Bytes},
	},
}

// Namespace is the service interface.
var Namespace = abi.Namespace{
	Name:    "service",
	Exports: []abi.Function{QueryApplication},
}
