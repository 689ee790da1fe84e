// Package abi holds what the contract and service namespaces share: the hash
// word layout, WIT schema helpers and export descriptions.
//
// The namespaces themselves live in abi/contract and abi/service. They are
// generated from one interface description but kept structurally distinct:
// service contexts cannot carry effect or session state.
//
//	abi/
//	├── contract/   operation, effect and callee contexts; effect, session and application ids
//	└── service/    query context only
//
// Both namespaces encode hashes identically. The conversion code is written
// once against HashShape and instantiated per namespace.
package abi
