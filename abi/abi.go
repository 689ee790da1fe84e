package abi

import "go.bytecodealliance.org/wit"

// HashWords is the ABI shape of a 64-byte hash: eight little-endian u64 words,
// Part1 covering bytes [0,8) through Part8 covering bytes [56,64).
type HashWords struct {
	Part1, Part2, Part3, Part4, Part5, Part6, Part7, Part8 uint64
}

// HashShape is satisfied by every namespace's generated hash record.
type HashShape interface {
	~struct {
		Part1, Part2, Part3, Part4, Part5, Part6, Part7, Part8 uint64
	}
}

// Param is a named parameter of a guest export.
type Param struct {
	Name string
	Type wit.Type
}

// Function describes a guest export by its WIT signature. Results are not
// described; lifting them is the caller's concern.
type Function struct {
	Name   string
	Params []Param
}

// ParamTypes returns the parameter types in declaration order.
func (f Function) ParamTypes() []wit.Type {
	types := make([]wit.Type, len(f.Params))
	for i, p := range f.Params {
		types[i] = p.Type
	}
	return types
}

// Namespace groups the exports a guest must provide for one interface.
type Namespace struct {
	Name    string
	Exports []Function
}

// Export looks up an export by name.
func (n Namespace) Export(name string) (Function, bool) {
	for _, f := range n.Exports {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}
