package abi

import "go.bytecodealliance.org/wit"

// Bytes is list<u8>, used for opaque operation, effect and query payloads.
var Bytes = &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}

// NewHashValueType builds the hash-value record shared by both namespaces.
func NewHashValueType() *wit.TypeDef {
	fields := make([]wit.Field, 8)
	for i := range fields {
		fields[i] = wit.Field{Name: partNames[i], Type: wit.U64{}}
	}
	return Named("hash-value", &wit.Record{Fields: fields})
}

var partNames = [8]string{"part1", "part2", "part3", "part4", "part5", "part6", "part7", "part8"}

// Named wraps kind in a named type definition.
func Named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

// Alias declares `type name = target`.
func Alias(name string, target wit.Type) *wit.TypeDef {
	return Named(name, target)
}

// Record builds a record kind.
func Record(fields ...wit.Field) *wit.Record {
	return &wit.Record{Fields: fields}
}

// Field is shorthand for a wit.Field.
func Field(name string, t wit.Type) wit.Field {
	return wit.Field{Name: name, Type: t}
}

// ListOf builds list<t>.
func ListOf(t wit.Type) *wit.TypeDef {
	return &wit.TypeDef{Kind: &wit.List{Type: t}}
}

// OptionOf builds option<t>.
func OptionOf(t wit.Type) *wit.TypeDef {
	return &wit.TypeDef{Kind: &wit.Option{Type: t}}
}

// TypeName returns the WIT name of t for error messages.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case nil:
		return "<none>"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		switch k := v.Kind.(type) {
		case *wit.Record:
			return "record"
		case *wit.Variant:
			return "variant"
		case *wit.Option:
			return "option<" + TypeName(k.Type) + ">"
		case *wit.List:
			return "list<" + TypeName(k.Type) + ">"
		case wit.Type:
			return TypeName(k)
		}
		return "typedef"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.S8:
		return "s8"
	case wit.S16:
		return "s16"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.Bool:
		return "bool"
	case wit.String:
		return "string"
	}
	return "unknown"
}
