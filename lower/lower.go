package lower

import (
	"math"
	"reflect"
	"strconv"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/errors"
)

// Lowerer lowers ABI records for one guest call.
//
// Go values map onto WIT types as follows:
//
//	record       struct, fields in declaration order
//	variant      struct with one pointer field per case, exactly one non-nil
//	option<T>    *T, nil meaning none
//	list<T>      []T, copied into guest memory
//	u8..u64      unsigned integers, range-checked
//	s8..s64      signed integers, range-checked
//	bool         bool
//
// Not safe for concurrent use.
type Lowerer struct {
	mem    Memory
	alloc  Allocator
	allocs *AllocationList
	layout *Calculator
}

// NewLowerer creates a Lowerer writing into mem. alloc may be nil when no
// lowered value needs guest memory.
func NewLowerer(mem Memory, alloc Allocator) *Lowerer {
	return &Lowerer{
		mem:    mem,
		alloc:  alloc,
		allocs: NewAllocationList(),
		layout: NewCalculator(),
	}
}

// Allocations lists the guest allocations made so far.
func (l *Lowerer) Allocations() *AllocationList {
	return l.allocs
}

// Discard frees every allocation made so far. Use it when the call will not
// be made; once the guest runs it owns the lowered arguments.
func (l *Lowerer) Discard() {
	l.allocs.FreeAndRelease(l.alloc)
	l.allocs = NewAllocationList()
}

// Commit hands the allocations over to the guest and stops tracking them.
func (l *Lowerer) Commit() {
	l.allocs.Release()
	l.allocs = NewAllocationList()
}

// Flatten lowers v, typed as t, to core values.
func (l *Lowerer) Flatten(t wit.Type, v any) ([]uint64, error) {
	flat := make([]uint64, 0, len(FlattenType(t)))
	return l.flatten(t, reflect.ValueOf(v), nil, flat)
}

// Store writes v, typed as t, at addr using the canonical memory layout.
func (l *Lowerer) Store(t wit.Type, v any, addr uint32) error {
	return l.store(t, reflect.ValueOf(v), addr, nil)
}

// Params lowers the arguments of fn. Up to MaxFlatParams core values are
// passed directly; larger argument lists are stored in guest memory as a
// tuple and passed as a single pointer.
func (l *Lowerer) Params(fn abi.Function, args ...any) ([]uint64, error) {
	if len(args) != len(fn.Params) {
		return nil, errors.New(errors.PhaseLower, errors.KindInvalidData).
			Path(fn.Name).
			Detail("expected %d arguments, got %d", len(fn.Params), len(args)).
			Build()
	}

	types := fn.ParamTypes()
	if len(FlattenTypes(types)) <= MaxFlatParams {
		var flat []uint64
		var err error
		for i, p := range fn.Params {
			flat, err = l.flatten(p.Type, reflect.ValueOf(args[i]), []string{fn.Name, p.Name}, flat)
			if err != nil {
				return nil, err
			}
		}
		return flat, nil
	}

	info := l.layout.Tuple(types)
	ptr, err := l.allocate(info.Size, info.Align, []string{fn.Name})
	if err != nil {
		return nil, err
	}
	for i, p := range fn.Params {
		if err := l.store(p.Type, reflect.ValueOf(args[i]), ptr+info.FieldOffsets[i], []string{fn.Name, p.Name}); err != nil {
			return nil, err
		}
	}
	return []uint64{api.EncodeU32(ptr)}, nil
}

func (l *Lowerer) flatten(t wit.Type, rv reflect.Value, path []string, dst []uint64) ([]uint64, error) {
	switch typ := t.(type) {
	case wit.Bool:
		if !rv.IsValid() || rv.Kind() != reflect.Bool {
			return nil, mismatch(path, rv, t)
		}
		if rv.Bool() {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil

	case wit.U8, wit.U16, wit.U32:
		u, err := unsignedValue(rv, maxUnsigned(t), path, t)
		if err != nil {
			return nil, err
		}
		return append(dst, api.EncodeU32(uint32(u))), nil

	case wit.U64:
		u, err := unsignedValue(rv, math.MaxUint64, path, t)
		if err != nil {
			return nil, err
		}
		return append(dst, u), nil

	case wit.S8, wit.S16, wit.S32:
		s, err := signedValue(rv, path, t)
		if err != nil {
			return nil, err
		}
		return append(dst, api.EncodeI32(int32(s))), nil

	case wit.S64:
		s, err := signedValue(rv, path, t)
		if err != nil {
			return nil, err
		}
		return append(dst, api.EncodeI64(s)), nil

	case *wit.TypeDef:
		return l.flattenTypeDef(typ, rv, path, dst)

	default:
		return nil, unsupported(path, t)
	}
}

func (l *Lowerer) flattenTypeDef(td *wit.TypeDef, rv reflect.Value, path []string, dst []uint64) ([]uint64, error) {
	switch kind := td.Kind.(type) {
	case *wit.Record:
		if err := checkRecord(kind, rv, path, td); err != nil {
			return nil, err
		}
		var err error
		for i, f := range kind.Fields {
			dst, err = l.flatten(f.Type, rv.Field(i), appendPath(path, f.Name), dst)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil

	case *wit.Variant:
		idx, payload, err := activeCase(kind, rv, path, td)
		if err != nil {
			return nil, err
		}
		dst = append(dst, api.EncodeU32(uint32(idx)))
		slots := len(flattenVariant(kind)) - 1
		start := len(dst)
		if c := kind.Cases[idx]; c.Type != nil {
			dst, err = l.flatten(c.Type, payload, appendPath(path, c.Name), dst)
			if err != nil {
				return nil, err
			}
		}
		for len(dst)-start < slots {
			dst = append(dst, 0)
		}
		return dst, nil

	case *wit.Option:
		if !rv.IsValid() || rv.Kind() != reflect.Pointer {
			return nil, mismatch(path, rv, td)
		}
		if rv.IsNil() {
			dst = append(dst, 0)
			for range FlattenType(kind.Type) {
				dst = append(dst, 0)
			}
			return dst, nil
		}
		return l.flatten(kind.Type, rv.Elem(), path, append(dst, 1))

	case *wit.List:
		ptr, n, err := l.storeList(kind, rv, path, td)
		if err != nil {
			return nil, err
		}
		return append(dst, api.EncodeU32(ptr), api.EncodeU32(n)), nil

	case wit.Type:
		return l.flatten(kind, rv, path, dst)

	default:
		return nil, unsupported(path, td)
	}
}

func (l *Lowerer) store(t wit.Type, rv reflect.Value, addr uint32, path []string) error {
	var err error
	switch typ := t.(type) {
	case wit.Bool:
		if !rv.IsValid() || rv.Kind() != reflect.Bool {
			return mismatch(path, rv, t)
		}
		var b uint8
		if rv.Bool() {
			b = 1
		}
		err = l.mem.WriteU8(addr, b)

	case wit.U8:
		var u uint64
		if u, err = unsignedValue(rv, math.MaxUint8, path, t); err != nil {
			return err
		}
		err = l.mem.WriteU8(addr, uint8(u))

	case wit.U16:
		var u uint64
		if u, err = unsignedValue(rv, math.MaxUint16, path, t); err != nil {
			return err
		}
		err = l.mem.WriteU16(addr, uint16(u))

	case wit.U32:
		var u uint64
		if u, err = unsignedValue(rv, math.MaxUint32, path, t); err != nil {
			return err
		}
		err = l.mem.WriteU32(addr, uint32(u))

	case wit.U64:
		var u uint64
		if u, err = unsignedValue(rv, math.MaxUint64, path, t); err != nil {
			return err
		}
		err = l.mem.WriteU64(addr, u)

	case wit.S8, wit.S16, wit.S32, wit.S64:
		var s int64
		if s, err = signedValue(rv, path, t); err != nil {
			return err
		}
		switch l.layout.Calculate(t).Size {
		case 1:
			err = l.mem.WriteU8(addr, uint8(s))
		case 2:
			err = l.mem.WriteU16(addr, uint16(s))
		case 4:
			err = l.mem.WriteU32(addr, uint32(s))
		default:
			err = l.mem.WriteU64(addr, uint64(s))
		}

	case *wit.TypeDef:
		return l.storeTypeDef(typ, rv, addr, path)

	default:
		return unsupported(path, t)
	}

	if err != nil {
		return memoryError(path, err)
	}
	return nil
}

func (l *Lowerer) storeTypeDef(td *wit.TypeDef, rv reflect.Value, addr uint32, path []string) error {
	switch kind := td.Kind.(type) {
	case *wit.Record:
		if err := checkRecord(kind, rv, path, td); err != nil {
			return err
		}
		info := l.layout.Calculate(td)
		for i, f := range kind.Fields {
			if err := l.store(f.Type, rv.Field(i), addr+info.FieldOffsets[i], appendPath(path, f.Name)); err != nil {
				return err
			}
		}
		return nil

	case *wit.Variant:
		idx, payload, err := activeCase(kind, rv, path, td)
		if err != nil {
			return err
		}
		info := l.layout.Calculate(td)
		if err := l.writeDiscriminant(addr, info.DiscSize, uint32(idx)); err != nil {
			return memoryError(path, err)
		}
		if c := kind.Cases[idx]; c.Type != nil {
			return l.store(c.Type, payload, addr+info.PayloadOffset, appendPath(path, c.Name))
		}
		return nil

	case *wit.Option:
		if !rv.IsValid() || rv.Kind() != reflect.Pointer {
			return mismatch(path, rv, td)
		}
		if rv.IsNil() {
			if err := l.mem.WriteU8(addr, 0); err != nil {
				return memoryError(path, err)
			}
			return nil
		}
		if err := l.mem.WriteU8(addr, 1); err != nil {
			return memoryError(path, err)
		}
		info := l.layout.Calculate(td)
		return l.store(kind.Type, rv.Elem(), addr+info.PayloadOffset, path)

	case *wit.List:
		ptr, n, err := l.storeList(kind, rv, path, td)
		if err != nil {
			return err
		}
		if err := l.mem.WriteU32(addr, ptr); err != nil {
			return memoryError(path, err)
		}
		if err := l.mem.WriteU32(addr+4, n); err != nil {
			return memoryError(path, err)
		}
		return nil

	case wit.Type:
		return l.store(kind, rv, addr, path)

	default:
		return unsupported(path, td)
	}
}

// storeList copies the elements of rv into a fresh guest allocation.
// Empty lists are passed as (0, 0) without allocating.
func (l *Lowerer) storeList(list *wit.List, rv reflect.Value, path []string, t wit.Type) (ptr, length uint32, err error) {
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return 0, 0, mismatch(path, rv, t)
	}
	n := rv.Len()
	if n == 0 {
		return 0, 0, nil
	}
	if uint64(n) > math.MaxUint32 {
		return 0, 0, errors.Overflow(errors.PhaseLower, path, n, "list length")
	}

	elem := l.layout.Calculate(list.Type)
	size, ok := safeMulU32(elem.Size, uint32(n))
	if !ok {
		return 0, 0, errors.Overflow(errors.PhaseLower, path, n, "list byte size")
	}

	ptr, err = l.allocate(size, elem.Align, path)
	if err != nil {
		return 0, 0, err
	}

	if _, isByte := list.Type.(wit.U8); isByte && rv.Type().Elem().Kind() == reflect.Uint8 {
		if err := l.mem.Write(ptr, rv.Bytes()); err != nil {
			return 0, 0, memoryError(path, err)
		}
		return ptr, uint32(n), nil
	}

	for i := 0; i < n; i++ {
		if err := l.store(list.Type, rv.Index(i), ptr+uint32(i)*elem.Size, appendPath(path, strconv.Itoa(i))); err != nil {
			return 0, 0, err
		}
	}
	return ptr, uint32(n), nil
}

func (l *Lowerer) allocate(size, align uint32, path []string) (uint32, error) {
	if l.alloc == nil {
		return 0, errors.New(errors.PhaseLower, errors.KindAllocation).
			Path(path...).
			Detail("no allocator for %d bytes", size).
			Build()
	}
	ptr, err := l.alloc.Alloc(size, align)
	if err != nil {
		return 0, errors.New(errors.PhaseLower, errors.KindAllocation).
			Path(path...).
			Detail("failed to allocate %d bytes (align %d)", size, align).
			Cause(err).
			Build()
	}
	l.allocs.Add(ptr, size, align)
	return ptr, nil
}

func (l *Lowerer) writeDiscriminant(addr, size, disc uint32) error {
	switch size {
	case 1:
		return l.mem.WriteU8(addr, uint8(disc))
	case 2:
		return l.mem.WriteU16(addr, uint16(disc))
	default:
		return l.mem.WriteU32(addr, disc)
	}
}

func checkRecord(r *wit.Record, rv reflect.Value, path []string, t wit.Type) error {
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return mismatch(path, rv, t)
	}
	if rv.NumField() != len(r.Fields) {
		return errors.New(errors.PhaseLower, errors.KindTypeMismatch).
			Path(path...).
			GoType(rv.Type().String()).
			WitType(abi.TypeName(t)).
			Detail("record has %d fields, Go struct has %d", len(r.Fields), rv.NumField()).
			Build()
	}
	return nil
}

// activeCase returns the index of the single non-nil case pointer and the
// value it points to.
func activeCase(v *wit.Variant, rv reflect.Value, path []string, t wit.Type) (int, reflect.Value, error) {
	if !rv.IsValid() || rv.Kind() != reflect.Struct || rv.NumField() != len(v.Cases) {
		return 0, reflect.Value{}, mismatch(path, rv, t)
	}

	active := -1
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() != reflect.Pointer {
			return 0, reflect.Value{}, mismatch(appendPath(path, v.Cases[i].Name), f, t)
		}
		if f.IsNil() {
			continue
		}
		if active >= 0 {
			return 0, reflect.Value{}, errors.InvalidData(errors.PhaseLower, path,
				"variant has more than one active case")
		}
		active = i
	}
	if active < 0 {
		return 0, reflect.Value{}, errors.InvalidData(errors.PhaseLower, path, "variant has no active case")
	}
	return active, rv.Field(active).Elem(), nil
}

func unsignedValue(rv reflect.Value, limit uint64, path []string, t wit.Type) (uint64, error) {
	if !rv.IsValid() || !rv.CanUint() {
		return 0, mismatch(path, rv, t)
	}
	u := rv.Uint()
	if u > limit {
		return 0, errors.Overflow(errors.PhaseLower, path, u, abi.TypeName(t))
	}
	return u, nil
}

func signedValue(rv reflect.Value, path []string, t wit.Type) (int64, error) {
	if !rv.IsValid() || !rv.CanInt() {
		return 0, mismatch(path, rv, t)
	}
	s := rv.Int()
	var lo, hi int64
	switch t.(type) {
	case wit.S8:
		lo, hi = math.MinInt8, math.MaxInt8
	case wit.S16:
		lo, hi = math.MinInt16, math.MaxInt16
	case wit.S32:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		return s, nil
	}
	if s < lo || s > hi {
		return 0, errors.Overflow(errors.PhaseLower, path, s, abi.TypeName(t))
	}
	return s, nil
}

func maxUnsigned(t wit.Type) uint64 {
	switch t.(type) {
	case wit.U8:
		return math.MaxUint8
	case wit.U16:
		return math.MaxUint16
	default:
		return math.MaxUint32
	}
}

func safeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func mismatch(path []string, rv reflect.Value, t wit.Type) *errors.Error {
	goType := "nil"
	if rv.IsValid() {
		goType = rv.Type().String()
	}
	return errors.TypeMismatch(errors.PhaseLower, path, goType, abi.TypeName(t))
}

func unsupported(path []string, t wit.Type) *errors.Error {
	err := errors.Unsupported(errors.PhaseLower, "cannot lower "+abi.TypeName(t))
	err.Path = path
	return err
}

func memoryError(path []string, cause error) *errors.Error {
	return errors.New(errors.PhaseLower, errors.KindOutOfBounds).
		Path(path...).
		Cause(cause).
		Build()
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
