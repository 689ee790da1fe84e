package guest

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/abi/contract"
	"github.com/wippyai/chain-abi/abi/service"
	"github.com/wippyai/chain-abi/errors"
	"github.com/wippyai/chain-abi/host"
)

type fakeMemory struct {
	api.Memory
	buf []byte
}

func (m *fakeMemory) span(offset, n uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(n)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset:end], true
}

func (m *fakeMemory) Read(offset, n uint32) ([]byte, bool) { return m.span(offset, n) }

func (m *fakeMemory) Write(offset uint32, v []byte) bool {
	b, ok := m.span(offset, uint32(len(v)))
	if ok {
		copy(b, v)
	}
	return ok
}

func (m *fakeMemory) ReadByte(offset uint32) (byte, bool) {
	b, ok := m.span(offset, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (m *fakeMemory) ReadUint16Le(offset uint32) (uint16, bool) {
	b, ok := m.span(offset, 2)
	if !ok {
		return 0, false
	}
	return uint16(b[0]) | uint16(b[1])<<8, true
}

func (m *fakeMemory) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := m.span(offset, 4)
	if !ok {
		return 0, false
	}
	var v uint32
	for i := 3; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v, true
}

func (m *fakeMemory) ReadUint64Le(offset uint32) (uint64, bool) {
	b, ok := m.span(offset, 8)
	if !ok {
		return 0, false
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, true
}

func (m *fakeMemory) writeLE(offset uint32, v uint64, n uint32) bool {
	b, ok := m.span(offset, n)
	if !ok {
		return false
	}
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return true
}

func (m *fakeMemory) WriteByte(offset uint32, v byte) bool { return m.writeLE(offset, uint64(v), 1) }

func (m *fakeMemory) WriteUint16Le(offset uint32, v uint16) bool {
	return m.writeLE(offset, uint64(v), 2)
}

func (m *fakeMemory) WriteUint32Le(offset uint32, v uint32) bool {
	return m.writeLE(offset, uint64(v), 4)
}

func (m *fakeMemory) WriteUint64Le(offset uint32, v uint64) bool {
	return m.writeLE(offset, v, 8)
}

// fakeRealloc is a bump allocator; failAt makes the n-th allocation trap.
type fakeRealloc struct {
	api.Function
	next   uint32
	allocs int
	failAt int
	freed  []uint32
}

func (f *fakeRealloc) Call(_ context.Context, params ...uint64) ([]uint64, error) {
	oldPtr, align, newSize := uint32(params[0]), uint32(params[2]), uint32(params[3])
	if newSize == 0 {
		f.freed = append(f.freed, oldPtr)
		return []uint64{0}, nil
	}
	f.allocs++
	if f.failAt == f.allocs {
		return nil, stderrors.New("out of memory")
	}
	ptr := (f.next + align - 1) &^ (align - 1)
	f.next = ptr + newSize
	return []uint64{uint64(ptr)}, nil
}

type fakeExport struct {
	api.Function
	calls [][]uint64
	err   error
}

func (f *fakeExport) Call(_ context.Context, params ...uint64) ([]uint64, error) {
	f.calls = append(f.calls, append([]uint64(nil), params...))
	if f.err != nil {
		return nil, f.err
	}
	return []uint64{0}, nil
}

type fakeModule struct {
	api.Module
	mem   *fakeMemory
	funcs map[string]api.Function
}

func (m *fakeModule) Name() string { return "test-guest" }

func (m *fakeModule) Memory() api.Memory {
	if m.mem == nil {
		return nil
	}
	return m.mem
}

func (m *fakeModule) ExportedFunction(name string) api.Function {
	if f, ok := m.funcs[name]; ok {
		return f
	}
	return nil
}

type fixture struct {
	mod     *fakeModule
	mem     *fakeMemory
	realloc *fakeRealloc
	exports map[string]*fakeExport
}

func newFixture(ns abi.Namespace) *fixture {
	fx := &fixture{
		mem:     &fakeMemory{buf: make([]byte, 64*1024)},
		realloc: &fakeRealloc{next: 16},
		exports: make(map[string]*fakeExport),
	}
	funcs := map[string]api.Function{CabiRealloc: fx.realloc}
	for _, fn := range ns.Exports {
		e := &fakeExport{}
		fx.exports[fn.Name] = e
		funcs[fn.Name] = e
	}
	fx.mod = &fakeModule{mem: fx.mem, funcs: funcs}
	return fx
}

func overflowingIndex() uint256.Int {
	return *new(uint256.Int).Lsh(uint256.NewInt(1), 64)
}

func testCaller() host.ApplicationID {
	return host.UserApplication(host.UserApplicationID{
		Bytecode: host.BytecodeID{Hash: host.NewHashValue([]byte("bytecode"))},
		Creation: host.EffectID{
			ChainID: host.NewChainID([]byte("creator")),
			Height:  3,
			Index:   host.NewIndex(4),
		},
	})
}

func TestNewContract_MissingExports(t *testing.T) {
	mod := &fakeModule{funcs: map[string]api.Function{
		contract.ExecuteOperation.Name: &fakeExport{},
	}}

	_, err := NewContract(mod)
	require.Error(t, err)
	require.ErrorIs(t, err, &errors.MissingExportError{})

	var missing *errors.MissingExportError
	require.True(t, stderrors.As(err, &missing))
	assert.Equal(t, "contract", missing.Namespace)
	assert.Equal(t, []string{"memory", "cabi_realloc", "execute-effect", "call-application", "call-session"}, missing.Exports)
}

func TestNewService_MissingQuery(t *testing.T) {
	fx := newFixture(service.Namespace)
	delete(fx.mod.funcs, service.QueryApplication.Name)

	_, err := NewService(fx.mod)
	require.ErrorIs(t, err, &errors.MissingExportError{})
	assert.Contains(t, err.Error(), "query-application")
}

func TestContract_ExecuteOperation(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	hc := host.OperationContext{
		ChainID: host.NewChainID([]byte("chain")),
		Height:  5,
		Index:   host.NewIndex(3),
	}
	_, err = c.ExecuteOperation(context.Background(), hc, []byte("op"))
	require.NoError(t, err)

	calls := fx.exports[contract.ExecuteOperation.Name].calls
	require.Len(t, calls, 1)
	params := calls[0]
	require.Len(t, params, 12)
	assert.Equal(t, uint64(5), params[8])
	assert.Equal(t, uint64(3), params[9])

	ptr, n := api.DecodeU32(params[10]), api.DecodeU32(params[11])
	require.Equal(t, uint32(2), n)
	data, ok := fx.mem.Read(ptr, n)
	require.True(t, ok)
	assert.Equal(t, "op", string(data))

	assert.Empty(t, fx.realloc.freed, "the guest owns lowered arguments once called")
}

func TestContract_IndexOverflowSkipsGuest(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	hc := host.OperationContext{ChainID: host.NewChainID([]byte("chain")), Index: overflowingIndex()}
	_, err = c.ExecuteOperation(context.Background(), hc, []byte("op"))

	require.ErrorIs(t, err, errors.ErrIndexOverflow)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.PhasePrepare, e.Phase)
	assert.Equal(t, errors.KindIndexOverflow, e.Kind)
	assert.Equal(t, contract.ExecuteOperation.Name, e.Detail)

	assert.Empty(t, fx.exports[contract.ExecuteOperation.Name].calls)
	assert.Zero(t, fx.realloc.allocs)
}

func TestContract_ExecuteEffectSpillsArguments(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	hc := host.EffectContext{
		ChainID: host.NewChainID([]byte("chain")),
		Height:  21,
		EffectID: host.EffectID{
			ChainID: host.NewChainID([]byte("origin")),
			Height:  20,
			Index:   host.NewIndex(2),
		},
	}
	_, err = c.ExecuteEffect(context.Background(), hc, []byte{9})
	require.NoError(t, err)

	params := fx.exports[contract.ExecuteEffect.Name].calls[0]
	require.Len(t, params, 1)

	base := api.DecodeU32(params[0])
	height, _ := fx.mem.ReadUint64Le(base + 64)
	effectHeight, _ := fx.mem.ReadUint64Le(base + 72 + 64)
	effectIndex, _ := fx.mem.ReadUint64Le(base + 72 + 72)
	assert.Equal(t, uint64(21), height)
	assert.Equal(t, uint64(20), effectHeight)
	assert.Equal(t, uint64(2), effectIndex)
}

func TestContract_ExecuteEffectOverflow(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	hc := host.EffectContext{EffectID: host.EffectID{Index: overflowingIndex()}}
	_, err = c.ExecuteEffect(context.Background(), hc, nil)
	require.ErrorIs(t, err, errors.ErrIndexOverflow)
	assert.Empty(t, fx.exports[contract.ExecuteEffect.Name].calls)
}

func TestContract_CallApplication(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	caller := testCaller()
	hc := host.CalleeContext{ChainID: host.NewChainID([]byte("chain")), AuthenticatedCallerID: &caller}
	forwarded := []host.SessionID{
		{ApplicationID: host.SystemApplication(), Kind: 1, Index: host.NewIndex(5)},
	}
	_, err = c.CallApplication(context.Background(), hc, []byte("arg"), forwarded)
	require.NoError(t, err)

	params := fx.exports[contract.CallApplication.Name].calls[0]
	require.Len(t, params, 1)

	base := api.DecodeU32(params[0])
	optionDisc, _ := fx.mem.ReadByte(base + 64)
	callerDisc, _ := fx.mem.ReadByte(base + 64 + 8)
	sessionsLen, _ := fx.mem.ReadUint32Le(base + 236)
	assert.Equal(t, byte(1), optionDisc)
	assert.Equal(t, byte(contract.ApplicationIDUser), callerDisc)
	assert.Equal(t, uint32(1), sessionsLen)
}

func TestContract_CallApplicationForwardedOverflow(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	forwarded := []host.SessionID{
		{ApplicationID: host.SystemApplication(), Index: host.NewIndex(1)},
		{ApplicationID: host.SystemApplication(), Index: overflowingIndex()},
	}
	_, err = c.CallApplication(context.Background(), host.CalleeContext{}, nil, forwarded)
	require.ErrorIs(t, err, errors.ErrIndexOverflow)
	assert.Empty(t, fx.exports[contract.CallApplication.Name].calls)
}

func TestContract_CallSession(t *testing.T) {
	fx := newFixture(contract.Namespace)
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	session := host.SessionID{ApplicationID: testCaller(), Kind: 7, Index: host.NewIndex(8)}
	_, err = c.CallSession(context.Background(), host.CalleeContext{}, session, []byte("arg"), nil)
	require.NoError(t, err)

	params := fx.exports[contract.CallSession.Name].calls[0]
	require.Len(t, params, 1)

	// callee-context (224) | session-id (168) | argument | forwarded-sessions
	base := api.DecodeU32(params[0])
	kind, _ := fx.mem.ReadUint64Le(base + 224 + 152)
	index, _ := fx.mem.ReadUint64Le(base + 224 + 160)
	emptyPtr, _ := fx.mem.ReadUint32Le(base + 224 + 168 + 8)
	emptyLen, _ := fx.mem.ReadUint32Le(base + 224 + 168 + 12)
	assert.Equal(t, uint64(7), kind)
	assert.Equal(t, uint64(8), index)
	assert.Zero(t, emptyPtr)
	assert.Zero(t, emptyLen)

	badSession := host.SessionID{Index: overflowingIndex()}
	_, err = c.CallSession(context.Background(), host.CalleeContext{}, badSession, nil, nil)
	require.ErrorIs(t, err, errors.ErrIndexOverflow)
	assert.Len(t, fx.exports[contract.CallSession.Name].calls, 1)
}

func TestContract_AllocationFailureFrees(t *testing.T) {
	fx := newFixture(contract.Namespace)
	fx.realloc.failAt = 2
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	_, err = c.ExecuteEffect(context.Background(), host.EffectContext{}, []byte("payload"))
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLower, Kind: errors.KindAllocation})

	assert.Len(t, fx.realloc.freed, 1, "the spilled tuple must be freed")
	assert.Empty(t, fx.exports[contract.ExecuteEffect.Name].calls)
}

func TestContract_Trap(t *testing.T) {
	fx := newFixture(contract.Namespace)
	trap := stderrors.New("unreachable")
	fx.exports[contract.ExecuteOperation.Name].err = trap
	c, err := NewContract(fx.mod)
	require.NoError(t, err)

	_, err = c.ExecuteOperation(context.Background(), host.OperationContext{}, []byte("op"))
	require.ErrorIs(t, err, trap)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindTrap})
	assert.Empty(t, fx.realloc.freed)
}

func TestService_QueryApplication(t *testing.T) {
	fx := newFixture(service.Namespace)
	s, err := NewService(fx.mod)
	require.NoError(t, err)
	assert.Same(t, fx.mod, s.Module())

	hc := host.QueryContext{ChainID: host.NewChainID([]byte("chain"))}
	_, err = s.QueryApplication(context.Background(), hc, []byte("query"))
	require.NoError(t, err)

	params := fx.exports[service.QueryApplication.Name].calls[0]
	require.Len(t, params, 10)

	first := hc.ChainID.Hash.Bytes()[:8]
	var part1 uint64
	for i := 7; i >= 0; i-- {
		part1 = part1<<8 | uint64(first[i])
	}
	assert.Equal(t, part1, params[0])
	assert.Equal(t, uint64(5), params[9])
}

func TestWrappers(t *testing.T) {
	assert.Nil(t, WrapMemory(nil))
	assert.Nil(t, WrapAllocator(context.Background(), nil))

	mem := WrapMemory(&fakeMemory{buf: make([]byte, 16)})
	require.NoError(t, mem.WriteU32(12, 0xdeadbeef))
	v, err := mem.ReadU32(12)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)

	_, err = mem.ReadU64(12)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLower, Kind: errors.KindOutOfBounds})
	require.Error(t, mem.Write(15, []byte{1, 2}))
}

type nullRealloc struct{ api.Function }

func (nullRealloc) Call(context.Context, ...uint64) ([]uint64, error) { return []uint64{0}, nil }

func TestAllocator(t *testing.T) {
	ctx := context.Background()

	_, err := WrapAllocator(ctx, nullRealloc{}).Alloc(8, 8)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLower, Kind: errors.KindAllocation})

	r := &fakeRealloc{next: 16, failAt: 1}
	_, err = WrapAllocator(ctx, r).Alloc(8, 8)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLower, Kind: errors.KindAllocation})

	r = &fakeRealloc{next: 16}
	a := WrapAllocator(ctx, r)
	ptr, err := a.Alloc(4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), ptr)
	a.Free(ptr, 4, 4)
	a.Free(0, 4, 4)
	assert.Equal(t, []uint32{16}, r.freed)
}
