package lower

import (
	"encoding/binary"

	"github.com/wippyai/chain-abi/errors"
)

// scratchReserved keeps address 0 unused so a zero pointer never refers to
// a live allocation.
const scratchReserved = 8

// Scratch is a fixed-size, host-side linear memory with a bump allocator.
// It stages lowered records outside a guest instance, e.g. to inspect their
// canonical layout. Free is a no-op; Reset reclaims everything.
type Scratch struct {
	buf  []byte
	next uint32
}

// NewScratch creates a scratch memory of size bytes.
func NewScratch(size uint32) *Scratch {
	return &Scratch{
		buf:  make([]byte, size),
		next: scratchReserved,
	}
}

// Bytes returns the whole backing buffer.
func (s *Scratch) Bytes() []byte {
	return s.buf
}

// Used returns the high-water mark of the allocator.
func (s *Scratch) Used() uint32 {
	return s.next
}

// Reset discards all allocations and zeroes the buffer.
func (s *Scratch) Reset() {
	clear(s.buf)
	s.next = scratchReserved
}

func (s *Scratch) Alloc(size, align uint32) (uint32, error) {
	ptr := alignTo(s.next, align)
	end := uint64(ptr) + uint64(size)
	if ptr < s.next || end > uint64(len(s.buf)) {
		return 0, errors.AllocationFailed(errors.PhaseLower, size, align)
	}
	s.next = uint32(end)
	return ptr, nil
}

func (s *Scratch) Free(ptr, size, align uint32) {}

func (s *Scratch) span(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(s.buf)) {
		return nil, errors.OutOfBounds(errors.PhaseLower, nil, offset, length)
	}
	return s.buf[offset:end], nil
}

func (s *Scratch) Read(offset uint32, length uint32) ([]byte, error) {
	b, err := s.span(offset, length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, b)
	return out, nil
}

func (s *Scratch) Write(offset uint32, data []byte) error {
	b, err := s.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

func (s *Scratch) ReadU8(offset uint32) (uint8, error) {
	b, err := s.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Scratch) ReadU16(offset uint32) (uint16, error) {
	b, err := s.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Scratch) ReadU32(offset uint32) (uint32, error) {
	b, err := s.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Scratch) ReadU64(offset uint32) (uint64, error) {
	b, err := s.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *Scratch) WriteU8(offset uint32, value uint8) error {
	b, err := s.span(offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

func (s *Scratch) WriteU16(offset uint32, value uint16) error {
	b, err := s.span(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

func (s *Scratch) WriteU32(offset uint32, value uint32) error {
	b, err := s.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

func (s *Scratch) WriteU64(offset uint32, value uint64) error {
	b, err := s.span(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
