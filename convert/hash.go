package convert

import (
	"encoding/binary"

	"github.com/wippyai/chain-abi/abi"
	"github.com/wippyai/chain-abi/host"
)

const hashWords = 8

// A host hash must split into exactly eight u64 words. Both arrays have a
// negative length, and fail to compile, unless the sizes agree.
var (
	_ [host.HashSize - hashWords*8]struct{}
	_ [hashWords*8 - host.HashSize]struct{}
)

// HashValue splits h into eight little-endian words, Part1 = h[0:8] through
// Part8 = h[56:64], typed as either namespace's hash record.
func HashValue[H abi.HashShape](h host.HashValue) H {
	le := binary.LittleEndian
	return H(abi.HashWords{
		Part1: le.Uint64(h[0:8]),
		Part2: le.Uint64(h[8:16]),
		Part3: le.Uint64(h[16:24]),
		Part4: le.Uint64(h[24:32]),
		Part5: le.Uint64(h[32:40]),
		Part6: le.Uint64(h[40:48]),
		Part7: le.Uint64(h[48:56]),
		Part8: le.Uint64(h[56:64]),
	})
}

// HashFromWords reassembles the digest HashValue split.
func HashFromWords[H abi.HashShape](w H) host.HashValue {
	words := abi.HashWords(w)
	le := binary.LittleEndian

	var h host.HashValue
	le.PutUint64(h[0:8], words.Part1)
	le.PutUint64(h[8:16], words.Part2)
	le.PutUint64(h[16:24], words.Part3)
	le.PutUint64(h[24:32], words.Part4)
	le.PutUint64(h[32:40], words.Part5)
	le.PutUint64(h[40:48], words.Part6)
	le.PutUint64(h[48:56], words.Part7)
	le.PutUint64(h[56:64], words.Part8)
	return h
}
