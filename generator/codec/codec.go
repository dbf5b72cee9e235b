// Package codec packs arbitrary bytes into integers that a word sized RSA
// key can transform, and unpacks them again.
//
// Messages are split into big-endian blocks of [BlockSize] bytes. A block is
// therefore always smaller than 2^24, which is below every full width
// modulus of 32 or more bits. The last block is zero padded; the message
// length has to be passed to [Unpack].
//
// Short messages can instead be read as a single little-endian word with
// [Word], the way copying the bytes into an integer in memory does. The
// caller has to make sure that word is below the modulus.
package codec

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/crypto/cryptobyte"

	"github.com/wokdav/minirsa/generator/dcrypto/modarith"
)

// BlockSize is the number of message bytes per block.
const BlockSize = 3

var ErrBlockTooLarge = errors.New("codec: block does not fit into 24 bits")

// Pack splits msg into blocks.
func Pack[T modarith.Word](msg []byte) []T {
	padded := make([]byte, (len(msg)+BlockSize-1)/BlockSize*BlockSize)
	copy(padded, msg)

	s := cryptobyte.String(padded)
	blocks := make([]T, 0, len(padded)/BlockSize)
	for !s.Empty() {
		var v uint32
		if !s.ReadUint24(&v) {
			// cannot happen, padded is a multiple of BlockSize
			panic("codec: short block")
		}
		blocks = append(blocks, T(v))
	}

	return blocks
}

// Unpack joins blocks and truncates the result to length bytes.
func Unpack[T modarith.Word](blocks []T, length int) ([]byte, error) {
	if length < 0 || length > len(blocks)*BlockSize {
		return nil, fmt.Errorf("codec: %d blocks cannot hold %d bytes", len(blocks), length)
	}

	var b cryptobyte.Builder
	for i, v := range blocks {
		if uint64(v) >= 1<<24 {
			return nil, fmt.Errorf("%w: block %d is %d", ErrBlockTooLarge, i, v)
		}
		b.AddUint24(uint32(v))
	}

	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}

	return out[:length], nil
}

// Word reads msg as one little-endian word. ok is false if msg does not
// fit into T.
func Word[T modarith.Word](msg []byte) (w T, ok bool) {
	if len(msg)*8 > bits.Len64(uint64(^T(0))) {
		return 0, false
	}

	for i := len(msg) - 1; i >= 0; i-- {
		w = w<<8 | T(msg[i])
	}
	return w, true
}

// FromWord is the inverse of [Word]. Bytes of w beyond length must be zero.
func FromWord[T modarith.Word](w T, length int) ([]byte, error) {
	if length < 0 || length*8 > bits.Len64(uint64(^T(0))) {
		return nil, fmt.Errorf("codec: a word cannot hold %d bytes", length)
	}

	out := make([]byte, length)
	for i := range out {
		out[i] = byte(w)
		w >>= 8
	}
	if w != 0 {
		return nil, fmt.Errorf("codec: word has more than %d significant bytes", length)
	}

	return out, nil
}
