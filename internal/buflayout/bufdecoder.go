// Package buflayout implements the bit-exact Arrow buffer layouts used
// by the builder and source packages: validity bitmaps (LSB-first),
// monotonic offsets, and little-endian fixed-width values including
// Decimal128's 16-byte two's-complement form.
//
// BufDecoder is a read cursor over a borrowed []byte, styled after the
// teacher's perffile.bufDecoder: each typed read method advances the
// cursor and returns the decoded value, so callers chain reads without
// tracking an explicit offset.
package buflayout

import "encoding/binary"

type BufDecoder struct {
	buf []byte
}

func NewDecoder(buf []byte) *BufDecoder { return &BufDecoder{buf: buf} }

func (b *BufDecoder) Remaining() int { return len(b.buf) }

func (b *BufDecoder) Skip(n int) { b.buf = b.buf[n:] }

func (b *BufDecoder) Bytes(n int) []byte {
	x := b.buf[:n:n]
	b.buf = b.buf[n:]
	return x
}

func (b *BufDecoder) U8() uint8 {
	x := b.buf[0]
	b.buf = b.buf[1:]
	return x
}

func (b *BufDecoder) I8() int8 { return int8(b.U8()) }

func (b *BufDecoder) U16() uint16 {
	x := binary.LittleEndian.Uint16(b.buf)
	b.buf = b.buf[2:]
	return x
}

func (b *BufDecoder) I16() int16 { return int16(b.U16()) }

func (b *BufDecoder) U32() uint32 {
	x := binary.LittleEndian.Uint32(b.buf)
	b.buf = b.buf[4:]
	return x
}

func (b *BufDecoder) I32() int32 { return int32(b.U32()) }

func (b *BufDecoder) U64() uint64 {
	x := binary.LittleEndian.Uint64(b.buf)
	b.buf = b.buf[8:]
	return x
}

func (b *BufDecoder) I64() int64 { return int64(b.U64()) }

// Decimal128 decodes a 16-byte little-endian two's-complement value
// into its big.Int-compatible low/high uint64 halves (low first, as
// stored on the wire).
func (b *BufDecoder) Decimal128() (lo uint64, hi uint64) {
	lo = b.U64()
	hi = b.U64()
	return lo, hi
}
