package buflayout

import "encoding/binary"

// BufEncoder is the write-side dual of BufDecoder: a growable byte
// buffer with typed append methods, used by column builders to
// accumulate a values buffer alongside their offsets/validity.
type BufEncoder struct{ buf []byte }

func (b *BufEncoder) Bytes() []byte { return b.buf }
func (b *BufEncoder) Len() int      { return len(b.buf) }

func (b *BufEncoder) PutBytes(p []byte) { b.buf = append(b.buf, p...) }

func (b *BufEncoder) PutU8(v uint8) { b.buf = append(b.buf, v) }
func (b *BufEncoder) PutI8(v int8)  { b.PutU8(uint8(v)) }

func (b *BufEncoder) PutU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}
func (b *BufEncoder) PutI16(v int16) { b.PutU16(uint16(v)) }

func (b *BufEncoder) PutU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}
func (b *BufEncoder) PutI32(v int32) { b.PutU32(uint32(v)) }

func (b *BufEncoder) PutU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}
func (b *BufEncoder) PutI64(v int64) { b.PutU64(uint64(v)) }

// PutDecimal128 appends the 16-byte little-endian two's-complement
// encoding of a value given as low/high uint64 halves.
func (b *BufEncoder) PutDecimal128(lo, hi uint64) {
	b.PutU64(lo)
	b.PutU64(hi)
}
