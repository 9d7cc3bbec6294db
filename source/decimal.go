package source

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// decimal128Source backs Decimal128(precision, scale), emitting each
// value as its canonical decimal-literal string (the dual of
// builder.decimal128Builder's string/numeric acceptance).
type decimal128Source struct {
	field    datatype.Field
	scale    int32
	values   []byte
	validity []byte
	n        int
}

func newDecimal128Source(f datatype.Field, arr *builder.Array) *decimal128Source {
	dt := f.Type.(datatype.Decimal128DataType)
	return &decimal128Source{field: f, scale: dt.Scale, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}

func (s *decimal128Source) Len() int { return s.n }

func beU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func (s *decimal128Source) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	off := row * 16
	raw := s.values[off : off+16]
	// raw is little-endian [lo(8) hi(8)]; reassemble big-endian bytes
	// for big.Int.SetBytes.
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[15-i] = raw[i]
	}
	unsigned := new(big.Int).SetBytes(be)
	// If the top bit is set, this is the two's-complement encoding of a
	// negative value: subtract 2^128.
	if raw[15]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		unsigned.Sub(unsigned, mod)
	}
	d := decimal.NewFromBigInt(unsigned, -s.scale)
	return append(dst, event.NewStr(d.String()))
}
