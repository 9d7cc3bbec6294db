package source

import (
	"encoding/binary"
	"math"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// boolSource backs DataType Bool: values are bit-packed LSB-first,
// identically to the validity bitmap layout.
type boolSource struct {
	field    datatype.Field
	values   []byte
	validity []byte
	n        int
}

func newBoolSource(f datatype.Field, arr *builder.Array) *boolSource {
	return &boolSource{field: f, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}

func (s *boolSource) Len() int { return s.n }
func (s *boolSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	byteIdx := row / 8
	bitIdx := uint(row % 8)
	v := s.values[byteIdx]&(1<<bitIdx) != 0
	return append(dst, event.NewBool(v))
}

// intSource backs every fixed-width integer Kind, reused directly for
// Date32/Time32/Time64/Duration, whose wire representation is also a
// plain fixed-width integer.
type intSource struct {
	field    datatype.Field
	bits     int
	signed   bool
	values   []byte
	validity []byte
	n        int
}

func newIntSource(f datatype.Field, arr *builder.Array, bits int, signed bool) *intSource {
	return &intSource{field: f, bits: bits, signed: signed, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}

func (s *intSource) Len() int { return s.n }

func (s *intSource) width() int { return s.bits / 8 }

func (s *intSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	off := row * s.width()
	switch s.bits {
	case 8:
		v := s.values[off]
		if s.signed {
			return append(dst, event.NewI8(int8(v)))
		}
		return append(dst, event.NewU8(v))
	case 16:
		v := binary.LittleEndian.Uint16(s.values[off:])
		if s.signed {
			return append(dst, event.NewI16(int16(v)))
		}
		return append(dst, event.NewU16(v))
	case 32:
		v := binary.LittleEndian.Uint32(s.values[off:])
		if s.signed {
			return append(dst, event.NewI32(int32(v)))
		}
		return append(dst, event.NewU32(v))
	default:
		v := binary.LittleEndian.Uint64(s.values[off:])
		if s.signed {
			return append(dst, event.NewI64(int64(v)))
		}
		return append(dst, event.NewU64(v))
	}
}

type float32Source struct {
	field    datatype.Field
	values   []byte
	validity []byte
	n        int
}

func newFloat32Source(f datatype.Field, arr *builder.Array) *float32Source {
	return &float32Source{field: f, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}
func (s *float32Source) Len() int { return s.n }
func (s *float32Source) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	bits := binary.LittleEndian.Uint32(s.values[row*4:])
	return append(dst, event.NewF32(math.Float32frombits(bits)))
}

type float64Source struct {
	field    datatype.Field
	values   []byte
	validity []byte
	n        int
}

func newFloat64Source(f datatype.Field, arr *builder.Array) *float64Source {
	return &float64Source{field: f, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}
func (s *float64Source) Len() int { return s.n }
func (s *float64Source) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	bits := binary.LittleEndian.Uint64(s.values[row*8:])
	return append(dst, event.NewF64(math.Float64frombits(bits)))
}

type float16Source struct {
	field    datatype.Field
	values   []byte
	validity []byte
	n        int
}

func newFloat16Source(f datatype.Field, arr *builder.Array) *float16Source {
	return &float16Source{field: f, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}
func (s *float16Source) Len() int { return s.n }
func (s *float16Source) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	bits := binary.LittleEndian.Uint16(s.values[row*2:])
	return append(dst, event.NewF32(float16BitsToFloat32(bits)))
}

// float16BitsToFloat32 converts an IEEE-754 half-precision bit pattern
// to float32 — the read-side dual of builder's float32ToFloat16Bits.
func float16BitsToFloat32(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)
	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3ff
	} else if exp == 0x1f {
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	exp = exp - 15 + 127
	return math.Float32frombits(sign | exp<<23 | mant<<13)
}
