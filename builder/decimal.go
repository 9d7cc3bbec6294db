package builder

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/internal/buflayout"
)

// decimal128Builder backs Decimal128(precision, scale). Values are
// rescaled to the column's declared scale by truncation toward zero
// (SPEC_FULL.md Open Question (b)), then range-checked against the
// declared precision before being packed into the 16-byte
// little-endian two's-complement layout.
type decimal128Builder struct {
	field    datatype.Field
	scale    int32
	maxAbs   *big.Int // 10^precision - 1, the largest representable unscaled magnitude
	values   buflayout.BufEncoder
	validity *buflayout.Bitmap
	n        int
}

func newDecimal128Builder(f datatype.Field) *decimal128Builder {
	dt := f.Type.(datatype.Decimal128DataType)
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(dt.Precision)), nil)
	limit.Sub(limit, big.NewInt(1))
	return &decimal128Builder{field: f, scale: dt.Scale, maxAbs: limit, validity: buflayout.NewBitmap()}
}

func (b *decimal128Builder) parse(e event.Event) (decimal.Decimal, error) {
	switch e.Kind {
	case event.Str:
		d, err := decimal.NewFromString(e.Str)
		if err != nil {
			return decimal.Decimal{}, codecerr.Wrap(codecerr.Parse, err, "column %q row %d: parsing decimal literal %q", b.field.Name, b.n, e.Str).WithColumn(b.field.Name).WithRow(b.n)
		}
		return d, nil
	case event.F64:
		return decimal.NewFromFloat(e.F64), nil
	case event.F32:
		return decimal.NewFromFloat32(e.F32), nil
	case event.I8, event.I16, event.I32, event.I64:
		return decimal.NewFromInt(e.I64), nil
	case event.U8, event.U16, event.U32, event.U64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(e.U64), 0), nil
	default:
		return decimal.Decimal{}, mismatch(b.field.Name, e, "decimal value")
	}
}

// packDecimal128 truncates toward zero to scale and writes the 16-byte
// two's-complement little-endian encoding, grounded on the rescale
// algorithm used across the corpus's decimal-to-Arrow conversions.
func (b *decimal128Builder) packDecimal128(d decimal.Decimal) error {
	rescaled := d.Truncate(b.scale)
	unscaled := rescaled.Coefficient() // sign-carrying integer at d's own exponent
	// Coefficient() is at rescaled.Exponent(); shift to exactly -scale.
	shift := int32(-rescaled.Exponent()) - b.scale
	if shift > 0 {
		unscaled = new(big.Int).Quo(unscaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(shift)), nil))
	} else if shift < 0 {
		unscaled = new(big.Int).Mul(unscaled, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-shift)), nil))
	}
	abs := new(big.Int).Abs(unscaled)
	if abs.Cmp(b.maxAbs) > 0 {
		return codecerr.New(codecerr.OutOfRange, "column %q row %d: decimal value exceeds Decimal128(%s) capacity",
			b.field.Name, b.n, b.field.Type).WithColumn(b.field.Name).WithRow(b.n)
	}

	var twosComp big.Int
	if unscaled.Sign() < 0 {
		// 2^128 + unscaled
		mod := new(big.Int).Lsh(big.NewInt(1), 128)
		twosComp.Add(mod, unscaled)
	} else {
		twosComp.Set(unscaled)
	}
	buf := make([]byte, 16)
	bytesBE := twosComp.FillBytes(make([]byte, 16)) // big-endian
	for i := 0; i < 16; i++ {
		buf[i] = bytesBE[15-i]
	}
	lo := leU64(buf[0:8])
	hi := leU64(buf[8:16])
	b.values.PutDecimal128(lo, hi)
	return nil
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func (b *decimal128Builder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "decimal value or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.values.PutDecimal128(0, 0)
		b.validity.Append(false)
		b.n++
		return nil
	}
	d, err := b.parse(e)
	if err != nil {
		return err
	}
	if err := b.packDecimal128(d); err != nil {
		return err
	}
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *decimal128Builder) Len() int { return b.n }

func (b *decimal128Builder) Finish() (*Array, error) {
	a := &Array{Type: b.field.Type, Length: b.n, Buffers: [][]byte{b.values.Bytes()}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}
