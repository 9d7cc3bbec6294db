package builder

import (
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/internal/buflayout"
)

// binaryBuilder backs Utf8/LargeUtf8/Binary/LargeBinary: an offsets
// buffer (i32 or i64, chosen by isLarge) plus a flat data buffer.
// isUtf8 only affects which Event.Kind is accepted (Str vs Bytes);
// the on-wire layout is identical.
type binaryBuilder struct {
	field    datatype.Field
	isLarge  bool
	isUtf8   bool
	data     buflayout.BufEncoder
	off32    *buflayout.Offsets32
	off64    *buflayout.Offsets64
	validity *buflayout.Bitmap
	n        int
}

func newBinaryBuilder(f datatype.Field, isLarge, isUtf8 bool) *binaryBuilder {
	b := &binaryBuilder{field: f, isLarge: isLarge, isUtf8: isUtf8, validity: buflayout.NewBitmap()}
	if isLarge {
		b.off64 = buflayout.NewOffsets64()
	} else {
		b.off32 = buflayout.NewOffsets32()
	}
	return b
}

func (b *binaryBuilder) wantName() string {
	if b.isUtf8 {
		return "Str"
	}
	return "Bytes"
}

func (b *binaryBuilder) pushLength(n int) {
	if b.isLarge {
		b.off64.Push(int64(n))
	} else {
		b.off32.Push(int32(n))
	}
}

func (b *binaryBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, b.wantName()+" or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.pushLength(0)
		b.validity.Append(false)
		b.n++
		return nil
	}
	var raw []byte
	switch {
	case b.isUtf8 && e.Kind == event.Str:
		raw = []byte(e.Str)
	case !b.isUtf8 && e.Kind == event.Bytes:
		raw = e.Byte
	default:
		return mismatch(b.field.Name, e, b.wantName())
	}
	b.data.PutBytes(raw)
	b.pushLength(len(raw))
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *binaryBuilder) Len() int { return b.n }

func (b *binaryBuilder) Finish() (*Array, error) {
	var offBuf []byte
	if b.isLarge {
		offBuf = int64sToBytes(b.off64.Values())
	} else {
		offBuf = int32sToBytes(b.off32.Values())
	}
	a := &Array{Type: b.field.Type, Length: b.n, Buffers: [][]byte{offBuf, b.data.Bytes()}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}

func int32sToBytes(vals []int32) []byte {
	var e buflayout.BufEncoder
	for _, v := range vals {
		e.PutI32(v)
	}
	return e.Bytes()
}

func int64sToBytes(vals []int64) []byte {
	var e buflayout.BufEncoder
	for _, v := range vals {
		e.PutI64(v)
	}
	return e.Bytes()
}

// fixedSizeBinaryBuilder backs FixedSizeBinary(n): a flat data buffer
// with no offsets, every element exactly ByteWidth bytes.
type fixedSizeBinaryBuilder struct {
	field    datatype.Field
	width    int32
	data     buflayout.BufEncoder
	validity *buflayout.Bitmap
	n        int
}

func newFixedSizeBinaryBuilder(f datatype.Field) *fixedSizeBinaryBuilder {
	width := f.Type.(datatype.FixedSizeBinaryDataType).ByteWidth
	return &fixedSizeBinaryBuilder{field: f, width: width, validity: buflayout.NewBitmap()}
}

func (b *fixedSizeBinaryBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "Bytes or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.data.PutBytes(make([]byte, b.width))
		b.validity.Append(false)
		b.n++
		return nil
	}
	if e.Kind != event.Bytes {
		return mismatch(b.field.Name, e, "Bytes")
	}
	if int32(len(e.Byte)) != b.width {
		return codecerr.New(codecerr.OutOfRange, "column %q row %d: expected %d bytes, got %d",
			b.field.Name, b.n, b.width, len(e.Byte)).WithColumn(b.field.Name).WithRow(b.n)
	}
	b.data.PutBytes(e.Byte)
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *fixedSizeBinaryBuilder) Len() int { return b.n }

func (b *fixedSizeBinaryBuilder) Finish() (*Array, error) {
	a := &Array{Type: b.field.Type, Length: b.n, Buffers: [][]byte{b.data.Bytes()}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}
