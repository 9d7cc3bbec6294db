package builder

import (
	"time"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/internal/buflayout"
)

// These layouts match the scenarios in SPEC_FULL.md §8: a UTC
// "Z"-suffixed RFC3339 string for UtcStrAsDate64, a timezone-less
// date-time string for NaiveStrAsDate64.
const (
	utcStrLayout   = time.RFC3339
	naiveStrLayout = "2006-01-02T15:04:05"
)

// millisToUnit converts a millisecond count (a time.Time's UnixMilli())
// into the column's TimeUnit (Second/Millisecond/Microsecond/Nanosecond).
func millisToUnit(ms int64, unit datatype.TimeUnit) int64 {
	switch unit {
	case datatype.Second:
		return ms / 1000
	case datatype.Millisecond:
		return ms
	case datatype.Microsecond:
		return ms * 1000
	case datatype.Nanosecond:
		return ms * 1_000_000
	default:
		return ms
	}
}

// dateTimeBuilder backs Date64 and Timestamp: an i64 values buffer,
// with an additional string-parsing path activated by the
// UtcStrAsDate64/NaiveStrAsDate64 strategies (SPEC_FULL.md §3, §8).
type dateTimeBuilder struct {
	field    datatype.Field
	unit     datatype.TimeUnit
	values   buflayout.BufEncoder
	validity *buflayout.Bitmap
	n        int
}

func newDateTimeBuilder(f datatype.Field, bits int) (*dateTimeBuilder, error) {
	unit := datatype.Millisecond
	if ts, ok := f.Type.(datatype.TimestampDataType); ok {
		unit = ts.Unit
	}
	return &dateTimeBuilder{field: f, unit: unit, validity: buflayout.NewBitmap()}, nil
}

func (b *dateTimeBuilder) parseStr(s string) (int64, error) {
	var layout string
	switch b.field.Strategy {
	case datatype.UtcStrAsDate64:
		layout = utcStrLayout
	case datatype.NaiveStrAsDate64:
		layout = naiveStrLayout
	default:
		return 0, codecerr.New(codecerr.SchemaMismatch,
			"column %q: string value requires UtcStrAsDate64 or NaiveStrAsDate64 strategy", b.field.Name).WithColumn(b.field.Name)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, codecerr.Wrap(codecerr.Parse, err, "column %q row %d: parsing date-time string %q", b.field.Name, b.n, s).WithColumn(b.field.Name).WithRow(b.n)
	}
	return millisToUnit(t.UnixMilli(), b.unit), nil
}

func (b *dateTimeBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "date-time value or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.values.PutI64(0)
		b.validity.Append(false)
		b.n++
		return nil
	}
	var v int64
	switch e.Kind {
	case event.Str:
		parsed, err := b.parseStr(e.Str)
		if err != nil {
			return err
		}
		v = parsed
	case event.I8, event.I16, event.I32, event.I64, event.U8, event.U16, event.U32, event.U64:
		iv, ok := scalarAsInt64(e)
		if !ok {
			return mismatch(b.field.Name, e, "date-time value")
		}
		v = iv
	default:
		return mismatch(b.field.Name, e, "date-time value")
	}
	b.values.PutI64(v)
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *dateTimeBuilder) Len() int { return b.n }

func (b *dateTimeBuilder) Finish() (*Array, error) {
	a := &Array{Type: b.field.Type, Length: b.n, Buffers: [][]byte{b.values.Bytes()}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}
