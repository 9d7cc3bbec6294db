package builder

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/internal/buflayout"
)

// dictionaryKey turns a scalar/Null event into a comparable map key.
// Dictionary values are scalar in every schema this codec supports
// (Utf8/Binary/int/float leaves), so a formatted string is sufficient
// to distinguish them.
func dictionaryKey(e event.Event) (string, error) {
	switch e.Kind {
	case event.Str:
		return "s:" + e.Str, nil
	case event.Bytes:
		return fmt.Sprintf("b:%x", e.Byte), nil
	case event.I8, event.I16, event.I32, event.I64:
		return fmt.Sprintf("i:%d", e.I64), nil
	case event.U8, event.U16, event.U32, event.U64:
		return fmt.Sprintf("u:%d", e.U64), nil
	case event.F32:
		return fmt.Sprintf("f32:%v", e.F32), nil
	case event.F64:
		return fmt.Sprintf("f64:%v", e.F64), nil
	case event.Bool:
		return fmt.Sprintf("bool:%v", e.Bool), nil
	default:
		return "", codecerr.New(codecerr.SchemaMismatch, "value is not a valid dictionary key event: %s", e.Kind)
	}
}

// dictionaryBuilder backs Dictionary(indexType, valueType): keys
// buffer sized to indexType, plus a deduplicated values column built
// by appending each distinct value to an inner builder exactly once,
// in first-seen order (an ordered map, grounded on the corpus's use of
// github.com/wk8/go-ordered-map for deterministic iteration order).
type dictionaryBuilder struct {
	field     datatype.Field
	indexBits int
	valueB    Builder
	seen      *orderedmap.OrderedMap[string, int]
	keys      buflayout.BufEncoder
	validity  *buflayout.Bitmap
	n         int
}

func newDictionaryBuilder(f datatype.Field) (*dictionaryBuilder, error) {
	dt, ok := f.Type.(datatype.DictionaryDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newDictionaryBuilder: field %q is not a Dictionary type", f.Name)
	}
	bits := 32
	switch dt.IndexType.ID() {
	case datatype.Int8, datatype.Uint8:
		bits = 8
	case datatype.Int16, datatype.Uint16:
		bits = 16
	case datatype.Int32, datatype.Uint32:
		bits = 32
	case datatype.Int64, datatype.Uint64:
		bits = 64
	}
	valueField := datatype.Field{Name: "values", Type: dt.ValueType}
	valueB, err := NewForField(valueField, Options{})
	if err != nil {
		return nil, err
	}
	return &dictionaryBuilder{
		field:     f,
		indexBits: bits,
		valueB:    valueB,
		seen:      orderedmap.New[string, int](),
		validity:  buflayout.NewBitmap(),
	}, nil
}

func (b *dictionaryBuilder) indexMax() int64 {
	switch b.indexBits {
	case 8:
		return 1<<7 - 1
	case 16:
		return 1<<15 - 1
	case 32:
		return 1<<31 - 1
	default:
		return 1<<63 - 1
	}
}

func (b *dictionaryBuilder) putIndex(idx int) {
	switch b.indexBits {
	case 8:
		b.keys.PutI8(int8(idx))
	case 16:
		b.keys.PutI16(int16(idx))
	case 32:
		b.keys.PutI32(int32(idx))
	default:
		b.keys.PutI64(int64(idx))
	}
}

func (b *dictionaryBuilder) Append(c *event.Cursor) error {
	e, ok := c.Peek()
	if !ok {
		return mismatch(b.field.Name, e, "dictionary value or Null")
	}
	if e.Kind == event.Null {
		c.Next()
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.putIndex(0)
		b.validity.Append(false)
		b.n++
		return nil
	}
	key, err := dictionaryKey(e)
	if err != nil {
		return err
	}
	idx, found := b.seen.Get(key)
	if !found {
		idx = b.seen.Len()
		if int64(idx) > b.indexMax() {
			return codecerr.New(codecerr.OutOfRange, "column %q: dictionary exceeds %d-bit index capacity", b.field.Name, b.indexBits).WithColumn(b.field.Name)
		}
		if err := b.valueB.Append(c); err != nil {
			return err
		}
		b.seen.Set(key, idx)
	} else {
		c.Next() // already materialized; discard the duplicate scalar event
	}
	b.putIndex(idx)
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *dictionaryBuilder) Len() int { return b.n }

func (b *dictionaryBuilder) Finish() (*Array, error) {
	valArr, err := b.valueB.Finish()
	if err != nil {
		return nil, err
	}
	a := &Array{
		Type:       b.field.Type,
		Length:     b.n,
		Buffers:    [][]byte{b.keys.Bytes()},
		Dictionary: valArr,
	}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}
