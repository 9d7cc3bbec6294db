// Package source implements the per-DataType column sources: the dual
// of package builder. A Source wraps borrowed buffers from a finalized
// builder.Array and emits the Events for one row at a time, walked in
// lock-step by package codec's Deserializer (SPEC_FULL.md §4.3).
package source

import (
	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// Source is the read-side dual of builder.Builder: Emit appends the
// Events for row to dst and returns the extended slice. Nested sources
// consume a multi-event run (Start.../End...); leaf sources append a
// single scalar or Null event.
type Source interface {
	Emit(row int, dst []event.Event) []event.Event
	Len() int
}

// NewForField builds the Source appropriate for f.Type, wrapping arr —
// the dual dispatch of builder.NewForField, switching on the same Kind.
func NewForField(f datatype.Field, arr *builder.Array) (Source, error) {
	switch f.Type.ID() {
	case datatype.Null:
		return &nullSource{field: f, n: arr.Length}, nil
	case datatype.Bool:
		return newBoolSource(f, arr), nil
	case datatype.Int8:
		return newIntSource(f, arr, 8, true), nil
	case datatype.Int16:
		return newIntSource(f, arr, 16, true), nil
	case datatype.Int32:
		return newIntSource(f, arr, 32, true), nil
	case datatype.Int64:
		return newIntSource(f, arr, 64, true), nil
	case datatype.Uint8:
		return newIntSource(f, arr, 8, false), nil
	case datatype.Uint16:
		return newIntSource(f, arr, 16, false), nil
	case datatype.Uint32:
		return newIntSource(f, arr, 32, false), nil
	case datatype.Uint64:
		return newIntSource(f, arr, 64, false), nil
	case datatype.Float32:
		return newFloat32Source(f, arr), nil
	case datatype.Float64:
		return newFloat64Source(f, arr), nil
	case datatype.Float16:
		return newFloat16Source(f, arr), nil
	case datatype.Utf8, datatype.Binary:
		return newBinarySource(f, arr, false, f.Type.ID() == datatype.Utf8), nil
	case datatype.LargeUtf8, datatype.LargeBinary:
		return newBinarySource(f, arr, true, f.Type.ID() == datatype.LargeUtf8), nil
	case datatype.FixedSizeBinary:
		return newFixedSizeBinarySource(f, arr), nil
	case datatype.Date32:
		return newIntSource(f, arr, 32, true), nil
	case datatype.Date64:
		return newDateTimeSource(f, arr), nil
	case datatype.Time32:
		return newIntSource(f, arr, 32, true), nil
	case datatype.Time64:
		return newIntSource(f, arr, 64, true), nil
	case datatype.Timestamp:
		return newDateTimeSource(f, arr), nil
	case datatype.Duration:
		return newIntSource(f, arr, 64, true), nil
	case datatype.Decimal128:
		return newDecimal128Source(f, arr), nil
	case datatype.List:
		return newListSource(f, arr, false)
	case datatype.LargeList:
		return newListSource(f, arr, true)
	case datatype.FixedSizeList:
		return newFixedSizeListSource(f, arr)
	case datatype.Struct:
		return newStructSource(f, arr)
	case datatype.Union:
		return newUnionSource(f, arr)
	case datatype.Map:
		return newMapSource(f, arr)
	case datatype.Dictionary:
		return newDictionarySource(f, arr)
	default:
		return nil, codecerr.New(codecerr.Unsupported, "no source implemented for %s", f.Type.ID())
	}
}

// nullSource backs DataType Null.
type nullSource struct {
	field datatype.Field
	n     int
}

func (s *nullSource) Emit(row int, dst []event.Event) []event.Event {
	return append(dst, event.NullEvent)
}
func (s *nullSource) Len() int { return s.n }

// isValid reports whether row is non-null given a (possibly nil,
// meaning "not nullable, always valid") validity bitmap.
func isValid(validity []byte, row int) bool {
	if validity == nil {
		return true
	}
	byteIdx := row / 8
	bitIdx := uint(row % 8)
	if byteIdx >= len(validity) {
		return true
	}
	return validity[byteIdx]&(1<<bitIdx) != 0
}
