package builder

import (
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// Builder is the push-down automaton every column builder implements.
// Append consumes exactly one value's worth of events from c — a
// single scalar/Null event for a leaf type, or a full
// Start...End-balanced run for a nested type — and appends it as the
// next row.
type Builder interface {
	Append(c *event.Cursor) error
	Len() int
	Finish() (*Array, error)
}

// Options configures builder construction (SPEC_FULL.md §4.2, Open
// Question (a)).
type Options struct {
	// ErrOnUnknownField makes StructBuilder reject field names not in
	// its schema instead of the default (ignore/drop).
	ErrOnUnknownField bool
}

// NewForField constructs the builder appropriate for f.Type, dispatching
// on Kind — the closed-variant switch described in SPEC_FULL.md §3.
func NewForField(f datatype.Field, opts Options) (Builder, error) {
	switch f.Type.ID() {
	case datatype.Null:
		return newNullBuilder(f), nil
	case datatype.Bool:
		return newBoolBuilder(f), nil
	case datatype.Int8:
		return newIntBuilder(f, 8, true), nil
	case datatype.Int16:
		return newIntBuilder(f, 16, true), nil
	case datatype.Int32:
		return newIntBuilder(f, 32, true), nil
	case datatype.Int64:
		return newIntBuilder(f, 64, true), nil
	case datatype.Uint8:
		return newIntBuilder(f, 8, false), nil
	case datatype.Uint16:
		return newIntBuilder(f, 16, false), nil
	case datatype.Uint32:
		return newIntBuilder(f, 32, false), nil
	case datatype.Uint64:
		return newIntBuilder(f, 64, false), nil
	case datatype.Float32:
		return newFloat32Builder(f), nil
	case datatype.Float64:
		return newFloat64Builder(f), nil
	case datatype.Float16:
		return newFloat16Builder(f), nil
	case datatype.Utf8:
		return newBinaryBuilder(f, false, true), nil
	case datatype.LargeUtf8:
		return newBinaryBuilder(f, true, true), nil
	case datatype.Binary:
		return newBinaryBuilder(f, false, false), nil
	case datatype.LargeBinary:
		return newBinaryBuilder(f, true, false), nil
	case datatype.FixedSizeBinary:
		return newFixedSizeBinaryBuilder(f), nil
	case datatype.Date32:
		return newIntBuilder(f, 32, true), nil
	case datatype.Date64:
		return newDateTimeBuilder(f, 64)
	case datatype.Time32:
		return newIntBuilder(f, 32, true), nil
	case datatype.Time64:
		return newIntBuilder(f, 64, true), nil
	case datatype.Timestamp:
		return newDateTimeBuilder(f, 64)
	case datatype.Duration:
		return newIntBuilder(f, 64, true), nil
	case datatype.Decimal128:
		return newDecimal128Builder(f), nil
	case datatype.List:
		return newListBuilder(f, opts, false)
	case datatype.LargeList:
		return newListBuilder(f, opts, true)
	case datatype.FixedSizeList:
		return newFixedSizeListBuilder(f, opts)
	case datatype.Struct:
		return newStructBuilder(f, opts)
	case datatype.Union:
		return newUnionBuilder(f, opts)
	case datatype.Map:
		return newMapBuilder(f, opts)
	case datatype.Dictionary:
		return newDictionaryBuilder(f)
	default:
		return nil, codecerr.New(codecerr.Unsupported, "no builder implemented for %s", f.Type.ID())
	}
}

// mismatch is a small helper every leaf builder uses to report an
// event that doesn't match its expected shape.
func mismatch(name string, e event.Event, want string) error {
	return codecerr.New(codecerr.SchemaMismatch, "column %q: expected %s, got %s", name, want, e.Kind).WithColumn(name)
}
