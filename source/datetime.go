package source

import (
	"encoding/binary"
	"time"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

const (
	utcStrLayout   = time.RFC3339
	naiveStrLayout = "2006-01-02T15:04:05"
)

func unitToMillis(v int64, unit datatype.TimeUnit) int64 {
	switch unit {
	case datatype.Second:
		return v * 1000
	case datatype.Millisecond:
		return v
	case datatype.Microsecond:
		return v / 1000
	case datatype.Nanosecond:
		return v / 1_000_000
	default:
		return v
	}
}

// dateTimeSource backs Date64 and Timestamp, emitting a formatted
// string when the field's strategy requests it (mirroring
// builder.dateTimeBuilder's string acceptance), otherwise a raw I64.
type dateTimeSource struct {
	field    datatype.Field
	unit     datatype.TimeUnit
	values   []byte
	validity []byte
	n        int
}

func newDateTimeSource(f datatype.Field, arr *builder.Array) *dateTimeSource {
	unit := datatype.Millisecond
	if ts, ok := f.Type.(datatype.TimestampDataType); ok {
		unit = ts.Unit
	}
	return &dateTimeSource{field: f, unit: unit, values: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}

func (s *dateTimeSource) Len() int { return s.n }
func (s *dateTimeSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	v := int64(binary.LittleEndian.Uint64(s.values[row*8:]))
	switch s.field.Strategy {
	case datatype.UtcStrAsDate64:
		t := time.UnixMilli(unitToMillis(v, s.unit)).UTC()
		return append(dst, event.NewStr(t.Format(utcStrLayout)))
	case datatype.NaiveStrAsDate64:
		t := time.UnixMilli(unitToMillis(v, s.unit)).UTC()
		return append(dst, event.NewStr(t.Format(naiveStrLayout)))
	default:
		return append(dst, event.NewI64(v))
	}
}
