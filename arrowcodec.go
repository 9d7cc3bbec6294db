// Package arrowcodec is a type-directed codec between a generic,
// record-oriented value-protocol event stream and columnar arrays laid
// out in the Arrow in-memory format. The core packages — datatype,
// event, builder, source, codec, trace, dsl — can be used directly;
// Marshal/Unmarshal below are thin convenience entry points tying
// schema and records to a Serializer/Deserializer pair, the way the
// teacher's perffile package exposes a small top-level Open/Example
// surface over its internal decoder.
package arrowcodec

import (
	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codec"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// Marshal runs every record in records through a Serializer built for
// schema and returns the finalized per-field arrays.
func Marshal(schema []datatype.Field, records [][]event.Event, opts builder.Options) ([]*builder.Array, error) {
	s, err := codec.NewSerializer(schema, opts)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := s.AppendRecord(event.NewCursor(rec)); err != nil {
			return nil, err
		}
	}
	return s.Finish()
}

// Unmarshal walks arrays in lock-step against schema and returns one
// event slice per row, each a full StartStruct...EndStruct record.
func Unmarshal(schema []datatype.Field, arrays []*builder.Array) ([][]event.Event, error) {
	d, err := codec.NewDeserializer(schema, arrays)
	if err != nil {
		return nil, err
	}
	out := make([][]event.Event, 0, d.Rows())
	for {
		rec, ok := d.Next(nil)
		if !ok {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}
