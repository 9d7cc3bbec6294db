// Package codec implements the two stream drivers that bridge the
// event protocol to columnar arrays: Serializer (records -> arrays)
// and Deserializer (arrays -> records), per SPEC_FULL.md §4.4-4.5.
package codec

import (
	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/source"
)

// Serializer drives one top-level builder per schema field, routing
// each record's events by field name. It owns no buffering across rows
// beyond what the builders themselves retain.
type Serializer struct {
	fields   []datatype.Field
	builders []builder.Builder
	index    map[string]int
	rows     int
}

// NewSerializer builds one column builder per field in schema, in
// order. opts configures every builder uniformly (SPEC_FULL.md §4.2).
func NewSerializer(schema []datatype.Field, opts builder.Options) (*Serializer, error) {
	s := &Serializer{
		fields:   schema,
		builders: make([]builder.Builder, len(schema)),
		index:    make(map[string]int, len(schema)),
	}
	for i, f := range schema {
		b, err := builder.NewForField(f, opts)
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "building column %q", f.Name)
		}
		s.builders[i] = b
		s.index[f.Name] = i
	}
	return s, nil
}

// AppendRecord consumes one full record event stream — StartStruct,
// then a FieldName/value pair per top-level field, then EndStruct —
// and routes each child into the matching column builder, asserting
// every column advanced by exactly one row (spec.md §4.4).
func (s *Serializer) AppendRecord(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok || e.Kind != event.StartStruct {
		return codecerr.New(codecerr.StructuralError, "row %d: expected StartStruct, got %s", s.rows, e.Kind).WithRow(s.rows)
	}
	before := make([]int, len(s.builders))
	for i, b := range s.builders {
		before[i] = b.Len()
	}
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "row %d: unterminated record", s.rows).WithRow(s.rows)
		}
		if next.Kind == event.EndStruct {
			c.Next()
			break
		}
		nameEv, ok := c.Next()
		if !ok || nameEv.Kind != event.FieldName {
			return codecerr.New(codecerr.StructuralError, "row %d: expected FieldName, got %s", s.rows, nameEv.Kind).WithRow(s.rows)
		}
		idx, found := s.index[nameEv.Str]
		if !found {
			return codecerr.New(codecerr.SchemaMismatch, "row %d: unknown top-level field %q", s.rows, nameEv.Str).WithRow(s.rows)
		}
		if err := s.builders[idx].Append(c); err != nil {
			return codecerr.Wrap(codecerr.StructuralError, err, "row %d column %q", s.rows, s.fields[idx].Name).WithRow(s.rows)
		}
	}
	for i, b := range s.builders {
		if b.Len() != before[i]+1 {
			return codecerr.New(codecerr.StructuralError,
				"row %d: column %q did not advance exactly one row", s.rows, s.fields[i].Name).WithRow(s.rows)
		}
	}
	s.rows++
	return nil
}

// Rows reports how many rows have been appended so far.
func (s *Serializer) Rows() int { return s.rows }

// Finish finalizes every column builder in schema order, returning one
// Array per field. Calling Finish is terminal: the Serializer must not
// be reused afterward (its builders may have released their buffers).
func (s *Serializer) Finish() ([]*builder.Array, error) {
	out := make([]*builder.Array, len(s.builders))
	for i, b := range s.builders {
		arr, err := b.Finish()
		if err != nil {
			return nil, codecerr.Wrap(codecerr.Internal, err, "finishing column %q", s.fields[i].Name)
		}
		out[i] = arr
	}
	return out, nil
}

// Deserializer walks a set of finalized arrays in lock-step, emitting
// the events for row after row until every array is exhausted.
type Deserializer struct {
	fields  []datatype.Field
	sources []source.Source
	rows    int
	pos     int
}

// NewDeserializer builds one column source per field, wrapping the
// corresponding array. len(schema) must equal len(arrays), and every
// array's Length must agree (spec.md §8's "column-length agreement"
// testable property).
func NewDeserializer(schema []datatype.Field, arrays []*builder.Array) (*Deserializer, error) {
	if len(schema) != len(arrays) {
		return nil, codecerr.New(codecerr.StructuralError, "schema has %d fields but %d arrays were given", len(schema), len(arrays))
	}
	d := &Deserializer{fields: schema, sources: make([]source.Source, len(schema))}
	for i, f := range schema {
		src, err := source.NewForField(f, arrays[i])
		if err != nil {
			return nil, codecerr.Wrap(codecerr.SchemaInvalid, err, "building column source %q", f.Name)
		}
		if i == 0 {
			d.rows = src.Len()
		} else if src.Len() != d.rows {
			return nil, codecerr.New(codecerr.StructuralError,
				"column %q has length %d, expected %d to match column %q", f.Name, src.Len(), d.rows, schema[0].Name).WithColumn(f.Name)
		}
		d.sources[i] = src
	}
	return d, nil
}

// Rows reports the row count every column agreed on.
func (d *Deserializer) Rows() int { return d.rows }

// Next emits the next full record: StartStruct, then a field-name
// event and the column source's events for each schema field, then
// EndStruct (spec.md §4.5). It reports false once every row has been
// emitted.
func (d *Deserializer) Next(dst []event.Event) ([]event.Event, bool) {
	if d.pos >= d.rows {
		return dst, false
	}
	dst = append(dst, event.New(event.StartStruct))
	for i, src := range d.sources {
		dst = append(dst, event.NewFieldName(d.fields[i].Name))
		dst = src.Emit(d.pos, dst)
	}
	dst = append(dst, event.New(event.EndStruct))
	d.pos++
	return dst, true
}
