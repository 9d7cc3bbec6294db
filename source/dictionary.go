package source

import (
	"encoding/binary"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// dictionarySource backs Dictionary(indexType, valueType): reads the
// index for the row, then delegates to the values Source for that
// index (the inverse of builder.dictionaryBuilder's dedup-on-insert).
type dictionarySource struct {
	field     datatype.Field
	indexBits int
	keys      []byte
	values    Source
	validity  []byte
	n         int
}

func newDictionarySource(f datatype.Field, arr *builder.Array) (*dictionarySource, error) {
	dt, ok := f.Type.(datatype.DictionaryDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newDictionarySource: field %q is not a Dictionary type", f.Name)
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
	values, err := NewForField(valueField, arr.Dictionary)
	if err != nil {
		return nil, err
	}
	return &dictionarySource{field: f, indexBits: bits, keys: arr.Buffers[0], values: values, validity: arr.Validity, n: arr.Length}, nil
}

func (s *dictionarySource) Len() int { return s.n }

func (s *dictionarySource) index(row int) int {
	switch s.indexBits {
	case 8:
		return int(s.keys[row])
	case 16:
		return int(binary.LittleEndian.Uint16(s.keys[row*2:]))
	case 32:
		return int(binary.LittleEndian.Uint32(s.keys[row*4:]))
	default:
		return int(binary.LittleEndian.Uint64(s.keys[row*8:]))
	}
}

func (s *dictionarySource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	return s.values.Emit(s.index(row), dst)
}
