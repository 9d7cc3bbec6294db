package source

import (
	"encoding/binary"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// binarySource backs Utf8/LargeUtf8/Binary/LargeBinary.
type binarySource struct {
	field    datatype.Field
	isLarge  bool
	isUtf8   bool
	offsets  []byte
	data     []byte
	validity []byte
	n        int
}

func newBinarySource(f datatype.Field, arr *builder.Array, isLarge, isUtf8 bool) *binarySource {
	return &binarySource{
		field: f, isLarge: isLarge, isUtf8: isUtf8,
		offsets: arr.Buffers[0], data: arr.Buffers[1], validity: arr.Validity, n: arr.Length,
	}
}

func (s *binarySource) Len() int { return s.n }

func (s *binarySource) bounds(row int) (start, end int64) {
	if s.isLarge {
		start = int64(binary.LittleEndian.Uint64(s.offsets[row*8:]))
		end = int64(binary.LittleEndian.Uint64(s.offsets[(row+1)*8:]))
	} else {
		start = int64(int32(binary.LittleEndian.Uint32(s.offsets[row*4:])))
		end = int64(int32(binary.LittleEndian.Uint32(s.offsets[(row+1)*4:])))
	}
	return start, end
}

func (s *binarySource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	start, end := s.bounds(row)
	raw := s.data[start:end]
	if s.isUtf8 {
		return append(dst, event.NewStr(string(raw)))
	}
	return append(dst, event.NewBytes(raw))
}

// fixedSizeBinarySource backs FixedSizeBinary(n).
type fixedSizeBinarySource struct {
	field    datatype.Field
	width    int
	data     []byte
	validity []byte
	n        int
}

func newFixedSizeBinarySource(f datatype.Field, arr *builder.Array) *fixedSizeBinarySource {
	width := int(f.Type.(datatype.FixedSizeBinaryDataType).ByteWidth)
	return &fixedSizeBinarySource{field: f, width: width, data: arr.Buffers[0], validity: arr.Validity, n: arr.Length}
}

func (s *fixedSizeBinarySource) Len() int { return s.n }
func (s *fixedSizeBinarySource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	off := row * s.width
	return append(dst, event.NewBytes(s.data[off:off+s.width]))
}
