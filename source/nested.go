package source

import (
	"encoding/binary"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// listSource backs List/LargeList.
type listSource struct {
	field   datatype.Field
	isLarge bool
	offsets []byte
	child   Source
	validity []byte
	n       int
}

func newListSource(f datatype.Field, arr *builder.Array, isLarge bool) (*listSource, error) {
	var item datatype.Field
	switch lt := f.Type.(type) {
	case datatype.ListDataType:
		item = lt.Item
	case datatype.LargeListDataType:
		item = lt.Item
	default:
		return nil, codecerr.New(codecerr.Internal, "newListSource: field %q is not a List type", f.Name)
	}
	child, err := NewForField(item, arr.Children[0])
	if err != nil {
		return nil, err
	}
	return &listSource{field: f, isLarge: isLarge, offsets: arr.Buffers[0], child: child, validity: arr.Validity, n: arr.Length}, nil
}

func (s *listSource) Len() int { return s.n }

func (s *listSource) bounds(row int) (start, end int64) {
	if s.isLarge {
		start = int64(binary.LittleEndian.Uint64(s.offsets[row*8:]))
		end = int64(binary.LittleEndian.Uint64(s.offsets[(row+1)*8:]))
	} else {
		start = int64(int32(binary.LittleEndian.Uint32(s.offsets[row*4:])))
		end = int64(int32(binary.LittleEndian.Uint32(s.offsets[(row+1)*4:])))
	}
	return start, end
}

func (s *listSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	dst = append(dst, event.New(event.StartSequence))
	start, end := s.bounds(row)
	for i := start; i < end; i++ {
		dst = s.child.Emit(int(i), dst)
	}
	return append(dst, event.New(event.EndSequence))
}

// fixedSizeListSource backs FixedSizeList(child, n).
type fixedSizeListSource struct {
	field    datatype.Field
	width    int
	child    Source
	validity []byte
	n        int
}

func newFixedSizeListSource(f datatype.Field, arr *builder.Array) (*fixedSizeListSource, error) {
	lt, ok := f.Type.(datatype.FixedSizeListDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newFixedSizeListSource: field %q is not a FixedSizeList type", f.Name)
	}
	child, err := NewForField(lt.Item, arr.Children[0])
	if err != nil {
		return nil, err
	}
	return &fixedSizeListSource{field: f, width: int(lt.N), child: child, validity: arr.Validity, n: arr.Length}, nil
}

func (s *fixedSizeListSource) Len() int { return s.n }
func (s *fixedSizeListSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	dst = append(dst, event.New(event.StartSequence))
	base := row * s.width
	for i := 0; i < s.width; i++ {
		dst = s.child.Emit(base+i, dst)
	}
	return append(dst, event.New(event.EndSequence))
}

// structSource backs Struct.
type structSource struct {
	field    datatype.Field
	names    []string
	children []Source
	validity []byte
	n        int
}

func newStructSource(f datatype.Field, arr *builder.Array) (*structSource, error) {
	st, ok := f.Type.(datatype.StructDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newStructSource: field %q is not a Struct type", f.Name)
	}
	names := make([]string, len(st.Fields))
	children := make([]Source, len(st.Fields))
	for i, cf := range st.Fields {
		child, err := NewForField(cf, arr.Children[i])
		if err != nil {
			return nil, err
		}
		names[i] = cf.Name
		children[i] = child
	}
	return &structSource{field: f, names: names, children: children, validity: arr.Validity, n: arr.Length}, nil
}

func (s *structSource) Len() int { return s.n }
func (s *structSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	dst = append(dst, event.New(event.StartStruct))
	for i, child := range s.children {
		dst = append(dst, event.NewFieldName(s.names[i]))
		dst = child.Emit(row, dst)
	}
	return append(dst, event.New(event.EndStruct))
}

// unionSource backs Union.
type unionSource struct {
	field     datatype.Field
	mode      datatype.UnionMode
	names     []string
	children  []Source
	typeCodes []byte
	offsets   []byte // Dense only
	n         int
}

func newUnionSource(f datatype.Field, arr *builder.Array) (*unionSource, error) {
	ut, ok := f.Type.(datatype.UnionDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newUnionSource: field %q is not a Union type", f.Name)
	}
	names := make([]string, len(ut.Fields))
	children := make([]Source, len(ut.Fields))
	for i, vf := range ut.Fields {
		child, err := NewForField(vf, arr.Children[i])
		if err != nil {
			return nil, err
		}
		names[i] = vf.Name
		children[i] = child
	}
	u := &unionSource{field: f, mode: ut.Mode, names: names, children: children, typeCodes: arr.Buffers[0], n: arr.Length}
	if ut.Mode == datatype.Dense {
		u.offsets = arr.Buffers[1]
	}
	return u, nil
}

func (s *unionSource) Len() int { return s.n }
func (s *unionSource) Emit(row int, dst []event.Event) []event.Event {
	idx := int(int8(s.typeCodes[row]))
	dst = append(dst, event.NewVariantName(s.names[idx], idx))
	childRow := row
	if s.mode == datatype.Dense {
		childRow = int(int32(binary.LittleEndian.Uint32(s.offsets[row*4:])))
	}
	return s.children[idx].Emit(childRow, dst)
}

// mapSource backs Map.
type mapSource struct {
	field    datatype.Field
	offsets  []byte
	keyS     Source
	valS     Source
	validity []byte
	n        int
}

func newMapSource(f datatype.Field, arr *builder.Array) (Source, error) {
	if f.Strategy == datatype.MapAsStruct {
		// arr was produced by the mirrored MapAsStruct builder path, so
		// its Type/Children already describe a Struct, not a Map.
		structField := f
		structField.Type = arr.Type
		return newStructSource(structField, arr)
	}
	mt, ok := f.Type.(datatype.MapDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newMapSource: field %q is not a Map type", f.Name)
	}
	entries := arr.Children[0]
	keyField := datatype.Field{Name: "key", Type: mt.KeyType}
	valField := datatype.Field{Name: "value", Type: mt.ValueType, Nullable: mt.ValueNull}
	keyS, err := NewForField(keyField, entries.Children[0])
	if err != nil {
		return nil, err
	}
	valS, err := NewForField(valField, entries.Children[1])
	if err != nil {
		return nil, err
	}
	return &mapSource{field: f, offsets: arr.Buffers[0], keyS: keyS, valS: valS, validity: arr.Validity, n: arr.Length}, nil
}

func (s *mapSource) Len() int { return s.n }
func (s *mapSource) Emit(row int, dst []event.Event) []event.Event {
	if !isValid(s.validity, row) {
		return append(dst, event.NullEvent)
	}
	start := int32(binary.LittleEndian.Uint32(s.offsets[row*4:]))
	end := int32(binary.LittleEndian.Uint32(s.offsets[(row+1)*4:]))
	dst = append(dst, event.New(event.StartMap))
	for i := start; i < end; i++ {
		dst = append(dst, event.New(event.Item))
		dst = s.keyS.Emit(int(i), dst)
		dst = s.valS.Emit(int(i), dst)
	}
	return append(dst, event.New(event.EndMap))
}
