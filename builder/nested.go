package builder

import (
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/internal/buflayout"
)

// listBuilder backs List/LargeList: an offsets buffer plus a single
// child builder accumulating every element across every row.
type listBuilder struct {
	field    datatype.Field
	isLarge  bool
	child    Builder
	off32    *buflayout.Offsets32
	off64    *buflayout.Offsets64
	validity *buflayout.Bitmap
	n        int
}

func newListBuilder(f datatype.Field, opts Options, isLarge bool) (*listBuilder, error) {
	var item datatype.Field
	switch lt := f.Type.(type) {
	case datatype.ListDataType:
		item = lt.Item
	case datatype.LargeListDataType:
		item = lt.Item
	default:
		return nil, codecerr.New(codecerr.Internal, "newListBuilder: field %q is not a List type", f.Name)
	}
	child, err := NewForField(item, opts)
	if err != nil {
		return nil, err
	}
	b := &listBuilder{field: f, isLarge: isLarge, child: child, validity: buflayout.NewBitmap()}
	if isLarge {
		b.off64 = buflayout.NewOffsets64()
	} else {
		b.off32 = buflayout.NewOffsets32()
	}
	return b, nil
}

func (b *listBuilder) pushOffset() {
	childLen := int64(b.child.Len())
	if b.isLarge {
		b.off64.Push(childLen - b.off64.Last())
	} else {
		b.off32.Push(int32(childLen) - b.off32.Last())
	}
}

func (b *listBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "StartSequence or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.pushOffset()
		b.validity.Append(false)
		b.n++
		return nil
	}
	if e.Kind != event.StartSequence {
		return mismatch(b.field.Name, e, "StartSequence")
	}
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "column %q: unterminated sequence", b.field.Name).WithColumn(b.field.Name)
		}
		if next.Kind == event.EndSequence {
			c.Next()
			break
		}
		if err := b.child.Append(c); err != nil {
			return err
		}
	}
	b.pushOffset()
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *listBuilder) Len() int { return b.n }

func (b *listBuilder) Finish() (*Array, error) {
	childArr, err := b.child.Finish()
	if err != nil {
		return nil, err
	}
	var offBuf []byte
	if b.isLarge {
		offBuf = int64sToBytes(b.off64.Values())
	} else {
		offBuf = int32sToBytes(b.off32.Values())
	}
	a := &Array{Type: b.field.Type, Length: b.n, Buffers: [][]byte{offBuf}, Children: []*Array{childArr}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}

// fixedSizeListBuilder backs FixedSizeList(child, n): no offsets, but
// every row must contribute exactly N child elements.
type fixedSizeListBuilder struct {
	field    datatype.Field
	n32      int32
	child    Builder
	validity *buflayout.Bitmap
	n        int
}

func newFixedSizeListBuilder(f datatype.Field, opts Options) (*fixedSizeListBuilder, error) {
	lt, ok := f.Type.(datatype.FixedSizeListDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newFixedSizeListBuilder: field %q is not a FixedSizeList type", f.Name)
	}
	child, err := NewForField(lt.Item, opts)
	if err != nil {
		return nil, err
	}
	return &fixedSizeListBuilder{field: f, n32: lt.N, child: child, validity: buflayout.NewBitmap()}, nil
}

func (b *fixedSizeListBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "StartSequence or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		for i := int32(0); i < b.n32; i++ {
			if err := b.child.Append(event.NewCursor([]event.Event{event.NullEvent})); err != nil {
				return err
			}
		}
		b.validity.Append(false)
		b.n++
		return nil
	}
	if e.Kind != event.StartSequence {
		return mismatch(b.field.Name, e, "StartSequence")
	}
	before := b.child.Len()
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "column %q: unterminated sequence", b.field.Name).WithColumn(b.field.Name)
		}
		if next.Kind == event.EndSequence {
			c.Next()
			break
		}
		if err := b.child.Append(c); err != nil {
			return err
		}
	}
	if got := b.child.Len() - before; got != int(b.n32) {
		return codecerr.New(codecerr.StructuralError, "column %q row %d: expected %d elements, got %d",
			b.field.Name, b.n, b.n32, got).WithColumn(b.field.Name).WithRow(b.n)
	}
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *fixedSizeListBuilder) Len() int { return b.n }

func (b *fixedSizeListBuilder) Finish() (*Array, error) {
	childArr, err := b.child.Finish()
	if err != nil {
		return nil, err
	}
	a := &Array{Type: b.field.Type, Length: b.n, Children: []*Array{childArr}}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}

// structBuilder backs Struct: one child builder per schema field,
// dispatched by the FieldName event preceding each value. Unknown
// field names are dropped unless opts.ErrOnUnknownField. Fields the
// row omits must be nullable; TupleAsStruct lets a StartTuple/EndTuple
// run supply values positionally instead of by name.
type structBuilder struct {
	field    datatype.Field
	names    []string
	children []Builder
	index    map[string]int
	validity *buflayout.Bitmap
	opts     Options
	n        int
}

func newStructBuilder(f datatype.Field, opts Options) (*structBuilder, error) {
	st, ok := f.Type.(datatype.StructDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newStructBuilder: field %q is not a Struct type", f.Name)
	}
	b := &structBuilder{
		field:    f,
		names:    make([]string, len(st.Fields)),
		children: make([]Builder, len(st.Fields)),
		index:    make(map[string]int, len(st.Fields)),
		validity: buflayout.NewBitmap(),
		opts:     opts,
	}
	for i, cf := range st.Fields {
		child, err := NewForField(cf, opts)
		if err != nil {
			return nil, err
		}
		b.names[i] = cf.Name
		b.children[i] = child
		b.index[cf.Name] = i
	}
	return b, nil
}

// fillAbsent pushes one Null onto every child builder that has not yet
// received a value for the row being finished.
func (b *structBuilder) fillAbsent(seen []bool) error {
	for i, got := range seen {
		if got {
			continue
		}
		cf := b.children[i]
		if err := cf.Append(event.NewCursor([]event.Event{event.NullEvent})); err != nil {
			return codecerr.Wrap(codecerr.StructuralError, err, "column %q: missing required field %q", b.field.Name, b.names[i]).WithColumn(b.field.Name)
		}
	}
	return nil
}

func (b *structBuilder) appendBody(c *event.Cursor, endKind event.Kind, positional bool) error {
	seen := make([]bool, len(b.children))
	pos := 0
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "column %q: unterminated struct", b.field.Name).WithColumn(b.field.Name)
		}
		if next.Kind == endKind {
			c.Next()
			break
		}
		var idx int
		if positional {
			if pos >= len(b.children) {
				return codecerr.New(codecerr.StructuralError, "column %q: tuple has more elements than schema fields (%d)",
					b.field.Name, len(b.children)).WithColumn(b.field.Name)
			}
			idx = pos
			pos++
		} else {
			nameEv, ok := c.Next()
			if !ok || nameEv.Kind != event.FieldName {
				return mismatch(b.field.Name, nameEv, "FieldName")
			}
			i, found := b.index[nameEv.Str]
			if !found {
				if b.opts.ErrOnUnknownField {
					return codecerr.New(codecerr.SchemaMismatch, "column %q: unknown field %q", b.field.Name, nameEv.Str).WithColumn(b.field.Name)
				}
				skipOneValue(c)
				continue
			}
			idx = i
		}
		if err := b.children[idx].Append(c); err != nil {
			return err
		}
		seen[idx] = true
	}
	return b.fillAbsent(seen)
}

// skipOneValue discards the events making up a single unknown field's
// value: either one scalar/Null event, or a balanced Start...End run.
func skipOneValue(c *event.Cursor) {
	e, ok := c.Next()
	if !ok {
		return
	}
	switch e.Kind {
	case event.StartStruct, event.StartTuple, event.StartSequence, event.StartMap:
		c.SkipBalanced()
	}
}

func (b *structBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "StartStruct or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		if err := b.fillAbsent(make([]bool, len(b.children))); err != nil {
			return err
		}
		b.validity.Append(false)
		b.n++
		return nil
	}
	switch e.Kind {
	case event.StartStruct:
		if err := b.appendBody(c, event.EndStruct, false); err != nil {
			return err
		}
	case event.StartTuple:
		if b.field.Strategy != datatype.TupleAsStruct {
			return codecerr.New(codecerr.SchemaMismatch, "column %q: StartTuple requires TupleAsStruct strategy", b.field.Name).WithColumn(b.field.Name)
		}
		if err := b.appendBody(c, event.EndTuple, true); err != nil {
			return err
		}
	default:
		return mismatch(b.field.Name, e, "StartStruct")
	}
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *structBuilder) Len() int { return b.n }

func (b *structBuilder) Finish() (*Array, error) {
	children := make([]*Array, len(b.children))
	for i, cb := range b.children {
		arr, err := cb.Finish()
		if err != nil {
			return nil, err
		}
		children[i] = arr
	}
	a := &Array{Type: b.field.Type, Length: b.n, Children: children}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}

// unionBuilder backs Union: a type-codes buffer (one i8 per row, the
// variant's position in the schema), and for Dense mode an additional
// i32 offsets buffer into each variant's own child array. Sparse mode
// has every child builder advance on every row (Null for inactive
// variants); Dense mode only advances the active variant's builder.
type unionBuilder struct {
	field      datatype.Field
	mode       datatype.UnionMode
	names      []string
	children   []Builder
	index      map[string]int
	unknownIdx int // index of the UnknownVariant catch-all, or -1
	typeCodes  buflayout.BufEncoder
	offsets    []int32 // Dense only: one raw index into the active variant's child array per row
	n          int
}

func newUnionBuilder(f datatype.Field, opts Options) (*unionBuilder, error) {
	ut, ok := f.Type.(datatype.UnionDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newUnionBuilder: field %q is not a Union type", f.Name)
	}
	b := &unionBuilder{
		field:      f,
		mode:       ut.Mode,
		names:      make([]string, len(ut.Fields)),
		children:   make([]Builder, len(ut.Fields)),
		index:      make(map[string]int, len(ut.Fields)),
		unknownIdx: -1,
	}
	for i, vf := range ut.Fields {
		child, err := NewForField(vf, opts)
		if err != nil {
			return nil, err
		}
		b.names[i] = vf.Name
		b.children[i] = child
		b.index[vf.Name] = i
		if vf.Strategy == datatype.UnknownVariant {
			b.unknownIdx = i
		}
	}
	return b, nil
}

func (b *unionBuilder) Append(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok || e.Kind != event.VariantName {
		return mismatch(b.field.Name, e, "VariantName")
	}
	idx, found := b.index[e.Str]
	if !found {
		if b.unknownIdx < 0 {
			return codecerr.New(codecerr.SchemaMismatch, "column %q: unknown variant %q and no UnknownVariant catch-all", b.field.Name, e.Str).WithColumn(b.field.Name)
		}
		idx = b.unknownIdx
	}
	switch b.mode {
	case datatype.Dense:
		if err := b.children[idx].Append(c); err != nil {
			return err
		}
		b.typeCodes.PutI8(int8(idx))
		b.offsets = append(b.offsets, int32(b.children[idx].Len()-1))
	case datatype.Sparse:
		for i, child := range b.children {
			if i == idx {
				if err := child.Append(c); err != nil {
					return err
				}
			} else {
				if err := child.Append(event.NewCursor([]event.Event{event.NullEvent})); err != nil {
					return err
				}
			}
		}
		b.typeCodes.PutI8(int8(idx))
	}
	b.n++
	return nil
}

func (b *unionBuilder) Len() int { return b.n }

func (b *unionBuilder) Finish() (*Array, error) {
	children := make([]*Array, len(b.children))
	for i, cb := range b.children {
		arr, err := cb.Finish()
		if err != nil {
			return nil, err
		}
		children[i] = arr
	}
	buffers := [][]byte{b.typeCodes.Bytes()}
	if b.mode == datatype.Dense {
		buffers = append(buffers, int32sToBytes(b.offsets))
	}
	return &Array{Type: b.field.Type, Length: b.n, Buffers: buffers, Children: children}, nil
}

// mapBuilder backs Map: an offsets buffer over the flattened
// keys/values entries, plus one builder each for the key and value
// columns. MapAsStruct rewires a schema-known string-keyed map into a
// Struct whose field set is learned from the schema, delegated to an
// embedded structBuilder instead.
type mapBuilder struct {
	field    datatype.Field
	keyB     Builder
	valB     Builder
	off32    *buflayout.Offsets32
	validity *buflayout.Bitmap
	n        int
	asStruct *structBuilder
}

func newMapBuilder(f datatype.Field, opts Options) (Builder, error) {
	mt, ok := f.Type.(datatype.MapDataType)
	if !ok {
		return nil, codecerr.New(codecerr.Internal, "newMapBuilder: field %q is not a Map type", f.Name)
	}
	if f.Strategy == datatype.MapAsStruct {
		fields, ferr := mapMetadataFields(f)
		if ferr != nil {
			return nil, ferr
		}
		structField := f
		structField.Type = datatype.NewStruct(fields)
		sb, err := newStructBuilder(structField, opts)
		if err != nil {
			return nil, err
		}
		return &mapBuilder{field: f, asStruct: sb}, nil
	}
	keyField := datatype.Field{Name: "key", Type: mt.KeyType}
	valField := datatype.Field{Name: "value", Type: mt.ValueType, Nullable: mt.ValueNull}
	keyB, err := NewForField(keyField, opts)
	if err != nil {
		return nil, err
	}
	valB, err := NewForField(valField, opts)
	if err != nil {
		return nil, err
	}
	return &mapBuilder{field: f, keyB: keyB, valB: valB, off32: buflayout.NewOffsets32(), validity: buflayout.NewBitmap()}, nil
}

// mapMetadataFields recovers the Struct field set a MapAsStruct field
// should materialize, carried in Field.Metadata (schema-declared,
// since the event stream's maps carry no schema of their own).
func mapMetadataFields(f datatype.Field) ([]datatype.Field, error) {
	mt := f.Type.(datatype.MapDataType)
	// Without a richer side-channel, a MapAsStruct field degrades to a
	// single-field struct wrapping the value type under the key name
	// recorded in Metadata["arrowcodec.map_as_struct.key"]; when that
	// entry is absent, construction fails with SchemaInvalid.
	key := f.Metadata["arrowcodec.map_as_struct.key"]
	if key == "" {
		return nil, codecerr.New(codecerr.SchemaInvalid, "column %q: MapAsStruct requires metadata %q", f.Name, "arrowcodec.map_as_struct.key")
	}
	return []datatype.Field{{Name: key, Type: mt.ValueType, Nullable: mt.ValueNull}}, nil
}

func (b *mapBuilder) Append(c *event.Cursor) error {
	if b.asStruct != nil {
		return b.asStruct.Append(c)
	}
	e, ok := c.Next()
	if !ok {
		return mismatch(b.field.Name, e, "StartMap or Null")
	}
	if e.Kind == event.Null {
		if !b.field.Nullable {
			return codecerr.New(codecerr.StructuralError, "column %q: Null in non-nullable field", b.field.Name).WithColumn(b.field.Name)
		}
		b.off32.Push(0)
		b.validity.Append(false)
		b.n++
		return nil
	}
	if e.Kind != event.StartMap {
		return mismatch(b.field.Name, e, "StartMap")
	}
	count := int32(0)
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "column %q: unterminated map", b.field.Name).WithColumn(b.field.Name)
		}
		if next.Kind == event.EndMap {
			c.Next()
			break
		}
		item, ok := c.Next()
		if !ok || item.Kind != event.Item {
			return mismatch(b.field.Name, item, "Item")
		}
		if err := b.keyB.Append(c); err != nil {
			return err
		}
		if err := b.valB.Append(c); err != nil {
			return err
		}
		count++
	}
	b.off32.Push(count)
	if b.field.Nullable {
		b.validity.Append(true)
	}
	b.n++
	return nil
}

func (b *mapBuilder) Len() int {
	if b.asStruct != nil {
		return b.asStruct.Len()
	}
	return b.n
}

func (b *mapBuilder) Finish() (*Array, error) {
	if b.asStruct != nil {
		return b.asStruct.Finish()
	}
	keyArr, err := b.keyB.Finish()
	if err != nil {
		return nil, err
	}
	valArr, err := b.valB.Finish()
	if err != nil {
		return nil, err
	}
	entries := &Array{
		Type:     b.field.Type.Children()[0].Type,
		Length:   keyArr.Length,
		Children: []*Array{keyArr, valArr},
	}
	a := &Array{
		Type:     b.field.Type,
		Length:   b.n,
		Buffers:  [][]byte{int32sToBytes(b.off32.Values())},
		Children: []*Array{entries},
	}
	if b.field.Nullable {
		a.Validity = b.validity.Bytes()
		a.Nulls = b.validity.NullCount()
	}
	return a, nil
}
