// Package datatype is the host-independent schema model: a tree of
// (name, data-type, nullable, metadata, children) Fields, where DataType
// is a closed tagged variant covering every logical Arrow type this
// codec supports.
//
// Builder and source construction dispatch on Kind — see the design
// note in SPEC_FULL.md §3 on closed-variant polymorphism. The concrete
// types are reached through type assertions and type switches where a
// type's parameters (units, children, widths) are read.
package datatype

import (
	"fmt"

	"github.com/aclements/arrowcodec/codecerr"
)

// Kind tags a DataType's case. The set is closed: adding a DataType
// means adding a Kind and updating every exhaustive switch over it.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float16
	Float32
	Float64
	Utf8
	LargeUtf8
	Binary
	LargeBinary
	Date32
	Date64
	Time32
	Time64
	Timestamp
	Duration
	Decimal128
	List
	LargeList
	FixedSizeList
	Struct
	Union
	Map
	Dictionary
	FixedSizeBinary
)

var kindNames = [...]string{
	Null: "Null", Bool: "Bool",
	Int8: "Int8", Int16: "Int16", Int32: "Int32", Int64: "Int64",
	Uint8: "UInt8", Uint16: "UInt16", Uint32: "UInt32", Uint64: "UInt64",
	Float16: "Float16", Float32: "Float32", Float64: "Float64",
	Utf8: "Utf8", LargeUtf8: "LargeUtf8",
	Binary: "Binary", LargeBinary: "LargeBinary",
	Date32: "Date32", Date64: "Date64",
	Time32: "Time32", Time64: "Time64",
	Timestamp: "Timestamp", Duration: "Duration",
	Decimal128: "Decimal128",
	List:       "List", LargeList: "LargeList", FixedSizeList: "FixedSizeList",
	Struct: "Struct", Union: "Union", Map: "Map",
	Dictionary: "Dictionary", FixedSizeBinary: "FixedSizeBinary",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TimeUnit is the resolution carried by Time32/Time64/Timestamp/Duration.
type TimeUnit uint8

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "Second"
	case Millisecond:
		return "Millisecond"
	case Microsecond:
		return "Microsecond"
	case Nanosecond:
		return "Nanosecond"
	default:
		return fmt.Sprintf("TimeUnit(%d)", uint8(u))
	}
}

// UnionMode distinguishes the two Arrow union layouts.
type UnionMode uint8

const (
	Dense UnionMode = iota
	Sparse
)

func (m UnionMode) String() string {
	if m == Dense {
		return "Dense"
	}
	return "Sparse"
}

// DataType is the closed interface implemented by every supported
// logical type. Callers switch on ID(), not on the concrete type.
type DataType interface {
	ID() Kind
	// Children returns the nested Fields this DataType carries, per
	// the invariants in SPEC_FULL.md §3 (e.g. List has one child named
	// "item", Struct has named children, Map has one "entries" child).
	Children() []Field
	String() string
}

type simple struct{ kind Kind }

func (s simple) ID() Kind          { return s.kind }
func (s simple) Children() []Field { return nil }
func (s simple) String() string    { return s.kind.String() }

// Scalar data types with no parameters and no children.
var (
	NullType    DataType = simple{Null}
	BoolType    DataType = simple{Bool}
	Int8Type    DataType = simple{Int8}
	Int16Type   DataType = simple{Int16}
	Int32Type   DataType = simple{Int32}
	Int64Type   DataType = simple{Int64}
	Uint8Type   DataType = simple{Uint8}
	Uint16Type  DataType = simple{Uint16}
	Uint32Type  DataType = simple{Uint32}
	Uint64Type  DataType = simple{Uint64}
	Float16Type DataType = simple{Float16}
	Float32Type DataType = simple{Float32}
	Float64Type DataType = simple{Float64}
	Utf8Type    DataType = simple{Utf8}
	LargeUtf8T  DataType = simple{LargeUtf8}
	BinaryType  DataType = simple{Binary}
	LargeBinT   DataType = simple{LargeBinary}
	Date32Type  DataType = simple{Date32}
	Date64Type  DataType = simple{Date64}
)

// Time32DataType is Time32(unit); unit must be Second or Millisecond.
type Time32DataType struct{ Unit TimeUnit }

func (t Time32DataType) ID() Kind          { return Time32 }
func (t Time32DataType) Children() []Field { return nil }
func (t Time32DataType) String() string    { return fmt.Sprintf("Time32(%s)", t.Unit) }

// NewTime32 validates the unit per SPEC_FULL.md §3 before returning.
func NewTime32(unit TimeUnit) (DataType, error) {
	if unit != Second && unit != Millisecond {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"Time32 unit must be one of Second, Millisecond; got %s", unit)
	}
	return Time32DataType{unit}, nil
}

// Time64DataType is Time64(unit); unit must be Microsecond or Nanosecond.
type Time64DataType struct{ Unit TimeUnit }

func (t Time64DataType) ID() Kind          { return Time64 }
func (t Time64DataType) Children() []Field { return nil }
func (t Time64DataType) String() string    { return fmt.Sprintf("Time64(%s)", t.Unit) }

func NewTime64(unit TimeUnit) (DataType, error) {
	if unit != Microsecond && unit != Nanosecond {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"Time64 unit must be one of Microsecond, Nanosecond; got %s", unit)
	}
	return Time64DataType{unit}, nil
}

// TimestampDataType is Timestamp(unit, timezone). HasTZ == false means
// the "None" (naive) form; Timezone is only meaningful when HasTZ is set.
type TimestampDataType struct {
	Unit     TimeUnit
	Timezone string
	HasTZ    bool
}

func (t TimestampDataType) ID() Kind          { return Timestamp }
func (t TimestampDataType) Children() []Field { return nil }
func (t TimestampDataType) String() string {
	if t.HasTZ {
		return fmt.Sprintf("Timestamp(%s, Some(%q))", t.Unit, t.Timezone)
	}
	return fmt.Sprintf("Timestamp(%s, None)", t.Unit)
}

func NewTimestamp(unit TimeUnit, tz string, hasTZ bool) (DataType, error) {
	if err := checkTimeUnit4(unit); err != nil {
		return nil, err
	}
	return TimestampDataType{unit, tz, hasTZ}, nil
}

// DurationDataType is Duration(unit).
type DurationDataType struct{ Unit TimeUnit }

func (d DurationDataType) ID() Kind          { return Duration }
func (d DurationDataType) Children() []Field { return nil }
func (d DurationDataType) String() string    { return fmt.Sprintf("Duration(%s)", d.Unit) }

func NewDuration(unit TimeUnit) (DataType, error) {
	if err := checkTimeUnit4(unit); err != nil {
		return nil, err
	}
	return DurationDataType{unit}, nil
}

func checkTimeUnit4(unit TimeUnit) error {
	if unit != Second && unit != Millisecond && unit != Microsecond && unit != Nanosecond {
		return codecerr.New(codecerr.SchemaInvalid,
			"unit must be one of Second, Millisecond, Microsecond, Nanosecond; got %s", unit)
	}
	return nil
}

// Decimal128DataType is Decimal128(precision, scale).
type Decimal128DataType struct {
	Precision int32
	Scale     int32
}

func (d Decimal128DataType) ID() Kind          { return Decimal128 }
func (d Decimal128DataType) Children() []Field { return nil }
func (d Decimal128DataType) String() string {
	return fmt.Sprintf("Decimal128(%d, %d)", d.Precision, d.Scale)
}

// DecimalScaleLimit bounds how negative a Decimal128 scale may be,
// per SPEC_FULL.md / spec.md §3 ("scale in range -scale-limit..=precision").
const DecimalScaleLimit = 38

func NewDecimal128(precision, scale int32) (DataType, error) {
	if precision < 1 || precision > 38 {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"Decimal128 precision must be in 1..=38; got %d", precision)
	}
	if scale < -DecimalScaleLimit || scale > precision {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"Decimal128 scale must be in -%d..=%d (precision); got %d", DecimalScaleLimit, precision, scale)
	}
	return Decimal128DataType{precision, scale}, nil
}

// FixedSizeBinaryDataType is FixedSizeBinary(n), n > 0.
type FixedSizeBinaryDataType struct{ ByteWidth int32 }

func (f FixedSizeBinaryDataType) ID() Kind          { return FixedSizeBinary }
func (f FixedSizeBinaryDataType) Children() []Field { return nil }
func (f FixedSizeBinaryDataType) String() string {
	return fmt.Sprintf("FixedSizeBinary(%d)", f.ByteWidth)
}

func NewFixedSizeBinary(n int32) (DataType, error) {
	if n <= 0 {
		return nil, codecerr.New(codecerr.SchemaInvalid, "FixedSizeBinary width must be > 0; got %d", n)
	}
	return FixedSizeBinaryDataType{n}, nil
}

// ListDataType is List(child); the sole child Field is always named "item".
type ListDataType struct{ Item Field }

func (l ListDataType) ID() Kind          { return List }
func (l ListDataType) Children() []Field { return []Field{l.Item} }
func (l ListDataType) String() string    { return fmt.Sprintf("List(%s)", l.Item.Type.String()) }

func NewList(child DataType, nullable bool) DataType {
	return ListDataType{Item: Field{Name: "item", Type: child, Nullable: nullable}}
}

// LargeListDataType is LargeList(child): like List but with i64 offsets.
type LargeListDataType struct{ Item Field }

func (l LargeListDataType) ID() Kind          { return LargeList }
func (l LargeListDataType) Children() []Field { return []Field{l.Item} }
func (l LargeListDataType) String() string {
	return fmt.Sprintf("LargeList(%s)", l.Item.Type.String())
}

func NewLargeList(child DataType, nullable bool) DataType {
	return LargeListDataType{Item: Field{Name: "item", Type: child, Nullable: nullable}}
}

// FixedSizeListDataType is FixedSizeList(child, n), n > 0.
type FixedSizeListDataType struct {
	Item Field
	N    int32
}

func (l FixedSizeListDataType) ID() Kind          { return FixedSizeList }
func (l FixedSizeListDataType) Children() []Field { return []Field{l.Item} }
func (l FixedSizeListDataType) String() string {
	return fmt.Sprintf("FixedSizeList(%s, %d)", l.Item.Type.String(), l.N)
}

func NewFixedSizeList(child DataType, nullable bool, n int32) (DataType, error) {
	if n <= 0 {
		return nil, codecerr.New(codecerr.SchemaInvalid, "FixedSizeList length must be > 0; got %d", n)
	}
	return FixedSizeListDataType{Item: Field{Name: "item", Type: child, Nullable: nullable}, N: n}, nil
}

// StructDataType is Struct(children); children carry their own names.
type StructDataType struct{ Fields []Field }

func (s StructDataType) ID() Kind          { return Struct }
func (s StructDataType) Children() []Field { return s.Fields }
func (s StructDataType) String() string {
	out := "Struct(["
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Type.String()
	}
	return out + "])"
}

func NewStruct(fields []Field) DataType { return StructDataType{Fields: fields} }

// UnionDataType is Union(children, mode); each child is one variant,
// positioned by index, which is also the on-wire type-code.
type UnionDataType struct {
	Fields []Field
	Mode   UnionMode
}

func (u UnionDataType) ID() Kind          { return Union }
func (u UnionDataType) Children() []Field { return u.Fields }
func (u UnionDataType) String() string {
	out := "Union(["
	for i, f := range u.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Name + ": " + f.Type.String()
	}
	return out + fmt.Sprintf("], %s)", u.Mode)
}

func NewUnion(fields []Field, mode UnionMode) DataType {
	return UnionDataType{Fields: fields, Mode: mode}
}

// MapDataType is Map(entries-struct, keysSorted). The single child is
// always named "entries" and is itself a Struct of exactly two fields,
// "keys" and "values".
type MapDataType struct {
	KeyType     DataType
	ValueType   DataType
	ValueNull   bool
	KeysSorted  bool
	entriesName string // normally "entries"
}

func (m MapDataType) ID() Kind { return Map }
func (m MapDataType) Children() []Field {
	name := m.entriesName
	if name == "" {
		name = "entries"
	}
	entries := StructDataType{Fields: []Field{
		{Name: "keys", Type: m.KeyType},
		{Name: "values", Type: m.ValueType, Nullable: m.ValueNull},
	}}
	return []Field{{Name: name, Type: entries}}
}
func (m MapDataType) String() string {
	return fmt.Sprintf("Map(%s, %s)", m.KeyType.String(), m.ValueType.String())
}

func NewMap(keyType, valueType DataType, valueNullable, keysSorted bool) DataType {
	return MapDataType{KeyType: keyType, ValueType: valueType, ValueNull: valueNullable, KeysSorted: keysSorted}
}

// DictionaryDataType is Dictionary(indexType, valueType, ordered).
// indexType must be an integer kind, signed or unsigned.
type DictionaryDataType struct {
	IndexType DataType
	ValueType DataType
	Ordered   bool
}

func (d DictionaryDataType) ID() Kind          { return Dictionary }
func (d DictionaryDataType) Children() []Field { return nil }
func (d DictionaryDataType) String() string {
	return fmt.Sprintf("Dictionary(%s, %s)", d.IndexType.String(), d.ValueType.String())
}

func isIntKind(k Kind) bool {
	switch k {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

func NewDictionary(indexType, valueType DataType, ordered bool) (DataType, error) {
	if !isIntKind(indexType.ID()) {
		return nil, codecerr.New(codecerr.SchemaInvalid,
			"Dictionary index type must be an integer kind; got %s", indexType.ID())
	}
	return DictionaryDataType{IndexType: indexType, ValueType: valueType, Ordered: ordered}, nil
}
