// Package builder implements the per-DataType column builders: the
// push-down automata that consume Events and accumulate Arrow-layout
// buffers (SPEC_FULL.md §4.2).
package builder

import "github.com/aclements/arrowcodec/datatype"

// Array is a finalized, immutable column: a generic carrier for
// whichever raw buffers a DataType's layout requires, analogous to the
// buffers+children ArrayData representation every Arrow implementation
// uses internally, but without importing a host Arrow library (the
// specific native array types are an external collaborator's concern
// per SPEC_FULL.md §1).
//
// Buffer conventions by DataType.ID(), all little-endian / LSB-first
// per SPEC_FULL.md §6:
//
//   - Bool, IntN, UintN, FloatN, Decimal128, Date32/64, Time32/64,
//     Timestamp, Duration: Buffers = [values]
//   - Utf8, Binary:              Buffers = [offsets(i32), data]
//   - LargeUtf8, LargeBinary:    Buffers = [offsets(i64), data]
//   - FixedSizeBinary:           Buffers = [data]
//   - List:                      Buffers = [offsets(i32)], Children = [item]
//   - LargeList:                 Buffers = [offsets(i64)], Children = [item]
//   - FixedSizeList:             Buffers = [],              Children = [item]
//   - Struct:                    Buffers = [],              Children = [...]
//   - Union:                     Buffers = [typeCodes] (+ offsets(i32) if Dense), Children = [...]
//   - Map:                       Buffers = [offsets(i32)], Children = [entries struct]
//   - Dictionary:                Buffers = [keys],          Dictionary = values
type Array struct {
	Type     datatype.DataType
	Length   int
	Nulls    int
	Validity []byte // LSB-first bitmap, nil if the field is not nullable
	Buffers  [][]byte
	Children []*Array

	// Dictionary is only set for Dictionary arrays; it is the single
	// values column.
	Dictionary *Array
}
