// Package event defines the alphabet of structural and scalar markers
// exchanged between the value protocol and the column builders/sources
// (SPEC_FULL.md §4.1). An Event carries at most one scalar payload;
// well-formed streams are balanced over Start/End markers.
package event

import "fmt"

// Kind tags an Event. The zero Kind is never a valid event on the wire;
// callers always construct Events through the New* helpers below.
type Kind uint8

const (
	_ Kind = iota

	StartStruct
	EndStruct
	StartTuple
	EndTuple
	StartSequence
	EndSequence
	StartMap
	EndMap
	Item // map key/value pair marker

	// FieldName precedes a struct child's value events; VariantName
	// precedes a union variant's payload events.
	FieldName
	VariantName

	Bool
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Str
	Bytes
	Null    // explicit null marker, valid in any value position
	Default // "use the variant/field absent-value rule"
)

var kindNames = [...]string{
	StartStruct: "StartStruct", EndStruct: "EndStruct",
	StartTuple: "StartTuple", EndTuple: "EndTuple",
	StartSequence: "StartSequence", EndSequence: "EndSequence",
	StartMap: "StartMap", EndMap: "EndMap", Item: "Item",
	FieldName: "FieldName", VariantName: "VariantName",
	Bool: "Bool", I8: "I8", I16: "I16", I32: "I32", I64: "I64",
	U8: "U8", U16: "U16", U32: "U32", U64: "U64",
	F32: "F32", F64: "F64", Str: "Str", Bytes: "Bytes",
	Null: "Null", Default: "Default",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsStructural reports whether k is a Start/End/Item marker rather than
// a scalar or name event.
func (k Kind) IsStructural() bool {
	switch k {
	case StartStruct, EndStruct, StartTuple, EndTuple,
		StartSequence, EndSequence, StartMap, EndMap, Item:
		return true
	}
	return false
}

// Event is one unit of the event stream. Only the field matching Kind
// is meaningful; the rest are zero.
type Event struct {
	Kind Kind

	Bool bool
	I64  int64  // carries I8/I16/I32/I64
	U64  uint64 // carries U8/U16/U32/U64
	F32  float32
	F64  float64
	Str  string // carries Str, FieldName, VariantName (the name)
	Byte []byte // carries Bytes

	// VariantIndex carries the variant position for VariantName events.
	VariantIndex int
}

func New(k Kind) Event                        { return Event{Kind: k} }
func NewBool(b bool) Event                    { return Event{Kind: Bool, Bool: b} }
func NewI8(v int8) Event                      { return Event{Kind: I8, I64: int64(v)} }
func NewI16(v int16) Event                    { return Event{Kind: I16, I64: int64(v)} }
func NewI32(v int32) Event                    { return Event{Kind: I32, I64: int64(v)} }
func NewI64(v int64) Event                    { return Event{Kind: I64, I64: v} }
func NewU8(v uint8) Event                     { return Event{Kind: U8, U64: uint64(v)} }
func NewU16(v uint16) Event                   { return Event{Kind: U16, U64: uint64(v)} }
func NewU32(v uint32) Event                   { return Event{Kind: U32, U64: uint64(v)} }
func NewU64(v uint64) Event                   { return Event{Kind: U64, U64: v} }
func NewF32(v float32) Event                  { return Event{Kind: F32, F32: v} }
func NewF64(v float64) Event                  { return Event{Kind: F64, F64: v} }
func NewStr(s string) Event                   { return Event{Kind: Str, Str: s} }
func NewBytes(b []byte) Event                 { return Event{Kind: Bytes, Byte: b} }
func NewFieldName(s string) Event             { return Event{Kind: FieldName, Str: s} }
func NewVariantName(name string, idx int) Event {
	return Event{Kind: VariantName, Str: name, VariantIndex: idx}
}

var (
	NullEvent    = Event{Kind: Null}
	DefaultEvent = Event{Kind: Default}
)

// Cursor is a read-only, forward-only view over a pre-built []Event,
// the in-memory analogue of the teacher's bufDecoder slice cursor:
// consumers peek and advance without copying the backing slice.
type Cursor struct {
	events []Event
	pos    int
}

func NewCursor(events []Event) *Cursor { return &Cursor{events: events} }

// Peek returns the next event without consuming it. The second return
// is false at end of stream.
func (c *Cursor) Peek() (Event, bool) {
	if c.pos >= len(c.events) {
		return Event{}, false
	}
	return c.events[c.pos], true
}

// Next consumes and returns the next event.
func (c *Cursor) Next() (Event, bool) {
	e, ok := c.Peek()
	if ok {
		c.pos++
	}
	return e, ok
}

// Done reports whether the cursor has consumed every event.
func (c *Cursor) Done() bool { return c.pos >= len(c.events) }

// SkipBalanced consumes events up to and including the End marker that
// balances a Start marker already consumed, skipping arbitrarily
// nested children. It mirrors the teacher's internal/cparse
// SkipBalanced over punctuation nesting, generalized to Start/End
// event pairs.
func (c *Cursor) SkipBalanced() {
	level := 1
	for level > 0 {
		e, ok := c.Next()
		if !ok {
			return
		}
		switch e.Kind {
		case StartStruct, StartTuple, StartSequence, StartMap:
			level++
		case EndStruct, EndTuple, EndSequence, EndMap:
			level--
		}
	}
}

// Builder accumulates an Event slice; producers (the serializer driver,
// test fixtures) push events into it one at a time.
type Builder struct{ events []Event }

func (b *Builder) Push(e Event) *Builder { b.events = append(b.events, e); return b }
func (b *Builder) Events() []Event       { return b.events }
