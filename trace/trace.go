// Package trace implements the schema tracer: it observes sample
// record event streams and infers a Field schema, applying the
// unification rules of spec.md §4.6.
package trace

import (
	"log"
	"regexp"

	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

// Options configures tracer heuristics (spec.md §4.6).
type Options struct {
	GuessDates             bool
	StringDictionaryEncoding bool
	MapAsStruct            bool
	AllowNullFields        bool
	CoerceNumbers          bool

	// Verbose logs non-error unification decisions (a numeric family
	// widened via coerce-numbers, a string field demoted to LargeUtf8
	// by mixed date formats) via the standard logger as they're made.
	Verbose bool
}

// Date-string detection, grounded on bodkin's timestampMatchers/
// dateMatcher/timeMatcher regexp family: ISO-8601 with an optional
// trailing 'Z'. No third-party regex engine appears anywhere in the
// retrieved pack, so stdlib regexp is the grounded choice here.
var (
	utcDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)
	naiveDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`)
)

// numKind classifies a numeric leaf's observed family, before Kind
// widening/coercion is applied.
type numKind int

const (
	numNone numKind = iota
	numSigned
	numUnsigned
	numFloat
)

// dateForm tracks what a string leaf's date candidacy looks like
// across samples: consistently UTC, consistently naive, or mixed
// (which forces the LargeUtf8 fallback of spec.md §4.6 / Open
// Question (c)).
type dateForm int

const (
	dateUnknown dateForm = iota
	dateNone             // string never looked like a date
	dateUTC
	dateNaive
	dateMixed
)

// node is the tracer's tentative representation of one field, before
// being finalized into a datatype.Field.
type node struct {
	name     string
	nullable bool
	observed bool

	// Scalar tracking.
	isScalar bool
	numK     numKind
	maxAbs   uint64 // largest magnitude seen, used to pick the narrowest int width
	sawFloat bool
	isString bool
	isBytes  bool
	isBool   bool
	largeStr bool // promoted to LargeUtf8 once a sample needed it
	dateForm dateForm

	// Struct/Map tracking.
	isStruct bool
	isMap    bool
	children []*node
	childIdx map[string]int

	// Union tracking.
	isUnion    bool
	variants   []*node
	variantIdx map[string]int
}

func newNode(name string) *node {
	return &node{name: name, childIdx: map[string]int{}, variantIdx: map[string]int{}}
}

func (n *node) child(name string) *node {
	if i, ok := n.childIdx[name]; ok {
		return n.children[i]
	}
	c := newNode(name)
	n.childIdx[name] = len(n.children)
	n.children = append(n.children, c)
	return c
}

func (n *node) variant(name string) (*node, int) {
	if i, ok := n.variantIdx[name]; ok {
		return n.variants[i], i
	}
	v := newNode(name)
	n.variantIdx[name] = len(n.variants)
	n.variants = append(n.variants, v)
	return v, len(n.variants) - 1
}

// Tracer accumulates a tentative field tree across AddRecord calls.
type Tracer struct {
	opts Options
	root *node // unnamed container; root.children are the top-level fields
}

// New creates a Tracer with the given options.
func New(opts Options) *Tracer {
	return &Tracer{opts: opts, root: newNode("")}
}

// AddRecord observes one record's event stream (StartStruct ...
// EndStruct, one child per top-level field) and folds it into the
// tentative schema.
func (t *Tracer) AddRecord(c *event.Cursor) error {
	e, ok := c.Next()
	if !ok || e.Kind != event.StartStruct {
		return codecerr.New(codecerr.StructuralError, "expected StartStruct, got %s", e.Kind)
	}
	return t.observeStructBody(c, t.root)
}

func (t *Tracer) observeStructBody(c *event.Cursor, n *node) error {
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "unterminated struct while tracing")
		}
		if next.Kind == event.EndStruct {
			c.Next()
			return nil
		}
		nameEv, ok := c.Next()
		if !ok || nameEv.Kind != event.FieldName {
			return codecerr.New(codecerr.StructuralError, "expected FieldName while tracing, got %s", nameEv.Kind)
		}
		child := n.child(nameEv.Str)
		child.observed = true
		if err := t.observeValue(c, child); err != nil {
			return err
		}
	}
}

func (t *Tracer) observeValue(c *event.Cursor, n *node) error {
	e, ok := c.Next()
	if !ok {
		return codecerr.New(codecerr.StructuralError, "unexpected end of stream while tracing %q", n.name)
	}
	switch e.Kind {
	case event.Null:
		n.nullable = true
		return nil
	case event.Bool:
		n.isScalar, n.isBool = true, true
		return nil
	case event.I8, event.I16, event.I32, event.I64:
		return t.observeInt(n, numSigned, absI64(e.I64))
	case event.U8, event.U16, event.U32, event.U64:
		return t.observeInt(n, numUnsigned, e.U64)
	case event.F32:
		n.isScalar, n.sawFloat = true, true
		return nil
	case event.F64:
		n.isScalar, n.sawFloat = true, true
		return nil
	case event.Str:
		return t.observeString(n, e.Str)
	case event.Bytes:
		n.isScalar, n.isBytes = true, true
		return nil
	case event.StartStruct:
		n.isStruct = true
		return t.observeStructBody(c, n)
	case event.StartMap:
		if t.opts.MapAsStruct {
			n.isStruct = true
			return t.observeMapAsStruct(c, n)
		}
		n.isMap = true
		return t.observeMapBody(c, n)
	case event.StartSequence:
		return t.observeSequence(c, n)
	case event.VariantName:
		n.isUnion = true
		v, _ := n.variant(e.Str)
		return t.observeValue(c, v)
	default:
		return codecerr.New(codecerr.StructuralError, "unexpected event %s while tracing %q", e.Kind, n.name)
	}
}

func absI64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

func (t *Tracer) observeInt(n *node, family numKind, mag uint64) error {
	n.isScalar = true
	if n.numK == numNone {
		n.numK = family
	} else if n.numK != family && n.numK != numFloat {
		if !t.opts.CoerceNumbers {
			return codecerr.New(codecerr.SchemaInvalid,
				"field %q: integer observations cross signed/unsigned families without coerce-numbers", n.name)
		}
		n.numK = numFloat
		n.sawFloat = true
		if t.opts.Verbose {
			log.Printf("arrowcodec/trace: field %q: coerced signed/unsigned family crossing to Float64", n.name)
		}
	}
	if mag > n.maxAbs {
		n.maxAbs = mag
	}
	return nil
}

// observeString applies the date-guessing and dictionary-encoding
// heuristics of spec.md §4.6.
func (t *Tracer) observeString(n *node, s string) error {
	n.isScalar, n.isString = true, true
	if len(s) > 1<<15 {
		n.largeStr = true
	}
	if !t.opts.GuessDates {
		return nil
	}
	form := dateNone
	switch {
	case utcDateRe.MatchString(s):
		form = dateUTC
	case naiveDateRe.MatchString(s):
		form = dateNaive
	}
	switch n.dateForm {
	case dateUnknown:
		n.dateForm = form
	case form:
		// consistent with prior observations
	default:
		n.dateForm = dateMixed
		if t.opts.Verbose {
			log.Printf("arrowcodec/trace: field %q: mixed date formats, falling back to LargeUtf8", n.name)
		}
	}
	return nil
}

func (t *Tracer) observeSequence(c *event.Cursor, n *node) error {
	n.isStruct = false
	n.isMap = false
	item := n.child("item")
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "unterminated sequence while tracing %q", n.name)
		}
		if next.Kind == event.EndSequence {
			c.Next()
			return nil
		}
		if err := t.observeValue(c, item); err != nil {
			return err
		}
	}
}

func (t *Tracer) observeMapBody(c *event.Cursor, n *node) error {
	key := n.child("key")
	val := n.child("value")
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "unterminated map while tracing %q", n.name)
		}
		if next.Kind == event.EndMap {
			c.Next()
			return nil
		}
		item, ok := c.Next()
		if !ok || item.Kind != event.Item {
			return codecerr.New(codecerr.StructuralError, "expected Item while tracing map %q", n.name)
		}
		if err := t.observeValue(c, key); err != nil {
			return err
		}
		if err := t.observeValue(c, val); err != nil {
			return err
		}
	}
}

// observeMapAsStruct folds a map's entries directly into n's children,
// one child per distinct key observed, per the MapAsStruct strategy.
func (t *Tracer) observeMapAsStruct(c *event.Cursor, n *node) error {
	for {
		next, ok := c.Peek()
		if !ok {
			return codecerr.New(codecerr.StructuralError, "unterminated map while tracing %q", n.name)
		}
		if next.Kind == event.EndMap {
			c.Next()
			return nil
		}
		item, ok := c.Next()
		if !ok || item.Kind != event.Item {
			return codecerr.New(codecerr.StructuralError, "expected Item while tracing map-as-struct %q", n.name)
		}
		keyEv, ok := c.Next()
		if !ok || keyEv.Kind != event.Str {
			return codecerr.New(codecerr.SchemaInvalid, "map-as-struct %q: non-string key", n.name)
		}
		child := n.child(keyEv.Str)
		child.observed = true
		if err := t.observeValue(c, child); err != nil {
			return err
		}
	}
}

// Finish finalizes the tentative tree into a schema: the top-level
// Fields, in first-observed order.
func (t *Tracer) Finish() ([]datatype.Field, error) {
	fields := make([]datatype.Field, len(t.root.children))
	for i, c := range t.root.children {
		f, err := t.finishNode(c)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func (t *Tracer) finishNode(n *node) (datatype.Field, error) {
	nullable := n.nullable || t.opts.AllowNullFields
	f := datatype.Field{Name: n.name, Nullable: nullable}

	switch {
	case n.isUnion:
		fields := make([]datatype.Field, len(n.variants))
		for i, v := range n.variants {
			vf, err := t.finishNode(v)
			if err != nil {
				return datatype.Field{}, err
			}
			fields[i] = vf
		}
		f.Type = datatype.NewUnion(fields, datatype.Dense)
		return f, nil

	case n.isStruct:
		fields := make([]datatype.Field, len(n.children))
		for i, c := range n.children {
			cf, err := t.finishNode(c)
			if err != nil {
				return datatype.Field{}, err
			}
			fields[i] = cf
		}
		f.Type = datatype.NewStruct(fields)
		return f, nil

	case n.isMap:
		keyField, err := t.finishNode(n.child("key"))
		if err != nil {
			return datatype.Field{}, err
		}
		valField, err := t.finishNode(n.child("value"))
		if err != nil {
			return datatype.Field{}, err
		}
		f.Type = datatype.NewMap(keyField.Type, valField.Type, valField.Nullable, false)
		return f, nil

	case len(n.childIdx) == 1 && n.childIdx["item"] == 0 && !n.isScalar:
		itemField, err := t.finishNode(n.child("item"))
		if err != nil {
			return datatype.Field{}, err
		}
		f.Type = datatype.NewList(itemField.Type, itemField.Nullable)
		return f, nil

	default:
		return t.finishScalar(n, f)
	}
}

func (t *Tracer) finishScalar(n *node, f datatype.Field) (datatype.Field, error) {
	switch {
	case n.isBool:
		f.Type = datatype.BoolType
	case n.isBytes:
		f.Type = datatype.LargeBinT
	case n.isString:
		if t.opts.GuessDates && n.dateForm != dateUnknown && n.dateForm != dateNone && n.dateForm != dateMixed {
			f.Type = datatype.Date64Type
			strat := datatype.NaiveStrAsDate64
			if n.dateForm == dateUTC {
				strat = datatype.UtcStrAsDate64
			}
			var err error
			f, err = f.WithStrategy(strat)
			if err != nil {
				return datatype.Field{}, err
			}
			return f, nil
		}
		if t.opts.StringDictionaryEncoding {
			dict, err := datatype.NewDictionary(datatype.Uint32Type, datatype.Utf8Type, false)
			if err != nil {
				return datatype.Field{}, err
			}
			f.Type = dict
			return f, nil
		}
		if n.largeStr || n.dateForm == dateMixed {
			f.Type = datatype.LargeUtf8T
		} else {
			f.Type = datatype.Utf8Type
		}
	case n.sawFloat:
		f.Type = datatype.Float64Type
	case n.numK == numSigned:
		f.Type = smallestSignedType(n.maxAbs)
	case n.numK == numUnsigned:
		f.Type = smallestUnsignedType(n.maxAbs)
	case !n.observed:
		f.Type = datatype.NullType
	default:
		f.Type = datatype.NullType
	}
	return f, nil
}

func smallestSignedType(maxAbs uint64) datatype.DataType {
	switch {
	case maxAbs <= 1<<7:
		return datatype.Int8Type
	case maxAbs <= 1<<15:
		return datatype.Int16Type
	case maxAbs <= 1<<31:
		return datatype.Int32Type
	default:
		return datatype.Int64Type
	}
}

func smallestUnsignedType(maxAbs uint64) datatype.DataType {
	switch {
	case maxAbs < 1<<8:
		return datatype.Uint8Type
	case maxAbs < 1<<16:
		return datatype.Uint16Type
	case maxAbs < 1<<32:
		return datatype.Uint32Type
	default:
		return datatype.Uint64Type
	}
}
