package dsl

import (
	"fmt"
	"strings"

	"github.com/aclements/arrowcodec/datatype"
)

// PrintDataType renders dt in the canonical Schema DSL form, the
// inverse of ParseDataType. Struct and Union render their children
// using the "{name: ..., data_type: ...}" field-literal form rather
// than the terser "name: type" form DataType.String uses internally.
func PrintDataType(dt datatype.DataType) string {
	var b strings.Builder
	writeDataType(&b, dt)
	return b.String()
}

func writeDataType(b *strings.Builder, dt datatype.DataType) {
	switch t := dt.(type) {
	case datatype.Time32DataType:
		fmt.Fprintf(b, "Time32(%s)", t.Unit)
	case datatype.Time64DataType:
		fmt.Fprintf(b, "Time64(%s)", t.Unit)
	case datatype.TimestampDataType:
		if t.HasTZ {
			fmt.Fprintf(b, "Timestamp(%s, Some(%q))", t.Unit, t.Timezone)
		} else {
			fmt.Fprintf(b, "Timestamp(%s, None)", t.Unit)
		}
	case datatype.DurationDataType:
		fmt.Fprintf(b, "Duration(%s)", t.Unit)
	case datatype.Decimal128DataType:
		fmt.Fprintf(b, "Decimal128(%d, %d)", t.Precision, t.Scale)
	case datatype.FixedSizeBinaryDataType:
		fmt.Fprintf(b, "FixedSizeBinary(%d)", t.ByteWidth)
	case datatype.ListDataType:
		b.WriteString("List(")
		writeDataType(b, t.Item.Type)
		b.WriteString(")")
	case datatype.LargeListDataType:
		b.WriteString("LargeList(")
		writeDataType(b, t.Item.Type)
		b.WriteString(")")
	case datatype.FixedSizeListDataType:
		b.WriteString("FixedSizeList(")
		writeDataType(b, t.Item.Type)
		fmt.Fprintf(b, ", %d)", t.N)
	case datatype.StructDataType:
		b.WriteString("Struct(")
		writeFieldList(b, t.Fields)
		b.WriteString(")")
	case datatype.UnionDataType:
		b.WriteString("Union(")
		writeFieldList(b, t.Fields)
		fmt.Fprintf(b, ", %s)", t.Mode)
	case datatype.MapDataType:
		b.WriteString("Map(")
		writeDataType(b, t.KeyType)
		b.WriteString(", ")
		writeDataType(b, t.ValueType)
		b.WriteString(")")
	case datatype.DictionaryDataType:
		b.WriteString("Dictionary(")
		writeDataType(b, t.IndexType)
		b.WriteString(", ")
		writeDataType(b, t.ValueType)
		b.WriteString(")")
	default:
		b.WriteString(dt.String())
	}
}

func writeFieldList(b *strings.Builder, fields []datatype.Field) {
	b.WriteString("[")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		writeFieldLiteral(b, f)
	}
	b.WriteString("]")
}

func writeFieldLiteral(b *strings.Builder, f datatype.Field) {
	fmt.Fprintf(b, "{name: %q, data_type: ", f.Name)
	writeDataType(b, f.Type)
	if f.Nullable {
		b.WriteString(", nullable: true")
	}
	if f.Strategy != datatype.NoStrategy {
		fmt.Fprintf(b, ", strategy: %q", f.Strategy)
	}
	b.WriteString("}")
}

// PrintField renders a single top-level field descriptor in field-literal form.
func PrintField(f datatype.Field) string {
	var b strings.Builder
	writeFieldLiteral(&b, f)
	return b.String()
}
