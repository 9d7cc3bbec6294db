package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/arrowcodec/datatype"
)

func TestParseDataTypeScalars(t *testing.T) {
	cases := map[string]datatype.Kind{
		"Null":        datatype.Null,
		"Bool":        datatype.Bool,
		"Int8":        datatype.Int8,
		"Int32":       datatype.Int32,
		"UInt64":      datatype.Uint64,
		"Float32":     datatype.Float32,
		"Utf8":        datatype.Utf8,
		"LargeUtf8":   datatype.LargeUtf8,
		"Binary":      datatype.Binary,
		"LargeBinary": datatype.LargeBinary,
		"Date32":      datatype.Date32,
		"Date64":      datatype.Date64,
	}
	for text, wantKind := range cases {
		dt, err := ParseDataType(text)
		require.NoError(t, err, text)
		require.Equal(t, wantKind, dt.ID(), text)
	}
}

func TestParseDataTypeParameterized(t *testing.T) {
	dt, err := ParseDataType("Decimal128(5, 2)")
	require.NoError(t, err)
	dec, ok := dt.(datatype.Decimal128DataType)
	require.True(t, ok)
	require.Equal(t, int32(5), dec.Precision)
	require.Equal(t, int32(2), dec.Scale)

	dt, err = ParseDataType(`Timestamp(Millisecond, Some("UTC"))`)
	require.NoError(t, err)
	ts, ok := dt.(datatype.TimestampDataType)
	require.True(t, ok)
	require.True(t, ts.HasTZ)
	require.Equal(t, "UTC", ts.Timezone)
	require.Equal(t, datatype.Millisecond, ts.Unit)

	dt, err = ParseDataType("Timestamp(Millisecond, None)")
	require.NoError(t, err)
	ts = dt.(datatype.TimestampDataType)
	require.False(t, ts.HasTZ)

	dt, err = ParseDataType("Dictionary(UInt32, Utf8)")
	require.NoError(t, err)
	dict := dt.(datatype.DictionaryDataType)
	require.Equal(t, datatype.Uint32, dict.IndexType.ID())
	require.Equal(t, datatype.Utf8, dict.ValueType.ID())

	dt, err = ParseDataType("FixedSizeBinary(16)")
	require.NoError(t, err)
	require.Equal(t, int32(16), dt.(datatype.FixedSizeBinaryDataType).ByteWidth)

	dt, err = ParseDataType("List(Int32)")
	require.NoError(t, err)
	require.Equal(t, datatype.Int32, dt.(datatype.ListDataType).Item.Type.ID())
}

func TestParseDataTypeInvalid(t *testing.T) {
	_, err := ParseDataType("Time64(Second)")
	require.Error(t, err)

	_, err = ParseDataType("Decimal128(50, 2)")
	require.Error(t, err)

	_, err = ParseDataType("Bogus")
	require.Error(t, err)
}

func TestParseStructAndUnion(t *testing.T) {
	dt, err := ParseDataType(`Struct([{name: "a", data_type: Int32}, {name: "b", data_type: Utf8, nullable: true}])`)
	require.NoError(t, err)
	st := dt.(datatype.StructDataType)
	require.Len(t, st.Fields, 2)
	require.Equal(t, "a", st.Fields[0].Name)
	require.False(t, st.Fields[0].Nullable)
	require.Equal(t, "b", st.Fields[1].Name)
	require.True(t, st.Fields[1].Nullable)

	dt, err = ParseDataType(`Union([{name: "x", data_type: Int32}, {name: "y", data_type: Utf8}], Sparse)`)
	require.NoError(t, err)
	un := dt.(datatype.UnionDataType)
	require.Equal(t, datatype.Sparse, un.Mode)
	require.Len(t, un.Fields, 2)
}

func TestPrintRoundTrip(t *testing.T) {
	texts := []string{
		"Int32",
		"Decimal128(5, 2)",
		`Timestamp(Millisecond, Some("UTC"))`,
		"Timestamp(Millisecond, None)",
		"Dictionary(UInt32, Utf8)",
		"FixedSizeBinary(16)",
		"List(Int32)",
	}
	for _, text := range texts {
		dt, err := ParseDataType(text)
		require.NoError(t, err, text)
		printed := PrintDataType(dt)
		dt2, err := ParseDataType(printed)
		require.NoError(t, err, printed)
		require.Equal(t, PrintDataType(dt2), printed)
	}
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	input := `[
		{"name": "id", "data_type": "Int64"},
		{"name": "name", "data_type": "Utf8", "nullable": true},
		{"name": "created", "data_type": "Date64", "strategy": "UtcStrAsDate64"}
	]`
	fields, err := ParseSchemaJSON([]byte(input))
	require.NoError(t, err)
	require.Len(t, fields, 3)
	require.Equal(t, datatype.UtcStrAsDate64, fields[2].Strategy)

	out, err := PrintSchemaJSON(fields)
	require.NoError(t, err)
	fields2, err := ParseSchemaJSON(out)
	require.NoError(t, err)
	require.Equal(t, fields[0].Name, fields2[0].Name)
	require.Equal(t, fields[2].Strategy, fields2[2].Strategy)
}
