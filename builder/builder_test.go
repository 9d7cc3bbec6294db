package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codecerr"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/source"
)

func appendAll(t *testing.T, b builder.Builder, rows [][]event.Event) {
	t.Helper()
	for _, evs := range rows {
		require.NoError(t, b.Append(event.NewCursor(evs)))
	}
}

// TestDate64UtcStrategy covers spec scenario 1.
func TestDate64UtcStrategy(t *testing.T) {
	f, err := datatype.Field{Name: "created", Type: datatype.Date64Type}.WithStrategy(datatype.UtcStrAsDate64)
	require.NoError(t, err)
	b, err := builder.NewForField(f, builder.Options{})
	require.NoError(t, err)
	appendAll(t, b, [][]event.Event{
		{event.NewStr("2020-12-24T08:30:00Z")},
		{event.NewStr("2023-05-05T16:06:00Z")},
	})
	arr, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, 2, arr.Length)

	src, err := source.NewForField(f, arr)
	require.NoError(t, err)
	var got []event.Event
	got = src.Emit(0, got)
	got = src.Emit(1, got)
	require.Equal(t, "2020-12-24T08:30:00Z", got[0].Str)
	require.Equal(t, "2023-05-05T16:06:00Z", got[1].Str)
}

// TestDate64NaiveStrategy covers spec scenario 2.
func TestDate64NaiveStrategy(t *testing.T) {
	f, err := datatype.Field{Name: "d", Type: datatype.Date64Type}.WithStrategy(datatype.NaiveStrAsDate64)
	require.NoError(t, err)
	b, err := builder.NewForField(f, builder.Options{})
	require.NoError(t, err)
	appendAll(t, b, [][]event.Event{
		{event.NewStr("2022-09-11T18:34:48")},
		{event.NewStr("1900-01-01T15:18:45")},
	})
	arr, err := b.Finish()
	require.NoError(t, err)

	src, err := source.NewForField(f, arr)
	require.NoError(t, err)
	var got []event.Event
	got = src.Emit(0, got)
	got = src.Emit(1, got)
	require.Equal(t, "2022-09-11T18:34:48", got[0].Str)
	require.Equal(t, "1900-01-01T15:18:45", got[1].Str)
}

// TestDecimal128 covers spec scenario 3.
func TestDecimal128(t *testing.T) {
	dt, err := datatype.NewDecimal128(5, 2)
	require.NoError(t, err)
	f := datatype.Field{Name: "amount", Type: dt}
	b, err := builder.NewForField(f, builder.Options{})
	require.NoError(t, err)
	require.NoError(t, b.Append(event.NewCursor([]event.Event{event.NewStr("1.23")})))
	require.NoError(t, b.Append(event.NewCursor([]event.Event{event.NewStr("4.56")})))
	err = b.Append(event.NewCursor([]event.Event{event.NewStr("1234.56")}))
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.OutOfRange))

	arr, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, 2, arr.Length)

	src, err := source.NewForField(f, arr)
	require.NoError(t, err)
	var got []event.Event
	got = src.Emit(0, got)
	got = src.Emit(1, got)
	require.Equal(t, "1.23", got[0].Str)
	require.Equal(t, "4.56", got[1].Str)
}

// TestTime64InvalidUnit covers spec scenario 4.
func TestTime64InvalidUnit(t *testing.T) {
	_, err := datatype.NewTime64(datatype.Second)
	require.Error(t, err)
	require.True(t, codecerr.Is(err, codecerr.SchemaInvalid))
	require.Contains(t, err.Error(), "Microsecond")
}

// TestDictionaryEncoding covers spec scenario 5.
func TestDictionaryEncoding(t *testing.T) {
	dt, err := datatype.NewDictionary(datatype.Uint32Type, datatype.Utf8Type, false)
	require.NoError(t, err)
	f := datatype.Field{Name: "tag", Type: dt}
	b, err := builder.NewForField(f, builder.Options{})
	require.NoError(t, err)
	for _, s := range []string{"a", "b", "a", "a", "c"} {
		require.NoError(t, b.Append(event.NewCursor([]event.Event{event.NewStr(s)})))
	}
	arr, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, 5, arr.Length)
	require.Equal(t, 3, arr.Dictionary.Length)

	src, err := source.NewForField(f, arr)
	require.NoError(t, err)
	var got []event.Event
	for i := 0; i < 5; i++ {
		got = src.Emit(i, got)
	}
	want := []string{"a", "b", "a", "a", "c"}
	for i, w := range want {
		require.Equal(t, w, got[i].Str)
	}
}

// TestUnionDenseVariants covers spec scenario 6.
func TestUnionDenseVariants(t *testing.T) {
	pairType := datatype.NewStruct([]datatype.Field{
		{Name: "0", Type: datatype.Uint32Type},
		{Name: "1", Type: datatype.Uint32Type},
	})
	newTypeType := datatype.NewStruct([]datatype.Field{
		{Name: "a", Type: datatype.Float32Type},
		{Name: "b", Type: datatype.Float32Type},
	})
	ut := datatype.NewUnion([]datatype.Field{
		{Name: "VariantWithoutData", Type: datatype.NullType, Nullable: true},
		{Name: "Pair", Type: pairType},
		{Name: "NewType", Type: newTypeType},
	}, datatype.Dense)
	f := datatype.Field{Name: "u", Type: ut}
	b, err := builder.NewForField(f, builder.Options{})
	require.NoError(t, err)

	require.NoError(t, b.Append(event.NewCursor([]event.Event{
		event.NewVariantName("VariantWithoutData", 0), event.NullEvent,
	})))
	require.NoError(t, b.Append(event.NewCursor([]event.Event{
		event.NewVariantName("Pair", 1),
		event.New(event.StartStruct),
		event.NewFieldName("0"), event.NewU32(7),
		event.NewFieldName("1"), event.NewU32(9),
		event.New(event.EndStruct),
	})))
	require.NoError(t, b.Append(event.NewCursor([]event.Event{
		event.NewVariantName("NewType", 2),
		event.New(event.StartStruct),
		event.NewFieldName("a"), event.NewF32(1.0),
		event.NewFieldName("b"), event.NewF32(2.0),
		event.New(event.EndStruct),
	})))

	arr, err := b.Finish()
	require.NoError(t, err)
	require.Equal(t, 3, arr.Length)
	require.Equal(t, int8(0), int8(arr.Buffers[0][0]))
	require.Equal(t, int8(1), int8(arr.Buffers[0][1]))
	require.Equal(t, int8(2), int8(arr.Buffers[0][2]))
	require.Equal(t, 1, arr.Children[0].Length)
	require.Equal(t, 1, arr.Children[1].Length)
	require.Equal(t, 1, arr.Children[2].Length)
}
