package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/arrowcodec/builder"
	"github.com/aclements/arrowcodec/codec"
	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
)

func schema() []datatype.Field {
	return []datatype.Field{
		{Name: "id", Type: datatype.Int64Type},
		{Name: "name", Type: datatype.Utf8Type, Nullable: true},
	}
}

func record(id int64, name string, nameNull bool) []event.Event {
	b := &event.Builder{}
	b.Push(event.New(event.StartStruct))
	b.Push(event.NewFieldName("id"))
	b.Push(event.NewI64(id))
	b.Push(event.NewFieldName("name"))
	if nameNull {
		b.Push(event.NullEvent)
	} else {
		b.Push(event.NewStr(name))
	}
	b.Push(event.New(event.EndStruct))
	return b.Events()
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	sch := schema()
	s, err := codec.NewSerializer(sch, builder.Options{})
	require.NoError(t, err)

	require.NoError(t, s.AppendRecord(event.NewCursor(record(1, "alice", false))))
	require.NoError(t, s.AppendRecord(event.NewCursor(record(2, "", true))))
	require.Equal(t, 2, s.Rows())

	arrays, err := s.Finish()
	require.NoError(t, err)
	require.Len(t, arrays, 2)
	require.Equal(t, 2, arrays[0].Length)
	require.Equal(t, 2, arrays[1].Length)

	d, err := codec.NewDeserializer(sch, arrays)
	require.NoError(t, err)
	require.Equal(t, 2, d.Rows())

	rec1, ok := d.Next(nil)
	require.True(t, ok)
	require.Equal(t, event.StartStruct, rec1[0].Kind)
	require.Equal(t, int64(1), rec1[2].I64)
	require.Equal(t, "alice", rec1[4].Str)

	rec2, ok := d.Next(nil)
	require.True(t, ok)
	require.Equal(t, event.Null, rec2[4].Kind)

	_, ok = d.Next(nil)
	require.False(t, ok)
}

func TestDeserializerRejectsLengthMismatch(t *testing.T) {
	sch := schema()
	idField, err := builder.NewForField(sch[0], builder.Options{})
	require.NoError(t, err)
	require.NoError(t, idField.Append(event.NewCursor([]event.Event{event.NewI64(1)})))
	idArr, err := idField.Finish()
	require.NoError(t, err)

	nameField, err := builder.NewForField(sch[1], builder.Options{})
	require.NoError(t, err)
	require.NoError(t, nameField.Append(event.NewCursor([]event.Event{event.NewStr("a")})))
	require.NoError(t, nameField.Append(event.NewCursor([]event.Event{event.NewStr("b")})))
	nameArr, err := nameField.Finish()
	require.NoError(t, err)

	_, err = codec.NewDeserializer(sch, []*builder.Array{idArr, nameArr})
	require.Error(t, err)
}
