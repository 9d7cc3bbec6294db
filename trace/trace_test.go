package trace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aclements/arrowcodec/datatype"
	"github.com/aclements/arrowcodec/event"
	"github.com/aclements/arrowcodec/trace"
)

func rec(evs ...event.Event) *event.Cursor {
	all := append([]event.Event{event.New(event.StartStruct)}, evs...)
	all = append(all, event.New(event.EndStruct))
	return event.NewCursor(all)
}

// TestTraceMixedDateFormatsFallsBackToLargeUtf8 covers spec scenario 7.
func TestTraceMixedDateFormatsFallsBackToLargeUtf8(t *testing.T) {
	tr := trace.New(trace.Options{GuessDates: true})
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("ts"), event.NewStr("2015-09-18T23:56:04"),
	)))
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("ts"), event.NewStr("2023-08-14T17:00:04Z"),
	)))
	fields, err := tr.Finish()
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.Equal(t, datatype.LargeUtf8, fields[0].Type.ID())
}

func TestTraceUtcDateDetection(t *testing.T) {
	tr := trace.New(trace.Options{GuessDates: true})
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("ts"), event.NewStr("2020-12-24T08:30:00Z"),
	)))
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("ts"), event.NewStr("2023-05-05T16:06:00Z"),
	)))
	fields, err := tr.Finish()
	require.NoError(t, err)
	require.Equal(t, datatype.Date64, fields[0].Type.ID())
	require.Equal(t, datatype.UtcStrAsDate64, fields[0].Strategy)
}

func TestTraceNullableFromNullObservation(t *testing.T) {
	tr := trace.New(trace.Options{})
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("n"), event.NewI64(1),
	)))
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("n"), event.NullEvent,
	)))
	fields, err := tr.Finish()
	require.NoError(t, err)
	require.True(t, fields[0].Nullable)
	require.Equal(t, datatype.Int8, fields[0].Type.ID())
}

func TestTraceIntegerFamilyCrossingFailsWithoutCoercion(t *testing.T) {
	tr := trace.New(trace.Options{})
	require.NoError(t, tr.AddRecord(rec(event.NewFieldName("n"), event.NewI64(-1))))
	err := tr.AddRecord(rec(event.NewFieldName("n"), event.NewU64(1)))
	require.Error(t, err)
}

// TestTraceSameKindStraddlingZeroDoesNotCrossFamilies guards against
// unifying by value sign instead of event Kind: an ordinary signed
// column whose samples straddle zero must stay Int, not be treated as
// a signed/unsigned family crossing.
func TestTraceSameKindStraddlingZeroDoesNotCrossFamilies(t *testing.T) {
	tr := trace.New(trace.Options{})
	require.NoError(t, tr.AddRecord(rec(event.NewFieldName("n"), event.NewI64(-1))))
	require.NoError(t, tr.AddRecord(rec(event.NewFieldName("n"), event.NewI64(5))))
	fields, err := tr.Finish()
	require.NoError(t, err)
	require.Equal(t, datatype.Int8, fields[0].Type.ID())
}

func TestTraceStructAccumulatesFieldUnion(t *testing.T) {
	tr := trace.New(trace.Options{})
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("obj"), event.New(event.StartStruct),
		event.NewFieldName("a"), event.NewI64(1),
		event.New(event.EndStruct),
	)))
	require.NoError(t, tr.AddRecord(rec(
		event.NewFieldName("obj"), event.New(event.StartStruct),
		event.NewFieldName("b"), event.NewStr("x"),
		event.New(event.EndStruct),
	)))
	fields, err := tr.Finish()
	require.NoError(t, err)
	require.Equal(t, datatype.Struct, fields[0].Type.ID())
	require.Len(t, fields[0].Type.Children(), 2)
}
