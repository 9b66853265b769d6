package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/errs"
)

// fakeEngine records calls and serves canned responses.
type fakeEngine struct {
	scanCalls   int
	execCalls   int
	sheetCalls  int
	exportCalls int
	sampleCalls int

	lastSQL       string
	lastMaxRows   int
	lastExportSQL string

	meta      *engine.FileMetadata
	result    *engine.QueryResult
	scanErr   error
	execErr   error
	sheetErr  error
	exportErr error
}

func (f *fakeEngine) ScanMetadata(_ context.Context, _ string) (*engine.FileMetadata, error) {
	f.scanCalls++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.meta, nil
}

func (f *fakeEngine) Execute(_ context.Context, sql string, maxRows int) (*engine.QueryResult, error) {
	f.execCalls++
	f.lastSQL = sql
	f.lastMaxRows = maxRows
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.result, nil
}

func (f *fakeEngine) SelectSheet(_ context.Context, _ string) (*engine.FileMetadata, error) {
	f.sheetCalls++
	if f.sheetErr != nil {
		return nil, f.sheetErr
	}
	return f.meta, nil
}

func (f *fakeEngine) ExportQuery(_ context.Context, sql, _ string, _ engine.ExportFormat) error {
	f.exportCalls++
	f.lastExportSQL = sql
	return f.exportErr
}

func (f *fakeEngine) ResolveSamplePath(_ context.Context, name string) (string, error) {
	f.sampleCalls++
	return "/samples/" + name, nil
}

func (f *fakeEngine) Close() error { return nil }

func sampleMeta() *engine.FileMetadata {
	return &engine.FileMetadata{
		FileName: "sample.csv",
		FilePath: "/data/sample.csv",
		FileSize: 1024,
		RowCount: 500,
		Schema: []engine.FieldInfo{
			{Name: "id", DType: "int"},
			{Name: "name", DType: "string"},
		},
	}
}

func sampleResult() *engine.QueryResult {
	return &engine.QueryResult{
		Columns: []engine.ColumnInfo{
			{Name: "id", DType: "int"},
			{Name: "name", DType: "string"},
		},
		Rows: [][]engine.Value{
			{engine.Number(1), engine.Text("alpha")},
		},
		RowCount: 500,
	}
}

func TestController_LoadRoundTrip(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)

	err := c.LoadFile(context.Background(), "/data/sample.csv")
	require.NoError(t, err)

	state := c.State()
	require.NotNil(t, state.FileMeta)
	assert.EqualValues(t, 500, state.FileMeta.RowCount)
	assert.Equal(t, DefaultQueryText, state.QueryText)
	require.NotNil(t, state.Result)
	assert.False(t, state.IsLoadingFile)
	assert.False(t, state.IsRunningQuery)

	// A load triggers exactly one chained preview query with the default
	// text and the standard row cap.
	assert.Equal(t, 1, eng.scanCalls)
	assert.Equal(t, 1, eng.execCalls)
	assert.Equal(t, DefaultQueryText, eng.lastSQL)
	assert.Equal(t, 1000, eng.lastMaxRows)
}

func TestController_LoadFailurePreservesPriorState(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)
	require.NoError(t, c.LoadFile(context.Background(), "/data/sample.csv"))

	eng.scanErr = errs.New(errs.KindScan, "unreadable file")
	err := c.LoadFile(context.Background(), "/data/broken.bin")
	require.Error(t, err)

	state := c.State()
	assert.Equal(t, "sample.csv", state.FileMeta.FileName)
	assert.NotNil(t, state.Result)
	assert.False(t, state.IsLoadingFile)
	assert.True(t, errs.IsKind(state.LastError, errs.KindScan))
}

func TestController_EmptyQueryGuard(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	err := c.Query(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	assert.Equal(t, 0, eng.execCalls)
	assert.False(t, c.State().IsRunningQuery)
}

func TestController_QueryFailurePreservesResult(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)
	require.NoError(t, c.LoadFile(context.Background(), "/data/sample.csv"))

	eng.execErr = errs.New(errs.KindQuery, "syntax error near SELEKT")
	err := c.Query(context.Background(), "SELEKT nope")
	require.Error(t, err)

	state := c.State()
	assert.NotNil(t, state.Result)
	assert.False(t, state.IsRunningQuery)
	assert.True(t, errs.IsKind(state.LastError, errs.KindQuery))
}

func TestController_QueryDuration(t *testing.T) {
	eng := &fakeEngine{result: sampleResult()}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewController(eng, nil, WithClock(func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}))

	require.NoError(t, c.Query(context.Background(), "SELECT 1"))
	assert.Equal(t, 250*time.Millisecond, c.State().LastQueryDuration)
}

func TestController_StaleQueryResponseDiscarded(t *testing.T) {
	eng := &fakeEngine{result: sampleResult()}
	c := NewController(eng, nil)
	ctx := context.Background()

	first, err := c.BeginQuery("SELECT 1")
	require.NoError(t, err)
	firstRes := c.RunQuery(ctx, first)

	second, err := c.BeginQuery("SELECT 2")
	require.NoError(t, err)

	// The superseded response must not clear the in-flight flag or touch
	// the result.
	require.NoError(t, c.ApplyQuery(firstRes))
	assert.True(t, c.State().IsRunningQuery)
	assert.Nil(t, c.State().Result)

	require.NoError(t, c.ApplyQuery(c.RunQuery(ctx, second)))
	assert.False(t, c.State().IsRunningQuery)
	assert.NotNil(t, c.State().Result)
}

func TestController_StaleLoadResponseDiscarded(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)
	ctx := context.Background()

	first, err := c.BeginLoad("/data/old.csv")
	require.NoError(t, err)
	firstRes := c.RunLoad(ctx, first)

	_, err = c.BeginLoad("/data/new.csv")
	require.NoError(t, err)

	chained, err := c.ApplyLoad(firstRes)
	require.NoError(t, err)
	assert.Nil(t, chained)
	assert.True(t, c.State().IsLoadingFile)
	assert.Nil(t, c.State().FileMeta)
}

func TestController_SelectSheetClearsResultWithoutAutoQuery(t *testing.T) {
	meta := sampleMeta()
	meta.Sheets = []string{"Sheet1", "Sheet2"}
	meta.ActiveSheet = "Sheet1"
	eng := &fakeEngine{meta: meta, result: sampleResult()}
	c := NewController(eng, nil)
	require.NoError(t, c.LoadFile(context.Background(), "/data/book.xlsx"))
	execCallsAfterLoad := eng.execCalls

	switched := sampleMeta()
	switched.Sheets = meta.Sheets
	switched.ActiveSheet = "Sheet2"
	eng.meta = switched

	require.NoError(t, c.SelectSheet(context.Background(), "Sheet2"))

	state := c.State()
	assert.Equal(t, "Sheet2", state.FileMeta.ActiveSheet)
	assert.Nil(t, state.Result)
	assert.Zero(t, state.LastQueryDuration)
	assert.Equal(t, execCallsAfterLoad, eng.execCalls)
}

func TestController_ExportRequiresActiveFile(t *testing.T) {
	eng := &fakeEngine{}
	c := NewController(eng, nil)

	err := c.Export(context.Background(), "/tmp/out.csv", engine.ExportCSV)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNoActiveFile))
	assert.Equal(t, 0, eng.exportCalls)
	assert.Equal(t, 0, eng.execCalls)
	assert.Equal(t, 0, eng.scanCalls)
}

func TestController_Export(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)
	require.NoError(t, c.LoadFile(context.Background(), "/data/sample.csv"))

	require.NoError(t, c.Export(context.Background(), "/tmp/out.csv", engine.ExportCSV))
	assert.Equal(t, 1, eng.exportCalls)
}

func TestController_ExportRunsOffControlThread(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)
	ctx := context.Background()
	require.NoError(t, c.LoadFile(ctx, "/data/sample.csv"))
	c.SetQueryText("SELECT id FROM source")

	req, err := c.BeginExport("/tmp/out.csv", engine.ExportCSV)
	require.NoError(t, err)

	// The run phase holds no reference to the controller state, so the
	// control thread may keep editing while the export is in flight.
	done := make(chan ExportResponse, 1)
	go func() { done <- c.RunExport(ctx, req) }()
	c.SetQueryText("SELECT name FROM source")
	res := <-done

	require.NoError(t, c.ApplyExport(res))
	assert.Equal(t, 1, eng.exportCalls)
	assert.Equal(t, "SELECT id FROM source", eng.lastExportSQL)
	assert.Equal(t, "SELECT name FROM source", c.State().QueryText)
}

func TestController_LoadSample(t *testing.T) {
	eng := &fakeEngine{meta: sampleMeta(), result: sampleResult()}
	c := NewController(eng, nil)

	require.NoError(t, c.LoadSample(context.Background(), "sample.csv"))
	assert.Equal(t, 1, eng.sampleCalls)
	assert.Equal(t, 1, eng.scanCalls)
	require.NotNil(t, c.State().FileMeta)
}

func TestController_SetQueryText(t *testing.T) {
	c := NewController(&fakeEngine{}, nil)
	c.SetQueryText("SELECT count(*) FROM source")
	assert.Equal(t, "SELECT count(*) FROM source", c.State().QueryText)
}
