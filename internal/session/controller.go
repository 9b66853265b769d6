// Package session owns the file-loading and query-execution state machine.
// The Controller is the only component that talks to the engine; everything
// else reads its published State snapshots.
//
// Operations are split into three phases so they compose with an
// event-driven UI: Begin* validates and marks the operation in flight
// (control thread), Run* performs the engine call (any goroutine), and
// Apply* folds the response back into the state (control thread). Each
// request carries a per-operation-kind generation number; a response whose
// generation is no longer current is discarded, so a stale engine reply can
// never overwrite fresher state.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/peekdb/peek/internal/engine"
	"github.com/peekdb/peek/internal/errs"
	"github.com/peekdb/peek/internal/notify"
)

// Controller mediates all SessionState transitions.
type Controller struct {
	eng     engine.Engine
	hub     *notify.Hub
	log     *slog.Logger
	maxRows int
	now     func() time.Time

	state    State
	loadGen  uint64
	queryGen uint64
	sheetGen uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMaxRows overrides the per-query materialization cap.
func WithMaxRows(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller bound to eng. Notifications are
// published to hub; pass nil to disable them.
func NewController(eng engine.Engine, hub *notify.Hub, opts ...Option) *Controller {
	c := &Controller{
		eng:     eng,
		hub:     hub,
		log:     slog.New(slog.DiscardHandler),
		maxRows: DefaultMaxRows,
		now:     time.Now,
		state:   State{QueryText: DefaultQueryText},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State { return c.state }

// SetQueryText records edited query text without running it.
func (c *Controller) SetQueryText(text string) {
	next := c.state
	next.QueryText = text
	c.state = next
}

// LoadRequest is an issued file-load operation.
type LoadRequest struct {
	Path string
	gen  uint64
}

// LoadResponse carries a load's outcome back to ApplyLoad.
type LoadResponse struct {
	req  LoadRequest
	Meta *engine.FileMetadata
	Err  error
}

// BeginLoad validates path and marks a file load in flight.
func (c *Controller) BeginLoad(path string) (LoadRequest, error) {
	if strings.TrimSpace(path) == "" {
		err := errs.New(errs.KindValidation, "no file path provided")
		c.fail(err)
		return LoadRequest{}, err
	}

	c.loadGen++
	next := c.state
	next.IsLoadingFile = true
	next.LastError = nil
	c.state = next

	c.log.Info("loading file", "path", path)
	return LoadRequest{Path: path, gen: c.loadGen}, nil
}

// RunLoad performs the engine call for req. Safe to call from any goroutine.
func (c *Controller) RunLoad(ctx context.Context, req LoadRequest) LoadResponse {
	meta, err := c.eng.ScanMetadata(ctx, req.Path)
	return LoadResponse{req: req, Meta: meta, Err: err}
}

// ApplyLoad folds a load outcome into the state. On success it installs the
// new metadata, resets the query text to the default preview statement, and
// returns the chained preview query request; a load always produces an
// initial preview. Stale responses are discarded and return a nil request.
func (c *Controller) ApplyLoad(res LoadResponse) (*QueryRequest, error) {
	if res.req.gen != c.loadGen {
		c.log.Debug("discarding stale load response", "path", res.req.Path)
		return nil, nil
	}

	next := c.state
	next.IsLoadingFile = false

	if res.Err != nil {
		next.LastError = res.Err
		c.state = next
		c.notifyError(res.Err)
		return nil, res.Err
	}

	next.FileMeta = res.Meta
	next.QueryText = DefaultQueryText
	next.Result = nil
	next.LastQueryDuration = 0
	c.state = next

	c.log.Info("file loaded", "file", res.Meta.FileName, "rows", res.Meta.RowCount)
	if c.hub != nil {
		c.hub.Successf("loaded %s (%d rows)", res.Meta.FileName, res.Meta.RowCount)
	}

	req, err := c.BeginQuery(DefaultQueryText)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// QueryRequest is an issued query-execution operation.
type QueryRequest struct {
	Text      string
	gen       uint64
	startedAt time.Time
}

// QueryResponse carries a query's outcome back to ApplyQuery.
type QueryResponse struct {
	req    QueryRequest
	Result *engine.QueryResult
	Err    error
}

// BeginQuery validates text and marks a query in flight. Empty text is
// rejected before any engine involvement.
func (c *Controller) BeginQuery(text string) (QueryRequest, error) {
	if strings.TrimSpace(text) == "" {
		err := errs.New(errs.KindValidation, "query text is empty")
		c.fail(err)
		return QueryRequest{}, err
	}

	c.queryGen++
	next := c.state
	next.QueryText = text
	next.IsRunningQuery = true
	next.LastError = nil
	c.state = next

	return QueryRequest{Text: text, gen: c.queryGen, startedAt: c.now()}, nil
}

// RunQuery performs the engine call for req. Safe to call from any goroutine.
func (c *Controller) RunQuery(ctx context.Context, req QueryRequest) QueryResponse {
	result, err := c.eng.Execute(ctx, req.Text, c.maxRows)
	return QueryResponse{req: req, Result: result, Err: err}
}

// ApplyQuery folds a query outcome into the state. A failed query leaves
// the previous result displayed. Stale responses are discarded.
func (c *Controller) ApplyQuery(res QueryResponse) error {
	if res.req.gen != c.queryGen {
		c.log.Debug("discarding stale query response")
		return nil
	}

	next := c.state
	next.IsRunningQuery = false

	if res.Err != nil {
		next.LastError = res.Err
		c.state = next
		c.notifyError(res.Err)
		return res.Err
	}

	elapsed := c.now().Sub(res.req.startedAt)
	next.Result = res.Result
	next.LastQueryDuration = elapsed
	c.state = next

	c.log.Info("query finished",
		"rows", res.Result.RowCount,
		"materialized", len(res.Result.Rows),
		"elapsed", elapsed)
	return nil
}

// SheetRequest is an issued sheet-selection operation.
type SheetRequest struct {
	Sheet string
	gen   uint64
}

// SheetResponse carries a sheet selection's outcome back to ApplySheet.
type SheetResponse struct {
	req  SheetRequest
	Meta *engine.FileMetadata
	Err  error
}

// BeginSheet validates the sheet name and marks the switch in flight.
func (c *Controller) BeginSheet(sheet string) (SheetRequest, error) {
	if strings.TrimSpace(sheet) == "" {
		err := errs.New(errs.KindValidation, "no sheet name provided")
		c.fail(err)
		return SheetRequest{}, err
	}

	c.sheetGen++
	next := c.state
	next.IsLoadingFile = true
	next.LastError = nil
	c.state = next

	return SheetRequest{Sheet: sheet, gen: c.sheetGen}, nil
}

// RunSheet performs the engine call for req. Safe to call from any goroutine.
func (c *Controller) RunSheet(ctx context.Context, req SheetRequest) SheetResponse {
	meta, err := c.eng.SelectSheet(ctx, req.Sheet)
	return SheetResponse{req: req, Meta: meta, Err: err}
}

// ApplySheet folds a sheet-selection outcome into the state. Success
// replaces the metadata and clears the result; unlike a load, a sheet
// switch does not auto-run a query, the caller decides when to re-query.
func (c *Controller) ApplySheet(res SheetResponse) error {
	if res.req.gen != c.sheetGen {
		c.log.Debug("discarding stale sheet response", "sheet", res.req.Sheet)
		return nil
	}

	next := c.state
	next.IsLoadingFile = false

	if res.Err != nil {
		next.LastError = res.Err
		c.state = next
		c.notifyError(res.Err)
		return res.Err
	}

	next.FileMeta = res.Meta
	next.Result = nil
	next.LastQueryDuration = 0
	c.state = next

	c.log.Info("sheet selected", "sheet", res.Meta.ActiveSheet)
	return nil
}

// ExportRequest is an issued export operation. The query text is captured
// when the export begins, so edits made while it runs cannot change what
// gets written.
type ExportRequest struct {
	Dest   string
	Format engine.ExportFormat
	text   string
}

// ExportResponse carries an export's outcome back to ApplyExport.
type ExportResponse struct {
	req ExportRequest
	Err error
}

// BeginExport validates that a file is loaded and captures the current
// query text. No engine call is made without an active file.
func (c *Controller) BeginExport(destPath string, format engine.ExportFormat) (ExportRequest, error) {
	if c.state.FileMeta == nil {
		err := errs.New(errs.KindNoActiveFile, "no file loaded")
		c.fail(err)
		return ExportRequest{}, err
	}
	return ExportRequest{Dest: destPath, Format: format, text: c.state.QueryText}, nil
}

// RunExport performs the engine call for req. Safe to call from any
// goroutine; it touches only the request, never the state.
func (c *Controller) RunExport(ctx context.Context, req ExportRequest) ExportResponse {
	return ExportResponse{req: req, Err: c.eng.ExportQuery(ctx, req.text, req.Dest, req.Format)}
}

// ApplyExport folds an export outcome into the state. Pass-through: no
// state mutation beyond error recording.
func (c *Controller) ApplyExport(res ExportResponse) error {
	if res.Err != nil {
		c.fail(res.Err)
		return res.Err
	}

	c.log.Info("exported result", "dest", res.req.Dest, "format", string(res.req.Format))
	if c.hub != nil {
		c.hub.Successf("exported to %s", res.req.Dest)
	}
	return nil
}

// Export writes the current query's full result to destPath synchronously.
func (c *Controller) Export(ctx context.Context, destPath string, format engine.ExportFormat) error {
	req, err := c.BeginExport(destPath, format)
	if err != nil {
		return err
	}
	return c.ApplyExport(c.RunExport(ctx, req))
}

// ResolveSample resolves a bundled sample name to a loadable path.
func (c *Controller) ResolveSample(ctx context.Context, name string) (string, error) {
	path, err := c.eng.ResolveSamplePath(ctx, name)
	if err != nil {
		c.fail(err)
		return "", err
	}
	return path, nil
}

// LoadFile runs a complete load synchronously, including the chained
// preview query. Used by the CLI paths; the TUI drives the phases itself.
func (c *Controller) LoadFile(ctx context.Context, path string) error {
	req, err := c.BeginLoad(path)
	if err != nil {
		return err
	}
	queryReq, err := c.ApplyLoad(c.RunLoad(ctx, req))
	if err != nil {
		return err
	}
	if queryReq != nil {
		return c.ApplyQuery(c.RunQuery(ctx, *queryReq))
	}
	return nil
}

// Query runs a query synchronously.
func (c *Controller) Query(ctx context.Context, text string) error {
	req, err := c.BeginQuery(text)
	if err != nil {
		return err
	}
	return c.ApplyQuery(c.RunQuery(ctx, req))
}

// SelectSheet switches sheets synchronously.
func (c *Controller) SelectSheet(ctx context.Context, sheet string) error {
	req, err := c.BeginSheet(sheet)
	if err != nil {
		return err
	}
	return c.ApplySheet(c.RunSheet(ctx, req))
}

// LoadSample resolves and loads a bundled sample synchronously.
func (c *Controller) LoadSample(ctx context.Context, name string) error {
	path, err := c.ResolveSample(ctx, name)
	if err != nil {
		return err
	}
	return c.LoadFile(ctx, path)
}

// fail records err and surfaces it without touching other state.
func (c *Controller) fail(err error) {
	next := c.state
	next.LastError = err
	c.state = next
	c.notifyError(err)
}

func (c *Controller) notifyError(err error) {
	c.log.Error("operation failed", "error", err)
	if c.hub != nil {
		c.hub.Errorf("%s", errs.UserMessage(err))
	}
}
