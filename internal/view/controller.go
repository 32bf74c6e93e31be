package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargedash/internal/invoice"
	"chargedash/internal/models"
	"chargedash/internal/records"
)

// ErrPrintSurfaceBlocked indicates the printable output surface could not be
// opened. The view state is unchanged.
var ErrPrintSurfaceBlocked = errors.New("view: print surface blocked")

// ErrNoSelection indicates a print was requested with no record selected.
var ErrNoSelection = errors.New("view: no record selected")

// RecordsService is the backend accessor the controller fetches from.
type RecordsService interface {
	ListRecords(ctx context.Context) ([]models.ChargingRecord, error)
	GetRecord(ctx context.Context, id int64) (*models.ChargingRecord, error)
}

// PrintSurface opens a standalone output surface for printable documents.
type PrintSurface interface {
	Open(name string) (io.WriteCloser, error)
}

// State is the records view lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// EventType classifies controller notifications.
type EventType string

const (
	EventLoaded       EventType = "loaded"
	EventLoadFailed   EventType = "load_failed"
	EventDetailOpened EventType = "detail_opened"
	EventNotice       EventType = "notice"
	EventWarning      EventType = "warning"
)

// Event is delivered to subscribers after each relevant state change.
type Event struct {
	Type    EventType
	Message string
	Err     error
}

// Listener receives controller events.
type Listener func(Event)

// Snapshot is the controller's visible state at one point in time.
type Snapshot struct {
	State      State
	Loading    bool
	Page       records.Page
	PageNum    int
	PageSize   int
	Search     string
	TimeRange  records.TimeRange
	Selected   *models.ChargingRecord
	DetailOpen bool
}

// Controller owns the records view: the cached record set, the filter inputs,
// the selection and the load lifecycle. Filtering is recomputed from the pure
// view function on every Snapshot call.
type Controller struct {
	svc     RecordsService
	surface PrintSurface
	logger  *zap.Logger
	clock   func() time.Time

	mu         sync.Mutex
	state      State
	loading    bool
	loadSeq    uint64
	cache      []models.ChargingRecord
	search     string
	timeRange  records.TimeRange
	page       int
	pageSize   int
	selected   *models.ChargingRecord
	detailOpen bool
	listeners  []Listener
}

// NewController returns an idle controller with default pagination.
func NewController(svc RecordsService, surface PrintSurface, logger *zap.Logger) *Controller {
	return &Controller{
		svc:      svc,
		surface:  surface,
		logger:   logger,
		clock:    time.Now,
		page:     1,
		pageSize: 10,
	}
}

// Subscribe registers a listener for controller events.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}

// Load fetches the full record set. Overlapping loads are resolved
// last-request-wins: a completion belonging to a superseded request is
// discarded. On failure the previously loaded set is retained.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.loading = true
	c.state = StateLoading
	c.mu.Unlock()

	recs, err := c.svc.ListRecords(ctx)

	c.mu.Lock()
	if seq != c.loadSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale record load", zap.Uint64("seq", seq))
		return nil
	}
	c.loading = false
	if err != nil {
		c.state = StateError
		c.mu.Unlock()
		c.logger.Error("failed to load charging records", zap.Error(err))
		c.emit(Event{Type: EventLoadFailed, Message: "获取充电记录失败", Err: err})
		return err
	}
	c.cache = recs
	c.state = StateLoaded
	c.mu.Unlock()

	c.emit(Event{Type: EventLoaded})
	return nil
}

// Reset discards the cached record set and all view state, returning the
// controller to idle. Called when the session ends.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadSeq++ // invalidates any in-flight load
	c.state = StateIdle
	c.loading = false
	c.cache = nil
	c.search = ""
	c.timeRange = records.RangeAll
	c.page = 1
	c.pageSize = 10
	c.selected = nil
	c.detailOpen = false
}

// Snapshot recomputes and returns the visible page plus UI state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:      c.state,
		Loading:    c.loading,
		Page:       records.View(c.cache, c.search, c.timeRange, c.page, c.pageSize, c.clock()),
		PageNum:    c.page,
		PageSize:   c.pageSize,
		Search:     c.search,
		TimeRange:  c.timeRange,
		DetailOpen: c.detailOpen,
	}
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	return snap
}

// SetSearch updates the search text; the current page is kept.
func (c *Controller) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = search
}

// SetTimeRange updates the time-range selector.
func (c *Controller) SetTimeRange(rng records.TimeRange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeRange = rng
}

// SetPage moves to the given 1-indexed page.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	c.page = page
}

// SetPageSize changes the page size and resets to page 1 so the view never
// lands on an out-of-range page.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size < 1 {
		return
	}
	c.pageSize = size
	c.page = 1
}

// Open selects a record and opens the detail modal.
func (c *Controller) Open(rec models.ChargingRecord) {
	c.mu.Lock()
	c.selected = &rec
	c.detailOpen = true
	c.mu.Unlock()
	c.emit(Event{Type: EventDetailOpened})
}

// Close closes the detail modal; the selection is kept.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detailOpen = false
}

// Resolve finds a record by id, cache first, falling back to a direct fetch.
// It does not touch the selection.
func (c *Controller) Resolve(ctx context.Context, id int64) (*models.ChargingRecord, error) {
	c.mu.Lock()
	for i := range c.cache {
		if c.cache[i].ID == id {
			rec := c.cache[i]
			c.mu.Unlock()
			return &rec, nil
		}
	}
	c.mu.Unlock()
	return c.svc.GetRecord(ctx, id)
}

// OpenByID resolves a deep-linked record id via Resolve and opens its detail
// view. Resolution failure emits a notice and leaves the list view usable.
func (c *Controller) OpenByID(ctx context.Context, id int64) error {
	rec, err := c.Resolve(ctx, id)
	if err != nil {
		c.logger.Warn("failed to resolve deep-linked record", zap.Int64("record_id", id), zap.Error(err))
		c.emit(Event{Type: EventNotice, Message: "获取充电记录详情失败", Err: err})
		return err
	}

	c.mu.Lock()
	c.selected = rec
	c.detailOpen = true
	c.mu.Unlock()
	c.emit(Event{Type: EventDetailOpened})
	return nil
}

// Print renders the selected record's printable document into the print
// surface. A blocked surface emits a warning and changes no state.
func (c *Controller) Print() error {
	c.mu.Lock()
	sel := c.selected
	now := c.clock()
	c.mu.Unlock()
	if sel == nil {
		return ErrNoSelection
	}

	markup, err := invoice.RenderPrintable(*sel, now)
	if err != nil {
		return err
	}

	out, err := c.surface.Open(sel.RecordNumber)
	if err != nil {
		c.logger.Warn("print surface blocked", zap.String("record_number", sel.RecordNumber), zap.Error(err))
		c.emit(Event{Type: EventWarning, Message: "请允许弹出窗口以打印详单", Err: err})
		return fmt.Errorf("%w: %v", ErrPrintSurfaceBlocked, err)
	}
	defer out.Close()

	if _, err := io.WriteString(out, markup); err != nil {
		return fmt.Errorf("view: write printable: %w", err)
	}
	return nil
}
