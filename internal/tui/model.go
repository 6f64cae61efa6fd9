package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/logview/internal/logstore"
	"github.com/tinytelemetry/logview/internal/model"
	"github.com/tinytelemetry/logview/internal/observe"
	"github.com/tinytelemetry/logview/internal/timeline"
	"github.com/tinytelemetry/logview/internal/virtual"
	"go.uber.org/zap"
)

// Section identifies the focused part of the screen.
type Section int

const (
	SectionTable Section = iota
	SectionTimeline
)

func (s Section) String() string {
	if s == SectionTimeline {
		return "Timeline"
	}
	return "Table"
}

// tableKey is the width observer key of the log table container.
const tableKey = "log-table"

// Options configures a ViewerModel.
type Options struct {
	Store              logstore.Reader
	Location           *time.Location // hour bucketing zone, time.Local when nil
	Overscan           int
	SummaryLines       int
	ReverseScrollWheel bool
	SourceName         string
	Logger             *zap.Logger
}

// ViewerModel renders the log table and the per-hour timeline from the
// latest store snapshot.
type ViewerModel struct {
	store       logstore.Reader
	updates     <-chan struct{}
	unsubscribe func()
	snap        *logstore.Snapshot

	// timeline
	cursor      *timeline.Cursor
	summary     timeline.Summary
	focusedHour int
	hoverHour   int // -1 when the pointer is not over a bar

	// table
	rows      *virtual.RowManager
	widthObs  *observe.Registry[string]
	heightObs *observe.Registry[int]
	mounted   map[int]func() // row index -> unobserve
	rendered  map[int]string

	activeSection      Section
	keys               KeyMap
	help               help.Model
	spinner            spinner.Model
	showHelp           bool
	summaryLines       int
	reverseScrollWheel bool
	sourceName         string
	logger             *zap.Logger

	width, height int
	closed        bool
}

// NewViewerModel creates the viewer bound to a store.
func NewViewerModel(opts Options) *ViewerModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SummaryLines <= 0 {
		opts.SummaryLines = model.DefaultSummaryLines
	}
	overscan := opts.Overscan
	if overscan <= 0 {
		overscan = model.DefaultOverscan
	}

	updates, unsubscribe := opts.Store.Subscribe()
	m := &ViewerModel{
		store:       opts.Store,
		updates:     updates,
		unsubscribe: unsubscribe,
		snap:        opts.Store.Snapshot(),

		cursor:      timeline.NewCursor(opts.Location),
		hoverHour:   -1,
		focusedHour: 0,

		rows:      virtual.NewRowManager(virtual.WithDefaultSize(1), virtual.WithOverscan(overscan)),
		widthObs:  observe.NewRegistry[string](),
		heightObs: observe.NewRegistry[int](),
		mounted:   make(map[int]func()),
		rendered:  make(map[int]string),

		keys:               DefaultKeyMap(),
		help:               help.New(),
		spinner:            newSpinner(),
		summaryLines:       opts.SummaryLines,
		reverseScrollWheel: opts.ReverseScrollWheel,
		sourceName:         opts.SourceName,
		logger:             opts.Logger,
	}

	m.widthObs.Observe(tableKey, func(s observe.Size) {
		if m.rows.SetViewport(s.Width, s.Height) {
			m.logger.Debug("table width changed", zap.Int("width", s.Width))
		}
	})
	m.applySnapshot(m.snap)
	return m
}

// ID implements Page.
func (m *ViewerModel) ID() string { return "viewer" }

// Init starts waiting for snapshots and, while ingesting, the spinner.
func (m *ViewerModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForSnapshot(m.updates)}
	if m.ingesting() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Close detaches from the store and drops every observer. The model must
// not be used afterwards.
func (m *ViewerModel) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.unsubscribe()
	m.heightObs.Reset()
	m.widthObs.Reset()
	clear(m.mounted)
	clear(m.rendered)
}

// Records returns the records of the current snapshot.
func (m *ViewerModel) Records() []model.LogRecord { return m.snap.Records }

// Rows exposes the row manager.
func (m *ViewerModel) Rows() *virtual.RowManager { return m.rows }

// Summary returns the bucketed current day.
func (m *ViewerModel) Summary() timeline.Summary { return m.summary }

// MountedRows returns how many rows currently have a height observer.
func (m *ViewerModel) MountedRows() int { return m.heightObs.Len() }

// ActiveSection returns the focused section.
func (m *ViewerModel) ActiveSection() Section { return m.activeSection }

// applySnapshot adopts a new snapshot. The day cursor is set from the first
// record once and then left to the user.
func (m *ViewerModel) applySnapshot(snap *logstore.Snapshot) {
	m.snap = snap
	m.rows.SetCount(len(snap.Records))
	if m.cursor.Init(snap.Records) {
		if day, ok := m.cursor.Day(); ok {
			m.logger.Debug("day cursor initialised", zap.String("day", timeline.FormatDateIn(day, m.cursor.Location())))
		}
	}
	m.refreshSummary()
}

func (m *ViewerModel) refreshSummary() {
	day, ok := m.cursor.Day()
	if !ok {
		m.summary = timeline.Compute(nil, 0, m.cursor.Location())
		return
	}
	m.summary = timeline.Compute(m.snap.Records, day, m.cursor.Location())
}

func (m *ViewerModel) prevDay() {
	if m.cursor.Prev(m.snap.Records) {
		m.refreshSummary()
	}
}

func (m *ViewerModel) nextDay() {
	if m.cursor.Next(m.snap.Records) {
		m.refreshSummary()
	}
}
