package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/cardstudio/internal/cards"
	"github.com/csheth/cardstudio/internal/export"
	"github.com/csheth/cardstudio/internal/history"
	"github.com/csheth/cardstudio/internal/query"
	"github.com/csheth/cardstudio/internal/render"
	"github.com/csheth/cardstudio/internal/route"
)

// Exporter turns the mounted render targets into a saved archive.
// *export.Pipeline satisfies it.
type Exporter interface {
	ExportWithProgress(ctx context.Context, targets *render.Targets, prefix string, progress export.Progress) (export.Result, error)
}

// Config wires runtime options into the TUI program.
type Config struct {
	Query        *query.Cache
	Exporter     Exporter
	Targets      *render.Targets
	FilePrefix   string
	HistoryPath  string
	InitialTopic string
	Logger       *zap.Logger
	// Now stamps history records. Defaults to time.Now.
	Now          func() time.Time
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Targets == nil {
		config.Targets = render.NewTargets()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	topicInput := textinput.New()
	topicInput.Placeholder = topicPlaceholder
	topicInput.Focus()
	topicInput.CharLimit = 120
	topicInput.Width = 48

	searchInput := textinput.New()
	searchInput.Placeholder = topicPlaceholder
	searchInput.CharLimit = 120
	searchInput.Width = 48

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())
	return &model{
		config:      config,
		logger:      config.Logger,
		stage:       stageInput,
		ctx:         ctx,
		cancel:      cancel,
		topicInput:  topicInput,
		searchInput: searchInput,
		spinner:     spin,
		layout:      newPageLayout(),
		jobs:        newJobBus(config.Logger),
		jobStates:   map[jobKind]jobSnapshot{},
		route:       "/",
		recCursor:   -1,
		infoMessage: "Type a topic or pick a recommendation to begin.",
	}
}

type model struct {
	config Config
	logger *zap.Logger
	stage  stage

	ctx    context.Context
	cancel context.CancelFunc

	topicInput   textinput.Model
	searchInput  textinput.Model
	searchActive bool
	spinner      spinner.Model
	layout       pageLayout
	jobs         *jobBus
	jobStates    map[jobKind]jobSnapshot

	recOffset int
	recCursor int

	topic     string
	route     string
	fetching  bool
	result    query.Result
	cards     []cards.Card
	tiles     []cards.Tile
	selection cards.Selection
	// selectionOwner is the topic whose cards the selection was made for.
	selectionOwner string
	grid      gridModel

	editIndex int
	editor    editorModel

	exportCancel   context.CancelFunc
	exportProgress chan exportProgressMsg
	progressDone   int
	progressTotal  int
	lastExport     *export.Result
	recent         []history.Record

	infoMessage  string
	errorMessage string
	helpVisible  bool
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.config.HistoryPath != "" {
		cmds = append(cmds, m.jobs.Start(m.ctx, jobKindHistory, loadHistoryJob(m.config.HistoryPath)))
	}
	if topic := strings.TrimSpace(m.config.InitialTopic); topic != "" {
		cmds = append(cmds, m.submitTopic(topic))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.grid.clamp(len(m.tiles), m.layout.visibleTiles)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case jobSignalMsg:
		m.jobStates[msg.Snapshot.Kind] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		m.jobStates[msg.Snapshot.Kind] = msg.Snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case contentResultMsg:
		if query.Key(msg.topic) != m.topic {
			m.logger.Debug("dropping result for stale topic", zap.String("topic", msg.topic), zap.String("current", m.topic))
			return m, nil
		}
		m.fetching = false
		m.applyResult(msg.result)
		return m, nil
	case exportProgressMsg:
		if m.stage != stageExporting {
			return m, nil
		}
		m.progressDone, m.progressTotal = msg.done, msg.total
		m.infoMessage = fmt.Sprintf("Rendering card %d of %d…", msg.done, msg.total)
		return m, waitForProgress(m.exportProgress)
	case exportResultMsg:
		return m.finishExport(msg)
	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("could not load export history", zap.Error(msg.err))
			return m, nil
		}
		m.recent = msg.records
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageInput:
		return m.handleInputKey(key)
	case stageContent:
		return m.handleContentKey(key)
	case stageEditor:
		return m.handleEditorKey(key)
	case stageExporting:
		if key.Type == tea.KeyEsc {
			m.cancelExport()
			m.infoMessage = "Cancelling export…"
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *model) handleInputKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.shutdown()
		return m, tea.Quit
	case tea.KeyTab:
		m.rotateRecommendations()
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		switch {
		case m.recCursor >= 0:
			m.recCursor = (m.recCursor + 1) % visibleRecommendations
		case key.Type == tea.KeyUp:
			m.recCursor = visibleRecommendations - 1
		default:
			m.recCursor = 0
		}
		m.topicInput.SetValue(m.visibleRecommendations()[m.recCursor])
		m.topicInput.CursorEnd()
		return m, nil
	case tea.KeyEnter:
		topic := strings.TrimSpace(m.topicInput.Value())
		if topic == "" {
			m.errorMessage = "Enter a topic."
			return m, nil
		}
		return m, m.submitTopic(topic)
	}
	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(key)
	return m, cmd
}

func (m *model) handleContentKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchActive {
		switch key.Type {
		case tea.KeyEsc:
			m.searchActive = false
			m.searchInput.Blur()
			m.searchInput.SetValue(m.topic)
			return m, nil
		case tea.KeyEnter:
			topic := strings.TrimSpace(m.searchInput.Value())
			if topic == "" {
				return m, nil
			}
			m.searchActive = false
			m.searchInput.Blur()
			return m, m.submitTopic(topic)
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(key)
		return m, cmd
	}

	switch key.String() {
	case "esc":
		m.leaveContent()
		return m, m.reloadHistory()
	case "q":
		m.shutdown()
		return m, tea.Quit
	case "/":
		m.searchActive = true
		m.searchInput.SetValue(m.topic)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case "left", "h":
		m.grid.move(-1, len(m.tiles), m.layout.visibleTiles)
	case "right", "l":
		m.grid.move(1, len(m.tiles), m.layout.visibleTiles)
	case "home", "g":
		m.grid.jump(0, len(m.tiles), m.layout.visibleTiles)
	case "end", "G":
		m.grid.jump(len(m.tiles)-1, len(m.tiles), m.layout.visibleTiles)
	case "enter", " ":
		if idx, ok := activateTile(m.tiles, m.grid.cursor); ok {
			m.openEditor(idx)
		}
	case "r":
		return m, m.retry()
	case "e", "d":
		return m, m.startExport()
	case "?":
		m.helpVisible = !m.helpVisible
	}
	return m, nil
}

func (m *model) handleEditorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editIndex < 0 || m.editIndex >= len(m.cards) {
		m.stage = stageContent
		return m, nil
	}
	ev := m.editor.handleKey(key.String(), m.editIndex, len(m.cards), m.tiles[m.editIndex])
	switch ev.kind {
	case editorBack:
		m.stage = stageContent
		m.grid.jump(m.editIndex, len(m.tiles), m.layout.visibleTiles)
	case editorNavigate:
		m.openEditor(ev.index)
	case editorSelect:
		m.selectImage(ev.index, ev.image)
	}
	return m, nil
}

func (m *model) openEditor(idx int) {
	m.stage = stageEditor
	m.editIndex = idx
	m.editor.reset(m.selection.At(idx))
}

func (m *model) selectImage(card, image int) {
	m.selection.Set(card, image)
	if card >= 0 && card < len(m.cards) {
		m.config.Targets.Mount(render.NewTarget(card, m.cards[card], m.selection.At(card)))
	}
	m.infoMessage = fmt.Sprintf("Card %d now uses image %d.", card+1, image+1)
}

func (m *model) submitTopic(topic string) tea.Cmd {
	key := query.Key(topic)
	if key == "" {
		m.errorMessage = "Enter a topic."
		return nil
	}
	m.cancelExport()
	m.topic = key
	m.route = route.ContentPath(key)
	m.stage = stageContent
	m.searchInput.SetValue(key)
	m.grid = gridModel{}
	m.errorMessage = ""
	m.lastExport = nil

	if m.config.Query == nil {
		m.errorMessage = "content service is not configured"
		return nil
	}
	m.applyResult(m.config.Query.Observe(key))
	if !m.config.Query.NeedsFetch(key) {
		// A request started before the user left is still running; its
		// result arrives through the job that started it.
		m.fetching = m.result.IsFetching
		if !m.fetching {
			return nil
		}
		m.infoMessage = fmt.Sprintf("Generating cards for %s…", key)
		return m.spinner.Tick
	}
	m.fetching = true
	m.infoMessage = fmt.Sprintf("Generating cards for %s…", key)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(m.ctx, jobKindFetch, fetchContentJob(m.config.Query, key)))
}

func (m *model) retry() tea.Cmd {
	if m.config.Query == nil || m.topic == "" || !m.result.IsError || m.fetching {
		return nil
	}
	m.fetching = true
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Retrying %s…", m.topic)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(m.ctx, jobKindRetry, retryContentJob(m.config.Query, m.topic)))
}

// applyResult derives cards, tiles and render targets from a query result.
// The selection resets to all zeros whenever the displayed cards come from
// another topic or their count changes.
func (m *model) applyResult(res query.Result) {
	m.result = res
	m.cards = cards.Normalize(res.Data)
	m.tiles = cards.Tiles(m.cards)
	owner := dataTopic(res)
	if owner != m.selectionOwner {
		m.selection = cards.NewSelection(len(m.cards))
		m.selectionOwner = owner
		m.logger.Debug("selection reset", zap.String("topic", owner), zap.Int("cards", len(m.cards)))
	} else if m.selection.Sync(len(m.cards)) {
		m.logger.Debug("selection reset", zap.String("topic", owner), zap.Int("cards", len(m.cards)))
	}
	m.config.Targets.Sync(m.cards, m.selection)
	m.grid.clamp(len(m.tiles), m.layout.visibleTiles)
	if m.stage == stageEditor && m.editIndex >= len(m.cards) {
		m.stage = stageContent
	}

	switch {
	case res.IsError:
		m.errorMessage = res.Error
		m.infoMessage = "Press r to retry."
	case res.IsPlaceholderData:
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("Showing %s while %s loads…", res.PlaceholderTopic, res.Topic)
	case res.Data != nil:
		m.errorMessage = ""
		m.infoMessage = fmt.Sprintf("%d cards for %s. Enter edits a card, e exports all.", len(m.cards), res.Topic)
	}
}

// dataTopic names the topic the displayed cards belong to. Placeholder data
// still belongs to the topic it was fetched for.
func dataTopic(res query.Result) string {
	switch {
	case res.Data == nil:
		return ""
	case res.IsPlaceholderData:
		return res.PlaceholderTopic
	default:
		return res.Topic
	}
}

func (m *model) startExport() tea.Cmd {
	switch {
	case m.config.Exporter == nil:
		m.errorMessage = "export is not available"
		return nil
	case m.fetching || m.result.IsPlaceholderData:
		m.infoMessage = "Wait for the cards to finish loading."
		return nil
	case len(m.cards) == 0:
		m.infoMessage = "Nothing to export yet."
		return nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.exportCancel = cancel
	m.exportProgress = make(chan exportProgressMsg, len(m.cards)+1)
	m.progressDone, m.progressTotal = 0, len(m.cards)
	m.stage = stageExporting
	m.errorMessage = ""
	m.infoMessage = "Rendering cards…"
	runner := exportJob(m.config.Exporter, m.config.Targets, m.config.FilePrefix, m.topic, m.config.HistoryPath, m.config.Now, m.exportProgress)
	return tea.Batch(m.spinner.Tick, m.jobs.Start(ctx, jobKindExport, runner), waitForProgress(m.exportProgress))
}

func (m *model) finishExport(msg exportResultMsg) (tea.Model, tea.Cmd) {
	if m.exportCancel != nil {
		m.exportCancel()
		m.exportCancel = nil
	}
	if m.stage == stageExporting {
		m.stage = stageContent
	}
	if msg.result.Path != "" {
		res := msg.result
		m.lastExport = &res
		m.infoMessage = fmt.Sprintf("Saved %d cards to %s", len(res.Files), res.Path)
	}
	switch {
	case msg.err == nil:
		m.errorMessage = ""
	case errors.Is(msg.err, context.Canceled):
		m.infoMessage = "Export cancelled; nothing was saved."
	case msg.result.Path != "":
		m.errorMessage = msg.err.Error()
	default:
		m.errorMessage = fmt.Sprintf("export failed: %v", msg.err)
	}
	return m, m.reloadHistory()
}

func (m *model) cancelExport() {
	if m.exportCancel != nil {
		m.exportCancel()
		m.exportCancel = nil
	}
	if m.stage == stageExporting {
		m.stage = stageContent
	}
}

// leaveContent returns to the entry screen. A running export is cancelled;
// an in-flight fetch keeps filling the cache but its result is dropped here.
func (m *model) leaveContent() {
	m.cancelExport()
	m.stage = stageInput
	m.topic = ""
	m.route = "/"
	m.fetching = false
	m.searchActive = false
	m.topicInput.SetValue("")
	m.topicInput.Focus()
	m.errorMessage = ""
	m.infoMessage = "Type a topic or pick a recommendation to begin."
}

func (m *model) reloadHistory() tea.Cmd {
	if m.config.HistoryPath == "" {
		return nil
	}
	return m.jobs.Start(m.ctx, jobKindHistory, loadHistoryJob(m.config.HistoryPath))
}

func (m *model) shutdown() {
	m.cancelExport()
	m.cancel()
}

func (m *model) busy() bool {
	return m.fetching || m.stage == stageExporting
}

func (m *model) rotateRecommendations() {
	m.recOffset = (m.recOffset + visibleRecommendations) % len(recommendations)
	m.recCursor = -1
}

func (m *model) visibleRecommendations() []string {
	out := make([]string, 0, visibleRecommendations)
	for i := 0; i < visibleRecommendations; i++ {
		out = append(out, recommendations[(m.recOffset+i)%len(recommendations)])
	}
	return out
}
