package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cardstudio/internal/api"
	"github.com/csheth/cardstudio/internal/cards"
	"github.com/csheth/cardstudio/internal/query"
)

func newTestModel(t *testing.T, config Config) *model {
	t.Helper()
	teaModel, ok := New(config).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func cardsFor(topic string, n int) []cards.Card {
	return cards.Normalize(payloadWithCards(topic, n))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(t *testing.T, config Config, n int) *model {
	t.Helper()
	m := newTestModel(t, config)
	m.topic = "cats"
	m.stage = stageContent
	m.applyResult(query.Result{Topic: "cats", Data: payloadWithCards("cats", n)})
	return m
}

func TestFailedTopicIsNotRefetchedUntilRetry(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("broken", api.Envelope{Success: false, Error: "Error: 500"})
	cache := query.New(fetcher, query.Options{})
	m := newTestModel(t, Config{Query: cache})
	ctx := context.Background()

	if cmd := m.submitTopic("broken"); cmd == nil {
		t.Fatal("first submit should start a fetch")
	}
	if m.route != "/content?topic=broken" {
		t.Fatalf("unexpected route %q", m.route)
	}
	msg, _ := fetchContentJob(cache, "broken")(ctx)
	m.Update(msg)
	if m.fetching {
		t.Fatal("fetch should be settled")
	}
	if m.errorMessage != "Error: 500" {
		t.Fatalf("expected service error, got %q", m.errorMessage)
	}

	if cmd := m.submitTopic("broken"); cmd != nil {
		t.Fatal("failed topic should not be re-requested on resubmit")
	}
	if got := fetcher.count("broken"); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}

	fetcher.clear("broken")
	_, cmd := m.Update(runes("r"))
	if cmd == nil || !m.fetching {
		t.Fatal("retry should start a request")
	}
	msg, _ = retryContentJob(cache, "broken")(ctx)
	m.Update(msg)
	if got := fetcher.count("broken"); got != 2 {
		t.Fatalf("expected 2 requests after retry, got %d", got)
	}
	if len(m.cards) != 3 || m.errorMessage != "" {
		t.Fatalf("retry should load cards, got %d cards err=%q", len(m.cards), m.errorMessage)
	}
}

func TestStaleTopicResultIsDropped(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := query.New(fetcher, query.Options{})
	m := newTestModel(t, Config{Query: cache})
	ctx := context.Background()

	m.submitTopic("first")
	msg, _ := fetchContentJob(cache, "first")(ctx)
	m.Update(msg)
	if len(m.cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(m.cards))
	}

	m.submitTopic("second")
	if !m.fetching || !m.result.IsPlaceholderData {
		t.Fatalf("second topic should show placeholder data while fetching: %+v", m.result)
	}
	m.Update(contentResultMsg{topic: "first", result: query.Result{Topic: "first", Data: payloadWithCards("first", 1)}})
	if len(m.cards) != 3 || !m.fetching {
		t.Fatalf("stale result should be ignored, got %d cards fetching=%v", len(m.cards), m.fetching)
	}
}

func TestSelectionResetsWhenCardCountChanges(t *testing.T) {
	m := loadedModel(t, Config{}, 3)
	m.selectImage(1, 2)
	if target, ok := m.config.Targets.Get(1); !ok || target.Image != 2 {
		t.Fatalf("target not remounted with new image: %+v", target)
	}

	m.applyResult(query.Result{Topic: "cats", Data: payloadWithCards("cats", 3)})
	if m.selection.At(1) != 2 {
		t.Fatal("same card count should keep the selection")
	}

	m.applyResult(query.Result{Topic: "cats", Data: payloadWithCards("cats", 2)})
	if len(m.selection) != 2 || m.selection.At(0) != 0 || m.selection.At(1) != 0 {
		t.Fatalf("selection not reset: %v", m.selection)
	}
	if m.config.Targets.Len() != 2 {
		t.Fatalf("expected 2 mounted targets, got %d", m.config.Targets.Len())
	}
}

func TestSelectionResetsForNewTopicWithSameCardCount(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := query.New(fetcher, query.Options{})
	m := newTestModel(t, Config{Query: cache})
	ctx := context.Background()

	m.submitTopic("first")
	msg, _ := fetchContentJob(cache, "first")(ctx)
	m.Update(msg)
	m.selectImage(0, 2)

	m.submitTopic("second")
	if !m.result.IsPlaceholderData || m.selection.At(0) != 2 {
		t.Fatalf("placeholder cards should keep their selection, got %v", m.selection)
	}
	msg, _ = fetchContentJob(cache, "second")(ctx)
	m.Update(msg)
	if len(m.cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(m.cards))
	}
	for i := range m.cards {
		if m.selection.At(i) != 0 {
			t.Fatalf("selection should reset for a new topic, got %v", m.selection)
		}
		target, ok := m.config.Targets.Get(i)
		if !ok || target.Image != 0 {
			t.Fatalf("target %d should use image 0: %+v", i, target)
		}
	}
}

func TestReenteringTopicShowsRunningFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.gate = make(chan struct{})
	cache := query.New(fetcher, query.Options{})
	m := newTestModel(t, Config{Query: cache})
	ctx := context.Background()

	if cmd := m.submitTopic("cats"); cmd == nil {
		t.Fatal("first submit should start a fetch")
	}
	done := make(chan tea.Msg, 1)
	go func() {
		msg, _ := fetchContentJob(cache, "cats")(ctx)
		done <- msg
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !cache.Observe("cats").IsFetching {
		if time.Now().After(deadline) {
			t.Fatal("fetch never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageInput || m.fetching {
		t.Fatalf("esc should return to the input, stage=%v fetching=%v", m.stage, m.fetching)
	}

	if cmd := m.submitTopic("cats"); cmd == nil {
		t.Fatal("re-entering a loading topic should tick the spinner")
	}
	if got := fetcher.count("cats"); got != 0 {
		t.Fatalf("running request should not be duplicated, got %d calls", got)
	}
	if !m.fetching || !strings.Contains(m.View(), skeletonLabel) {
		t.Fatalf("loading view should show the skeleton, fetching=%v", m.fetching)
	}

	close(fetcher.gate)
	m.Update(<-done)
	if m.fetching || len(m.cards) != 3 {
		t.Fatalf("fetch should settle with cards, fetching=%v cards=%d", m.fetching, len(m.cards))
	}
}

func TestPlaceholderTileIsNotEditable(t *testing.T) {
	m := loadedModel(t, Config{}, 2)
	m.grid.jump(2, len(m.tiles), m.layout.visibleTiles)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageContent {
		t.Fatalf("placeholder should not open the editor, stage=%v", m.stage)
	}

	m.grid.jump(1, len(m.tiles), m.layout.visibleTiles)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageEditor || m.editIndex != 1 {
		t.Fatalf("expected editor on card 1, stage=%v idx=%d", m.stage, m.editIndex)
	}
}

func TestEditorNavigationAndSelection(t *testing.T) {
	m := loadedModel(t, Config{}, 2)
	m.openEditor(0)

	m.Update(runes("["))
	if m.editIndex != 0 {
		t.Fatalf("prev on first card should stay, got %d", m.editIndex)
	}
	m.Update(runes("]"))
	m.Update(runes("]"))
	if m.editIndex != 1 {
		t.Fatalf("next should clamp to last card, got %d", m.editIndex)
	}

	m.Update(runes("l"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.selection.At(1) != 1 {
		t.Fatalf("expected image 1 selected, got %d", m.selection.At(1))
	}
	if !strings.Contains(m.View(), "Page 2 of 2") {
		t.Fatal("editor view should show the page indicator")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageContent || m.grid.cursor != 1 {
		t.Fatalf("esc should return to the grid on the edited card, stage=%v cursor=%d", m.stage, m.grid.cursor)
	}
}

func TestEscCancelsRunningExport(t *testing.T) {
	m := loadedModel(t, Config{Exporter: &fakeExporter{}}, 2)

	if _, cmd := m.Update(runes("e")); cmd == nil {
		t.Fatal("export should start")
	}
	if m.stage != stageExporting || m.exportCancel == nil {
		t.Fatalf("expected exporting stage, got %v", m.stage)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageContent || m.exportCancel != nil {
		t.Fatalf("esc should cancel the export, stage=%v", m.stage)
	}
	if _, cmd := m.Update(exportProgressMsg{done: 1, total: 2}); cmd != nil {
		t.Fatal("progress after cancel should be ignored")
	}
	if m.progressDone != 0 {
		t.Fatalf("progress should not advance after cancel, got %d", m.progressDone)
	}
}

func TestLeavingContentCancelsExport(t *testing.T) {
	m := loadedModel(t, Config{Exporter: &fakeExporter{}}, 2)
	m.startExport()
	m.leaveContent()
	if m.stage != stageInput || m.exportCancel != nil || m.route != "/" {
		t.Fatalf("leave should cancel export and reset route, stage=%v route=%q", m.stage, m.route)
	}
	m.Update(exportResultMsg{topic: "cats", err: context.Canceled})
	if !strings.Contains(m.infoMessage, "cancelled") {
		t.Fatalf("expected cancel notice, got %q", m.infoMessage)
	}
}

func TestExportRequiresSettledCards(t *testing.T) {
	exporter := &fakeExporter{}
	m := loadedModel(t, Config{Exporter: exporter}, 2)
	m.result.IsPlaceholderData = true
	if cmd := m.startExport(); cmd != nil {
		t.Fatal("placeholder data must not be exported")
	}
	m.result.IsPlaceholderData = false
	m.fetching = true
	if cmd := m.startExport(); cmd != nil {
		t.Fatal("export must wait for the fetch")
	}
}

func TestRecommendationRotation(t *testing.T) {
	m := newTestModel(t, Config{})
	if got := m.visibleRecommendations(); got[0] != recommendations[0] || got[1] != recommendations[1] {
		t.Fatalf("unexpected initial recommendations %v", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.topicInput.Value() != recommendations[0] {
		t.Fatalf("down should pick the first recommendation, got %q", m.topicInput.Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.topicInput.Value() != recommendations[1] {
		t.Fatalf("down should move to the second recommendation, got %q", m.topicInput.Value())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.visibleRecommendations(); got[0] != recommendations[2] || got[1] != recommendations[3] {
		t.Fatalf("tab should rotate by two, got %v", got)
	}
	if m.recCursor != -1 {
		t.Fatalf("rotation should clear the cursor, got %d", m.recCursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.visibleRecommendations(); got[0] != recommendations[4] || got[1] != recommendations[0] {
		t.Fatalf("rotation should wrap, got %v", got)
	}
}

func TestEmptyTopicIsRejected(t *testing.T) {
	m := newTestModel(t, Config{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("empty topic should not start work")
	}
	if m.stage != stageInput || m.errorMessage == "" {
		t.Fatalf("expected error on entry screen, stage=%v err=%q", m.stage, m.errorMessage)
	}
}

func TestViewShowsSkeletonWhileLoading(t *testing.T) {
	cache := query.New(newFakeFetcher(), query.Options{})
	m := newTestModel(t, Config{Query: cache})
	m.submitTopic("cats")
	view := m.View()
	if !strings.Contains(view, skeletonLabel) {
		t.Fatal("loading view should show the skeleton label")
	}

	msg, _ := fetchContentJob(cache, "cats")(context.Background())
	m.Update(msg)
	view = m.View()
	for _, want := range []string{trueSizeLabel, exportButtonLabel, "/content?topic=cats"} {
		if !strings.Contains(view, want) {
			t.Fatalf("content view missing %q", want)
		}
	}
}

func TestCtrlCShutsDown(t *testing.T) {
	m := newTestModel(t, Config{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if m.ctx.Err() == nil {
		t.Fatal("ctrl+c should cancel background work")
	}
}
