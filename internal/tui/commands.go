package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cardstudio/internal/export"
	"github.com/csheth/cardstudio/internal/history"
	"github.com/csheth/cardstudio/internal/query"
	"github.com/csheth/cardstudio/internal/render"
)

func fetchContentJob(cache *query.Cache, topic string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		res := cache.Fetch(ctx, topic)
		return contentResultMsg{topic: topic, result: res}, resultError(res)
	}
}

func retryContentJob(cache *query.Cache, topic string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		res := cache.Retry(ctx, topic)
		return contentResultMsg{topic: topic, result: res}, resultError(res)
	}
}

func resultError(res query.Result) error {
	if !res.IsError {
		return nil
	}
	return errors.New(res.Error)
}

func exportJob(exporter Exporter, targets *render.Targets, prefix, topic, historyPath string, now func() time.Time, progress chan<- exportProgressMsg) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		defer close(progress)
		res, err := exporter.ExportWithProgress(ctx, targets, prefix, func(done, total int) {
			select {
			case progress <- exportProgressMsg{done: done, total: total}:
			default:
			}
		})
		if err != nil {
			return exportResultMsg{topic: topic, err: err}, err
		}
		rec := history.Record{
			Topic:     topic,
			Archive:   res.Path,
			Cards:     len(res.Files),
			Bytes:     res.Size,
			CreatedAt: now().UTC(),
		}
		if err := history.Append(historyPath, rec); err != nil {
			// The archive is already saved; report the history failure alongside it.
			return exportResultMsg{topic: topic, result: res, err: fmt.Errorf("record history: %w", err)}, nil
		}
		return exportResultMsg{topic: topic, result: res}, nil
	}
}

// waitForProgress delivers the next progress report of a running export.
func waitForProgress(ch <-chan exportProgressMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func loadHistoryJob(path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		records, err := history.Recent(path, recentExportsShown)
		return historyLoadedMsg{records: records, err: err}, err
	}
}

func trimmedTitle(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

var _ Exporter = (*export.Pipeline)(nil)
