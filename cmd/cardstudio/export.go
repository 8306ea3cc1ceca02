package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csheth/cardstudio/internal/cards"
	"github.com/csheth/cardstudio/internal/history"
)

func newExportCmd(o *overrides) *cobra.Command {
	var (
		topic  string
		images []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch cards for a topic and write the PNG archive without the TUI",
		Example: `  cardstudio export --topic "주말 데이트 코스"
  cardstudio export --topic cats --image 2=3 --out ./exports`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return errors.New("--topic is required")
			}
			picks, err := parseImagePicks(images)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*o)
			if err != nil {
				return err
			}
			logger, err := openLogger(*o)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runExport(ctx, a, topic, picks, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to generate cards for")
	cmd.Flags().StringArrayVar(&images, "image", nil, "card=candidate, both 1-based; repeatable")
	return cmd
}

// parseImagePicks turns "2=3" into card index 1 choosing candidate 2.
func parseImagePicks(values []string) (map[int]int, error) {
	picks := make(map[int]int, len(values))
	for _, value := range values {
		left, right, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --image %q, want card=candidate", value)
		}
		card, err := strconv.Atoi(strings.TrimSpace(left))
		if err != nil || card < 1 {
			return nil, fmt.Errorf("invalid card in --image %q", value)
		}
		candidate, err := strconv.Atoi(strings.TrimSpace(right))
		if err != nil || candidate < 1 {
			return nil, fmt.Errorf("invalid candidate in --image %q", value)
		}
		picks[card-1] = candidate - 1
	}
	return picks, nil
}

func runExport(ctx context.Context, a *app, topic string, picks map[int]int, out io.Writer) error {
	accent := color.New(color.FgCyan, color.Bold)
	okColor := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	accent.Fprintf(out, "Generating cards for %q…\n", topic)
	res := a.query.Fetch(ctx, topic)
	if res.IsError {
		return fmt.Errorf("generate: %s", res.Error)
	}
	list := cards.Normalize(res.Data)
	if len(list) == 0 {
		return errors.New("the service returned no cards")
	}

	sel := cards.NewSelection(len(list))
	for card, candidate := range picks {
		if card >= len(list) || candidate >= len(list[card].ImageURLs) {
			warn.Fprintf(out, "ignoring --image %d=%d: out of range\n", card+1, candidate+1)
			continue
		}
		sel.Set(card, candidate)
	}
	a.targets.Sync(list, sel)

	interactive := isTerminal(out)
	result, err := a.pipeline.ExportWithProgress(ctx, a.targets, a.cfg.FilePrefix, func(done, total int) {
		if interactive {
			fmt.Fprintf(out, "\rRendering %d/%d", done, total)
			return
		}
		fmt.Fprintf(out, "rendered %d/%d\n", done, total)
	})
	if interactive {
		fmt.Fprintln(out)
	}
	if err != nil {
		return err
	}

	rec := history.Record{
		Topic:     res.Topic,
		Archive:   result.Path,
		Cards:     len(result.Files),
		Bytes:     result.Size,
		CreatedAt: a.now().UTC(),
	}
	if err := history.Append(a.cfg.HistoryPath, rec); err != nil {
		warn.Fprintf(out, "could not record history: %v\n", err)
	}
	okColor.Fprintf(out, "✔ Saved %d cards to %s (%s)\n", len(result.Files), result.Path, humanSize(result.Size))
	for _, name := range result.FileNames() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func humanSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
