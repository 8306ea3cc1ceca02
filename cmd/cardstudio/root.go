package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/csheth/cardstudio/internal/route"
	"github.com/csheth/cardstudio/internal/tui"
)

func newRootCmd() *cobra.Command {
	var (
		o           overrides
		topic       string
		startRoute  string
		noAltScreen bool
	)
	root := &cobra.Command{
		Use:   "cardstudio",
		Short: "Generate card news from a topic and export it as PNGs",
		Long: `cardstudio asks the content service for a set of cards about a topic,
lets you pick a background image for each card and exports every card as a
1080x1350 PNG bundled into one zip archive.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if startRoute != "" && startRoute != "/" {
				t, err := route.TopicFromPath(startRoute)
				if err != nil {
					return err
				}
				topic = t
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("cardstudio needs an interactive terminal; use `cardstudio export` in scripts")
			}

			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			logger, err := openLogger(o)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			opts := []tea.ProgramOption{}
			if !noAltScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			program := tea.NewProgram(tui.New(tui.Config{
				Query:        a.query,
				Exporter:     a.pipeline,
				Targets:      a.targets,
				FilePrefix:   cfg.FilePrefix,
				HistoryPath:  cfg.HistoryPath,
				InitialTopic: topic,
				Logger:       logger.Named("tui"),
				Now:          a.now,
			}), opts...)
			_, err = program.Run()
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.rangeValue, "range", "", "search window: d, w, m, m3, y or None")
	flags.StringVar(&o.prefix, "prefix", "", "file name prefix for exported cards")
	flags.StringVar(&o.outDir, "out", "", "directory the archive is written to")
	flags.StringVar(&o.fontPath, "font", "", "TTF/OTF/TTC font used to draw card text")
	flags.StringVar(&o.logPath, "log-file", "", "log file (defaults to the state directory)")

	root.Flags().StringVar(&topic, "topic", "", "open directly on this topic")
	root.Flags().StringVar(&startRoute, "route", "", `start route, e.g. "/content?topic=cats"`)
	root.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	root.AddCommand(newExportCmd(&o), newConfigCmd(&o), newHistoryCmd(&o))
	return root
}
