package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/content"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/preview"
	"github.com/conneroisu/vitrine/internal/view"
	"github.com/conneroisu/vitrine/internal/watcher"
)

var previewLogFile string

var previewCmd = &cobra.Command{
	Use:     "preview",
	Aliases: []string{"p"},
	Short:   "Show the carousel in the terminal",
	Long: `Show the carousel in the terminal with the same timing and controls as the
web page. Arrow keys and clicks on either half of the card follow the
configured direction, number keys jump to a testimonial, space pauses, and
moving the mouse over the card pauses rotation like hovering does.

Examples:
  vitrine preview                              # Built-in testimonials
  vitrine preview --content testimonials.yml   # Preview and reload a file
  vitrine preview --interval 2s --paused`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	AddStandardFlags(previewCmd, "carousel", "content")
	previewCmd.Flags().StringVar(&previewLogFile, "log-file", "", "Write logs to a file while the preview owns the terminal")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	items, err := loadContent(cfg)
	if err != nil {
		return err
	}
	dir, err := adapters.ParseDirection(cfg.Carousel.Direction)
	if err != nil {
		return err
	}

	logger, closeLog, err := previewLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := preview.New(items, preview.Settings{
		Interval:    cfg.Carousel.Interval,
		StartPaused: cfg.Carousel.StartPaused,
		Strict:      cfg.Carousel.Strict,
		Direction:   dir,
		Labels:      view.LabelsFor(cfg.Site.Lang),
	}, preview.WithLogger(logger))
	defer m.Close()

	program := preview.Program(ctx, m)

	if cfg.Content.Watch && cfg.Content.Path != "" {
		fw, err := watchContent(ctx, cfg, logger, func(msg preview.ReplaceMsg) { program.Send(msg) })
		if err != nil {
			logger.Warn(ctx, err, "Content watching disabled", "path", cfg.Content.Path)
		} else {
			defer fw.Stop()
		}
	}

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

// watchContent reloads the testimonials file on change and hands the new
// list to send. A file that fails to load is logged and skipped.
func watchContent(ctx context.Context, cfg *config.Config, logger logging.Logger, send func(preview.ReplaceMsg)) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(cfg.Content.Debounce, watcher.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		items, err := content.Load(cfg.Content.Path)
		if err != nil {
			return fmt.Errorf("reloading testimonials: %w", err)
		}
		send(preview.ReplaceMsg{Items: items})
		return nil
	})
	if err := fw.WatchFile(cfg.Content.Path); err != nil {
		_ = fw.Stop()
		return nil, err
	}
	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return nil, err
	}
	return fw, nil
}

// previewLogger logs to --log-file, or nowhere, since stderr belongs to the
// terminal UI.
func previewLogger() (logging.Logger, func(), error) {
	if previewLogFile == "" {
		return logging.NewNop(), func() {}, nil
	}
	return fileLogger(previewLogFile, viper.GetString("log.format"))
}
