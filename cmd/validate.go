package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/vitrine/internal/accessibility"
	"github.com/conneroisu/vitrine/internal/adapters"
	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/config"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/view"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Check the configuration, the testimonials and their markup",
	Long: `Check the configuration for settings that are wrong or look unintended,
load the testimonials file, then render the page and every slide in both
the playing and paused states and check the markup: the carousel region and
its live announcements, slide and indicator labels, control names, image
alternatives and the page language.

Examples:
  vitrine validate                               # Built-in testimonials
  vitrine validate --content testimonials.yml
  vitrine validate --lang en --direction ltr --format json`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	AddStandardFlags(validateCmd, "carousel", "content", "output")
}

// validationResult is the outcome of validating one content source.
type validationResult struct {
	Content      string           `json:"content"`
	Testimonials int              `json:"testimonials"`
	Direction    string                   `json:"direction"`
	Config       *config.ValidationResult `json:"config"`
	Documents    []documentResult `json:"documents"`
	Valid        bool             `json:"valid"`
}

type documentResult struct {
	Name   string                `json:"name"`
	Report *accessibility.Report `json:"report"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	items, err := loadContent(cfg)
	if err != nil {
		return err
	}

	result, err := validateContent(commandContext(cmd), cfg, items, newLogger())
	if err != nil {
		return err
	}

	if outputFormat(cmd) == "json" {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		printValidation(cmd.OutOrStdout(), result)
	}

	if result.Config.HasErrors() {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("%d configuration errors", len(result.Config.Errors)))
	}
	if !result.Valid {
		return errors.NewValidationError(errors.ErrCodeAccessibilityCheck,
			fmt.Sprintf("%d of %d documents failed", failedDocuments(result), len(result.Documents)))
	}
	return nil
}

// validateContent renders the page and every slide state and checks each.
func validateContent(ctx context.Context, cfg *config.Config, items []carousel.Testimonial, logger logging.Logger) (*validationResult, error) {
	dir, err := adapters.ParseDirection(cfg.Carousel.Direction)
	if err != nil {
		return nil, err
	}
	dir = adapters.Resolve(dir, itemTexts(items)...)
	labels := view.LabelsFor(cfg.Site.Lang)
	checker := accessibility.NewChecker(logger)
	op := logging.StartOperation(logger, "validate")
	defer op.End(ctx)

	source := cfg.Content.Path
	if source == "" {
		source = "built-in"
	}
	result := &validationResult{
		Content:      source,
		Testimonials: len(items),
		Direction:    string(dir),
		Config:       config.ValidateConfigWithDetails(cfg),
		Valid:        true,
	}
	if result.Config.HasErrors() {
		result.Valid = false
	}
	for _, w := range result.Config.Warnings {
		logger.Warn(ctx, nil, "Configuration warning", "field", w.Field, "message", w.Message)
	}

	check := func(name, markup string) error {
		report, err := checker.Analyze(ctx, markup)
		if err != nil {
			return err
		}
		result.Documents = append(result.Documents, documentResult{Name: name, Report: report})
		if report.HasErrors() {
			result.Valid = false
		}
		return nil
	}

	n := len(items)
	first := carousel.State{Index: -1}
	if n > 0 {
		first = carousel.State{Index: 0, Length: n, Playing: n > 1}
	}
	page, err := view.Render(ctx, view.Page(view.PageData{
		Title:  cfg.Site.Title,
		Lang:   cfg.Site.Lang,
		Model:  view.Model{Items: items, State: first, Labels: labels, Dir: string(dir)},
		Client: view.ClientConfig{Socket: "/ws", Direction: string(dir)},
	}))
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	if err := check("page", page); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		for _, paused := range []bool{false, true} {
			state := carousel.State{Index: i, Length: n, Paused: paused, Playing: !paused && n > 1}
			markup, err := view.Render(ctx, view.Carousel(view.Model{Items: items, State: state, Labels: labels, Dir: string(dir)}))
			if err != nil {
				return nil, fmt.Errorf("rendering slide %d: %w", i+1, err)
			}
			name := fmt.Sprintf("slide %d", i+1)
			if paused {
				name += " (paused)"
			}
			if err := check(name, markup); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func printValidation(w io.Writer, result *validationResult) {
	fmt.Fprintf(w, "%s: %d testimonials, %s arrows\n", result.Content, result.Testimonials, result.Direction)
	if result.Config.HasErrors() || result.Config.HasWarnings() {
		fmt.Fprintf(w, "\n%s", result.Config.String())
	}
	for _, doc := range result.Documents {
		if len(doc.Report.Violations) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", doc.Name)
		for _, v := range doc.Report.Violations {
			fmt.Fprintf(w, "  %s %s [%s] %s\n", v.Severity, v.Rule, v.Selector, v.Message)
			if v.Suggestion != "" {
				fmt.Fprintf(w, "    %s\n", v.Suggestion)
			}
		}
	}
	if result.Valid {
		fmt.Fprintf(w, "✓ %d documents pass\n", len(result.Documents))
	}
}

func failedDocuments(result *validationResult) int {
	failed := 0
	for _, doc := range result.Documents {
		if doc.Report.HasErrors() {
			failed++
		}
	}
	return failed
}

func outputFormat(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "text"
	}
	return format
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func itemTexts(items []carousel.Testimonial) []string {
	out := make([]string, 0, 2*len(items))
	for _, item := range items {
		out = append(out, item.DisplayName, item.QuoteText)
	}
	return out
}
