package accessibility

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
	"github.com/conneroisu/vitrine/internal/view"
)

var items = []carousel.Testimonial{
	{ID: "1", DisplayName: "רחל כהן", ServiceLabel: "צילומי חתונה", QuoteText: "מדהים", ImageRef: "/images/1.jpg"},
	{ID: "2", DisplayName: "דוד לוי", QuoteText: "תמונות לנצח"},
	{ID: "3", DisplayName: "מיכל אברהם", QuoteText: "מקצועי", ImageRef: "/images/3.jpg"},
}

func renderCarousel(t *testing.T, index int, paused bool, lang string) string {
	t.Helper()
	labels := view.LabelsFor(lang)
	m := view.Model{
		Items:  items,
		State:  carousel.State{Index: index, Paused: paused, Length: len(items), Playing: !paused},
		Labels: labels,
		Dir:    labels.Dir,
	}
	out, err := view.Render(context.Background(), view.Carousel(m))
	require.NoError(t, err)
	return out
}

func violationRules(r *Report) []string {
	var ids []string
	for _, v := range r.Violations {
		ids = append(ids, v.Rule)
	}
	return ids
}

func TestRenderedCarouselPasses(t *testing.T) {
	checker := NewChecker(nil)

	for _, lang := range []string{"he", "en"} {
		for index := range items {
			for _, paused := range []bool{false, true} {
				report, err := checker.Analyze(context.Background(), renderCarousel(t, index, paused, lang))
				require.NoError(t, err)
				assert.Empty(t, report.Violations, "lang=%s index=%d paused=%v", lang, index, paused)
				assert.Equal(t, len(Rules()), report.Summary.PassedRules)
				assert.InDelta(t, 100.0, report.Summary.Score, 0.001)
			}
		}
	}
}

func TestRenderedPagePasses(t *testing.T) {
	labels := view.LabelsFor("he")
	page := view.PageData{
		Title: "המלצות",
		Lang:  "he",
		Model: view.Model{
			Items:  items,
			State:  carousel.State{Index: 2, Length: len(items), Playing: true},
			Labels: labels,
			Dir:    labels.Dir,
		},
		Client: view.ClientConfig{Socket: "/ws", Direction: "rtl"},
	}
	out, err := view.Render(context.Background(), view.Page(page))
	require.NoError(t, err)

	require.NoError(t, NewChecker(logging.NewNop()).Verify(context.Background(), out))
}

func TestEmptyCarouselPasses(t *testing.T) {
	labels := view.LabelsFor("he")
	m := view.Model{State: carousel.State{Index: -1}, Labels: labels, Dir: labels.Dir}
	out, err := view.Render(context.Background(), view.Carousel(m))
	require.NoError(t, err)

	report, err := NewChecker(nil).Analyze(context.Background(), out)
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
}

func TestBrokenMarkup(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(string) string
		rule   string
	}{
		{
			name:   "assertive live region",
			mutate: func(s string) string { return strings.Replace(s, `aria-live="polite"`, `aria-live="assertive"`, 1) },
			rule:   RuleCarouselRegion,
		},
		{
			name:   "missing region",
			mutate: func(s string) string { return strings.Replace(s, `aria-roledescription="carousel"`, "", 1) },
			rule:   RuleCarouselRegion,
		},
		{
			name:   "slide without ordinal",
			mutate: func(s string) string { return strings.Replace(s, "המלצה 2 מתוך 3", "המלצה", 1) },
			rule:   RuleSlideGroup,
		},
		{
			name:   "slide without role",
			mutate: func(s string) string { return strings.Replace(s, `role="group"`, "", 1) },
			rule:   RuleSlideGroup,
		},
		{
			name: "current marks wrong dot",
			mutate: func(s string) string {
				s = strings.Replace(s, `aria-current="true"`, `aria-current="false"`, 1)
				return strings.Replace(s, `aria-current="false"`, `aria-current="true"`, 1)
			},
			rule: RuleIndicators,
		},
		{
			name:   "no current dot",
			mutate: func(s string) string { return strings.Replace(s, `aria-current="true"`, `aria-current="false"`, 1) },
			rule:   RuleIndicators,
		},
		{
			name:   "declared length mismatch",
			mutate: func(s string) string { return strings.Replace(s, `data-length="3"`, `data-length="4"`, 1) },
			rule:   RuleIndicators,
		},
		{
			name:   "unnamed pause button",
			mutate: func(s string) string { return strings.Replace(s, `aria-label="השהה הצגה אוטומטית"`, "", 1) },
			rule:   RuleControlNames,
		},
		{
			name:   "heading removed",
			mutate: func(s string) string { return strings.Replace(s, `<h2 class="carousel-heading">מה הלקוחות שלנו אומרים</h2>`, "", 1) },
			rule:   RuleHeading,
		},
	}

	checker := NewChecker(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := renderCarousel(t, 1, false, "he")
			broken := tt.mutate(original)
			require.NotEqual(t, original, broken, "mutation did not apply")

			report, err := checker.Analyze(context.Background(), broken)
			require.NoError(t, err)
			assert.Contains(t, violationRules(report), tt.rule)
			assert.NotContains(t, report.Passed, tt.rule)
		})
	}
}

func TestImageWithoutAlt(t *testing.T) {
	out := renderCarousel(t, 0, false, "he")
	out = strings.Replace(out, `alt="רחל כהן"`, `alt=""`, 1)

	report, err := NewChecker(nil).Analyze(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, RuleImageAlt, v.Rule)
	assert.Equal(t, Criteria1_1_1, v.Criteria)
	assert.Equal(t, "img", v.Selector)
	assert.NotEmpty(t, v.Suggestion)
}

func TestHeadingIsOnlyAWarning(t *testing.T) {
	out := strings.Replace(renderCarousel(t, 0, false, "en"), `<h2 class="carousel-heading">What our clients say</h2>`, "", 1)

	checker := NewChecker(nil)
	report, err := checker.Analyze(context.Background(), out)
	require.NoError(t, err)
	assert.False(t, report.HasErrors())
	assert.Equal(t, 1, report.Summary.Warnings)
	assert.NoError(t, checker.Verify(context.Background(), out))
}

func TestPageLanguage(t *testing.T) {
	body := renderCarousel(t, 0, false, "he")

	report, err := NewChecker(nil).Analyze(context.Background(), "<html><body>"+body+"</body></html>")
	require.NoError(t, err)
	assert.Equal(t, []string{RulePageLang, RulePageLang}, violationRules(report))

	report, err = NewChecker(nil).Analyze(context.Background(), `<html lang="he" dir="rtl"><body>`+body+"</body></html>")
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
}

func TestVerifyReturnsTypedError(t *testing.T) {
	out := strings.Replace(renderCarousel(t, 0, false, "he"), `aria-live="polite"`, "", 1)

	err := NewChecker(nil).Verify(context.Background(), out)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAccessibilityCheck))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), RuleCarouselRegion)
}

func TestAnalyzeLogsSummary(t *testing.T) {
	rec := logging.NewRecorder()
	_, err := NewChecker(rec).Analyze(context.Background(), renderCarousel(t, 0, false, "he"))
	require.NoError(t, err)
	require.NotEmpty(t, rec.Entries())
}

func TestRulesReturnsCopy(t *testing.T) {
	r := Rules()
	r[0].ID = "changed"
	assert.Equal(t, RuleCarouselRegion, Rules()[0].ID)
}
