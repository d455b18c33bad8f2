// Package accessibility checks rendered carousel markup against the
// accessibility contract screen readers rely on: a polite live region
// announcing slide changes, a labelled slide group exposing its ordinal and
// the total, named controls, and indicator buttons whose aria-current marks
// the visible slide.
package accessibility

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/vitrine/internal/errors"
	"github.com/conneroisu/vitrine/internal/logging"
)

// Rule ids.
const (
	RuleCarouselRegion = "carousel-region"
	RuleSlideGroup     = "slide-group"
	RuleIndicators     = "indicator-state"
	RuleControlNames   = "control-names"
	RuleImageAlt       = "image-alt"
	RuleHeading        = "carousel-heading"
	RulePageLang       = "page-lang"
)

var rules = []Rule{
	{
		ID:          RuleCarouselRegion,
		Description: "The slide container is a polite live region described as a carousel",
		Criteria:    Criteria4_1_3,
		Severity:    SeverityError,
		Suggestion:  `Add aria-live="polite", aria-roledescription="carousel" and an aria-label`,
	},
	{
		ID:          RuleSlideGroup,
		Description: "The visible slide is a labelled group exposing its ordinal and the total",
		Criteria:    Criteria1_3_1,
		Severity:    SeverityError,
		Suggestion:  `Use role="group", aria-roledescription="slide" and a label such as "3 of 4"`,
	},
	{
		ID:          RuleIndicators,
		Description: "Exactly one indicator per slide, with aria-current on the visible one",
		Criteria:    Criteria4_1_2,
		Severity:    SeverityError,
		Suggestion:  `Render one button per slide and set aria-current="true" only on the active one`,
	},
	{
		ID:          RuleControlNames,
		Description: "Every button has an accessible name",
		Criteria:    Criteria4_1_2,
		Severity:    SeverityError,
		Suggestion:  "Give icon-only buttons an aria-label",
	},
	{
		ID:          RuleImageAlt,
		Description: "Portraits have alternative text",
		Criteria:    Criteria1_1_1,
		Severity:    SeverityError,
		Suggestion:  "Use the client name as alt text",
	},
	{
		ID:          RuleHeading,
		Description: "The carousel section has a heading",
		Criteria:    Criteria2_4_6,
		Severity:    SeverityWarning,
		Suggestion:  "Add a heading describing the testimonials",
	},
	{
		ID:          RulePageLang,
		Description: "Full documents declare their language and direction",
		Criteria:    Criteria3_1_1,
		Severity:    SeverityError,
		Suggestion:  `Set lang and dir on the html element, e.g. lang="he" dir="rtl"`,
	},
}

// Rules returns the checks performed, in order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Checker validates carousel markup.
type Checker struct {
	logger logging.Logger
}

// NewChecker creates a checker. A nil logger discards output.
func NewChecker(logger logging.Logger) *Checker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Checker{logger: logger.WithComponent("accessibility")}
}

type document struct {
	root     *html.Node
	htmlNode *html.Node
	region   *html.Node
	section  *html.Node
	slides   []*html.Node
	dots     []*html.Node
	buttons  []*html.Node
	images   []*html.Node
	headings []*html.Node
}

// Analyze parses htmlContent and runs every rule against it.
func (c *Checker) Analyze(ctx context.Context, htmlContent string) (*Report, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeAccessibilityCheck, "failed to parse HTML").
			WithComponent("accessibility")
	}

	doc := collect(root, strings.Contains(strings.ToLower(htmlContent), "<html"))
	report := &Report{Violations: []Violation{}, Passed: []string{}}

	for _, rule := range rules {
		found := check(rule, doc)
		if len(found) == 0 {
			report.Passed = append(report.Passed, rule.ID)
			continue
		}
		report.Violations = append(report.Violations, found...)
	}

	report.Summary = summarize(report)

	c.logger.Debug(ctx, "Accessibility check completed",
		"violations", len(report.Violations),
		"passed_rules", len(report.Passed))

	return report, nil
}

// Verify is Analyze that fails when any error-severity violation is found.
func (c *Checker) Verify(ctx context.Context, htmlContent string) error {
	report, err := c.Analyze(ctx, htmlContent)
	if err != nil {
		return err
	}
	if !report.HasErrors() {
		return nil
	}

	var msgs []string
	for _, v := range report.Violations {
		if v.Severity == SeverityError {
			msgs = append(msgs, fmt.Sprintf("%s: %s", v.Rule, v.Message))
		}
	}
	return errors.NewValidationError(errors.ErrCodeAccessibilityCheck, strings.Join(msgs, "; ")).
		WithComponent("accessibility").
		WithContext("violations", len(msgs))
}

// collect walks the tree once and indexes the elements the rules inspect.
// fullDocument records whether the input had an explicit html element; the
// parser synthesizes one for fragments.
func collect(root *html.Node, fullDocument bool) *document {
	doc := &document{root: root}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				if fullDocument {
					doc.htmlNode = n
				}
			case "section":
				if attr(n, "id") == "carousel" && doc.section == nil {
					doc.section = n
				}
			case "button":
				doc.buttons = append(doc.buttons, n)
				if attr(n, "data-stimulus") == "indicator" {
					doc.dots = append(doc.dots, n)
				}
			case "img":
				doc.images = append(doc.images, n)
			case "h1", "h2", "h3", "h4", "h5", "h6":
				doc.headings = append(doc.headings, n)
			}
			if attr(n, "aria-roledescription") == "carousel" && doc.region == nil {
				doc.region = n
			}
			if attr(n, "aria-roledescription") == "slide" {
				doc.slides = append(doc.slides, n)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return doc
}

func check(rule Rule, doc *document) []Violation {
	var found []Violation
	fail := func(n *html.Node, format string, args ...interface{}) {
		found = append(found, Violation{
			Rule:       rule.ID,
			Severity:   rule.Severity,
			Criteria:   rule.Criteria,
			Selector:   selector(n),
			Message:    fmt.Sprintf(format, args...),
			Suggestion: rule.Suggestion,
		})
	}

	switch rule.ID {
	case RuleCarouselRegion:
		if doc.region == nil {
			fail(nil, "no element with aria-roledescription=\"carousel\"")
			break
		}
		if live := attr(doc.region, "aria-live"); live != "polite" {
			fail(doc.region, "aria-live is %q, want \"polite\"", live)
		}
		if strings.TrimSpace(attr(doc.region, "aria-label")) == "" {
			fail(doc.region, "carousel region has no aria-label")
		}

	case RuleSlideGroup:
		length := declaredLength(doc)
		if length == 0 {
			if len(doc.slides) > 0 {
				fail(doc.slides[0], "empty carousel renders a slide")
			}
			break
		}
		if len(doc.slides) != 1 {
			fail(doc.region, "found %d slides, want exactly one visible slide", len(doc.slides))
			break
		}
		slide := doc.slides[0]
		if attr(slide, "role") != "group" {
			fail(slide, "slide role is %q, want \"group\"", attr(slide, "role"))
		}
		if doc.region != nil && !contains(doc.region, slide) {
			fail(slide, "slide is outside the live region")
		}
		index, err := strconv.Atoi(attr(slide, "data-index"))
		if err != nil {
			fail(slide, "slide has no numeric data-index")
			break
		}
		label := attr(slide, "aria-label")
		ordinal, total := strconv.Itoa(index+1), strconv.Itoa(length)
		if !labelHasNumbers(label, ordinal, total) {
			fail(slide, "slide label %q does not expose %s of %s", label, ordinal, total)
		}

	case RuleIndicators:
		length := declaredLength(doc)
		if len(doc.dots) != length {
			fail(doc.section, "found %d indicators for %d slides", len(doc.dots), length)
		}
		active := -1
		if len(doc.slides) == 1 {
			if i, err := strconv.Atoi(attr(doc.slides[0], "data-index")); err == nil {
				active = i
			}
		}
		current := 0
		for _, dot := range doc.dots {
			value, ok := attrOK(dot, "aria-current")
			if !ok {
				fail(dot, "indicator has no aria-current")
				continue
			}
			if value != "true" {
				if value != "false" {
					fail(dot, "aria-current is %q, want \"true\" or \"false\"", value)
				}
				continue
			}
			current++
			if i, err := strconv.Atoi(attr(dot, "data-index")); err != nil || i != active {
				fail(dot, "aria-current marks indicator %s but slide %d is visible", attr(dot, "data-index"), active)
			}
		}
		if length > 0 && current != 1 {
			fail(doc.section, "%d indicators are current, want exactly one", current)
		}

	case RuleControlNames:
		for _, button := range doc.buttons {
			if strings.TrimSpace(attr(button, "aria-label")) == "" && strings.TrimSpace(text(button)) == "" {
				fail(button, "button has no accessible name")
			}
		}

	case RuleImageAlt:
		for _, img := range doc.images {
			if strings.TrimSpace(attr(img, "alt")) == "" {
				fail(img, "image %q has no alt text", attr(img, "src"))
			}
		}

	case RuleHeading:
		if doc.section != nil && len(doc.headings) == 0 {
			fail(doc.section, "carousel section has no heading")
		}

	case RulePageLang:
		if doc.htmlNode == nil {
			break
		}
		if strings.TrimSpace(attr(doc.htmlNode, "lang")) == "" {
			fail(doc.htmlNode, "document has no lang attribute")
		}
		if dir := attr(doc.htmlNode, "dir"); dir != "rtl" && dir != "ltr" {
			fail(doc.htmlNode, "document dir is %q, want rtl or ltr", dir)
		}
	}

	return found
}

func summarize(report *Report) Summary {
	s := Summary{
		TotalRules:  len(rules),
		PassedRules: len(report.Passed),
	}
	for _, v := range report.Violations {
		switch v.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		}
	}
	if s.TotalRules > 0 {
		s.Score = float64(s.PassedRules) / float64(s.TotalRules) * 100
	}
	return s
}

// declaredLength reads data-length from the carousel section, falling back to
// the number of indicators.
func declaredLength(doc *document) int {
	if doc.section != nil {
		if n, err := strconv.Atoi(attr(doc.section, "data-length")); err == nil {
			return n
		}
	}
	return len(doc.dots)
}

// labelHasNumbers reports whether ordinal appears before total in label as
// separate numbers.
func labelHasNumbers(label, ordinal, total string) bool {
	var numbers []string
	for _, field := range strings.FieldsFunc(label, func(r rune) bool { return r < '0' || r > '9' }) {
		numbers = append(numbers, field)
	}
	for i := 0; i+1 < len(numbers); i++ {
		if numbers[i] == ordinal && numbers[i+1] == total {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	value, _ := attrOK(n, key)
	return value
}

func attrOK(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func contains(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func selector(n *html.Node) string {
	if n == nil {
		return ""
	}
	if id := attr(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	if class := attr(n, "class"); class != "" {
		return n.Data + "." + strings.Join(strings.Fields(class), ".")
	}
	return n.Data
}
