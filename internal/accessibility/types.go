package accessibility

// WCAGCriteria names a WCAG 2.x success criterion.
type WCAGCriteria string

const (
	Criteria1_1_1 WCAGCriteria = "1.1.1" // Non-text Content
	Criteria1_3_1 WCAGCriteria = "1.3.1" // Info and Relationships
	Criteria2_4_6 WCAGCriteria = "2.4.6" // Headings and Labels
	Criteria3_1_1 WCAGCriteria = "3.1.1" // Language of Page
	Criteria4_1_2 WCAGCriteria = "4.1.2" // Name, Role, Value
	Criteria4_1_3 WCAGCriteria = "4.1.3" // Status Messages
)

// ViolationSeverity represents how serious a violation is.
type ViolationSeverity string

const (
	SeverityError   ViolationSeverity = "error"
	SeverityWarning ViolationSeverity = "warning"
)

// Rule is one check the Checker performs.
type Rule struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Criteria    WCAGCriteria      `json:"criteria"`
	Severity    ViolationSeverity `json:"severity"`
	Suggestion  string            `json:"suggestion"`
}

// Violation is a single failed check.
type Violation struct {
	Rule       string            `json:"rule"`
	Severity   ViolationSeverity `json:"severity"`
	Criteria   WCAGCriteria      `json:"criteria"`
	Selector   string            `json:"selector"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion"`
}

// Summary counts the outcome of a check.
type Summary struct {
	TotalRules  int     `json:"total_rules"`
	PassedRules int     `json:"passed_rules"`
	Errors      int     `json:"errors"`
	Warnings    int     `json:"warnings"`
	Score       float64 `json:"score"`
}

// Report is the result of checking one document.
type Report struct {
	Violations []Violation `json:"violations"`
	Passed     []string    `json:"passed"`
	Summary    Summary     `json:"summary"`
}

// HasErrors reports whether any error-severity violation was found.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}
