package view

import (
	"fmt"

	"golang.org/x/text/language"
)

// Labels holds the user-visible and assistive-technology strings of the
// carousel for one language.
type Labels struct {
	Lang     language.Tag
	Dir      string
	Heading  string
	Region   string
	Previous string
	Next     string
	Pause    string
	Resume   string
	Empty    string
	slideFmt string
	dotFmt   string
}

// Slide labels the visible slide with its 1-based ordinal and the total.
func (l Labels) Slide(ordinal, total int) string {
	return fmt.Sprintf(l.slideFmt, ordinal, total)
}

// Dot labels indicator button ordinal.
func (l Labels) Dot(ordinal int) string {
	return fmt.Sprintf(l.dotFmt, ordinal)
}

// Toggle labels the play/pause button for the given paused state. The label
// names the action the button performs.
func (l Labels) Toggle(paused bool) string {
	if paused {
		return l.Resume
	}
	return l.Pause
}

var hebrew = Labels{
	Lang:     language.Hebrew,
	Dir:      "rtl",
	Heading:  "מה הלקוחות שלנו אומרים",
	Region:   "המלצות לקוחות",
	Previous: "המלצה קודמת",
	Next:     "המלצה הבאה",
	Pause:    "השהה הצגה אוטומטית",
	Resume:   "המשך הצגה אוטומטית",
	Empty:    "אין המלצות להצגה",
	slideFmt: "המלצה %d מתוך %d",
	dotFmt:   "עבור להמלצה %d",
}

var english = Labels{
	Lang:     language.English,
	Dir:      "ltr",
	Heading:  "What our clients say",
	Region:   "Client testimonials",
	Previous: "Previous testimonial",
	Next:     "Next testimonial",
	Pause:    "Pause automatic rotation",
	Resume:   "Resume automatic rotation",
	Empty:    "No testimonials to show",
	slideFmt: "Testimonial %d of %d",
	dotFmt:   "Go to testimonial %d",
}

var matcher = language.NewMatcher([]language.Tag{language.Hebrew, language.English})

// LabelsFor returns the labels best matching a BCP 47 tag. Unknown or
// malformed tags fall back to Hebrew.
func LabelsFor(lang string) Labels {
	tag, err := language.Parse(lang)
	if err != nil {
		return hebrew
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No || index == 0 {
		return hebrew
	}
	return english
}
