// Package template implements the staged template-composition flow and the
// assembly of submission payloads for the Graph API.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Step identifies a stage of the template composition flow.
type Step int

const (
	StepBasics  Step = iota + 1 // name/category/language/channel
	StepContent                 // header/body/footer
	StepButtons
	StepReview // variables/review
	StepSubmitted
)

// Template categories accepted by the approval service.
const (
	CategoryMarketing      = "MARKETING"
	CategoryUtility        = "UTILITY"
	CategoryAuthentication = "AUTHENTICATION"
)

// Header formats.
const (
	HeaderNone  = ""
	HeaderText  = "TEXT"
	HeaderImage = "IMAGE"
	HeaderVideo = "VIDEO"
	HeaderDoc   = "DOCUMENT"
)

var (
	ErrInvalidName      = errors.New("template: name must match ^[a-z0-9_]+$ and be at most 512 characters")
	ErrMissingSelection = errors.New("template: category, language and channel are required")
	ErrEmptyBody        = errors.New("template: body content is required")
	ErrNoSuchVariable   = errors.New("template: no such variable")
	ErrAlreadySubmitted = errors.New("template: draft already submitted")
)

var (
	nameRe        = regexp.MustCompile(`^[a-z0-9_]+$`)
	placeholderRe = regexp.MustCompile(`\{\{(\d+)\}\}`)
)

// Button is one call-to-action or quick-reply button.
type Button struct {
	Type        string `json:"type"` // "QUICK_REPLY", "URL", "PHONE_NUMBER"
	Text        string `json:"text"`
	URL         string `json:"url,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthSettings configures an AUTHENTICATION-category template. WhatsApp
// auto-generates body and buttons for these, so drafts carry no content.
type AuthSettings struct {
	OTPType               string `json:"otpType"` // "copy_code" or "one_tap"
	CodeExpirationMinutes int    `json:"codeExpirationMinutes,omitempty"`
	SecurityRecommend     bool   `json:"addSecurityRecommendation,omitempty"`
}

// Draft is a template under composition. Variables holds one sample value per
// `{{n}}` placeholder; Variables[i] corresponds to `{{i+1}}` and placeholder
// numbering stays contiguous through every insert/remove.
type Draft struct {
	Step Step

	Name     string
	Category string
	Language string
	Channel  string

	HeaderFormat string
	HeaderText   string
	HeaderHandle string // media handle for IMAGE/VIDEO/DOCUMENT headers
	Body         string
	Footer       string

	Buttons []Button

	Variables []string

	Auth *AuthSettings
}

// NewDraft starts a draft at the basics step.
func NewDraft() *Draft {
	return &Draft{Step: StepBasics}
}

// ValidName reports whether name satisfies the approval-service constraints.
func ValidName(name string) bool {
	return len(name) <= 512 && nameRe.MatchString(name)
}

// Advance validates the current step's guard and moves to the next step.
// AUTHENTICATION drafts jump from basics straight to submitted: their content
// and buttons are generated by WhatsApp.
func (d *Draft) Advance() error {
	switch d.Step {
	case StepBasics:
		if !ValidName(d.Name) {
			return ErrInvalidName
		}
		if d.Category == "" || d.Language == "" || d.Channel == "" {
			return ErrMissingSelection
		}
		if d.Category == CategoryAuthentication {
			d.Step = StepSubmitted
		} else {
			d.Step = StepContent
		}
	case StepContent:
		if strings.TrimSpace(d.Body) == "" {
			return ErrEmptyBody
		}
		d.Step = StepButtons
	case StepButtons:
		d.Step = StepReview
	case StepReview:
		d.Step = StepSubmitted
	case StepSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

// InsertVariable appends the next placeholder to the body and records its
// sample value. Returns the 1-based placeholder index.
func (d *Draft) InsertVariable(sample string) int {
	n := len(d.Variables) + 1
	d.Body += "{{" + strconv.Itoa(n) + "}}"
	d.Variables = append(d.Variables, sample)
	return n
}

// RemoveVariable deletes the 1-based placeholder i: every `{{i}}` occurrence
// is removed from the body, every `{{j}}` with j > i is renumbered to
// `{{j-1}}` (in the body and implicitly in the variable list), and the sample
// at position i is dropped. Inserting then immediately removing a variable
// restores the original body exactly.
func (d *Draft) RemoveVariable(i int) error {
	if i < 1 || i > len(d.Variables) {
		return fmt.Errorf("%w: %d", ErrNoSuchVariable, i)
	}

	d.Body = RenumberAfterRemoval(d.Body, i)
	d.Variables = append(d.Variables[:i-1], d.Variables[i:]...)

	return nil
}

// RenumberAfterRemoval rewrites placeholder indices in text after placeholder
// i is removed: `{{i}}` disappears, `{{j}}` with j > i becomes `{{j-1}}`,
// lower indices are untouched.
func RenumberAfterRemoval(text string, i int) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.Atoi(match[2 : len(match)-2])
		if err != nil {
			return match
		}
		switch {
		case n == i:
			return ""
		case n > i:
			return "{{" + strconv.Itoa(n-1) + "}}"
		default:
			return match
		}
	})
}

// PlaceholderCount returns the number of distinct `{{n}}` placeholders in text.
func PlaceholderCount(text string) int {
	seen := map[string]struct{}{}
	for _, m := range placeholderRe.FindAllString(text, -1) {
		seen[m] = struct{}{}
	}
	return len(seen)
}
