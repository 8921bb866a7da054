// Package ticket defines the issue-report model produced by the intake
// wizard and consumed by the lifecycle job: categories, impact derivation,
// priority mapping, and the technician-ready summary rendering.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category identifies the kind of issue being reported. The set and order
// are fixed; the intake wizard presents them as a numbered menu.
type Category string

const (
	CategoryLogin       Category = "Login or Account Access"
	CategoryNetwork     Category = "Network or Wi-Fi Connectivity"
	CategoryPhishing    Category = "Email or Phishing Concern"
	CategoryPerformance Category = "Slow Computer or Performance Issue"
	CategorySoftware    Category = "Software Error or Installation Problem"
)

// Categories returns all categories in menu order.
func Categories() []Category {
	return []Category{
		CategoryLogin,
		CategoryNetwork,
		CategoryPhishing,
		CategoryPerformance,
		CategorySoftware,
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Impact is the derived blast-radius classification of an issue.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Priority is the queue priority assigned from the impact level.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Answer keys consulted by the impact rules. The intake question sets use
// these constants so the rules and the questions cannot drift apart.
const (
	KeyMultipleUsers    = "multiple_users"
	KeyClickedLink      = "clicked_link"
	KeyOpenedAttachment = "opened_attachment"
	KeyBlocking         = "blocking"
)

// Answer is a single collected question/answer pair. Answers preserve
// collection order so the rendered summary is deterministic.
type Answer struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Answers is an ordered list of collected answers.
type Answers []Answer

// Get returns the value for key, or "" if the key was never answered.
func (a Answers) Get(key string) string {
	for _, ans := range a {
		if ans.Key == key {
			return ans.Value
		}
	}
	return ""
}

// IsYes reports whether the answer for key is the literal "yes".
func (a Answers) IsYes(key string) bool {
	return a.Get(key) == "yes"
}

// Ticket is one completed issue report.
type Ticket struct {
	// ID is a UUID v4 assigned at creation.
	ID string `json:"id"`

	// Reporter is the name of the person reporting the issue.
	Reporter string `json:"reporter"`

	// Contact is how the service desk reaches the reporter.
	Contact string `json:"contact"`

	Category Category `json:"category"`
	Impact   Impact   `json:"impact"`
	Priority Priority `json:"priority"`

	// SubmittedAt is when the wizard completed collection.
	SubmittedAt time.Time `json:"submitted_at"`

	// Answers holds the per-category question responses in collection order.
	Answers Answers `json:"answers"`
}

// New assembles a Ticket from collected answers, deriving impact and
// priority via the static rules.
func New(category Category, reporter, contact string, answers Answers, submittedAt time.Time) *Ticket {
	impact := DeriveImpact(category, answers)
	return &Ticket{
		ID:          uuid.New().String(),
		Reporter:    reporter,
		Contact:     contact,
		Category:    category,
		Impact:      impact,
		Priority:    MapPriority(impact),
		SubmittedAt: submittedAt,
		Answers:     answers,
	}
}

// DeriveImpact applies the static impact rules in order; the first matching
// rule wins:
//
//  1. Multiple users affected → High
//  2. Phishing with a clicked link or opened attachment → High
//  3. Work fully blocked → High
//  4. Login or Software category → Medium
//  5. Otherwise → Low
func DeriveImpact(category Category, answers Answers) Impact {
	if answers.IsYes(KeyMultipleUsers) {
		return ImpactHigh
	}
	if category == CategoryPhishing {
		if answers.IsYes(KeyClickedLink) || answers.IsYes(KeyOpenedAttachment) {
			return ImpactHigh
		}
	}
	if answers.IsYes(KeyBlocking) {
		return ImpactHigh
	}
	if category == CategoryLogin || category == CategorySoftware {
		return ImpactMedium
	}
	return ImpactLow
}

// MapPriority converts an impact level to a queue priority.
func MapPriority(impact Impact) Priority {
	switch impact {
	case ImpactHigh:
		return PriorityP1
	case ImpactMedium:
		return PriorityP2
	default:
		return PriorityP3
	}
}

// Filename returns the ticket's on-disk file name,
// ticket_<HHMMSS>_<shortid>.txt. The short id disambiguates tickets
// submitted within the same second.
func (t *Ticket) Filename() string {
	short := t.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("ticket_%s_%s.txt", t.SubmittedAt.Format("150405"), short)
}

// Summary renders the technician-ready ticket summary block.
func (t *Ticket) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Reporter: %s (%s)\n", t.Reporter, t.Contact)
	fmt.Fprintf(&b, "Category: %s\n", t.Category)
	fmt.Fprintf(&b, "Impact Level: %s\n", t.Impact)
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "Submitted At: %s\n", t.SubmittedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("\nIssue Details:\n")
	for _, ans := range t.Answers {
		fmt.Fprintf(&b, "- %s: %s\n", answerLabel(ans.Key), ans.Value)
	}

	b.WriteString("\nInitial Technician Notes:\n")
	b.WriteString("- Review user-provided details\n")
	b.WriteString("- Validate scope and impact\n")
	b.WriteString("- Proceed with standard troubleshooting\n")

	return b.String()
}

// answerLabel turns a snake_case answer key into a display label:
// first letter upper-cased, underscores replaced with spaces.
func answerLabel(key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
