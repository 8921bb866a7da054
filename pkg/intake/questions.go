package intake

import "helpdesk-hq/custodian/pkg/ticket"

// QuestionKind selects the prompt behavior for one question.
type QuestionKind int

const (
	// KindText accepts any non-empty free-text answer.
	KindText QuestionKind = iota
	// KindYesNo accepts exactly "yes" or "no".
	KindYesNo
	// KindChoice accepts one entry from a fixed numbered menu.
	KindChoice
)

// Question is one prompt within a category's question set.
type Question struct {
	// Key names the recorded answer. Keys consulted by the impact rules
	// use the ticket package's constants so the rules and the questions
	// cannot drift apart.
	Key string

	// Prompt is the text shown to the reporter.
	Prompt string

	Kind QuestionKind

	// Choices holds the menu entries for KindChoice, in menu order. The
	// recorded answer is the chosen entry, not its number.
	Choices []string
}

// QuestionSet is the fixed, ordered question list for one category.
type QuestionSet struct {
	Category  ticket.Category
	Title     string
	Questions []Question
}

var questionSets = map[ticket.Category]QuestionSet{
	ticket.CategoryLogin: {
		Category: ticket.CategoryLogin,
		Title:    "Login / Account Access",
		Questions: []Question{
			{Key: "device_os", Prompt: "Select operating system:", Kind: KindChoice, Choices: []string{"windows", "macos"}},
			{Key: "error_message", Prompt: "Exact error message", Kind: KindText},
			{Key: "start_time", Prompt: "When did the issue start", Kind: KindText},
			{Key: "password_change", Prompt: "Recent password change", Kind: KindYesNo},
			{Key: ticket.KeyMultipleUsers, Prompt: "Are other users affected", Kind: KindYesNo},
		},
	},
	ticket.CategoryNetwork: {
		Category: ticket.CategoryNetwork,
		Title:    "Network / Wi-Fi Connectivity",
		Questions: []Question{
			{Key: "wifi_connected", Prompt: "Connected to Wi-Fi", Kind: KindYesNo},
			{Key: "internet_access", Prompt: "Can you access any websites", Kind: KindYesNo},
			{Key: ticket.KeyMultipleUsers, Prompt: "Are other users affected", Kind: KindYesNo},
			{Key: "location", Prompt: "Select your location:", Kind: KindChoice, Choices: []string{"on-site", "remote"}},
			{Key: "start_time", Prompt: "When did the issue start", Kind: KindText},
		},
	},
	ticket.CategoryPhishing: {
		Category: ticket.CategoryPhishing,
		Title:    "Email / Phishing Concern",
		Questions: []Question{
			{Key: "sender", Prompt: "Sender email address", Kind: KindText},
			{Key: "subject", Prompt: "Email subject", Kind: KindText},
			{Key: ticket.KeyClickedLink, Prompt: "Did you click a link", Kind: KindYesNo},
			{Key: ticket.KeyOpenedAttachment, Prompt: "Did you open an attachment", Kind: KindYesNo},
			{Key: "received_time", Prompt: "When was the email received", Kind: KindText},
		},
	},
	ticket.CategoryPerformance: {
		Category: ticket.CategoryPerformance,
		Title:    "Slow Computer / Performance Issue",
		Questions: []Question{
			{Key: "device_type", Prompt: "Select device type:", Kind: KindChoice, Choices: []string{"laptop", "desktop"}},
			{Key: "start_time", Prompt: "When did the slowness begin", Kind: KindText},
			{Key: "frequency", Prompt: "Select frequency:", Kind: KindChoice, Choices: []string{"constant", "intermittent"}},
			{Key: "recent_changes", Prompt: "Recent installs or updates", Kind: KindYesNo},
			{Key: "popups", Prompt: "Pop-ups or unusual behavior", Kind: KindYesNo},
		},
	},
	ticket.CategorySoftware: {
		Category: ticket.CategorySoftware,
		Title:    "Software Error / Installation Problem",
		Questions: []Question{
			{Key: "application", Prompt: "Application name", Kind: KindText},
			{Key: "error_message", Prompt: "Exact error message", Kind: KindText},
			{Key: "start_time", Prompt: "When did the issue start", Kind: KindText},
			{Key: "restart_helped", Prompt: "Did restarting help", Kind: KindYesNo},
			{Key: ticket.KeyBlocking, Prompt: "Is this blocking your work", Kind: KindYesNo},
		},
	},
}

// QuestionsFor returns the fixed question set for a category.
func QuestionsFor(category ticket.Category) (QuestionSet, bool) {
	qs, ok := questionSets[category]
	return qs, ok
}
