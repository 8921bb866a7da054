package intake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"helpdesk-hq/custodian/pkg/ticket"
)

// Results of a wizard session that ends without a saved ticket.
var (
	// ErrAborted is returned when input ends before the wizard completes.
	// Nothing is written.
	ErrAborted = errors.New("intake aborted: input closed before completion")

	// ErrDiscarded is returned when the reporter declines the final
	// confirmation. Nothing is written.
	ErrDiscarded = errors.New("ticket discarded before submission")
)

// Store is the destination for completed tickets. *store.Store satisfies
// it.
type Store interface {
	WriteTicket(date time.Time, name string, content []byte) (string, error)
}

// Options configures a Wizard.
type Options struct {
	// Input supplies reporter answers, one per line.
	Input io.Reader

	// Output receives prompts and the rendered summary.
	Output io.Writer

	// Store receives the completed ticket file.
	Store Store

	// Now supplies the submission timestamp, which selects the partition
	// the ticket lands in. Defaults to time.Now.
	Now func() time.Time

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Wizard collects one issue report interactively and writes the completed
// ticket into the partition for the submission date.
type Wizard struct {
	in     *bufio.Scanner
	out    io.Writer
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Wizard.
func New(opts Options) (*Wizard, error) {
	if opts.Input == nil {
		return nil, errors.New("intake: input reader is required")
	}
	if opts.Output == nil {
		return nil, errors.New("intake: output writer is required")
	}
	if opts.Store == nil {
		return nil, errors.New("intake: ticket store is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Wizard{
		in:     bufio.NewScanner(opts.Input),
		out:    opts.Output,
		store:  opts.Store,
		now:    now,
		logger: logger.With("component", "intake"),
	}, nil
}

// Run walks the reporter through the wizard and, on confirmation, writes
// the ticket file. It returns the completed ticket and the absolute path
// written.
func (w *Wizard) Run() (*ticket.Ticket, string, error) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "IT Triage Assistant")
	fmt.Fprintln(w.out, "This tool helps you report IT issues clearly and accurately.")
	fmt.Fprintln(w.out)

	reporter, err := w.askText("Your name")
	if err != nil {
		return nil, "", err
	}
	contact, err := w.askText("Contact (email or phone)")
	if err != nil {
		return nil, "", err
	}

	category, err := w.selectCategory()
	if err != nil {
		return nil, "", err
	}

	set, ok := QuestionsFor(category)
	if !ok {
		return nil, "", fmt.Errorf("no question set for category %q", category)
	}

	fmt.Fprintf(w.out, "\n%s\n", set.Title)
	answers := make(ticket.Answers, 0, len(set.Questions))
	for _, q := range set.Questions {
		value, err := w.ask(q)
		if err != nil {
			return nil, "", err
		}
		answers = append(answers, ticket.Answer{Key: q.Key, Value: value})
	}

	t := ticket.New(category, reporter, contact, answers, w.now())
	summary := t.Summary()

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "--- Technician-Ready Ticket Summary ---")
	fmt.Fprintln(w.out)
	fmt.Fprint(w.out, summary)
	fmt.Fprintln(w.out)

	confirmed, err := w.askYesNo("Submit this ticket")
	if err != nil {
		return nil, "", err
	}
	if confirmed != "yes" {
		return nil, "", ErrDiscarded
	}

	path, err := w.store.WriteTicket(t.SubmittedAt, t.Filename(), []byte(summary))
	if err != nil {
		return nil, "", fmt.Errorf("saving ticket: %w", err)
	}

	w.logger.Info("ticket saved",
		"ticket_id", t.ID,
		"category", string(t.Category),
		"impact", string(t.Impact),
		"priority", string(t.Priority),
		"path", path)

	fmt.Fprintf(w.out, "\nTicket saved to: %s\n", path)
	return t, path, nil
}

func (w *Wizard) selectCategory() (ticket.Category, error) {
	categories := ticket.Categories()
	choices := make([]string, len(categories))
	for i, c := range categories {
		choices[i] = string(c)
	}

	chosen, err := w.askChoice("Select the category that best describes your issue:", choices)
	if err != nil {
		return "", err
	}
	return ticket.Category(chosen), nil
}

func (w *Wizard) ask(q Question) (string, error) {
	switch q.Kind {
	case KindYesNo:
		return w.askYesNo(q.Prompt)
	case KindChoice:
		return w.askChoice(q.Prompt, q.Choices)
	default:
		return w.askText(q.Prompt)
	}
}

// readLine returns the next input line, trimmed. End of input aborts the
// wizard.
func (w *Wizard) readLine() (string, error) {
	if !w.in.Scan() {
		if err := w.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", ErrAborted
	}
	return strings.TrimSpace(w.in.Text()), nil
}

func (w *Wizard) askText(prompt string) (string, error) {
	for {
		fmt.Fprintf(w.out, "%s: ", prompt)
		value, err := w.readLine()
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(w.out, "Input cannot be empty.")
	}
}

func (w *Wizard) askYesNo(prompt string) (string, error) {
	for {
		fmt.Fprintf(w.out, "%s (yes/no): ", prompt)
		value, err := w.readLine()
		if err != nil {
			return "", err
		}
		value = strings.ToLower(value)
		if value == "yes" || value == "no" {
			return value, nil
		}
		fmt.Fprintln(w.out, "Invalid input. Please enter 'yes' or 'no'.")
	}
}

func (w *Wizard) askChoice(prompt string, choices []string) (string, error) {
	for {
		fmt.Fprintln(w.out, prompt)
		for i, choice := range choices {
			fmt.Fprintf(w.out, "%d. %s\n", i+1, choice)
		}
		fmt.Fprint(w.out, "Select an option: ")

		value, err := w.readLine()
		if err != nil {
			return "", err
		}
		n, convErr := strconv.Atoi(value)
		if convErr == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], nil
		}
		fmt.Fprintln(w.out, "Invalid selection. Please choose a valid option.")
	}
}
