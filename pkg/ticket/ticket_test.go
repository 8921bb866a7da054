package ticket

import (
	"strings"
	"testing"
	"time"
)

func TestDeriveImpact(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		answers  Answers
		want     Impact
	}{
		{
			name:     "multiple users alone forces high",
			category: CategoryPerformance,
			answers:  Answers{{Key: KeyMultipleUsers, Value: "yes"}},
			want:     ImpactHigh,
		},
		{
			name:     "phishing clicked link is high",
			category: CategoryPhishing,
			answers: Answers{
				{Key: KeyMultipleUsers, Value: "no"},
				{Key: KeyClickedLink, Value: "yes"},
				{Key: KeyOpenedAttachment, Value: "no"},
			},
			want: ImpactHigh,
		},
		{
			name:     "phishing opened attachment is high",
			category: CategoryPhishing,
			answers: Answers{
				{Key: KeyClickedLink, Value: "no"},
				{Key: KeyOpenedAttachment, Value: "yes"},
			},
			want: ImpactHigh,
		},
		{
			name:     "phishing with neither is low",
			category: CategoryPhishing,
			answers: Answers{
				{Key: KeyClickedLink, Value: "no"},
				{Key: KeyOpenedAttachment, Value: "no"},
			},
			want: ImpactLow,
		},
		{
			name:     "clicked link outside phishing does not force high",
			category: CategoryNetwork,
			answers:  Answers{{Key: KeyClickedLink, Value: "yes"}},
			want:     ImpactLow,
		},
		{
			name:     "blocked work is high",
			category: CategorySoftware,
			answers:  Answers{{Key: KeyBlocking, Value: "yes"}},
			want:     ImpactHigh,
		},
		{
			name:     "login defaults to medium",
			category: CategoryLogin,
			answers:  Answers{{Key: KeyMultipleUsers, Value: "no"}},
			want:     ImpactMedium,
		},
		{
			name:     "software defaults to medium",
			category: CategorySoftware,
			answers:  Answers{{Key: KeyBlocking, Value: "no"}},
			want:     ImpactMedium,
		},
		{
			name:     "network defaults to low",
			category: CategoryNetwork,
			answers:  Answers{{Key: KeyMultipleUsers, Value: "no"}},
			want:     ImpactLow,
		},
		{
			name:     "performance defaults to low",
			category: CategoryPerformance,
			answers:  Answers{},
			want:     ImpactLow,
		},
		{
			name:     "multiple users wins over category default",
			category: CategoryLogin,
			answers:  Answers{{Key: KeyMultipleUsers, Value: "yes"}},
			want:     ImpactHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveImpact(tt.category, tt.answers)
			if got != tt.want {
				t.Errorf("DeriveImpact() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapPriority(t *testing.T) {
	tests := []struct {
		impact Impact
		want   Priority
	}{
		{ImpactHigh, PriorityP1},
		{ImpactMedium, PriorityP2},
		{ImpactLow, PriorityP3},
	}

	for _, tt := range tests {
		t.Run(string(tt.impact), func(t *testing.T) {
			got := MapPriority(tt.impact)
			if got != tt.want {
				t.Errorf("MapPriority(%v) = %v, want %v", tt.impact, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	submitted := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	answers := Answers{
		{Key: "application", Value: "excel"},
		{Key: KeyBlocking, Value: "yes"},
	}

	tk := New(CategorySoftware, "Dana Reyes", "dana@example.com", answers, submitted)

	if tk.ID == "" {
		t.Error("New() did not assign an ID")
	}
	if tk.Impact != ImpactHigh {
		t.Errorf("Impact = %v, want %v", tk.Impact, ImpactHigh)
	}
	if tk.Priority != PriorityP1 {
		t.Errorf("Priority = %v, want %v", tk.Priority, PriorityP1)
	}
	if !tk.SubmittedAt.Equal(submitted) {
		t.Errorf("SubmittedAt = %v, want %v", tk.SubmittedAt, submitted)
	}
}

func TestTicket_Filename(t *testing.T) {
	tk := &Ticket{
		ID:          "a1b2c3d4-0000-0000-0000-000000000000",
		SubmittedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	got := tk.Filename()
	want := "ticket_092653_a1b2c3d4.txt"
	if got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestTicket_Summary(t *testing.T) {
	tk := &Ticket{
		ID:          "a1b2c3d4-0000-0000-0000-000000000000",
		Reporter:    "Dana Reyes",
		Contact:     "dana@example.com",
		Category:    CategoryLogin,
		Impact:      ImpactMedium,
		Priority:    PriorityP2,
		SubmittedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Answers: Answers{
			{Key: "device_os", Value: "windows"},
			{Key: "error_message", Value: "account locked"},
		},
	}

	got := tk.Summary()

	wantLines := []string{
		"Reporter: Dana Reyes (dana@example.com)",
		"Category: Login or Account Access",
		"Impact Level: Medium",
		"Priority: P2",
		"Submitted At: 2026-03-14 09:26:53",
		"Issue Details:",
		"- Device os: windows",
		"- Error message: account locked",
		"Initial Technician Notes:",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("Summary() missing line %q\ngot:\n%s", line, got)
		}
	}
}

func TestAnswers_Get(t *testing.T) {
	answers := Answers{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	}

	if got := answers.Get("b"); got != "2" {
		t.Errorf("Get(b) = %q, want %q", got, "2")
	}
	if got := answers.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestCategories_Order(t *testing.T) {
	cats := Categories()
	want := []Category{
		CategoryLogin,
		CategoryNetwork,
		CategoryPhishing,
		CategoryPerformance,
		CategorySoftware,
	}

	if len(cats) != len(want) {
		t.Fatalf("Categories() returned %d entries, want %d", len(cats), len(want))
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("Categories()[%d] = %v, want %v", i, cats[i], want[i])
		}
	}
}
