package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestRelativeTime(t *testing.T) {
	day := 24 * time.Hour
	cases := map[time.Duration]string{
		-10 * time.Minute: "Just now",
		3 * time.Hour:     "Today",
		day:               "Tomorrow",
		-day:              "Yesterday",
		3 * day:           "In 3d",
		-3 * day:          "3d ago",
		-13 * day:         "13d ago",
		21 * day:          "In 3w",
		-14 * day:         "2w ago",
		90 * day:          "In 3mo",
		-90 * day:         "3mo ago",
	}
	for offset, want := range cases {
		assert.Equal(t, want, RelativeTime(testNow.Add(offset), testNow), "offset %s", offset)
	}
}

func TestDueText(t *testing.T) {
	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"no date", nil, ""},
		{"five days left", at(testNow.Add(5 * 24 * time.Hour)), "D-5"},
		{"partial day rounds up", at(testNow.Add(2 * time.Hour)), "D-1"},
		{"exactly now", at(testNow), "D-Day"},
		{"one day late", at(testNow.Add(-24 * time.Hour)), "1 day overdue"},
		{"five days late", at(testNow.Add(-5 * 24 * time.Hour)), "5 days overdue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueText(tt.end, testNow))
		})
	}
}

func TestDueBadge(t *testing.T) {
	late := at(testNow.Add(-3 * 24 * time.Hour))

	assert.Contains(t, DueBadge(domain.StatusInProgress, late, testNow), "3 days overdue")
	assert.Contains(t, DueBadge(domain.StatusCompleted, late, testNow), "3 days overdue")
	assert.Empty(t, DueBadge(domain.StatusInProgress, nil, testNow))
}

func TestStatusPill(t *testing.T) {
	for _, s := range domain.AllStatuses {
		t.Run(string(s), func(t *testing.T) {
			assert.Contains(t, StatusPill(s), s.Label())
			assert.NotEmpty(t, StatusIcon(s))
		})
	}
}

func TestTokenStyle_UnknownTokenIsDim(t *testing.T) {
	assert.Equal(t, StyleDim.Render("x"), TokenStyle(domain.ColorToken("teal")).Render("x"))
}

func TestFormatHours(t *testing.T) {
	h := 16.0
	half := 2.5
	assert.Equal(t, "--", FormatHours(nil))
	assert.Equal(t, "16h", FormatHours(&h))
	assert.Equal(t, "2.5h", FormatHours(&half))
}

func TestRenderBox(t *testing.T) {
	result := RenderBox("TEST", "content here")
	assert.Contains(t, result, "TEST")
	assert.Contains(t, result, "content here")
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

func TestRenderBoxWithoutTitle(t *testing.T) {
	result := RenderBox("", "just content")
	assert.Contains(t, result, "just content")
	assert.Contains(t, result, "╭")
}
