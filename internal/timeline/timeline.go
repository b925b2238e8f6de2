// Package timeline derives schedule facts (overdue, days remaining, due
// buckets) from planned end dates. Every function takes "now" explicitly.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
)

// DateLayout is the date-only format used by the backend and the CLI.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned by ParseDate for strings in neither supported
// format.
var ErrInvalidDate = errors.New("invalid date")

const day = 24 * time.Hour

// ParseDate accepts YYYY-MM-DD (UTC midnight) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD or RFC3339)", ErrInvalidDate, s)
}

// FormatDate is the inverse of ParseDate. UTC midnight is written date-only;
// any other instant keeps its time of day as an RFC3339 UTC timestamp.
func FormatDate(t time.Time) string {
	u := t.UTC()
	if u.Equal(u.Truncate(day)) {
		return u.Format(DateLayout)
	}
	return u.Format(time.RFC3339Nano)
}

// ParseOptionalDate parses s when non-nil and non-empty.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsOverdue reports whether end lies strictly before now. It looks only at
// the date; callers combine it with status (see IsActionableOverdue).
func IsOverdue(end *time.Time, now time.Time) bool {
	if end == nil {
		return false
	}
	return end.Before(now)
}

// IsActionableOverdue is IsOverdue restricted to work that is not completed.
func IsActionableOverdue(status domain.Status, end *time.Time, now time.Time) bool {
	return !status.IsCompleted() && IsOverdue(end, now)
}

// DaysRemaining returns ceil((end-now)/1 day), negative once end has passed,
// or nil when there is no end date.
func DaysRemaining(end *time.Time, now time.Time) *int {
	if end == nil {
		return nil
	}
	d := int(math.Ceil(float64(end.Sub(now)) / float64(day)))
	return &d
}

// DateBucket groups end dates for the due-date filter.
type DateBucket string

const (
	BucketAny       DateBucket = ""
	BucketOverdue   DateBucket = "overdue"
	BucketThisWeek  DateBucket = "this_week"
	BucketThisMonth DateBucket = "this_month"
	BucketLater     DateBucket = "later"
	BucketNoDate    DateBucket = "no_date"
)

// ParseBucket validates a bucket name. The empty string means "any".
func ParseBucket(s string) (DateBucket, error) {
	switch b := DateBucket(s); b {
	case BucketAny, BucketOverdue, BucketThisWeek, BucketThisMonth, BucketLater, BucketNoDate:
		return b, nil
	}
	return "", fmt.Errorf("unknown due bucket %q (overdue, this_week, this_month, later, no_date)", s)
}

// BucketOf classifies end relative to now.
func BucketOf(end *time.Time, now time.Time) DateBucket {
	if end == nil {
		return BucketNoDate
	}
	if IsOverdue(end, now) {
		return BucketOverdue
	}
	switch days := *DaysRemaining(end, now); {
	case days <= 7:
		return BucketThisWeek
	case days <= 30:
		return BucketThisMonth
	default:
		return BucketLater
	}
}

// Matches reports whether end falls in bucket b. BucketAny matches all.
func (b DateBucket) Matches(end *time.Time, now time.Time) bool {
	if b == BucketAny {
		return true
	}
	return BucketOf(end, now) == b
}
