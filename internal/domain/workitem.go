package domain

import (
	"fmt"
	"time"
)

// Assignment is the optional owner of an item or task.
type Assignment struct {
	AssigneeID   *string
	AssigneeName *string
}

// AssigneeLabel returns the display name, falling back to the id.
func (a Assignment) AssigneeLabel() string {
	if a.AssigneeName != nil && *a.AssigneeName != "" {
		return *a.AssigneeName
	}
	if a.AssigneeID != nil {
		return *a.AssigneeID
	}
	return ""
}

// Effort carries estimated and actual hours.
type Effort struct {
	EstimatedHours *float64
	ActualHours    *float64
}

// Item is a work package within exactly one group.
type Item struct {
	ID               string
	GroupID          string
	PhaseID          string
	Name             string
	Description      string
	Code             string
	Status           Status
	Weight           float64
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	OrderIndex       int
	Assignment
	Effort
	StoryIDs  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task is the leaf activity. It is the only level whose progress is set
// directly.
type Task struct {
	ID               string
	ItemID           string
	GroupID          string
	PhaseID          string
	Name             string
	Description      string
	Code             string
	Status           Status
	Progress         int
	Weight           float64
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	OrderIndex       int
	Assignment
	Effort
	BacklogTaskID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetProgress records a new progress value. Values outside 0..100 are
// rejected here; the aggregator itself accepts whatever it is given.
func (t *Task) SetProgress(pct int, now time.Time) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("progress %d out of range 0..100", pct)
	}
	t.Progress = pct
	t.UpdatedAt = now
	return nil
}

// SetStatus changes the task status. Progress is left untouched.
func (t *Task) SetStatus(s Status, now time.Time) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	t.Status = s
	t.UpdatedAt = now
	return nil
}
