package domain

import "time"

// Phase is a top-level project stage. Phases may nest through ParentID.
type Phase struct {
	ID          string
	ProjectID   string
	ParentID    *string
	Name        string
	Description string
	Status      Status
	// Progress is the manually-set value used when the phase has no children.
	Progress         int
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	OrderIndex       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Group is a work breakdown grouping within exactly one phase.
type Group struct {
	ID               string
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
	EpicID           *string
	FeatureIDs       []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
