package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SnapshotFile is the wire shape of a project's WBS as the REST API returns
// it and as `wbs import` reads it from disk.
type SnapshotFile struct {
	ProjectID string        `json:"projectId"`
	Phases    []PhaseRecord `json:"phases"`
	Groups    []GroupRecord `json:"groups"`
	Items     []ItemRecord  `json:"items"`
	Tasks     []TaskRecord  `json:"tasks"`
}

type PhaseRecord struct {
	ID               string   `json:"id"`
	ProjectID        string   `json:"projectId,omitempty"`
	ParentID         *string  `json:"parentId,omitempty"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Status           string   `json:"status,omitempty"`
	Progress         *float64 `json:"progress,omitempty"`
	PlannedStartDate *string  `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *string  `json:"plannedEndDate,omitempty"`
	OrderIndex       int      `json:"orderIndex"`
}

type GroupRecord struct {
	ID               string   `json:"id"`
	PhaseID          string   `json:"phaseId"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Code             string   `json:"code,omitempty"`
	Status           string   `json:"status,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	PlannedStartDate *string  `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *string  `json:"plannedEndDate,omitempty"`
	ActualStartDate  *string  `json:"actualStartDate,omitempty"`
	ActualEndDate    *string  `json:"actualEndDate,omitempty"`
	OrderIndex       int      `json:"orderIndex"`
	EpicID           *string  `json:"epicId,omitempty"`
	FeatureIDs       []string `json:"featureIds,omitempty"`
}

type ItemRecord struct {
	ID               string   `json:"id"`
	GroupID          string   `json:"groupId"`
	PhaseID          string   `json:"phaseId,omitempty"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Code             string   `json:"code,omitempty"`
	Status           string   `json:"status,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	PlannedStartDate *string  `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *string  `json:"plannedEndDate,omitempty"`
	ActualStartDate  *string  `json:"actualStartDate,omitempty"`
	ActualEndDate    *string  `json:"actualEndDate,omitempty"`
	OrderIndex       int      `json:"orderIndex"`
	AssigneeID       *string  `json:"assigneeId,omitempty"`
	AssigneeName     *string  `json:"assigneeName,omitempty"`
	EstimatedHours   *float64 `json:"estimatedHours,omitempty"`
	ActualHours      *float64 `json:"actualHours,omitempty"`
	StoryIDs         []string `json:"storyIds,omitempty"`
}

type TaskRecord struct {
	ID               string   `json:"id"`
	ItemID           string   `json:"itemId"`
	GroupID          string   `json:"groupId,omitempty"`
	PhaseID          string   `json:"phaseId,omitempty"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Code             string   `json:"code,omitempty"`
	Status           string   `json:"status,omitempty"`
	Progress         *float64 `json:"progress,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	PlannedStartDate *string  `json:"plannedStartDate,omitempty"`
	PlannedEndDate   *string  `json:"plannedEndDate,omitempty"`
	ActualStartDate  *string  `json:"actualStartDate,omitempty"`
	ActualEndDate    *string  `json:"actualEndDate,omitempty"`
	OrderIndex       int      `json:"orderIndex"`
	AssigneeID       *string  `json:"assigneeId,omitempty"`
	AssigneeName     *string  `json:"assigneeName,omitempty"`
	EstimatedHours   *float64 `json:"estimatedHours,omitempty"`
	ActualHours      *float64 `json:"actualHours,omitempty"`
	BacklogTaskID    *string  `json:"backlogTaskId,omitempty"`
}

// LoadSnapshot reads and parses a snapshot JSON file.
func LoadSnapshot(path string) (*SnapshotFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSnapshot(f)
}

// DecodeSnapshot parses a snapshot from r. Unknown fields are ignored so
// newer API responses still load.
func DecodeSnapshot(r io.Reader) (*SnapshotFile, error) {
	var file SnapshotFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &file, nil
}

// EncodeSnapshot writes file as indented JSON.
func EncodeSnapshot(w io.Writer, file *SnapshotFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
