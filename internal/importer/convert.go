package importer

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/rollup"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// DefaultWeight is applied to groups, items and tasks that omit a weight.
const DefaultWeight = 100

// RoundProgress turns a wire progress value into a whole percentage,
// rounding half away from zero. A missing value is 0.
func RoundProgress(v *float64) int {
	return int(math.Round(domain.DerefOr(v, 0)))
}

// Convert turns a validated snapshot file into domain records stamped with
// now. Call ValidateSnapshot first; Convert assumes references resolve.
// Denormalized group/phase references on items and tasks are filled from
// their parents when omitted.
func Convert(file *SnapshotFile, now time.Time) (rollup.Snapshot, error) {
	snap := rollup.Snapshot{ProjectID: file.ProjectID}

	for _, r := range file.Phases {
		status, err := statusOrDefault(r.Status)
		if err != nil {
			return rollup.Snapshot{}, fmt.Errorf("phase %s: %w", r.ID, err)
		}
		var parentID *string
		if r.ParentID != nil && *r.ParentID != "" {
			id := *r.ParentID
			parentID = &id
		}
		p := &domain.Phase{
			ID:          r.ID,
			ProjectID:   domain.Coalesce(r.ProjectID, file.ProjectID),
			ParentID:    parentID,
			Name:        r.Name,
			Description: r.Description,
			Status:      status,
			Progress:    RoundProgress(r.Progress),
			OrderIndex:  r.OrderIndex,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if p.PlannedStartDate, p.PlannedEndDate, err = parsePlanned(r.PlannedStartDate, r.PlannedEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("phase %s: %w", r.ID, err)
		}
		snap.Phases = append(snap.Phases, p)
	}

	groupPhase := make(map[string]string, len(file.Groups))
	for _, r := range file.Groups {
		status, err := statusOrDefault(r.Status)
		if err != nil {
			return rollup.Snapshot{}, fmt.Errorf("group %s: %w", r.ID, err)
		}
		g := &domain.Group{
			ID:          r.ID,
			PhaseID:     r.PhaseID,
			Name:        r.Name,
			Description: r.Description,
			Code:        r.Code,
			Status:      status,
			Weight:      domain.DerefOr(r.Weight, DefaultWeight),
			OrderIndex:  r.OrderIndex,
			EpicID:      r.EpicID,
			FeatureIDs:  r.FeatureIDs,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if g.PlannedStartDate, g.PlannedEndDate, err = parsePlanned(r.PlannedStartDate, r.PlannedEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("group %s: %w", r.ID, err)
		}
		if g.ActualStartDate, g.ActualEndDate, err = parsePlanned(r.ActualStartDate, r.ActualEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("group %s: %w", r.ID, err)
		}
		groupPhase[g.ID] = g.PhaseID
		snap.Groups = append(snap.Groups, g)
	}

	itemGroup := make(map[string]string, len(file.Items))
	for _, r := range file.Items {
		status, err := statusOrDefault(r.Status)
		if err != nil {
			return rollup.Snapshot{}, fmt.Errorf("item %s: %w", r.ID, err)
		}
		it := &domain.Item{
			ID:          r.ID,
			GroupID:     r.GroupID,
			PhaseID:     domain.Coalesce(r.PhaseID, groupPhase[r.GroupID]),
			Name:        r.Name,
			Description: r.Description,
			Code:        r.Code,
			Status:      status,
			Weight:      domain.DerefOr(r.Weight, DefaultWeight),
			OrderIndex:  r.OrderIndex,
			Assignment:  domain.Assignment{AssigneeID: r.AssigneeID, AssigneeName: r.AssigneeName},
			Effort:      domain.Effort{EstimatedHours: r.EstimatedHours, ActualHours: r.ActualHours},
			StoryIDs:    r.StoryIDs,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if it.PlannedStartDate, it.PlannedEndDate, err = parsePlanned(r.PlannedStartDate, r.PlannedEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("item %s: %w", r.ID, err)
		}
		if it.ActualStartDate, it.ActualEndDate, err = parsePlanned(r.ActualStartDate, r.ActualEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("item %s: %w", r.ID, err)
		}
		itemGroup[it.ID] = it.GroupID
		snap.Items = append(snap.Items, it)
	}

	for _, r := range file.Tasks {
		status, err := statusOrDefault(r.Status)
		if err != nil {
			return rollup.Snapshot{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		groupID := domain.Coalesce(r.GroupID, itemGroup[r.ItemID])
		t := &domain.Task{
			ID:            r.ID,
			ItemID:        r.ItemID,
			GroupID:       groupID,
			PhaseID:       domain.Coalesce(r.PhaseID, groupPhase[groupID]),
			Name:          r.Name,
			Description:   r.Description,
			Code:          r.Code,
			Status:        status,
			Progress:      RoundProgress(r.Progress),
			Weight:        domain.DerefOr(r.Weight, DefaultWeight),
			OrderIndex:    r.OrderIndex,
			Assignment:    domain.Assignment{AssigneeID: r.AssigneeID, AssigneeName: r.AssigneeName},
			Effort:        domain.Effort{EstimatedHours: r.EstimatedHours, ActualHours: r.ActualHours},
			BacklogTaskID: r.BacklogTaskID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if t.PlannedStartDate, t.PlannedEndDate, err = parsePlanned(r.PlannedStartDate, r.PlannedEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		if t.ActualStartDate, t.ActualEndDate, err = parsePlanned(r.ActualStartDate, r.ActualEndDate); err != nil {
			return rollup.Snapshot{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		snap.Tasks = append(snap.Tasks, t)
	}

	return snap, nil
}

// FromSnapshot renders stored records back into the wire shape.
func FromSnapshot(s rollup.Snapshot) *SnapshotFile {
	file := &SnapshotFile{ProjectID: s.ProjectID}
	for _, p := range s.Phases {
		progress := float64(p.Progress)
		file.Phases = append(file.Phases, PhaseRecord{
			ID:               p.ID,
			ProjectID:        p.ProjectID,
			ParentID:         p.ParentID,
			Name:             p.Name,
			Description:      p.Description,
			Status:           string(p.Status),
			Progress:         &progress,
			PlannedStartDate: formatDate(p.PlannedStartDate),
			PlannedEndDate:   formatDate(p.PlannedEndDate),
			OrderIndex:       p.OrderIndex,
		})
	}
	for _, g := range s.Groups {
		weight := g.Weight
		file.Groups = append(file.Groups, GroupRecord{
			ID:               g.ID,
			PhaseID:          g.PhaseID,
			Name:             g.Name,
			Description:      g.Description,
			Code:             g.Code,
			Status:           string(g.Status),
			Weight:           &weight,
			PlannedStartDate: formatDate(g.PlannedStartDate),
			PlannedEndDate:   formatDate(g.PlannedEndDate),
			ActualStartDate:  formatDate(g.ActualStartDate),
			ActualEndDate:    formatDate(g.ActualEndDate),
			OrderIndex:       g.OrderIndex,
			EpicID:           g.EpicID,
			FeatureIDs:       g.FeatureIDs,
		})
	}
	for _, it := range s.Items {
		weight := it.Weight
		file.Items = append(file.Items, ItemRecord{
			ID:               it.ID,
			GroupID:          it.GroupID,
			PhaseID:          it.PhaseID,
			Name:             it.Name,
			Description:      it.Description,
			Code:             it.Code,
			Status:           string(it.Status),
			Weight:           &weight,
			PlannedStartDate: formatDate(it.PlannedStartDate),
			PlannedEndDate:   formatDate(it.PlannedEndDate),
			ActualStartDate:  formatDate(it.ActualStartDate),
			ActualEndDate:    formatDate(it.ActualEndDate),
			OrderIndex:       it.OrderIndex,
			AssigneeID:       it.AssigneeID,
			AssigneeName:     it.AssigneeName,
			EstimatedHours:   it.EstimatedHours,
			ActualHours:      it.ActualHours,
			StoryIDs:         it.StoryIDs,
		})
	}
	for _, t := range s.Tasks {
		weight, progress := t.Weight, float64(t.Progress)
		file.Tasks = append(file.Tasks, TaskRecord{
			ID:               t.ID,
			ItemID:           t.ItemID,
			GroupID:          t.GroupID,
			PhaseID:          t.PhaseID,
			Name:             t.Name,
			Description:      t.Description,
			Code:             t.Code,
			Status:           string(t.Status),
			Progress:         &progress,
			Weight:           &weight,
			PlannedStartDate: formatDate(t.PlannedStartDate),
			PlannedEndDate:   formatDate(t.PlannedEndDate),
			ActualStartDate:  formatDate(t.ActualStartDate),
			ActualEndDate:    formatDate(t.ActualEndDate),
			OrderIndex:       t.OrderIndex,
			AssigneeID:       t.AssigneeID,
			AssigneeName:     t.AssigneeName,
			EstimatedHours:   t.EstimatedHours,
			ActualHours:      t.ActualHours,
			BacklogTaskID:    t.BacklogTaskID,
		})
	}
	return file
}

func statusOrDefault(raw string) (domain.Status, error) {
	return domain.ParseStatus(domain.Coalesce(raw, string(domain.StatusNotStarted)))
}

func parsePlanned(start, end *string) (*time.Time, *time.Time, error) {
	s, err := timeline.ParseOptionalDate(start)
	if err != nil {
		return nil, nil, err
	}
	e, err := timeline.ParseOptionalDate(end)
	if err != nil {
		return nil, nil, err
	}
	return s, e, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeline.FormatDate(*t)
	return &s
}
