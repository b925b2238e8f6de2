package importer

import (
	"fmt"

	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/timeline"
)

// ValidateSnapshot checks a decoded snapshot before conversion and returns
// every problem found, not just the first.
func ValidateSnapshot(file *SnapshotFile) []error {
	var errs []error

	if file.ProjectID == "" {
		errs = append(errs, fmt.Errorf("projectId is required"))
	}

	phaseIDs := make(map[string]bool)
	errs = append(errs, validatePhases(file.ProjectID, file.Phases, phaseIDs)...)

	groupPhase := make(map[string]string)
	errs = append(errs, validateGroups(file.Groups, phaseIDs, groupPhase)...)

	itemGroup := make(map[string]string)
	errs = append(errs, validateItems(file.Items, groupPhase, itemGroup)...)

	errs = append(errs, validateTasks(file.Tasks, groupPhase, itemGroup)...)

	return errs
}

func validatePhases(projectID string, phases []PhaseRecord, ids map[string]bool) []error {
	var errs []error

	for i, p := range phases {
		prefix := fmt.Sprintf("phases[%d]", i)
		errs = append(errs, validateID(prefix, p.ID, ids)...)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if p.ProjectID != "" && projectID != "" && p.ProjectID != projectID {
			errs = append(errs, fmt.Errorf("%s.projectId: %q does not match snapshot project %q", prefix, p.ProjectID, projectID))
		}
		errs = append(errs, validateStatus(prefix, p.Status)...)
		errs = append(errs, validateProgress(prefix, p.Progress)...)
		errs = append(errs, validateOptionalDate(prefix+".plannedStartDate", p.PlannedStartDate)...)
		errs = append(errs, validateOptionalDate(prefix+".plannedEndDate", p.PlannedEndDate)...)
	}

	// Parents may appear after their children, so resolve in a second pass.
	for i, p := range phases {
		if p.ParentID == nil || *p.ParentID == "" {
			continue
		}
		prefix := fmt.Sprintf("phases[%d]", i)
		switch {
		case *p.ParentID == p.ID:
			errs = append(errs, fmt.Errorf("%s.parentId: phase %q is its own parent", prefix, p.ID))
		case !ids[*p.ParentID]:
			errs = append(errs, fmt.Errorf("%s.parentId: phase %q not found", prefix, *p.ParentID))
		}
	}

	errs = append(errs, detectParentCycles(phases)...)
	return errs
}

func validateGroups(groups []GroupRecord, phaseIDs map[string]bool, groupPhase map[string]string) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, g := range groups {
		prefix := fmt.Sprintf("groups[%d]", i)
		errs = append(errs, validateID(prefix, g.ID, seen)...)
		if g.PhaseID == "" {
			errs = append(errs, fmt.Errorf("%s.phaseId is required", prefix))
		} else if !phaseIDs[g.PhaseID] {
			errs = append(errs, fmt.Errorf("%s.phaseId: phase %q not found", prefix, g.PhaseID))
		}
		if g.ID != "" {
			groupPhase[g.ID] = g.PhaseID
		}
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateStatus(prefix, g.Status)...)
		errs = append(errs, validateWeight(prefix, g.Weight)...)
		errs = append(errs, validateDates(prefix, g.PlannedStartDate, g.PlannedEndDate, g.ActualStartDate, g.ActualEndDate)...)
	}
	return errs
}

func validateItems(items []ItemRecord, groupPhase map[string]string, itemGroup map[string]string) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, it := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		errs = append(errs, validateID(prefix, it.ID, seen)...)
		phaseID, ok := groupPhase[it.GroupID]
		switch {
		case it.GroupID == "":
			errs = append(errs, fmt.Errorf("%s.groupId is required", prefix))
		case !ok:
			errs = append(errs, fmt.Errorf("%s.groupId: group %q not found", prefix, it.GroupID))
		case it.PhaseID != "" && it.PhaseID != phaseID:
			errs = append(errs, fmt.Errorf("%s.phaseId: %q does not match group phase %q", prefix, it.PhaseID, phaseID))
		}
		if it.ID != "" {
			itemGroup[it.ID] = it.GroupID
		}
		if it.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateStatus(prefix, it.Status)...)
		errs = append(errs, validateWeight(prefix, it.Weight)...)
		errs = append(errs, validateHours(prefix, it.EstimatedHours, it.ActualHours)...)
		errs = append(errs, validateDates(prefix, it.PlannedStartDate, it.PlannedEndDate, it.ActualStartDate, it.ActualEndDate)...)
	}
	return errs
}

func validateTasks(tasks []TaskRecord, groupPhase map[string]string, itemGroup map[string]string) []error {
	var errs []error
	seen := make(map[string]bool)

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		errs = append(errs, validateID(prefix, t.ID, seen)...)
		groupID, ok := itemGroup[t.ItemID]
		switch {
		case t.ItemID == "":
			errs = append(errs, fmt.Errorf("%s.itemId is required", prefix))
		case !ok:
			errs = append(errs, fmt.Errorf("%s.itemId: item %q not found", prefix, t.ItemID))
		default:
			if t.GroupID != "" && t.GroupID != groupID {
				errs = append(errs, fmt.Errorf("%s.groupId: %q does not match item group %q", prefix, t.GroupID, groupID))
			}
			if phaseID := groupPhase[groupID]; t.PhaseID != "" && t.PhaseID != phaseID {
				errs = append(errs, fmt.Errorf("%s.phaseId: %q does not match item phase %q", prefix, t.PhaseID, phaseID))
			}
		}
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, validateStatus(prefix, t.Status)...)
		errs = append(errs, validateProgress(prefix, t.Progress)...)
		errs = append(errs, validateWeight(prefix, t.Weight)...)
		errs = append(errs, validateHours(prefix, t.EstimatedHours, t.ActualHours)...)
		errs = append(errs, validateDates(prefix, t.PlannedStartDate, t.PlannedEndDate, t.ActualStartDate, t.ActualEndDate)...)
	}
	return errs
}

func validateID(prefix, id string, seen map[string]bool) []error {
	if id == "" {
		return []error{fmt.Errorf("%s.id is required", prefix)}
	}
	if seen[id] {
		return []error{fmt.Errorf("%s.id: duplicate id %q", prefix, id)}
	}
	seen[id] = true
	return nil
}

func validateStatus(prefix, status string) []error {
	if status == "" {
		return nil
	}
	if _, err := domain.ParseStatus(status); err != nil {
		return []error{fmt.Errorf("%s.status: %w", prefix, err)}
	}
	return nil
}

func validateProgress(prefix string, progress *float64) []error {
	if progress != nil && (*progress < 0 || *progress > 100) {
		return []error{fmt.Errorf("%s.progress: %g out of range 0..100", prefix, *progress)}
	}
	return nil
}

func validateWeight(prefix string, weight *float64) []error {
	if weight != nil && (*weight < 0 || *weight > 100) {
		return []error{fmt.Errorf("%s.weight: %g out of range 0..100", prefix, *weight)}
	}
	return nil
}

func validateHours(prefix string, estimated, actual *float64) []error {
	var errs []error
	if estimated != nil && *estimated < 0 {
		errs = append(errs, fmt.Errorf("%s.estimatedHours must not be negative", prefix))
	}
	if actual != nil && *actual < 0 {
		errs = append(errs, fmt.Errorf("%s.actualHours must not be negative", prefix))
	}
	return errs
}

func validateDates(prefix string, plannedStart, plannedEnd, actualStart, actualEnd *string) []error {
	var errs []error
	errs = append(errs, validateOptionalDate(prefix+".plannedStartDate", plannedStart)...)
	errs = append(errs, validateOptionalDate(prefix+".plannedEndDate", plannedEnd)...)
	errs = append(errs, validateOptionalDate(prefix+".actualStartDate", actualStart)...)
	errs = append(errs, validateOptionalDate(prefix+".actualEndDate", actualEnd)...)
	return errs
}

func validateOptionalDate(field string, dateStr *string) []error {
	if _, err := timeline.ParseOptionalDate(dateStr); err != nil {
		return []error{fmt.Errorf("%s: %w", field, err)}
	}
	return nil
}

// detectParentCycles reports phases whose parent chain loops back on itself.
func detectParentCycles(phases []PhaseRecord) []error {
	parent := make(map[string]string, len(phases))
	for _, p := range phases {
		if p.ID != "" && p.ParentID != nil && *p.ParentID != "" && *p.ParentID != p.ID {
			parent[p.ID] = *p.ParentID
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // on the current chain
		black = 2 // known to reach a root
	)
	color := make(map[string]int)
	var errs []error

	for _, p := range phases {
		var chain []string
		node := p.ID
		for node != "" && color[node] == white {
			color[node] = gray
			chain = append(chain, node)
			node = parent[node]
		}
		if node != "" && color[node] == gray {
			errs = append(errs, fmt.Errorf("phases: circular parent chain involving %q", node))
		}
		for _, n := range chain {
			color[n] = black
		}
	}
	return errs
}
