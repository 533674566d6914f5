package ledger

import "sort"

// UnassignedLabel is the display name of the synthetic row holding focus time
// recorded before a project could be resolved.
const UnassignedLabel = "(Unassigned)"

// ProjectStats is one row of the per-project breakdown.
type ProjectStats struct {
	ID          string
	Name        string
	Path        string
	TodayMillis int64
	TotalMillis int64
	AIToday     int64
	AITotal     int64
	Active      bool
	Unassigned  bool
}

// BranchStats is one row of the per-branch breakdown for a project.
type BranchStats struct {
	Branch      string
	TodayMillis int64
	TotalMillis int64
}

// AllProjectsStats returns the per-project breakdown at now. The row set is
// the union of the known live projects, every project with historical data,
// and the currently active project; the configured template project is
// excluded. A synthetic unassigned row carries max(0, grand total - sum of
// per-project totals), surfaced only when positive.
func (s *Store) AllProjectsStats(known []ProjectRef, now int64) []ProjectStats {
	s.lock()
	defer s.unlock()

	today := DayKey(now, s.loc)
	ids := make(map[string]bool)
	active := make(map[string]bool)
	for _, ref := range known {
		ids[ref.ID] = true
		active[ref.ID] = true
		if ref.Name != "" {
			s.state.ProjectNames[ref.ID] = ref.Name
		}
		if ref.Path != "" {
			s.state.ProjectPaths[ref.ID] = ref.Path
		}
	}
	for id := range s.state.ProjectFocus {
		ids[id] = true
	}
	for id := range s.state.ProjectAI {
		ids[id] = true
	}
	for id := range s.state.Segments {
		ids[id] = true
	}
	if cp := s.state.Checkpoint; cp != nil && cp.Project != "" {
		ids[cp.Project] = true
	}

	var rows []ProjectStats
	var sumToday, sumTotal int64
	for id := range ids {
		name := s.state.ProjectNames[id]
		if s.isTemplateLocked(id, name) {
			continue
		}
		row := ProjectStats{
			ID:      id,
			Name:    name,
			Path:    s.state.ProjectPaths[id],
			Active:  active[id],
			AIToday: s.state.ProjectAI[id][today] + s.segmentsOverlapLocked(id, today, now),
			AITotal: sumDays(s.state.ProjectAI[id]) + s.segmentsLiveLocked(id, now),
		}
		row.TodayMillis = s.state.ProjectFocus[id][today]
		row.TotalMillis = sumDays(s.state.ProjectFocus[id])
		if cp := s.state.Checkpoint; cp != nil && cp.Project == id {
			row.TodayMillis += s.checkpointOverlapLocked(today, now)
			row.TotalMillis += s.checkpointLiveLocked(now)
		}
		sumToday += row.TodayMillis
		sumTotal += row.TotalMillis
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalMillis != rows[j].TotalMillis {
			return rows[i].TotalMillis > rows[j].TotalMillis
		}
		return rows[i].ID < rows[j].ID
	})

	// Time recorded before any project could be resolved lives only in the
	// grand total; double-registered projects can push the per-project sum
	// past it, so the shortfall clamps to zero rather than going negative.
	grandToday := s.state.FocusDaily[today] + s.checkpointOverlapLocked(today, now)
	grandTotal := s.checkpointLiveLocked(now)
	for _, ms := range s.state.FocusDaily {
		grandTotal += ms
	}
	unassigned := ProjectStats{
		Name:        UnassignedLabel,
		TodayMillis: clampNonNegative(grandToday - sumToday),
		TotalMillis: clampNonNegative(grandTotal - sumTotal),
		Unassigned:  true,
	}
	if unassigned.TotalMillis > 0 {
		rows = append(rows, unassigned)
	}
	return rows
}

// BranchesStats returns the per-branch breakdown for a project at now. The
// unknown-branch row is the per-day shortfall between the project total and
// the sum of its named branches, clamped at zero; it replaces any previously
// recorded unknown-branch figure rather than adding to it, and never subtracts
// when named branches already exceed the project total.
func (s *Store) BranchesStats(project string, now int64) []BranchStats {
	s.lock()
	defer s.unlock()

	today := DayKey(now, s.loc)
	cp := s.state.Checkpoint
	cpLive := cp != nil && cp.Project == project && !s.state.Paused

	// Effective per-branch day maps: persisted totals plus the open
	// checkpoint's overlap on its branch (unknown when unresolved).
	branchDays := make(map[string]map[string]int64)
	for branch, days := range s.state.BranchFocus[project] {
		if branch == UnknownBranch {
			continue // replaced by the computed shortfall below
		}
		branchDays[branch] = copyDayMap(days)
	}
	projDays := copyDayMap(s.state.ProjectFocus[project])
	if cpLive {
		branch := cp.Branch
		if branch == "" {
			branch = UnknownBranch
		}
		for _, sl := range SplitDays(cp.Start, now, s.loc) {
			projDays[sl.Day] += sl.Millis
			if branch != UnknownBranch {
				if branchDays[branch] == nil {
					branchDays[branch] = make(map[string]int64)
				}
				branchDays[branch][sl.Day] += sl.Millis
			}
		}
	}

	// Per-day shortfall -> unknown branch.
	unknown := make(map[string]int64)
	for day, projMs := range projDays {
		var named int64
		for _, days := range branchDays {
			named += days[day]
		}
		if shortfall := projMs - named; shortfall > 0 {
			unknown[day] = shortfall
		}
	}
	if len(unknown) > 0 {
		branchDays[UnknownBranch] = unknown
	}

	rows := make([]BranchStats, 0, len(branchDays))
	for branch, days := range branchDays {
		rows = append(rows, BranchStats{
			Branch:      branch,
			TodayMillis: days[today],
			TotalMillis: sumDays(days),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalMillis != rows[j].TotalMillis {
			return rows[i].TotalMillis > rows[j].TotalMillis
		}
		return rows[i].Branch < rows[j].Branch
	})
	return rows
}

func (s *Store) isTemplateLocked(id, name string) bool {
	if s.tmpl == "" {
		return false
	}
	return id == s.tmpl || name == s.tmpl || id == NameID(s.tmpl)
}

func sumDays(days map[string]int64) int64 {
	var total int64
	for _, ms := range days {
		total += ms
	}
	return total
}
