package ledger

import "sort"

// MigrateIdentifiers normalizes project identifiers across historical schema
// versions and merges their bucketed data. Two passes, both idempotent and
// safe to re-run on every load:
//
//  1. Legacy key promotion: any identifier without a known tag is rewritten to
//     the name-based form and its data merged additively into the target.
//  2. Name-to-location promotion: when a live project carries a location-based
//     identifier and a name-based identifier exists for the same display name,
//     the legacy data is merged additively into the location-based key.
//
// Merges always add into the target and then remove the source, so data is
// never lost and re-running on an already-merged state is a no-op.
//
// The returned slice holds the rewritten source keys, sorted; it is empty
// when the state was already current.
func (s *Store) MigrateIdentifiers(known []ProjectRef) []string {
	s.lock()
	defer s.unlock()

	var migrated []string

	// Pass 1: promote untagged keys to the name-based form.
	for _, id := range s.projectIDsLocked() {
		if HasKnownPrefix(id) {
			continue
		}
		target := NameID(id)
		s.mergeProjectLocked(id, target)
		if _, ok := s.state.ProjectNames[target]; !ok {
			s.state.ProjectNames[target] = id
		}
		migrated = append(migrated, id)
	}

	// Pass 2: fold legacy name-based keys into live location-based keys.
	for _, ref := range known {
		if !IsLocationID(ref.ID) || ref.Name == "" {
			continue
		}
		legacy := NameID(ref.Name)
		if legacy == ref.ID || !s.hasProjectDataLocked(legacy) {
			continue
		}
		s.mergeProjectLocked(legacy, ref.ID)
		s.state.ProjectNames[ref.ID] = ref.Name
		if ref.Path != "" {
			s.state.ProjectPaths[ref.ID] = ref.Path
		}
		migrated = append(migrated, legacy)
	}

	sort.Strings(migrated)
	return migrated
}

// projectIDsLocked returns every identifier that appears anywhere in the
// bucketed data or side tables.
func (s *Store) projectIDsLocked() []string {
	seen := make(map[string]bool)
	for id := range s.state.ProjectFocus {
		seen[id] = true
	}
	for id := range s.state.ProjectAI {
		seen[id] = true
	}
	for id := range s.state.BranchFocus {
		seen[id] = true
	}
	for id := range s.state.ProjectNames {
		seen[id] = true
	}
	for id := range s.state.Segments {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) hasProjectDataLocked(id string) bool {
	if len(s.state.ProjectFocus[id]) > 0 || len(s.state.ProjectAI[id]) > 0 {
		return true
	}
	if len(s.state.BranchFocus[id]) > 0 {
		return true
	}
	if _, ok := s.state.ProjectNames[id]; ok {
		return true
	}
	return false
}

// mergeProjectLocked moves all of src's data into dst, summing per day, and
// repoints the active checkpoint and open AI segment if they referenced src.
func (s *Store) mergeProjectLocked(src, dst string) {
	if src == dst {
		return
	}

	if days := s.state.ProjectFocus[src]; days != nil {
		for day, ms := range days {
			addDay(s.state.ProjectFocus, dst, day, ms)
		}
		delete(s.state.ProjectFocus, src)
	}
	if days := s.state.ProjectAI[src]; days != nil {
		for day, ms := range days {
			addDay(s.state.ProjectAI, dst, day, ms)
		}
		delete(s.state.ProjectAI, src)
	}
	if branches := s.state.BranchFocus[src]; branches != nil {
		dstBranches := s.state.BranchFocus[dst]
		if dstBranches == nil {
			dstBranches = make(map[string]map[string]int64)
			s.state.BranchFocus[dst] = dstBranches
		}
		for branch, days := range branches {
			dstDays := dstBranches[branch]
			if dstDays == nil {
				dstDays = make(map[string]int64)
				dstBranches[branch] = dstDays
			}
			for day, ms := range days {
				dstDays[day] += ms
			}
		}
		delete(s.state.BranchFocus, src)
	}

	if name, ok := s.state.ProjectNames[src]; ok {
		if _, exists := s.state.ProjectNames[dst]; !exists {
			s.state.ProjectNames[dst] = name
		}
		delete(s.state.ProjectNames, src)
	}
	if path, ok := s.state.ProjectPaths[src]; ok {
		if _, exists := s.state.ProjectPaths[dst]; !exists {
			s.state.ProjectPaths[dst] = path
		}
		delete(s.state.ProjectPaths, src)
	}

	if cp := s.state.Checkpoint; cp != nil && cp.Project == src {
		cp.Project = dst
	}
	if seg, ok := s.state.Segments[src]; ok {
		delete(s.state.Segments, src)
		if existing, exists := s.state.Segments[dst]; exists {
			// Two open segments collapse into one spanning both.
			if seg.Start < existing.Start {
				existing.Start = seg.Start
			}
			if seg.End > existing.End {
				existing.End = seg.End
			}
		} else {
			s.state.Segments[dst] = seg
		}
	}
}
