package ledger

// RecordAIActivity marks AI/terminal activity for a project at now. Activity
// arriving inside the open segment's grace window coalesces into it, turning
// bursty signals into one continuous session; activity after the window has
// passed flushes the finished segment and starts a fresh one.
func (s *Store) RecordAIActivity(project string, now int64) {
	s.lock()
	defer s.unlock()
	if !s.state.AITracking || s.state.Paused || project == "" {
		return
	}

	seg, ok := s.state.Segments[project]
	switch {
	case !ok:
		s.state.Segments[project] = &Segment{Start: now, End: now + s.aiIdle}
	case now <= seg.End:
		if end := now + s.aiIdle; end > seg.End {
			seg.End = end
		}
	default:
		// The previous segment truly ended; flush it as recorded and start
		// over at now.
		s.appendAILocked(project, seg.Start, seg.End)
		s.state.Segments[project] = &Segment{Start: now, End: now + s.aiIdle}
	}
}

// FlushExpiredSegments flushes every open segment whose end has passed. Must
// run at least once per idle-threshold window, or expired segments linger in
// queries as live.
func (s *Store) FlushExpiredSegments(now int64) {
	s.lock()
	defer s.unlock()
	for project, seg := range s.state.Segments {
		if seg.End <= now {
			s.appendAILocked(project, seg.Start, seg.End)
			delete(s.state.Segments, project)
		}
	}
}

// EndSegmentsAt force-flushes every open segment truncated at cutoff. Used on
// suspend detection and shutdown so sleep time is never attributed as
// activity. Segments that start after the cutoff contribute nothing.
func (s *Store) EndSegmentsAt(cutoff int64) {
	s.lock()
	defer s.unlock()
	for project, seg := range s.state.Segments {
		end := seg.End
		if cutoff < end {
			end = cutoff
		}
		s.appendAILocked(project, seg.Start, end)
		delete(s.state.Segments, project)
	}
}
