package store

import (
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/focusledger/internal/ledger"
)

// Meta keys for the session flags.
const (
	metaPaused      = "paused"
	metaSessionDate = "session_date"
	metaAITracking  = "ai_tracking"
)

// SaveState writes a ledger snapshot in one transaction, replacing the
// previous contents. The snapshot is taken by the caller outside any ledger
// lock; this function only does I/O. Open checkpoints and AI segments are not
// written: they are flushed on shutdown and intentionally lost on crash (an
// undercount, never an overcount).
func (db *DB) SaveState(st *ledger.State) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"daily_totals", "project_daily", "branch_daily", "projects", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	days := make(map[string]bool)
	for day := range st.FocusDaily {
		days[day] = true
	}
	for day := range st.AIDaily {
		days[day] = true
	}
	for day := range days {
		if _, err := tx.Exec(
			"INSERT INTO daily_totals (day, focus_ms, ai_ms) VALUES (?, ?, ?)",
			day, st.FocusDaily[day], st.AIDaily[day],
		); err != nil {
			return fmt.Errorf("inserting daily total %s: %w", day, err)
		}
	}

	projectDays := make(map[string]map[string]bool)
	for project, byDay := range st.ProjectFocus {
		for day := range byDay {
			markDay(projectDays, project, day)
		}
	}
	for project, byDay := range st.ProjectAI {
		for day := range byDay {
			markDay(projectDays, project, day)
		}
	}
	for project, byDay := range projectDays {
		for day := range byDay {
			if _, err := tx.Exec(
				"INSERT INTO project_daily (project, day, focus_ms, ai_ms) VALUES (?, ?, ?, ?)",
				project, day, st.ProjectFocus[project][day], st.ProjectAI[project][day],
			); err != nil {
				return fmt.Errorf("inserting project daily %s/%s: %w", project, day, err)
			}
		}
	}

	for project, branches := range st.BranchFocus {
		for branch, byDay := range branches {
			for day, ms := range byDay {
				if _, err := tx.Exec(
					"INSERT INTO branch_daily (project, branch, day, focus_ms) VALUES (?, ?, ?, ?)",
					project, branch, day, ms,
				); err != nil {
					return fmt.Errorf("inserting branch daily %s/%s/%s: %w", project, branch, day, err)
				}
			}
		}
	}

	projects := make(map[string]bool)
	for id := range st.ProjectNames {
		projects[id] = true
	}
	for id := range st.ProjectPaths {
		projects[id] = true
	}
	for id := range projects {
		if _, err := tx.Exec(
			"INSERT INTO projects (id, name, path) VALUES (?, ?, ?)",
			id, st.ProjectNames[id], st.ProjectPaths[id],
		); err != nil {
			return fmt.Errorf("inserting project %s: %w", id, err)
		}
	}

	meta := map[string]string{
		metaPaused:      boolString(st.Paused),
		metaSessionDate: st.SessionDate,
		metaAITracking:  boolString(st.AITracking),
	}
	for key, value := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("inserting meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// LoadState reads the persisted ledger state. A fresh database yields an
// empty state. The caller runs identifier migration and AI-segment expiry on
// the result before first query.
func (db *DB) LoadState() (*ledger.State, error) {
	st := ledger.NewState()

	if err := db.queryRows(
		"SELECT day, focus_ms, ai_ms FROM daily_totals",
		func(rows *sql.Rows) error {
			var day string
			var focus, ai int64
			if err := rows.Scan(&day, &focus, &ai); err != nil {
				return err
			}
			if focus > 0 {
				st.FocusDaily[day] = focus
			}
			if ai > 0 {
				st.AIDaily[day] = ai
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("loading daily totals: %w", err)
	}

	if err := db.queryRows(
		"SELECT project, day, focus_ms, ai_ms FROM project_daily",
		func(rows *sql.Rows) error {
			var project, day string
			var focus, ai int64
			if err := rows.Scan(&project, &day, &focus, &ai); err != nil {
				return err
			}
			if focus > 0 {
				setDay(st.ProjectFocus, project, day, focus)
			}
			if ai > 0 {
				setDay(st.ProjectAI, project, day, ai)
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("loading project dailies: %w", err)
	}

	if err := db.queryRows(
		"SELECT project, branch, day, focus_ms FROM branch_daily",
		func(rows *sql.Rows) error {
			var project, branch, day string
			var focus int64
			if err := rows.Scan(&project, &branch, &day, &focus); err != nil {
				return err
			}
			branches := st.BranchFocus[project]
			if branches == nil {
				branches = make(map[string]map[string]int64)
				st.BranchFocus[project] = branches
			}
			if branches[branch] == nil {
				branches[branch] = make(map[string]int64)
			}
			branches[branch][day] = focus
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("loading branch dailies: %w", err)
	}

	if err := db.queryRows(
		"SELECT id, name, path FROM projects",
		func(rows *sql.Rows) error {
			var id, name, path string
			if err := rows.Scan(&id, &name, &path); err != nil {
				return err
			}
			if name != "" {
				st.ProjectNames[id] = name
			}
			if path != "" {
				st.ProjectPaths[id] = path
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	meta := make(map[string]string)
	if err := db.queryRows(
		"SELECT key, value FROM meta",
		func(rows *sql.Rows) error {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return err
			}
			meta[key] = value
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("loading meta: %w", err)
	}
	st.Paused = meta[metaPaused] == "1"
	st.SessionDate = meta[metaSessionDate]
	if v, ok := meta[metaAITracking]; ok {
		st.AITracking = v == "1"
	}

	return st, nil
}

// KnownProjects returns the persisted project side table as refs, used as the
// known-project set for identifier migration and stats from a cold process.
func (db *DB) KnownProjects() ([]ledger.ProjectRef, error) {
	var refs []ledger.ProjectRef
	err := db.queryRows(
		"SELECT id, name, path FROM projects ORDER BY id",
		func(rows *sql.Rows) error {
			var ref ledger.ProjectRef
			if err := rows.Scan(&ref.ID, &ref.Name, &ref.Path); err != nil {
				return err
			}
			refs = append(refs, ref)
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("loading known projects: %w", err)
	}
	return refs, nil
}

func (db *DB) queryRows(query string, scan func(*sql.Rows) error) error {
	rows, err := db.conn.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func markDay(m map[string]map[string]bool, key, day string) {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	m[key][day] = true
}

func setDay(m map[string]map[string]int64, key, day string, ms int64) {
	if m[key] == nil {
		m[key] = make(map[string]int64)
	}
	m[key][day] = ms
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
