package store

import (
	"testing"

	"github.com/blackwell-systems/focusledger/internal/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("opening in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	st := ledger.NewState()
	st.FocusDaily["2026-04-01"] = 3600_000
	st.FocusDaily["2026-04-02"] = 1800_000
	st.AIDaily["2026-04-01"] = 120_000
	st.ProjectFocus["loc:aaaa0001"] = map[string]int64{"2026-04-01": 3600_000}
	st.ProjectAI["loc:aaaa0001"] = map[string]int64{"2026-04-01": 120_000}
	st.BranchFocus["loc:aaaa0001"] = map[string]map[string]int64{
		"main":    {"2026-04-01": 3000_000},
		"feature": {"2026-04-01": 600_000},
	}
	st.ProjectNames["loc:aaaa0001"] = "alpha"
	st.ProjectPaths["loc:aaaa0001"] = "/w/alpha"
	st.Paused = true
	st.SessionDate = "2026-04-02"
	st.AITracking = false

	if err := db.SaveState(st); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.FocusDaily["2026-04-01"] != 3600_000 || loaded.FocusDaily["2026-04-02"] != 1800_000 {
		t.Errorf("daily totals mismatch: %v", loaded.FocusDaily)
	}
	if loaded.AIDaily["2026-04-01"] != 120_000 {
		t.Errorf("AI daily mismatch: %v", loaded.AIDaily)
	}
	if loaded.ProjectFocus["loc:aaaa0001"]["2026-04-01"] != 3600_000 {
		t.Errorf("project focus mismatch: %v", loaded.ProjectFocus)
	}
	if loaded.BranchFocus["loc:aaaa0001"]["main"]["2026-04-01"] != 3000_000 {
		t.Errorf("branch focus mismatch: %v", loaded.BranchFocus)
	}
	if loaded.ProjectNames["loc:aaaa0001"] != "alpha" || loaded.ProjectPaths["loc:aaaa0001"] != "/w/alpha" {
		t.Errorf("side tables mismatch: %v / %v", loaded.ProjectNames, loaded.ProjectPaths)
	}
	if !loaded.Paused {
		t.Error("paused flag lost")
	}
	if loaded.SessionDate != "2026-04-02" {
		t.Errorf("session date = %q", loaded.SessionDate)
	}
	if loaded.AITracking {
		t.Error("AI tracking flag lost")
	}
}

func TestSaveState_ReplacesPreviousContents(t *testing.T) {
	db := openTestDB(t)

	st := ledger.NewState()
	st.FocusDaily["2026-04-01"] = 1000
	st.ProjectFocus["loc:aaaa0001"] = map[string]int64{"2026-04-01": 1000}
	if err := db.SaveState(st); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Second save from a state where the project was merged away.
	st2 := ledger.NewState()
	st2.FocusDaily["2026-04-01"] = 1000
	st2.ProjectFocus["loc:bbbb0002"] = map[string]int64{"2026-04-01": 1000}
	if err := db.SaveState(st2); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := loaded.ProjectFocus["loc:aaaa0001"]; ok {
		t.Error("stale project survived a replacing save")
	}
	if loaded.ProjectFocus["loc:bbbb0002"]["2026-04-01"] != 1000 {
		t.Errorf("expected replacement project, got %v", loaded.ProjectFocus)
	}
}

func TestLoadState_FreshDatabaseIsEmpty(t *testing.T) {
	db := openTestDB(t)

	st, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.FocusDaily) != 0 || len(st.ProjectFocus) != 0 {
		t.Errorf("fresh database not empty: %v", st)
	}
	if !st.AITracking {
		t.Error("AI tracking should default on")
	}
	if st.Checkpoint != nil {
		t.Error("fresh state must not carry a checkpoint")
	}
}

func TestKnownProjects(t *testing.T) {
	db := openTestDB(t)

	st := ledger.NewState()
	st.ProjectNames["loc:aaaa0001"] = "alpha"
	st.ProjectPaths["loc:aaaa0001"] = "/w/alpha"
	st.ProjectNames["name:legacy"] = "legacy"
	if err := db.SaveState(st); err != nil {
		t.Fatalf("save: %v", err)
	}

	refs, err := db.KnownProjects()
	if err != nil {
		t.Fatalf("known projects: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].ID != "loc:aaaa0001" || refs[0].Name != "alpha" || refs[0].Path != "/w/alpha" {
		t.Errorf("unexpected first ref: %+v", refs[0])
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("re-running migrate: %v", err)
	}

	st := ledger.NewState()
	st.FocusDaily["2026-04-01"] = 42
	if err := db.SaveState(st); err != nil {
		t.Fatalf("save after re-migrate: %v", err)
	}
}
