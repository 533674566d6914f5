package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/focusledger/internal/config"
	"github.com/blackwell-systems/focusledger/internal/ledger"
	"github.com/blackwell-systems/focusledger/internal/store"
)

// seedLegacyDB writes a database whose project data is keyed by an untagged
// pre-migration identifier.
func seedLegacyDB(t *testing.T, dir string) {
	t.Helper()

	db, err := store.Open(filepath.Join(dir, config.DefaultDBName))
	if err != nil {
		t.Fatalf("opening seed database: %v", err)
	}
	defer func() { _ = db.Close() }()

	st := ledger.NewState()
	st.FocusDaily["2026-04-01"] = 1000
	st.ProjectFocus["myapp"] = map[string]int64{"2026-04-01": 1000}
	st.ProjectFocus[ledger.NameID("myapp")] = map[string]int64{"2026-04-01": 500}
	if err := db.SaveState(st); err != nil {
		t.Fatalf("seeding state: %v", err)
	}
}

func TestOpenLedger_MigratesIdentifiersBeforeQueries(t *testing.T) {
	dir := t.TempDir()
	seedLegacyDB(t, dir)

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("data_dir: "+dir+"\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	prev := flagConfig
	flagConfig = cfgPath
	defer func() { flagConfig = prev }()

	db, led, _, err := openLedger()
	if err != nil {
		t.Fatalf("openLedger: %v", err)
	}
	defer func() { _ = db.Close() }()

	// The untagged key must be merged into the name-derived one before any
	// query runs, not shown as a second project row.
	now := time.Now().UnixMilli()
	rows := led.AllProjectsStats(nil, now)
	if len(rows) != 1 {
		t.Fatalf("expected 1 project row after load, got %d: %+v", len(rows), rows)
	}
	if rows[0].ID != ledger.NameID("myapp") {
		t.Errorf("row ID = %q, want %q", rows[0].ID, ledger.NameID("myapp"))
	}
	if rows[0].TotalMillis != 1500 {
		t.Errorf("row total = %dms, want 1500ms (legacy and tagged buckets merged)", rows[0].TotalMillis)
	}
}
