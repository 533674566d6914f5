package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIdentifiers_LegacyKeyPromotion(t *testing.T) {
	s := newTestStore()
	st := NewState()
	st.FocusDaily["2026-04-01"] = 1500
	st.ProjectFocus["myapp"] = map[string]int64{"2026-04-01": 1000}
	st.ProjectAI["myapp"] = map[string]int64{"2026-04-01": 200}
	st.BranchFocus["myapp"] = map[string]map[string]int64{
		"main": {"2026-04-01": 800},
	}
	// Target already holds data from a prior run; merge must sum, not
	// overwrite.
	st.ProjectFocus[NameID("myapp")] = map[string]int64{"2026-04-01": 500}
	s.Restore(st)

	migrated := s.MigrateIdentifiers(nil)

	assert.Equal(t, []string{"myapp"}, migrated)
	snap := s.Snapshot()
	require.NotContains(t, snap.ProjectFocus, "myapp")
	assert.Equal(t, int64(1500), snap.ProjectFocus[NameID("myapp")]["2026-04-01"])
	assert.Equal(t, int64(200), snap.ProjectAI[NameID("myapp")]["2026-04-01"])
	assert.Equal(t, int64(800), snap.BranchFocus[NameID("myapp")]["main"]["2026-04-01"])
	assert.Equal(t, "myapp", snap.ProjectNames[NameID("myapp")], "display name backfilled")
}

func TestMigrateIdentifiers_NameToLocationPromotion(t *testing.T) {
	s := newTestStore()
	st := NewState()
	st.ProjectFocus[NameID("myapp")] = map[string]int64{"2026-04-01": 1000}
	st.ProjectNames[NameID("myapp")] = "myapp"
	st.BranchFocus[NameID("myapp")] = map[string]map[string]int64{
		"main": {"2026-04-01": 1000},
	}
	st.Checkpoint = nil
	s.Restore(st)

	live := ProjectRef{ID: LocationID("/work/myapp"), Name: "myapp", Path: "/work/myapp"}
	s.MigrateIdentifiers([]ProjectRef{live})

	snap := s.Snapshot()
	require.NotContains(t, snap.ProjectFocus, NameID("myapp"))
	assert.Equal(t, int64(1000), snap.ProjectFocus[live.ID]["2026-04-01"])
	assert.Equal(t, int64(1000), snap.BranchFocus[live.ID]["main"]["2026-04-01"])
	assert.Equal(t, "myapp", snap.ProjectNames[live.ID])
	assert.Equal(t, "/work/myapp", snap.ProjectPaths[live.ID])
}

func TestMigrateIdentifiers_RepointsActivePointers(t *testing.T) {
	s := newTestStore()
	st := NewState()
	st.ProjectFocus[NameID("myapp")] = map[string]int64{"2026-04-01": 100}
	st.ProjectNames[NameID("myapp")] = "myapp"
	st.Segments[NameID("myapp")] = &Segment{Start: 10, End: 20}
	s.Restore(st)

	// Checkpoint set after restore; restore discards loaded checkpoints.
	s.OpenCheckpoint(NameID("myapp"), "main", millisAt(t, time.UTC, "2026-04-02", 9, 0))

	live := ProjectRef{ID: LocationID("/work/myapp"), Name: "myapp", Path: "/work/myapp"}
	s.MigrateIdentifiers([]ProjectRef{live})

	cp, open := s.Checkpoint()
	require.True(t, open)
	assert.Equal(t, live.ID, cp.Project, "active checkpoint repointed to the promoted key")
	snap := s.Snapshot()
	require.Contains(t, snap.Segments, live.ID)
}

func TestMigrateIdentifiers_Idempotent(t *testing.T) {
	s := newTestStore()
	st := NewState()
	st.ProjectFocus["myapp"] = map[string]int64{"2026-04-01": 1000}
	st.ProjectAI["myapp"] = map[string]int64{"2026-04-01": 300}
	s.Restore(st)

	live := ProjectRef{ID: LocationID("/work/myapp"), Name: "myapp", Path: "/work/myapp"}
	first := s.MigrateIdentifiers([]ProjectRef{live})
	once := s.Snapshot()

	second := s.MigrateIdentifiers([]ProjectRef{live})
	twice := s.Snapshot()

	// Both passes fire on the first run, nothing on the second.
	assert.Equal(t, []string{"myapp", NameID("myapp")}, first)
	assert.Empty(t, second)
	assert.Equal(t, once.ProjectFocus, twice.ProjectFocus)
	assert.Equal(t, once.ProjectAI, twice.ProjectAI)
	assert.Equal(t, once.ProjectNames, twice.ProjectNames)
	assert.Equal(t, int64(1000), twice.ProjectFocus[live.ID]["2026-04-01"])
	assert.Equal(t, int64(300), twice.ProjectAI[live.ID]["2026-04-01"])
}

func TestLocationID_StableAndTagged(t *testing.T) {
	a := LocationID("/work/myapp")
	b := LocationID("/work/myapp")
	c := LocationID("/work/other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, IsLocationID(a))
	assert.True(t, HasKnownPrefix(a))
	assert.True(t, HasKnownPrefix(NameID("myapp")))
	assert.False(t, HasKnownPrefix("myapp"))
}
