package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.June, 3, 14, 45, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	store := NewStore(NewHub(0), time.UTC)
	store.SetClock(func() time.Time { return testNow })
	rec := &recorder{}
	_, err := store.Hub().Subscribe(rec.write, rec.close)
	require.NoError(t, err)
	return store, rec
}

func sampleReport(id string) dto.Report {
	return dto.Report{
		ID:       id,
		Title:    "Sample " + id,
		Status:   dto.StatusOpen,
		Priority: dto.PriorityMedium,
		Updates:  []dto.HistoryEntry{{Date: "2024-06-01", Time: "08:00", Note: "Report submitted"}},
	}
}

func TestUpsertPrependsAndReplaces(t *testing.T) {
	store, rec := newTestStore(t)

	store.Upsert(sampleReport("A"), "")
	store.Upsert(sampleReport("B"), "")

	changed := sampleReport("A")
	changed.Title = "Changed"
	store.Upsert(changed, "")

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[0].ID)
	assert.Equal(t, "A", all[1].ID)
	assert.Equal(t, "Changed", all[1].Title)

	events := rec.events(t)
	require.Len(t, events, 3)
	assert.Equal(t, dto.EventCreated, events[0].Type)
	assert.Equal(t, dto.EventCreated, events[1].Type)
	assert.Equal(t, dto.EventUpdated, events[2].Type)
	assert.Equal(t, "Changed", events[2].Report.Title)
}

func TestUpsertKindOverride(t *testing.T) {
	store, rec := newTestStore(t)
	store.Upsert(sampleReport("A"), dto.EventUpdated)

	events := rec.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, dto.EventUpdated, events[0].Type)
	assert.Equal(t, 1, store.Len())
}

func TestUpdateStatusAppendsOneEntry(t *testing.T) {
	store, rec := newTestStore(t)
	store.Upsert(sampleReport("A"), "")

	updated, ok := store.UpdateStatus("A", dto.StatusSolved, "")
	require.True(t, ok)
	assert.Equal(t, dto.StatusSolved, updated.Status)
	require.Len(t, updated.Updates, 2)
	assert.Equal(t, dto.HistoryEntry{Date: "2024-06-03", Time: "14:45", Note: "Status changed to Solved"}, updated.Updates[1])

	_, ok = store.UpdateStatus("missing", dto.StatusSolved, "")
	assert.False(t, ok)
	assert.Len(t, rec.events(t), 2)
}

func TestUpdateFieldsMergesAndRecordsHistory(t *testing.T) {
	store, rec := newTestStore(t)
	store.Upsert(sampleReport("A"), "")

	updated, ok := store.UpdateFields("A", dto.ReportPatch{Officer: dto.Some("Officer Lea")}, "")
	require.True(t, ok)
	assert.Equal(t, "Officer Lea", updated.Officer)
	assert.Equal(t, "Sample A", updated.Title)
	require.Len(t, updated.Updates, 2)
	assert.Equal(t, DefaultUpdateNote, updated.Updates[1].Note)

	replaced, ok := store.UpdateFields("A", dto.ReportPatch{
		Updates: dto.Some([]dto.HistoryEntry{{Date: "2024-01-01", Time: "00:00", Note: "Imported"}}),
	}, "ignored")
	require.True(t, ok)
	require.Len(t, replaced.Updates, 1)
	assert.Equal(t, "Imported", replaced.Updates[0].Note)

	// An explicitly empty history still appends.
	appended, ok := store.UpdateFields("A", dto.ReportPatch{Updates: dto.Some([]dto.HistoryEntry{})}, "Noted")
	require.True(t, ok)
	require.Len(t, appended.Updates, 2)
	assert.Equal(t, "Noted", appended.Updates[1].Note)

	_, ok = store.UpdateFields("missing", dto.ReportPatch{}, "")
	assert.False(t, ok)
	assert.Len(t, rec.events(t), 4)
}

func TestRemovePublishesIDOnly(t *testing.T) {
	store, rec := newTestStore(t)
	store.Upsert(sampleReport("A"), "")

	assert.True(t, store.Remove("A"))
	assert.False(t, store.Remove("A"))
	assert.Equal(t, 0, store.Len())

	events := rec.events(t)
	require.Len(t, events, 2)
	assert.Equal(t, dto.EventDeleted, events[1].Type)
	assert.Equal(t, "A", events[1].ID)
	assert.Nil(t, events[1].Report)
}

func TestReplaceDoesNotBroadcast(t *testing.T) {
	store, rec := newTestStore(t)
	store.Replace([]dto.Report{sampleReport("A"), sampleReport("B")})

	assert.Equal(t, 2, store.Len())
	assert.Empty(t, rec.events(t))
}

func TestSetInitialIfEmpty(t *testing.T) {
	store, rec := newTestStore(t)

	assert.True(t, store.SetInitialIfEmpty([]dto.Report{sampleReport("A")}))
	assert.False(t, store.SetInitialIfEmpty([]dto.Report{sampleReport("B")}))

	events := rec.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, dto.EventInit, events[0].Type)
	require.Len(t, events[0].Reports, 1)
	assert.Equal(t, "A", events[0].Reports[0].ID)
}

func TestSeedIfEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	first, ok := store.SeedIfEmpty()
	require.True(t, ok)
	assert.Equal(t, PlaceholderCount, store.Len())
	assert.Regexp(t, dto.ReportIDPattern, first.ID)

	_, ok = store.SeedIfEmpty()
	assert.False(t, ok)
	assert.Equal(t, PlaceholderCount, store.Len())
}

func TestStoreCopiesInAndOut(t *testing.T) {
	store, _ := newTestStore(t)
	r := sampleReport("A")
	store.Upsert(r, "")

	r.Updates[0].Note = "mutated by caller"
	got, ok := store.Get("A")
	require.True(t, ok)
	assert.Equal(t, "Report submitted", got.Updates[0].Note)

	got.Title = "mutated copy"
	again, _ := store.Get("A")
	assert.Equal(t, "Sample A", again.Title)
}

func TestSubscribeSendsInitFirst(t *testing.T) {
	store := NewStore(NewHub(0), time.UTC)
	store.Replace([]dto.Report{sampleReport("A")})

	rec := &recorder{}
	_, err := store.Subscribe(rec.write, rec.close)
	require.NoError(t, err)
	store.Upsert(sampleReport("B"), "")

	events := rec.events(t)
	require.Len(t, events, 2)
	assert.Equal(t, dto.EventInit, events[0].Type)
	require.Len(t, events[0].Reports, 1)
	assert.Equal(t, dto.EventCreated, events[1].Type)
}

func TestSubscribeReleasesOnFailedInit(t *testing.T) {
	store := NewStore(NewHub(0), time.UTC)
	rec := &recorder{fail: errors.New("gone")}

	_, err := store.Subscribe(rec.write, rec.close)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Hub().Count())
	assert.Equal(t, 0, rec.closed)
}

func TestFilterByReporter(t *testing.T) {
	owner := "resident-1"
	mine := sampleReport("A")
	mine.ReporterID = &owner

	got := FilterByReporter([]dto.Report{mine, sampleReport("B")}, owner)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ID)
	assert.Empty(t, FilterByReporter(nil, owner))
}

func TestUpsertCanonicalizesStatusAndPriority(t *testing.T) {
	store, rec := newTestStore(t)
	r := sampleReport("A")
	r.Status = ""
	r.Priority = "high"
	store.Upsert(r, "")

	got, ok := store.Get("A")
	require.True(t, ok)
	assert.Equal(t, dto.StatusOpen, got.Status)
	assert.Equal(t, dto.PriorityHigh, got.Priority)

	events := rec.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, dto.StatusOpen, events[0].Report.Status)
	assert.Equal(t, dto.PriorityHigh, events[0].Report.Priority)

	bad := sampleReport("B")
	bad.Status = "pending"
	bad.Priority = ""
	store.Replace([]dto.Report{bad})
	got, _ = store.Get("B")
	assert.Equal(t, dto.StatusOpen, got.Status)
	assert.Equal(t, dto.PriorityMedium, got.Priority)
}
