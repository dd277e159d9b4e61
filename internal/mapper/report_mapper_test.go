package mapper

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func fixedMapper(t *testing.T) *Mapper {
	t.Helper()
	loc := time.FixedZone("PHT", 8*60*60)
	m := New(loc)
	m.Now = func() time.Time { return time.Date(2024, time.May, 10, 1, 30, 0, 0, time.UTC) }
	return m
}

func TestStatusFromDB(t *testing.T) {
	testCases := map[string]dto.Status{
		"open":          dto.StatusOpen,
		"IN_PROGRESS":   dto.StatusUnderInvestigation,
		"investigating": dto.StatusUnderInvestigation,
		"Closed":        dto.StatusSolved,
		"resolved":      dto.StatusSolved,
		"archived":      dto.StatusOpen,
		"":              dto.StatusOpen,
	}
	for raw, want := range testCases {
		assert.Equal(t, want, StatusFromDB(raw), raw)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, st := range dto.Statuses {
		assert.Equal(t, st, StatusFromDB(StatusToDB(st)))
	}
	assert.Equal(t, "open", StatusToDB(dto.Status("Whatever")))
}

func TestPriorityMapping(t *testing.T) {
	assert.Equal(t, dto.PriorityHigh, PriorityFromDB("HIGH"))
	assert.Equal(t, dto.PriorityMedium, PriorityFromDB("urgent"))
	assert.Equal(t, "critical", PriorityToDB(dto.PriorityCritical))
	assert.Equal(t, "medium", PriorityToDB(dto.Priority("nope")))
}

func TestRowToReportAppliesDefaults(t *testing.T) {
	m := fixedMapper(t)
	empty := ""
	row := models.ReportRow{
		ID:         "CR-2024-05-AB12",
		Title:      "Broken window",
		Type:       "Vandalism",
		Status:     "in_progress",
		Priority:   "weird",
		Victims:    datatypes.JSON(`"Store owner"`),
		Evidence:   datatypes.JSON(`null`),
		ReporterID: &empty,
	}

	r := m.RowToReport(row)
	assert.Equal(t, dto.StatusUnderInvestigation, r.Status)
	assert.Equal(t, dto.PriorityMedium, r.Priority)
	assert.Equal(t, DefaultLocation, r.Location)
	assert.Equal(t, DefaultOfficer, r.Officer)
	assert.Equal(t, DefaultDescription, r.Description)
	assert.Equal(t, DefaultDamage, r.Damage)
	assert.Equal(t, "", r.Notes)
	assert.Equal(t, "2024-05-10", r.Date)
	assert.Equal(t, "09:30", r.Time)
	assert.Equal(t, dto.StringList{"Store owner"}, r.Victims)
	assert.Equal(t, dto.StringList{}, r.Evidence)
	assert.Equal(t, dto.StringList{}, r.Suspects)
	assert.NotNil(t, r.Updates)
	assert.Empty(t, r.Updates)
	assert.Nil(t, r.ReporterID)
}

func TestReportToRow(t *testing.T) {
	m := fixedMapper(t)
	owner := "resident-9"
	row := m.ReportToRow(dto.Report{
		ID:         "CR-2024-05-AB12",
		Status:     dto.StatusSolved,
		Priority:   dto.PriorityLow,
		Location:   "Barangay Hall",
		Evidence:   dto.StringList{"photo", ""},
		ReporterID: &owner,
	})

	assert.Equal(t, "resolved", row.Status)
	assert.Equal(t, "low", row.Priority)
	require.NotNil(t, row.LocationName)
	assert.Equal(t, "Barangay Hall", *row.LocationName)
	assert.JSONEq(t, `["photo"]`, string(row.Evidence))
	assert.JSONEq(t, `[]`, string(row.Victims))
	assert.Equal(t, DefaultReportType, row.ReportType)
	require.NotNil(t, row.ReporterID)
	assert.Equal(t, owner, *row.ReporterID)
}

func TestPatchToRowEmitsOnlyPresentKeys(t *testing.T) {
	m := fixedMapper(t)

	assert.Empty(t, m.PatchToRow(dto.ReportPatch{}))

	fields := m.PatchToRow(dto.ReportPatch{
		Location:   dto.Some("Downtown"),
		Status:     dto.Some("Under Investigation"),
		ReporterID: dto.Optional[string]{Set: true, Null: true},
		Updates:    dto.Some([]dto.HistoryEntry{{Note: "ignored"}}),
	})

	assert.Equal(t, "Downtown", fields["location"])
	assert.Equal(t, "Downtown", fields["location_name"])
	assert.Equal(t, "investigating", fields["status"])
	v, ok := fields["reporter_id"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.NotContains(t, fields, "updates")
	assert.NotContains(t, fields, "title")
	assert.Len(t, fields, 4)
}

func TestGroupUpdatesChronological(t *testing.T) {
	m := fixedMapper(t)
	note := "Officer dispatched"
	blank := ""
	base := time.Date(2024, time.May, 9, 16, 5, 0, 0, time.UTC)
	rows := []models.ReportUpdateRow{
		{ReportID: "A", Comment: &note, CreatedAt: base.Add(2 * time.Hour)},
		{ReportID: "B", Comment: nil, CreatedAt: base},
		{ReportID: "A", Comment: &blank, CreatedAt: base},
	}

	grouped := m.GroupUpdates(rows)
	require.Len(t, grouped["A"], 2)
	assert.Equal(t, dto.HistoryEntry{Date: "2024-05-10", Time: "00:05", Note: DefaultUpdateNote}, grouped["A"][0])
	assert.Equal(t, dto.HistoryEntry{Date: "2024-05-10", Time: "02:05", Note: note}, grouped["A"][1])
	require.Len(t, grouped["B"], 1)
	assert.Equal(t, DefaultUpdateNote, grouped["B"][0].Note)
}

func TestNewUpdateRowRoundTrip(t *testing.T) {
	m := fixedMapper(t)
	entry := dto.HistoryEntry{Date: "2024-05-10", Time: "09:30", Note: "Report submitted"}

	row := m.NewUpdateRow("CR-2024-05-AB12", entry)
	assert.Equal(t, time.Date(2024, time.May, 10, 1, 30, 0, 0, time.UTC), row.CreatedAt)
	assert.Equal(t, entry, m.UpdateRowToEntry(row))

	garbage := m.EntryTimestamp(dto.HistoryEntry{Date: "soon"})
	assert.True(t, garbage.Equal(m.Now()))
}
