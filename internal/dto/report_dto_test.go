package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		in    string
		want  Status
		known bool
	}{
		{"Open", StatusOpen, true},
		{"under investigation", StatusUnderInvestigation, true},
		{"UnderInvestigation", StatusUnderInvestigation, true},
		{" solved ", StatusSolved, true},
		{"closed", StatusOpen, false},
		{"", StatusOpen, false},
	}
	for _, tc := range testCases {
		got, ok := ParseStatus(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.known, ok, tc.in)
	}
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("critical")
	assert.True(t, ok)
	assert.Equal(t, PriorityCritical, p)

	p, ok = ParsePriority("urgent")
	assert.False(t, ok)
	assert.Equal(t, PriorityMedium, p)
}

func TestStringListDecodesLenientForms(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want StringList
	}{
		{"null", `null`, StringList{}},
		{"bare string", `"Minor injuries"`, StringList{"Minor injuries"}},
		{"empty string", `""`, StringList{}},
		{"array drops empties", `["a","",null,"b"]`, StringList{"a", "b"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringListEncodesNilAsArray(t *testing.T) {
	b, err := json.Marshal(Report{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, []interface{}{}, decoded["victims"])
	assert.Equal(t, []interface{}{}, decoded["evidence"])
	assert.Nil(t, decoded["reporterId"])
}

func TestReportPatchTracksPresence(t *testing.T) {
	var patch ReportPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","reporterId":null,"victims":"Jane"}`), &patch))

	assert.True(t, patch.Title.Set)
	assert.Equal(t, "New", patch.Title.Value)
	assert.True(t, patch.ReporterID.Set)
	assert.True(t, patch.ReporterID.Null)
	assert.True(t, patch.Victims.Set)
	assert.Equal(t, StringList{"Jane"}, patch.Victims.Value)

	assert.False(t, patch.Officer.Set)
	assert.False(t, patch.Status.Set)
	assert.False(t, patch.ReplacesHistory())
}

func TestReportPatchApply(t *testing.T) {
	owner := "resident-1"
	r := Report{
		Title:      "Old",
		Officer:    "Officer Smith",
		Status:     StatusOpen,
		Priority:   PriorityLow,
		ReporterID: &owner,
		Updates:    []HistoryEntry{{Date: "2024-01-01", Time: "10:00", Note: "Report submitted"}},
	}

	patch := ReportPatch{
		Title:      Some("New"),
		Status:     Some("Solved"),
		Priority:   Some("bogus"),
		ReporterID: Optional[string]{Set: true, Null: true},
	}
	patch.Apply(&r)

	assert.Equal(t, "New", r.Title)
	assert.Equal(t, "Officer Smith", r.Officer)
	assert.Equal(t, StatusSolved, r.Status)
	assert.Equal(t, PriorityMedium, r.Priority)
	assert.Nil(t, r.ReporterID)
	assert.Len(t, r.Updates, 1)
}

func TestUpdateReportRequestEmbedsPatch(t *testing.T) {
	var req UpdateReportRequest
	body := `{"officer":"Officer Lea","updateNote":"Assigned","updates":[{"date":"2024-01-02","time":"09:00","note":"x"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.True(t, req.Officer.Set)
	require.NotNil(t, req.UpdateNote)
	assert.Equal(t, "Assigned", *req.UpdateNote)
	assert.True(t, req.ReplacesHistory())
}

func TestReportCloneDoesNotAlias(t *testing.T) {
	owner := "r1"
	r := Report{Evidence: StringList{"a"}, Updates: []HistoryEntry{{Note: "n"}}, ReporterID: &owner}
	c := r.Clone()
	c.Evidence[0] = "b"
	c.Updates[0].Note = "m"
	*c.ReporterID = "r2"

	assert.Equal(t, "a", r.Evidence[0])
	assert.Equal(t, "n", r.Updates[0].Note)
	assert.Equal(t, "r1", *r.ReporterID)
}

func TestStreamEventEncoding(t *testing.T) {
	b, err := json.Marshal(InitEvent(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"init","reports":[]}`, string(b))

	b, err = json.Marshal(DeletedEvent("CR-2024-01-ABCD"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"deleted","id":"CR-2024-01-ABCD"}`, string(b))

	b, err = json.Marshal(ReportEvent(EventCreated, Report{ID: "CR-2024-01-ABCD"}))
	require.NoError(t, err)
	var decoded StreamEvent
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, EventCreated, decoded.Type)
	require.NotNil(t, decoded.Report)
	assert.Equal(t, "CR-2024-01-ABCD", decoded.Report.ID)
}

func TestNewReportID(t *testing.T) {
	at := time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		id := NewReportID(at)
		assert.Regexp(t, ReportIDPattern, id)
		assert.Equal(t, "CR-2025-03-", id[:11])
	}
	assert.Equal(t, "CR-2025-03-0007", FormatReportID(at, "0007"))
}
