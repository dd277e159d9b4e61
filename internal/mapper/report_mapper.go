// Package mapper converts between persisted report rows and the canonical
// report shape served to clients.
package mapper

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"gorm.io/datatypes"
)

const (
	DefaultLocation    = "Unknown"
	DefaultOfficer     = "Unassigned"
	DefaultDescription = "No description provided."
	DefaultDamage      = "N/A"
	DefaultUpdateNote  = "Update"
	DefaultReportType  = "crime"
)

var statusFromDB = map[string]dto.Status{
	"open":          dto.StatusOpen,
	"in_progress":   dto.StatusUnderInvestigation,
	"investigating": dto.StatusUnderInvestigation,
	"closed":        dto.StatusSolved,
	"resolved":      dto.StatusSolved,
}

var statusToDB = map[dto.Status]string{
	dto.StatusOpen:               "open",
	dto.StatusUnderInvestigation: "investigating",
	dto.StatusSolved:             "resolved",
}

var priorityFromDB = map[string]dto.Priority{
	"low":      dto.PriorityLow,
	"medium":   dto.PriorityMedium,
	"high":     dto.PriorityHigh,
	"critical": dto.PriorityCritical,
}

// StatusFromDB normalizes a persisted status; unknown values become Open.
func StatusFromDB(raw string) dto.Status {
	if st, ok := statusFromDB[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return dto.StatusOpen
}

// StatusToDB is the inverse of StatusFromDB for canonical values.
func StatusToDB(st dto.Status) string {
	if s, ok := statusToDB[st]; ok {
		return s
	}
	return "open"
}

// PriorityFromDB normalizes a persisted priority; unknown values become Medium.
func PriorityFromDB(raw string) dto.Priority {
	if p, ok := priorityFromDB[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p
	}
	return dto.PriorityMedium
}

func PriorityToDB(p dto.Priority) string {
	if _, ok := priorityFromDB[strings.ToLower(string(p))]; ok {
		return strings.ToLower(string(p))
	}
	return "medium"
}

// Mapper carries the clock and zone used for defaults and history timestamps.
type Mapper struct {
	Location *time.Location
	Now      func() time.Time
}

func New(loc *time.Location) *Mapper {
	if loc == nil {
		loc = time.Local
	}
	return &Mapper{Location: loc, Now: time.Now}
}

func (m *Mapper) now() time.Time {
	return m.Now().In(m.Location)
}

// RowToReport builds the canonical report. History is attached separately.
func (m *Mapper) RowToReport(row models.ReportRow) dto.Report {
	now := m.now()
	return dto.Report{
		ID:          row.ID,
		Title:       row.Title,
		Type:        row.Type,
		Status:      StatusFromDB(row.Status),
		Priority:    PriorityFromDB(row.Priority),
		Location:    deref(row.Location, DefaultLocation),
		Date:        deref(row.Date, now.Format(dto.DateLayout)),
		Time:        deref(row.Time, now.Format(dto.TimeLayout)),
		Officer:     deref(row.Officer, DefaultOfficer),
		Description: deref(row.Description, DefaultDescription),
		Evidence:    StringsFromJSON(row.Evidence),
		Suspects:    StringsFromJSON(row.Suspects),
		Victims:     StringsFromJSON(row.Victims),
		Damage:      deref(row.Damage, DefaultDamage),
		Notes:       deref(row.Notes, ""),
		Updates:     []dto.HistoryEntry{},
		ReporterID:  nonEmpty(row.ReporterID),
	}
}

// ReportToRow serializes a full report for insert. History is not part of
// the row; it lives in report_updates.
func (m *Mapper) ReportToRow(r dto.Report) models.ReportRow {
	location := r.Location
	return models.ReportRow{
		ID:           r.ID,
		Title:        r.Title,
		Type:         r.Type,
		Status:       StatusToDB(r.Status),
		Priority:     PriorityToDB(r.Priority),
		Location:     &location,
		LocationName: &location,
		Date:         ptr(r.Date),
		Time:         ptr(r.Time),
		Officer:      ptr(r.Officer),
		Description:  ptr(r.Description),
		Evidence:     StringsToJSON(r.Evidence),
		Suspects:     StringsToJSON(r.Suspects),
		Victims:      StringsToJSON(r.Victims),
		Damage:       ptr(r.Damage),
		Notes:        ptr(r.Notes),
		ReportType:   DefaultReportType,
		ReporterID:   nonEmpty(r.ReporterID),
	}
}

// PatchToRow emits a column only for keys present in the patch, so absent
// fields are never overwritten.
func (m *Mapper) PatchToRow(p dto.ReportPatch) map[string]interface{} {
	out := make(map[string]interface{})

	putString := func(col string, o dto.Optional[string]) {
		if !o.Set {
			return
		}
		if o.Null {
			out[col] = nil
			return
		}
		out[col] = o.Value
	}

	putString("title", p.Title)
	putString("type", p.Type)
	if p.Status.Set {
		st, _ := dto.ParseStatus(p.Status.Value)
		out["status"] = StatusToDB(st)
	}
	if p.Priority.Set {
		pr, _ := dto.ParsePriority(p.Priority.Value)
		out["priority"] = PriorityToDB(pr)
	}
	if p.Location.Set {
		putString("location", p.Location)
		putString("location_name", p.Location)
	}
	putString("date", p.Date)
	putString("time", p.Time)
	putString("officer", p.Officer)
	putString("description", p.Description)
	if p.Evidence.Set {
		out["evidence"] = StringsToJSON(p.Evidence.Value)
	}
	if p.Suspects.Set {
		out["suspects"] = StringsToJSON(p.Suspects.Value)
	}
	if p.Victims.Set {
		out["victims"] = StringsToJSON(p.Victims.Value)
	}
	putString("damage", p.Damage)
	putString("notes", p.Notes)
	if p.ReporterID.Set {
		if p.ReporterID.Null || p.ReporterID.Value == "" {
			out["reporter_id"] = nil
		} else {
			out["reporter_id"] = p.ReporterID.Value
		}
	}
	return out
}

// UpdateRowToEntry splits the persisted timestamp into date and clock time
// in the mapper's zone.
func (m *Mapper) UpdateRowToEntry(row models.ReportUpdateRow) dto.HistoryEntry {
	note := DefaultUpdateNote
	if row.Comment != nil && *row.Comment != "" {
		note = *row.Comment
	}
	return dto.NewHistoryEntry(row.CreatedAt.In(m.Location), note)
}

// GroupUpdates groups history rows by report id in chronological order.
func (m *Mapper) GroupUpdates(rows []models.ReportUpdateRow) map[string][]dto.HistoryEntry {
	sorted := make([]models.ReportUpdateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	grouped := make(map[string][]dto.HistoryEntry)
	for _, row := range sorted {
		grouped[row.ReportID] = append(grouped[row.ReportID], m.UpdateRowToEntry(row))
	}
	return grouped
}

// EntryTimestamp reverses a history entry into an instant in the mapper's
// zone. Unparseable entries fall back to the current time.
func (m *Mapper) EntryTimestamp(e dto.HistoryEntry) time.Time {
	t, err := time.ParseInLocation(dto.DateLayout+" "+dto.TimeLayout, e.Date+" "+e.Time, m.Location)
	if err != nil {
		return m.now()
	}
	return t
}

// NewUpdateRow builds the persisted form of a history entry.
func (m *Mapper) NewUpdateRow(reportID string, e dto.HistoryEntry) models.ReportUpdateRow {
	note := e.Note
	return models.ReportUpdateRow{
		ReportID:  reportID,
		Comment:   &note,
		CreatedAt: m.EntryTimestamp(e).UTC(),
	}
}

// StringsFromJSON accepts null, a bare string, or an array and always
// returns a sequence without empty entries.
func StringsFromJSON(raw datatypes.JSON) dto.StringList {
	if len(raw) == 0 {
		return dto.StringList{}
	}
	var list dto.StringList
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return dto.StringList{}
	}
	return list
}

func StringsToJSON(list []string) datatypes.JSON {
	b, err := json.Marshal(dto.NewStringList(list...))
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func ptr(s string) *string {
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
