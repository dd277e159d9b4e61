package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Status string

const (
	StatusOpen               Status = "Open"
	StatusUnderInvestigation Status = "Under Investigation"
	StatusSolved             Status = "Solved"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var (
	Statuses   = []Status{StatusOpen, StatusUnderInvestigation, StatusSolved}
	Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
)

// ParseStatus matches a domain status label case-insensitively, ignoring
// spaces. Unknown labels yield Open and false.
func ParseStatus(s string) (Status, bool) {
	key := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for _, st := range Statuses {
		if strings.EqualFold(strings.ReplaceAll(string(st), " ", ""), key) {
			return st, true
		}
	}
	return StatusOpen, false
}

// ParsePriority matches a domain priority label case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, true
		}
	}
	return PriorityMedium, false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// HistoryEntry is one line of a report's update log.
type HistoryEntry struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Note string `json:"note"`
}

func NewHistoryEntry(at time.Time, note string) HistoryEntry {
	return HistoryEntry{
		Date: at.Format(DateLayout),
		Time: at.Format(TimeLayout),
		Note: note,
	}
}

// StringList decodes from null, a bare string or an array of strings, and
// always encodes as an array. Empty entries are dropped on decode.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = NewStringList(s)
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case nil:
		case string:
			if v != "" {
				out = append(out, v)
			}
		default:
			b, _ := json.Marshal(v)
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// NewStringList keeps the non-empty values in order.
func NewStringList(values ...string) StringList {
	out := make(StringList, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Report is the canonical incident record served to clients.
type Report struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        string         `json:"type"`
	Status      Status         `json:"status"`
	Priority    Priority       `json:"priority"`
	Location    string         `json:"location"`
	Date        string         `json:"date"`
	Time        string         `json:"time"`
	Officer     string         `json:"officer"`
	Description string         `json:"description"`
	Evidence    StringList     `json:"evidence"`
	Suspects    StringList     `json:"suspects"`
	Victims     StringList     `json:"victims"`
	Damage      string         `json:"damage"`
	Notes       string         `json:"notes"`
	Updates     []HistoryEntry `json:"updates"`
	ReporterID  *string        `json:"reporterId"`
}

// Clone returns a deep copy so snapshot state is never aliased.
func (r Report) Clone() Report {
	out := r
	out.Evidence = append(StringList{}, r.Evidence...)
	out.Suspects = append(StringList{}, r.Suspects...)
	out.Victims = append(StringList{}, r.Victims...)
	out.Updates = append([]HistoryEntry{}, r.Updates...)
	if r.ReporterID != nil {
		id := *r.ReporterID
		out.ReporterID = &id
	}
	return out
}

// Optional tracks whether a JSON key was present, and whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ReportPatch is a partial report update. Only keys present in the request
// body are Set; absent keys never reach the store.
type ReportPatch struct {
	Title       Optional[string]         `json:"title"`
	Type        Optional[string]         `json:"type"`
	Status      Optional[string]         `json:"status"`
	Priority    Optional[string]         `json:"priority"`
	Location    Optional[string]         `json:"location"`
	Date        Optional[string]         `json:"date"`
	Time        Optional[string]         `json:"time"`
	Officer     Optional[string]         `json:"officer"`
	Description Optional[string]         `json:"description"`
	Evidence    Optional[StringList]     `json:"evidence"`
	Suspects    Optional[StringList]     `json:"suspects"`
	Victims     Optional[StringList]     `json:"victims"`
	Damage      Optional[string]         `json:"damage"`
	Notes       Optional[string]         `json:"notes"`
	Updates     Optional[[]HistoryEntry] `json:"updates"`
	ReporterID  Optional[string]         `json:"reporterId"`
}

// ReplacesHistory reports whether the patch carries a full replacement
// history instead of asking for one appended entry.
func (p ReportPatch) ReplacesHistory() bool {
	return p.Updates.Set && len(p.Updates.Value) > 0
}

// Apply shallow-merges the present fields onto r. History is left alone.
func (p ReportPatch) Apply(r *Report) {
	setString := func(o Optional[string], dst *string) {
		if o.Set {
			*dst = o.Value
		}
	}
	setString(p.Title, &r.Title)
	setString(p.Type, &r.Type)
	setString(p.Location, &r.Location)
	setString(p.Date, &r.Date)
	setString(p.Time, &r.Time)
	setString(p.Officer, &r.Officer)
	setString(p.Description, &r.Description)
	setString(p.Damage, &r.Damage)
	setString(p.Notes, &r.Notes)

	if p.Status.Set {
		r.Status, _ = ParseStatus(p.Status.Value)
	}
	if p.Priority.Set {
		r.Priority, _ = ParsePriority(p.Priority.Value)
	}
	if p.Evidence.Set {
		r.Evidence = NewStringList(p.Evidence.Value...)
	}
	if p.Suspects.Set {
		r.Suspects = NewStringList(p.Suspects.Value...)
	}
	if p.Victims.Set {
		r.Victims = NewStringList(p.Victims.Value...)
	}
	if p.ReporterID.Set {
		if p.ReporterID.Null || p.ReporterID.Value == "" {
			r.ReporterID = nil
		} else {
			id := p.ReporterID.Value
			r.ReporterID = &id
		}
	}
}

// UpdateReportRequest is the PUT body: patch fields plus an optional history note.
type UpdateReportRequest struct {
	ReportPatch
	UpdateNote *string `json:"updateNote"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

// ResidentReporter is the contact block a resident attaches to a submission.
type ResidentReporter struct {
	Name         string `json:"name,omitempty"`
	Address      string `json:"address,omitempty"`
	Contact      string `json:"contact,omitempty"`
	TypeOfReport string `json:"typeOfReport,omitempty"`
}

type MediaUpload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	DataURL string `json:"dataUrl"`
	Size    *int64 `json:"size,omitempty"`
}

type CreateReportRequest struct {
	ID          string            `json:"id"`
	Title       *string           `json:"title"`
	Type        *string           `json:"type"`
	Priority    *string           `json:"priority"`
	Location    *string           `json:"location"`
	Officer     *string           `json:"officer"`
	Description *string           `json:"description"`
	Evidence    StringList        `json:"evidence"`
	Suspects    StringList        `json:"suspects"`
	Victims     StringList        `json:"victims"`
	Damage      *string           `json:"damage"`
	Notes       *string           `json:"notes"`
	ReporterID  string            `json:"reporterId"`
	Reporter    *ResidentReporter `json:"reporter,omitempty"`
	Attachments []MediaUpload     `json:"attachments,omitempty"`
}

type ReportResponse struct {
	Report Report `json:"report"`
}

type ReportListResponse struct {
	Reports []Report `json:"reports"`
	Source  string   `json:"source"`
	Error   string   `json:"error,omitempty"`
}

type DeleteReportResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type SeedResponse struct {
	Success               bool   `json:"success"`
	Message               string `json:"message"`
	ReportsInserted       int    `json:"reportsInserted"`
	ReportsFailed         int    `json:"reportsFailed"`
	OfficersCreated       int    `json:"officersCreated"`
	OfficerProfilesSynced int    `json:"officerProfilesSynced"`
	ReporterUserID        string `json:"reporterUserId"`
}
