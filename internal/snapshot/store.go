// Package snapshot holds the in-process copy of all reports and pushes every
// change to live subscribers.
package snapshot

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/fixtures"
)

const (
	DefaultUpdateNote = "Report updated"
	PlaceholderCount  = 15
)

// Store is the authoritative in-memory report list, newest first. It owns
// the hub so that every mutation and its event are published together.
type Store struct {
	mu       sync.Mutex
	reports  []dto.Report
	hub      *Hub
	location *time.Location
	now      func() time.Time
}

func NewStore(hub *Hub, loc *time.Location) *Store {
	if hub == nil {
		hub = NewHub(0)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		reports:  []dto.Report{},
		hub:      hub,
		location: loc,
		now:      time.Now,
	}
}

// SetClock overrides the time source used for history entries.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Hub() *Hub {
	return s.hub
}

func (s *Store) entry(note string) dto.HistoryEntry {
	return dto.NewHistoryEntry(s.now().In(s.location), note)
}

// All returns a copy of the current snapshot.
func (s *Store) All() []dto.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.reports)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *Store) Get(id string) (dto.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.reports[i].Clone(), true
	}
	return dto.Report{}, false
}

// Subscribe registers a live subscriber and hands it an init frame with the
// current snapshot before any later event can reach it.
func (s *Store) Subscribe(write WriteFunc, closeFn CloseFunc) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame, err := EncodeFrame(dto.InitEvent(cloneAll(s.reports)))
	if err != nil {
		return 0, err
	}
	id, err := s.hub.Subscribe(write, closeFn)
	if err != nil {
		return 0, err
	}
	if err := write(frame); err != nil {
		s.hub.Release(id)
		return 0, err
	}
	return id, nil
}

// FilterByReporter returns the reports owned by reporterID.
func FilterByReporter(reports []dto.Report, reporterID string) []dto.Report {
	out := make([]dto.Report, 0, len(reports))
	for _, r := range reports {
		if r.ReporterID != nil && *r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out
}

// Replace overwrites the snapshot unconditionally. No event is published.
func (s *Store) Replace(reports []dto.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = canonicalAll(reports)
}

// SetInitialIfEmpty fills an empty snapshot and publishes an init event.
// It reports whether the snapshot was filled.
func (s *Store) SetInitialIfEmpty(reports []dto.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) > 0 {
		return false
	}
	s.reports = canonicalAll(reports)
	s.hub.Broadcast(dto.InitEvent(cloneAll(s.reports)))
	return true
}

// Upsert prepends an unknown report (created) or replaces a known one in
// place (updated). A non-empty kind overrides the published event type.
func (s *Store) Upsert(report dto.Report, kind dto.EventType) dto.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report = canonical(report)
	if i := s.indexOf(report.ID); i >= 0 {
		s.reports[i] = report
		s.publish(kindOr(kind, dto.EventUpdated), report)
		return report.Clone()
	}

	s.reports = append([]dto.Report{report}, s.reports...)
	s.publish(kindOr(kind, dto.EventCreated), report)
	return report.Clone()
}

// UpdateStatus sets the status and appends one history entry. Unknown ids
// are a no-op without an event.
func (s *Store) UpdateStatus(id string, status dto.Status, note string) (dto.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return dto.Report{}, false
	}
	if note == "" {
		note = fmt.Sprintf("Status changed to %s", status)
	}

	updated := s.reports[i].Clone()
	updated.Status = status
	updated.Updates = append(updated.Updates, s.entry(note))
	s.reports[i] = updated
	s.publish(dto.EventUpdated, updated)
	return updated.Clone(), true
}

// UpdateFields merges the patch and appends exactly one history entry,
// unless the patch carries a non-empty replacement history.
func (s *Store) UpdateFields(id string, patch dto.ReportPatch, note string) (dto.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return dto.Report{}, false
	}
	if note == "" {
		note = DefaultUpdateNote
	}

	updated := s.reports[i].Clone()
	patch.Apply(&updated)
	if patch.ReplacesHistory() {
		updated.Updates = append([]dto.HistoryEntry{}, patch.Updates.Value...)
	} else {
		updated.Updates = append(updated.Updates, s.entry(note))
	}
	s.reports[i] = updated
	s.publish(dto.EventUpdated, updated)
	return updated.Clone(), true
}

// Remove deletes by id and publishes a deleted event carrying only the id.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	next := make([]dto.Report, 0, len(s.reports)-1)
	next = append(next, s.reports[:i]...)
	next = append(next, s.reports[i+1:]...)
	s.reports = next
	s.hub.Broadcast(dto.DeletedEvent(id))
	return true
}

// SeedIfEmpty fills an empty snapshot with placeholder reports so the
// dashboard has something to render before the database answers. It
// returns the first generated report, or false when the store had data.
func (s *Store) SeedIfEmpty() (dto.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) > 0 {
		return dto.Report{}, false
	}
	rng := rand.New(rand.NewSource(s.now().UnixNano()))
	s.reports = fixtures.Placeholder(s.now().In(s.location), rng, PlaceholderCount)
	if len(s.reports) == 0 {
		return dto.Report{}, false
	}
	return s.reports[0].Clone(), true
}

func (s *Store) publish(kind dto.EventType, report dto.Report) {
	s.hub.Broadcast(dto.ReportEvent(kind, report.Clone()))
}

func (s *Store) indexOf(id string) int {
	for i := range s.reports {
		if s.reports[i].ID == id {
			return i
		}
	}
	return -1
}

func kindOr(kind, fallback dto.EventType) dto.EventType {
	if kind == "" {
		return fallback
	}
	return kind
}

func cloneAll(reports []dto.Report) []dto.Report {
	out := make([]dto.Report, len(reports))
	for i, r := range reports {
		out[i] = r.Clone()
	}
	return out
}

// canonical copies r with status and priority forced into their enums.
func canonical(r dto.Report) dto.Report {
	out := r.Clone()
	out.Status, _ = dto.ParseStatus(string(r.Status))
	out.Priority, _ = dto.ParsePriority(string(r.Priority))
	return out
}

func canonicalAll(reports []dto.Report) []dto.Report {
	out := make([]dto.Report, len(reports))
	for i, r := range reports {
		out[i] = canonical(r)
	}
	return out
}
