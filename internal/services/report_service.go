package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/evidence"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/mapper"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/snapshot"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidStatus  = errors.New("invalid report status")
	ErrReportConflict = errors.New("report id already exists")
)

const (
	SourceDatabase = "database"
	SourceMemory   = "memory"

	defaultTitle       = "Untitled Report"
	defaultType        = "Incident"
	defaultCreateNotes = "Submitted via portal."
	submittedNote      = "Report submitted"
)

// RemoteStore is the persistence capability the report flows depend on.
// A nil row with a nil error means the id is unknown.
type RemoteStore interface {
	ListReports(ctx context.Context) ([]models.ReportRow, error)
	ListUpdates(ctx context.Context, reportIDs []string) ([]models.ReportUpdateRow, error)
	GetReport(ctx context.Context, id string) (*models.ReportRow, error)
	InsertReport(ctx context.Context, row *models.ReportRow) error
	InsertUpdate(ctx context.Context, row *models.ReportUpdateRow) error
	UpdateReport(ctx context.Context, id string, fields map[string]interface{}) (*models.ReportRow, error)
	DeleteReport(ctx context.Context, id string) (bool, error)
	ReplaceUpdates(ctx context.Context, reportID string, rows []models.ReportUpdateRow) error
}

// DatabaseSeeder fills an empty remote store with the mock dataset.
type DatabaseSeeder interface {
	Seed(ctx context.Context) (*dto.SeedResponse, error)
}

// Outcome tells the caller where a mutation landed. RemoteErr is set when
// the remote store failed and the snapshot absorbed the change.
type Outcome struct {
	Source    string
	RemoteErr error
}

type MutationResult struct {
	Report dto.Report
	Outcome
}

// ReportDetails is a report with its evidence and notes decoded.
type ReportDetails struct {
	Report   dto.Report                `json:"report"`
	Media    []evidence.Attachment     `json:"media"`
	Text     []string                  `json:"text"`
	Metadata evidence.ResidentMetadata `json:"metadata"`
}

type ReportService struct {
	remote          RemoteStore
	store           *snapshot.Store
	mapper          *mapper.Mapper
	seeder          DatabaseSeeder
	seedOnEmpty     bool
	placeholderSeed bool
	seeded          atomic.Bool
}

func NewReportService(remote RemoteStore, store *snapshot.Store, m *mapper.Mapper, cfg *config.Config) *ReportService {
	return &ReportService{
		remote:          remote,
		store:           store,
		mapper:          m,
		seedOnEmpty:     cfg.SeedOnEmpty,
		placeholderSeed: cfg.PlaceholderSeed,
	}
}

// SetSeeder enables the seed-on-empty path of Load.
func (s *ReportService) SetSeeder(seeder DatabaseSeeder) {
	s.seeder = seeder
}

func (s *ReportService) Store() *snapshot.Store {
	return s.store
}

func (s *ReportService) now() time.Time {
	return s.mapper.Now().In(s.mapper.Location)
}

// Load reads the remote store and mirrors it into the snapshot. When the
// remote store fails, the snapshot is served instead and the error is
// returned alongside it.
func (s *ReportService) Load(ctx context.Context) ([]dto.Report, string, error) {
	reports, err := s.fetchRemote(ctx)
	if err == nil && len(reports) == 0 && s.seedOnEmpty && s.seeder != nil && s.seeded.CompareAndSwap(false, true) {
		if res, seedErr := s.seeder.Seed(ctx); seedErr != nil {
			slog.Error("seeding empty database failed", "action", "seed", "error", seedErr)
		} else {
			slog.Info("seeded empty database", "action", "seed", "inserted", res.ReportsInserted, "failed", res.ReportsFailed)
		}
		reports, err = s.fetchRemote(ctx)
	}

	if err != nil {
		slog.Error("remote report fetch failed, serving snapshot", "action", "load", "source", SourceMemory, "error", err)
		if s.placeholderSeed {
			if first, ok := s.store.SeedIfEmpty(); ok {
				slog.Warn("snapshot filled with placeholder reports", "action", "load", "report_id", first.ID)
			}
		}
		return s.store.All(), SourceMemory, err
	}

	s.store.Replace(reports)
	return reports, SourceDatabase, nil
}

// EnsureSnapshot hydrates the snapshot before a stream subscriber receives
// its init frame. An empty result still gets placeholders when enabled.
func (s *ReportService) EnsureSnapshot(ctx context.Context) {
	_, _, _ = s.Load(ctx)
	if s.placeholderSeed && s.store.Len() == 0 {
		s.store.SeedIfEmpty()
	}
}

func (s *ReportService) fetchRemote(ctx context.Context) ([]dto.Report, error) {
	rows, err := s.remote.ListReports(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var history map[string][]dto.HistoryEntry
	updates, err := s.remote.ListUpdates(ctx, ids)
	if err != nil {
		slog.Error("failed to load report history, serving reports without it", "action", "load", "error", err)
	} else {
		history = s.mapper.GroupUpdates(updates)
	}

	reports := make([]dto.Report, len(rows))
	for i, row := range rows {
		reports[i] = s.mapper.RowToReport(row)
		if h, ok := history[row.ID]; ok {
			reports[i].Updates = h
		}
	}
	return reports, nil
}

// Create builds a new report from the submission, persists it when possible
// and publishes it exactly once.
func (s *ReportService) Create(ctx context.Context, req dto.CreateReportRequest) (MutationResult, error) {
	report, err := s.buildReport(req)
	if err != nil {
		return MutationResult{}, err
	}
	if _, exists := s.store.Get(report.ID); exists {
		return MutationResult{}, fmt.Errorf("%w: %s", ErrReportConflict, report.ID)
	}

	result := MutationResult{Outcome: Outcome{Source: SourceDatabase}}
	persisted, err := insertWithHistory(ctx, s.remote, s.mapper, report)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return MutationResult{}, fmt.Errorf("%w: %s", ErrReportConflict, report.ID)
	}
	if err != nil {
		slog.Error("failed to persist report, keeping it in memory", "action", "create", "report_id", report.ID, "error", err)
		persisted = report
		result.Source = SourceMemory
		result.RemoteErr = err
	}

	result.Report = s.store.Upsert(persisted, dto.EventCreated)
	return result, nil
}

func (s *ReportService) buildReport(req dto.CreateReportRequest) (dto.Report, error) {
	now := s.now()

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = dto.NewReportID(now)
	}
	priority, _ := dto.ParsePriority(stringOr(req.Priority, ""))

	report := dto.Report{
		ID:          id,
		Title:       stringOr(req.Title, defaultTitle),
		Type:        stringOr(req.Type, defaultType),
		Status:      dto.StatusOpen,
		Priority:    priority,
		Location:    stringOr(req.Location, mapper.DefaultLocation),
		Date:        now.Format(dto.DateLayout),
		Time:        now.Format(dto.TimeLayout),
		Officer:     stringOr(req.Officer, mapper.DefaultOfficer),
		Description: stringOr(req.Description, mapper.DefaultDescription),
		Evidence:    dto.NewStringList(req.Evidence...),
		Suspects:    dto.NewStringList(req.Suspects...),
		Victims:     dto.NewStringList(req.Victims...),
		Damage:      stringOr(req.Damage, mapper.DefaultDamage),
		Notes:       stringOr(req.Notes, defaultCreateNotes),
		Updates:     []dto.HistoryEntry{dto.NewHistoryEntry(now, submittedNote)},
	}
	if rid := strings.TrimSpace(req.ReporterID); rid != "" {
		report.ReporterID = &rid
	}

	if req.Reporter == nil && len(req.Attachments) == 0 {
		return report, nil
	}

	// Resident submissions carry media as serialized evidence and the
	// contact block as structured notes.
	summaries := make([]evidence.AttachmentSummary, 0, len(req.Attachments))
	for _, upload := range req.Attachments {
		if upload.DataURL == "" {
			continue
		}
		payload := evidence.NewMediaPayload(upload)
		encoded, err := evidence.SerializeMedia(payload)
		if err != nil {
			return dto.Report{}, fmt.Errorf("failed to encode attachment: %w", err)
		}
		report.Evidence = append(report.Evidence, encoded)
		summaries = append(summaries, payload.Summary())
	}

	if req.Type == nil && req.Reporter != nil && req.Reporter.TypeOfReport != "" {
		report.Type = req.Reporter.TypeOfReport
	}
	notes, err := evidence.BuildResidentMetadata(req.Reporter, req.Notes, summaries, now)
	if err != nil {
		return dto.Report{}, fmt.Errorf("failed to encode resident metadata: %w", err)
	}
	report.Notes = notes
	return report, nil
}

// Update merges a partial update. The remote store wins when it answers;
// otherwise the snapshot is patched directly.
func (s *ReportService) Update(ctx context.Context, id string, patch dto.ReportPatch, note *string) (MutationResult, error) {
	noteText := stringOr(note, snapshot.DefaultUpdateNote)
	entry := dto.NewHistoryEntry(s.now(), noteText)

	existing, inStore := s.store.Get(id)
	var history []dto.HistoryEntry
	switch {
	case patch.ReplacesHistory():
		history = append([]dto.HistoryEntry{}, patch.Updates.Value...)
	case inStore:
		history = append(existing.Updates, entry)
	default:
		history = []dto.HistoryEntry{entry}
	}

	row, err := s.remote.UpdateReport(ctx, id, s.mapper.PatchToRow(patch))
	if err == nil && row != nil {
		if patch.ReplacesHistory() {
			s.replaceHistory(ctx, id, history)
		} else {
			s.persistEntry(ctx, id, entry)
		}
		report := s.mapper.RowToReport(*row)
		report.Updates = history
		return MutationResult{
			Report:  s.store.Upsert(report, dto.EventUpdated),
			Outcome: Outcome{Source: SourceDatabase},
		}, nil
	}
	if err != nil {
		slog.Error("remote update failed, patching snapshot", "action", "update", "report_id", id, "error", err)
	}

	updated, ok := s.store.UpdateFields(id, patch, noteText)
	if !ok {
		return MutationResult{}, ErrReportNotFound
	}
	return MutationResult{Report: updated, Outcome: Outcome{Source: SourceMemory, RemoteErr: err}}, nil
}

// UpdateStatus moves a report to a new status and records one history entry.
func (s *ReportService) UpdateStatus(ctx context.Context, id, rawStatus string, note *string) (MutationResult, error) {
	status, ok := dto.ParseStatus(rawStatus)
	if !ok {
		return MutationResult{}, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}
	noteText := stringOr(note, fmt.Sprintf("Status changed to %s", status))

	row, err := s.remote.UpdateReport(ctx, id, map[string]interface{}{"status": mapper.StatusToDB(status)})
	if err != nil {
		slog.Error("remote status update failed, patching snapshot", "action", "update_status", "report_id", id, "error", err)
	}
	source := SourceMemory
	if row != nil {
		source = SourceDatabase
		s.persistEntry(ctx, id, dto.NewHistoryEntry(s.now(), noteText))
	}

	if updated, found := s.store.UpdateStatus(id, status, noteText); found {
		return MutationResult{Report: updated, Outcome: Outcome{Source: source, RemoteErr: err}}, nil
	}
	if row == nil {
		return MutationResult{}, ErrReportNotFound
	}

	// Known remotely but not yet mirrored: rebuild it with its full history.
	report := s.mapper.RowToReport(*row)
	if updates, herr := s.remote.ListUpdates(ctx, []string{id}); herr == nil {
		report.Updates = s.mapper.GroupUpdates(updates)[id]
	}
	if len(report.Updates) == 0 {
		report.Updates = []dto.HistoryEntry{dto.NewHistoryEntry(s.now(), noteText)}
	}
	return MutationResult{
		Report:  s.store.Upsert(report, dto.EventUpdated),
		Outcome: Outcome{Source: SourceDatabase},
	}, nil
}

// Delete removes the report everywhere. It fails only when neither the
// remote store nor the snapshot knew the id.
func (s *ReportService) Delete(ctx context.Context, id string) (Outcome, error) {
	out := Outcome{Source: SourceDatabase}
	removedRemote, err := s.remote.DeleteReport(ctx, id)
	if err != nil {
		slog.Error("remote delete failed", "action", "delete", "report_id", id, "error", err)
		out.Source = SourceMemory
		out.RemoteErr = err
	}

	removedLocal := s.store.Remove(id)
	if !removedRemote && !removedLocal {
		return out, ErrReportNotFound
	}
	if removedRemote && !removedLocal {
		s.store.Hub().Broadcast(dto.DeletedEvent(id))
	}
	return out, nil
}

// Details decodes evidence and resident metadata for one report, reading
// through to the remote store when the snapshot does not have it.
func (s *ReportService) Details(ctx context.Context, id string) (*ReportDetails, error) {
	report, ok := s.store.Get(id)
	if !ok {
		row, err := s.remote.GetReport(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load report details: %w", err)
		}
		if row == nil {
			return nil, ErrReportNotFound
		}
		report = s.mapper.RowToReport(*row)
		if updates, herr := s.remote.ListUpdates(ctx, []string{id}); herr == nil {
			if h, found := s.mapper.GroupUpdates(updates)[id]; found {
				report.Updates = h
			}
		}
	}

	buckets := evidence.Parse(report.Evidence)
	return &ReportDetails{
		Report:   report,
		Media:    buckets.Media,
		Text:     buckets.Text,
		Metadata: evidence.ParseResidentMetadata(report.Notes),
	}, nil
}

func (s *ReportService) persistEntry(ctx context.Context, id string, entry dto.HistoryEntry) {
	row := s.mapper.NewUpdateRow(id, entry)
	if err := s.remote.InsertUpdate(ctx, &row); err != nil {
		slog.Error("failed to persist history entry", "action", "history", "report_id", id, "error", err)
	}
}

func (s *ReportService) replaceHistory(ctx context.Context, id string, history []dto.HistoryEntry) {
	rows := make([]models.ReportUpdateRow, len(history))
	for i, e := range history {
		rows[i] = s.mapper.NewUpdateRow(id, e)
	}
	if err := s.remote.ReplaceUpdates(ctx, id, rows); err != nil {
		slog.Error("failed to replace report history", "action", "history", "report_id", id, "error", err)
	}
}

// insertWithHistory writes the report row and then its first history entry.
// The history write is best-effort; a failure there keeps the report.
func insertWithHistory(ctx context.Context, remote RemoteStore, m *mapper.Mapper, report dto.Report) (dto.Report, error) {
	row := m.ReportToRow(report)
	if err := remote.InsertReport(ctx, &row); err != nil {
		return dto.Report{}, err
	}

	if len(report.Updates) > 0 {
		update := m.NewUpdateRow(report.ID, report.Updates[0])
		if err := remote.InsertUpdate(ctx, &update); err != nil {
			slog.Error("failed to persist initial history entry", "action", "create", "report_id", report.ID, "error", err)
		}
	}

	persisted := m.RowToReport(row)
	persisted.Updates = append([]dto.HistoryEntry{}, report.Updates...)
	return persisted, nil
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
