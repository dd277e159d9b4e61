package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/mapper"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/snapshot"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errRemoteDown = errors.New("connection refused")

// fakeRemote is an in-memory RemoteStore. Setting down makes every call fail.
type fakeRemote struct {
	mu          sync.Mutex
	down        bool
	historyDown bool
	reports     map[string]models.ReportRow
	order       []string
	updates     []models.ReportUpdateRow
	users       map[string]models.User
	listCalls   int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		reports: make(map[string]models.ReportRow),
		users:   make(map[string]models.User),
	}
}

func (f *fakeRemote) ListReports(ctx context.Context) ([]models.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.down {
		return nil, errRemoteDown
	}
	out := make([]models.ReportRow, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		if row, ok := f.reports[f.order[i]]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRemote) ListUpdates(ctx context.Context, ids []string) ([]models.ReportUpdateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down || f.historyDown {
		return nil, errRemoteDown
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.ReportUpdateRow
	for _, u := range f.updates {
		if want[u.ReportID] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRemote) GetReport(ctx context.Context, id string) (*models.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	row, ok := f.reports[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *fakeRemote) InsertReport(ctx context.Context, row *models.ReportRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	if _, exists := f.reports[row.ID]; exists {
		return fmt.Errorf("failed to insert report: %w", gorm.ErrDuplicatedKey)
	}
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	f.reports[row.ID] = *row
	f.order = append(f.order, row.ID)
	return nil
}

func (f *fakeRemote) InsertUpdate(ctx context.Context, row *models.ReportUpdateRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	row.ID = uuid.New()
	f.updates = append(f.updates, *row)
	return nil
}

func (f *fakeRemote) UpdateReport(ctx context.Context, id string, fields map[string]interface{}) (*models.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	row, ok := f.reports[id]
	if !ok {
		return nil, nil
	}
	for col, v := range fields {
		switch col {
		case "title":
			row.Title, _ = v.(string)
		case "status":
			row.Status, _ = v.(string)
		case "officer":
			if s, ok := v.(string); ok {
				row.Officer = &s
			} else {
				row.Officer = nil
			}
		case "priority":
			row.Priority, _ = v.(string)
		}
	}
	f.reports[id] = row
	return &row, nil
}

func (f *fakeRemote) DeleteReport(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errRemoteDown
	}
	if _, ok := f.reports[id]; !ok {
		return false, nil
	}
	delete(f.reports, id)
	return true, nil
}

func (f *fakeRemote) ReplaceUpdates(ctx context.Context, reportID string, rows []models.ReportUpdateRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errRemoteDown
	}
	kept := f.updates[:0:0]
	for _, u := range f.updates {
		if u.ReportID != reportID {
			kept = append(kept, u)
		}
	}
	for _, row := range rows {
		row.ReportID = reportID
		row.ID = uuid.New()
		kept = append(kept, row)
	}
	f.updates = kept
	return nil
}

func (f *fakeRemote) UpsertUser(ctx context.Context, user *models.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errRemoteDown
	}
	if existing, ok := f.users[user.Email]; ok {
		user.ID = existing.ID
		f.users[user.Email] = *user
		return false, nil
	}
	user.ID = uuid.New()
	f.users[user.Email] = *user
	return true, nil
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRemote) clearReports() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = make(map[string]models.ReportRow)
	f.order = nil
	f.updates = nil
}

var serviceNow = time.Date(2024, time.June, 3, 9, 15, 0, 0, time.UTC)

type harness struct {
	remote  *fakeRemote
	store   *snapshot.Store
	service *ReportService
	seeder  *SeedService
	cfg     *config.Config
}

func newHarness(cfg *config.Config) *harness {
	if cfg == nil {
		cfg = &config.Config{}
	}
	remote := newFakeRemote()
	m := mapper.New(time.UTC)
	m.Now = func() time.Time { return serviceNow }
	store := snapshot.NewStore(snapshot.NewHub(0), time.UTC)
	store.SetClock(m.Now)

	svc := NewReportService(remote, store, m, cfg)
	seeder := NewSeedService(remote, remote, m, cfg)
	seeder.SetHashCost(4)
	svc.SetSeeder(seeder)

	return &harness{remote: remote, store: store, service: svc, seeder: seeder, cfg: cfg}
}
