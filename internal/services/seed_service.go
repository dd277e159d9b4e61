package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/fixtures"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/mapper"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore persists seeded user profiles. UpsertUser reports whether
// the account was newly created and sets user.ID either way.
type AccountStore interface {
	UpsertUser(ctx context.Context, user *models.User) (bool, error)
}

type accountSeed struct {
	Email    string
	Password string
	FullName string
	Role     string
}

var residentAccount = accountSeed{
	Email:    "mock.reporter@test.com",
	Password: "ResidentSecure!1",
	FullName: "Mock Reporter",
	Role:     "Resident",
}

var officerAccounts = []accountSeed{
	{Email: "chief@bsafe.local", Password: "ChiefSecure!1", FullName: "Chief Maria Dela Cruz", Role: "Police Chief"},
	{Email: "analyst@bsafe.local", Password: "AnalystSecure!1", FullName: "Analyst Jose Ramirez", Role: "Crime Analyst"},
	{Email: "officer1@bsafe.local", Password: "OfficerSecure!1", FullName: "Officer Lea Santiago", Role: "Police Officer"},
	{Email: "admin@bsafe.local", Password: "AdminSecure!1", FullName: "Administrator Carlo Reyes", Role: "Administrator"},
}

// SeedService writes demo accounts and the mock report dataset to the
// remote store.
type SeedService struct {
	remote     RemoteStore
	accounts   AccountStore
	mapper     *mapper.Mapper
	residentID string
	hashCost   int
}

func NewSeedService(remote RemoteStore, accounts AccountStore, m *mapper.Mapper, cfg *config.Config) *SeedService {
	return &SeedService{
		remote:     remote,
		accounts:   accounts,
		mapper:     m,
		residentID: cfg.SeedResidentID,
		hashCost:   bcrypt.DefaultCost,
	}
}

// SetHashCost lowers the bcrypt cost, for tests.
func (s *SeedService) SetHashCost(cost int) {
	s.hashCost = cost
}

// Seed inserts every mock report owned by the mock resident. Individual
// report failures are counted, not returned.
func (s *SeedService) Seed(ctx context.Context) (*dto.SeedResponse, error) {
	reporterID := s.residentID
	if id, _, ok := s.ensureAccount(ctx, residentAccount); ok {
		reporterID = id
	}

	reports := fixtures.MockDataset(reporterID, s.mapper.Location)
	if len(reports) == 0 {
		return nil, fmt.Errorf("mock dataset is empty")
	}

	var inserted, failed int
	for _, report := range reports {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("seeding aborted: %w", err)
		}
		if _, err := insertWithHistory(ctx, s.remote, s.mapper, report); err != nil {
			slog.Error("failed to seed report", "action", "seed", "report_id", report.ID, "error", err)
			failed++
			continue
		}
		inserted++
	}

	var created, synced int
	for _, account := range officerAccounts {
		_, isNew, ok := s.ensureAccount(ctx, account)
		if !ok {
			continue
		}
		synced++
		if isNew {
			created++
		}
	}

	slog.Info("database seeded", "action", "seed", "inserted", inserted, "failed", failed, "officers_created", created)
	return &dto.SeedResponse{
		Success:               true,
		Message:               fmt.Sprintf("Seeded %d reports (%d failed).", inserted, failed),
		ReportsInserted:       inserted,
		ReportsFailed:         failed,
		OfficersCreated:       created,
		OfficerProfilesSynced: synced,
		ReporterUserID:        reporterID,
	}, nil
}

func (s *SeedService) ensureAccount(ctx context.Context, seed accountSeed) (string, bool, bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), s.hashCost)
	if err != nil {
		slog.Error("failed to hash seed password", "action", "seed", "email", seed.Email, "error", err)
		return "", false, false
	}

	user := &models.User{
		Email:        seed.Email,
		FullName:     seed.FullName,
		Role:         seed.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	created, err := s.accounts.UpsertUser(ctx, user)
	if err != nil {
		slog.Error("failed to sync seed account", "action", "seed", "email", seed.Email, "error", err)
		return "", false, false
	}
	return user.ID.String(), created, true
}
