package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	"github.com/Dosada05/bridge-judging/storage"
	"golang.org/x/sync/errgroup"
)

type ReportService interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
	Rows(ctx context.Context) ([]models.ReportRow, error)
	// Export renders the results workbook.
	Export(ctx context.Context) (*bytes.Buffer, error)
	// Archive uploads a fresh export to object storage.
	Archive(ctx context.Context) (*models.ExportArchive, error)
}

type reportService struct {
	teamRepo      repositories.TeamRepository
	teamScoreRepo repositories.TeamScoreRepository
	uploader      storage.FileUploader
	location      *time.Location
	logger        *slog.Logger
	now           func() time.Time
}

// NewReportService creates the admin reporting service. uploader may be nil,
// in which case Archive fails with ErrArchiveNotConfigured.
func NewReportService(
	teamRepo repositories.TeamRepository,
	teamScoreRepo repositories.TeamScoreRepository,
	uploader storage.FileUploader,
	location *time.Location,
	logger *slog.Logger,
) ReportService {
	if location == nil {
		location = time.UTC
	}
	return &reportService{
		teamRepo:      teamRepo,
		teamScoreRepo: teamScoreRepo,
		uploader:      uploader,
		location:      location,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *reportService) Stats(ctx context.Context) (models.DashboardStats, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to list teams: %w", err)
	}
	return ComputeStats(teams), nil
}

func ComputeStats(teams []models.Team) models.DashboardStats {
	stats := models.DashboardStats{TotalTeams: len(teams)}
	for _, t := range teams {
		switch t.Category {
		case models.CategoryJunior:
			stats.JuniorTeams++
		case models.CategorySenior:
			stats.SeniorTeams++
		}
		switch t.Status {
		case models.TeamStatusRegistered:
			stats.RegisteredTeams++
		case models.TeamStatusWaiting:
			stats.WaitingTeams++
		case models.TeamStatusCheckedIn:
			stats.CheckedInTeams++
		case models.TeamStatusCompleted:
			stats.CompletedTeams++
		}
	}
	return stats
}

func (s *reportService) Rows(ctx context.Context) ([]models.ReportRow, error) {
	var (
		teams  []models.Team
		scores []models.TeamScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if teams, err = s.teamRepo.List(gctx); err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if scores, err = s.teamScoreRepo.List(gctx); err != nil {
			return fmt.Errorf("failed to list team scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return JoinReportRows(teams, scores), nil
}

// JoinReportRows pairs every team with the first score entry carrying its
// team number.
func JoinReportRows(teams []models.Team, scores []models.TeamScore) []models.ReportRow {
	byNumber := make(map[string]*models.TeamScore, len(scores))
	for i := range scores {
		if _, seen := byNumber[scores[i].TeamNumber]; !seen {
			byNumber[scores[i].TeamNumber] = &scores[i]
		}
	}
	rows := make([]models.ReportRow, len(teams))
	for i, t := range teams {
		rows[i] = models.ReportRow{Team: t, Score: byNumber[t.TeamNumber]}
	}
	return rows
}

func (s *reportService) Export(ctx context.Context) (*bytes.Buffer, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	buf, err := RenderExport(rows, s.location)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}
	return buf, nil
}

func (s *reportService) Archive(ctx context.Context) (*models.ExportArchive, error) {
	if s.uploader == nil {
		return nil, ErrArchiveNotConfigured
	}
	buf, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	key := fmt.Sprintf("exports/%s.xlsx", createdAt.Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, ExportContentType, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}

	s.logger.InfoContext(ctx, "export archived", slog.String("key", result.Key))
	return &models.ExportArchive{
		Key:       result.Key,
		URL:       result.Location,
		CreatedAt: createdAt,
	}, nil
}
