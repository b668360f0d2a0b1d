package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
)

type TeamService interface {
	AddTeam(ctx context.Context, input AddTeamInput) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	SetArrivalTime(ctx context.Context, id int, arrival *time.Time) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int, confirmed bool) error
}

type AddTeamInput struct {
	TeamNumber  string     `json:"team_number"`
	TeamName    string     `json:"team_name"`
	SchoolName  string     `json:"school_name"`
	Student1    string     `json:"student1"`
	Student2    string     `json:"student2"`
	Category    string     `json:"category"`
	ArrivalTime *time.Time `json:"arrival_time"`
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	publisher live.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewTeamService(teamRepo repositories.TeamRepository, publisher live.Publisher, logger *slog.Logger) TeamService {
	return &teamService{
		teamRepo:  teamRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *teamService) AddTeam(ctx context.Context, input AddTeamInput) (*models.Team, error) {
	team := &models.Team{
		TeamNumber:  strings.TrimSpace(input.TeamNumber),
		TeamName:    strings.TrimSpace(input.TeamName),
		SchoolName:  strings.TrimSpace(input.SchoolName),
		Student1:    strings.TrimSpace(input.Student1),
		Student2:    strings.TrimSpace(input.Student2),
		Category:    models.TeamCategory(strings.ToLower(strings.TrimSpace(input.Category))),
		Status:      models.TeamStatusRegistered,
		ArrivalTime: input.ArrivalTime,
		CreatedAt:   s.now().UTC(),
	}

	v := validator{}
	v.check(team.TeamNumber != "", "team_number", "must be provided")
	v.check(team.TeamName != "", "team_name", "must be provided")
	v.check(team.SchoolName != "", "school_name", "must be provided")
	v.check(team.Student1 != "", "student1", "must be provided")
	v.check(team.Student2 != "", "student2", "must be provided")
	v.check(team.Category.Valid(), "category", "must be one of: jr, sr")
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNumberConflict) {
			return nil, ErrTeamNumberConflict
		}
		return nil, fmt.Errorf("failed to create team %s: %w", team.TeamNumber, err)
	}

	s.logger.InfoContext(ctx, "team registered", slog.Int("team_id", team.ID), slog.String("team_number", team.TeamNumber))
	s.publisher.Publish(live.RoomTeams, live.EventTeamCreated, team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	return team, nil
}

func (s *teamService) SetArrivalTime(ctx context.Context, id int, arrival *time.Time) (*models.Team, error) {
	if err := s.teamRepo.UpdateArrivalTime(ctx, id, arrival); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update arrival time of team %d: %w", id, err)
	}
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(live.RoomTeams, live.EventTeamUpdated, team)
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "team deleted", slog.Int("team_id", id), slog.String("team_number", team.TeamNumber))
	s.publisher.Publish(live.RoomTeams, live.EventTeamDeleted, map[string]interface{}{
		"id":          id,
		"team_number": team.TeamNumber,
	})
	return nil
}
