package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/metrics"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
)

type ScoringService interface {
	// FindTeam looks up a team for judge. It fails with ErrAlreadyScored if
	// the judge has a score on record; the check is advisory only.
	FindTeam(ctx context.Context, teamNumber string, judge models.User) (*models.Team, error)
	SubmitScore(ctx context.Context, input SubmitScoreInput, judge models.User) (*models.JudgeScore, error)
	ListScores(ctx context.Context) ([]models.JudgeScore, error)
}

// SubmitScoreInput holds the rubric form. Omitted criteria default to
// models.RubricDefault.
type SubmitScoreInput struct {
	TeamNumber string `json:"-"`
	Criteria1  *int   `json:"criteria1"`
	Criteria2  *int   `json:"criteria2"`
	Criteria3  *int   `json:"criteria3"`
	Criteria4  *int   `json:"criteria4"`
	Criteria5  *int   `json:"criteria5"`
	Comments   string `json:"comments"`
}

func (in SubmitScoreInput) rubric() (models.Rubric, error) {
	r := models.DefaultRubric()
	fields := []struct {
		name string
		src  *int
		dst  *int
	}{
		{"criteria1", in.Criteria1, &r.Criteria1},
		{"criteria2", in.Criteria2, &r.Criteria2},
		{"criteria3", in.Criteria3, &r.Criteria3},
		{"criteria4", in.Criteria4, &r.Criteria4},
		{"criteria5", in.Criteria5, &r.Criteria5},
	}

	v := validator{}
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v.check(*f.src >= models.RubricMin && *f.src <= models.RubricMax, f.name,
			fmt.Sprintf("must be between %d and %d", models.RubricMin, models.RubricMax))
		*f.dst = *f.src
	}
	return r, v.err()
}

type scoringService struct {
	teamRepo  repositories.TeamRepository
	scoreRepo repositories.JudgeScoreRepository
	publisher live.Publisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewScoringService(
	teamRepo repositories.TeamRepository,
	scoreRepo repositories.JudgeScoreRepository,
	publisher live.Publisher,
	rec *metrics.Recorder,
	logger *slog.Logger,
) ScoringService {
	return &scoringService{
		teamRepo:  teamRepo,
		scoreRepo: scoreRepo,
		publisher: publisher,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *scoringService) lookup(ctx context.Context, teamNumber string) (*models.Team, error) {
	team, err := s.teamRepo.GetByNumber(ctx, strings.TrimSpace(teamNumber))
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team %s: %w", teamNumber, err)
	}
	return team, nil
}

func (s *scoringService) FindTeam(ctx context.Context, teamNumber string, judge models.User) (*models.Team, error) {
	team, err := s.lookup(ctx, teamNumber)
	if err != nil {
		return nil, err
	}
	scored, err := s.scoreRepo.ExistsForTeamAndJudge(ctx, team.TeamNumber, judge.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous score: %w", err)
	}
	if scored {
		return nil, ErrAlreadyScored
	}
	return team, nil
}

func (s *scoringService) SubmitScore(ctx context.Context, input SubmitScoreInput, judge models.User) (score *models.JudgeScore, err error) {
	defer func() {
		s.metrics.RecordScoreSubmission(scoreOutcome(err))
	}()

	rubric, err := input.rubric()
	if err != nil {
		return nil, err
	}
	team, err := s.lookup(ctx, input.TeamNumber)
	if err != nil {
		return nil, err
	}

	score = &models.JudgeScore{
		TeamNumber: team.TeamNumber,
		JudgeID:    judge.UID,
		JudgeName:  judge.Name,
		Scores:     rubric,
		Comments:   strings.TrimSpace(input.Comments),
		Timestamp:  s.now().UTC(),
	}
	if err = s.scoreRepo.CreateAndCompleteTeam(ctx, score, team.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrJudgeScoreConflict):
			return nil, ErrAlreadyScored
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		default:
			return nil, fmt.Errorf("failed to save score for team %s: %w", team.TeamNumber, err)
		}
	}

	s.logger.InfoContext(ctx, "score submitted",
		slog.String("team_number", team.TeamNumber),
		slog.String("judge_id", judge.UID),
	)
	team.Status = models.TeamStatusCompleted
	s.publisher.Publish(live.RoomTeams, live.EventTeamUpdated, team)

	return score, nil
}

func (s *scoringService) ListScores(ctx context.Context) ([]models.JudgeScore, error) {
	scores, err := s.scoreRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list judge scores: %w", err)
	}
	if scores == nil {
		return []models.JudgeScore{}, nil
	}
	return scores, nil
}

func scoreOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyScored):
		return "duplicate"
	case errors.Is(err, ErrTeamNotFound):
		return "not_found"
	case errors.Is(err, ErrValidationFailed):
		return "invalid"
	default:
		return "error"
	}
}
