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

const (
	MessageCheckedIn     = "Team checked in successfully!"
	MessageSentToWaiting = "Team sent to waiting area!"
)

type CheckInService interface {
	// RequestStatus moves the team with teamNumber to target (waiting or
	// checked-in) if the transition guards allow it.
	RequestStatus(ctx context.Context, teamNumber string, target models.TeamStatus) (*CheckInResult, error)
	Board(ctx context.Context) ([]CheckInBoardEntry, error)
}

type CheckInResult struct {
	Team    *models.Team `json:"team"`
	Message string       `json:"message"`
}

// CheckInBoardEntry is one row of the check-in desk.
type CheckInBoardEntry struct {
	models.Team
	Actions []models.TeamStatus `json:"actions"`
}

// AvailableActions lists the check-in targets offered for a team in status.
func AvailableActions(status models.TeamStatus) []models.TeamStatus {
	switch status {
	case models.TeamStatusRegistered, "":
		return []models.TeamStatus{models.TeamStatusCheckedIn, models.TeamStatusWaiting}
	case models.TeamStatusWaiting:
		return []models.TeamStatus{models.TeamStatusCheckedIn}
	default:
		return []models.TeamStatus{}
	}
}

// checkTransition returns nil if team may move to target at now.
func checkTransition(team *models.Team, target models.TeamStatus, now time.Time) error {
	switch team.Status {
	case models.TeamStatusCheckedIn:
		return ErrAlreadyCheckedIn
	case models.TeamStatusCompleted:
		return ErrTeamCompleted
	}

	switch target {
	case models.TeamStatusWaiting:
		if team.Status == models.TeamStatusWaiting {
			return ErrAlreadyWaiting
		}
	case models.TeamStatusCheckedIn:
		if team.ArrivalTime != nil && now.Before(*team.ArrivalTime) {
			return ErrTeamEarly
		}
	default:
		return ErrInvalidTargetStatus
	}
	return nil
}

type checkInService struct {
	teamRepo  repositories.TeamRepository
	publisher live.Publisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewCheckInService(teamRepo repositories.TeamRepository, publisher live.Publisher, rec *metrics.Recorder, logger *slog.Logger) CheckInService {
	return &checkInService{
		teamRepo:  teamRepo,
		publisher: publisher,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *checkInService) RequestStatus(ctx context.Context, teamNumber string, target models.TeamStatus) (result *CheckInResult, err error) {
	defer func() {
		s.metrics.RecordCheckIn(string(target), checkInOutcome(err))
	}()

	teamNumber = strings.TrimSpace(teamNumber)
	if target != models.TeamStatusWaiting && target != models.TeamStatusCheckedIn {
		return nil, ErrInvalidTargetStatus
	}

	team, err := s.teamRepo.GetByNumber(ctx, teamNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team %s: %w", teamNumber, err)
	}

	now := s.now().UTC()
	if err := checkTransition(team, target, now); err != nil {
		return nil, err
	}

	var checkInTime *time.Time
	if target == models.TeamStatusCheckedIn {
		checkInTime = &now
	}
	prior := team.Status

	if err := s.teamRepo.CompareAndSetStatus(ctx, team.ID, prior, target, checkInTime); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamStatusConflict):
			return nil, ErrStatusConflict
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		default:
			return nil, fmt.Errorf("failed to update status of team %s: %w", teamNumber, err)
		}
	}

	team.Status = target
	if checkInTime != nil {
		team.CheckInTime = checkInTime
	}

	message := MessageSentToWaiting
	if target == models.TeamStatusCheckedIn {
		message = MessageCheckedIn
	}
	s.logger.InfoContext(ctx, "team status changed",
		slog.String("team_number", team.TeamNumber),
		slog.String("from", string(prior)),
		slog.String("to", string(target)),
	)
	s.publisher.Publish(live.RoomTeams, live.EventTeamUpdated, team)

	return &CheckInResult{Team: team, Message: message}, nil
}

func (s *checkInService) Board(ctx context.Context) ([]CheckInBoardEntry, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	board := make([]CheckInBoardEntry, len(teams))
	for i, t := range teams {
		board[i] = CheckInBoardEntry{Team: t, Actions: AvailableActions(t.Status)}
	}
	return board, nil
}

func checkInOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTeamNotFound):
		return "not_found"
	case errors.Is(err, ErrStatusConflict):
		return "conflict"
	case errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrTeamCompleted),
		errors.Is(err, ErrAlreadyWaiting),
		errors.Is(err, ErrTeamEarly),
		errors.Is(err, ErrInvalidTargetStatus):
		return "rejected"
	default:
		return "error"
	}
}
