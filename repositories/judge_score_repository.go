package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bridge-judging/models"
)

var ErrJudgeScoreConflict = errors.New("judge already scored this team")

type JudgeScoreRepository interface {
	// CreateAndCompleteTeam stores the score and marks team teamID completed
	// as one unit. A second score for the same (team, judge) pair fails with
	// ErrJudgeScoreConflict and writes nothing.
	CreateAndCompleteTeam(ctx context.Context, score *models.JudgeScore, teamID int) error
	ExistsForTeamAndJudge(ctx context.Context, teamNumber, judgeID string) (bool, error)
	List(ctx context.Context) ([]models.JudgeScore, error)
}

type postgresJudgeScoreRepository struct {
	db    *sql.DB
	teams TeamRepository
}

func NewPostgresJudgeScoreRepository(db *sql.DB, teams TeamRepository) JudgeScoreRepository {
	return &postgresJudgeScoreRepository{db: db, teams: teams}
}

func (r *postgresJudgeScoreRepository) CreateAndCompleteTeam(ctx context.Context, score *models.JudgeScore, teamID int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO judge_scores (team_number, judge_id, judge_name, criteria1, criteria2, criteria3, criteria4, criteria5, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err = tx.QueryRowContext(ctx, query,
		score.TeamNumber,
		score.JudgeID,
		score.JudgeName,
		score.Scores.Criteria1,
		score.Scores.Criteria2,
		score.Scores.Criteria3,
		score.Scores.Criteria4,
		score.Scores.Criteria5,
		score.Comments,
		score.Timestamp,
	).Scan(&score.ID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "judge_scores_team_judge_key" {
			return ErrJudgeScoreConflict
		}
		return fmt.Errorf("failed to insert judge score: %w", err)
	}

	if err = r.teams.SetStatus(ctx, tx, teamID, models.TeamStatusCompleted); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit judge score: %w", err)
	}
	return nil
}

func (r *postgresJudgeScoreRepository) ExistsForTeamAndJudge(ctx context.Context, teamNumber, judgeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM judge_scores WHERE team_number = $1 AND judge_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, teamNumber, judgeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check judge score: %w", err)
	}
	return exists, nil
}

func (r *postgresJudgeScoreRepository) List(ctx context.Context) ([]models.JudgeScore, error) {
	query := `
		SELECT id, team_number, judge_id, judge_name, criteria1, criteria2, criteria3, criteria4, criteria5, comments, created_at
		FROM judge_scores
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list judge scores: %w", err)
	}
	defer rows.Close()

	scores := make([]models.JudgeScore, 0)
	for rows.Next() {
		var s models.JudgeScore
		if err := rows.Scan(
			&s.ID,
			&s.TeamNumber,
			&s.JudgeID,
			&s.JudgeName,
			&s.Scores.Criteria1,
			&s.Scores.Criteria2,
			&s.Scores.Criteria3,
			&s.Scores.Criteria4,
			&s.Scores.Criteria5,
			&s.Comments,
			&s.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan judge score: %w", err)
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate judge scores: %w", err)
	}
	return scores, nil
}
