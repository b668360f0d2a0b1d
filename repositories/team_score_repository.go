package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/bridge-judging/models"
)

type TeamScoreRepository interface {
	List(ctx context.Context) ([]models.TeamScore, error)
	// ReplaceAll swaps the whole aggregate collection in one transaction.
	ReplaceAll(ctx context.Context, scores []models.TeamScore) error
}

type postgresTeamScoreRepository struct {
	db *sql.DB
}

func NewPostgresTeamScoreRepository(db *sql.DB) TeamScoreRepository {
	return &postgresTeamScoreRepository{db: db}
}

func (r *postgresTeamScoreRepository) List(ctx context.Context) ([]models.TeamScore, error) {
	query := `
		SELECT team_number, category, avg_criteria1, avg_criteria2, avg_criteria3, avg_criteria4, avg_criteria5,
		       total_score, rank, judge_count, updated_at
		FROM team_scores
		ORDER BY category ASC, rank ASC NULLS LAST, team_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list team scores: %w", err)
	}
	defer rows.Close()

	scores := make([]models.TeamScore, 0)
	for rows.Next() {
		var s models.TeamScore
		var rank sql.NullInt64
		if err := rows.Scan(
			&s.TeamNumber,
			&s.Category,
			&s.AverageScores.Criteria1,
			&s.AverageScores.Criteria2,
			&s.AverageScores.Criteria3,
			&s.AverageScores.Criteria4,
			&s.AverageScores.Criteria5,
			&s.TotalScore,
			&rank,
			&s.JudgeCount,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team score: %w", err)
		}
		if rank.Valid {
			v := int(rank.Int64)
			s.Rank = &v
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team scores: %w", err)
	}
	return scores, nil
}

func (r *postgresTeamScoreRepository) ReplaceAll(ctx context.Context, scores []models.TeamScore) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceAll failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM team_scores`); err != nil {
		return fmt.Errorf("failed to clear team scores: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO team_scores (team_number, category, avg_criteria1, avg_criteria2, avg_criteria3, avg_criteria4, avg_criteria5,
		                         total_score, rank, judge_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("failed to prepare team score insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range scores {
		if _, err = stmt.ExecContext(ctx,
			s.TeamNumber,
			s.Category,
			s.AverageScores.Criteria1,
			s.AverageScores.Criteria2,
			s.AverageScores.Criteria3,
			s.AverageScores.Criteria4,
			s.AverageScores.Criteria5,
			s.TotalScore,
			s.Rank,
			s.JudgeCount,
			s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert team score %s: %w", s.TeamNumber, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team scores: %w", err)
	}
	return nil
}
