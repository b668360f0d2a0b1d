package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bridge-judging/models"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNumberConflict = errors.New("team number conflict")
	ErrTeamStatusConflict = errors.New("team status changed concurrently")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByNumber(ctx context.Context, teamNumber string) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	// CompareAndSetStatus moves the team to next only if its stored status is
	// still expected. checkInTime is written only when non-nil.
	CompareAndSetStatus(ctx context.Context, id int, expected, next models.TeamStatus, checkInTime *time.Time) error
	SetStatus(ctx context.Context, exec SQLExecutor, id int, status models.TeamStatus) error
	UpdateArrivalTime(ctx context.Context, id int, arrival *time.Time) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, team_number, team_name, school_name, student1, student2, category, status, arrival_time, check_in_time, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (team_number, team_name, school_name, student1, student2, category, status, arrival_time, check_in_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		team.TeamNumber,
		team.TeamName,
		team.SchoolName,
		team.Student1,
		team.Student2,
		team.Category,
		team.Status,
		team.ArrivalTime,
		team.CheckInTime,
		team.CreatedAt,
	).Scan(&team.ID)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "teams_team_number_key" {
			return ErrTeamNumberConflict
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.db.QueryRowContext(ctx, query, id))
}

// GetByNumber is an equality query served by teams_team_number_key.
func (r *postgresTeamRepository) GetByNumber(ctx context.Context, teamNumber string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_number = $1`
	return scanTeam(r.db.QueryRowContext(ctx, query, teamNumber))
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY team_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) CompareAndSetStatus(ctx context.Context, id int, expected, next models.TeamStatus, checkInTime *time.Time) error {
	query := `
		UPDATE teams SET
			status = $1,
			check_in_time = COALESCE($2::timestamptz, check_in_time)
		WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, next, checkInTime, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update team status: %w", err)
	}
	if err := checkAffectedRows(result, ErrTeamStatusConflict); err != nil {
		if !errors.Is(err, ErrTeamStatusConflict) {
			return err
		}
		// No row matched: distinguish a lost race from a deleted team.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrTeamStatusConflict
	}
	return nil
}

func (r *postgresTeamRepository) SetStatus(ctx context.Context, exec SQLExecutor, id int, status models.TeamStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set team status: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateArrivalTime(ctx context.Context, id int, arrival *time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET arrival_time = $1 WHERE id = $2`, arrival, id)
	if err != nil {
		return fmt.Errorf("failed to update arrival time: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var team models.Team
	var arrival, checkIn sql.NullTime

	err := row.Scan(
		&team.ID,
		&team.TeamNumber,
		&team.TeamName,
		&team.SchoolName,
		&team.Student1,
		&team.Student2,
		&team.Category,
		&team.Status,
		&arrival,
		&checkIn,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team: %w", err)
	}
	team.ArrivalTime = nullTimePtr(arrival)
	team.CheckInTime = nullTimePtr(checkIn)
	return &team, nil
}
