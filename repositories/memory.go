package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/bridge-judging/models"
)

type scoreKey struct {
	teamNumber string
	judgeID    string
}

// MemoryDB is a process-local store with the same constraints as the
// postgres schema: unique team numbers, unique (team, judge) scores and
// status compare-and-set. Used by STORAGE_DRIVER=memory and by tests.
type MemoryDB struct {
	mu sync.RWMutex

	teams       map[int]models.Team
	teamNumbers map[string]int
	nextTeamID  int

	scores      []models.JudgeScore
	scoredBy    map[scoreKey]struct{}
	nextScoreID int

	teamScores []models.TeamScore

	users      map[string]models.User
	userEmails map[string]string
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		teams:       make(map[int]models.Team),
		teamNumbers: make(map[string]int),
		nextTeamID:  1,
		scoredBy:    make(map[scoreKey]struct{}),
		nextScoreID: 1,
		users:       make(map[string]models.User),
		userEmails:  make(map[string]string),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyTeam(t models.Team) models.Team {
	t.ArrivalTime = copyTime(t.ArrivalTime)
	t.CheckInTime = copyTime(t.CheckInTime)
	return t
}

// --- teams ---

type memoryTeamRepository struct {
	db *MemoryDB
}

func NewMemoryTeamRepository(db *MemoryDB) TeamRepository {
	return &memoryTeamRepository{db: db}
}

func (r *memoryTeamRepository) Create(_ context.Context, team *models.Team) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.teamNumbers[team.TeamNumber]; taken {
		return ErrTeamNumberConflict
	}
	team.ID = r.db.nextTeamID
	r.db.nextTeamID++
	r.db.teams[team.ID] = copyTeam(*team)
	r.db.teamNumbers[team.TeamNumber] = team.ID
	return nil
}

func (r *memoryTeamRepository) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	team, ok := r.db.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	team = copyTeam(team)
	return &team, nil
}

func (r *memoryTeamRepository) GetByNumber(ctx context.Context, teamNumber string) (*models.Team, error) {
	r.db.mu.RLock()
	id, ok := r.db.teamNumbers[teamNumber]
	r.db.mu.RUnlock()
	if !ok {
		return nil, ErrTeamNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryTeamRepository) List(_ context.Context) ([]models.Team, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	teams := make([]models.Team, 0, len(r.db.teams))
	for _, t := range r.db.teams {
		teams = append(teams, copyTeam(t))
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamNumber < teams[j].TeamNumber })
	return teams, nil
}

func (r *memoryTeamRepository) CompareAndSetStatus(_ context.Context, id int, expected, next models.TeamStatus, checkInTime *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	team, ok := r.db.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	if team.Status != expected {
		return ErrTeamStatusConflict
	}
	team.Status = next
	if checkInTime != nil {
		team.CheckInTime = copyTime(checkInTime)
	}
	r.db.teams[id] = team
	return nil
}

// SetStatus ignores exec; the memory store has no transactions.
func (r *memoryTeamRepository) SetStatus(_ context.Context, _ SQLExecutor, id int, status models.TeamStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.setStatusLocked(id, status)
}

func (db *MemoryDB) setStatusLocked(id int, status models.TeamStatus) error {
	team, ok := db.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	team.Status = status
	db.teams[id] = team
	return nil
}

func (r *memoryTeamRepository) UpdateArrivalTime(_ context.Context, id int, arrival *time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	team, ok := r.db.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	team.ArrivalTime = copyTime(arrival)
	r.db.teams[id] = team
	return nil
}

func (r *memoryTeamRepository) Delete(_ context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	team, ok := r.db.teams[id]
	if !ok {
		return ErrTeamNotFound
	}
	delete(r.db.teams, id)
	delete(r.db.teamNumbers, team.TeamNumber)
	return nil
}

// --- judge scores ---

type memoryJudgeScoreRepository struct {
	db *MemoryDB
}

func NewMemoryJudgeScoreRepository(db *MemoryDB) JudgeScoreRepository {
	return &memoryJudgeScoreRepository{db: db}
}

func (r *memoryJudgeScoreRepository) CreateAndCompleteTeam(_ context.Context, score *models.JudgeScore, teamID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := scoreKey{teamNumber: score.TeamNumber, judgeID: score.JudgeID}
	if _, dup := r.db.scoredBy[key]; dup {
		return ErrJudgeScoreConflict
	}
	if err := r.db.setStatusLocked(teamID, models.TeamStatusCompleted); err != nil {
		return err
	}
	score.ID = r.db.nextScoreID
	r.db.nextScoreID++
	r.db.scores = append(r.db.scores, *score)
	r.db.scoredBy[key] = struct{}{}
	return nil
}

func (r *memoryJudgeScoreRepository) ExistsForTeamAndJudge(_ context.Context, teamNumber, judgeID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	_, ok := r.db.scoredBy[scoreKey{teamNumber: teamNumber, judgeID: judgeID}]
	return ok, nil
}

func (r *memoryJudgeScoreRepository) List(_ context.Context) ([]models.JudgeScore, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return append([]models.JudgeScore(nil), r.db.scores...), nil
}

// --- team scores ---

type memoryTeamScoreRepository struct {
	db *MemoryDB
}

func NewMemoryTeamScoreRepository(db *MemoryDB) TeamScoreRepository {
	return &memoryTeamScoreRepository{db: db}
}

func (r *memoryTeamScoreRepository) List(_ context.Context) ([]models.TeamScore, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]models.TeamScore, len(r.db.teamScores))
	for i, s := range r.db.teamScores {
		if s.Rank != nil {
			v := *s.Rank
			s.Rank = &v
		}
		out[i] = s
	}
	return out, nil
}

func (r *memoryTeamScoreRepository) ReplaceAll(_ context.Context, scores []models.TeamScore) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.teamScores = append([]models.TeamScore(nil), scores...)
	return nil
}

// --- users ---

type memoryUserRepository struct {
	db *MemoryDB
}

func NewMemoryUserRepository(db *MemoryDB) UserRepository {
	return &memoryUserRepository{db: db}
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.userEmails[user.Email]; taken {
		return ErrUserEmailConflict
	}
	r.db.users[user.UID] = *user
	r.db.userEmails[user.Email] = user.UID
	return nil
}

func (r *memoryUserRepository) GetByUID(_ context.Context, uid string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	uid, ok := r.db.userEmails[email]
	r.db.mu.RUnlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	return r.GetByUID(ctx, uid)
}
