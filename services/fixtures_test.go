package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
)

type recordedEvent struct {
	room      string
	eventType string
	payload   interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(room string, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{room: room, eventType: eventType, payload: payload})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type fixture struct {
	teams      repositories.TeamRepository
	scores     repositories.JudgeScoreRepository
	teamScores repositories.TeamScoreRepository
	users      repositories.UserRepository
	pub        *fakePublisher
	logger     *slog.Logger
}

func newFixture() *fixture {
	mem := repositories.NewMemoryDB()
	return &fixture{
		teams:      repositories.NewMemoryTeamRepository(mem),
		scores:     repositories.NewMemoryJudgeScoreRepository(mem),
		teamScores: repositories.NewMemoryTeamScoreRepository(mem),
		users:      repositories.NewMemoryUserRepository(mem),
		pub:        &fakePublisher{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// addTeam stores a registered junior team; opts adjust it before insert.
func (f *fixture) addTeam(number string, opts ...func(*models.Team)) *models.Team {
	team := &models.Team{
		TeamNumber: number,
		TeamName:   "Team " + number,
		SchoolName: "Riverside",
		Student1:   "Ada",
		Student2:   "Linus",
		Category:   models.CategoryJunior,
		Status:     models.TeamStatusRegistered,
		CreatedAt:  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(team)
	}
	if err := f.teams.Create(context.Background(), team); err != nil {
		panic(err)
	}
	return team
}

func (f *fixture) team(number string) *models.Team {
	team, err := f.teams.GetByNumber(context.Background(), number)
	if err != nil {
		panic(err)
	}
	return team
}

func withStatus(status models.TeamStatus) func(*models.Team) {
	return func(t *models.Team) { t.Status = status }
}

func withArrival(at time.Time) func(*models.Team) {
	return func(t *models.Team) { t.ArrivalTime = &at }
}

func withCategory(c models.TeamCategory) func(*models.Team) {
	return func(t *models.Team) { t.Category = c }
}

func intp(v int) *int { return &v }
