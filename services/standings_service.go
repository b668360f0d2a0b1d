package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/metrics"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	// Recompute rebuilds every TeamScore from the judge scores on record.
	Recompute(ctx context.Context) ([]models.TeamScore, error)
}

type standingsService struct {
	teamRepo      repositories.TeamRepository
	scoreRepo     repositories.JudgeScoreRepository
	teamScoreRepo repositories.TeamScoreRepository
	publisher     live.Publisher
	metrics       *metrics.Recorder
	logger        *slog.Logger
	now           func() time.Time
}

func NewStandingsService(
	teamRepo repositories.TeamRepository,
	scoreRepo repositories.JudgeScoreRepository,
	teamScoreRepo repositories.TeamScoreRepository,
	publisher live.Publisher,
	rec *metrics.Recorder,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		teamRepo:      teamRepo,
		scoreRepo:     scoreRepo,
		teamScoreRepo: teamScoreRepo,
		publisher:     publisher,
		metrics:       rec,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *standingsService) Recompute(ctx context.Context) (standings []models.TeamScore, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveStandings(time.Since(started), err)
	}()

	var (
		teams  []models.Team
		scores []models.JudgeScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.scoreRepo.List(gctx)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings input: %w", err)
	}

	standings = BuildStandings(teams, scores, s.now().UTC())
	if err = s.teamScoreRepo.ReplaceAll(ctx, standings); err != nil {
		return nil, fmt.Errorf("failed to store standings: %w", err)
	}

	s.logger.DebugContext(ctx, "standings recomputed", slog.Int("teams", len(standings)), slog.Int("scores", len(scores)))
	s.publisher.Publish(live.RoomTeams, live.EventStandingsUpdated, standings)
	return standings, nil
}

// BuildStandings averages each criterion over a team's judges, totals the
// averages and ranks teams within their category. Teams that share a total
// share a rank and the next rank is skipped. Scores for unknown team
// numbers are ignored.
func BuildStandings(teams []models.Team, scores []models.JudgeScore, updatedAt time.Time) []models.TeamScore {
	categories := make(map[string]models.TeamCategory, len(teams))
	for _, t := range teams {
		categories[t.TeamNumber] = t.Category
	}

	type acc struct {
		sums  [5]int
		count int
	}
	byTeam := make(map[string]*acc)
	for _, sc := range scores {
		if _, known := categories[sc.TeamNumber]; !known {
			continue
		}
		a, ok := byTeam[sc.TeamNumber]
		if !ok {
			a = &acc{}
			byTeam[sc.TeamNumber] = a
		}
		for i, v := range sc.Scores.Values() {
			a.sums[i] += v
		}
		a.count++
	}

	standings := make([]models.TeamScore, 0, len(byTeam))
	for number, a := range byTeam {
		var avg [5]float64
		total := 0.0
		for i, sum := range a.sums {
			avg[i] = float64(sum) / float64(a.count)
			total += avg[i]
		}
		standings = append(standings, models.TeamScore{
			TeamNumber: number,
			Category:   categories[number],
			AverageScores: models.AverageScores{
				Criteria1: round2(avg[0]),
				Criteria2: round2(avg[1]),
				Criteria3: round2(avg[2]),
				Criteria4: round2(avg[3]),
				Criteria5: round2(avg[4]),
			},
			TotalScore: round2(total),
			JudgeCount: a.count,
			UpdatedAt:  updatedAt,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.TeamNumber < b.TeamNumber
	})

	for i := range standings {
		rank := 1
		if i > 0 && standings[i-1].Category == standings[i].Category {
			prev := *standings[i-1].Rank
			if standings[i-1].TotalScore == standings[i].TotalScore {
				rank = prev
			} else {
				rank = i + 1 - firstOfCategory(standings, i)
			}
		}
		r := rank
		standings[i].Rank = &r
	}
	return standings
}

func firstOfCategory(standings []models.TeamScore, i int) int {
	for i > 0 && standings[i-1].Category == standings[i].Category {
		i--
	}
	return i
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
