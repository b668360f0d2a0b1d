package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	. "github.com/smartystreets/goconvey/convey"
)

func newCheckIn(f *fixture, teams repositories.TeamRepository, now time.Time) *checkInService {
	svc := NewCheckInService(teams, f.pub, nil, f.logger).(*checkInService)
	svc.now = func() time.Time { return now }
	return svc
}

// staleTeams serves a cached team snapshot to simulate a concurrent writer.
type staleTeams struct {
	repositories.TeamRepository
	snapshot models.Team
}

func (s *staleTeams) GetByNumber(_ context.Context, _ string) (*models.Team, error) {
	t := s.snapshot
	return &t, nil
}

func TestCheckInWorkflow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)

	Convey("Given the check-in desk", t, func() {
		f := newFixture()
		svc := newCheckIn(f, f.teams, now)

		Convey("When registered team 12 is checked in", func() {
			f.addTeam("12")
			res, err := svc.RequestStatus(ctx, "12", models.TeamStatusCheckedIn)

			Convey("Then it is checked in with the current time", func() {
				So(err, ShouldBeNil)
				So(res.Message, ShouldEqual, "Team checked in successfully!")
				stored := f.team("12")
				So(stored.Status, ShouldEqual, models.TeamStatusCheckedIn)
				So(stored.CheckInTime, ShouldNotBeNil)
				So(stored.CheckInTime.Equal(now), ShouldBeTrue)
				So(f.pub.types(), ShouldResemble, []string{live.EventTeamUpdated})
			})

			Convey("And any further request is rejected", func() {
				_, err := svc.RequestStatus(ctx, "12", models.TeamStatusWaiting)
				So(err, ShouldEqual, ErrAlreadyCheckedIn)
				_, err = svc.RequestStatus(ctx, "12", models.TeamStatusCheckedIn)
				So(err, ShouldEqual, ErrAlreadyCheckedIn)
			})
		})

		Convey("When team 7 arrives before its scheduled time", func() {
			f.addTeam("7", withArrival(now.Add(30*time.Minute)))

			Convey("Then check-in is refused and nothing changes", func() {
				_, err := svc.RequestStatus(ctx, "7", models.TeamStatusCheckedIn)
				So(err, ShouldEqual, ErrTeamEarly)
				So(err.Error(), ShouldEqual, "Team is early. Please send them to the waiting area.")
				So(f.team("7").Status, ShouldEqual, models.TeamStatusRegistered)
				So(f.pub.types(), ShouldBeEmpty)
			})

			Convey("Then the team can be sent to the waiting area", func() {
				res, err := svc.RequestStatus(ctx, "7", models.TeamStatusWaiting)
				So(err, ShouldBeNil)
				So(res.Message, ShouldEqual, "Team sent to waiting area!")
				stored := f.team("7")
				So(stored.Status, ShouldEqual, models.TeamStatusWaiting)
				So(stored.CheckInTime, ShouldBeNil)
			})

			Convey("Then check-in succeeds exactly at the arrival time", func() {
				atArrival := newCheckIn(f, f.teams, now.Add(30*time.Minute))
				_, err := atArrival.RequestStatus(ctx, "7", models.TeamStatusCheckedIn)
				So(err, ShouldBeNil)
				So(f.team("7").Status, ShouldEqual, models.TeamStatusCheckedIn)
			})
		})

		Convey("When a waiting team is sent to waiting again", func() {
			f.addTeam("8", withStatus(models.TeamStatusWaiting))
			_, err := svc.RequestStatus(ctx, "8", models.TeamStatusWaiting)

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, ErrAlreadyWaiting)
			})

			Convey("But it can still be checked in", func() {
				_, err := svc.RequestStatus(ctx, "8", models.TeamStatusCheckedIn)
				So(err, ShouldBeNil)
			})
		})

		Convey("When a completed team is presented", func() {
			f.addTeam("9", withStatus(models.TeamStatusCompleted))

			Convey("Then every target is rejected", func() {
				_, err := svc.RequestStatus(ctx, "9", models.TeamStatusCheckedIn)
				So(err, ShouldEqual, ErrTeamCompleted)
				_, err = svc.RequestStatus(ctx, "9", models.TeamStatusWaiting)
				So(err, ShouldEqual, ErrTeamCompleted)
			})
		})

		Convey("When the team number is unknown", func() {
			_, err := svc.RequestStatus(ctx, "404", models.TeamStatusCheckedIn)
			So(err, ShouldEqual, ErrTeamNotFound)
		})

		Convey("When the target is not a check-in status", func() {
			f.addTeam("10")
			_, err := svc.RequestStatus(ctx, "10", models.TeamStatusCompleted)
			So(err, ShouldEqual, ErrInvalidTargetStatus)
			So(f.team("10").Status, ShouldEqual, models.TeamStatusRegistered)
		})

		Convey("When another desk changed the team first", func() {
			team := f.addTeam("11")
			snapshot := *team
			if err := f.teams.CompareAndSetStatus(ctx, team.ID, models.TeamStatusRegistered, models.TeamStatusWaiting, nil); err != nil {
				panic(err)
			}
			stale := newCheckIn(f, &staleTeams{TeamRepository: f.teams, snapshot: snapshot}, now)
			_, err := stale.RequestStatus(ctx, "11", models.TeamStatusCheckedIn)

			Convey("Then the write is refused and state is unchanged", func() {
				So(err, ShouldEqual, ErrStatusConflict)
				stored := f.team("11")
				So(stored.Status, ShouldEqual, models.TeamStatusWaiting)
				So(stored.CheckInTime, ShouldBeNil)
			})
		})

		Convey("When the board is listed", func() {
			f.addTeam("1")
			f.addTeam("2", withStatus(models.TeamStatusWaiting))
			f.addTeam("3", withStatus(models.TeamStatusCompleted))
			board, err := svc.Board(ctx)

			Convey("Then each team carries its actions", func() {
				So(err, ShouldBeNil)
				So(board, ShouldHaveLength, 3)
				So(board[0].Actions, ShouldResemble, []models.TeamStatus{models.TeamStatusCheckedIn, models.TeamStatusWaiting})
				So(board[1].Actions, ShouldResemble, []models.TeamStatus{models.TeamStatusCheckedIn})
				So(board[2].Actions, ShouldBeEmpty)
			})
		})
	})
}

func TestAvailableActions(t *testing.T) {
	Convey("Available check-in actions follow the status", t, func() {
		So(AvailableActions(models.TeamStatusRegistered), ShouldHaveLength, 2)
		So(AvailableActions(models.TeamStatusWaiting), ShouldResemble, []models.TeamStatus{models.TeamStatusCheckedIn})
		So(AvailableActions(models.TeamStatusCheckedIn), ShouldBeEmpty)
		So(AvailableActions(models.TeamStatusCompleted), ShouldBeEmpty)
	})
}
