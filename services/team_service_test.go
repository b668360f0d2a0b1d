package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/models"
	. "github.com/smartystreets/goconvey/convey"
)

func validTeamInput(number string) AddTeamInput {
	return AddTeamInput{
		TeamNumber: number,
		TeamName:   "Span Masters",
		SchoolName: "Hillcrest",
		Student1:   "Maya",
		Student2:   "Omar",
		Category:   "SR",
	}
}

func TestTeamRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 4, 8, 0, 0, 0, time.UTC)

	Convey("Given the team registry", t, func() {
		f := newFixture()
		svc := NewTeamService(f.teams, f.pub, f.logger).(*teamService)
		svc.now = func() time.Time { return now }

		Convey("When a complete team is added", func() {
			team, err := svc.AddTeam(ctx, validTeamInput(" 42 "))

			Convey("Then it is registered with no check-in time", func() {
				So(err, ShouldBeNil)
				So(team.ID, ShouldBeGreaterThan, 0)
				So(team.TeamNumber, ShouldEqual, "42")
				So(team.Category, ShouldEqual, models.CategorySenior)
				So(team.Status, ShouldEqual, models.TeamStatusRegistered)
				So(team.CheckInTime, ShouldBeNil)
				So(team.CreatedAt.Equal(now), ShouldBeTrue)
				So(f.pub.types(), ShouldResemble, []string{live.EventTeamCreated})
			})

			Convey("Then the same number cannot be added again", func() {
				_, err := svc.AddTeam(ctx, validTeamInput("42"))
				So(err, ShouldEqual, ErrTeamNumberConflict)
				teams, _ := svc.ListTeams(ctx)
				So(teams, ShouldHaveLength, 1)
			})

			Convey("Then an arrival time can be scheduled and cleared", func() {
				arrival := now.Add(2 * time.Hour)
				updated, err := svc.SetArrivalTime(ctx, team.ID, &arrival)
				So(err, ShouldBeNil)
				So(updated.ArrivalTime.Equal(arrival), ShouldBeTrue)

				cleared, err := svc.SetArrivalTime(ctx, team.ID, nil)
				So(err, ShouldBeNil)
				So(cleared.ArrivalTime, ShouldBeNil)
			})

			Convey("Then deletion needs confirmation", func() {
				So(svc.DeleteTeam(ctx, team.ID, false), ShouldEqual, ErrConfirmationRequired)
				So(svc.DeleteTeam(ctx, team.ID, true), ShouldBeNil)
				_, err := svc.GetTeam(ctx, team.ID)
				So(err, ShouldEqual, ErrTeamNotFound)
				So(f.pub.types(), ShouldResemble, []string{live.EventTeamCreated, live.EventTeamDeleted})
			})
		})

		Convey("When required fields are missing", func() {
			_, err := svc.AddTeam(ctx, AddTeamInput{TeamNumber: "1", Category: "mid"})

			Convey("Then every problem is reported", func() {
				var verr *ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldContainKey, "team_name")
				So(verr.Fields, ShouldContainKey, "school_name")
				So(verr.Fields, ShouldContainKey, "student1")
				So(verr.Fields, ShouldContainKey, "student2")
				So(verr.Fields, ShouldContainKey, "category")
				So(verr.Fields, ShouldNotContainKey, "team_number")
			})
		})

		Convey("When unknown ids are used", func() {
			_, err := svc.GetTeam(ctx, 99)
			So(err, ShouldEqual, ErrTeamNotFound)
			_, err = svc.SetArrivalTime(ctx, 99, nil)
			So(err, ShouldEqual, ErrTeamNotFound)
			So(svc.DeleteTeam(ctx, 99, true), ShouldEqual, ErrTeamNotFound)
		})

		Convey("When teams are listed", func() {
			f.addTeam("20")
			f.addTeam("03")
			teams, err := svc.ListTeams(ctx)
			So(err, ShouldBeNil)
			So(teams[0].TeamNumber, ShouldEqual, "03")
			So(teams[1].TeamNumber, ShouldEqual, "20")
		})
	})
}
