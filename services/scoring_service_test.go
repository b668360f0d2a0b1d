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

func TestScoringWorkflow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 4, 13, 30, 0, 0, time.UTC)
	judge := models.User{UID: "judge-j", Name: "Judge J", Role: models.RoleJudge}

	Convey("Given a judge at the scoring table", t, func() {
		f := newFixture()
		svc := NewScoringService(f.teams, f.scores, f.pub, nil, f.logger).(*scoringService)
		svc.now = func() time.Time { return now }

		Convey("When judge J scores team 3 with 5,6,7,8,9", func() {
			f.addTeam("3", withStatus(models.TeamStatusCheckedIn))
			found, err := svc.FindTeam(ctx, "3", judge)
			So(err, ShouldBeNil)
			So(found.TeamNumber, ShouldEqual, "3")

			score, err := svc.SubmitScore(ctx, SubmitScoreInput{
				TeamNumber: "3",
				Criteria1:  intp(5),
				Criteria2:  intp(6),
				Criteria3:  intp(7),
				Criteria4:  intp(8),
				Criteria5:  intp(9),
				Comments:   "solid design",
			}, judge)

			Convey("Then the score is stored and the team is completed", func() {
				So(err, ShouldBeNil)
				So(score.Scores, ShouldResemble, models.Rubric{Criteria1: 5, Criteria2: 6, Criteria3: 7, Criteria4: 8, Criteria5: 9})

				all, err := svc.ListScores(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 1)
				So(all[0].TeamNumber, ShouldEqual, "3")
				So(all[0].JudgeID, ShouldEqual, "judge-j")
				So(all[0].JudgeName, ShouldEqual, "Judge J")
				So(all[0].Comments, ShouldEqual, "solid design")
				So(all[0].Timestamp.Equal(now), ShouldBeTrue)

				So(f.team("3").Status, ShouldEqual, models.TeamStatusCompleted)
				So(f.pub.types(), ShouldResemble, []string{live.EventTeamUpdated})
			})

			Convey("Then looking the team up again reports the prior score", func() {
				_, err := svc.FindTeam(ctx, "3", judge)
				So(err, ShouldEqual, ErrAlreadyScored)
				So(err.Error(), ShouldEqual, "You have already scored this team")
			})

			Convey("Then a second submission is rejected without the lookup", func() {
				_, err := svc.SubmitScore(ctx, SubmitScoreInput{TeamNumber: "3"}, judge)
				So(err, ShouldEqual, ErrAlreadyScored)
				all, _ := svc.ListScores(ctx)
				So(all, ShouldHaveLength, 1)
			})

			Convey("Then another judge may still score the team", func() {
				other := models.User{UID: "judge-k", Name: "Judge K", Role: models.RoleJudge}
				_, err := svc.SubmitScore(ctx, SubmitScoreInput{TeamNumber: "3"}, other)
				So(err, ShouldBeNil)
			})
		})

		Convey("When criteria are omitted", func() {
			f.addTeam("4")
			score, err := svc.SubmitScore(ctx, SubmitScoreInput{TeamNumber: "4", Criteria2: intp(8)}, judge)

			Convey("Then they default to 5", func() {
				So(err, ShouldBeNil)
				So(score.Scores, ShouldResemble, models.Rubric{Criteria1: 5, Criteria2: 8, Criteria3: 5, Criteria4: 5, Criteria5: 5})
			})
		})

		Convey("When a criterion is out of range", func() {
			f.addTeam("5")
			_, err := svc.SubmitScore(ctx, SubmitScoreInput{TeamNumber: "5", Criteria1: intp(0), Criteria4: intp(11)}, judge)

			Convey("Then the submission fails validation and nothing is written", func() {
				So(errors.Is(err, ErrValidationFailed), ShouldBeTrue)
				var verr *ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldContainKey, "criteria1")
				So(verr.Fields, ShouldContainKey, "criteria4")
				So(f.team("5").Status, ShouldEqual, models.TeamStatusRegistered)
			})
		})

		Convey("When the team does not exist", func() {
			_, err := svc.FindTeam(ctx, "77", judge)
			So(err, ShouldEqual, ErrTeamNotFound)
			_, err = svc.SubmitScore(ctx, SubmitScoreInput{TeamNumber: "77"}, judge)
			So(err, ShouldEqual, ErrTeamNotFound)
		})
	})
}
