package models

import "time"

type AverageScores struct {
	Criteria1 float64 `json:"criteria1"`
	Criteria2 float64 `json:"criteria2"`
	Criteria3 float64 `json:"criteria3"`
	Criteria4 float64 `json:"criteria4"`
	Criteria5 float64 `json:"criteria5"`
}

// TeamScore is the per-team aggregate over every judge's rubric.
type TeamScore struct {
	TeamNumber    string        `json:"team_number" db:"team_number"`
	Category      TeamCategory  `json:"category" db:"category"`
	AverageScores AverageScores `json:"average_scores" db:"-"`
	TotalScore    float64       `json:"total_score" db:"total_score"`
	Rank          *int          `json:"rank,omitempty" db:"rank"`
	JudgeCount    int           `json:"judge_count" db:"judge_count"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}
