package models

import "time"

const (
	RubricMin     = 1
	RubricMax     = 10
	RubricDefault = 5
)

// Rubric is the fixed five-criterion scoring form.
type Rubric struct {
	Criteria1 int `json:"criteria1"`
	Criteria2 int `json:"criteria2"`
	Criteria3 int `json:"criteria3"`
	Criteria4 int `json:"criteria4"`
	Criteria5 int `json:"criteria5"`
}

func DefaultRubric() Rubric {
	return Rubric{
		Criteria1: RubricDefault,
		Criteria2: RubricDefault,
		Criteria3: RubricDefault,
		Criteria4: RubricDefault,
		Criteria5: RubricDefault,
	}
}

func (r Rubric) Values() [5]int {
	return [5]int{r.Criteria1, r.Criteria2, r.Criteria3, r.Criteria4, r.Criteria5}
}

type JudgeScore struct {
	ID         int       `json:"id" db:"id"`
	TeamNumber string    `json:"team_number" db:"team_number"`
	JudgeID    string    `json:"judge_id" db:"judge_id"`
	JudgeName  string    `json:"judge_name" db:"judge_name"`
	Scores     Rubric    `json:"scores" db:"-"`
	Comments   string    `json:"comments" db:"comments"`
	Timestamp  time.Time `json:"timestamp" db:"created_at"`
}
