package models

import "time"

type TeamCategory string

const (
	CategoryJunior TeamCategory = "jr"
	CategorySenior TeamCategory = "sr"
)

func (c TeamCategory) Valid() bool {
	return c == CategoryJunior || c == CategorySenior
}

type TeamStatus string

const (
	TeamStatusRegistered TeamStatus = "registered"
	TeamStatusWaiting    TeamStatus = "waiting"
	TeamStatusCheckedIn  TeamStatus = "checked-in"
	TeamStatusCompleted  TeamStatus = "completed"
)

// Team is one competing team. TeamNumber is the operator-assigned natural key,
// ID is the storage-generated record id.
type Team struct {
	ID          int          `json:"id" db:"id"`
	TeamNumber  string       `json:"team_number" db:"team_number"`
	TeamName    string       `json:"team_name" db:"team_name"`
	SchoolName  string       `json:"school_name" db:"school_name"`
	Student1    string       `json:"student1" db:"student1"`
	Student2    string       `json:"student2" db:"student2"`
	Category    TeamCategory `json:"category" db:"category"`
	Status      TeamStatus   `json:"status" db:"status"`
	ArrivalTime *time.Time   `json:"arrival_time,omitempty" db:"arrival_time"`
	CheckInTime *time.Time   `json:"check_in_time,omitempty" db:"check_in_time"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
