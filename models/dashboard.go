package models

import "time"

type DashboardStats struct {
	TotalTeams      int `json:"total_teams"`
	JuniorTeams     int `json:"junior_teams"`
	SeniorTeams     int `json:"senior_teams"`
	RegisteredTeams int `json:"registered_teams"`
	WaitingTeams    int `json:"waiting_teams"`
	CheckedInTeams  int `json:"checked_in_teams"`
	CompletedTeams  int `json:"completed_teams"`
}

// ReportRow is a team joined with its aggregate, if one exists.
type ReportRow struct {
	Team  Team       `json:"team"`
	Score *TeamScore `json:"score,omitempty"`
}

type ExportArchive struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
