package models

import (
	"database/sql"
	"time"
)

// Team represents an NFL team
type Team struct {
	ID         int            `db:"id"`
	TeamKey    string         `db:"team_key"`
	City       string         `db:"city"`
	Name       string         `db:"name"`
	Conference sql.NullString `db:"conference"`
	Division   sql.NullString `db:"division"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// TeamInput is used for creating/updating teams
type TeamInput struct {
	Key        string `json:"Key"`
	City       string `json:"City"`
	Name       string `json:"Name"`
	Conference string `json:"Conference"`
	Division   string `json:"Division"`
}

// ToTeam converts TeamInput (from API) to Team model
func (ti *TeamInput) ToTeam() *Team {
	team := &Team{
		TeamKey: ti.Key,
		City:    ti.City,
		Name:    ti.Name,
	}

	if ti.Conference != "" {
		team.Conference = sql.NullString{String: ti.Conference, Valid: true}
	}
	if ti.Division != "" {
		team.Division = sql.NullString{String: ti.Division, Valid: true}
	}

	return team
}
