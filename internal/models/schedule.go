package models

import "time"

// Series / match lifecycle states
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Team is a competing team in a tournament
type Team struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Tournament is one event whose bracket the engine reasons about
type Tournament struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Stage groups series within a tournament (play-in, swiss, knockout, ...)
type Stage struct {
	ID           int64    `json:"id"`
	TournamentID int64    `json:"tournament_id"`
	Name         string   `json:"name"`
	Order        int      `json:"order"`
	Series       []Series `json:"series"`
}

// Series is one best-of-N contest. A slot is either a concrete team id or
// empty, in which case a feeder series (FeedsWinnerTo pointing here) fills
// it once resolved. The feed pointers make the series set a DAG whose
// terminal nodes are the finals.
type Series struct {
	ID            int64   `json:"id"`
	StageID       int64   `json:"stage_id"`
	StageOrder    int     `json:"stage_order"`
	Round         int     `json:"round"`
	IndexInRound  int     `json:"index_in_round"`
	BestOf        int     `json:"best_of"`
	Status        string  `json:"status"`
	BlueTeamID    int64   `json:"blue_team_id"`
	RedTeamID     int64   `json:"red_team_id"`
	WinnerTeamID  int64   `json:"winner_team_id"`
	FeedsWinnerTo int64   `json:"feeds_winner_to"`
	FeedsLoserTo  int64   `json:"feeds_loser_to"`
	Matches       []Match `json:"matches"`
}

// Match is a single game inside a series
type Match struct {
	ID           int64      `json:"id"`
	SeriesID     int64      `json:"series_id"`
	GameIndex    int        `json:"game_index"`
	Status       string     `json:"status"`
	BlueTeamID   int64      `json:"blue_team_id"`
	RedTeamID    int64      `json:"red_team_id"`
	WinnerTeamID int64      `json:"winner_team_id"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TournamentSchedule is the full bracket graph for one tournament
type TournamentSchedule struct {
	Tournament Tournament `json:"tournament"`
	Stages     []Stage    `json:"stages"`
}

// AllSeries flattens the schedule's stages into one slice, preserving
// stage order then series order within each stage.
func (s *TournamentSchedule) AllSeries() []*Series {
	var all []*Series
	for i := range s.Stages {
		for j := range s.Stages[i].Series {
			all = append(all, &s.Stages[i].Series[j])
		}
	}
	return all
}
