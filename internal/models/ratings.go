package models

import "time"

// Rating record source tags. Seed rows are written the first time an unseen
// team is read; rebuild rows are written by the full Elo replay, which clears
// prior rebuild/local rows for the involved teams first.
const (
	RatingSourceSeed    = "elo-seed"
	RatingSourceLocal   = "elo-local"
	RatingSourceRebuild = "elo-rebuild"
)

// TeamRating is one append-only entry in a team's rating history.
// The current rating is the most recent entry.
type TeamRating struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	Rating    float64   `json:"rating"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// RebuildResult summarizes a full Elo replay over a tournament's
// completed matches.
type RebuildResult struct {
	TeamsUpdated     int `json:"teams_updated"`
	MatchesProcessed int `json:"matches_processed"`
}
