package models

import "time"

// QuestionType is the closed set of prediction question variants.
// Adding a type means adding a handler in logic; unknown values yield an
// empty distribution rather than an error.
type QuestionType string

const (
	QuestionBinary      QuestionType = "binary"
	QuestionCategorical QuestionType = "categorical"
	QuestionNumeric     QuestionType = "numeric"
)

// Answer pools understood by the pick calculator
const (
	AnswerPoolTeamsActive  = "teams_active"
	AnswerPoolChampionsAll = "champions_all"
)

// QuestionConfig is the per-question answer-pool configuration, stored as
// JSONB alongside the question row. Buckets use the "N-M" (inclusive) or
// "N+" (open-ended) grammar.
type QuestionConfig struct {
	AnswerPool string   `json:"answerPool,omitempty"`
	Buckets    []string `json:"buckets,omitempty"`
}

// Question is a predictable event tied to one tournament
type Question struct {
	ID             int64          `json:"id"`
	TournamentID   int64          `json:"tournament_id"`
	TournamentSlug string         `json:"tournament_slug"`
	Type           QuestionType   `json:"type"`
	Title          string         `json:"title"`
	Config         QuestionConfig `json:"config"`
	Active         bool           `json:"active"`
}

// PickProbability is one (answer, probability) entry of a computed
// distribution, with optional supporting detail for the UI.
type PickProbability struct {
	AnswerKey   string                 `json:"answer_key"`
	Probability float64                `json:"probability"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// ProbabilitySnapshot is an immutable persisted PickProbability. Snapshots
// are written in batches; the latest batch per question is the current
// published distribution.
type ProbabilitySnapshot struct {
	ID          int64                  `json:"id"`
	QuestionID  int64                  `json:"question_id"`
	BatchID     string                 `json:"batch_id"`
	AnswerKey   string                 `json:"answer_key"`
	Probability float64                `json:"probability"`
	Details     map[string]interface{} `json:"details,omitempty"`
	AsOf        time.Time              `json:"as_of"`
}

// TournamentOutcome maps team id to probability of winning the tournament
type TournamentOutcome struct {
	TournamentID int64             `json:"tournament_id"`
	TeamWinProb  map[int64]float64 `json:"team_win_prob"`
}
