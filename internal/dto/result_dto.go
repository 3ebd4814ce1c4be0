package dto

import "time"

// ResultStatus discriminates the three kinds of result rows.
type ResultStatus string

const (
	StatusCompleted  ResultStatus = "completed"
	StatusInProgress ResultStatus = "in-progress"
	StatusNotStarted ResultStatus = "not-started"
)

// AttemptResultDTO carries the attempt-specific part of a result row. It is
// only present on completed and in-progress rows; not-started rows have no
// attempt to describe. CorrectAnswers and Score stay nil until the attempt
// is finished.
type AttemptResultDTO struct {
	AttemptID       uint       `json:"attempt_id"`
	AttemptNumber   int        `json:"attempt_number"`
	CorrectAnswers  *int       `json:"correct_answers,omitempty"`
	TotalQuestions  int        `json:"total_questions"`
	Score           *float64   `json:"score,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
}

// ResultRowDTO is one row of the HR results report. Candidate fields are
// always populated; Attempt is nil exactly when Status is not-started.
type ResultRowDTO struct {
	Status        ResultStatus      `json:"status"`
	CandidateID   uint              `json:"candidate_id"`
	CandidateName string            `json:"candidate_name"`
	Login         string            `json:"login"`
	Profession    string            `json:"profession"`
	Attempt       *AttemptResultDTO `json:"attempt,omitempty"`
}
