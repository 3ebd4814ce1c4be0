package model

import "time"

// Attempt is one candidate's exam session. Profession is snapshotted from the
// candidate at start time so later profession changes do not rewrite history.
// While Finished is false, FinishedAt, CorrectAnswers and Score stay unset;
// once Finished flips to true the record is immutable.
type Attempt struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	CandidateID     uint       `json:"candidate_id" gorm:"not null;index"`
	Candidate       Candidate  `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	Profession      string     `json:"profession" gorm:"not null"`
	Finished        bool       `json:"finished" gorm:"not null;index"`
	TotalQuestions  int        `json:"total_questions" gorm:"not null"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null"`
	StartedAt       time.Time  `json:"started_at" gorm:"not null;index"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	CorrectAnswers  *int       `json:"correct_answers,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AttemptQuestion freezes one question into an attempt at start time. Rows are
// written once and never altered, which keeps an attempt's question set stable
// even when the question bank is edited afterwards.
type AttemptQuestion struct {
	ID           uint     `gorm:"primarykey" json:"id"`
	AttemptID    uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID   uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Question     Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	DisplayOrder int      `json:"display_order" gorm:"not null"`
}

// AttemptAnswer is the single mutable row per (attempt, question). A nil
// SelectedOptionID means unanswered. Mutable until the attempt finishes.
type AttemptAnswer struct {
	ID               uint     `gorm:"primarykey" json:"id"`
	AttemptID        uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_answer"`
	QuestionID       uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_answer"`
	Question         Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOptionID *uint    `json:"selected_option_id,omitempty"`
	SelectedOption   *Option  `json:"selected_option,omitempty" gorm:"foreignKey:SelectedOptionID"`
	Correct          bool     `json:"correct" gorm:"not null"`
}
