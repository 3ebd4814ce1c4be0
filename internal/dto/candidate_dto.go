package dto

import "time"

// LoginRequestDTO authenticates a candidate by login and password.
type LoginRequestDTO struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PassportLoginRequestDTO authenticates a candidate by passport number and
// full name. The passport number doubles as the candidate login.
type PassportLoginRequestDTO struct {
	Passport string `json:"passport" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginResponseDTO struct {
	CandidateID uint   `json:"candidate_id"`
	FullName    string `json:"full_name"`
	Profession  string `json:"profession"`
	Login       string `json:"login"`
}

// ProfessionQuestionDTO is one entry of the candidate-facing question listing.
type ProfessionQuestionDTO struct {
	QuestionID uint   `json:"question_id"`
	Title      string `json:"title"`
	Profession string `json:"profession"`
}

type StartAttemptRequestDTO struct {
	CandidateID uint `json:"candidate_id" binding:"required"`
}

// AnswerRequestDTO is one (question, selected option) pair inside a progress
// save or submission. A nil SelectedOptionID clears the answer.
type AnswerRequestDTO struct {
	QuestionID       uint  `json:"question_id" binding:"required"`
	SelectedOptionID *uint `json:"selected_option_id"`
}

type SaveProgressRequestDTO struct {
	CandidateID uint               `json:"candidate_id" binding:"required"`
	Answers     []AnswerRequestDTO `json:"answers" binding:"required,dive"`
}

type SubmitAttemptRequestDTO struct {
	CandidateID uint               `json:"candidate_id" binding:"required"`
	Answers     []AnswerRequestDTO `json:"answers" binding:"required,dive"`
}

// OptionPayloadDTO deliberately omits the correctness flag; candidates only
// ever see option id and text.
type OptionPayloadDTO struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
}

type QuestionPayloadDTO struct {
	QuestionID uint               `json:"question_id"`
	Text       string             `json:"text"`
	Options    []OptionPayloadDTO `json:"options"`
}

type SavedAnswerDTO struct {
	QuestionID       uint  `json:"question_id"`
	SelectedOptionID *uint `json:"selected_option_id"`
}

// StartAttemptResponseDTO is returned both for a fresh start and for an
// idempotent re-start of an unfinished attempt.
type StartAttemptResponseDTO struct {
	AttemptID       uint                 `json:"attempt_id"`
	AttemptNumber   int                  `json:"attempt_number"`
	Profession      string               `json:"profession"`
	TotalQuestions  int                  `json:"total_questions"`
	DurationMinutes int                  `json:"duration_minutes"`
	StartedAt       time.Time            `json:"started_at"`
	EndsAt          time.Time            `json:"ends_at"`
	Questions       []QuestionPayloadDTO `json:"questions"`
	SavedAnswers    []SavedAnswerDTO     `json:"saved_answers"`
}

type ProgressResponseDTO struct {
	AttemptID      uint             `json:"attempt_id"`
	AnsweredCount  int              `json:"answered_count"`
	TotalQuestions int              `json:"total_questions"`
	StartedAt      time.Time        `json:"started_at"`
	EndsAt         time.Time        `json:"ends_at"`
	SavedAnswers   []SavedAnswerDTO `json:"saved_answers"`
}

type SubmitResponseDTO struct {
	AttemptID      uint      `json:"attempt_id"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Score          float64   `json:"score"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
