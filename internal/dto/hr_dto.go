package dto

import "time"

type OptionRequestDTO struct {
	Text    string `json:"text" binding:"required"`
	Correct *bool  `json:"correct" binding:"required"`
}

// CreateTestRequestDTO creates one question ("test") with its options for a
// profession's bank. Exactly one option must be marked correct.
type CreateTestRequestDTO struct {
	Title        string             `json:"title" binding:"required"`
	Profession   string             `json:"profession" binding:"required"`
	QuestionText string             `json:"question_text" binding:"required"`
	Options      []OptionRequestDTO `json:"options" binding:"required,min=2,dive"`
	Active       *bool              `json:"active"`
}

type UpdateTestRequestDTO struct {
	Title        *string `json:"title"`
	Profession   *string `json:"profession"`
	QuestionText *string `json:"question_text"`
	Active       *bool   `json:"active"`
}

// UpdateQuestionRequestDTO edits question text and optionally replaces the
// whole option set.
type UpdateQuestionRequestDTO struct {
	Text    *string            `json:"text"`
	Options []OptionRequestDTO `json:"options"`
}

type OptionResponseDTO struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
}

type TestResponseDTO struct {
	TestID       uint                `json:"test_id"`
	Title        string              `json:"title"`
	Profession   string              `json:"profession"`
	QuestionText string              `json:"question_text"`
	Active       bool                `json:"active"`
	CreatedBy    string              `json:"created_by"`
	Options      []OptionResponseDTO `json:"options"`
}

type CreateCandidateRequestDTO struct {
	FullName   string `json:"full_name" binding:"required"`
	Profession string `json:"profession" binding:"required"`
	Login      string `json:"login" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Active     *bool  `json:"active"`
}

type UpdateCandidateRequestDTO struct {
	FullName   *string `json:"full_name"`
	Profession *string `json:"profession"`
	Password   *string `json:"password"`
	Active     *bool   `json:"active"`
}

type UpdateCandidatePassportRequestDTO struct {
	Passport string `json:"passport" binding:"required"`
}

type CandidateResponseDTO struct {
	CandidateID uint   `json:"candidate_id"`
	FullName    string `json:"full_name"`
	Profession  string `json:"profession"`
	Login       string `json:"login"`
	Active      bool   `json:"active"`
}

type CreateJobRequestDTO struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type UpdateJobRequestDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type JobResponseDTO struct {
	JobID          uint      `json:"job_id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	CandidateCount int64     `json:"candidate_count"`
	QuestionCount  int64     `json:"question_count"`
}
