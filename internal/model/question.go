package model

import "time"

// Question belongs to exactly one profession's bank. Deactivating a question
// hides it from new attempts; existing attempts keep their frozen copy via
// AttemptQuestion rows.
type Question struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Title      string    `json:"title" gorm:"not null"`
	Profession string    `json:"profession" gorm:"not null;index"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	CreatedBy  string    `json:"created_by" gorm:"not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Options    []Option  `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Option is one answer choice. At most one option per question carries
// Correct=true; question authoring enforces that.
type Option struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	Correct    bool   `json:"correct" gorm:"not null"`
}
