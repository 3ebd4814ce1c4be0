package repository

import (
	"github.com/lshigami/Margay/internal/model"
	"gorm.io/gorm"
)

type AttemptQuestionRepository interface {
	// FindAllByAttemptID returns the frozen question set with questions
	// preloaded, in display order.
	FindAllByAttemptID(attemptID uint) ([]model.AttemptQuestion, error)
	ExistsByQuestionID(questionID uint) (bool, error)
}

type attemptQuestionRepository struct {
	db *gorm.DB
}

func NewAttemptQuestionRepository(db *gorm.DB) AttemptQuestionRepository {
	return &attemptQuestionRepository{db: db}
}

func (r *attemptQuestionRepository) FindAllByAttemptID(attemptID uint) ([]model.AttemptQuestion, error) {
	var rows []model.AttemptQuestion
	err := r.db.
		Preload("Question").
		Where("attempt_id = ?", attemptID).
		Order("display_order ASC").
		Find(&rows).Error
	return rows, err
}

func (r *attemptQuestionRepository) ExistsByQuestionID(questionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.AttemptQuestion{}).Where("question_id = ?", questionID).Count(&count).Error
	return count > 0, err
}
