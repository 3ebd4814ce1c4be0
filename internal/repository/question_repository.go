package repository

import (
	"github.com/lshigami/Margay/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	Update(question *model.Question) error
	Delete(id uint) error
	FindByID(id uint) (*model.Question, error)
	FindAllActive() ([]model.Question, error)
	// FindAllActiveByProfession is the question bank read the attempt engine
	// snapshots from. Profession matching is case-insensitive.
	FindAllActiveByProfession(profession string) ([]model.Question, error)
	CountByProfession(profession string) (int64, error)

	FindOptionsByQuestionID(questionID uint) ([]model.Option, error)
	FindOptionsByQuestionIDs(questionIDs []uint) ([]model.Option, error)
	ReplaceOptions(questionID uint, options []model.Option) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	// Creates associated options in the same insert when question.Options is set.
	return r.db.Create(question).Error
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Omit("Options").Save(question).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindAllActive() ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("active = ?", true).Order("id DESC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FindAllActiveByProfession(profession string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.
		Where("active = ? AND LOWER(profession) = LOWER(?)", true, profession).
		Order("id DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) CountByProfession(profession string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("LOWER(profession) = LOWER(?)", profession).Count(&count).Error
	return count, err
}

func (r *questionRepository) FindOptionsByQuestionID(questionID uint) ([]model.Option, error) {
	var options []model.Option
	err := r.db.Where("question_id = ?", questionID).Order("id ASC").Find(&options).Error
	return options, err
}

func (r *questionRepository) FindOptionsByQuestionIDs(questionIDs []uint) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var options []model.Option
	err := r.db.Where("question_id IN ?", questionIDs).Order("id ASC").Find(&options).Error
	return options, err
}

func (r *questionRepository) ReplaceOptions(questionID uint, options []model.Option) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		for i := range options {
			options[i].ID = 0
			options[i].QuestionID = questionID
		}
		return tx.Create(&options).Error
	})
}
