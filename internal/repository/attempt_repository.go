package repository

import (
	"github.com/lshigami/Margay/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	// FindByIDAndCandidateID doubles as the ownership check: a foreign
	// candidate id yields gorm.ErrRecordNotFound, never someone else's attempt.
	FindByIDAndCandidateID(id, candidateID uint) (*model.Attempt, error)
	FindAllByCandidateIDOrderByStartedAt(candidateID uint) ([]model.Attempt, error)
	CountByCandidateID(candidateID uint) (int64, error)
	// FindAllWithCandidates eager-loads candidates for the results report,
	// newest attempts first.
	FindAllWithCandidates() ([]model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindByIDAndCandidateID(id, candidateID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Where("id = ? AND candidate_id = ?", id, candidateID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByCandidateIDOrderByStartedAt(candidateID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Order("started_at ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) CountByCandidateID(candidateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Attempt{}).Where("candidate_id = ?", candidateID).Count(&count).Error
	return count, err
}

func (r *attemptRepository) FindAllWithCandidates() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Preload("Candidate").Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}
