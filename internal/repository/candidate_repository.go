package repository

import (
	"github.com/lshigami/Margay/internal/model"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Create(candidate *model.Candidate) error
	Update(candidate *model.Candidate) error
	Delete(id uint) error
	FindByID(id uint) (*model.Candidate, error)
	FindByLogin(login string) (*model.Candidate, error)
	FindAll() ([]model.Candidate, error)
	ExistsByLogin(login string) (bool, error)
	ExistsByLoginExcluding(login string, excludeID uint) (bool, error)
	CountByProfession(profession string) (int64, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) Create(candidate *model.Candidate) error {
	return r.db.Create(candidate).Error
}

func (r *candidateRepository) Update(candidate *model.Candidate) error {
	return r.db.Save(candidate).Error
}

func (r *candidateRepository) Delete(id uint) error {
	return r.db.Delete(&model.Candidate{}, id).Error
}

func (r *candidateRepository) FindByID(id uint) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByLogin(login string) (*model.Candidate, error) {
	var candidate model.Candidate
	if err := r.db.Where("LOWER(login) = LOWER(?)", login).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindAll() ([]model.Candidate, error) {
	var candidates []model.Candidate
	if err := r.db.Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *candidateRepository) ExistsByLogin(login string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Candidate{}).Where("LOWER(login) = LOWER(?)", login).Count(&count).Error
	return count > 0, err
}

func (r *candidateRepository) ExistsByLoginExcluding(login string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Candidate{}).
		Where("LOWER(login) = LOWER(?) AND id <> ?", login, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *candidateRepository) CountByProfession(profession string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Candidate{}).Where("LOWER(profession) = LOWER(?)", profession).Count(&count).Error
	return count, err
}
