package repository

import (
	"github.com/lshigami/Margay/internal/model"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(job *model.Job) error
	Update(job *model.Job) error
	Delete(id uint) error
	FindByID(id uint) (*model.Job, error)
	FindByName(name string) (*model.Job, error)
	FindAllOrderByName() ([]model.Job, error)
	ExistsByName(name string) (bool, error)
	ExistsByNameExcluding(name string, excludeID uint) (bool, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *model.Job) error {
	return r.db.Create(job).Error
}

func (r *jobRepository) Update(job *model.Job) error {
	return r.db.Save(job).Error
}

func (r *jobRepository) Delete(id uint) error {
	return r.db.Delete(&model.Job{}, id).Error
}

func (r *jobRepository) FindByID(id uint) (*model.Job, error) {
	var job model.Job
	if err := r.db.First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindByName(name string) (*model.Job, error) {
	var job model.Job
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) FindAllOrderByName() ([]model.Job, error) {
	var jobs []model.Job
	if err := r.db.Order("name ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Job{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	return count > 0, err
}

func (r *jobRepository) ExistsByNameExcluding(name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Job{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}
