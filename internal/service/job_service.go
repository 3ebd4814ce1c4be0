package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// JobService manages the job (profession) catalog. Questions, candidates and
// attempts reference professions by name, so a job rename cascades the new
// name to all of them.
type JobService interface {
	ListJobs() ([]dto.JobResponseDTO, error)
	CreateJob(req dto.CreateJobRequestDTO) (*dto.JobResponseDTO, error)
	UpdateJob(jobID uint, req dto.UpdateJobRequestDTO) (*dto.JobResponseDTO, error)
	DeleteJob(jobID uint) error
}

type jobService struct {
	jobRepo       repository.JobRepository
	candidateRepo repository.CandidateRepository
	questionRepo  repository.QuestionRepository
	db            *gorm.DB
}

func NewJobService(
	jobRepo repository.JobRepository,
	candidateRepo repository.CandidateRepository,
	questionRepo repository.QuestionRepository,
	db *gorm.DB,
) JobService {
	return &jobService{jobRepo: jobRepo, candidateRepo: candidateRepo, questionRepo: questionRepo, db: db}
}

func (s *jobService) ListJobs() ([]dto.JobResponseDTO, error) {
	jobs, err := s.jobRepo.FindAllOrderByName()
	if err != nil {
		return nil, fmt.Errorf("error fetching jobs: %w", err)
	}

	result := make([]dto.JobResponseDTO, 0, len(jobs))
	for _, job := range jobs {
		row, err := s.toJobResponse(&job)
		if err != nil {
			return nil, err
		}
		result = append(result, *row)
	}
	return result, nil
}

func (s *jobService) CreateJob(req dto.CreateJobRequestDTO) (*dto.JobResponseDTO, error) {
	name := strings.TrimSpace(req.Name)

	exists, err := s.jobRepo.ExistsByName(name)
	if err != nil {
		return nil, fmt.Errorf("error checking job name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: name=%s", ErrJobNameExists, name)
	}

	job := &model.Job{
		Name:        name,
		Description: trimDescription(req.Description),
		Active:      req.Active == nil || *req.Active,
		CreatedAt:   time.Now(),
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("database error creating job: %w", err)
	}

	log.Info().Uint("jobID", job.ID).Str("name", job.Name).Msg("Job created")
	return s.toJobResponse(job)
}

func (s *jobService) UpdateJob(jobID uint, req dto.UpdateJobRequestDTO) (*dto.JobResponseDTO, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: jobId=%d", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("error loading job: %w", err)
	}

	previousName := job.Name

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		nextName := strings.TrimSpace(*req.Name)
		taken, err := s.jobRepo.ExistsByNameExcluding(nextName, jobID)
		if err != nil {
			return nil, fmt.Errorf("error checking job name: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("%w: name=%s", ErrJobNameExists, nextName)
		}
		job.Name = nextName
	}
	if req.Description != nil {
		job.Description = trimDescription(req.Description)
	}
	if req.Active != nil {
		job.Active = *req.Active
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(job).Error; err != nil {
			return fmt.Errorf("database error updating job: %w", err)
		}
		if !strings.EqualFold(previousName, job.Name) {
			return renameProfession(tx, previousName, job.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("jobID", job.ID).Str("name", job.Name).Msg("Job updated")
	return s.toJobResponse(job)
}

func (s *jobService) DeleteJob(jobID uint) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: jobId=%d", ErrJobNotFound, jobID)
		}
		return fmt.Errorf("error loading job: %w", err)
	}

	questionCount, err := s.questionRepo.CountByProfession(job.Name)
	if err != nil {
		return fmt.Errorf("error counting questions: %w", err)
	}
	candidateCount, err := s.candidateRepo.CountByProfession(job.Name)
	if err != nil {
		return fmt.Errorf("error counting candidates: %w", err)
	}
	if questionCount > 0 || candidateCount > 0 {
		return fmt.Errorf("%w: candidateCount=%d questionCount=%d", ErrJobInUse, candidateCount, questionCount)
	}

	if err := s.jobRepo.Delete(job.ID); err != nil {
		return fmt.Errorf("database error deleting job: %w", err)
	}

	log.Info().Uint("jobID", job.ID).Str("name", job.Name).Msg("Job deleted")
	return nil
}

func (s *jobService) toJobResponse(job *model.Job) (*dto.JobResponseDTO, error) {
	candidateCount, err := s.candidateRepo.CountByProfession(job.Name)
	if err != nil {
		return nil, fmt.Errorf("error counting candidates: %w", err)
	}
	questionCount, err := s.questionRepo.CountByProfession(job.Name)
	if err != nil {
		return nil, fmt.Errorf("error counting questions: %w", err)
	}

	return &dto.JobResponseDTO{
		JobID:          job.ID,
		Name:           job.Name,
		Description:    job.Description,
		Active:         job.Active,
		CreatedAt:      job.CreatedAt,
		CandidateCount: candidateCount,
		QuestionCount:  questionCount,
	}, nil
}

// renameProfession rewrites the profession string on questions, candidates
// and attempts after a job rename. Attempt rows keep their snapshot semantics
// otherwise; only the label follows the rename.
func renameProfession(tx *gorm.DB, from, to string) error {
	for _, m := range []any{&model.Question{}, &model.Candidate{}, &model.Attempt{}} {
		err := tx.Model(m).
			Where("LOWER(profession) = LOWER(?)", from).
			Update("profession", to).Error
		if err != nil {
			return fmt.Errorf("error renaming profession: %w", err)
		}
	}
	return nil
}

// ensureJob auto-creates a job the first time a profession name is used, so
// question and candidate creation never dangle on a missing catalog entry.
func ensureJob(jobRepo repository.JobRepository, profession string) error {
	name := strings.TrimSpace(profession)
	if name == "" {
		return errors.New("profession is required")
	}

	if _, err := jobRepo.FindByName(name); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error looking up job: %w", err)
	}

	return jobRepo.Create(&model.Job{Name: name, Active: true, CreatedAt: time.Now()})
}

func trimDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
