package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CandidateService is the HR-facing candidate administration.
type CandidateService interface {
	ListCandidates() ([]dto.CandidateResponseDTO, error)
	CreateCandidate(req dto.CreateCandidateRequestDTO) (*dto.CandidateResponseDTO, error)
	UpdateCandidate(candidateID uint, req dto.UpdateCandidateRequestDTO) (*dto.CandidateResponseDTO, error)
	UpdateCandidatePassport(candidateID uint, req dto.UpdateCandidatePassportRequestDTO) (*dto.CandidateResponseDTO, error)
	DeleteCandidate(candidateID uint) error
}

type candidateService struct {
	candidateRepo repository.CandidateRepository
	attemptRepo   repository.AttemptRepository
	jobRepo       repository.JobRepository
}

func NewCandidateService(
	candidateRepo repository.CandidateRepository,
	attemptRepo repository.AttemptRepository,
	jobRepo repository.JobRepository,
) CandidateService {
	return &candidateService{candidateRepo: candidateRepo, attemptRepo: attemptRepo, jobRepo: jobRepo}
}

func (s *candidateService) ListCandidates() ([]dto.CandidateResponseDTO, error) {
	candidates, err := s.candidateRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("error fetching candidates: %w", err)
	}

	result := make([]dto.CandidateResponseDTO, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, toCandidateResponse(&c))
	}
	return result, nil
}

func (s *candidateService) CreateCandidate(req dto.CreateCandidateRequestDTO) (*dto.CandidateResponseDTO, error) {
	login := strings.TrimSpace(req.Login)

	exists, err := s.candidateRepo.ExistsByLogin(login)
	if err != nil {
		return nil, fmt.Errorf("error checking login: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: login=%s", ErrLoginExists, login)
	}

	profession := strings.TrimSpace(req.Profession)
	if err := ensureJob(s.jobRepo, profession); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	candidate := &model.Candidate{
		FullName:     strings.TrimSpace(req.FullName),
		Profession:   profession,
		Login:        login,
		PasswordHash: hash,
		Active:       req.Active == nil || *req.Active,
	}
	if err := s.candidateRepo.Create(candidate); err != nil {
		log.Error().Err(err).Msg("CreateCandidate: database error")
		return nil, fmt.Errorf("database error creating candidate: %w", err)
	}

	log.Info().Uint("candidateID", candidate.ID).Str("login", candidate.Login).Msg("Candidate created")
	resp := toCandidateResponse(candidate)
	return &resp, nil
}

func (s *candidateService) UpdateCandidate(candidateID uint, req dto.UpdateCandidateRequestDTO) (*dto.CandidateResponseDTO, error) {
	candidate, err := s.findCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		candidate.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Profession != nil && strings.TrimSpace(*req.Profession) != "" {
		profession := strings.TrimSpace(*req.Profession)
		if err := ensureJob(s.jobRepo, profession); err != nil {
			return nil, err
		}
		candidate.Profession = profession
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		candidate.PasswordHash = hash
	}
	if req.Active != nil {
		candidate.Active = *req.Active
	}

	if err := s.candidateRepo.Update(candidate); err != nil {
		return nil, fmt.Errorf("database error updating candidate: %w", err)
	}

	log.Info().Uint("candidateID", candidate.ID).Str("login", candidate.Login).Msg("Candidate updated")
	resp := toCandidateResponse(candidate)
	return &resp, nil
}

// UpdateCandidatePassport rotates the candidate's passport number, which is
// both login and password.
func (s *candidateService) UpdateCandidatePassport(candidateID uint, req dto.UpdateCandidatePassportRequestDTO) (*dto.CandidateResponseDTO, error) {
	candidate, err := s.findCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	passport := strings.TrimSpace(req.Passport)
	taken, err := s.candidateRepo.ExistsByLoginExcluding(passport, candidateID)
	if err != nil {
		return nil, fmt.Errorf("error checking login: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: login=%s", ErrLoginExists, passport)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(passport), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing passport: %w", err)
	}
	candidate.Login = passport
	candidate.PasswordHash = string(hashed)

	if err := s.candidateRepo.Update(candidate); err != nil {
		return nil, fmt.Errorf("database error updating candidate: %w", err)
	}

	log.Info().Uint("candidateID", candidate.ID).Str("login", candidate.Login).Msg("Candidate passport updated")
	resp := toCandidateResponse(candidate)
	return &resp, nil
}

// DeleteCandidate refuses to remove a candidate with exam history; attempts
// are the permanent record.
func (s *candidateService) DeleteCandidate(candidateID uint) error {
	count, err := s.attemptRepo.CountByCandidateID(candidateID)
	if err != nil {
		return fmt.Errorf("error counting attempts: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: candidateId=%d", ErrCandidateHasAttempts, candidateID)
	}

	if err := s.candidateRepo.Delete(candidateID); err != nil {
		return fmt.Errorf("database error deleting candidate: %w", err)
	}

	log.Info().Uint("candidateID", candidateID).Msg("Candidate deleted")
	return nil
}

func (s *candidateService) findCandidate(candidateID uint) (*model.Candidate, error) {
	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: candidateId=%d", ErrCandidateNotFound, candidateID)
		}
		return nil, fmt.Errorf("error loading candidate: %w", err)
	}
	return candidate, nil
}

// hashPassword bcrypt-hashes the raw value; values that already look like a
// bcrypt hash are stored verbatim so exports can be re-imported.
func hashPassword(password string) (string, error) {
	raw := strings.TrimSpace(password)
	if raw == "" {
		return "", errors.New("password is required")
	}
	if isBcryptHash(raw) {
		return raw, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}

func toCandidateResponse(candidate *model.Candidate) dto.CandidateResponseDTO {
	var resp dto.CandidateResponseDTO
	copier.Copy(&resp, candidate)
	resp.CandidateID = candidate.ID
	return resp
}
