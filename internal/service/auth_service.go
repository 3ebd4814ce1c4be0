package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService authenticates candidates. It is a thin collaborator of the
// attempt engine; passwords are bcrypt-hashed, with a plaintext comparison
// fallback for rows seeded before hashing was introduced.
type AuthService interface {
	Login(req dto.LoginRequestDTO) (*dto.LoginResponseDTO, error)
	PassportLogin(req dto.PassportLoginRequestDTO) (*dto.LoginResponseDTO, error)
}

type authService struct {
	candidateRepo repository.CandidateRepository
}

func NewAuthService(candidateRepo repository.CandidateRepository) AuthService {
	return &authService{candidateRepo: candidateRepo}
}

func (s *authService) Login(req dto.LoginRequestDTO) (*dto.LoginResponseDTO, error) {
	login := strings.TrimSpace(req.Login)

	candidate, err := s.findActiveByLogin(login)
	if err != nil {
		return nil, err
	}

	if !passwordMatches(req.Password, candidate.PasswordHash) {
		return nil, fmt.Errorf("%w: login=%s", ErrInvalidCredentials, login)
	}

	log.Info().Uint("candidateID", candidate.ID).Str("login", candidate.Login).Msg("Candidate login success")
	return toLoginResponse(candidate), nil
}

// PassportLogin authenticates with passport number plus full name; the
// passport number is the candidate's login and also their password.
func (s *authService) PassportLogin(req dto.PassportLoginRequestDTO) (*dto.LoginResponseDTO, error) {
	passport := strings.TrimSpace(req.Passport)

	candidate, err := s.findActiveByLogin(passport)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(candidate.FullName), strings.TrimSpace(req.FullName)) {
		return nil, fmt.Errorf("%w: full name and passport do not match", ErrInvalidCredentials)
	}

	if !passwordMatches(passport, candidate.PasswordHash) {
		return nil, fmt.Errorf("%w: login=%s", ErrInvalidCredentials, passport)
	}

	log.Info().Uint("candidateID", candidate.ID).Str("login", candidate.Login).Msg("Candidate passport login success")
	return toLoginResponse(candidate), nil
}

func (s *authService) findActiveByLogin(login string) (*model.Candidate, error) {
	candidate, err := s.candidateRepo.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: login=%s", ErrInvalidCredentials, login)
		}
		return nil, fmt.Errorf("error loading candidate: %w", err)
	}
	if !candidate.Active {
		return nil, fmt.Errorf("%w: candidateId=%d", ErrCandidateInactive, candidate.ID)
	}
	return candidate, nil
}

func passwordMatches(raw, stored string) bool {
	if strings.TrimSpace(stored) == "" {
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw)); err == nil {
		return true
	}
	return !isBcryptHash(stored) && raw == stored
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func toLoginResponse(candidate *model.Candidate) *dto.LoginResponseDTO {
	return &dto.LoginResponseDTO{
		CandidateID: candidate.ID,
		FullName:    candidate.FullName,
		Profession:  candidate.Profession,
		Login:       candidate.Login,
	}
}
