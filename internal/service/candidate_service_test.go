package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestCandidateService(db *gorm.DB) CandidateService {
	return NewCandidateService(
		repository.NewCandidateRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewJobRepository(db),
	)
}

func TestCreateCandidateHashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)

	resp, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName:   "Ivan Petrov",
		Profession: "electrician",
		Login:      "AB1234567",
		Password:   "AB1234567",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	var stored model.Candidate
	if err := db.First(&stored, resp.CandidateID).Error; err != nil {
		t.Fatalf("loading candidate: %v", err)
	}
	if stored.PasswordHash == "AB1234567" {
		t.Errorf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("AB1234567")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	// The profession is auto-registered as a job.
	var job model.Job
	if err := db.Where("LOWER(name) = ?", "electrician").First(&job).Error; err != nil {
		t.Errorf("job not created for new profession: %v", err)
	}
}

func TestCreateCandidateRejectsDuplicateLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)

	req := dto.CreateCandidateRequestDTO{
		FullName: "Ivan Petrov", Profession: "electrician",
		Login: "AB1234567", Password: "x",
	}
	if _, err := svc.CreateCandidate(req); err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	req.Login = "ab1234567"
	_, err := svc.CreateCandidate(req)
	if !errors.Is(err, ErrLoginExists) {
		t.Errorf("CreateCandidate(duplicate ci login) = %v, want ErrLoginExists", err)
	}
}

func TestUpdateCandidatePassportRotatesLoginAndPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)
	authSvc := newTestAuthService(db)

	created, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName: "Ivan Petrov", Profession: "electrician",
		Login: "AB1234567", Password: "AB1234567",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	updated, err := svc.UpdateCandidatePassport(created.CandidateID, dto.UpdateCandidatePassportRequestDTO{
		Passport: "ZZ9876543",
	})
	if err != nil {
		t.Fatalf("UpdateCandidatePassport: %v", err)
	}
	if updated.Login != "ZZ9876543" {
		t.Errorf("Login = %q, want ZZ9876543", updated.Login)
	}

	// The new passport works as both login and password; the old one is dead.
	if _, err := authSvc.PassportLogin(dto.PassportLoginRequestDTO{Passport: "ZZ9876543", FullName: "Ivan Petrov"}); err != nil {
		t.Errorf("PassportLogin with new passport: %v", err)
	}
	if _, err := authSvc.PassportLogin(dto.PassportLoginRequestDTO{Passport: "AB1234567", FullName: "Ivan Petrov"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("PassportLogin with old passport = %v, want ErrInvalidCredentials", err)
	}
}

func TestUpdateCandidatePassportRejectsTakenLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)

	if _, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName: "Ivan Petrov", Profession: "electrician", Login: "AB1234567", Password: "x",
	}); err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	other, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName: "Maria Sidorova", Profession: "operator", Login: "CD3456789", Password: "x",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	_, err = svc.UpdateCandidatePassport(other.CandidateID, dto.UpdateCandidatePassportRequestDTO{Passport: "AB1234567"})
	if !errors.Is(err, ErrLoginExists) {
		t.Errorf("UpdateCandidatePassport(taken) = %v, want ErrLoginExists", err)
	}
}

func TestDeleteCandidateBlockedByAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)

	created, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName: "Ivan Petrov", Profession: "electrician", Login: "AB1234567", Password: "x",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	attempt := &model.Attempt{
		CandidateID: created.CandidateID, Profession: "electrician",
		TotalQuestions: 1, DurationMinutes: 60, StartedAt: time.Now(),
	}
	if err := db.Create(attempt).Error; err != nil {
		t.Fatalf("creating attempt: %v", err)
	}

	if err := svc.DeleteCandidate(created.CandidateID); !errors.Is(err, ErrCandidateHasAttempts) {
		t.Errorf("DeleteCandidate(with history) = %v, want ErrCandidateHasAttempts", err)
	}
}

func TestDeleteCandidateWithoutHistory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestCandidateService(db)

	created, err := svc.CreateCandidate(dto.CreateCandidateRequestDTO{
		FullName: "Ivan Petrov", Profession: "electrician", Login: "AB1234567", Password: "x",
	})
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}
	if err := svc.DeleteCandidate(created.CandidateID); err != nil {
		t.Fatalf("DeleteCandidate: %v", err)
	}

	var count int64
	if err := db.Model(&model.Candidate{}).Count(&count).Error; err != nil {
		t.Fatalf("counting candidates: %v", err)
	}
	if count != 0 {
		t.Errorf("candidate rows = %d, want 0", count)
	}
}
