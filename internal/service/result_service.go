package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
)

// ResultFilter is the AND-conjunction of optional report filters. String
// matching is case-insensitive; FromDate and ToDate are inclusive calendar
// days compared against the attempt start; the score range only ever matches
// completed rows.
type ResultFilter struct {
	Job       string
	FromDate  *time.Time
	ToDate    *time.Time
	Candidate string
	MinScore  *float64
	MaxScore  *float64
	Status    string
}

// ResultService builds the HR results report: one row per attempt plus one
// synthesized not-started row per candidate without any attempt.
type ResultService interface {
	ListResults(filter ResultFilter) ([]dto.ResultRowDTO, error)
}

type resultService struct {
	attemptRepo   repository.AttemptRepository
	candidateRepo repository.CandidateRepository
}

func NewResultService(attemptRepo repository.AttemptRepository, candidateRepo repository.CandidateRepository) ResultService {
	return &resultService{attemptRepo: attemptRepo, candidateRepo: candidateRepo}
}

func (s *resultService) ListResults(filter ResultFilter) ([]dto.ResultRowDTO, error) {
	attempts, err := s.attemptRepo.FindAllWithCandidates()
	if err != nil {
		log.Error().Err(err).Msg("ListResults: failed to load attempts")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}

	numbers := attemptNumbers(attempts)
	withAttempts := make(map[uint]bool, len(attempts))

	now := time.Now()
	rows := make([]dto.ResultRowDTO, 0, len(attempts))
	for _, attempt := range attempts {
		withAttempts[attempt.CandidateID] = true
		rows = append(rows, attemptRow(attempt, numbers[attempt.ID], now))
	}

	statusFilter := normalizeFilter(filter.Status)
	if statusFilter == "" || statusFilter == string(dto.StatusNotStarted) {
		notStarted, err := s.notStartedRows(withAttempts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, notStarted...)
	}

	filtered := rows[:0]
	for _, row := range rows {
		if matchesFilter(row, filter) {
			filtered = append(filtered, row)
		}
	}

	// Newest first; not-started rows have no start time and sort as oldest.
	sort.SliceStable(filtered, func(i, j int) bool {
		return startedAtOrZero(filtered[i]).After(startedAtOrZero(filtered[j]))
	})

	return filtered, nil
}

func attemptNumbers(attempts []model.Attempt) map[uint]int {
	byCandidate := make(map[uint][]model.Attempt)
	for _, a := range attempts {
		byCandidate[a.CandidateID] = append(byCandidate[a.CandidateID], a)
	}

	numbers := make(map[uint]int, len(attempts))
	for _, candidateAttempts := range byCandidate {
		sort.Slice(candidateAttempts, func(i, j int) bool {
			return candidateAttempts[i].StartedAt.Before(candidateAttempts[j].StartedAt)
		})
		for i, a := range candidateAttempts {
			numbers[a.ID] = i + 1
		}
	}
	return numbers
}

func attemptRow(attempt model.Attempt, number int, now time.Time) dto.ResultRowDTO {
	status := dto.StatusInProgress
	end := now
	if attempt.Finished {
		status = dto.StatusCompleted
		if attempt.FinishedAt != nil {
			end = *attempt.FinishedAt
		}
	}

	duration := int64(end.Sub(attempt.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	return dto.ResultRowDTO{
		Status:        status,
		CandidateID:   attempt.CandidateID,
		CandidateName: attempt.Candidate.FullName,
		Login:         attempt.Candidate.Login,
		Profession:    attempt.Profession,
		Attempt: &dto.AttemptResultDTO{
			AttemptID:       attempt.ID,
			AttemptNumber:   number,
			CorrectAnswers:  attempt.CorrectAnswers,
			TotalQuestions:  attempt.TotalQuestions,
			Score:           attempt.Score,
			StartedAt:       attempt.StartedAt,
			FinishedAt:      attempt.FinishedAt,
			DurationSeconds: duration,
		},
	}
}

func (s *resultService) notStartedRows(withAttempts map[uint]bool) ([]dto.ResultRowDTO, error) {
	candidates, err := s.candidateRepo.FindAll()
	if err != nil {
		log.Error().Err(err).Msg("ListResults: failed to load candidates")
		return nil, fmt.Errorf("error fetching candidates: %w", err)
	}

	var rows []dto.ResultRowDTO
	for _, c := range candidates {
		if withAttempts[c.ID] {
			continue
		}
		rows = append(rows, dto.ResultRowDTO{
			Status:        dto.StatusNotStarted,
			CandidateID:   c.ID,
			CandidateName: c.FullName,
			Login:         c.Login,
			Profession:    c.Profession,
		})
	}
	return rows, nil
}

func matchesFilter(row dto.ResultRowDTO, filter ResultFilter) bool {
	if job := normalizeFilter(filter.Job); job != "" && job != strings.ToLower(row.Profession) {
		return false
	}

	if filter.FromDate != nil || filter.ToDate != nil {
		if row.Attempt == nil {
			return false
		}
		startedAt := row.Attempt.StartedAt
		if filter.FromDate != nil && startedAt.Before(startOfDay(*filter.FromDate)) {
			return false
		}
		if filter.ToDate != nil && !startedAt.Before(startOfDay(*filter.ToDate).AddDate(0, 0, 1)) {
			return false
		}
	}

	if query := normalizeFilter(filter.Candidate); query != "" {
		name := strings.ToLower(row.CandidateName)
		login := strings.ToLower(row.Login)
		if !strings.Contains(name, query) && !strings.Contains(login, query) {
			return false
		}
	}

	if filter.MinScore != nil || filter.MaxScore != nil {
		if row.Status != dto.StatusCompleted || row.Attempt == nil || row.Attempt.Score == nil {
			return false
		}
		if filter.MinScore != nil && *row.Attempt.Score < *filter.MinScore {
			return false
		}
		if filter.MaxScore != nil && *row.Attempt.Score > *filter.MaxScore {
			return false
		}
	}

	if status := normalizeFilter(filter.Status); status != "" && status != string(row.Status) {
		return false
	}

	return true
}

func normalizeFilter(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startedAtOrZero(row dto.ResultRowDTO) time.Time {
	if row.Attempt == nil {
		return time.Time{}
	}
	return row.Attempt.StartedAt
}
