package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lshigami/Margay/config"
	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamService is the candidate-facing attempt engine: it starts attempts by
// freezing the profession's active question bank, autosaves progress and
// finalizes attempts exactly once.
type ExamService interface {
	ListQuestions(candidateID uint) ([]dto.ProfessionQuestionDTO, error)
	Start(candidateID uint) (*dto.StartAttemptResponseDTO, error)
	SaveProgress(attemptID, candidateID uint, answers []dto.AnswerRequestDTO) (*dto.ProgressResponseDTO, error)
	GetProgress(attemptID, candidateID uint) (*dto.ProgressResponseDTO, error)
	Submit(attemptID, candidateID uint, answers []dto.AnswerRequestDTO) (*dto.SubmitResponseDTO, error)
}

type examService struct {
	candidateRepo       repository.CandidateRepository
	questionRepo        repository.QuestionRepository
	attemptRepo         repository.AttemptRepository
	attemptQuestionRepo repository.AttemptQuestionRepository
	attemptAnswerRepo   repository.AttemptAnswerRepository
	db                  *gorm.DB
	examCfg             config.Exam
}

func NewExamService(
	candidateRepo repository.CandidateRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	attemptQuestionRepo repository.AttemptQuestionRepository,
	attemptAnswerRepo repository.AttemptAnswerRepository,
	db *gorm.DB,
	cfg *config.Config,
) ExamService {
	return &examService{
		candidateRepo:       candidateRepo,
		questionRepo:        questionRepo,
		attemptRepo:         attemptRepo,
		attemptQuestionRepo: attemptQuestionRepo,
		attemptAnswerRepo:   attemptAnswerRepo,
		db:                  db,
		examCfg:             cfg.Exam,
	}
}

func (s *examService) ListQuestions(candidateID uint) ([]dto.ProfessionQuestionDTO, error) {
	candidate, err := s.activeCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.FindAllActiveByProfession(candidate.Profession)
	if err != nil {
		return nil, fmt.Errorf("error fetching questions for profession %s: %w", candidate.Profession, err)
	}

	result := make([]dto.ProfessionQuestionDTO, 0, len(questions))
	for _, q := range questions {
		result = append(result, dto.ProfessionQuestionDTO{QuestionID: q.ID, Title: q.Title, Profession: q.Profession})
	}
	return result, nil
}

// Start creates a new attempt by snapshotting the profession's full active
// question set. Starting while an unfinished attempt exists returns that
// attempt unchanged, so the call is idempotent. The unfinished lookup, the
// cap check and the create run in one transaction, serialized per candidate
// by a lock on the candidate row, so concurrent starts cannot both pass the
// lookup and mint two unfinished attempts.
func (s *examService) Start(candidateID uint) (*dto.StartAttemptResponseDTO, error) {
	candidate, err := s.activeCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	var (
		attempt model.Attempt
		resumed bool
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// No-op update takes the candidate's row lock for the rest of the
		// transaction; FOR UPDATE would do the same but is not portable.
		err := tx.Model(&model.Candidate{}).
			Where("id = ?", candidate.ID).
			Update("updated_at", gorm.Expr("updated_at")).Error
		if err != nil {
			return fmt.Errorf("error locking candidate: %w", err)
		}

		err = tx.Where("candidate_id = ? AND finished = ?", candidate.ID, false).
			Order("started_at DESC").
			First(&attempt).Error
		if err == nil {
			resumed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error looking up unfinished attempt: %w", err)
		}

		if s.examCfg.MaxAttempts > 0 {
			var count int64
			err := tx.Model(&model.Attempt{}).
				Where("candidate_id = ?", candidate.ID).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("error counting attempts: %w", err)
			}
			if count >= int64(s.examCfg.MaxAttempts) {
				return fmt.Errorf("%w: candidateId=%d maxAttempts=%d", ErrAttemptLimitExceeded, candidate.ID, s.examCfg.MaxAttempts)
			}
		}

		var questions []model.Question
		err = tx.
			Where("active = ? AND LOWER(profession) = LOWER(?)", true, candidate.Profession).
			Order("id DESC").
			Find(&questions).Error
		if err != nil {
			return fmt.Errorf("error loading question bank: %w", err)
		}
		if len(questions) == 0 {
			return fmt.Errorf("%w: %s", ErrNoQuestionsForProfession, candidate.Profession)
		}

		attempt = model.Attempt{
			CandidateID:     candidate.ID,
			Profession:      candidate.Profession,
			Finished:        false,
			TotalQuestions:  len(questions),
			DurationMinutes: s.examCfg.DurationMinutes,
			StartedAt:       time.Now(),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}

		frozen := make([]model.AttemptQuestion, len(questions))
		for i, q := range questions {
			frozen[i] = model.AttemptQuestion{
				AttemptID:    attempt.ID,
				QuestionID:   q.ID,
				DisplayOrder: i + 1,
			}
		}
		if err := tx.Create(&frozen).Error; err != nil {
			return fmt.Errorf("failed to freeze question set: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("candidateID", candidate.ID).Msg("Start failed")
		return nil, err
	}

	if resumed {
		log.Info().Uint("attemptID", attempt.ID).Uint("candidateID", candidate.ID).Msg("Start: returning existing unfinished attempt")
	} else {
		log.Info().
			Uint("attemptID", attempt.ID).
			Uint("candidateID", candidate.ID).
			Str("profession", candidate.Profession).
			Int("questionCount", attempt.TotalQuestions).
			Msg("Attempt started")
	}

	return s.buildStartResponse(&attempt)
}

// SaveProgress upserts the submitted answers into the attempt's answer ledger.
// Replaying the same payload produces the same stored state. The finished
// check and the upsert share one transaction: a guarded no-op update on the
// attempt row locks it and fails when a concurrent submit finalized first, so
// a finished attempt's ledger can never be rewritten.
func (s *examService) SaveProgress(attemptID, candidateID uint, answers []dto.AnswerRequestDTO) (*dto.ProgressResponseDTO, error) {
	attempt, err := s.ownedUnfinishedAttempt(attemptID, candidateID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND candidate_id = ? AND finished = ?", attemptID, candidateID, false).
			Update("updated_at", gorm.Expr("updated_at"))
		if res.Error != nil {
			return fmt.Errorf("error locking attempt: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: attemptId=%d", ErrAttemptFinished, attemptID)
		}

		questions, options, err := s.loadFrozenSet(tx, attemptID)
		if err != nil {
			return err
		}

		rows := resolveAnswers(answers, attemptID, questions, options)
		if len(rows) > 0 {
			if err := upsertAnswers(tx, rows); err != nil {
				return fmt.Errorf("failed to save progress: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildProgressResponse(attempt)
}

func (s *examService) GetProgress(attemptID, candidateID uint) (*dto.ProgressResponseDTO, error) {
	attempt, err := s.attemptRepo.FindByIDAndCandidateID(attemptID, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: attemptId=%d candidateId=%d", ErrAttemptNotFound, attemptID, candidateID)
		}
		return nil, fmt.Errorf("error loading attempt: %w", err)
	}
	return s.buildProgressResponse(attempt)
}

// Submit applies the final answer payload, tallies correctness across the full
// frozen question set and finalizes the attempt. Finishing is a
// compare-and-set on the finished flag inside the transaction, so of two
// concurrent submits only one finalizes; the other fails with
// ErrAttemptFinished.
func (s *examService) Submit(attemptID, candidateID uint, answers []dto.AnswerRequestDTO) (*dto.SubmitResponseDTO, error) {
	if _, err := s.ownedUnfinishedAttempt(attemptID, candidateID); err != nil {
		return nil, err
	}

	var resp *dto.SubmitResponseDTO
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Same lock-or-fail guard as SaveProgress: holds the attempt row so
		// no save can land between the tally below and the finalize.
		lock := tx.Model(&model.Attempt{}).
			Where("id = ? AND candidate_id = ? AND finished = ?", attemptID, candidateID, false).
			Update("updated_at", gorm.Expr("updated_at"))
		if lock.Error != nil {
			return fmt.Errorf("error locking attempt: %w", lock.Error)
		}
		var attempt model.Attempt
		if err := tx.Where("id = ? AND candidate_id = ?", attemptID, candidateID).First(&attempt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: attemptId=%d candidateId=%d", ErrAttemptNotFound, attemptID, candidateID)
			}
			return fmt.Errorf("error loading attempt: %w", err)
		}
		if lock.RowsAffected == 0 || attempt.Finished {
			return fmt.Errorf("%w: attemptId=%d", ErrAttemptFinished, attemptID)
		}

		questions, options, err := s.loadFrozenSet(tx, attemptID)
		if err != nil {
			return err
		}

		rows := resolveAnswers(answers, attemptID, questions, options)
		if len(rows) > 0 {
			if err := upsertAnswers(tx, rows); err != nil {
				return fmt.Errorf("failed to apply final answers: %w", err)
			}
		}

		var stored []model.AttemptAnswer
		if err := tx.Where("attempt_id = ?", attemptID).Find(&stored).Error; err != nil {
			return fmt.Errorf("error loading answers for tally: %w", err)
		}

		correct := 0
		for _, answer := range stored {
			if _, inSet := questions[answer.QuestionID]; inSet && answer.Correct {
				correct++
			}
		}

		score := 0.0
		if attempt.TotalQuestions > 0 {
			score = roundScore(float64(correct) * 100.0 / float64(attempt.TotalQuestions))
		}

		now := time.Now()
		// The guard on finished=false is what makes duplicate concurrent
		// submits lose: their UPDATE matches zero rows and rolls back.
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND finished = ?", attempt.ID, false).
			Updates(map[string]any{
				"finished":        true,
				"finished_at":     now,
				"correct_answers": correct,
				"score":           score,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to finalize attempt: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: attemptId=%d", ErrAttemptFinished, attemptID)
		}

		resp = &dto.SubmitResponseDTO{
			AttemptID:      attempt.ID,
			CorrectAnswers: correct,
			TotalQuestions: attempt.TotalQuestions,
			Score:          score,
			StartedAt:      attempt.StartedAt,
			FinishedAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("attemptID", resp.AttemptID).
		Uint("candidateID", candidateID).
		Float64("score", resp.Score).
		Msg("Attempt submitted")

	return resp, nil
}

func (s *examService) activeCandidate(candidateID uint) (*model.Candidate, error) {
	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: candidateId=%d", ErrCandidateNotFound, candidateID)
		}
		return nil, fmt.Errorf("error loading candidate: %w", err)
	}
	if !candidate.Active {
		return nil, fmt.Errorf("%w: candidateId=%d", ErrCandidateInactive, candidateID)
	}
	return candidate, nil
}

func (s *examService) ownedUnfinishedAttempt(attemptID, candidateID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByIDAndCandidateID(attemptID, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: attemptId=%d candidateId=%d", ErrAttemptNotFound, attemptID, candidateID)
		}
		return nil, fmt.Errorf("error loading attempt: %w", err)
	}
	if attempt.Finished {
		return nil, fmt.Errorf("%w: attemptId=%d", ErrAttemptFinished, attemptID)
	}
	return attempt, nil
}

// loadFrozenSet returns the attempt's frozen questions keyed by id and every
// option of those questions keyed by option id, read through the given handle
// so the same lookup works inside and outside transactions.
func (s *examService) loadFrozenSet(db *gorm.DB, attemptID uint) (map[uint]model.Question, map[uint]model.Option, error) {
	var frozen []model.AttemptQuestion
	err := db.Preload("Question").Where("attempt_id = ?", attemptID).Find(&frozen).Error
	if err != nil {
		return nil, nil, fmt.Errorf("error loading frozen question set: %w", err)
	}

	questions := make(map[uint]model.Question, len(frozen))
	questionIDs := make([]uint, 0, len(frozen))
	for _, aq := range frozen {
		questions[aq.QuestionID] = aq.Question
		questionIDs = append(questionIDs, aq.QuestionID)
	}

	options := make(map[uint]model.Option)
	if len(questionIDs) > 0 {
		var optionRows []model.Option
		if err := db.Where("question_id IN ?", questionIDs).Find(&optionRows).Error; err != nil {
			return nil, nil, fmt.Errorf("error loading options: %w", err)
		}
		for _, o := range optionRows {
			options[o.ID] = o
		}
	}

	return questions, options, nil
}

// resolveAnswers normalizes an answer payload against the frozen question set.
// Questions outside the attempt are skipped, options belonging to a different
// question are treated as no selection. Malformed references never become
// errors; a stale client payload must not corrupt scoring.
func resolveAnswers(
	answers []dto.AnswerRequestDTO,
	attemptID uint,
	questions map[uint]model.Question,
	options map[uint]model.Option,
) []model.AttemptAnswer {
	rows := make([]model.AttemptAnswer, 0, len(answers))
	for _, answer := range answers {
		question, inSet := questions[answer.QuestionID]
		if !inSet {
			log.Warn().Uint("questionID", answer.QuestionID).Uint("attemptID", attemptID).Msg("Answer for question outside attempt, skipping")
			continue
		}

		var selected *model.Option
		if answer.SelectedOptionID != nil {
			if option, ok := options[*answer.SelectedOptionID]; ok && option.QuestionID == question.ID {
				selected = &option
			}
		}

		row := model.AttemptAnswer{
			AttemptID:  attemptID,
			QuestionID: question.ID,
			Correct:    selected != nil && selected.Correct,
		}
		if selected != nil {
			row.SelectedOptionID = &selected.ID
		}
		rows = append(rows, row)
	}
	return rows
}

// upsertAnswers writes answer rows keyed by (attempt_id, question_id):
// insert when the pair is new, overwrite selection and correctness otherwise.
func upsertAnswers(tx *gorm.DB, rows []model.AttemptAnswer) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "correct"}),
	}).Create(&rows).Error
}

func (s *examService) buildStartResponse(attempt *model.Attempt) (*dto.StartAttemptResponseDTO, error) {
	frozen, err := s.attemptQuestionRepo.FindAllByAttemptID(attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading attempt questions: %w", err)
	}

	questionIDs := make([]uint, 0, len(frozen))
	for _, aq := range frozen {
		questionIDs = append(questionIDs, aq.QuestionID)
	}
	optionRows, err := s.questionRepo.FindOptionsByQuestionIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading options: %w", err)
	}
	optionsByQuestion := make(map[uint][]model.Option)
	for _, o := range optionRows {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], o)
	}

	questions := make([]dto.QuestionPayloadDTO, 0, len(frozen))
	for _, aq := range frozen {
		shuffled := shuffleOptions(optionsByQuestion[aq.QuestionID])
		payloads := make([]dto.OptionPayloadDTO, 0, len(shuffled))
		for _, o := range shuffled {
			payloads = append(payloads, dto.OptionPayloadDTO{OptionID: o.ID, Text: o.Text})
		}
		questions = append(questions, dto.QuestionPayloadDTO{
			QuestionID: aq.QuestionID,
			Text:       aq.Question.Text,
			Options:    payloads,
		})
	}

	saved, _, err := s.savedAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	number, err := s.attemptNumber(attempt)
	if err != nil {
		return nil, err
	}

	duration := s.effectiveDuration(attempt)
	return &dto.StartAttemptResponseDTO{
		AttemptID:       attempt.ID,
		AttemptNumber:   number,
		Profession:      attempt.Profession,
		TotalQuestions:  attempt.TotalQuestions,
		DurationMinutes: duration,
		StartedAt:       attempt.StartedAt,
		EndsAt:          attempt.StartedAt.Add(time.Duration(duration) * time.Minute),
		Questions:       questions,
		SavedAnswers:    saved,
	}, nil
}

func (s *examService) buildProgressResponse(attempt *model.Attempt) (*dto.ProgressResponseDTO, error) {
	saved, answered, err := s.savedAnswers(attempt.ID)
	if err != nil {
		return nil, err
	}

	duration := s.effectiveDuration(attempt)
	return &dto.ProgressResponseDTO{
		AttemptID:      attempt.ID,
		AnsweredCount:  answered,
		TotalQuestions: attempt.TotalQuestions,
		StartedAt:      attempt.StartedAt,
		EndsAt:         attempt.StartedAt.Add(time.Duration(duration) * time.Minute),
		SavedAnswers:   saved,
	}, nil
}

func (s *examService) savedAnswers(attemptID uint) ([]dto.SavedAnswerDTO, int, error) {
	answers, err := s.attemptAnswerRepo.FindAllByAttemptID(attemptID)
	if err != nil {
		return nil, 0, fmt.Errorf("error loading saved answers: %w", err)
	}

	saved := make([]dto.SavedAnswerDTO, 0, len(answers))
	answered := 0
	for _, a := range answers {
		if a.SelectedOptionID != nil {
			answered++
		}
		saved = append(saved, dto.SavedAnswerDTO{QuestionID: a.QuestionID, SelectedOptionID: a.SelectedOptionID})
	}
	return saved, answered, nil
}

// attemptNumber is the attempt's 1-based rank among the candidate's attempts
// ordered by start time. Derived on read, never stored.
func (s *examService) attemptNumber(attempt *model.Attempt) (int, error) {
	attempts, err := s.attemptRepo.FindAllByCandidateIDOrderByStartedAt(attempt.CandidateID)
	if err != nil {
		return 0, fmt.Errorf("error numbering attempts: %w", err)
	}
	for i, a := range attempts {
		if a.ID == attempt.ID {
			return i + 1, nil
		}
	}
	return 1, nil
}

func (s *examService) effectiveDuration(attempt *model.Attempt) int {
	if attempt.DurationMinutes > 0 {
		return attempt.DurationMinutes
	}
	return s.examCfg.DurationMinutes
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
