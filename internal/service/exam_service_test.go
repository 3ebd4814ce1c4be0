package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/lshigami/Margay/config"
	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
)

func TestStartCreatesAttemptWithFrozenQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{DurationMinutes: 45})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 3)

	resp, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if resp.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", resp.TotalQuestions)
	}
	if len(resp.Questions) != 3 {
		t.Errorf("len(Questions) = %d, want 3", len(resp.Questions))
	}
	if resp.AttemptNumber != 1 {
		t.Errorf("AttemptNumber = %d, want 1", resp.AttemptNumber)
	}
	if resp.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", resp.DurationMinutes)
	}
	if got := resp.EndsAt.Sub(resp.StartedAt).Minutes(); got != 45 {
		t.Errorf("EndsAt-StartedAt = %v minutes, want 45", got)
	}

	var frozen []model.AttemptQuestion
	if err := db.Where("attempt_id = ?", resp.AttemptID).Order("display_order").Find(&frozen).Error; err != nil {
		t.Fatalf("loading frozen set: %v", err)
	}
	if len(frozen) != 3 {
		t.Fatalf("frozen set has %d rows, want 3", len(frozen))
	}
	for i, aq := range frozen {
		if aq.DisplayOrder != i+1 {
			t.Errorf("frozen[%d].DisplayOrder = %d, want %d", i, aq.DisplayOrder, i+1)
		}
	}

	for _, q := range resp.Questions {
		if len(q.Options) != 2 {
			t.Errorf("question %d has %d options, want 2", q.QuestionID, len(q.Options))
		}
	}
}

func TestStartIsIdempotentForUnfinishedAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 2)

	first, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	second, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if first.AttemptID != second.AttemptID {
		t.Errorf("second Start created attempt %d, want existing %d", second.AttemptID, first.AttemptID)
	}

	var count int64
	if err := db.Model(&model.Attempt{}).Count(&count).Error; err != nil {
		t.Fatalf("counting attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("attempt count = %d, want 1", count)
	}
}

func TestStartReturnsSavedAnswersOnResume(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	opt := correctOption(t, questions[0])
	_, err = svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &opt.ID},
	})
	if err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	resumed, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}
	if len(resumed.SavedAnswers) != 1 {
		t.Fatalf("len(SavedAnswers) = %d, want 1", len(resumed.SavedAnswers))
	}
	saved := resumed.SavedAnswers[0]
	if saved.QuestionID != questions[0].ID || saved.SelectedOptionID == nil || *saved.SelectedOptionID != opt.ID {
		t.Errorf("SavedAnswers[0] = %+v, want question %d option %d", saved, questions[0].ID, opt.ID)
	}
}

func TestStartFrozenSetSurvivesBankEdits(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Edits after start: deactivate one frozen question, add a new one.
	if err := db.Model(&model.Question{}).Where("id = ?", questions[0].ID).Update("active", false).Error; err != nil {
		t.Fatalf("deactivating question: %v", err)
	}
	createTestQuestion(t, db, "electrician", "late addition", []string{"a", "b"}, 0)

	resumed, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}
	if resumed.TotalQuestions != 2 || len(resumed.Questions) != 2 {
		t.Fatalf("resumed attempt shows %d/%d questions, want 2/2", resumed.TotalQuestions, len(resumed.Questions))
	}

	// The deactivated question still scores: answer both correctly.
	answers := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
		{QuestionID: questions[1].ID, SelectedOptionID: &correctOption(t, questions[1]).ID},
	}
	result, err := svc.Submit(started.AttemptID, candidate.ID, answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.CorrectAnswers != 2 || result.Score != 100.0 {
		t.Errorf("Submit = %d correct, score %.2f; want 2 correct, score 100.00", result.CorrectAnswers, result.Score)
	}
}

func TestStartAttemptLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{MaxAttempts: 1})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Submit(started.AttemptID, candidate.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = svc.Start(candidate.ID)
	if !errors.Is(err, ErrAttemptLimitExceeded) {
		t.Errorf("Start after limit = %v, want ErrAttemptLimitExceeded", err)
	}
}

func TestStartZeroMaxAttemptsIsUnlimited(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{MaxAttempts: 0})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 1)

	for i := 0; i < 3; i++ {
		started, err := svc.Start(candidate.ID)
		if err != nil {
			t.Fatalf("Start #%d: %v", i+1, err)
		}
		if _, err := svc.Submit(started.AttemptID, candidate.ID, nil); err != nil {
			t.Fatalf("Submit #%d: %v", i+1, err)
		}
	}
}

func TestStartFailures(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})

	if _, err := svc.Start(999); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("Start(unknown) = %v, want ErrCandidateNotFound", err)
	}

	inactive := createTestCandidate(t, db, "Gone Person", "electrician", "XX0000000")
	if err := db.Model(inactive).Update("active", false).Error; err != nil {
		t.Fatalf("deactivating candidate: %v", err)
	}
	if _, err := svc.Start(inactive.ID); !errors.Is(err, ErrCandidateInactive) {
		t.Errorf("Start(inactive) = %v, want ErrCandidateInactive", err)
	}

	noBank := createTestCandidate(t, db, "Lonely Trade", "glassblower", "YY0000000")
	if _, err := svc.Start(noBank.ID); !errors.Is(err, ErrNoQuestionsForProfession) {
		t.Errorf("Start(empty bank) = %v, want ErrNoQuestionsForProfession", err)
	}
}

func TestSaveProgressUpsertsAndCounts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := wrongOption(t, questions[0])
	progress, err := svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &first.ID},
	})
	if err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	if progress.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", progress.AnsweredCount)
	}

	// Same question again with a different option: one row, new selection.
	second := correctOption(t, questions[0])
	progress, err = svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &second.ID},
	})
	if err != nil {
		t.Fatalf("SaveProgress overwrite: %v", err)
	}
	if progress.AnsweredCount != 1 {
		t.Errorf("AnsweredCount after overwrite = %d, want 1", progress.AnsweredCount)
	}

	var rows []model.AttemptAnswer
	if err := db.Where("attempt_id = ?", started.AttemptID).Find(&rows).Error; err != nil {
		t.Fatalf("loading answers: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("answer rows = %d, want 1", len(rows))
	}
	if rows[0].SelectedOptionID == nil || *rows[0].SelectedOptionID != second.ID {
		t.Errorf("stored selection = %v, want %d", rows[0].SelectedOptionID, second.ID)
	}
	if !rows[0].Correct {
		t.Errorf("stored row not marked correct after selecting the correct option")
	}
}

func TestSaveProgressClearsSelection(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	opt := correctOption(t, questions[0])
	if _, err := svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &opt.ID},
	}); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	progress, err := svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: nil},
	})
	if err != nil {
		t.Fatalf("SaveProgress clear: %v", err)
	}
	if progress.AnsweredCount != 0 {
		t.Errorf("AnsweredCount after clear = %d, want 0", progress.AnsweredCount)
	}
}

func TestSaveProgressIgnoresForeignQuestionAndOption(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 2)
	foreign := createTestQuestion(t, db, "operator", "other trade", []string{"a", "b"}, 0)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// An answer for a question outside the attempt is dropped; an option
	// belonging to a different question counts as no selection.
	crossOption := correctOption(t, questions[1])
	progress, err := svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: foreign.ID, SelectedOptionID: &foreign.Options[0].ID},
		{QuestionID: questions[0].ID, SelectedOptionID: &crossOption.ID},
	})
	if err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	if progress.AnsweredCount != 0 {
		t.Errorf("AnsweredCount = %d, want 0", progress.AnsweredCount)
	}

	var rows []model.AttemptAnswer
	if err := db.Where("attempt_id = ?", started.AttemptID).Find(&rows).Error; err != nil {
		t.Fatalf("loading answers: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("answer rows = %d, want 1 (foreign question dropped)", len(rows))
	}
	if rows[0].QuestionID != questions[0].ID {
		t.Errorf("stored row for question %d, want %d", rows[0].QuestionID, questions[0].ID)
	}
	if rows[0].SelectedOptionID != nil {
		t.Errorf("cross-question option was persisted as %d, want nil", *rows[0].SelectedOptionID)
	}
	if rows[0].Correct {
		t.Errorf("row marked correct despite nulled selection")
	}
}

func TestSaveProgressOnFinishedAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Submit(started.AttemptID, candidate.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = svc.SaveProgress(started.AttemptID, candidate.ID, nil)
	if !errors.Is(err, ErrAttemptFinished) {
		t.Errorf("SaveProgress on finished attempt = %v, want ErrAttemptFinished", err)
	}
}

func TestSaveProgressOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	owner := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	other := createTestCandidate(t, db, "Maria Sidorova", "electrician", "AB2345678")
	seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(owner.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.SaveProgress(started.AttemptID, other.ID, nil)
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("SaveProgress by non-owner = %v, want ErrAttemptNotFound", err)
	}
}

func TestSubmitScoresOverFullFrozenSet(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 3)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// One correct, one wrong, one never answered: 1/3 of the frozen set.
	answers := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
		{QuestionID: questions[1].ID, SelectedOptionID: &wrongOption(t, questions[1]).ID},
	}
	result, err := svc.Submit(started.AttemptID, candidate.ID, answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.CorrectAnswers != 1 {
		t.Errorf("CorrectAnswers = %d, want 1", result.CorrectAnswers)
	}
	if result.TotalQuestions != 3 {
		t.Errorf("TotalQuestions = %d, want 3", result.TotalQuestions)
	}
	if result.Score != 33.33 {
		t.Errorf("Score = %v, want 33.33", result.Score)
	}

	var attempt model.Attempt
	if err := db.First(&attempt, started.AttemptID).Error; err != nil {
		t.Fatalf("loading attempt: %v", err)
	}
	if !attempt.Finished || attempt.FinishedAt == nil {
		t.Errorf("attempt not finalized: finished=%v finishedAt=%v", attempt.Finished, attempt.FinishedAt)
	}
	if attempt.Score == nil || *attempt.Score != 33.33 {
		t.Errorf("stored score = %v, want 33.33", attempt.Score)
	}
	if attempt.CorrectAnswers == nil || *attempt.CorrectAnswers != 1 {
		t.Errorf("stored correct answers = %v, want 1", attempt.CorrectAnswers)
	}
}

func TestSubmitHalfScore(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "QA Person", "qa-engineer", "QA1234567")
	questions := seedQuestionBank(t, db, "qa-engineer", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Answer the first question via autosave, then submit without
	// re-answering the second: the saved answer still counts.
	if _, err := svc.SaveProgress(started.AttemptID, candidate.ID, []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
	}); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	result, err := svc.Submit(started.AttemptID, candidate.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.CorrectAnswers != 1 {
		t.Errorf("CorrectAnswers = %d, want 1", result.CorrectAnswers)
	}
	if result.Score != 50.0 {
		t.Errorf("Score = %v, want 50", result.Score)
	}

	var attempt model.Attempt
	if err := db.First(&attempt, started.AttemptID).Error; err != nil {
		t.Fatalf("loading attempt: %v", err)
	}
	if !attempt.Finished {
		t.Errorf("attempt not marked finished after submit")
	}
}

func TestSubmitTwiceFailsAndKeepsResult(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	good := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
	}
	first, err := svc.Submit(started.AttemptID, candidate.ID, good)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	// A replay with different answers must not touch the stored result.
	bad := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &wrongOption(t, questions[0]).ID},
	}
	_, err = svc.Submit(started.AttemptID, candidate.ID, bad)
	if !errors.Is(err, ErrAttemptFinished) {
		t.Fatalf("second Submit = %v, want ErrAttemptFinished", err)
	}

	var attempt model.Attempt
	if err := db.First(&attempt, started.AttemptID).Error; err != nil {
		t.Fatalf("loading attempt: %v", err)
	}
	if attempt.Score == nil || *attempt.Score != first.Score {
		t.Errorf("stored score = %v, want %v from the first submit", attempt.Score, first.Score)
	}
	if attempt.CorrectAnswers == nil || *attempt.CorrectAnswers != first.CorrectAnswers {
		t.Errorf("stored correct answers = %v, want %d", attempt.CorrectAnswers, first.CorrectAnswers)
	}
}

func TestSubmitEmptyPayloadScoresZero(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := svc.Submit(started.AttemptID, candidate.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.CorrectAnswers != 0 || result.Score != 0 {
		t.Errorf("Submit = %d correct, score %v; want 0 correct, score 0", result.CorrectAnswers, result.Score)
	}
}

func TestAttemptNumberingAcrossAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 1)

	first, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if _, err := svc.Submit(first.AttemptID, candidate.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	second, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if second.AttemptID == first.AttemptID {
		t.Fatalf("second Start reused finished attempt %d", first.AttemptID)
	}
	if second.AttemptNumber != 2 {
		t.Errorf("AttemptNumber = %d, want 2", second.AttemptNumber)
	}
}

func TestGetProgressWorksOnFinishedAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 1)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answers := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
	}
	if _, err := svc.Submit(started.AttemptID, candidate.ID, answers); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	progress, err := svc.GetProgress(started.AttemptID, candidate.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", progress.AnsweredCount)
	}
}

func TestListQuestionsFiltersByProfession(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 2)
	seedQuestionBank(t, db, "operator", 3)

	listing, err := svc.ListQuestions(candidate.ID)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(listing) != 2 {
		t.Fatalf("len(listing) = %d, want 2", len(listing))
	}
	for _, entry := range listing {
		if entry.Profession != "electrician" {
			t.Errorf("listing contains profession %q", entry.Profession)
		}
	}
}

func TestStartConcurrentCallsShareOneAttempt(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	seedQuestionBank(t, db, "electrician", 2)

	// Both goroutines enter Start at the same instant; only one may
	// create an attempt, the other must return the same one.
	release := make(chan struct{})
	ids := make(chan uint, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-release
			resp, err := svc.Start(candidate.ID)
			if err != nil {
				t.Errorf("Start: %v", err)
				return
			}
			ids <- resp.AttemptID
		}()
	}
	close(release)
	wg.Wait()
	close(ids)

	seen := make(map[uint]bool)
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("concurrent starts returned %d distinct attempts, want 1", len(seen))
	}

	var unfinished int64
	err := db.Model(&model.Attempt{}).
		Where("candidate_id = ? AND finished = ?", candidate.ID, false).
		Count(&unfinished).Error
	if err != nil {
		t.Fatalf("counting unfinished attempts: %v", err)
	}
	if unfinished != 1 {
		t.Errorf("unfinished attempts = %d, want 1", unfinished)
	}
}

func TestSubmitRacingSaveKeepsStoredTallyConsistent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestExamService(t, db, config.Exam{})
	candidate := createTestCandidate(t, db, "Ivan Petrov", "electrician", "AB1234567")
	questions := seedQuestionBank(t, db, "electrician", 2)

	started, err := svc.Start(candidate.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	save := []dto.AnswerRequestDTO{
		{QuestionID: questions[1].ID, SelectedOptionID: &correctOption(t, questions[1]).ID},
	}
	final := []dto.AnswerRequestDTO{
		{QuestionID: questions[0].ID, SelectedOptionID: &correctOption(t, questions[0]).ID},
	}

	// An autosave racing the submit either lands before the tally or is
	// rejected; it must never change the ledger after finalization.
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-release
		if _, err := svc.SaveProgress(started.AttemptID, candidate.ID, save); err != nil && !errors.Is(err, ErrAttemptFinished) {
			t.Errorf("SaveProgress: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-release
		if _, err := svc.Submit(started.AttemptID, candidate.ID, final); err != nil {
			t.Errorf("Submit: %v", err)
		}
	}()
	close(release)
	wg.Wait()

	var attempt model.Attempt
	if err := db.First(&attempt, started.AttemptID).Error; err != nil {
		t.Fatalf("loading attempt: %v", err)
	}
	if !attempt.Finished {
		t.Fatalf("attempt not finished after submit")
	}

	var rows []model.AttemptAnswer
	if err := db.Where("attempt_id = ?", started.AttemptID).Find(&rows).Error; err != nil {
		t.Fatalf("loading answers: %v", err)
	}
	correct := 0
	for _, row := range rows {
		if row.Correct {
			correct++
		}
	}

	if attempt.CorrectAnswers == nil || *attempt.CorrectAnswers != correct {
		t.Errorf("stored correct answers = %v, ledger has %d", attempt.CorrectAnswers, correct)
	}
	wantScore := roundScore(float64(correct) * 100.0 / float64(attempt.TotalQuestions))
	if attempt.Score == nil || *attempt.Score != wantScore {
		t.Errorf("stored score = %v, want %v from the ledger", attempt.Score, wantScore)
	}
}
