package service

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/Margay/config"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// In-memory sqlite is per connection; keep the pool at one so every
	// query sees the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Job{},
		&model.Candidate{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.AttemptQuestion{},
		&model.AttemptAnswer{},
	)
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func newTestExamService(t *testing.T, db *gorm.DB, examCfg config.Exam) ExamService {
	t.Helper()
	if examCfg.DurationMinutes == 0 {
		examCfg.DurationMinutes = 60
	}
	cfg := &config.Config{Exam: examCfg}
	return NewExamService(
		repository.NewCandidateRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewAttemptQuestionRepository(db),
		repository.NewAttemptAnswerRepository(db),
		db,
		cfg,
	)
}

func createTestCandidate(t *testing.T, db *gorm.DB, fullName, profession, login string) *model.Candidate {
	t.Helper()
	candidate := &model.Candidate{
		FullName:   fullName,
		Profession: profession,
		Login:      login,
		Active:     true,
	}
	if err := db.Create(candidate).Error; err != nil {
		t.Fatalf("creating candidate %q: %v", fullName, err)
	}
	return candidate
}

// createTestQuestion creates an active question with the given option texts;
// the option at correctIndex is the correct one.
func createTestQuestion(t *testing.T, db *gorm.DB, profession, text string, optionTexts []string, correctIndex int) *model.Question {
	t.Helper()
	question := &model.Question{
		Title:      text,
		Profession: profession,
		Active:     true,
		CreatedBy:  "test",
		Text:       text,
	}
	for i, optText := range optionTexts {
		question.Options = append(question.Options, model.Option{
			Text:    optText,
			Correct: i == correctIndex,
		})
	}
	if err := db.Create(question).Error; err != nil {
		t.Fatalf("creating question %q: %v", text, err)
	}
	return question
}

func correctOption(t *testing.T, q *model.Question) *model.Option {
	t.Helper()
	for i := range q.Options {
		if q.Options[i].Correct {
			return &q.Options[i]
		}
	}
	t.Fatalf("question %d has no correct option", q.ID)
	return nil
}

func wrongOption(t *testing.T, q *model.Question) *model.Option {
	t.Helper()
	for i := range q.Options {
		if !q.Options[i].Correct {
			return &q.Options[i]
		}
	}
	t.Fatalf("question %d has no wrong option", q.ID)
	return nil
}

// seedQuestionBank creates n two-option questions for the profession and
// returns them in creation order.
func seedQuestionBank(t *testing.T, db *gorm.DB, profession string, n int) []*model.Question {
	t.Helper()
	questions := make([]*model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := createTestQuestion(t, db, profession,
			fmt.Sprintf("%s question %d", profession, i+1),
			[]string{"right answer", "wrong answer"}, 0)
		questions = append(questions, q)
	}
	return questions
}
