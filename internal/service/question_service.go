package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuestionService is the HR-facing question bank administration. HR speaks of
// "tests"; each test is one question with its option set. Authoring enforces
// the exactly-one-correct-option invariant the attempt engine relies on.
type QuestionService interface {
	ListTests() ([]dto.TestResponseDTO, error)
	CreateTest(req dto.CreateTestRequestDTO, createdBy string) (*dto.TestResponseDTO, error)
	UpdateTest(id uint, req dto.UpdateTestRequestDTO) (*dto.TestResponseDTO, error)
	UpdateQuestion(id uint, req dto.UpdateQuestionRequestDTO) (*dto.TestResponseDTO, error)
	DeleteTest(id uint) error
}

type questionService struct {
	questionRepo        repository.QuestionRepository
	attemptQuestionRepo repository.AttemptQuestionRepository
	jobRepo             repository.JobRepository
}

func NewQuestionService(
	questionRepo repository.QuestionRepository,
	attemptQuestionRepo repository.AttemptQuestionRepository,
	jobRepo repository.JobRepository,
) QuestionService {
	return &questionService{questionRepo: questionRepo, attemptQuestionRepo: attemptQuestionRepo, jobRepo: jobRepo}
}

func (s *questionService) ListTests() ([]dto.TestResponseDTO, error) {
	questions, err := s.questionRepo.FindAllActive()
	if err != nil {
		return nil, fmt.Errorf("error fetching questions: %w", err)
	}

	questionIDs := make([]uint, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	options, err := s.questionRepo.FindOptionsByQuestionIDs(questionIDs)
	if err != nil {
		return nil, fmt.Errorf("error fetching options: %w", err)
	}
	optionsByQuestion := make(map[uint][]model.Option)
	for _, o := range options {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], o)
	}

	result := make([]dto.TestResponseDTO, 0, len(questions))
	for _, q := range questions {
		result = append(result, toTestResponse(&q, optionsByQuestion[q.ID]))
	}
	return result, nil
}

func (s *questionService) CreateTest(req dto.CreateTestRequestDTO, createdBy string) (*dto.TestResponseDTO, error) {
	if err := validateOneCorrect(req.Options); err != nil {
		return nil, err
	}

	profession := strings.TrimSpace(req.Profession)
	if err := ensureJob(s.jobRepo, profession); err != nil {
		return nil, err
	}

	question := &model.Question{
		Title:      strings.TrimSpace(req.Title),
		Profession: profession,
		Active:     req.Active == nil || *req.Active,
		CreatedBy:  createdBy,
		Text:       strings.TrimSpace(req.QuestionText),
		Options:    toOptionModels(req.Options),
	}
	if err := s.questionRepo.Create(question); err != nil {
		log.Error().Err(err).Msg("CreateTest: database error")
		return nil, fmt.Errorf("database error creating question: %w", err)
	}

	log.Info().Str("createdBy", createdBy).Uint("questionID", question.ID).Str("title", question.Title).Msg("Question created")

	resp := toTestResponse(question, question.Options)
	return &resp, nil
}

func (s *questionService) UpdateTest(id uint, req dto.UpdateTestRequestDTO) (*dto.TestResponseDTO, error) {
	question, err := s.findQuestion(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		question.Title = strings.TrimSpace(*req.Title)
	}
	if req.Profession != nil && strings.TrimSpace(*req.Profession) != "" {
		profession := strings.TrimSpace(*req.Profession)
		if err := ensureJob(s.jobRepo, profession); err != nil {
			return nil, err
		}
		question.Profession = profession
	}
	if req.Active != nil {
		question.Active = *req.Active
	}
	if req.QuestionText != nil && strings.TrimSpace(*req.QuestionText) != "" {
		question.Text = strings.TrimSpace(*req.QuestionText)
	}

	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("database error updating question: %w", err)
	}

	log.Info().Uint("questionID", question.ID).Str("title", question.Title).Msg("Question updated")
	return s.reload(question)
}

// UpdateQuestion edits the question text and, when options are supplied,
// replaces the entire option set under the same one-correct-option rule.
func (s *questionService) UpdateQuestion(id uint, req dto.UpdateQuestionRequestDTO) (*dto.TestResponseDTO, error) {
	question, err := s.findQuestion(id)
	if err != nil {
		return nil, err
	}

	if req.Text != nil && strings.TrimSpace(*req.Text) != "" {
		question.Text = strings.TrimSpace(*req.Text)
		if err := s.questionRepo.Update(question); err != nil {
			return nil, fmt.Errorf("database error updating question: %w", err)
		}
	}

	if len(req.Options) > 0 {
		if err := validateOneCorrect(req.Options); err != nil {
			return nil, err
		}
		if err := s.questionRepo.ReplaceOptions(question.ID, toOptionModels(req.Options)); err != nil {
			return nil, fmt.Errorf("database error replacing options: %w", err)
		}
	}

	log.Info().Uint("questionID", question.ID).Msg("Question updated")
	return s.reload(question)
}

// DeleteTest refuses to remove a question referenced by any attempt; frozen
// question sets must stay resolvable forever.
func (s *questionService) DeleteTest(id uint) error {
	used, err := s.attemptQuestionRepo.ExistsByQuestionID(id)
	if err != nil {
		return fmt.Errorf("error checking attempt usage: %w", err)
	}
	if used {
		return fmt.Errorf("%w: questionId=%d", ErrQuestionInUse, id)
	}

	if err := s.questionRepo.Delete(id); err != nil {
		return fmt.Errorf("database error deleting question: %w", err)
	}

	log.Info().Uint("questionID", id).Msg("Question deleted")
	return nil
}

func (s *questionService) findQuestion(id uint) (*model.Question, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: questionId=%d", ErrQuestionNotFound, id)
		}
		return nil, fmt.Errorf("error loading question: %w", err)
	}
	return question, nil
}

func (s *questionService) reload(question *model.Question) (*dto.TestResponseDTO, error) {
	options, err := s.questionRepo.FindOptionsByQuestionID(question.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading options: %w", err)
	}
	resp := toTestResponse(question, options)
	return &resp, nil
}

func validateOneCorrect(options []dto.OptionRequestDTO) error {
	correct := 0
	for _, o := range options {
		if o.Correct != nil && *o.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("%w: currentCorrectCount=%d", ErrExactlyOneCorrectOption, correct)
	}
	return nil
}

func toOptionModels(options []dto.OptionRequestDTO) []model.Option {
	result := make([]model.Option, 0, len(options))
	for _, o := range options {
		result = append(result, model.Option{
			Text:    strings.TrimSpace(o.Text),
			Correct: o.Correct != nil && *o.Correct,
		})
	}
	return result
}

func toTestResponse(question *model.Question, options []model.Option) dto.TestResponseDTO {
	optionDTOs := make([]dto.OptionResponseDTO, 0, len(options))
	for _, o := range options {
		optionDTOs = append(optionDTOs, dto.OptionResponseDTO{OptionID: o.ID, Text: o.Text, Correct: o.Correct})
	}
	return dto.TestResponseDTO{
		TestID:       question.ID,
		Title:        question.Title,
		Profession:   question.Profession,
		QuestionText: question.Text,
		Active:       question.Active,
		CreatedBy:    question.CreatedBy,
		Options:      optionDTOs,
	}
}
