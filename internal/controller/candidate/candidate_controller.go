package candidate

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margay/internal/controller"
	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/service"
	"github.com/rs/zerolog/log"
)

type CandidateController struct {
	authService service.AuthService
	examService service.ExamService
}

func NewCandidateController(authService service.AuthService, examService service.ExamService) *CandidateController {
	return &CandidateController{authService: authService, examService: examService}
}

// Login godoc
// @Summary (Candidate) Log in with login and password
// @Tags Candidate
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequestDTO true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponseDTO}
// @Failure 401 {object} dto.APIResponse
// @Router /candidate/auth/login [post]
func (c *CandidateController) Login(ctx *gin.Context) {
	var req dto.LoginRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.authService.Login(req)
	if err != nil {
		log.Warn().Err(err).Str("login", req.Login).Msg("Candidate login failed")
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Login success", resp))
}

// PassportLogin godoc
// @Summary (Candidate) Log in with passport number and full name
// @Tags Candidate
// @Accept json
// @Produce json
// @Param credentials body dto.PassportLoginRequestDTO true "Passport credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponseDTO}
// @Failure 401 {object} dto.APIResponse
// @Router /candidate/auth/passport-login [post]
func (c *CandidateController) PassportLogin(ctx *gin.Context) {
	var req dto.PassportLoginRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.authService.PassportLogin(req)
	if err != nil {
		log.Warn().Err(err).Msg("Candidate passport login failed")
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Login success", resp))
}

// ListQuestions godoc
// @Summary (Candidate) List the active questions of the candidate's profession
// @Tags Candidate
// @Produce json
// @Param candidate_id path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ProfessionQuestionDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /candidate/{candidate_id}/tests [get]
func (c *CandidateController) ListQuestions(ctx *gin.Context) {
	candidateID, ok := parseID(ctx, "candidate_id")
	if !ok {
		return
	}

	questions, err := c.examService.ListQuestions(candidateID)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", questions))
}

// Start godoc
// @Summary (Candidate) Start an exam attempt, or resume the unfinished one
// @Description Freezes the profession's active question set into a new attempt. If an unfinished attempt exists it is returned instead.
// @Tags Candidate
// @Accept json
// @Produce json
// @Param request body dto.StartAttemptRequestDTO true "Candidate starting the exam"
// @Success 200 {object} dto.APIResponse{data=dto.StartAttemptResponseDTO}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Router /candidate/tests/start [post]
func (c *CandidateController) Start(ctx *gin.Context) {
	var req dto.StartAttemptRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.examService.Start(req.CandidateID)
	if err != nil {
		log.Warn().Err(err).Uint("candidateID", req.CandidateID).Msg("Start attempt failed")
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Started", resp))
}

// SaveProgress godoc
// @Summary (Candidate) Autosave answers for an unfinished attempt
// @Tags Candidate
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SaveProgressRequestDTO true "Answers to upsert"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /candidate/attempts/{attempt_id}/progress [put]
func (c *CandidateController) SaveProgress(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}

	var req dto.SaveProgressRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.examService.SaveProgress(attemptID, req.CandidateID, req.Answers)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Progress saved", resp))
}

// GetProgress godoc
// @Summary (Candidate) Read saved progress for an attempt
// @Tags Candidate
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param candidate_id query int true "Candidate ID owning the attempt"
// @Success 200 {object} dto.APIResponse{data=dto.ProgressResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /candidate/attempts/{attempt_id}/progress [get]
func (c *CandidateController) GetProgress(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}

	candidateID, err := strconv.ParseUint(ctx.Query("candidate_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid candidate_id query parameter"))
		return
	}

	resp, err := c.examService.GetProgress(attemptID, uint(candidateID))
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", resp))
}

// Submit godoc
// @Summary (Candidate) Submit an attempt for scoring
// @Description Applies the final answers, tallies correctness over the frozen question set and finalizes the attempt exactly once.
// @Tags Candidate
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SubmitAttemptRequestDTO true "Final answers"
// @Success 200 {object} dto.APIResponse{data=dto.SubmitResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /candidate/attempts/{attempt_id}/submit [post]
func (c *CandidateController) Submit(ctx *gin.Context) {
	attemptID, ok := parseID(ctx, "attempt_id")
	if !ok {
		return
	}

	var req dto.SubmitAttemptRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.examService.Submit(attemptID, req.CandidateID, req.Answers)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("Submit attempt failed")
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Submitted", resp))
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	value, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+param+" format"))
		return 0, false
	}
	return uint(value), true
}
