package hr

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margay/internal/controller"
	"github.com/lshigami/Margay/internal/dto"
	"github.com/lshigami/Margay/internal/service"
	"github.com/rs/zerolog/log"
)

type HRController struct {
	questionService  service.QuestionService
	candidateService service.CandidateService
	jobService       service.JobService
	resultService    service.ResultService
}

func NewHRController(
	questionService service.QuestionService,
	candidateService service.CandidateService,
	jobService service.JobService,
	resultService service.ResultService,
) *HRController {
	return &HRController{
		questionService:  questionService,
		candidateService: candidateService,
		jobService:       jobService,
		resultService:    resultService,
	}
}

// ListTests godoc
// @Summary (HR) List active questions with their options
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.TestResponseDTO}
// @Router /hr/tests [get]
func (c *HRController) ListTests(ctx *gin.Context) {
	tests, err := c.questionService.ListTests()
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", tests))
}

// CreateTest godoc
// @Summary (HR) Create one question with its options
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body dto.CreateTestRequestDTO true "Question with options; exactly one correct"
// @Success 200 {object} dto.APIResponse{data=dto.TestResponseDTO}
// @Failure 400 {object} dto.APIResponse
// @Router /hr/tests [post]
func (c *HRController) CreateTest(ctx *gin.Context) {
	var req dto.CreateTestRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.questionService.CreateTest(req, hrUsername(ctx))
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Test created", resp))
}

// UpdateTest godoc
// @Summary (HR) Update question metadata
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path int true "Question ID"
// @Param request body dto.UpdateTestRequestDTO true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.TestResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /hr/tests/{id} [put]
func (c *HRController) UpdateTest(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTestRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.questionService.UpdateTest(id, req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Test updated", resp))
}

// DeleteTest godoc
// @Summary (HR) Delete a question unless attempts reference it
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /hr/tests/{id} [delete]
func (c *HRController) DeleteTest(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.questionService.DeleteTest(id); err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Test deleted", nil))
}

// UpdateQuestion godoc
// @Summary (HR) Update question text and optionally replace its options
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param question_id path int true "Question ID"
// @Param request body dto.UpdateQuestionRequestDTO true "New text and/or full option set"
// @Success 200 {object} dto.APIResponse{data=dto.TestResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /hr/questions/{question_id} [put]
func (c *HRController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}

	var req dto.UpdateQuestionRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.questionService.UpdateQuestion(id, req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Question updated", resp))
}

// DeleteQuestion godoc
// @Summary (HR) Delete a question unless attempts reference it
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /hr/questions/{question_id} [delete]
func (c *HRController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "question_id")
	if !ok {
		return
	}

	if err := c.questionService.DeleteTest(id); err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Question deleted", nil))
}

// ListCandidates godoc
// @Summary (HR) List all candidates
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CandidateResponseDTO}
// @Router /hr/candidates [get]
func (c *HRController) ListCandidates(ctx *gin.Context) {
	candidates, err := c.candidateService.ListCandidates()
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", candidates))
}

// CreateCandidate godoc
// @Summary (HR) Create a candidate
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body dto.CreateCandidateRequestDTO true "Candidate"
// @Success 200 {object} dto.APIResponse{data=dto.CandidateResponseDTO}
// @Failure 409 {object} dto.APIResponse
// @Router /hr/candidates [post]
func (c *HRController) CreateCandidate(ctx *gin.Context) {
	var req dto.CreateCandidateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.candidateService.CreateCandidate(req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Candidate created", resp))
}

// UpdateCandidate godoc
// @Summary (HR) Update a candidate
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param candidate_id path int true "Candidate ID"
// @Param request body dto.UpdateCandidateRequestDTO true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CandidateResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /hr/candidates/{candidate_id} [put]
func (c *HRController) UpdateCandidate(ctx *gin.Context) {
	id, ok := parseID(ctx, "candidate_id")
	if !ok {
		return
	}

	var req dto.UpdateCandidateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.candidateService.UpdateCandidate(id, req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Candidate updated", resp))
}

// UpdateCandidatePassport godoc
// @Summary (HR) Rotate a candidate's passport number (login and password)
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param candidate_id path int true "Candidate ID"
// @Param request body dto.UpdateCandidatePassportRequestDTO true "New passport number"
// @Success 200 {object} dto.APIResponse{data=dto.CandidateResponseDTO}
// @Failure 409 {object} dto.APIResponse
// @Router /hr/candidates/{candidate_id}/passport [put]
func (c *HRController) UpdateCandidatePassport(ctx *gin.Context) {
	id, ok := parseID(ctx, "candidate_id")
	if !ok {
		return
	}

	var req dto.UpdateCandidatePassportRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.candidateService.UpdateCandidatePassport(id, req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Candidate passport updated", resp))
}

// DeleteCandidate godoc
// @Summary (HR) Delete a candidate without exam history
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Param candidate_id path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /hr/candidates/{candidate_id} [delete]
func (c *HRController) DeleteCandidate(ctx *gin.Context) {
	id, ok := parseID(ctx, "candidate_id")
	if !ok {
		return
	}

	if err := c.candidateService.DeleteCandidate(id); err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Candidate deleted", nil))
}

// ListJobs godoc
// @Summary (HR) List jobs with candidate and question counts
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.JobResponseDTO}
// @Router /hr/jobs [get]
func (c *HRController) ListJobs(ctx *gin.Context) {
	jobs, err := c.jobService.ListJobs()
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", jobs))
}

// CreateJob godoc
// @Summary (HR) Create a job
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body dto.CreateJobRequestDTO true "Job"
// @Success 200 {object} dto.APIResponse{data=dto.JobResponseDTO}
// @Failure 409 {object} dto.APIResponse
// @Router /hr/jobs [post]
func (c *HRController) CreateJob(ctx *gin.Context) {
	var req dto.CreateJobRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.jobService.CreateJob(req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Job created", resp))
}

// UpdateJob godoc
// @Summary (HR) Update a job; renames cascade to every profession reference
// @Tags HR
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param job_id path int true "Job ID"
// @Param request body dto.UpdateJobRequestDTO true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.JobResponseDTO}
// @Failure 404 {object} dto.APIResponse
// @Router /hr/jobs/{job_id} [put]
func (c *HRController) UpdateJob(ctx *gin.Context) {
	id, ok := parseID(ctx, "job_id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid request body: "+err.Error()))
		return
	}

	resp, err := c.jobService.UpdateJob(id, req)
	if err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Job updated", resp))
}

// DeleteJob godoc
// @Summary (HR) Delete a job without linked candidates or questions
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Param job_id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /hr/jobs/{job_id} [delete]
func (c *HRController) DeleteJob(ctx *gin.Context) {
	id, ok := parseID(ctx, "job_id")
	if !ok {
		return
	}

	if err := c.jobService.DeleteJob(id); err != nil {
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("Job deleted", nil))
}

// ListResults godoc
// @Summary (HR) Aggregate exam results across all candidates
// @Description One row per attempt plus a not-started row per candidate without attempts. All filters combine as AND.
// @Tags HR
// @Produce json
// @Security BasicAuth
// @Param job query string false "Profession, exact match, case-insensitive"
// @Param from_date query string false "Inclusive start day (YYYY-MM-DD) against started_at"
// @Param to_date query string false "Inclusive end day (YYYY-MM-DD) against started_at"
// @Param candidate query string false "Substring of full name or login, case-insensitive"
// @Param min_score query number false "Minimum score; only matches completed rows"
// @Param max_score query number false "Maximum score; only matches completed rows"
// @Param status query string false "completed, in-progress or not-started"
// @Success 200 {object} dto.APIResponse{data=[]dto.ResultRowDTO}
// @Failure 400 {object} dto.APIResponse
// @Router /hr/results [get]
func (c *HRController) ListResults(ctx *gin.Context) {
	filter := service.ResultFilter{
		Job:       ctx.Query("job"),
		Candidate: ctx.Query("candidate"),
		Status:    ctx.Query("status"),
	}

	var ok bool
	if filter.FromDate, ok = parseDate(ctx, "from_date"); !ok {
		return
	}
	if filter.ToDate, ok = parseDate(ctx, "to_date"); !ok {
		return
	}
	if filter.MinScore, ok = parseScore(ctx, "min_score"); !ok {
		return
	}
	if filter.MaxScore, ok = parseScore(ctx, "max_score"); !ok {
		return
	}

	rows, err := c.resultService.ListResults(filter)
	if err != nil {
		log.Error().Err(err).Msg("ListResults failed")
		ctx.JSON(controller.StatusFor(err), dto.Fail(err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, dto.OK("OK", rows))
}

// hrUsername is the basic-auth user set by gin's BasicAuth middleware.
func hrUsername(ctx *gin.Context) string {
	if user, exists := ctx.Get(gin.AuthUserKey); exists {
		if name, ok := user.(string); ok {
			return name
		}
	}
	return "hr"
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	value, err := strconv.ParseUint(ctx.Param(param), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+param+" format"))
		return 0, false
	}
	return uint(value), true
}

func parseDate(ctx *gin.Context, param string) (*time.Time, bool) {
	raw := ctx.Query(param)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+param+", expected YYYY-MM-DD"))
		return nil, false
	}
	return &parsed, true
}

func parseScore(ctx *gin.Context, param string) (*float64, bool) {
	raw := ctx.Query(param)
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.Fail("Invalid "+param+", expected a number"))
		return nil, false
	}
	return &parsed, true
}
