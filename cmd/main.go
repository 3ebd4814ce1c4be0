package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margay/config"
	"github.com/lshigami/Margay/database"
	_ "github.com/lshigami/Margay/docs" // Swagger docs
	candidatectrl "github.com/lshigami/Margay/internal/controller/candidate"
	hrctrl "github.com/lshigami/Margay/internal/controller/hr"
	"github.com/lshigami/Margay/internal/logger"
	"github.com/lshigami/Margay/internal/model"
	"github.com/lshigami/Margay/internal/repository"
	"github.com/lshigami/Margay/internal/seed"
	"github.com/lshigami/Margay/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Qualification Exam API
// @version 1.0
// @description API for timed multiple-choice qualification exams: candidate attempts with autosave, HR question and candidate management, and aggregated results.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.basic BasicAuth
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewCandidateRepository,
			repository.NewJobRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAttemptQuestionRepository,
			repository.NewAttemptAnswerRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAuthService,
			service.NewExamService,
			service.NewResultService,
			service.NewQuestionService,
			service.NewCandidateService,
			service.NewJobService,
		),

		// API Controllers Layer
		fx.Provide(
			candidatectrl.NewCandidateController,
			hrctrl.NewHRController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(SeedDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	// Request logging through Zerolog instead of Gin's default logger
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	candidateCtrl *candidatectrl.CandidateController,
	hrCtrl *hrctrl.HRController,
) {
	// Candidate Routes (prefixed with /api/v1/candidate)
	candidateGroup := router.Group("/api/v1/candidate")
	{
		candidateGroup.POST("/auth/login", candidateCtrl.Login)
		candidateGroup.POST("/auth/passport-login", candidateCtrl.PassportLogin)
		candidateGroup.GET("/:candidate_id/tests", candidateCtrl.ListQuestions)
		candidateGroup.POST("/tests/start", candidateCtrl.Start)
		candidateGroup.PUT("/attempts/:attempt_id/progress", candidateCtrl.SaveProgress)
		candidateGroup.GET("/attempts/:attempt_id/progress", candidateCtrl.GetProgress)
		candidateGroup.POST("/attempts/:attempt_id/submit", candidateCtrl.Submit)
	}

	// HR Routes (prefixed with /api/v1/hr, protected by HTTP Basic auth)
	hrGroup := router.Group("/api/v1/hr", gin.BasicAuth(gin.Accounts{
		cfg.HR.Username: cfg.HR.Password,
	}))
	{
		hrGroup.GET("/tests", hrCtrl.ListTests)
		hrGroup.POST("/tests", hrCtrl.CreateTest)
		hrGroup.PUT("/tests/:id", hrCtrl.UpdateTest)
		hrGroup.DELETE("/tests/:id", hrCtrl.DeleteTest)

		hrGroup.PUT("/questions/:question_id", hrCtrl.UpdateQuestion)
		hrGroup.DELETE("/questions/:question_id", hrCtrl.DeleteQuestion)

		hrGroup.GET("/candidates", hrCtrl.ListCandidates)
		hrGroup.POST("/candidates", hrCtrl.CreateCandidate)
		hrGroup.PUT("/candidates/:candidate_id", hrCtrl.UpdateCandidate)
		hrGroup.PUT("/candidates/:candidate_id/passport", hrCtrl.UpdateCandidatePassport)
		hrGroup.DELETE("/candidates/:candidate_id", hrCtrl.DeleteCandidate)

		hrGroup.GET("/jobs", hrCtrl.ListJobs)
		hrGroup.POST("/jobs", hrCtrl.CreateJob)
		hrGroup.PUT("/jobs/:job_id", hrCtrl.UpdateJob)
		hrGroup.DELETE("/jobs/:job_id", hrCtrl.DeleteJob)

		hrGroup.GET("/results", hrCtrl.ListResults)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Qualification Exam API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Job{},
		&model.Candidate{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.AttemptQuestion{},
		&model.AttemptAnswer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}

func SeedDB(db *gorm.DB) error {
	return seed.Run(db)
}
