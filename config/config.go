package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Exam     Exam
	HR       HR
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Exam holds the attempt policy knobs. MaxAttempts of zero means unlimited.
type Exam struct {
	DurationMinutes int
	MaxAttempts     int
}

// HR is the basic-auth credential pair for the administrative API.
type HR struct {
	Username string
	Password string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EXAM_DURATION_MINUTES", 60)
	viper.SetDefault("EXAM_MAX_ATTEMPTS", 0)
	viper.SetDefault("HR_USERNAME", "hr")
	viper.SetDefault("HR_PASSWORD", "hr123")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Exam.DurationMinutes = viper.GetInt("EXAM_DURATION_MINUTES")
	config.Exam.MaxAttempts = viper.GetInt("EXAM_MAX_ATTEMPTS")

	config.HR.Username = viper.GetString("HR_USERNAME")
	config.HR.Password = viper.GetString("HR_PASSWORD")

	log.Info().Str("port", config.Server.Port).Int("examDurationMinutes", config.Exam.DurationMinutes).Msg("Config loaded")
	return &config, nil
}
