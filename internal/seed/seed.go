package seed

import (
	"fmt"
	"strings"

	"github.com/lshigami/Margay/internal/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedCandidate struct {
	fullName   string
	profession string
	passport   string
}

type seedQuestion struct {
	title   string
	text    string
	options []string // first entry is the correct one
}

var professions = []string{"electrician", "operator", "mechanic", "technologist"}

var candidates = []seedCandidate{
	{"Ivan Petrov", "electrician", "AB1234567"},
	{"Maria Sidorova", "electrician", "AB2345678"},
	{"Sergey Ivanov", "operator", "CD3456789"},
	{"Anna Kuznetsova", "operator", "CD4567890"},
	{"Dmitry Smirnov", "mechanic", "EF5678901"},
	{"Olga Popova", "mechanic", "EF6789012"},
	{"Alexey Volkov", "technologist", "GH7890123"},
	{"Elena Morozova", "technologist", "GH8901234"},
}

var questionBank = map[string][]seedQuestion{
	"electrician": {
		{"Safety basics", "What must be done before working on electrical equipment?", []string{"De-energize and lock out the circuit", "Wear warmer clothing", "Notify the cafeteria", "Increase the supply voltage"}},
		{"Ohm's law", "Current through a 10 Ohm resistor at 20 V equals:", []string{"2 A", "0.5 A", "200 A", "10 A"}},
		{"Grounding", "The main purpose of protective grounding is to:", []string{"Divert fault current away from people", "Improve signal quality", "Reduce power consumption", "Speed up motors"}},
	},
	"operator": {
		{"Shift handover", "At shift handover the operator must first:", []string{"Review the process log and active alarms", "Silence all alarms", "Restart the control system", "Leave immediately"}},
		{"Alarm response", "On a critical high-pressure alarm the operator should:", []string{"Follow the emergency procedure for that unit", "Ignore it until it repeats", "Disable the alarm", "Wait for the next shift"}},
		{"Instrumentation", "A pressure transmitter reading 4 mA on a 4-20 mA loop indicates:", []string{"The low end of the measuring range", "A full-scale reading", "A broken cable", "An overloaded sensor"}},
	},
	"mechanic": {
		{"Bearings", "Excessive bearing noise usually indicates:", []string{"Wear or insufficient lubrication", "A fully healthy bearing", "Too much paint", "Low ambient temperature"}},
		{"Torque", "Bolted joints on rotating equipment are tightened:", []string{"To the torque given in the manual", "By feel, as tight as possible", "Finger tight", "Only when leaking"}},
		{"Lubrication", "Grease lubrication intervals are determined by:", []string{"The equipment maintenance schedule", "Operator mood", "The color of the grease", "The day of the week"}},
	},
	"technologist": {
		{"Process control", "A process parameter drifting beyond its control limits requires:", []string{"Investigation and corrective action", "Widening the limits", "Deleting the record", "No action"}},
		{"Quality", "A nonconforming batch must be:", []string{"Segregated and dispositioned per procedure", "Shipped immediately", "Mixed with a good batch", "Relabeled"}},
		{"Documentation", "Changes to a process recipe are made:", []string{"Through the formal change control process", "Verbally during a shift", "By anyone at any time", "Only on weekends"}},
	},
}

// Run populates an empty database with demo jobs, questions and candidates.
// It is a no-op when candidates already exist, so restarts are safe.
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Candidate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: counting candidates: %w", err)
	}
	if count > 0 {
		log.Info().Msg("Seed skipped, database already has candidates")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range professions {
			if err := seedJob(tx, name); err != nil {
				return err
			}
			for _, q := range questionBank[name] {
				if err := seedQuestionSet(tx, name, q); err != nil {
					return err
				}
			}
		}
		for _, c := range candidates {
			if err := seedCandidateRow(tx, c); err != nil {
				return err
			}
		}
		log.Info().
			Int("jobs", len(professions)).
			Int("candidates", len(candidates)).
			Msg("Seed data created")
		return nil
	})
}

func seedJob(tx *gorm.DB, name string) error {
	job := model.Job{Name: name, Active: true}
	if err := tx.Where("LOWER(name) = LOWER(?)", name).FirstOrCreate(&job).Error; err != nil {
		return fmt.Errorf("seed: job %q: %w", name, err)
	}
	return nil
}

func seedQuestionSet(tx *gorm.DB, profession string, q seedQuestion) error {
	question := model.Question{
		Title:      q.title,
		Profession: profession,
		Active:     true,
		CreatedBy:  "seed",
		Text:       q.text,
	}
	for i, text := range q.options {
		question.Options = append(question.Options, model.Option{
			Text:    text,
			Correct: i == 0,
		})
	}
	if err := tx.Create(&question).Error; err != nil {
		return fmt.Errorf("seed: question %q: %w", q.title, err)
	}
	return nil
}

func seedCandidateRow(tx *gorm.DB, c seedCandidate) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.passport), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hashing passport for %q: %w", c.fullName, err)
	}
	candidate := model.Candidate{
		FullName:     c.fullName,
		Profession:   c.profession,
		Login:        strings.ToUpper(c.passport),
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := tx.Create(&candidate).Error; err != nil {
		return fmt.Errorf("seed: candidate %q: %w", c.fullName, err)
	}
	return nil
}
