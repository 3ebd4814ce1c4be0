package service

import "errors"

var (
	// ErrCandidateNotFound is returned when a candidate id or login resolves to nothing.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrCandidateInactive is returned when a deactivated candidate tries to authenticate or start an exam.
	ErrCandidateInactive = errors.New("candidate is inactive")
	// ErrInvalidCredentials covers both unknown logins and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrAttemptNotFound is returned for unknown attempts and for attempts owned by a different candidate.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptFinished is returned when progress is saved to, or a submit is replayed on, a finished attempt.
	ErrAttemptFinished = errors.New("attempt already finished")
	// ErrNoQuestionsForProfession is returned when the profession's bank has no active questions to freeze.
	ErrNoQuestionsForProfession = errors.New("no questions found for profession")
	// ErrAttemptLimitExceeded is returned when the configured per-candidate attempt cap is reached.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")

	// ErrQuestionNotFound is returned by the question bank administration.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrExactlyOneCorrectOption guards the authoring invariant the attempt engine trusts.
	ErrExactlyOneCorrectOption = errors.New("exactly one option must be correct")
	// ErrQuestionInUse blocks deleting a question referenced by any attempt.
	ErrQuestionInUse = errors.New("cannot delete question used in attempts")
	// ErrLoginExists is returned when a candidate login is already taken.
	ErrLoginExists = errors.New("candidate login already exists")
	// ErrCandidateHasAttempts blocks deleting a candidate with exam history.
	ErrCandidateHasAttempts = errors.New("cannot delete candidate with attempts")
	// ErrJobNotFound is returned by the job administration.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNameExists is returned when a job name is already taken.
	ErrJobNameExists = errors.New("job already exists")
	// ErrJobInUse blocks deleting a job with linked candidates or questions.
	ErrJobInUse = errors.New("cannot delete job with linked candidates or questions")
)
