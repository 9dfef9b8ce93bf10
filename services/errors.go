package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation
	ErrValidationFailed   = errors.New("validation failed")
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrInvalidGender      = errors.New("gender must be F or M")
	ErrInvalidSkillClass  = errors.New("class must be low, medium or high")
	ErrPasswordTooShort   = errors.New("password is too short")

	// Entities
	ErrPlayerNotFound = errors.New("player not found")
	ErrRoundNotFound  = errors.New("round not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNoRounds       = errors.New("no rounds have been generated yet")

	// Rules
	ErrMatchAlreadyDecided = errors.New("match already has a winner")
	ErrWinnerNotInMatch    = errors.New("winner team does not play in this match")
	ErrRoundConflict       = errors.New("another round was generated at the same time")
	ErrOnlyLatestRound     = errors.New("only the latest round can be deleted")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Publishing
	ErrPublishingDisabled = errors.New("publishing is not configured")
)
