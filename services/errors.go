package services

import (
	"errors"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrTeamNotFound = errors.New("team not found")
	ErrUserNotFound = errors.New("user not found")

	// Недопустимые переходы статуса. Сообщения показываются оператору как есть.
	ErrAlreadyCheckedIn = errors.New("Team is already checked in and cannot change status")
	ErrTeamCompleted    = errors.New("Team has completed their competition and cannot change status")
	ErrAlreadyWaiting   = errors.New("Team is already in waiting area")
	ErrTeamEarly        = errors.New("Team is early. Please send them to the waiting area.")

	// Статус команды изменился между чтением и записью
	ErrStatusConflict = errors.New("team status changed concurrently, reload and try again")

	// Дубликаты
	ErrTeamNumberConflict = errors.New("team number is already in use")
	ErrAlreadyScored      = errors.New("You have already scored this team")
	ErrUserEmailConflict  = errors.New("email address is already in use")

	// Ошибки валидации
	ErrValidationFailed     = errors.New("validation failed")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
	ErrInvalidTargetStatus  = errors.New("status must be one of: waiting, checked-in")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrArchiveNotConfigured = errors.New("export archive storage is not configured")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

// ValidationError carries per-field messages. It matches ErrValidationFailed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

type validator map[string]string

func (v validator) check(ok bool, field, message string) {
	if !ok {
		if _, exists := v[field]; !exists {
			v[field] = message
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}
