package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrOddCardCount    = errors.New("card count must be even")
	ErrTooFewCards     = errors.New("not enough cards")
	ErrTooManyPairs    = errors.New("more pairs requested than symbols available")
	ErrDuplicateSymbol = errors.New("symbol catalog contains duplicates")
	ErrTooFewPlayers   = errors.New("not enough players")
)

// ConfigurationError reports an invalid setting. Err is one of the Err* sentinels.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}
