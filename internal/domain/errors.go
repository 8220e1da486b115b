package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest     = errors.New("invalid run request")
	ErrUnknownBrand       = errors.New("unknown brand")
	ErrInputNotFound      = errors.New("input file not found")
	ErrNoKeywords         = errors.New("no keywords imported")
	ErrContentRootMissing = errors.New("content root does not exist")
	ErrLLMNotConfigured   = errors.New("llm client is not configured")
	ErrSourceUnavailable  = errors.New("keyword source unavailable")
)

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
