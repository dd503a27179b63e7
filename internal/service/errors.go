package service

import "errors"

var (
	ErrPersistenceWriteFailed = errors.New("failed to persist analysis results")
	ErrNoFiles                = errors.New("no files selected")
)
