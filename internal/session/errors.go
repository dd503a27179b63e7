package session

import (
	"errors"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/aggregator"
)

var (
	ErrMalformedFrame   = errors.New("malformed progress frame")
	ErrServerReported   = errors.New("analysis service reported an error")
	ErrConnectivityLost = errors.New("lost connection to analysis service")
	ErrIdleTimeout      = errors.New("no progress frames within idle timeout")

	ErrResultIndexOutOfRange = aggregator.ErrResultIndexOutOfRange
)

// IsUserVisible - ошибки, которые показываются пользователю модальным окном.
func IsUserVisible(err error) bool {
	return errors.Is(err, ErrServerReported) || errors.Is(err, ErrConnectivityLost)
}
