package app

import (
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/rs/zerolog"
)

type logListener struct {
	logger zerolog.Logger
}

func (l logListener) StateChanged(st session.State) {
	l.logger.Debug().
		Str("session_id", st.SessionID).
		Str("phase", string(st.Phase)).
		Float64("progress", st.Progress).
		Msg("Session state changed")
}

func (l logListener) Notify(err error) {
	l.logger.Error().Err(err).Bool("user_visible", session.IsUserVisible(err)).Msg("Analysis session error")
}
