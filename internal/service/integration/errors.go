package integration

import "errors"

var (
	ErrUploadFailed      = errors.New("upload failed")
	ErrStreamUnavailable = errors.New("progress stream unavailable")
)
