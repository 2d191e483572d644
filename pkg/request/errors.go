package request

import (
	"errors"
	"fmt"
)

// ErrProtocol is returned when the registry reports a revision or version
// the document cannot carry
var ErrProtocol = errors.New("unsupported protocol revision or version")

// Stage names the step of request construction that failed
type Stage string

const (
	StagePayload      Stage = "payload"
	StageHeader       Stage = "header"
	StageEnvelope     Stage = "envelope"
	StageSequence     Stage = "sequence"
	StageDocument     Stage = "document"
	StageValidate     Stage = "validate"
	StageAuthenticate Stage = "authenticate"
	StageSerialize    Stage = "serialize"
)

// BuildError reports which stage failed. The cause is available through
// errors.Is and errors.As.
type BuildError struct {
	Stage Stage
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	return &BuildError{Stage: stage, Err: err}
}
