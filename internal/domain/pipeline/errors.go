package pipeline

import "errors"

var (
	ErrJobRefRequired = errors.New("job ref is required")
	ErrInvalidJobRef  = errors.New("invalid job ref")
	ErrIntentRequired = errors.New("job intent is required")

	ErrInvalidStatus          = errors.New("invalid job status")
	ErrRetryRunningJob        = errors.New("cannot retry a job while it is running")
	ErrCancelTerminalJob      = errors.New("cannot cancel a job in a terminal state")
	ErrApproveCancelledJob    = errors.New("cannot approve a cancelled job")
	ErrProcessCancelledJob    = errors.New("cannot process a cancelled job")
	ErrInvalidDispatchMode    = errors.New("invalid dispatch mode")
	ErrInvalidConnectorConfig = errors.New("connector config does not match its type schema")
)
