package pipeline

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrPipelineBusy reports that another full run holds the pipeline lock.
var ErrPipelineBusy = errors.New("pipeline run already in progress")

type runLock struct {
	path string
}

// acquire takes the lock without waiting and returns the release function.
func (l runLock) acquire() (func(), error) {
	lock := flock.New(l.path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrPipelineBusy, l.path)
	}
	return func() { _ = lock.Unlock() }, nil
}
