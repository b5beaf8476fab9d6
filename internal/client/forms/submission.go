package forms

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/authgate/internal/client/services"
)

var (
	ErrInvalidForm        = errors.New("form is invalid")
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// SubmissionState is the observable outcome of a form's submissions. An
// empty Error or Success means unset.
type SubmissionState struct {
	Loading bool
	Error   string
	Success string
}

// submission is the single-flight bracket shared by all forms.
type submission struct {
	inFlight atomic.Bool

	mu    sync.RWMutex
	state SubmissionState
}

// acquire takes the per-instance lock without touching the state.
func (s *submission) acquire() bool {
	return s.inFlight.CompareAndSwap(false, true)
}

func (s *submission) release() {
	s.inFlight.Store(false)
}

// start clears both outcomes and marks the form as loading.
func (s *submission) start() {
	s.mu.Lock()
	s.state = SubmissionState{Loading: true}
	s.mu.Unlock()
}

// settle records exactly one outcome and releases the lock.
func (s *submission) settle(err error, success string) {
	s.mu.Lock()
	if err != nil {
		s.state = SubmissionState{Error: errorMessage(err)}
	} else {
		s.state = SubmissionState{Success: success}
	}
	s.mu.Unlock()
	s.release()
}

func (s *submission) snapshot() SubmissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func errorMessage(err error) string {
	var opErr *services.OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return services.MapError(err).Error()
}
