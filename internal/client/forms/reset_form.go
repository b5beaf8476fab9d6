package forms

import (
	"context"
	"sync"
)

// KeyResetPasswordSuccess is stored in SubmissionState.Success after a
// reset email was sent.
const KeyResetPasswordSuccess = "auth.resetPasswordSuccess"

// PasswordResetter is the part of the credential executor the reset form
// uses.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, email string) error
}

// ResetPasswordForm drives the password-reset form.
type ResetPasswordForm struct {
	resetter PasswordResetter

	mu    sync.RWMutex
	email field

	sub submission
}

func NewResetPasswordForm(r PasswordResetter) *ResetPasswordForm {
	return &ResetPasswordForm{resetter: r}
}

func (f *ResetPasswordForm) SetEmail(v string) {
	f.mu.Lock()
	f.email.value = v
	f.mu.Unlock()
}

func (f *ResetPasswordForm) TouchEmail() {
	f.mu.Lock()
	f.email.touched = true
	f.mu.Unlock()
}

func (f *ResetPasswordForm) Email() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.email.value
}

func (f *ResetPasswordForm) EmailErrorKey() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.email.touched {
		return ""
	}
	return ValidateEmail(f.email.value)
}

func (f *ResetPasswordForm) Valid() bool {
	return ValidateEmail(f.Email()) == ""
}

func (f *ResetPasswordForm) State() SubmissionState {
	return f.sub.snapshot()
}

// Submit sends a reset email. On success the form is cleared and
// State().Success is KeyResetPasswordSuccess; on failure the email is kept.
func (f *ResetPasswordForm) Submit(ctx context.Context) error {
	if !f.sub.acquire() {
		return ErrSubmissionInFlight
	}

	f.mu.Lock()
	email := f.email.value
	if ValidateEmail(email) != "" {
		f.email.touched = true
		f.mu.Unlock()
		f.sub.release()
		return ErrInvalidForm
	}
	f.mu.Unlock()

	f.sub.start()
	err := f.resetter.ResetPassword(ctx, email)
	if err == nil {
		f.mu.Lock()
		f.email = field{}
		f.mu.Unlock()
	}
	f.sub.settle(err, KeyResetPasswordSuccess)
	return nil
}
