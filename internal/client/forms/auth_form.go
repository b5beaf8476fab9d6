package forms

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authgate/internal/client/models"
)

// Mode selects what the dual-mode form does on submit.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// Authenticator is the part of the credential executor the auth form uses.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
	SocialSignIn(ctx context.Context, kind models.SocialProvider) error
}

type field struct {
	value   string
	touched bool
}

// AuthForm drives the login and register forms.
type AuthForm struct {
	mode Mode
	auth Authenticator

	mu       sync.RWMutex
	email    field
	password field
	onOK     []func()

	sub submission
}

func NewAuthForm(mode Mode, auth Authenticator) *AuthForm {
	return &AuthForm{mode: mode, auth: auth}
}

func (f *AuthForm) Mode() Mode { return f.mode }

func (f *AuthForm) SetEmail(v string) {
	f.mu.Lock()
	f.email.value = v
	f.mu.Unlock()
}

func (f *AuthForm) SetPassword(v string) {
	f.mu.Lock()
	f.password.value = v
	f.mu.Unlock()
}

func (f *AuthForm) TouchEmail() {
	f.mu.Lock()
	f.email.touched = true
	f.mu.Unlock()
}

func (f *AuthForm) TouchPassword() {
	f.mu.Lock()
	f.password.touched = true
	f.mu.Unlock()
}

func (f *AuthForm) Email() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.email.value
}

// EmailErrorKey returns the validation key of the email field, or "" when
// it is valid or not touched yet.
func (f *AuthForm) EmailErrorKey() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.email.touched {
		return ""
	}
	return ValidateEmail(f.email.value)
}

// PasswordErrorKey is EmailErrorKey for the password field.
func (f *AuthForm) PasswordErrorKey() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.password.touched {
		return ""
	}
	return ValidatePassword(f.password.value)
}

func (f *AuthForm) Valid() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return ValidateEmail(f.email.value) == "" && ValidatePassword(f.password.value) == ""
}

func (f *AuthForm) State() SubmissionState {
	return f.sub.snapshot()
}

// OnSuccess registers a callback run after every successful sign-in.
func (f *AuthForm) OnSuccess(fn func()) {
	f.mu.Lock()
	f.onOK = append(f.onOK, fn)
	f.mu.Unlock()
}

func (f *AuthForm) TitleKey() string {
	if f.mode == ModeLogin {
		return "auth.login"
	}
	return "auth.createAccount"
}

func (f *AuthForm) SubmitButtonKey() string {
	if f.mode == ModeLogin {
		return "auth.login"
	}
	return "auth.register"
}

func (f *AuthForm) GoogleButtonKey() string {
	if f.mode == ModeLogin {
		return "auth.signInWithGoogle"
	}
	return "auth.signUpWithGoogle"
}

func (f *AuthForm) AppleButtonKey() string {
	if f.mode == ModeLogin {
		return "auth.signInWithApple"
	}
	return "auth.signUpWithApple"
}

// Submit validates the form and runs login or register. An invalid form
// reveals all field errors and returns ErrInvalidForm without calling the
// executor. Operation failures are recorded in State, not returned.
func (f *AuthForm) Submit(ctx context.Context) error {
	if !f.sub.acquire() {
		return ErrSubmissionInFlight
	}

	f.mu.Lock()
	email, password := f.email.value, f.password.value
	if ValidateEmail(email) != "" || ValidatePassword(password) != "" {
		f.email.touched = true
		f.password.touched = true
		f.mu.Unlock()
		f.sub.release()
		return ErrInvalidForm
	}
	f.mu.Unlock()

	f.run(func() error {
		if f.mode == ModeLogin {
			return f.auth.Login(ctx, email, password)
		}
		return f.auth.Register(ctx, email, password)
	})
	return nil
}

func (f *AuthForm) SignInWithGoogle(ctx context.Context) error {
	return f.social(ctx, models.SocialGoogle)
}

func (f *AuthForm) SignInWithApple(ctx context.Context) error {
	return f.social(ctx, models.SocialApple)
}

func (f *AuthForm) social(ctx context.Context, kind models.SocialProvider) error {
	if !f.sub.acquire() {
		return ErrSubmissionInFlight
	}
	f.run(func() error {
		return f.auth.SocialSignIn(ctx, kind)
	})
	return nil
}

// run executes op inside the loading bracket and notifies listeners on
// success. The submission lock must be held.
func (f *AuthForm) run(op func() error) {
	f.sub.start()
	err := op()
	f.sub.settle(err, "")
	if err != nil {
		return
	}

	f.mu.RLock()
	listeners := append([]func(){}, f.onOK...)
	f.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
