package forms

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/client/services"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records calls and returns canned errors. When gate is set,
// every call blocks on it.
type fakeExecutor struct {
	LoginErr, RegisterErr, SocialErr, ResetErr error

	gate    chan struct{}
	entered chan struct{}

	mu         sync.Mutex
	calls      []string
	LastEmail  string
	LastPass   string
	LastSocial models.SocialProvider
}

func (f *fakeExecutor) record(op, email, pass string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.LastEmail, f.LastPass = email, pass
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeExecutor) Login(_ context.Context, email, password string) error {
	f.record("login", email, password)
	return f.LoginErr
}

func (f *fakeExecutor) Register(_ context.Context, email, password string) error {
	f.record("register", email, password)
	return f.RegisterErr
}

func (f *fakeExecutor) SocialSignIn(_ context.Context, kind models.SocialProvider) error {
	f.mu.Lock()
	f.LastSocial = kind
	f.mu.Unlock()
	f.record("social", "", "")
	return f.SocialErr
}

func (f *fakeExecutor) ResetPassword(_ context.Context, email string) error {
	f.record("reset", email, "")
	return f.ResetErr
}

func (f *fakeExecutor) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestAuthForm_ErrorsHiddenUntilTouched(t *testing.T) {
	f := NewAuthForm(ModeLogin, &fakeExecutor{})
	f.SetEmail("not-an-email")
	f.SetPassword("123")

	assert.Empty(t, f.EmailErrorKey())
	assert.Empty(t, f.PasswordErrorKey())

	f.TouchEmail()
	f.TouchPassword()
	assert.Equal(t, KeyEmailInvalid, f.EmailErrorKey())
	assert.Equal(t, KeyPasswordMinLength, f.PasswordErrorKey())
	assert.False(t, f.Valid())
}

func TestAuthForm_InvalidEmailNeverReachesExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewAuthForm(ModeLogin, exec)
	f.SetEmail("not-an-email")
	f.SetPassword("secret1")

	err := f.Submit(context.Background())

	require.ErrorIs(t, err, ErrInvalidForm)
	assert.Empty(t, exec.Calls())
	assert.Equal(t, KeyEmailInvalid, f.EmailErrorKey())
	assert.Empty(t, f.PasswordErrorKey())
	assert.Equal(t, SubmissionState{}, f.State())
}

func TestAuthForm_SubmitRevealsRequiredErrors(t *testing.T) {
	f := NewAuthForm(ModeRegister, &fakeExecutor{})

	require.ErrorIs(t, f.Submit(context.Background()), ErrInvalidForm)
	assert.Equal(t, KeyEmailRequired, f.EmailErrorKey())
	assert.Equal(t, KeyPasswordRequired, f.PasswordErrorKey())

	// the lock was released
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")
	require.NoError(t, f.Submit(context.Background()))
}

func TestAuthForm_LoginSuccessEmitsSignal(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewAuthForm(ModeLogin, exec)
	var signals int
	f.OnSuccess(func() { signals++ })
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, []string{"login"}, exec.Calls())
	assert.Equal(t, "a@b.co", exec.LastEmail)
	assert.Equal(t, "secret1", exec.LastPass)
	assert.Equal(t, 1, signals)
	assert.Equal(t, SubmissionState{}, f.State())
}

func TestAuthForm_RegisterModeCallsRegister(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewAuthForm(ModeRegister, exec)
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, []string{"register"}, exec.Calls())
}

func TestAuthForm_OperationErrorStoredNotReturned(t *testing.T) {
	exec := &fakeExecutor{LoginErr: services.MapError(&client.ProviderError{Code: client.CodeWrongPassword})}
	f := NewAuthForm(ModeLogin, exec)
	var signals int
	f.OnSuccess(func() { signals++ })
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))

	if diff := cmp.Diff(SubmissionState{Error: "incorrect credentials"}, f.State()); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, signals)

	// next attempt clears the previous error
	exec.LoginErr = nil
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, SubmissionState{}, f.State())
}

func TestAuthForm_LoadingOnlyWhileInFlight(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := NewAuthForm(ModeLogin, exec)
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-exec.entered

	assert.Equal(t, SubmissionState{Loading: true}, f.State())
	require.ErrorIs(t, f.Submit(context.Background()), ErrSubmissionInFlight)
	require.ErrorIs(t, f.SignInWithGoogle(context.Background()), ErrSubmissionInFlight)

	close(exec.gate)
	require.NoError(t, <-done)
	assert.False(t, f.State().Loading)
	assert.Equal(t, []string{"login"}, exec.Calls())
}

func TestAuthForm_ConcurrentSubmitsRunOnce(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	f := NewAuthForm(ModeLogin, exec)
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	var rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Submit(context.Background()) == ErrSubmissionInFlight {
				rejected.Add(1)
			}
		}()
	}
	require.Eventually(t, func() bool { return rejected.Load() == 9 }, time.Second, time.Millisecond)
	close(exec.gate)
	wg.Wait()

	assert.Len(t, exec.Calls(), 1)
}

func TestAuthForm_SocialSkipsValidation(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewAuthForm(ModeRegister, exec)
	var signals int
	f.OnSuccess(func() { signals++ })

	require.NoError(t, f.SignInWithApple(context.Background()))
	assert.Equal(t, models.SocialApple, exec.LastSocial)
	require.NoError(t, f.SignInWithGoogle(context.Background()))
	assert.Equal(t, models.SocialGoogle, exec.LastSocial)
	assert.Equal(t, 2, signals)
	assert.Empty(t, f.EmailErrorKey(), "social sign-in does not touch fields")

	exec.SocialErr = services.MapError(&client.ProviderError{Code: client.CodeUserDisabled})
	require.NoError(t, f.SignInWithGoogle(context.Background()))
	assert.Equal(t, "account disabled", f.State().Error)
	assert.Equal(t, 2, signals)
}

func TestAuthForm_ModeKeys(t *testing.T) {
	login := NewAuthForm(ModeLogin, nil)
	register := NewAuthForm(ModeRegister, nil)

	assert.Equal(t, ModeLogin, login.Mode())
	assert.Equal(t, "auth.login", login.TitleKey())
	assert.Equal(t, "auth.login", login.SubmitButtonKey())
	assert.Equal(t, "auth.signInWithGoogle", login.GoogleButtonKey())
	assert.Equal(t, "auth.signInWithApple", login.AppleButtonKey())

	assert.Equal(t, "auth.createAccount", register.TitleKey())
	assert.Equal(t, "auth.register", register.SubmitButtonKey())
	assert.Equal(t, "auth.signUpWithGoogle", register.GoogleButtonKey())
	assert.Equal(t, "auth.signUpWithApple", register.AppleButtonKey())
}

func TestResetForm_Success(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewResetPasswordForm(exec)
	f.SetEmail("a@b.co")
	f.TouchEmail()

	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, []string{"reset"}, exec.Calls())
	assert.Equal(t, "a@b.co", exec.LastEmail)
	assert.Equal(t, SubmissionState{Success: KeyResetPasswordSuccess}, f.State())
	assert.Empty(t, f.Email())
	assert.Empty(t, f.EmailErrorKey(), "reset form is untouched again")
}

func TestResetForm_UserNotFoundKeepsEmail(t *testing.T) {
	exec := &fakeExecutor{ResetErr: services.MapError(&client.ProviderError{
		Code:    client.CodeUserNotFound,
		Message: "There is no user record corresponding to this identifier.",
	})}
	f := NewResetPasswordForm(exec)
	f.SetEmail("ghost@b.co")

	require.NoError(t, f.Submit(context.Background()))

	st := f.State()
	assert.Equal(t, "no account found for this email", st.Error)
	assert.Empty(t, st.Success)
	assert.False(t, st.Loading)
	assert.Equal(t, "ghost@b.co", f.Email())
}

func TestResetForm_Invalid(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewResetPasswordForm(exec)
	f.SetEmail("nope")

	require.ErrorIs(t, f.Submit(context.Background()), ErrInvalidForm)
	assert.Empty(t, exec.Calls())
	assert.Equal(t, KeyEmailInvalid, f.EmailErrorKey())
	assert.False(t, f.Valid())
}

func TestResetForm_NextAttemptClearsOutcome(t *testing.T) {
	exec := &fakeExecutor{}
	f := NewResetPasswordForm(exec)
	f.SetEmail("a@b.co")
	require.NoError(t, f.Submit(context.Background()))
	require.Equal(t, KeyResetPasswordSuccess, f.State().Success)

	exec.ResetErr = services.MapError(&client.ProviderError{Code: client.CodeTooManyRequests})
	f.SetEmail("a@b.co")
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, SubmissionState{Error: "too many attempts, retry later"}, f.State())
}

func TestErrorMessage_UnmappedError(t *testing.T) {
	exec := &fakeExecutor{LoginErr: client.ErrUnavailable}
	f := NewAuthForm(ModeLogin, exec)
	f.SetEmail("a@b.co")
	f.SetPassword("secret1")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "network error", f.State().Error)
}
