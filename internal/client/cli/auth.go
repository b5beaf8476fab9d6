package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authgate/internal/client/forms"
	"github.com/dmitrijs2005/authgate/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptCredentials asks for an email and a password and fills form.
func (a *App) promptCredentials(form *forms.AuthForm) error {
	email, err := getSimpleText(a.reader, a.tr.T("auth.email"), a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form.SetEmail(email)
	form.SetPassword(string(password))
	form.TouchEmail()
	form.TouchPassword()
	return nil
}

// submitAuthForm runs the login or register form and reports the outcome.
// On success the auth screen takes the user to the protected area.
func (a *App) submitAuthForm(ctx context.Context, form *forms.AuthForm) error {
	if a.isLoggedIn() {
		printlnFn(a.tr.T("cli.signedInAs", a.store.CurrentIdentity().Email))
		return nil
	}
	if form.Mode() == forms.ModeLogin {
		a.screen.OpenLogin()
		defer a.screen.CloseLogin()
	} else {
		a.screen.OpenRegister()
		defer a.screen.CloseRegister()
	}
	printlnFn(a.tr.T(form.TitleKey()))

	if err := a.promptCredentials(form); err != nil {
		return err
	}
	if err := form.Submit(ctx); err != nil {
		if errors.Is(err, forms.ErrInvalidForm) {
			a.printFieldErrors(form.EmailErrorKey(), form.PasswordErrorKey())
		}
		return err
	}
	return a.report(form.State())
}

func (a *App) Login(ctx context.Context) error {
	return a.submitAuthForm(ctx, a.loginForm)
}

func (a *App) Register(ctx context.Context) error {
	return a.submitAuthForm(ctx, a.registerForm)
}

func (a *App) SignInWithGoogle(ctx context.Context) error {
	printlnFn(a.tr.T(a.loginForm.GoogleButtonKey()))
	if err := a.loginForm.SignInWithGoogle(ctx); err != nil {
		return err
	}
	return a.report(a.loginForm.State())
}

func (a *App) SignInWithApple(ctx context.Context) error {
	printlnFn(a.tr.T(a.loginForm.AppleButtonKey()))
	if err := a.loginForm.SignInWithApple(ctx); err != nil {
		return err
	}
	return a.report(a.loginForm.State())
}

// ResetPassword asks for an email and sends a reset link to it.
func (a *App) ResetPassword(ctx context.Context) error {
	a.screen.OpenResetPassword()
	defer a.screen.CloseResetPassword()

	printlnFn(a.tr.T("auth.resetPasswordDescription"))
	email, err := getSimpleText(a.reader, a.tr.T("auth.email"), a.out)
	if err != nil {
		return err
	}
	a.resetForm.SetEmail(email)
	a.resetForm.TouchEmail()

	if err := a.resetForm.Submit(ctx); err != nil {
		if errors.Is(err, forms.ErrInvalidForm) {
			a.printFieldErrors(a.resetForm.EmailErrorKey())
		}
		return err
	}
	return a.report(a.resetForm.State())
}

// Logout signs out; the credential service redirects to the auth area.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn(a.tr.T("cli.signedOut"))
	return nil
}

func (a *App) printFieldErrors(keys ...string) {
	for _, k := range keys {
		if k != "" {
			printlnFn(a.tr.T(k))
		}
	}
}

// errOperationFailed marks a settled submission that ended with an error
// already shown to the user.
var errOperationFailed = errors.New("operation failed")

// report prints the outcome of a settled submission.
func (a *App) report(st forms.SubmissionState) error {
	switch {
	case st.Error != "":
		printlnFn(st.Error)
		return errOperationFailed
	case st.Success != "":
		printlnFn(a.tr.T(st.Success))
	default:
		printlnFn("Success!")
	}
	return nil
}
