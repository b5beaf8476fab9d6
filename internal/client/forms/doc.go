// Package forms contains the controllers behind the authentication forms:
// the dual-mode login/register form and the password-reset form.
//
// A form owns its field values, the touched flags that decide when
// validation errors are shown, and a SubmissionState. Each form instance
// runs at most one submission at a time; a second Submit while one is in
// flight returns ErrSubmissionInFlight. Operation errors never escape a
// form: they end up in SubmissionState.Error.
package forms
