// Package i18n translates the client's message keys (e.g. "auth.login")
// into English or French using golang.org/x/text.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.English: {
		"auth.login":                    "Log in",
		"auth.register":                 "Sign up",
		"auth.createAccount":            "Create an account",
		"auth.email":                    "Email",
		"auth.password":                 "Password",
		"auth.signInWithGoogle":         "Sign in with Google",
		"auth.signUpWithGoogle":         "Sign up with Google",
		"auth.signInWithApple":          "Sign in with Apple",
		"auth.signUpWithApple":          "Sign up with Apple",
		"auth.resetPassword":            "Forgot password?",
		"auth.resetPasswordDescription": "Enter your email and we will send you a link to reset your password.",
		"auth.reset":                    "Send reset link",
		"auth.resetPasswordSuccess":     "A password reset email has been sent.",
		"auth.emailRequired":            "Email is required",
		"auth.emailInvalid":             "Please enter a valid email address",
		"auth.passwordRequired":         "Password is required",
		"auth.passwordMinLength":        "Password must be at least 6 characters",
		"auth.logout":                   "Log out",
		"cli.welcome":                   "Welcome. Type help to list commands.",
		"cli.help":                      "Commands: login, register, reset, google, apple, logout, open <path>, status, exit",
		"cli.location":                  "Location: %s",
		"cli.signedInAs":                "Signed in as %s",
		"cli.signedOut":                 "Not signed in",
		"cli.initializing":              "Waiting for the identity provider...",
		"cli.online":                    "Online",
		"cli.offline":                   "Offline: the identity provider is unreachable",
		"cli.unknownCommand":            "Unknown command: %s",
		"cli.bye":                       "Bye",
	},
	language.French: {
		"auth.login":                    "Se connecter",
		"auth.register":                 "S'inscrire",
		"auth.createAccount":            "Créer un compte",
		"auth.email":                    "E-mail",
		"auth.password":                 "Mot de passe",
		"auth.signInWithGoogle":         "Se connecter avec Google",
		"auth.signUpWithGoogle":         "S'inscrire avec Google",
		"auth.signInWithApple":          "Se connecter avec Apple",
		"auth.signUpWithApple":          "S'inscrire avec Apple",
		"auth.resetPassword":            "Mot de passe oublié ?",
		"auth.resetPasswordDescription": "Saisissez votre e-mail pour recevoir un lien de réinitialisation.",
		"auth.reset":                    "Envoyer le lien",
		"auth.resetPasswordSuccess":     "Un e-mail de réinitialisation a été envoyé.",
		"auth.emailRequired":            "L'e-mail est obligatoire",
		"auth.emailInvalid":             "Veuillez saisir une adresse e-mail valide",
		"auth.passwordRequired":         "Le mot de passe est obligatoire",
		"auth.passwordMinLength":        "Le mot de passe doit contenir au moins 6 caractères",
		"auth.logout":                   "Se déconnecter",
		"cli.welcome":                   "Bienvenue. Tapez help pour la liste des commandes.",
		"cli.help":                      "Commandes : login, register, reset, google, apple, logout, open <chemin>, status, exit",
		"cli.location":                  "Emplacement : %s",
		"cli.signedInAs":                "Connecté en tant que %s",
		"cli.signedOut":                 "Non connecté",
		"cli.initializing":              "En attente du fournisseur d'identité...",
		"cli.online":                    "En ligne",
		"cli.offline":                   "Hors ligne : le fournisseur d'identité est injoignable",
		"cli.unknownCommand":            "Commande inconnue : %s",
		"cli.bye":                       "Au revoir",
	},
}

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			// keys and messages are static, SetString only fails on bad tags
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

var defaultCatalog = newCatalog()

// Translator renders message keys in one language. Unknown keys are
// returned as is.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the best supported match of lang (a BCP 47
// tag such as "fr-CA"). Unsupported or empty values select English.
func New(lang string) *Translator {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			tag = s
			break
		}
	}
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

// Language returns the selected language.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// T translates key, formatting args into the message.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
