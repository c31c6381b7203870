package i18n

import (
	"context"
	"strings"
)

const defaultLang = "en"

type langKey struct{}

// WithLang returns a new context carrying the language code.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext retrieves the language from context.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return defaultLang
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	h := strings.ToLower(header)
	switch {
	case strings.HasPrefix(h, "fr"):
		return "fr"
	case strings.HasPrefix(h, "en"):
		return "en"
	}
	return defaultLang
}

var translations = map[string]map[string]string{
	"en": {
		"required":                  "Required",
		"too_long":                  "Too long",
		"must_not_be_negative":      "Must not be negative",
		"must_be_positive":          "Must be positive",
		"out_of_range":              "Out of range",
		"not_allowed":               "Not an allowed value",
		"too_early":                 "Date precedes the certification issue date",
		"too_late":                  "Date is too far in the future",
		"unknown_type":              "Unknown activity type",
		"unsupported_document_type": "Only PDF, PNG, JPG and JPEG files are allowed",
		"login_failed":              "Invalid username or password",
		"username_taken":            "Username already exists",
		"email_taken":               "Email already registered",
	},
	"fr": {
		"required":                  "Requis",
		"too_long":                  "Trop long",
		"must_not_be_negative":      "Ne doit pas être négatif",
		"must_be_positive":          "Doit être positif",
		"out_of_range":              "Hors limites",
		"not_allowed":               "Valeur non autorisée",
		"too_early":                 "La date précède la date d'émission de la certification",
		"too_late":                  "La date est trop loin dans le futur",
		"unknown_type":              "Type d'activité inconnu",
		"unsupported_document_type": "Seuls les fichiers PDF, PNG, JPG et JPEG sont autorisés",
		"login_failed":              "Identifiant ou mot de passe invalide",
		"username_taken":            "Ce nom d'utilisateur existe déjà",
		"email_taken":               "Cet email est déjà enregistré",
	},
}

// T translates a message code for the given language, falling back to the
// default language and finally to the code itself.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[defaultLang][code]; ok {
		return s
	}
	return code
}
