// Package languages resolves display names for Common Voice locales.
package languages

import (
	"strings"

	"github.com/verte-zerg/cvsheet/internal/model"
)

var builtinNames = map[string]string{
	"kk":    "Kazakh",
	"ky":    "Kyrgyz",
	"uz":    "Uzbek",
	"az":    "Azerbaijani",
	"tg":    "Tajik",
	"ru":    "Russian",
	"tr":    "Turkish",
	"en":    "English",
	"nn-NO": "Norwegian Nynorsk",
	"tt":    "Tatar",
}

// BuiltinName returns the English name of code, or the upper-cased code
// when it is unknown.
func BuiltinName(code string) string {
	if name, ok := builtinNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// Resolver looks names up in config overrides, then metadata, then the
// built-in table.
type Resolver struct {
	overrides map[string]string
	metadata  Metadata
}

// NewResolver returns a resolver. Both arguments may be nil.
func NewResolver(overrides map[string]string, metadata Metadata) *Resolver {
	return &Resolver{overrides: overrides, metadata: metadata}
}

// Name returns the English name for code.
func (r *Resolver) Name(code string) string {
	if name := strings.TrimSpace(r.overrides[code]); name != "" {
		return name
	}
	if entry, ok := r.metadata[code]; ok && entry.EnglishName != "" {
		return entry.EnglishName
	}
	return BuiltinName(code)
}

// Language returns the code with its resolved name.
func (r *Resolver) Language(code string) model.Language {
	return model.Language{Code: code, Name: r.Name(code)}
}
