// Package sheet provides the datasheet templating utilities.
package sheet

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/verte-zerg/cvsheet/internal/languages"
)

// Placeholders substituted by Fill.
const (
	LocalePlaceholder      = "{{LOCALE}}"
	EnglishNamePlaceholder = "{{ENGLISH_NAME}}"
	NativeNamePlaceholder  = "{{NATIVE_NAME}}"
)

// Fill substitutes the locale placeholders of template. A blank native name
// is rendered as the English name in angle brackets.
func Fill(template, locale string, entry languages.Entry) string {
	native := entry.NativeName
	if native == "" {
		native = "<" + entry.EnglishName + ">"
	}
	return strings.NewReplacer(
		LocalePlaceholder, locale,
		EnglishNamePlaceholder, entry.EnglishName,
		NativeNamePlaceholder, native,
	).Replace(template)
}

var (
	descriptionKey  = regexp.MustCompile(`^==[^ ]+==$`)
	placeholder     = regexp.MustCompile(`{{[^}]+}}`)
	extraBlankLines = regexp.MustCompile(`\n\n\n+`)
)

// ParseDescription reads `==KEY==` delimited blocks. Text before the first
// key is ignored and values are trimmed.
func ParseDescription(r io.Reader) (map[string]string, error) {
	table := map[string]string{}
	var current string
	var body strings.Builder
	flush := func() {
		if current != "" {
			table[current] = strings.TrimSpace(body.String())
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if descriptionKey.MatchString(strings.TrimRight(line, "\r")) {
			flush()
			current = strings.ReplaceAll(strings.TrimSpace(line), "=", "")
			continue
		}
		if current != "" {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return table, nil
}

// Describe replaces every `{{KEY}}` in template with its value from table.
// Unknown keys are removed, then runs of blank lines collapse to one.
func Describe(template string, table map[string]string) string {
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return table[strings.Trim(m, "{}")]
	})
	return extraBlankLines.ReplaceAllString(out, "\n\n")
}
