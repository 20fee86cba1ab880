package sheet

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type section struct {
	// level is 0 for the text before the first heading.
	level int
	lines []string
}

func (s section) body() string {
	if s.level == 0 {
		return strings.Join(s.lines, "\n")
	}
	return strings.Join(s.lines[1:], "\n")
}

func (s section) empty() bool {
	return strings.TrimSpace(s.body()) == ""
}

// Prune removes sections that still hold an unfilled `{{` placeholder or
// have no content of their own nor any kept subsection. It returns the
// remaining markdown and the number of dropped sections. Headings inside
// code blocks do not start sections.
func Prune(markdown []byte) (string, int) {
	sections := splitSections(markdown)
	keep := make([]bool, len(sections))
	for i := len(sections) - 1; i >= 0; i-- {
		s := sections[i]
		if strings.Contains(strings.Join(s.lines, "\n"), "{{") {
			continue
		}
		if !s.empty() {
			keep[i] = true
			continue
		}
		if s.level == 0 {
			continue
		}
		for j := i + 1; j < len(sections) && sections[j].level > s.level; j++ {
			if keep[j] {
				keep[i] = true
				break
			}
		}
	}

	var out []string
	dropped := 0
	for i, s := range sections {
		if keep[i] {
			out = append(out, s.lines...)
			continue
		}
		if s.level == 0 && s.empty() {
			continue
		}
		dropped++
	}
	result := strings.Join(out, "\n")
	if len(out) > 0 && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result, dropped
}

func splitSections(source []byte) []section {
	lines := strings.Split(strings.TrimRight(string(source), "\n"), "\n")
	levels := headingLevels(source)

	sections := []section{{level: 0}}
	for i, line := range lines {
		if level, ok := levels[i]; ok {
			sections = append(sections, section{level: level})
		}
		last := &sections[len(sections)-1]
		last.lines = append(last.lines, line)
	}
	return sections
}

// headingLevels maps 0-based line numbers of ATX headings to their level.
func headingLevels(source []byte) map[int]int {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	levels := map[int]int{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		line := bytes.Count(source[:h.Lines().At(0).Start], []byte("\n"))
		lineStart := 0
		if idx := bytes.LastIndexByte(source[:h.Lines().At(0).Start], '\n'); idx >= 0 {
			lineStart = idx + 1
		}
		if bytes.HasPrefix(bytes.TrimLeft(source[lineStart:], " "), []byte("#")) {
			levels[line] = h.Level
		}
		return ast.WalkSkipChildren, nil
	})
	return levels
}
