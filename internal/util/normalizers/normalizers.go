package normalizers

import (
	"strings"
)

const Indentation = `  `

type source struct {
	string
}

// LongDesc normalizes a command's long description: surrounding blank lines
// are dropped and every line loses its source indentation. Paragraph breaks
// are kept.
func LongDesc(s string) string {
	return source{s}.trim().dedent().string
}

// Examples normalizes a command's examples: every line is indented by
// Indentation regardless of how it was indented in source.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	return source{s}.trim().dedent().indent().string
}

func (s source) trim() source {
	s.string = strings.TrimSpace(s.string)
	return s
}

func (s source) dedent() source {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s.string = strings.Join(lines, "\n")
	return s
}

func (s source) indent() source {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = Indentation + line
	}
	s.string = strings.Join(lines, "\n")
	return s
}
