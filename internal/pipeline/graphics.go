package pipeline

import (
	"regexp"
	"strings"
)

var (
	// Lines mentioning graphics inclusion or an image/pdf file.
	graphicsLine = regexp.MustCompile(`(?i)(?:\\includegraphics|\\includepdf|\\input\s*\{|\\include\s*\{|\\pgfimage|\\graphicspath|\\DeclareGraphicsExtensions|\\begin\s*\{figure\}|\\end\s*\{figure\}|\\centering|\\caption\s*\{|\.(?:pdf|png|jpe?g|eps|svg)\b)`)

	commentedLine = regexp.MustCompile(`^\s*%`)
)

// CommentGraphics comments out every line that includes a figure or names an
// image file, keeping its indentation and line ending. Lines that are already
// comments are left alone, so a second pass changes nothing. changed reports
// whether any line was rewritten.
func CommentGraphics(text string) (out string, changed bool) {
	if text == "" {
		return text, false
	}

	lines := strings.SplitAfter(text, "\n")
	for i, line := range lines {
		if !graphicsLine.MatchString(line) || commentedLine.MatchString(line) {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		lines[i] = line[:indent] + "%" + line[indent:]
		changed = true
	}
	if !changed {
		return text, false
	}
	return strings.Join(lines, ""), true
}
