// Package preprocess rewrites Markdown before it is handed to pandoc.
//
// Each transformation compensates for a known pandoc rendering defect:
//   - bullet lists glued to a preceding paragraph are merged into it
//   - manual "1.2." heading prefixes double up with --number-sections
//   - a title-less document gets an empty anchor above the generated TOC
//
// All functions are pure and deterministic.
package preprocess

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Bullet item: optional indentation, "-" or "*", then whitespace
	bulletPattern = regexp.MustCompile(`^[ \t]*[-*][ \t]`)

	// ATX heading with a manual numeric prefix ("## 1.2. Intro").
	// Group 1 keeps the hashes and the spacing that follows them.
	numberedHeading = regexp.MustCompile(`^(#{1,6}[ \t]+)\d+(?:\.\d+)*\.?[ \t]+`)

	// Fenced code block delimiter: up to three spaces, then at least three
	// backticks or tildes. Group 1 is the fence run.
	fencePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// frontMatterEscaper escapes a title for a double-quoted YAML scalar.
var frontMatterEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Preprocessor defines the contract for markdown preprocessing.
type Preprocessor interface {
	Preprocess(content string, numberSections, toc bool) string
}

// PandocPreprocessor applies the pandoc workarounds in their fixed order.
type PandocPreprocessor struct{}

// Compile-time interface check.
var _ Preprocessor = (*PandocPreprocessor)(nil)

// Preprocess implements Preprocessor.
func (PandocPreprocessor) Preprocess(content string, numberSections, toc bool) string {
	return Preprocess(content, numberSections, toc)
}

// Preprocess runs every transformation on content.
// Order matters: line endings first, then bullet spacing, then heading
// numbers, and title extraction last so it sees the final heading text.
func Preprocess(content string, numberSections, toc bool) string {
	if content == "" {
		return ""
	}

	content = NormalizeLineEndings(content)
	content = FixBulletSpacing(content)
	if numberSections {
		content = StripHeadingNumbers(content)
	}
	if toc {
		content = InjectTitle(content)
	}
	return content
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// FixBulletSpacing inserts a blank line before a bullet item whose previous
// line is paragraph text. Bullets that follow a blank line or another bullet
// are left alone, so running it twice changes nothing. Fenced code is
// copied as is.
func FixBulletSpacing(content string) string {
	lines := strings.Split(content, "\n")
	inCode := fencedLines(lines)
	result := make([]string, 0, len(lines))

	for i, line := range lines {
		if i > 0 && !inCode[i] && isBullet(line) {
			prev := lines[i-1]
			if !isBlankLine(prev) && !isBullet(prev) {
				result = append(result, "")
			}
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// StripHeadingNumbers removes manual numeric prefixes ("1.", "1.1",
// "2.3.4.") from heading text, keeping the heading level. Lines inside
// fenced code are not headings and keep their text.
func StripHeadingNumbers(content string) string {
	lines := strings.Split(content, "\n")
	inCode := fencedLines(lines)

	for i, line := range lines {
		if !inCode[i] {
			lines[i] = numberedHeading.ReplaceAllString(line, "$1")
		}
	}

	return strings.Join(lines, "\n")
}

// ExtractTitle removes the first level-1 heading ("# Title") outside fenced
// code from content and returns its trimmed text. ok is false when there is
// no such heading, in which case body equals content.
func ExtractTitle(content string) (title, body string, ok bool) {
	lines := strings.Split(content, "\n")
	inCode := fencedLines(lines)

	for i, line := range lines {
		if inCode[i] || !strings.HasPrefix(line, "# ") {
			continue
		}
		title = strings.TrimSpace(line[2:])
		if title == "" {
			continue
		}
		rest := make([]string, 0, len(lines)-1)
		rest = append(rest, lines[:i]...)
		rest = append(rest, lines[i+1:]...)
		return title, strings.Join(rest, "\n"), true
	}

	return "", content, false
}

// fencedLines reports, per line, whether it belongs to a fenced code block.
// Both delimiter lines count as code. A fence closes on a run of the same
// character at least as long as the opening one with nothing after it; an
// unclosed fence runs to the end of the document.
func fencedLines(lines []string) []bool {
	inCode := make([]bool, len(lines))
	var open string

	for i, line := range lines {
		m := fencePattern.FindStringSubmatch(line)
		switch {
		case open == "" && m != nil:
			// Backtick fences cannot carry backticks in their info string.
			if m[1][0] == '`' && strings.Contains(line[len(m[0]):], "`") {
				continue
			}
			open = m[1]
			inCode[i] = true
		case open != "":
			inCode[i] = true
			if m != nil && m[1][0] == open[0] && len(m[1]) >= len(open) &&
				isBlankLine(line[len(m[0]):]) {
				open = ""
			}
		}
	}

	return inCode
}

// FrontMatter renders a YAML metadata block that sets the document title.
func FrontMatter(title string) string {
	return "---\ntitle: \"" + frontMatterEscaper.Replace(title) + "\"\n---\n\n"
}

// InjectTitle moves the first level-1 heading into a front matter title.
// Content without one is returned unchanged.
func InjectTitle(content string) string {
	title, body, ok := ExtractTitle(content)
	if !ok {
		return content
	}
	return FrontMatter(title) + body
}

// isBullet returns true if the line starts with a "-" or "*" list marker.
func isBullet(line string) bool {
	return bulletPattern.MatchString(line)
}

// isBlankLine returns true if the line is empty or contains only whitespace.
func isBlankLine(line string) bool {
	return strings.TrimSpace(line) == ""
}
