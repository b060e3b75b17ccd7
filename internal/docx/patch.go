// Package docx rewrites the styling pandoc bakes into a generated .docx.
//
// pandoc's default reference document colors headings blue, sets Cambria
// through the theme and leaves TOC field codes that make Word ask to update
// fields on open. Patcher removes those defaults by textual substitution on
// three parts of the package; every other entry is copied unchanged.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Package parts rewritten by Patcher.
const (
	StylesEntry   = "word/styles.xml"
	DocumentEntry = "word/document.xml"
	ThemeEntry    = "word/theme/theme1.xml"
)

const (
	// DefaultSourceFont is the serif font pandoc's reference document uses.
	DefaultSourceFont = "Cambria"
	// DefaultFont replaces DefaultSourceFont when Patcher.Font is empty.
	DefaultFont = "Latin Modern Roman"

	// maxEntrySize caps a decompressed target part.
	maxEntrySize = 64 << 20
)

// Sentinel errors for archive rewriting.
var (
	ErrInvalidArchive = errors.New("not a valid docx archive")
	ErrEntryTooLarge  = errors.New("docx entry too large")
)

// Precompiled regex patterns for performance.
var (
	colorElement = regexp.MustCompile(`<w:color\b[^>]*/>`)
	hexColorVal  = regexp.MustCompile(`\bw:val="[0-9A-Fa-f]{6}"`)
	themeColor   = regexp.MustCompile(`\bw:themeColor="`)

	rFontsElement = regexp.MustCompile(`<w:rFonts\b[^>]*/>`)
	xmlAttribute  = regexp.MustCompile(`([A-Za-z_][\w.:-]*)="([^"]*)"`)

	fldCharElement   = regexp.MustCompile(`(?s)<w:fldChar\b[^>]*?(?:/>|>.*?</w:fldChar>)`)
	instrTextElement = regexp.MustCompile(`(?s)<w:instrText\b[^>]*?(?:/>|>.*?</w:instrText>)`)
)

// explicitFontAttrs are the rFonts attributes naming a font directly.
var explicitFontAttrs = map[string]bool{
	"w:ascii":    true,
	"w:hAnsi":    true,
	"w:eastAsia": true,
	"w:cs":       true,
}

// themeFontAttrs maps theme-linked rFonts attributes to their explicit form.
var themeFontAttrs = map[string]string{
	"w:asciiTheme":    "w:ascii",
	"w:hAnsiTheme":    "w:hAnsi",
	"w:eastAsiaTheme": "w:eastAsia",
	"w:cstheme":       "w:cs",
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

// Patcher rewrites a .docx produced by pandoc.
// The zero value replaces Cambria with Latin Modern Roman.
type Patcher struct {
	// Font is the substitute serif font.
	Font string
	// SourceFont is the font being replaced.
	SourceFont string
}

func (p Patcher) font() string {
	if p.Font == "" {
		return DefaultFont
	}
	return p.Font
}

func (p Patcher) sourceFont() string {
	if p.SourceFont == "" {
		return DefaultSourceFont
	}
	return p.SourceFont
}

// Patch returns a copy of the archive in raw with the target parts
// rewritten. Entries keep their names and order; non-target entries are
// copied without recompression so their bytes are identical. Targets
// missing from the archive are skipped.
func (p Patcher) Patch(raw []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if !IsTarget(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		if err := p.rewriteFile(zw, f); err != nil {
			return nil, err
		}
	}

	if zr.Comment != "" {
		if err := zw.SetComment(zr.Comment); err != nil {
			return nil, fmt.Errorf("writing archive comment: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (p Patcher) rewriteFile(zw *zip.Writer, f *zip.File) error {
	data, err := readEntry(f)
	if err != nil {
		return err
	}

	out, _ := p.RewriteEntry(f.Name, data)

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.Name, err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing %s: %w", f.Name, err)
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidArchive, f.Name, err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrEntryTooLarge, f.Name, maxEntrySize)
	}
	return data, nil
}

// IsTarget reports whether name is one of the parts Patch rewrites.
func IsTarget(name string) bool {
	return name == StylesEntry || name == DocumentEntry || name == ThemeEntry
}

// RewriteEntry applies the substitutions for the part called name.
// ok is false, and data is returned as is, for non-target names.
func (p Patcher) RewriteEntry(name string, data []byte) (out []byte, ok bool) {
	switch name {
	case StylesEntry:
		s := RemoveColors(string(data))
		s = p.ReplaceFonts(s)
		return []byte(s), true
	case DocumentEntry:
		s := RemoveColors(string(data))
		s = RemoveFieldCodes(s)
		return []byte(s), true
	case ThemeEntry:
		return []byte(p.ReplaceThemeTypeface(string(data))), true
	default:
		return data, false
	}
}

// RemoveColors drops every <w:color/> element carrying an explicit
// RRGGBB value or a theme color reference. w:val="auto" alone is kept.
func RemoveColors(xml string) string {
	return colorElement.ReplaceAllStringFunc(xml, func(el string) string {
		if hexColorVal.MatchString(el) || themeColor.MatchString(el) {
			return ""
		}
		return el
	})
}

// ReplaceFonts rewrites each <w:rFonts/> element: explicit attributes
// naming the source font get the substitute, and theme-linked attributes
// become the explicit attribute naming the substitute. An element never
// ends up with the same attribute twice.
func (p Patcher) ReplaceFonts(xml string) string {
	return rFontsElement.ReplaceAllStringFunc(xml, p.rewriteRFonts)
}

type xmlAttr struct {
	name  string
	value string
}

func (p Patcher) rewriteRFonts(el string) string {
	matches := xmlAttribute.FindAllStringSubmatch(el, -1)

	// An explicit attribute shadowed by a theme attribute is overridden too:
	// Word resolves the theme first.
	themed := make(map[string]bool, len(matches))
	for _, m := range matches {
		if explicit, ok := themeFontAttrs[m[1]]; ok {
			themed[explicit] = true
		}
	}

	font := attrEscaper.Replace(p.font())
	source := attrEscaper.Replace(p.sourceFont())
	changed := false
	seen := make(map[string]bool, len(matches))
	out := make([]xmlAttr, 0, len(matches))

	for _, m := range matches {
		name, value := m[1], m[2]
		if explicit, ok := themeFontAttrs[name]; ok {
			name, value = explicit, font
			changed = true
		} else if explicitFontAttrs[name] && (value == source || themed[name]) {
			if value != font {
				changed = true
			}
			value = font
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, xmlAttr{name: name, value: value})
	}

	if !changed {
		return el
	}

	var b strings.Builder
	b.WriteString("<w:rFonts")
	for _, a := range out {
		b.WriteString(" ")
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(a.value)
		b.WriteString(`"`)
	}
	b.WriteString("/>")
	return b.String()
}

// ReplaceThemeTypeface points theme typeface declarations naming the source
// font at the substitute.
func (p Patcher) ReplaceThemeTypeface(xml string) string {
	from := `typeface="` + attrEscaper.Replace(p.sourceFont()) + `"`
	to := `typeface="` + attrEscaper.Replace(p.font()) + `"`
	return strings.ReplaceAll(xml, from, to)
}

// RemoveFieldCodes strips field characters and instruction text, leaving
// the cached field results (the TOC entries) as static content.
func RemoveFieldCodes(xml string) string {
	xml = fldCharElement.ReplaceAllString(xml, "")
	return instrTextElement.ReplaceAllString(xml, "")
}
