package docx

// Notes:
// - Archives are built in memory with archive/zip; no pandoc needed.
// - Byte identity of pass-through entries is checked on the decompressed
//   content and on the raw compressed stream (zip.File.OpenRaw).

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"regexp"
	"slices"
	"strings"
	"testing"
)

type entry struct {
	name   string
	data   string
	method uint16
}

func buildArchive(t *testing.T, entries []entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		if err != nil {
			t.Fatalf("creating %s: %v", e.name, err)
		}
		if _, err := io.WriteString(w, e.data); err != nil {
			t.Fatalf("writing %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

func readArchive(t *testing.T, raw []byte) (names []string, contents map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	contents = make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		names = append(names, f.Name)
		contents[f.Name] = string(data)
	}
	return names, contents
}

func rawEntries(t *testing.T, raw []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	out := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.OpenRaw()
		if err != nil {
			t.Fatalf("opening raw %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("reading raw %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:asciiTheme="minorHAnsi" w:eastAsiaTheme="minorEastAsia" w:hAnsiTheme="minorHAnsi" w:cstheme="minorBidi"/>` +
	`</w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:rPr>` +
	`<w:rFonts w:ascii="Cambria" w:hAnsi="Cambria" w:eastAsia="Cambria" w:cs="Cambria"/>` +
	`<w:color w:val="4F81BD" w:themeColor="accent1"/>` +
	`</w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:rPr>` +
	`<w:color w:themeColor="text2" w:themeShade="BF"/>` +
	`</w:rPr></w:style>` +
	`<w:style w:type="character" w:styleId="Hyperlink"><w:rPr>` +
	`<w:color w:val="auto"/>` +
	`</w:rPr></w:style>` +
	`</w:styles>`

const documentXML = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:fldChar w:fldCharType="begin" w:dirty="true"/></w:r>` +
	`<w:r><w:instrText xml:space="preserve">TOC \o "1-3" \h \z \u</w:instrText></w:r>` +
	`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
	`<w:r><w:rPr><w:color w:val="1F497D"/></w:rPr><w:t>Introduction</w:t></w:r>` +
	`<w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>` +
	`</w:body></w:document>`

const themeXML = `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme">` +
	`<a:fontScheme name="Office"><a:majorFont><a:latin typeface="Cambria"/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Cambria"/><a:ea typeface=""/></a:minorFont></a:fontScheme></a:theme>`

var (
	anyHexColor   = regexp.MustCompile(`<w:color\b[^>]*w:val="[0-9A-Fa-f]{6}"[^>]*/>`)
	anyThemeColor = regexp.MustCompile(`<w:color\b[^>]*w:themeColor=`)
)

// ---------------------------------------------------------------------------
// TestPatch - Round trip
// ---------------------------------------------------------------------------

func TestPatch_NoTargetsRoundTrip(t *testing.T) {
	t.Parallel()

	entries := []entry{
		{name: "[Content_Types].xml", data: `<Types/>`, method: zip.Deflate},
		{name: "_rels/.rels", data: `<Relationships/>`, method: zip.Deflate},
		{name: "word/media/image1.png", data: "\x89PNG\r\n\x1a\nbinary", method: zip.Store},
		{name: "docProps/core.xml", data: `<w:color w:val="FF0000"/>`, method: zip.Deflate},
	}
	raw := buildArchive(t, entries)

	got, err := Patcher{}.Patch(raw)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	wantNames, wantContents := readArchive(t, raw)
	gotNames, gotContents := readArchive(t, got)
	if !slices.Equal(gotNames, wantNames) {
		t.Fatalf("names = %v, want %v", gotNames, wantNames)
	}
	for name, want := range wantContents {
		if gotContents[name] != want {
			t.Errorf("%s changed: got %q, want %q", name, gotContents[name], want)
		}
	}

	wantRaw := rawEntries(t, raw)
	for name, data := range rawEntries(t, got) {
		if !bytes.Equal(data, wantRaw[name]) {
			t.Errorf("%s compressed bytes differ", name)
		}
	}
}

func TestPatch_PassThroughNextToTargets(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t, []entry{
		{name: "[Content_Types].xml", data: `<Types/>`, method: zip.Deflate},
		{name: StylesEntry, data: stylesXML, method: zip.Store},
		{name: "word/media/image1.png", data: "png-bytes", method: zip.Store},
		{name: DocumentEntry, data: documentXML, method: zip.Deflate},
		{name: ThemeEntry, data: themeXML, method: zip.Deflate},
	})

	got, err := Patcher{}.Patch(raw)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	names, contents := readArchive(t, got)
	want := []string{"[Content_Types].xml", StylesEntry, "word/media/image1.png", DocumentEntry, ThemeEntry}
	if !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if contents["word/media/image1.png"] != "png-bytes" {
		t.Errorf("image changed: %q", contents["word/media/image1.png"])
	}

	zr, err := zip.NewReader(bytes.NewReader(got), int64(len(got)))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if IsTarget(f.Name) && f.Method != zip.Deflate {
			t.Errorf("%s method = %d, want Deflate", f.Name, f.Method)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPatch - Full rewrite
// ---------------------------------------------------------------------------

func TestPatch_RewritesTargets(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t, []entry{
		{name: StylesEntry, data: stylesXML, method: zip.Deflate},
		{name: DocumentEntry, data: documentXML, method: zip.Deflate},
		{name: ThemeEntry, data: themeXML, method: zip.Deflate},
	})

	got, err := Patcher{Font: "Georgia"}.Patch(raw)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	_, contents := readArchive(t, got)

	for _, name := range []string{StylesEntry, DocumentEntry} {
		if anyHexColor.MatchString(contents[name]) {
			t.Errorf("%s still has a hex color", name)
		}
		if anyThemeColor.MatchString(contents[name]) {
			t.Errorf("%s still has a theme color", name)
		}
	}

	styles := contents[StylesEntry]
	if strings.Contains(styles, "Cambria") {
		t.Error("styles.xml still names Cambria")
	}
	if strings.Contains(styles, "Theme=") || strings.Contains(styles, "w:cstheme") {
		t.Error("styles.xml still has theme font attributes")
	}
	if !strings.Contains(styles, `<w:color w:val="auto"/>`) {
		t.Error("auto color was removed")
	}

	doc := contents[DocumentEntry]
	for _, gone := range []string{"w:fldChar", "w:instrText", "TOC \\o"} {
		if strings.Contains(doc, gone) {
			t.Errorf("document.xml still contains %q", gone)
		}
	}
	if !strings.Contains(doc, "<w:t>Introduction</w:t>") {
		t.Error("TOC entry text was lost")
	}

	theme := contents[ThemeEntry]
	if strings.Contains(theme, `typeface="Cambria"`) {
		t.Error("theme still declares Cambria")
	}
	if strings.Count(theme, `typeface="Georgia"`) != 2 {
		t.Errorf("theme = %q, want two Georgia typefaces", theme)
	}
}

func TestPatch_MissingTargetsSkipped(t *testing.T) {
	t.Parallel()

	raw := buildArchive(t, []entry{
		{name: "[Content_Types].xml", data: `<Types/>`, method: zip.Deflate},
		{name: DocumentEntry, data: documentXML, method: zip.Deflate},
	})

	got, err := Patcher{}.Patch(raw)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	names, _ := readArchive(t, got)
	if !slices.Equal(names, []string{"[Content_Types].xml", DocumentEntry}) {
		t.Errorf("names = %v", names)
	}
}

func TestPatch_InvalidArchive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: nil},
		{name: "not a zip", raw: []byte("%PDF-1.7 not a docx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Patcher{}.Patch(tt.raw)
			if !errors.Is(err, ErrInvalidArchive) {
				t.Errorf("Patch() error = %v, want ErrInvalidArchive", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRemoveColors
// ---------------------------------------------------------------------------

func TestRemoveColors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "hex value", input: `<w:rPr><w:color w:val="4F81BD"/></w:rPr>`, want: `<w:rPr></w:rPr>`},
		{name: "lowercase hex", input: `<w:color w:val="a1b2c3"/>`, want: ``},
		{name: "theme color only", input: `<w:color w:themeColor="accent1"/>`, want: ``},
		{
			name:  "theme color with other attributes",
			input: `<w:color w:themeColor="accent1" w:themeShade="BF" w:val="365F91"/>`,
			want:  ``,
		},
		{name: "space before close", input: `<w:color w:val="365F91" />`, want: ``},
		{name: "auto kept", input: `<w:color w:val="auto"/>`, want: `<w:color w:val="auto"/>`},
		{name: "short hex kept", input: `<w:color w:val="FFF"/>`, want: `<w:color w:val="FFF"/>`},
		{name: "other element untouched", input: `<w:shd w:fill="4F81BD"/>`, want: `<w:shd w:fill="4F81BD"/>`},
		{name: "colorX untouched", input: `<w:colorX w:val="4F81BD"/>`, want: `<w:colorX w:val="4F81BD"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RemoveColors(tt.input); got != tt.want {
				t.Errorf("RemoveColors(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReplaceFonts
// ---------------------------------------------------------------------------

func TestReplaceFonts(t *testing.T) {
	t.Parallel()

	p := Patcher{Font: "Latin Modern Roman"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "explicit Cambria",
			input: `<w:rFonts w:ascii="Cambria" w:hAnsi="Cambria"/>`,
			want:  `<w:rFonts w:ascii="Latin Modern Roman" w:hAnsi="Latin Modern Roman"/>`,
		},
		{
			name:  "other fonts untouched",
			input: `<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`,
			want:  `<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`,
		},
		{
			name:  "theme attributes become explicit",
			input: `<w:rFonts w:asciiTheme="majorHAnsi" w:eastAsiaTheme="majorEastAsia" w:hAnsiTheme="majorHAnsi" w:cstheme="majorBidi"/>`,
			want:  `<w:rFonts w:ascii="Latin Modern Roman" w:eastAsia="Latin Modern Roman" w:hAnsi="Latin Modern Roman" w:cs="Latin Modern Roman"/>`,
		},
		{
			name:  "theme after explicit yields no duplicate",
			input: `<w:rFonts w:ascii="Calibri" w:asciiTheme="minorHAnsi"/>`,
			want:  `<w:rFonts w:ascii="Latin Modern Roman"/>`,
		},
		{
			name:  "theme before explicit yields no duplicate",
			input: `<w:rFonts w:hAnsiTheme="minorHAnsi" w:hAnsi="Cambria"/>`,
			want:  `<w:rFonts w:hAnsi="Latin Modern Roman"/>`,
		},
		{
			name:  "hint attribute kept",
			input: `<w:rFonts w:hint="eastAsia" w:asciiTheme="minorHAnsi"/>`,
			want:  `<w:rFonts w:hint="eastAsia" w:ascii="Latin Modern Roman"/>`,
		},
		{
			name:  "non rFonts element untouched",
			input: `<w:lang w:ascii="Cambria"/>`,
			want:  `<w:lang w:ascii="Cambria"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := p.ReplaceFonts(tt.input); got != tt.want {
				t.Errorf("ReplaceFonts(%q)\n got %q\nwant %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReplaceFonts_EscapesSubstitute(t *testing.T) {
	t.Parallel()

	got := Patcher{Font: `A&B "Serif"`}.ReplaceFonts(`<w:rFonts w:ascii="Cambria"/>`)
	want := `<w:rFonts w:ascii="A&amp;B &quot;Serif&quot;"/>`
	if got != want {
		t.Errorf("ReplaceFonts() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestReplaceThemeTypeface / TestRemoveFieldCodes
// ---------------------------------------------------------------------------

func TestReplaceThemeTypeface(t *testing.T) {
	t.Parallel()

	got := Patcher{}.ReplaceThemeTypeface(`<a:latin typeface="Cambria"/><a:latin typeface="Calibri"/>`)
	want := `<a:latin typeface="Latin Modern Roman"/><a:latin typeface="Calibri"/>`
	if got != want {
		t.Errorf("ReplaceThemeTypeface() = %q, want %q", got, want)
	}
}

func TestRemoveFieldCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "begin separate end",
			input: `<w:r><w:fldChar w:fldCharType="begin"/></w:r><w:r><w:t>x</w:t></w:r><w:r><w:fldChar w:fldCharType="end"/></w:r>`,
			want:  `<w:r></w:r><w:r><w:t>x</w:t></w:r><w:r></w:r>`,
		},
		{
			name:  "instruction text",
			input: `<w:r><w:instrText xml:space="preserve"> PAGEREF _Toc1 \h </w:instrText></w:r>`,
			want:  `<w:r></w:r>`,
		},
		{
			name:  "fldChar with children",
			input: `<w:fldChar w:fldCharType="begin"><w:ffData><w:name w:val="x"/></w:ffData></w:fldChar>rest`,
			want:  `rest`,
		},
		{
			name:  "self-closing instrText",
			input: `<w:instrText/>keep`,
			want:  `keep`,
		},
		{
			name:  "multiple instruction spans stay separate",
			input: `<w:instrText>A</w:instrText><w:t>kept</w:t><w:instrText>B</w:instrText>`,
			want:  `<w:t>kept</w:t>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RemoveFieldCodes(tt.input); got != tt.want {
				t.Errorf("RemoveFieldCodes(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRewriteEntry
// ---------------------------------------------------------------------------

func TestRewriteEntry(t *testing.T) {
	t.Parallel()

	p := Patcher{}
	data := []byte(`<w:color w:val="FF0000"/>`)

	if out, ok := p.RewriteEntry("word/numbering.xml", data); ok || !bytes.Equal(out, data) {
		t.Errorf("non-target rewritten: ok=%v out=%q", ok, out)
	}
	for _, name := range []string{StylesEntry, DocumentEntry} {
		out, ok := p.RewriteEntry(name, data)
		if !ok || len(out) != 0 {
			t.Errorf("%s: ok=%v out=%q, want color removed", name, ok, out)
		}
	}
	// Theme parts keep colors; only typefaces change.
	if out, ok := p.RewriteEntry(ThemeEntry, data); !ok || !bytes.Equal(out, data) {
		t.Errorf("theme: ok=%v out=%q", ok, out)
	}
}
