package pipeline

import (
	"regexp"
	"strings"
)

// Whitespace classes used by the reconstruction rules.
//
// spaceClass is the full ECMAScript \s set, line terminators included.
// hspaceClass is the same set minus \n, \r, U+2028 and U+2029, so rules
// built on it never reach past the end of the current line.
const (
	spaceClass  = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`
	hspaceClass = `\t\v\f \x{00a0}\x{1680}\x{2000}-\x{200a}\x{202f}\x{205f}\x{3000}\x{feff}`
)

var (
	// Blank-ish run between two lines: newline, any whitespace, newline.
	paragraphBreak = regexp.MustCompile(`\n[` + spaceClass + `]*\n`)

	// Sentence-final punctuation, line break, then a capital letter.
	sentenceBreak = regexp.MustCompile(`([.!?])[` + spaceClass + `]*\n([A-Z])`)

	// Uppercase ASCII letters and horizontal whitespace only, two or more runes.
	headingLine = regexp.MustCompile(`(?m)^([A-Z][A-Z` + hspaceClass + `]+)$`)

	// "1. item" is already Markdown.
	orderedItem = regexp.MustCompile(`(?m)^(\d+\.[` + hspaceClass + `]+[^\n]+)$`)

	// Unindented bullet: glyph, whitespace, content.
	topBullet = regexp.MustCompile(`(?m)^[-•]([` + hspaceClass + `]+[^\n]+)$`)

	// Indented bullet: at least one leading whitespace rune before the glyph.
	nestedBullet = regexp.MustCompile(`(?m)^([` + hspaceClass + `]+)[-•]([` + hspaceClass + `]+)`)
)

// Stage is a single text-to-text rewrite applied to the whole document.
type Stage func(string) string

// reconstructStages is the fixed rule order. Line-adjacency rules run first;
// the per-line rules after TrimText rely on that normalization.
var reconstructStages = []Stage{
	NormalizeLineEndings,
	NormalizeParagraphBreaks,
	SplitSentences,
	TrimText,
	MarkHeadings,
	KeepOrderedItems,
	NormalizeBullets,
	NormalizeIndentedBullets,
}

// ReconstructStages returns a copy of the ordered stage list.
func ReconstructStages() []Stage {
	stages := make([]Stage, len(reconstructStages))
	copy(stages, reconstructStages)
	return stages
}

// Reconstruct approximates Markdown structure on plain text recovered from a
// PDF. It never fails: text no rule recognizes comes back unchanged apart
// from whitespace normalization.
func Reconstruct(text string) string {
	for _, stage := range reconstructStages {
		text = stage(text)
	}
	return text
}

// NormalizeLineEndings turns \r\n and lone \r into \n. Some extractors
// keep the PDF's carriage returns, and the line rules below anchor on \n.
func NormalizeLineEndings(text string) string {
	return normalizeLineEndings(text)
}

// NormalizeParagraphBreaks collapses any run of whitespace-only lines between
// two lines into exactly one blank line.
func NormalizeParagraphBreaks(text string) string {
	return paragraphBreak.ReplaceAllString(text, "\n\n")
}

// SplitSentences inserts a blank line between a line ending in '.', '!' or
// '?' and a following line that starts with an uppercase ASCII letter.
// Whitespace between the punctuation and the line break is dropped.
func SplitSentences(text string) string {
	return sentenceBreak.ReplaceAllString(text, "$1\n\n$2")
}

// TrimText strips leading and trailing whitespace from the whole document.
func TrimText(text string) string {
	return strings.TrimFunc(text, isSpace)
}

// MarkHeadings prefixes "# " to every line made only of uppercase ASCII
// letters and horizontal whitespace. Standalone acronyms are headings too.
func MarkHeadings(text string) string {
	return headingLine.ReplaceAllString(text, "# $1")
}

// KeepOrderedItems leaves "N. item" lines exactly as they are. It is an
// identity rewrite kept in the stage list so ordered items have an explicit
// owner ahead of the bullet rules.
func KeepOrderedItems(text string) string {
	return orderedItem.ReplaceAllString(text, "$1")
}

// NormalizeBullets rewrites the glyph of an unindented '-' or '•' bullet to
// '-'. Whitespace after the glyph is preserved.
func NormalizeBullets(text string) string {
	return topBullet.ReplaceAllString(text, "-$1")
}

// NormalizeIndentedBullets rewrites the glyph of an indented bullet to '-',
// preserving the indentation and the whitespace after the glyph.
func NormalizeIndentedBullets(text string) string {
	return nestedBullet.ReplaceAllString(text, "$1-$2")
}

// isSpace reports whether r belongs to spaceClass.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
