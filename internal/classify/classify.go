// Package classify decides whether a discovered string is translatable
// text or a code artifact that must not be touched.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

// Verdict is the classification outcome. Reason is set only for skips and
// names the first rule that matched.
type Verdict struct {
	Keep   bool
	Reason string
}

func keep() Verdict              { return Verdict{Keep: true} }
func skip(reason string) Verdict { return Verdict{Reason: reason} }

// Skip reasons, one per rule. The rule order below is significant only
// for which reason gets reported; any match skips.
const (
	ReasonEmpty            = "empty"
	ReasonTooShort         = "too short"
	ReasonReservedKeyword  = "reserved keyword"
	ReasonCustomExclusion  = "custom exclusion"
	ReasonBareIdentifier   = "bare identifier"
	ReasonPureInteger      = "pure integer"
	ReasonDottedPath       = "dotted path"
	ReasonMarkupTag        = "markup tag"
	ReasonBracePlaceholder = "brace placeholder"
	ReasonPercentHolder    = "percent placeholder"
	ReasonHexColor         = "hex color"
	ReasonURL              = "url"
	ReasonWindowsPath      = "windows path"
	ReasonUnixPath         = "unix path"
	ReasonExclusionPattern = "exclusion pattern"
	ReasonWrongScript      = "no source-language characters"
)

var (
	bareIdentifierRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pureIntegerRe      = regexp.MustCompile(`^-?[0-9]+$`)
	dottedPathRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)
	markupTagRe        = regexp.MustCompile(`^</?[A-Za-z][^<>]*>$`)
	bracePlaceholderRe = regexp.MustCompile(`^\{[^{}]*\}$`)
	percentHolderRe    = regexp.MustCompile(`^%[^%]*%$`)
	hexColorRe         = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{4}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)
	windowsPathRe      = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// structuralRule matches one shape of non-translatable text.
type structuralRule struct {
	reason string
	match  func(string) bool
}

// Structural rules run in fixed order; the first match supplies the skip
// reason.
var structuralRules = []structuralRule{
	{ReasonBareIdentifier, bareIdentifierRe.MatchString},
	{ReasonPureInteger, pureIntegerRe.MatchString},
	{ReasonDottedPath, dottedPathRe.MatchString},
	{ReasonMarkupTag, markupTagRe.MatchString},
	{ReasonBracePlaceholder, bracePlaceholderRe.MatchString},
	{ReasonPercentHolder, percentHolderRe.MatchString},
	{ReasonHexColor, hexColorRe.MatchString},
	{ReasonURL, func(s string) bool {
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
	}},
	{ReasonWindowsPath, windowsPathRe.MatchString},
	{ReasonUnixPath, func(s string) bool {
		return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")
	}},
}

// Classify decides keep-or-skip for one string. It is a pure function
// with no I/O and is safe to call concurrently.
func Classify(text string, lang m.Language, cfg *m.ScanConfiguration) Verdict {
	if strings.TrimSpace(text) == "" {
		return skip(ReasonEmpty)
	}
	if len([]rune(text)) < cfg.MinLength {
		return skip(ReasonTooShort)
	}

	if cfg.UseReservedKeywords {
		if _, ok := reservedKeywords[text]; ok {
			return skip(ReasonReservedKeyword)
		}
	}
	if cfg.Excluded(text) {
		return skip(ReasonCustomExclusion)
	}

	for _, rule := range structuralRules {
		if rule.match(text) {
			return skip(rule.reason)
		}
	}

	if cfg.MatchesExclusionPattern(text) {
		return skip(ReasonExclusionPattern)
	}

	if lang == m.LanguageAny {
		return keep()
	}
	if !containsLanguageScript(text, lang) {
		return skip(ReasonWrongScript)
	}

	return keep()
}

// containsLanguageScript reports whether text carries at least one
// character from the language's defining code-point ranges. Languages
// without a defined range accept unconditionally.
func containsLanguageScript(text string, lang m.Language) bool {
	switch lang {
	case m.LanguageJapanese:
		return containsAny(text, unicode.Hiragana, unicode.Katakana, unicode.Han)
	case m.LanguageKorean:
		return containsAny(text, unicode.Hangul)
	case m.LanguageSimplifiedChinese, m.LanguageTraditionalChinese:
		return containsAny(text, unicode.Han)
	case m.LanguageEnglish:
		for _, r := range text {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				return true
			}
		}
		return false
	}
	return true
}

func containsAny(text string, tables ...*unicode.RangeTable) bool {
	for _, r := range text {
		for _, table := range tables {
			if unicode.Is(table, r) {
				return true
			}
		}
	}
	return false
}
