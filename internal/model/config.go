package model

import "regexp"

// Language selects the script filter applied after the structural rules.
type Language string

const (
	// LanguageAny disables script filtering; every string that survives
	// the structural rules is kept.
	LanguageAny                Language = "any"
	LanguageJapanese           Language = "ja"
	LanguageKorean             Language = "ko"
	LanguageSimplifiedChinese  Language = "zh-hans"
	LanguageTraditionalChinese Language = "zh-hant"
	LanguageEnglish            Language = "en"
)

// ScanConfiguration is the immutable per-scan policy. Build one with
// NewScanConfiguration at the start of a scan invocation; it is never
// mutated mid-scan and is safe to share across goroutines.
type ScanConfiguration struct {
	ScanBytecode     bool
	ScanObjectFields bool
	ScanRawBlobs     bool

	MinLength           int
	SourceLanguage      Language
	UseReservedKeywords bool

	exclusions        map[string]struct{}
	exclusionPatterns []*regexp.Regexp
}

// ScanOptions carries the user-facing knobs from which a ScanConfiguration
// is built.
type ScanOptions struct {
	ScanBytecode     bool
	ScanObjectFields bool
	ScanRawBlobs     bool

	MinLength           int
	SourceLanguage      Language
	UseReservedKeywords bool

	// Exclusions are exact-match strings that are never translated.
	Exclusions []string
	// ExclusionPatterns are user regular expressions; invalid patterns
	// are discarded here, never reported at classify time.
	ExclusionPatterns []string
}

// NewScanConfiguration builds the immutable scan policy. Invalid user
// exclusion patterns are silently dropped.
func NewScanConfiguration(opts ScanOptions) *ScanConfiguration {
	cfg := &ScanConfiguration{
		ScanBytecode:        opts.ScanBytecode,
		ScanObjectFields:    opts.ScanObjectFields,
		ScanRawBlobs:        opts.ScanRawBlobs,
		MinLength:           opts.MinLength,
		SourceLanguage:      opts.SourceLanguage,
		UseReservedKeywords: opts.UseReservedKeywords,
		exclusions:          make(map[string]struct{}, len(opts.Exclusions)),
	}

	if cfg.MinLength < 1 {
		cfg.MinLength = 1
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = LanguageAny
	}

	for _, excl := range opts.Exclusions {
		cfg.exclusions[excl] = struct{}{}
	}

	for _, pattern := range opts.ExclusionPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		cfg.exclusionPatterns = append(cfg.exclusionPatterns, re)
	}

	return cfg
}

// Excluded reports whether text exactly matches a user exclusion.
func (c *ScanConfiguration) Excluded(text string) bool {
	_, ok := c.exclusions[text]
	return ok
}

// MatchesExclusionPattern reports whether text matches any user-supplied
// exclusion pattern.
func (c *ScanConfiguration) MatchesExclusionPattern(text string) bool {
	for _, re := range c.exclusionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
