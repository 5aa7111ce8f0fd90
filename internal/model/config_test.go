package model

import "testing"

func TestNewScanConfiguration_Defaults(t *testing.T) {
	cfg := NewScanConfiguration(ScanOptions{})

	if cfg.MinLength != 1 {
		t.Errorf("MinLength = %d, want 1", cfg.MinLength)
	}
	if cfg.SourceLanguage != LanguageAny {
		t.Errorf("SourceLanguage = %q, want %q", cfg.SourceLanguage, LanguageAny)
	}
}

func TestNewScanConfiguration_DropsInvalidPatterns(t *testing.T) {
	cfg := NewScanConfiguration(ScanOptions{
		ExclusionPatterns: []string{`^valid$`, `[unclosed`, `also(valid)?`},
	})

	if !cfg.MatchesExclusionPattern("valid") {
		t.Error("valid pattern was dropped")
	}
	if !cfg.MatchesExclusionPattern("alsovalid") {
		t.Error("second valid pattern was dropped")
	}
	if cfg.MatchesExclusionPattern("[unclosed") {
		t.Error("invalid pattern appears to have been kept")
	}
}

func TestScanConfiguration_Excluded(t *testing.T) {
	cfg := NewScanConfiguration(ScanOptions{Exclusions: []string{"OK", "Cancel"}})

	if !cfg.Excluded("OK") || !cfg.Excluded("Cancel") {
		t.Error("exact exclusions not honored")
	}
	if cfg.Excluded("ok") {
		t.Error("exclusion matching is not exact")
	}
}
