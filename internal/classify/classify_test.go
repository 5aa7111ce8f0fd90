package classify

import (
	"testing"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
)

func defaultConfig() *m.ScanConfiguration {
	return m.NewScanConfiguration(m.ScanOptions{
		MinLength:           2,
		SourceLanguage:      m.LanguageAny,
		UseReservedKeywords: true,
	})
}

func TestClassify_StructuralRules(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantKeep   bool
		wantReason string
	}{
		{"empty string", "", false, ReasonEmpty},
		{"whitespace only", "   \t ", false, ReasonEmpty},
		{"below min length", "a", false, ReasonTooShort},
		{"reserved keyword", "GameObject", false, ReasonReservedKeyword},
		{"bare identifier", "PlayerHealth", false, ReasonBareIdentifier},
		{"snake identifier", "player_health_max", false, ReasonBareIdentifier},
		{"pure integer", "12345", false, ReasonPureInteger},
		{"negative integer", "-42", false, ReasonPureInteger},
		{"dotted path", "UI.MainMenu.Title", false, ReasonDottedPath},
		{"markup tag", "<color=red>", false, ReasonMarkupTag},
		{"closing markup tag", "</color>", false, ReasonMarkupTag},
		{"brace placeholder", "{playerName}", false, ReasonBracePlaceholder},
		{"percent placeholder", "%HERO%", false, ReasonPercentHolder},
		{"hex color short", "#FFF", false, ReasonHexColor},
		{"hex color long", "#1A2B3C4D", false, ReasonHexColor},
		{"http url", "http://example.com/help", false, ReasonURL},
		{"https url", "https://example.com", false, ReasonURL},
		{"windows path", `C:\Game\Data\file.txt`, false, ReasonWindowsPath},
		{"windows path forward slash", "D:/Game/Data", false, ReasonWindowsPath},
		{"unix absolute path", "/usr/share/fonts", false, ReasonUnixPath},
		{"unix relative path", "./assets/icon.png", false, ReasonUnixPath},
		{"plain sentence kept", "Press any button to start", true, ""},
		{"sentence with digits kept", "You gained 300 gold!", true, ""},
		{"cjk text kept", "冒険を始める", true, ""},
	}

	cfg := defaultConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Classify(tt.text, m.LanguageAny, cfg)
			if verdict.Keep != tt.wantKeep {
				t.Fatalf("Classify(%q) keep = %v, want %v (reason %q)", tt.text, verdict.Keep, tt.wantKeep, verdict.Reason)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("Classify(%q) reason = %q, want %q", tt.text, verdict.Reason, tt.wantReason)
			}
		})
	}
}

func TestClassify_TooShortWinsOverOtherRules(t *testing.T) {
	cfg := m.NewScanConfiguration(m.ScanOptions{
		MinLength:      6,
		SourceLanguage: m.LanguageAny,
	})

	// Each of these would match a later rule, but length is checked first.
	for _, text := range []string{"abc", "12", "#FFF", "{x}"} {
		verdict := Classify(text, m.LanguageAny, cfg)
		if verdict.Keep {
			t.Fatalf("Classify(%q) kept short text", text)
		}
		if verdict.Reason != ReasonTooShort {
			t.Errorf("Classify(%q) reason = %q, want %q", text, verdict.Reason, ReasonTooShort)
		}
	}
}

func TestClassify_MinLengthCountsRunes(t *testing.T) {
	cfg := m.NewScanConfiguration(m.ScanOptions{MinLength: 2, SourceLanguage: m.LanguageAny})

	// Two CJK runes are more than two bytes but still meet the minimum.
	if verdict := Classify("攻撃", m.LanguageAny, cfg); !verdict.Keep {
		t.Errorf("two-rune CJK text skipped: %q", verdict.Reason)
	}
	if verdict := Classify("攻", m.LanguageAny, cfg); verdict.Reason != ReasonTooShort {
		t.Errorf("single rune reason = %q, want %q", verdict.Reason, ReasonTooShort)
	}
}

func TestClassify_BareIdentifierSkipsUnderWildcard(t *testing.T) {
	verdict := Classify("PlayerHealth", m.LanguageAny, defaultConfig())
	if verdict.Keep {
		t.Fatal("bare identifier kept under wildcard language")
	}
	if verdict.Reason != ReasonBareIdentifier {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonBareIdentifier)
	}
}

func TestClassify_ReservedKeywordsToggle(t *testing.T) {
	withKeywords := m.NewScanConfiguration(m.ScanOptions{
		MinLength: 2, SourceLanguage: m.LanguageAny, UseReservedKeywords: true,
	})
	withoutKeywords := m.NewScanConfiguration(m.ScanOptions{
		MinLength: 2, SourceLanguage: m.LanguageAny,
	})

	if verdict := Classify("MainCamera", m.LanguageAny, withKeywords); verdict.Reason != ReasonReservedKeyword {
		t.Errorf("with keywords: reason = %q, want %q", verdict.Reason, ReasonReservedKeyword)
	}
	// Without the keyword set the identifier rule still catches it, but
	// with a different reason.
	if verdict := Classify("MainCamera", m.LanguageAny, withoutKeywords); verdict.Reason != ReasonBareIdentifier {
		t.Errorf("without keywords: reason = %q, want %q", verdict.Reason, ReasonBareIdentifier)
	}
}

func TestClassify_CustomExclusions(t *testing.T) {
	cfg := m.NewScanConfiguration(m.ScanOptions{
		MinLength:      2,
		SourceLanguage: m.LanguageAny,
		Exclusions:     []string{"Press Start"},
	})

	if verdict := Classify("Press Start", m.LanguageAny, cfg); verdict.Reason != ReasonCustomExclusion {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonCustomExclusion)
	}
	if verdict := Classify("Press Start!", m.LanguageAny, cfg); !verdict.Keep {
		t.Errorf("near-match skipped: %q", verdict.Reason)
	}
}

func TestClassify_CustomExclusionPatterns(t *testing.T) {
	cfg := m.NewScanConfiguration(m.ScanOptions{
		MinLength:         2,
		SourceLanguage:    m.LanguageAny,
		ExclusionPatterns: []string{`^DEBUG:`, `[invalid`},
	})

	if verdict := Classify("DEBUG: spawn point reached", m.LanguageAny, cfg); verdict.Reason != ReasonExclusionPattern {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonExclusionPattern)
	}
	// The invalid pattern was silently dropped at configuration build
	// time; classification still works.
	if verdict := Classify("ordinary text", m.LanguageAny, cfg); !verdict.Keep {
		t.Errorf("text skipped after invalid pattern: %q", verdict.Reason)
	}
}

func TestClassify_LanguageFilters(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lang     m.Language
		wantKeep bool
	}{
		{"japanese hiragana", "こんにちは", m.LanguageJapanese, true},
		{"japanese katakana", "アイテム", m.LanguageJapanese, true},
		{"japanese kanji only", "攻撃力", m.LanguageJapanese, true},
		{"japanese filter rejects latin", "Hello world", m.LanguageJapanese, false},
		{"korean hangul", "안녕하세요", m.LanguageKorean, true},
		{"korean filter rejects kana", "こんにちは", m.LanguageKorean, false},
		{"chinese han", "开始游戏", m.LanguageSimplifiedChinese, true},
		{"traditional chinese han", "開始遊戲", m.LanguageTraditionalChinese, true},
		{"chinese filter rejects hangul", "안녕", m.LanguageSimplifiedChinese, false},
		{"english letters", "New Game", m.LanguageEnglish, true},
		{"english filter rejects digits punctuation", "1234 + 5678!", m.LanguageEnglish, false},
		{"unknown language accepts anything", "Привет мир", m.Language("ru"), true},
	}

	cfg := defaultConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Classify(tt.text, tt.lang, cfg)
			if verdict.Keep != tt.wantKeep {
				t.Errorf("Classify(%q, %s) keep = %v, want %v (reason %q)", tt.text, tt.lang, verdict.Keep, tt.wantKeep, verdict.Reason)
			}
		})
	}
}
