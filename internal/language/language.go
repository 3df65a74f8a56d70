package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// words maps English language names and bibliographic ISO 639-2 codes that
// BCP 47 parsing does not accept.
var words = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"fre":        "fr",
	"ger":        "de",
	"chi":        "zh",
	"dut":        "nl",
}

// ToISO2 reduces a language code, BCP 47 tag or English language name to
// its ISO 639-1 base ("en-GB" and "eng" both become "en"). It returns an
// empty string when the input is not recognized.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if mapped, ok := words[code]; ok {
		return mapped
	}
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	iso := base.String()
	if len(iso) != 2 {
		return ""
	}
	return iso
}

// Same reports whether two codes share a base language.
func Same(a, b string) bool {
	left := ToISO2(a)
	return left != "" && left == ToISO2(b)
}

// DisplayName returns the English name for a code, "Unknown" for empty
// input, or the uppercased input when it is not recognized.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	iso := ToISO2(trimmed)
	if iso == "" {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(xlanguage.Make(iso))
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}
