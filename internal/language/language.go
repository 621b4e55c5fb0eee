package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Word forms accepted in configuration in addition to BCP-47 tags.
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
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// Parse resolves a language code, BCP-47 tag, or English word form.
// The boolean is false for empty or unrecognized input.
func Parse(code string) (language.Tag, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return language.Und, false
	}
	if mapped, ok := words[code]; ok {
		code = mapped
	}
	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

// ToISO2 converts a recognized language to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	value := base.String()
	if len(value) != 2 {
		return ""
	}
	return value
}

// ToISO3 converts a recognized language to ISO 639-2 (3-letter).
// Returns "und" for unrecognized input.
func ToISO3(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// ToBCP47 returns a language-region tag such as "en-US". When the input carries
// no region the most likely one is filled in.
func ToBCP47(code string) string {
	tag, ok := Parse(code)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	if region.String() == "ZZ" {
		return base.String()
	}
	return base.String() + "-" + region.String()
}

// DisplayName returns the English name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	tag, ok := Parse(code)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	base, _ := tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
