package models

import (
	"sort"
	"strings"
)

// LanguageMap maps display names to the BCP-47 style codes the speech
// endpoint accepts.
var LanguageMap = map[string]string{
	"English (US)":       "en-US",
	"English (UK)":       "en-GB",
	"English (India)":    "en-IN",
	"Spanish":            "es-ES",
	"Spanish (Mexico)":   "es-MX",
	"French":             "fr-FR",
	"German":             "de-DE",
	"Italian":            "it-IT",
	"Portuguese":         "pt-PT",
	"Russian":            "ru-RU",
	"Japanese":           "ja-JP",
	"Korean":             "ko-KR",
	"Chinese (Mandarin)": "zh-CN",
	"Hindi":              "hi-IN",
	"Arabic":             "ar-AE",
	"Tamil":              "ta-IN",
	"Vietnamese":         "vi-VN",
}

// KnownLanguageCodes returns the supported codes in stable order, for usage
// output and validation messages.
func KnownLanguageCodes() []string {
	codes := make([]string, 0, len(LanguageMap))
	for _, code := range LanguageMap {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LanguageName returns the display name for a code, or the code itself when
// it is not in the table.
func LanguageName(code string) string {
	for name, c := range LanguageMap {
		if strings.EqualFold(c, code) {
			return name
		}
	}
	return code
}

// IsKnownLanguage reports whether code is in the language table.
func IsKnownLanguage(code string) bool {
	for _, c := range LanguageMap {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// IsEnglish reports whether the code is an English variant. English targets
// are transcribed but never translated.
func IsEnglish(code string) bool {
	return strings.HasPrefix(strings.ToLower(code), "en")
}

// TranslationTarget returns the base language subtag used as the translation
// destination for a recognition code, e.g. "ta-IN" -> "ta".
func TranslationTarget(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return strings.ToLower(base)
}
