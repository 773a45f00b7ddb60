package model

// The storefront publishes in English and serves 21 translated locales.
// The source language is implicit and never appears in this list.
var localeNames = map[string]string{
	"ar":    "Arabic (Standard)",
	"ar-dz": "Arabic (Algerian dialect)",
	"ar-lb": "Arabic (Lebanese dialect)",
	"ar-ma": "Arabic (Moroccan dialect)",
	"de":    "German",
	"es":    "Spanish",
	"fr":    "French",
	"gcr":   "Guianese Creole (Creole guyanais)",
	"hi":    "Hindi",
	"ht":    "Haitian Creole",
	"it":    "Italian",
	"ko":    "Korean",
	"pa":    "Punjabi",
	"pl":    "Polish",
	"pt":    "Portuguese (Brazilian)",
	"ru":    "Russian",
	"sv":    "Swedish",
	"ta":    "Tamil",
	"tl":    "Filipino/Tagalog",
	"vi":    "Vietnamese",
	"zh":    "Chinese (Simplified)",
}

// SupportedLocales returns every target locale code in a stable order.
func SupportedLocales() []string {
	return []string{
		"ar", "ar-dz", "ar-lb", "ar-ma", "de", "es", "fr",
		"gcr", "hi", "ht", "it", "ko", "pa", "pl", "pt",
		"ru", "sv", "ta", "tl", "vi", "zh",
	}
}

// LanguageName resolves a locale code to the human-readable language name
// used in provider prompts. Unmapped codes fall back to the code itself so
// an unexpected locale degrades the prompt rather than the pipeline.
func LanguageName(code string) string {
	if name, ok := localeNames[code]; ok {
		return name
	}
	return code
}
