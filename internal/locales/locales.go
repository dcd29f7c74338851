// Package locales resolves structured message keys against per-language
// tables for HabitTrack.
//
// The statistics payloads the core produces stay plain structured data;
// only human-readable messages pass through here. Keys are a closed
// enumeration rather than free-form strings, so a missing translation is a
// programming error caught by tests, not a silent lookup miss.
package locales

import (
	"encoding/json"
	"fmt"

	_ "embed"
)

// Key identifies one translatable message.
type Key string

// Message keys known to the catalog.
const (
	KeyPromptName            Key = "prompt_name"
	KeyPromptFrequency       Key = "prompt_frequency"
	KeyPromptDescription     Key = "prompt_description"
	KeyHabitCreated          Key = "habit_created"
	KeyHabitCompleted        Key = "habit_completed"
	KeyDialogCancelled       Key = "dialog_cancelled"
	KeyErrNameEmpty          Key = "err_name_empty"
	KeyErrNameTooLong        Key = "err_name_too_long"
	KeyErrDescriptionTooLong Key = "err_description_too_long"
	KeyNoHabits              Key = "no_habits"
	KeyHabitNotFound         Key = "habit_not_found"
	KeyLanguageSet           Key = "language_set"
)

// FallbackLanguage is used when a language or key has no translation.
const FallbackLanguage = "en"

//go:embed locales.json
var localesJSON []byte

var tables map[string]map[Key]string

// init validates the embedded catalog; a broken catalog is a build defect.
func init() {
	if err := json.Unmarshal(localesJSON, &tables); err != nil {
		panic(fmt.Sprintf("Failed to parse embedded locales catalog at startup: %v", err))
	}
}

// Supported reports whether the catalog carries a table for lang.
func Supported(lang string) bool {
	_, ok := tables[lang]
	return ok
}

// Resolve returns the message for key in lang, falling back to the fallback
// language and finally to the key itself so callers always get something
// displayable.
func Resolve(lang string, key Key) string {
	if table, ok := tables[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := tables[FallbackLanguage][key]; ok {
		return msg
	}
	return string(key)
}
