package locales

import "testing"

var allKeys = []Key{
	KeyPromptName,
	KeyPromptFrequency,
	KeyPromptDescription,
	KeyHabitCreated,
	KeyHabitCompleted,
	KeyDialogCancelled,
	KeyErrNameEmpty,
	KeyErrNameTooLong,
	KeyErrDescriptionTooLong,
	KeyNoHabits,
	KeyHabitNotFound,
	KeyLanguageSet,
}

func TestSupported(t *testing.T) {
	for _, lang := range []string{"en", "ru"} {
		if !Supported(lang) {
			t.Errorf("expected %s to be supported", lang)
		}
	}
	for _, lang := range []string{"", "xx", "EN"} {
		if Supported(lang) {
			t.Errorf("expected %q to be unsupported", lang)
		}
	}
}

func TestCatalogIsComplete(t *testing.T) {
	// Every key must resolve to a real translation in every supported
	// language, never fall through to the key itself.
	for _, lang := range []string{"en", "ru"} {
		for _, key := range allKeys {
			msg := Resolve(lang, key)
			if msg == "" || msg == string(key) {
				t.Errorf("missing %s translation for key %s", lang, key)
			}
		}
	}
}

func TestResolveFallsBackToEnglish(t *testing.T) {
	got := Resolve("xx", KeyPromptName)
	want := Resolve(FallbackLanguage, KeyPromptName)
	if got != want {
		t.Errorf("expected fallback to english %q, got %q", want, got)
	}
}

func TestResolveUnknownKeyReturnsKey(t *testing.T) {
	if got := Resolve("en", Key("no_such_key")); got != "no_such_key" {
		t.Errorf("expected the key itself, got %q", got)
	}
}

func TestLanguagesDiffer(t *testing.T) {
	if Resolve("en", KeyPromptName) == Resolve("ru", KeyPromptName) {
		t.Error("expected en and ru prompts to differ")
	}
}
