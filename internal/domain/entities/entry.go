// Package entities contains domain entities used across the application.
package entities

// Entry represents one vocabulary card: a term in the studied language,
// its translation, part of speech, an example sentence and an optional
// category label.
type Entry struct {
	ID           string  `json:"-"`              // opaque identifier assigned at load, regenerated on every load
	Term         string  `json:"term"`           // source-language word or phrase
	Translation  string  `json:"translation"`    // translation shown on the back of the card
	PartOfSpeech string  `json:"part_of_speech"` // part-of-speech tag ("noun", "verb" etc)
	Example      string  `json:"example"`        // example sentence
	Category     *string `json:"category"`       // nullable category label

	Mastered    bool `json:"-"` // user marked the word as memorized
	NeedsReview bool `json:"-"` // word was answered incorrectly and waits for review
}

// CategoryLabel returns the category or an empty string when it is absent.
func (e *Entry) CategoryLabel() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}

// SetMastered sets the mastered flag and reports whether it changed.
// Mastering a word always clears its review flag.
func (e *Entry) SetMastered(mastered bool) bool {
	changed := e.Mastered != mastered
	e.Mastered = mastered
	if mastered {
		e.NeedsReview = false
	}
	return changed
}

// MarkNeedsReview queues the entry for review unless it is already mastered.
// It reports whether the flag changed.
func (e *Entry) MarkNeedsReview() bool {
	if e.Mastered || e.NeedsReview {
		return false
	}
	e.NeedsReview = true
	return true
}

// ClearFlags drops both mastery and review state.
func (e *Entry) ClearFlags() {
	e.Mastered = false
	e.NeedsReview = false
}
