package supplemental

import (
	"formview/internal/submission/models"
)

// NotAvailable marks supplemental content that does not exist yet.
const NotAvailable = "N/A"

// Content resolves the value stored for an expanded supplemental path.
//
// A question has a single transcript, stored without a language level, so
// it is only returned when its own language code matches the requested
// one. Translations are stored per language. Empty and missing values both
// resolve to NotAvailable.
func Content(record models.Record, path string) string {
	parts, ok := ParsePath(path)
	if !ok {
		return NotAvailable
	}
	question, ok := child(record, DetailsKey, parts.QPath)
	if !ok {
		return NotAvailable
	}

	if parts.IsTranscript {
		transcript, ok := child(question, "transcript")
		if !ok {
			return NotAvailable
		}
		lang, _ := transcript["languageCode"].(string)
		value, isString := transcript["value"].(string)
		if lang != parts.LanguageCode || !isString {
			return NotAvailable
		}
		return value
	}

	translation, ok := child(question, "translation", parts.LanguageCode)
	if !ok {
		// records written before the key rename
		translation, ok = child(question, "translated", parts.LanguageCode)
		if !ok {
			return NotAvailable
		}
	}
	if value, _ := translation["value"].(string); value != "" {
		return value
	}
	return NotAvailable
}

func child(record models.Record, keys ...string) (models.Record, bool) {
	current := record
	for _, key := range keys {
		v, ok := current.Lookup(key)
		if !ok {
			return nil, false
		}
		next, ok := models.AsRecord(v)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
