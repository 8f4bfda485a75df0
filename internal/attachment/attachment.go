// Package attachment resolves media filenames in a submission to the
// attachment entries stored alongside it.
package attachment

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"formview/internal/submission/models"
	"formview/pkg/platform/sentinel"
)

// RecordKey is the record key listing a submission's attachments.
const RecordKey = "_attachments"

// Attachment is a stored media file of a submission.
type Attachment struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	Mimetype      string `json:"mimetype,omitempty"`
	DownloadURL   string `json:"download_url,omitempty"`
	QuestionXPath string `json:"question_xpath,omitempty"`
}

// MissingError reports a filename with no matching attachment. Its message
// is meant to be shown in place of the media.
type MissingError struct {
	Filename string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Could not find %s", e.Filename)
}

func (e *MissingError) Unwrap() error {
	return sentinel.ErrNotFound
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Diacritic)), norm.NFC)

// ValidFilename mirrors the renaming storage applies when an attachment is
// saved: diacritics removed, spaces turned into underscores, and anything
// but letters, marks, digits, dots, underscores and dashes dropped.
func ValidFilename(name string) string {
	stripped, _, err := transform.String(stripMarks, name)
	if err != nil {
		stripped = name
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.Is(unicode.M, r), r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Find returns the attachment whose stored filename contains the
// normalised filename. When several match, the last listed wins.
func Find(record models.Record, filename string) (*Attachment, error) {
	valid := ValidFilename(filename)
	var found *Attachment
	if valid != "" {
		for _, att := range List(record) {
			if strings.Contains(att.Filename, valid) {
				found = &att
			}
		}
	}
	if found == nil {
		return nil, &MissingError{Filename: filename}
	}
	return found, nil
}

// List decodes the record's attachment entries, skipping malformed ones.
func List(record models.Record) []Attachment {
	raw, ok := record.Lookup(RecordKey)
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Attachment, 0, len(items))
	for _, item := range items {
		m, ok := models.AsRecord(item)
		if !ok {
			continue
		}
		filename, _ := m["filename"].(string)
		if filename == "" {
			continue
		}
		att := Attachment{Filename: filename}
		att.Mimetype, _ = m["mimetype"].(string)
		att.DownloadURL, _ = m["download_url"].(string)
		att.QuestionXPath, _ = m["question_xpath"].(string)
		switch id := m["id"].(type) {
		case json.Number:
			att.ID, _ = id.Int64()
		case float64:
			att.ID = int64(id)
		case int64:
			att.ID = id
		case int:
			att.ID = int64(id)
		}
		out = append(out, att)
	}
	return out
}
