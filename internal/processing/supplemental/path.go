package supplemental

import (
	"fmt"
	"strings"

	"formview/internal/survey"
)

const (
	transcriptPrefix  = "transcript_"
	translationPrefix = "translated_"
)

// TranscriptPath returns the detail path of a question's transcript in
// the given language, relative to DetailsKey.
func TranscriptPath(qpath, lang string) string {
	return qpath + "/" + transcriptPrefix + lang
}

// TranslationPath returns the detail path of a question's translation,
// relative to DetailsKey.
func TranslationPath(qpath, lang string) string {
	return qpath + "/" + translationPrefix + lang
}

// PathParts is a parsed expanded supplemental path.
type PathParts struct {
	QPath        string
	LanguageCode string
	IsTranscript bool
}

// ParsePath splits `_supplementalDetails/{qpath}/{transcript|translated}_{lang}`.
func ParsePath(path string) (PathParts, bool) {
	segments := strings.Split(path, "/")
	if len(segments) != 3 || segments[0] != DetailsKey || segments[1] == "" {
		return PathParts{}, false
	}
	parts := PathParts{QPath: segments[1]}
	switch last := segments[2]; {
	case strings.HasPrefix(last, transcriptPrefix):
		parts.IsTranscript = true
		parts.LanguageCode = strings.TrimPrefix(last, transcriptPrefix)
	case strings.HasPrefix(last, translationPrefix):
		parts.LanguageCode = strings.TrimPrefix(last, translationPrefix)
	default:
		return PathParts{}, false
	}
	if parts.LanguageCode == "" {
		return PathParts{}, false
	}
	return parts, true
}

// ColumnLabel returns the display label of a supplemental column, built
// from the source question's translated label.
func ColumnLabel(rows []survey.Row, paths survey.PathIndex, path string, languageIndex int) string {
	parts, ok := ParsePath(path)
	if !ok {
		return path
	}
	name := sourceName(paths, parts.QPath)
	source := name
	if label := survey.Label(rows, name, languageIndex); label != nil && *label != "" {
		source = *label
	}
	kind := "translation"
	if parts.IsTranscript {
		kind = "transcript"
	}
	return fmt.Sprintf("%s - %s (%s)", source, kind, parts.LanguageCode)
}

// sourceName finds the row whose flat path maps to qpath. Row names may
// contain dashes, so the qpath cannot be split back into a path.
func sourceName(paths survey.PathIndex, qpath string) string {
	for _, name := range paths.Names() {
		if p, ok := paths.Path(name); ok && survey.QPath(p) == qpath {
			return name
		}
	}
	return qpath
}
