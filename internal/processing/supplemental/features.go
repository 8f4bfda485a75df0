// Package supplemental indexes and resolves the transcript and translation
// content that processing attaches to individual question responses.
package supplemental

import (
	"slices"

	"formview/internal/survey"
	pstrings "formview/pkg/platform/strings"
)

// DetailsKey is the record key under which supplemental content is stored.
const DetailsKey = "_supplementalDetails"

// FeatureConfig enables a processing feature for a set of languages.
// Values lists the qpaths of the questions the feature is enabled for.
type FeatureConfig struct {
	Languages []string `json:"languages"`
	Values    []string `json:"values,omitempty"`
}

// AdditionalField declares one supplemental column: Source is the question
// qpath and DTPath the detail path relative to DetailsKey.
type AdditionalField struct {
	Source string `json:"source"`
	DTPath string `json:"dtpath"`
}

// AdvancedFeatures is an asset's processing declaration.
type AdvancedFeatures struct {
	Transcript       *FeatureConfig    `json:"transcript,omitempty"`
	Translation      *FeatureConfig    `json:"translation,omitempty"`
	AdditionalFields []AdditionalField `json:"additional_fields,omitempty"`
}

// Index maps a question qpath to its expanded supplemental paths, in
// declaration order.
type Index map[string][]string

// Paths returns the expanded paths available for qpath.
func (i Index) Paths(qpath string) []string {
	return i[qpath]
}

// NewIndex builds the supplemental index for a form. Explicit additional
// fields are used when declared; otherwise fields are derived from the
// enabled transcript and translation languages.
func NewIndex(features AdvancedFeatures, rows []survey.Row, paths survey.PathIndex) Index {
	fields := features.AdditionalFields
	if len(fields) == 0 {
		fields = deriveFields(features, rows, paths)
	}
	idx := make(Index)
	for _, f := range fields {
		if f.Source == "" || f.DTPath == "" {
			continue
		}
		idx[f.Source] = append(idx[f.Source], DetailsKey+"/"+f.DTPath)
	}
	return idx
}

func deriveFields(features AdvancedFeatures, rows []survey.Row, paths survey.PathIndex) []AdditionalField {
	var fields []AdditionalField
	for _, row := range rows {
		if !row.Type.IsQuestion() || row.Type.IsAnnotation() {
			continue
		}
		path, ok := paths.Path(row.Name())
		if !ok {
			continue
		}
		qpath := survey.QPath(path)
		if enabled(features.Transcript, row, qpath) {
			for _, lang := range pstrings.DedupeAndTrim(features.Transcript.Languages) {
				fields = append(fields, AdditionalField{Source: qpath, DTPath: TranscriptPath(qpath, lang)})
			}
		}
		if enabled(features.Translation, row, qpath) {
			for _, lang := range pstrings.DedupeAndTrim(features.Translation.Languages) {
				fields = append(fields, AdditionalField{Source: qpath, DTPath: TranslationPath(qpath, lang)})
			}
		}
	}
	return fields
}

// enabled reports whether cfg applies to the row. Without an explicit list
// only questions carrying recorded speech are processed.
func enabled(cfg *FeatureConfig, row survey.Row, qpath string) bool {
	if cfg == nil || len(cfg.Languages) == 0 {
		return false
	}
	if len(cfg.Values) == 0 {
		return row.Type == survey.TypeAudio || row.Type == survey.TypeBackgroundAudio || row.Type == survey.TypeVideo
	}
	return slices.Contains(cfg.Values, qpath) || slices.Contains(cfg.Values, row.Name())
}
