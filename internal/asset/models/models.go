package models

import (
	"time"

	"formview/internal/processing/supplemental"
	"formview/internal/survey"
)

// Asset is a deployed form: its schema content plus processing features.
// Version changes whenever the content is redeployed.
type Asset struct {
	UID              string                        `json:"uid"`
	Name             string                        `json:"name"`
	Version          string                        `json:"version"`
	Content          survey.Content                `json:"content"`
	AdvancedFeatures supplemental.AdvancedFeatures `json:"advanced_features"`
	UpdatedAt        time.Time                     `json:"updated_at"`
}
