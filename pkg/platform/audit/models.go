package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/mssola/useragent"
)

// Action names an auditable operation.
type Action string

const (
	EventSubmissionDisplayed  Action = "submission_displayed"
	EventSubmissionsDisplayed Action = "submissions_displayed"
	EventPreviewBuilt         Action = "display_preview_built"
	EventDisplayFailed        Action = "display_failed"
)

// Event is an operational record of who rendered which submission. Keep it
// transport-agnostic so stores can fan out.
type Event struct {
	ID            string    `json:"id"`
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        string    `json:"user_id,omitempty"`
	AssetUID      string    `json:"asset_uid,omitempty"`
	SubmissionIDs []int64   `json:"submission_ids,omitempty"`
	LanguageIndex int       `json:"language_index"`
	CacheHit      bool      `json:"cache_hit,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty"`
	Client        string    `json:"client,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// DescribeClient condenses a User-Agent header into "Browser version on OS".
func DescribeClient(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "bot"
		}
		return "bot: " + name
	}
	name, version := ua.Browser()
	os := ua.OS()
	switch {
	case name == "" && os == "":
		return ""
	case os == "":
		return fmt.Sprintf("%s %s", name, version)
	case name == "":
		return os
	default:
		return fmt.Sprintf("%s %s on %s", name, version, os)
	}
}
