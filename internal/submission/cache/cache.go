// Package cache stores built display trees keyed by asset version,
// submission and language, so repeated views skip the rebuild.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"

	"formview/internal/display"
)

const keyPrefix = "display"

// Key identifies one rendered tree. Version changes on redeploy and
// Fingerprint changes when the submission data is re-saved, either of
// which orphans trees built from the previous inputs.
type Key struct {
	AssetUID      string
	Version       string
	SubmissionID  int64
	Fingerprint   string
	LanguageIndex int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", keyPrefix, k.AssetUID, k.Version,
		strconv.FormatInt(k.SubmissionID, 10), k.Fingerprint, strconv.Itoa(k.LanguageIndex))
}

func encode(tree *display.Group) ([]byte, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode display tree: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*display.Group, error) {
	var tree display.Group
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, fmt.Errorf("decode display tree: %w", err)
	}
	return &tree, nil
}
