package models

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Record is a submitted response keyed by flat path. Values are whatever
// the data API decoded: scalars, nested mappings, or lists of mappings for
// repeat group instances.
type Record map[string]any

// Lookup returns the value under key. A key holding JSON null counts as
// absent.
func (r Record) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// AsRecord converts a decoded JSON object into a Record.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

// Submission is one stored response of an asset.
type Submission struct {
	ID       int64  `json:"_id"`
	AssetUID string `json:"asset_uid"`
	Data     Record `json:"data"`
}

// Fingerprint digests the submission data so a re-saved submission never
// matches trees rendered from its previous content. Map keys are encoded
// in sorted order, which keeps the digest stable.
func (s *Submission) Fingerprint() string {
	b, err := json.Marshal(s.Data)
	if err != nil {
		return ""
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

// Stringify renders a scalar record value for display. Non-scalars are
// rendered as compact JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

