package display

import (
	"strings"

	"formview/internal/submission/models"
	"formview/internal/survey"
)

// ResultKind tags what a record lookup produced.
type ResultKind int

const (
	NotFound ResultKind = iota
	Scalar
	Sequence
	Mapping
)

func (k ResultKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	}
	return "not_found"
}

// Result is the outcome of resolving a row against record data. Exactly
// one of Value, Items, Entries is meaningful, according to Kind.
type Result struct {
	Kind    ResultKind
	Value   any
	Items   []any
	Entries models.Record
}

func classify(v any) Result {
	switch val := v.(type) {
	case nil:
		return Result{Kind: NotFound}
	case []any:
		return Result{Kind: Sequence, Items: val}
	case models.Record:
		return Result{Kind: Mapping, Entries: val}
	case map[string]any:
		return Result{Kind: Mapping, Entries: models.Record(val)}
	}
	return Result{Kind: Scalar, Value: v}
}

// Resolve finds the data of row name inside data. It tries the row's full
// flat path, then the bare name (unnamespaced storage), then scans data as
// an ancestor of a repeat group (collecting per-instance answers) and of a
// regular group (collecting keys under the path prefix).
//
// Whether a group repeats cannot always be told from the form alone, so the
// data decides: the repeat interpretation wins whenever it finds anything.
// This is a heuristic; a group could satisfy both readings.
func Resolve(name string, paths survey.PathIndex, data models.Record) Result {
	if data == nil {
		return Result{Kind: NotFound}
	}
	path, hasPath := paths.Path(name)
	if hasPath {
		if v, ok := data.Lookup(path); ok {
			return classify(v)
		}
	}
	if v, ok := data.Lookup(name); ok {
		return classify(v)
	}
	if !hasPath {
		return Result{Kind: NotFound}
	}
	if answers := repeatAnswers(data, path); len(answers) > 0 {
		return Result{Kind: Sequence, Items: answers}
	}
	if entries := regularAnswers(data, path); len(entries) > 0 {
		return Result{Kind: Mapping, Entries: entries}
	}
	return Result{Kind: NotFound}
}

// repeatAnswers walks nested repeat instances along target, e.g.
// group_person/group_pets/pet_name, collecting every answer found at the
// last level.
func repeatAnswers(data models.Record, target string) []any {
	segments := strings.Split(target, "/")
	var answers []any
	var walk func(d models.Record, level int)
	walk = func(d models.Record, level int) {
		key := strings.Join(segments[:level+1], "/")
		if key == target {
			if v, ok := d.Lookup(target); ok {
				answers = append(answers, v)
			}
			return
		}
		raw, ok := d.Lookup(key)
		if !ok {
			return
		}
		items, ok := raw.([]any)
		if !ok {
			return
		}
		for _, item := range items {
			if rec, ok := models.AsRecord(item); ok {
				walk(rec, level+1)
			}
		}
	}
	walk(data, 0)
	return answers
}

// regularAnswers collects the keys of data nested under prefix.
func regularAnswers(data models.Record, prefix string) models.Record {
	prefix += "/"
	entries := models.Record{}
	for k, v := range data {
		if strings.HasPrefix(k, prefix) {
			entries[k] = v
		}
	}
	return entries
}

// leafValue renders a resolved leaf. Inside a repeat instance a sequence
// is narrowed to the element of the current instance.
func leafValue(res Result, repeatIndex *int) *string {
	if res.Kind == Sequence && repeatIndex != nil {
		if *repeatIndex >= len(res.Items) {
			return nil
		}
		res = classify(res.Items[*repeatIndex])
	}
	switch res.Kind {
	case NotFound:
		return nil
	case Scalar:
		s := models.Stringify(res.Value)
		return &s
	case Sequence:
		s := models.Stringify(res.Items)
		return &s
	default:
		s := models.Stringify(map[string]any(res.Entries))
		return &s
	}
}
