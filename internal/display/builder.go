package display

import (
	"formview/internal/attachment"
	"formview/internal/processing/supplemental"
	"formview/internal/submission/models"
	"formview/internal/survey"
)

// builder holds the per-build lookups. It is created by Build and never
// shared, so concurrent builds do not interact.
type builder struct {
	rows         []survey.Row
	paths        survey.PathIndex
	choiceLists  map[string][]survey.Choice
	supplemental supplemental.Index
	lang         int
	record       models.Record
}

// Build returns the display tree of record under the form content.
// languageIndex selects the label translation (survey.DefaultLanguage or 0
// for the default one). Build never mutates its inputs and never fails:
// missing data becomes nil values or absent repeat instances.
func Build(content survey.Content, features supplemental.AdvancedFeatures, languageIndex int, record models.Record) *Group {
	paths := survey.NewPathIndex(content.Survey)
	b := &builder{
		rows:         content.Survey,
		paths:        paths,
		choiceLists:  content.ChoiceLists(),
		supplemental: supplemental.NewIndex(features, content.Survey, paths),
		lang:         languageIndex,
		record:       record,
	}
	root := &Group{Kind: KindRoot, Children: []Node{}}
	b.traverse(root, "", record, nil)
	return root
}

// traverse appends to parent every row sitting directly under parentPath.
// data is the record view for this level; repeatIndex is set inside a
// repeat instance.
func (b *builder) traverse(parent *Group, parentPath string, data models.Record, repeatIndex *int) {
	for i := range b.rows {
		row := &b.rows[i]
		name := row.Name()

		if !b.paths.IsChildOf(name, parentPath) {
			continue
		}
		if row.Type.IsAnnotation() {
			continue
		}
		if i > 0 && survey.IsSpecialLabelHolder(&b.rows[i-1], row) {
			continue
		}

		path, _ := b.paths.Path(name)
		label := survey.Label(b.rows, name, b.lang)
		res := Resolve(name, b.paths, data)

		switch {
		case row.Type == survey.TypeBeginRepeat:
			if res.Kind != Sequence {
				continue
			}
			for idx, item := range res.Items {
				instance := newGroup(KindRepeat, label, name)
				parent.add(instance)
				itemData, _ := models.AsRecord(item)
				b.traverse(instance, path, itemData, &idx)
			}

		case row.Type == survey.TypeBeginMatrix:
			matrix := newGroup(KindMatrix, label, name)
			parent.add(matrix)
			b.populateMatrix(matrix, row, path, data)

		case row.Type == survey.TypeBeginGroup, row.Type == survey.TypeBeginScore, row.Type == survey.TypeBeginRank:
			group := newGroup(KindRegular, label, name)
			parent.add(group)
			b.traverse(group, path, res.Entries, repeatIndex)

		case row.Type.IsAnswerable():
			listName := row.ListName()
			if row.Type.IsPseudoRow() {
				listName = b.enclosingListName(parent)
			}
			b.addResponse(parent, row, label, listName, leafValue(res, repeatIndex))
			b.addSupplemental(parent, path)
		}
	}
}

func (b *builder) addResponse(parent *Group, row *survey.Row, label *string, listName string, value *string) {
	qt := row.Type
	resp := &Response{
		QuestionType: &qt,
		Label:        label,
		Name:         row.Name(),
		ListName:     listName,
		Value:        value,
	}
	if qt.IsMedia() && value != nil && *value != "" {
		att, err := attachment.Find(b.record, *value)
		if err != nil {
			resp.AttachmentError = err.Error()
		} else {
			resp.Attachment = att
		}
	}
	parent.add(resp)
}

// addSupplemental appends the transcript and translation entries of the
// question at path.
func (b *builder) addSupplemental(parent *Group, path string) {
	for _, key := range b.supplemental.Paths(survey.QPath(path)) {
		label := supplemental.ColumnLabel(b.rows, b.paths, key, b.lang)
		value := supplemental.Content(b.record, key)
		parent.add(&Response{Label: &label, Name: key, Value: &value})
	}
}

// enclosingListName returns the choice list of the group row that parent
// was built from. Score and rank pseudo rows use it in place of their own.
func (b *builder) enclosingListName(parent *Group) string {
	if parent.Name == nil {
		return ""
	}
	row, _, ok := survey.FindRow(b.rows, *parent.Name)
	if !ok {
		return ""
	}
	return row.ListName()
}
