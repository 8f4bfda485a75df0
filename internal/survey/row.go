// Package survey models a form definition: its ordered rows, its choice
// lists, and the lookups the display layer needs on top of them (flat
// paths, translated labels).
package survey

// RowType is the type tag of a form row.
type RowType string

// Answerable question types.
const (
	TypeAcknowledge            RowType = "acknowledge"
	TypeAudio                  RowType = "audio"
	TypeBackgroundAudio        RowType = "background-audio"
	TypeBarcode                RowType = "barcode"
	TypeCalculate              RowType = "calculate"
	TypeDate                   RowType = "date"
	TypeDateTime               RowType = "datetime"
	TypeDecimal                RowType = "decimal"
	TypeExternalXML            RowType = "xml-external"
	TypeFile                   RowType = "file"
	TypeGeopoint               RowType = "geopoint"
	TypeGeoshape               RowType = "geoshape"
	TypeGeotrace               RowType = "geotrace"
	TypeHidden                 RowType = "hidden"
	TypeImage                  RowType = "image"
	TypeInteger                RowType = "integer"
	TypeMatrix                 RowType = "kobomatrix"
	TypeNote                   RowType = "note"
	TypeRange                  RowType = "range"
	TypeRank                   RowType = "rank"
	TypeScore                  RowType = "score"
	TypeSelectMultiple         RowType = "select_multiple"
	TypeSelectMultipleFromFile RowType = "select_multiple_from_file"
	TypeSelectOne              RowType = "select_one"
	TypeSelectOneFromFile      RowType = "select_one_from_file"
	TypeText                   RowType = "text"
	TypeTime                   RowType = "time"
	TypeVideo                  RowType = "video"
)

// Group markers. Every begin has a matching end later in the row list.
const (
	TypeBeginGroup  RowType = "begin_group"
	TypeBeginRepeat RowType = "begin_repeat"
	TypeBeginScore  RowType = "begin_score"
	TypeBeginRank   RowType = "begin_rank"
	TypeBeginMatrix RowType = "begin_kobomatrix"

	TypeEndGroup  RowType = "end_group"
	TypeEndRepeat RowType = "end_repeat"
	TypeEndScore  RowType = "end_score"
	TypeEndRank   RowType = "end_rank"
	TypeEndMatrix RowType = "end_kobomatrix"
)

// Pseudo rows emitted inside score and rank groups. They never carry a
// choice list reference of their own.
const (
	TypeScoreRow  RowType = "score__row"
	TypeRankLevel RowType = "rank__level"
)

var questionTypes = map[RowType]struct{}{
	TypeAcknowledge: {}, TypeAudio: {}, TypeBackgroundAudio: {}, TypeBarcode: {},
	TypeCalculate: {}, TypeDate: {}, TypeDateTime: {}, TypeDecimal: {},
	TypeExternalXML: {}, TypeFile: {}, TypeGeopoint: {}, TypeGeoshape: {},
	TypeGeotrace: {}, TypeHidden: {}, TypeImage: {}, TypeInteger: {},
	TypeMatrix: {}, TypeNote: {}, TypeRange: {}, TypeRank: {}, TypeScore: {},
	TypeSelectMultiple: {}, TypeSelectMultipleFromFile: {}, TypeSelectOne: {},
	TypeSelectOneFromFile: {}, TypeText: {}, TypeTime: {}, TypeVideo: {},
}

// IsQuestion reports whether t is one of the question types.
func (t RowType) IsQuestion() bool {
	_, ok := questionTypes[t]
	return ok
}

// IsPseudoRow reports whether t is a score row or rank level.
func (t RowType) IsPseudoRow() bool {
	return t == TypeScoreRow || t == TypeRankLevel
}

// IsAnswerable reports whether rows of this type hold a response.
func (t RowType) IsAnswerable() bool {
	return t.IsQuestion() || t.IsPseudoRow()
}

// IsGroupBegin reports whether t opens a nesting level.
func (t RowType) IsGroupBegin() bool {
	switch t {
	case TypeBeginGroup, TypeBeginRepeat, TypeBeginScore, TypeBeginRank, TypeBeginMatrix:
		return true
	}
	return false
}

// IsGroupEnd reports whether t closes a nesting level.
func (t RowType) IsGroupEnd() bool {
	switch t {
	case TypeEndGroup, TypeEndRepeat, TypeEndScore, TypeEndRank, TypeEndMatrix:
		return true
	}
	return false
}

// IsAnnotation reports rows that never carry submission data.
func (t RowType) IsAnnotation() bool {
	return t == TypeNote || t == TypeHidden
}

// IsMedia reports question types whose response is an attachment filename.
func (t RowType) IsMedia() bool {
	switch t {
	case TypeImage, TypeAudio, TypeBackgroundAudio, TypeVideo, TypeFile:
		return true
	}
	return false
}

// Row is one entry of the ordered form definition.
type Row struct {
	Type     RowType  `json:"type"`
	RawName  string   `json:"name,omitempty"`
	Autoname string   `json:"$autoname,omitempty"`
	Kuid     string   `json:"$kuid,omitempty"`
	Labels   []string `json:"label,omitempty"`

	SelectFromListName string `json:"select_from_list_name,omitempty"`
	MatrixList         string `json:"kobo--matrix_list,omitempty"`
	ScoreChoices       string `json:"kobo--score-choices,omitempty"`
	RankItems          string `json:"kobo--rank-items,omitempty"`
}

// Name returns the row identifier, falling back to the generated names.
func (r Row) Name() string {
	switch {
	case r.RawName != "":
		return r.RawName
	case r.Autoname != "":
		return r.Autoname
	default:
		return r.Kuid
	}
}

// HasLabel reports whether the row declares any label.
func (r Row) HasLabel() bool {
	return r.Labels != nil
}

// ListName returns the choice list the row refers to. At most one of the
// references applies to a given row type; the last declared one wins.
func (r Row) ListName() string {
	name := ""
	for _, ref := range []string{r.SelectFromListName, r.MatrixList, r.ScoreChoices, r.RankItems} {
		if ref != "" {
			name = ref
		}
	}
	return name
}

// Choice is an entry of a named choice list.
type Choice struct {
	Name     string   `json:"name"`
	Labels   []string `json:"label,omitempty"`
	ListName string   `json:"list_name"`
	// BelongsToRowName links a matrix choice to the matrix group row that
	// enumerates it. Empty means the choice applies to every row using the list.
	BelongsToRowName string `json:"belongs_to_row_name,omitempty"`
}

// Content is a form definition: ordered rows plus choices.
type Content struct {
	Survey       []Row    `json:"survey"`
	Choices      []Choice `json:"choices,omitempty"`
	Translations []string `json:"translations,omitempty"`
}

// ChoiceLists groups choices by list name, preserving declaration order.
func (c Content) ChoiceLists() map[string][]Choice {
	lists := make(map[string][]Choice)
	for _, ch := range c.Choices {
		lists[ch.ListName] = append(lists[ch.ListName], ch)
	}
	return lists
}

// FindRow returns the first row named name.
func FindRow(rows []Row, name string) (Row, int, bool) {
	for i, row := range rows {
		if row.Name() == name {
			return row, i, true
		}
	}
	return Row{}, -1, false
}
