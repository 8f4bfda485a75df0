package survey

// DefaultLanguage selects the form's default label translation.
const DefaultLanguage = -1

// Label returns the translated label of the row named name. When the row
// is immediately followed by its special label holder, the holder's label
// is returned instead. Returns nil when the row is missing, has no label,
// or has no label for that translation.
func Label(rows []Row, name string, languageIndex int) *string {
	row, i, ok := FindRow(rows, name)
	if !ok || !row.HasLabel() {
		return nil
	}
	if i+1 < len(rows) && IsSpecialLabelHolder(&row, &rows[i+1]) {
		return pick(rows[i+1].Labels, languageIndex)
	}
	return pick(row.Labels, languageIndex)
}

// ChoiceLabel returns the translated label of a choice.
func ChoiceLabel(choices []Choice, name string, languageIndex int) *string {
	for _, ch := range choices {
		if ch.Name == name {
			return pick(ch.Labels, languageIndex)
		}
	}
	return nil
}

func pick(labels []string, languageIndex int) *string {
	if languageIndex < 0 {
		languageIndex = 0
	}
	if languageIndex >= len(labels) {
		return nil
	}
	label := labels[languageIndex]
	return &label
}

// IsSpecialLabelHolder reports whether holder only exists to carry the
// label of main. Rank, matrix, and rating questions are expanded by the
// backend into a group plus a synthetic row that holds the label.
func IsSpecialLabelHolder(main, holder *Row) bool {
	if main == nil || holder == nil || !holder.HasLabel() {
		return false
	}
	mainName := main.Name()
	holderName := holder.Name()
	switch {
	case holderName == mainName+"_label" && holder.Type == TypeNote:
		return true
	case holderName == mainName+"_note" && holder.Type == TypeNote:
		return true
	case holderName == mainName+"_header" && holder.Type == TypeSelectOne:
		return true
	}
	return false
}
