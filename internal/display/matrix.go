package display

import (
	"formview/internal/submission/models"
	"formview/internal/survey"
)

// matrixDataKey is the record key of one matrix cell. Matrix answers are
// not stored under [PATH/]MATRIX/QUESTION but under
// [PATH/]MATRIX_CHOICE/MATRIX_CHOICE_QUESTION.
func matrixDataKey(matrixPath, matrixName, choice, question string) string {
	return matrixPath + "_" + choice + "/" + matrixName + "_" + choice + "_" + question
}

// populateMatrix adds one matrix-row group per choice of the matrix list,
// each holding a response for every question declared inside the matrix.
func (b *builder) populateMatrix(matrix *Group, row *survey.Row, matrixPath string, parentData models.Record) {
	choices := b.choiceLists[row.ListName()]
	questions := b.paths.Descendants(matrixPath)
	matrixName := row.Name()

	for _, choice := range choices {
		if choice.BelongsToRowName != "" && choice.BelongsToRowName != matrixName {
			continue
		}
		matrixRow := newGroup(KindMatrixRow, survey.ChoiceLabel(choices, choice.Name, b.lang), choice.Name)
		matrix.add(matrixRow)

		for _, question := range questions {
			qRow, _, ok := survey.FindRow(b.rows, question)
			if !ok {
				continue
			}
			key := matrixDataKey(matrixPath, matrixName, choice.Name, question)
			qt := qRow.Type
			matrixRow.add(&Response{
				QuestionType: &qt,
				Label:        survey.Label(b.rows, question, b.lang),
				Name:         question,
				ListName:     qRow.ListName(),
				Value:        b.matrixValue(key, parentData),
			})
		}
	}
}

// matrixValue looks the cell up in the whole record first and then in the
// data of the enclosing repeat instance, where nested matrices keep it.
func (b *builder) matrixValue(key string, parentData models.Record) *string {
	for _, data := range []models.Record{b.record, parentData} {
		if v, ok := data.Lookup(key); ok {
			s := models.Stringify(v)
			return &s
		}
	}
	return nil
}
