package survey

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type SurveySuite struct {
	suite.Suite
	rows []Row
}

func TestSurveySuite(t *testing.T) {
	suite.Run(t, new(SurveySuite))
}

func (s *SurveySuite) SetupTest() {
	s.rows = []Row{
		{Type: TypeText, RawName: "first_name", Labels: []string{"First name", "Prénom"}},
		{Type: TypeBeginGroup, RawName: "household", Labels: []string{"Household"}},
		{Type: TypeInteger, RawName: "members", Labels: []string{"Members"}},
		{Type: TypeBeginRepeat, RawName: "person", Labels: []string{"Person"}},
		{Type: TypeText, Autoname: "person_name"},
		{Type: TypeEndRepeat, Kuid: "k1"},
		{Type: TypeEndGroup, Kuid: "k2"},
		{Type: TypeNote, RawName: "thanks", Labels: []string{"Thanks"}},
		{Type: "unknown_type", RawName: "mystery"},
	}
}

// TestPathIndex verifies flat path computation and level checks.
func (s *SurveySuite) TestPathIndex() {
	idx := NewPathIndex(s.rows)

	s.Run("paths follow group nesting", func() {
		path, ok := idx.Path("person_name")
		s.Require().True(ok)
		s.Equal("household/person/person_name", path)

		path, ok = idx.Path("household")
		s.Require().True(ok)
		s.Equal("household", path)
	})

	s.Run("unknown types and group ends have no path", func() {
		_, ok := idx.Path("mystery")
		s.False(ok)
		_, ok = idx.Path("k1")
		s.False(ok)
	})

	s.Run("names keep declaration order", func() {
		s.Equal([]string{"first_name", "household", "members", "person", "person_name", "thanks"}, idx.Names())
	})

	s.Run("immediate children only", func() {
		s.True(idx.IsChildOf("first_name", ""))
		s.True(idx.IsChildOf("members", "household"))
		s.False(idx.IsChildOf("person_name", "household"))
		s.True(idx.IsChildOf("person_name", "household/person"))
	})

	s.Run("descendants", func() {
		s.Equal([]string{"members", "person", "person_name"}, idx.Descendants("household"))
	})

	s.Run("qpath", func() {
		s.Equal("household-person-person_name", QPath("household/person/person_name"))
	})
}

// TestLabels verifies translation selection and label holder handling.
func (s *SurveySuite) TestLabels() {
	s.Run("default and indexed translations", func() {
		s.Equal("First name", *Label(s.rows, "first_name", DefaultLanguage))
		s.Equal("First name", *Label(s.rows, "first_name", 0))
		s.Equal("Prénom", *Label(s.rows, "first_name", 1))
	})

	s.Run("missing translation or label is nil", func() {
		s.Nil(Label(s.rows, "first_name", 5))
		s.Nil(Label(s.rows, "person_name", 0))
		s.Nil(Label(s.rows, "nope", 0))
	})

	s.Run("label holder provides the label", func() {
		rows := []Row{
			{Type: TypeBeginRank, RawName: "fav", Labels: []string{""}},
			{Type: TypeNote, RawName: "fav_label", Labels: []string{"Rank your favourites"}},
		}
		s.Equal("Rank your favourites", *Label(rows, "fav", 0))
	})

	s.Run("choice labels", func() {
		choices := []Choice{{Name: "a", ListName: "l", Labels: []string{"Alpha", "Alfa"}}}
		s.Equal("Alfa", *ChoiceLabel(choices, "a", 1))
		s.Nil(ChoiceLabel(choices, "b", 0))
	})
}

// TestSpecialLabelHolder verifies the paired-row heuristic.
func (s *SurveySuite) TestSpecialLabelHolder() {
	main := &Row{Type: TypeBeginScore, RawName: "rating"}

	s.True(IsSpecialLabelHolder(main, &Row{Type: TypeSelectOne, RawName: "rating_header", Labels: []string{"x"}}))
	s.True(IsSpecialLabelHolder(main, &Row{Type: TypeNote, RawName: "rating_label", Labels: []string{"x"}}))
	s.True(IsSpecialLabelHolder(main, &Row{Type: TypeNote, RawName: "rating_note", Labels: []string{"x"}}))
	s.False(IsSpecialLabelHolder(main, &Row{Type: TypeNote, RawName: "rating_label"}), "holder needs a label")
	s.False(IsSpecialLabelHolder(main, &Row{Type: TypeText, RawName: "rating_label", Labels: []string{"x"}}))
	s.False(IsSpecialLabelHolder(nil, &Row{Type: TypeNote, RawName: "rating_label", Labels: []string{"x"}}))
}

// TestListName verifies the choice-list reference precedence.
func (s *SurveySuite) TestListName() {
	s.Equal("yn", Row{SelectFromListName: "yn"}.ListName())
	s.Equal("m", Row{MatrixList: "m"}.ListName())
	s.Equal("r", Row{ScoreChoices: "s", RankItems: "r"}.ListName())
	s.Equal("", Row{}.ListName())
}

func (s *SurveySuite) TestChoiceLists() {
	c := Content{Choices: []Choice{
		{Name: "b", ListName: "l1"},
		{Name: "x", ListName: "l2"},
		{Name: "a", ListName: "l1"},
	}}
	lists := c.ChoiceLists()
	s.Require().Len(lists["l1"], 2)
	s.Equal("b", lists["l1"][0].Name)
	s.Equal("a", lists["l1"][1].Name)
}
