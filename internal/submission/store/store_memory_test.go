package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"formview/internal/submission/models"
	"formview/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	ctx := context.Background()
	for _, sub := range []models.Submission{
		{ID: 1, AssetUID: "a1", Data: models.Record{"q1": "one"}},
		{ID: 2, AssetUID: "a1", Data: models.Record{"q1": "two"}},
		{ID: 1, AssetUID: "a2", Data: models.Record{"q1": "other asset"}},
	} {
		s.Require().NoError(s.store.Save(ctx, &sub))
	}
}

func (s *InMemoryStoreSuite) TestFindByID() {
	s.Run("scoped by asset", func() {
		got, err := s.store.FindByID(context.Background(), "a2", 1)
		s.Require().NoError(err)
		s.Equal("other asset", got.Data["q1"])
	})

	s.Run("missing", func() {
		_, err := s.store.FindByID(context.Background(), "a1", 99)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestFindManySkipsMissing() {
	got, err := s.store.FindMany(context.Background(), "a1", []int64{2, 99, 1})
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Equal("two", got[2].Data["q1"])
	s.NotContains(got, int64(99))
}

func (s *InMemoryStoreSuite) TestSaveCopiesData() {
	data := models.Record{"q1": "before"}
	s.Require().NoError(s.store.Save(context.Background(), &models.Submission{ID: 5, AssetUID: "a1", Data: data}))
	data["q1"] = "after"

	got, err := s.store.FindByID(context.Background(), "a1", 5)
	s.Require().NoError(err)
	s.Equal("before", got.Data["q1"])
}
