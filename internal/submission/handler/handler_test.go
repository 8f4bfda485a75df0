package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	assetmodels "formview/internal/asset/models"
	assetstore "formview/internal/asset/store"
	"formview/internal/display"
	jwttoken "formview/internal/jwt_token"
	"formview/internal/platform/metrics"
	"formview/internal/submission/cache"
	"formview/internal/submission/models"
	"formview/internal/submission/service"
	submissionstore "formview/internal/submission/store"
	"formview/internal/survey"
	"formview/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	token  string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	assets := assetstore.NewInMemory()
	s.Require().NoError(assets.Save(ctx, &assetmodels.Asset{
		UID:     "aH1",
		Version: "v1",
		Content: survey.Content{
			Survey: []survey.Row{
				{Type: survey.TypeBeginGroup, RawName: "household", Labels: []string{"Household", "Ménage"}},
				{Type: survey.TypeText, RawName: "head", Labels: []string{"Head", "Chef"}},
				{Type: survey.TypeEndGroup},
				{Type: survey.TypeText, RawName: "notes", Labels: []string{"Notes", "Notes"}},
			},
			Translations: []string{"English (en)", "French (fr)"},
		},
	}))
	submissions := submissionstore.NewInMemory()
	for _, sub := range []models.Submission{
		{ID: 1, AssetUID: "aH1", Data: models.Record{"household/head": "Ana", "notes": ""}},
		{ID: 2, AssetUID: "aH1", Data: models.Record{"household/head": "Ben"}},
	} {
		s.Require().NoError(submissions.Save(ctx, &sub))
	}

	svc, err := service.New(assets, submissions,
		service.WithLogger(logger),
		service.WithCache(cache.NewInMemory(time.Minute)),
		service.WithMetrics(m),
	)
	s.Require().NoError(err)

	jwtService := jwttoken.NewJWTService("test-signing-key", "formview-test")
	s.token, err = jwtService.GenerateAccessToken("user-1", time.Hour)
	s.Require().NoError(err)

	r := chi.NewRouter()
	New(svc, logger, m, jwtService).Register(r)
	s.router = r
}

func (s *HandlerSuite) authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+s.token)
	return req
}

func (s *HandlerSuite) get(path string) *http.Request {
	return s.authed(testutil.NewJSONRequest(s.T(), http.MethodGet, path, nil))
}

func (s *HandlerSuite) TestDisplay() {
	s.Run("renders tree in requested language", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/1/display?lang=1"))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		s.NotEmpty(rr.Header().Get("X-Request-ID"))

		tree := testutil.UnmarshalResponse[display.Group](s.T(), rr)
		s.Equal(display.KindRoot, tree.Kind)
		groups := tree.Groups()
		s.Require().Len(groups, 1)
		s.Equal("Ménage", *groups[0].Label)
		s.Equal("Ana", *groups[0].Responses()[0].Value)

		notes := tree.Responses()
		s.Require().Len(notes, 1)
		s.Require().NotNil(notes[0].Value)
		s.Equal("", *notes[0].Value)
	})

	s.Run("missing submission is 404", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/99/display"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("missing asset is 404", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/nope/data/1/display"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("bad id is 400", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/abc/display"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("bad lang is 400", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/1/display?lang=fr"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("requires a token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/api/v2/assets/aH1/data/1/display", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *HandlerSuite) TestDisplayMany() {
	s.Run("keeps id order and reports missing", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/display?ids=2,7,1"))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		batch := testutil.UnmarshalResponse[service.DisplayBatch](s.T(), rr)
		s.Require().Len(batch.Items, 2)
		s.Equal(int64(2), batch.Items[0].SubmissionID)
		s.Equal(int64(1), batch.Items[1].SubmissionID)
		s.Equal("Ben", *batch.Items[0].Tree.Groups()[0].Responses()[0].Value)
		s.Equal([]int64{7}, batch.Missing)
	})

	s.Run("ids required", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/display"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("non numeric ids rejected", func() {
		rr := testutil.DoRequest(s.router, s.get("/api/v2/assets/aH1/data/display?ids=1,x"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestPreview() {
	s.Run("renders inline content", func() {
		body := map[string]any{
			"content": map[string]any{
				"survey": []map[string]any{
					{"type": "integer", "name": "age", "label": []string{"Age"}},
				},
			},
			"submission": map[string]any{"age": 31},
		}
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v2/display/preview", body))
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

		tree := testutil.UnmarshalResponse[display.Group](s.T(), rr)
		responses := tree.Responses()
		s.Require().Len(responses, 1)
		s.Equal("Age", *responses[0].Label)
		s.Equal("31", *responses[0].Value)
	})

	s.Run("malformed body is 400", func() {
		req := s.authed(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v2/display/preview", "{"))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("empty survey is 422", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/v2/display/preview", map[string]any{}))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
	})
}
