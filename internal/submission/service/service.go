// Package service loads assets and submissions and renders them as display
// trees, with caching, metrics, tracing and ops auditing around the pure
// builder.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	assetmodels "formview/internal/asset/models"
	"formview/internal/display"
	"formview/internal/platform/metrics"
	"formview/internal/processing/supplemental"
	"formview/internal/submission/cache"
	"formview/internal/submission/models"
	"formview/internal/survey"
	dErrors "formview/pkg/domain-errors"
	audit "formview/pkg/platform/audit"
	"formview/pkg/platform/sentinel"
)

// MaxBatchSize bounds the number of submissions rendered per batch call.
const MaxBatchSize = 100

const buildConcurrency = 8

type AssetStore interface {
	FindByUID(ctx context.Context, uid string) (*assetmodels.Asset, error)
}

type SubmissionStore interface {
	FindByID(ctx context.Context, assetUID string, id int64) (*models.Submission, error)
	FindMany(ctx context.Context, assetUID string, ids []int64) (map[int64]*models.Submission, error)
}

type DisplayCache interface {
	Get(ctx context.Context, key cache.Key) (*display.Group, error)
	Set(ctx context.Context, key cache.Key, tree *display.Group) error
}

type AuditPublisher interface {
	Track(ctx context.Context, event audit.Event)
}

// DisplayItem is the rendered tree of one submission in a batch.
type DisplayItem struct {
	SubmissionID int64          `json:"submission_id"`
	Tree         *display.Group `json:"tree"`
}

// DisplayBatch lists rendered submissions in requested order. Missing holds
// requested ids that do not exist for the asset.
type DisplayBatch struct {
	Items   []DisplayItem `json:"items"`
	Missing []int64       `json:"missing"`
}

type Service struct {
	assets      AssetStore
	submissions SubmissionStore
	cache       DisplayCache
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCache(c DisplayCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service. Both stores are required.
func New(assets AssetStore, submissions SubmissionStore, opts ...Option) (*Service, error) {
	if assets == nil || submissions == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "asset and submission stores are required")
	}
	s := &Service{
		assets:      assets,
		submissions: submissions,
		logger:      slog.Default(),
		tracer:      otel.Tracer("formview/submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Display renders one submission of an asset.
func (s *Service) Display(ctx context.Context, assetUID string, submissionID int64, languageIndex int) (*display.Group, error) {
	if assetUID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "asset uid is required")
	}
	ctx, span := s.tracer.Start(ctx, "submission.Display", trace.WithAttributes(
		attribute.String("asset.uid", assetUID),
		attribute.Int64("submission.id", submissionID),
		attribute.Int("language.index", languageIndex),
	))
	defer span.End()

	var (
		asset *assetmodels.Asset
		sub   *models.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = s.loadAsset(gctx, assetUID)
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = s.submissions.FindByID(gctx, assetUID, submissionID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.fail(ctx, span, err, audit.Event{AssetUID: assetUID, SubmissionIDs: []int64{submissionID}, LanguageIndex: languageIndex})
		return nil, err
	}

	tree, hit := s.render(ctx, asset, sub, languageIndex)
	span.SetAttributes(attribute.Bool("cache.hit", hit))

	s.track(ctx, audit.Event{
		Action:        audit.EventSubmissionDisplayed,
		AssetUID:      assetUID,
		SubmissionIDs: []int64{submissionID},
		LanguageIndex: languageIndex,
		CacheHit:      hit,
	})
	return tree, nil
}

// DisplayMany renders a batch of submissions of one asset, in the order the
// ids were requested. Duplicate ids are rendered once.
func (s *Service) DisplayMany(ctx context.Context, assetUID string, ids []int64, languageIndex int) (*DisplayBatch, error) {
	if assetUID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "asset uid is required")
	}
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one submission id is required")
	}
	if len(ids) > MaxBatchSize {
		return nil, dErrors.New(dErrors.CodeBadRequest, "too many submission ids")
	}
	ctx, span := s.tracer.Start(ctx, "submission.DisplayMany", trace.WithAttributes(
		attribute.String("asset.uid", assetUID),
		attribute.Int("submission.count", len(ids)),
		attribute.Int("language.index", languageIndex),
	))
	defer span.End()

	var (
		asset *assetmodels.Asset
		found map[int64]*models.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asset, err = s.loadAsset(gctx, assetUID)
		return err
	})
	g.Go(func() error {
		var err error
		found, err = s.submissions.FindMany(gctx, assetUID, ids)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submissions")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.fail(ctx, span, err, audit.Event{AssetUID: assetUID, SubmissionIDs: ids, LanguageIndex: languageIndex})
		return nil, err
	}

	batch := &DisplayBatch{Items: []DisplayItem{}, Missing: []int64{}}
	present := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			present = append(present, id)
		} else {
			batch.Missing = append(batch.Missing, id)
		}
	}

	trees := make([]*display.Group, len(present))
	bg := new(errgroup.Group)
	bg.SetLimit(buildConcurrency)
	for i, id := range present {
		bg.Go(func() error {
			trees[i], _ = s.render(ctx, asset, found[id], languageIndex)
			return nil
		})
	}
	_ = bg.Wait()

	for i, id := range present {
		batch.Items = append(batch.Items, DisplayItem{SubmissionID: id, Tree: trees[i]})
	}

	s.track(ctx, audit.Event{
		Action:        audit.EventSubmissionsDisplayed,
		AssetUID:      assetUID,
		SubmissionIDs: present,
		LanguageIndex: languageIndex,
	})
	return batch, nil
}

// Preview renders a submission against an inline form definition without
// touching the stores or the cache.
func (s *Service) Preview(ctx context.Context, content survey.Content, features supplemental.AdvancedFeatures, languageIndex int, record models.Record) (*display.Group, error) {
	if len(content.Survey) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "content.survey must not be empty")
	}
	_, span := s.tracer.Start(ctx, "submission.Preview", trace.WithAttributes(
		attribute.Int("survey.rows", len(content.Survey)),
		attribute.Int("language.index", languageIndex),
	))
	defer span.End()

	start := time.Now()
	tree := display.Build(content, features, languageIndex, record)
	if s.metrics != nil {
		s.metrics.ObserveBuild("preview", start, tree.Count())
	}
	s.track(ctx, audit.Event{Action: audit.EventPreviewBuilt, LanguageIndex: languageIndex})
	return tree, nil
}

func (s *Service) loadAsset(ctx context.Context, uid string) (*assetmodels.Asset, error) {
	asset, err := s.assets.FindByUID(ctx, uid)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "asset not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return asset, nil
}

// render returns the cached tree for the submission or builds and caches
// it. Cache failures degrade to a rebuild.
func (s *Service) render(ctx context.Context, asset *assetmodels.Asset, sub *models.Submission, languageIndex int) (*display.Group, bool) {
	key := cache.Key{
		AssetUID:      asset.UID,
		Version:       asset.Version,
		SubmissionID:  sub.ID,
		Fingerprint:   sub.Fingerprint(),
		LanguageIndex: languageIndex,
	}
	if s.cache != nil {
		tree, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.recordCache("error")
			s.logger.WarnContext(ctx, "display cache read failed",
				"key", key.String(),
				"error", err,
			)
		case tree != nil:
			s.recordCache("hit")
			return tree, true
		default:
			s.recordCache("miss")
		}
	}

	_, span := s.tracer.Start(ctx, "display.Build")
	start := time.Now()
	tree := display.Build(asset.Content, asset.AdvancedFeatures, languageIndex, sub.Data)
	span.End()
	if s.metrics != nil {
		s.metrics.ObserveBuild("store", start, tree.Count())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, tree); err != nil {
			s.logger.WarnContext(ctx, "display cache write failed",
				"key", key.String(),
				"error", err,
			)
		}
	}
	return tree, false
}

func (s *Service) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(result)
	}
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error, event audit.Event) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		s.logger.ErrorContext(ctx, "display failed",
			"asset_uid", event.AssetUID,
			"error", err,
		)
	}
	event.Action = audit.EventDisplayFailed
	event.Reason = string(dErrors.CodeOf(err))
	s.track(ctx, event)
}

func (s *Service) track(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Track(ctx, event)
	}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
