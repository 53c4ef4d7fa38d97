// Package artifact fetches, decodes and caches the fitted scaler and
// classifier the prediction pipeline runs on.
package artifact

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"churnpredict/apperr"
	"churnpredict/ml"
	"churnpredict/monitoring"
)

// DefaultCacheSize is the number of locator pairs kept decoded in memory.
const DefaultCacheSize = 4

// Artifacts is an immutable, fully decoded scaler/classifier pair.
type Artifacts struct {
	Scaler     ml.Scaler
	Classifier ml.Classifier
	Locators   Locators
	LoadedAt   time.Time
}

// Loader reads each locator pair once and serves the decoded pair from
// memory afterwards. Concurrent first loads of the same pair share one fetch.
// Failed loads are not cached.
type Loader struct {
	fetcher Fetcher
	cache   *lru.Cache[Locators, *Artifacts]
	group   singleflight.Group
	log     *zap.Logger
	metrics *monitoring.Metrics
}

// NewLoader returns a Loader holding up to cacheSize decoded pairs. A nil
// log or metrics disables that output.
func NewLoader(fetcher Fetcher, cacheSize int, log *zap.Logger, metrics *monitoring.Metrics) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[Locators, *Artifacts](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create artifact cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		fetcher: fetcher,
		cache:   cache,
		log:     log,
		metrics: metrics,
	}, nil
}

// Cached returns the pair for loc if it has already been loaded.
func (l *Loader) Cached(loc Locators) (*Artifacts, bool) {
	return l.cache.Get(loc)
}

// Load returns the decoded pair for loc, fetching it on first use.
func (l *Loader) Load(ctx context.Context, loc Locators) (*Artifacts, error) {
	if a, ok := l.cache.Get(loc); ok {
		l.metrics.ObserveCacheLookup(true)
		return a, nil
	}
	l.metrics.ObserveCacheLookup(false)

	// Detached so one caller cancelling does not fail the callers sharing
	// this flight.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := l.group.Do(loc.key(), func() (interface{}, error) {
		if a, ok := l.cache.Peek(loc); ok {
			return a, nil
		}
		a, err := l.load(loadCtx, loc)
		if err != nil {
			return nil, err
		}
		l.cache.Add(loc, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.log.Debug("joined in-flight artifact load",
			zap.String("scaler", loc.Scaler),
			zap.String("model", loc.Model))
	}
	return v.(*Artifacts), nil
}

func (l *Loader) load(ctx context.Context, loc Locators) (*Artifacts, error) {
	start := time.Now()
	if err := loc.Validate(); err != nil {
		l.metrics.ObserveArtifactLoad("error")
		return nil, apperr.ArtifactUnavailable(fmt.Sprintf("%+v", loc), err)
	}

	var scalerBytes, modelBytes []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scalerBytes, err = l.fetcher.Fetch(gctx, loc.Scaler)
		return err
	})
	g.Go(func() error {
		var err error
		modelBytes, err = l.fetcher.Fetch(gctx, loc.Model)
		return err
	})
	if err := g.Wait(); err != nil {
		l.metrics.ObserveArtifactLoad("error")
		l.log.Error("artifact fetch failed", zap.Error(err))
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.ArtifactUnavailable(fmt.Sprintf("%+v", loc), err)
		}
		return nil, err
	}

	scaler, err := ml.DecodeScaler(scalerBytes)
	if err != nil {
		l.metrics.ObserveArtifactLoad("corrupt")
		l.log.Error("scaler artifact is corrupt", zap.String("locator", loc.Scaler), zap.Error(err))
		return nil, apperr.ArtifactCorrupt(loc.Scaler, err)
	}
	classifier, err := ml.DecodeClassifier(modelBytes)
	if err != nil {
		l.metrics.ObserveArtifactLoad("corrupt")
		l.log.Error("model artifact is corrupt", zap.String("locator", loc.Model), zap.Error(err))
		return nil, apperr.ArtifactCorrupt(loc.Model, err)
	}

	if scaler.NumFeatures() != classifier.NumFeatures() {
		l.log.Warn("scaler and classifier disagree on feature count",
			zap.Int("scaler_features", scaler.NumFeatures()),
			zap.Int("classifier_features", classifier.NumFeatures()))
	}

	l.metrics.ObserveArtifactLoad("ok")
	l.log.Info("artifacts loaded",
		zap.String("scaler", loc.Scaler),
		zap.String("scaler_kind", scaler.Kind()),
		zap.String("model", loc.Model),
		zap.String("model_kind", classifier.Kind()),
		zap.Duration("elapsed", time.Since(start)))

	return &Artifacts{
		Scaler:     scaler,
		Classifier: classifier,
		Locators:   loc,
		LoadedAt:   time.Now(),
	}, nil
}
