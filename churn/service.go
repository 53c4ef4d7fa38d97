package churn

import (
	"context"
	"time"

	"go.uber.org/zap"

	"churnpredict/apperr"
	"churnpredict/artifact"
	"churnpredict/monitoring"
)

// ArtifactSource supplies the decoded scaler/classifier pair.
type ArtifactSource interface {
	Load(ctx context.Context, loc artifact.Locators) (*artifact.Artifacts, error)
	Cached(loc artifact.Locators) (*artifact.Artifacts, bool)
}

// Service binds one pair of artifact locators to the prediction pipeline. It
// is built once at startup and shared by every transport.
type Service struct {
	source        ArtifactSource
	locators      artifact.Locators
	positiveClass float64
	log           *zap.Logger
	metrics       *monitoring.Metrics
}

// ServiceConfig selects the artifacts a Service loads.
type ServiceConfig struct {
	Locators      artifact.Locators
	PositiveClass float64
}

// NewService does not load anything; call Warm or let the first Predict do it.
func NewService(source ArtifactSource, cfg ServiceConfig, log *zap.Logger, metrics *monitoring.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		source:        source,
		locators:      cfg.Locators,
		positiveClass: cfg.PositiveClass,
		log:           log,
		metrics:       metrics,
	}
}

// Warm loads the artifacts ahead of the first request.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.source.Load(ctx, s.locators)
	return err
}

// Ready reports whether the artifacts are loaded.
func (s *Service) Ready() bool {
	_, ok := s.source.Cached(s.locators)
	return ok
}

// Predict validates r before touching the artifacts, so a bad request never
// triggers a fetch.
func (s *Service) Predict(ctx context.Context, r Request) (Prediction, error) {
	start := time.Now()
	pred, err := s.predict(ctx, r)
	if err != nil {
		kind := apperr.KindOf(err)
		s.metrics.ObservePredictionFailure(string(kind))
		if kind == apperr.KindInvalidRequest {
			s.log.Debug("rejected request", zap.Error(err))
		} else {
			s.log.Error("prediction failed", zap.String("code", string(kind)), zap.Error(err))
		}
		return Prediction{}, err
	}
	s.metrics.ObservePrediction(string(pred.Result), time.Since(start))
	s.log.Debug("prediction",
		zap.String("result", string(pred.Result)),
		zap.Float64("raw", pred.Raw),
		zap.Duration("elapsed", time.Since(start)))
	return pred, nil
}

func (s *Service) predict(ctx context.Context, r Request) (Prediction, error) {
	if err := r.Validate(); err != nil {
		return Prediction{}, err
	}
	a, err := s.source.Load(ctx, s.locators)
	if err != nil {
		return Prediction{}, err
	}
	return NewPipeline(a.Scaler, a.Classifier, s.positiveClass).Predict(r)
}

// ModelInfo describes the loaded artifacts.
type ModelInfo struct {
	ScalerKind     string            `json:"scaler_kind"`
	ClassifierKind string            `json:"classifier_kind"`
	NumFeatures    int               `json:"num_features"`
	FeatureNames   []string          `json:"feature_names"`
	PositiveClass  float64           `json:"positive_class"`
	Locators       artifact.Locators `json:"locators"`
	LoadedAt       time.Time         `json:"loaded_at"`
}

// Describe loads the artifacts if needed and summarises them.
func (s *Service) Describe(ctx context.Context) (ModelInfo, error) {
	a, err := s.source.Load(ctx, s.locators)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		ScalerKind:     a.Scaler.Kind(),
		ClassifierKind: a.Classifier.Kind(),
		NumFeatures:    a.Scaler.NumFeatures(),
		FeatureNames:   FeatureNames(),
		PositiveClass:  s.positiveClass,
		Locators:       a.Locators,
		LoadedAt:       a.LoadedAt,
	}, nil
}
