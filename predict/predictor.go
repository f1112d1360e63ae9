// Package predict serves single-record triage predictions from persisted
// artifacts.
package predict

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vitalsfirst/artifact"
	"vitalsfirst/db"
	"vitalsfirst/ml"
	"vitalsfirst/triage"
)

// Loader yields the current artifact pair. Both artifact.Store and
// artifact.CachedStore satisfy it.
type Loader interface {
	Load() (*artifact.Pair, error)
}

// History records served predictions.
type History interface {
	SavePrediction(p db.PredictionLog) error
}

type Prediction struct {
	Label         string
	ClassIndex    int
	Probabilities map[string]float64
	PairID        string
	// OutOfRange names features outside the range seen during training.
	OutOfRange []string
}

// Confidence is the probability assigned to the predicted label.
func (p *Prediction) Confidence() float64 {
	return p.Probabilities[p.Label]
}

type Predictor struct {
	loader  Loader
	history History
	logger  *zap.Logger
}

type Option func(*Predictor)

func WithHistory(h History) Option {
	return func(p *Predictor) { p.history = h }
}

func New(loader Loader, logger *zap.Logger, opts ...Option) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Predictor{loader: loader, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictOne loads the artifact pair, encodes raw and decodes the predicted
// class back to its label.
func (p *Predictor) PredictOne(raw triage.RawRecord) (*Prediction, error) {
	pair, err := p.loader.Load()
	if err != nil {
		return nil, err
	}
	vector, err := triage.EncodeRecord(raw)
	if err != nil {
		return nil, err
	}

	index, err := pair.Model.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	label, err := pair.Encoder.Inverse(index)
	if err != nil {
		return nil, err
	}
	proba, err := pair.Model.PredictProba(vector)
	if err != nil {
		return nil, fmt.Errorf("predict proba: %w", err)
	}

	prediction := &Prediction{
		Label:         label,
		ClassIndex:    index,
		Probabilities: make(map[string]float64, len(pair.Encoder.Classes)),
		PairID:        pair.Metadata.PairID,
	}
	for class, name := range pair.Encoder.Classes {
		if class < len(proba) {
			prediction.Probabilities[name] = proba[class]
		} else {
			prediction.Probabilities[name] = 0
		}
	}

	names := triage.FeatureNames()
	for _, col := range ml.OutOfRange(vector, pair.Metadata.FeatureRanges) {
		prediction.OutOfRange = append(prediction.OutOfRange, names[col])
	}
	if len(prediction.OutOfRange) > 0 {
		p.logger.Warn("input outside training range", zap.Strings("features", prediction.OutOfRange))
	}

	p.logger.Debug("prediction",
		zap.String("label", label),
		zap.Float64("confidence", prediction.Confidence()),
		zap.String("pair_id", pair.Metadata.PairID))
	p.record(prediction, vector)
	return prediction, nil
}

func (p *Predictor) record(prediction *Prediction, vector []float64) {
	if p.history == nil {
		return
	}
	features, err := json.Marshal(vector)
	if err != nil {
		p.logger.Warn("encode prediction features", zap.Error(err))
		return
	}
	err = p.history.SavePrediction(db.PredictionLog{
		PairID:         prediction.PairID,
		PredictedLabel: prediction.Label,
		Confidence:     prediction.Confidence(),
		Features:       string(features),
		PredictedAt:    time.Now(),
	})
	if err != nil {
		p.logger.Warn("record prediction", zap.Error(err))
	}
}
