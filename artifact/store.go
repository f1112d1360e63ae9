// Package artifact persists the fitted model and its label encoder as a
// matched pair of gob files.
package artifact

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"vitalsfirst/ml"
	"vitalsfirst/triage"
)

const FormatVersion = 1

var (
	ErrArtifactsNotFound = errors.New("model artifacts not found, run `vitalsfirst train` first")
	ErrArtifactCorrupt   = errors.New("model artifacts corrupt")
)

type Config struct {
	Dir         string
	ModelFile   string
	EncoderFile string
}

func DefaultConfig() Config {
	return Config{
		Dir:         "models",
		ModelFile:   "random_forest_model.gob",
		EncoderFile: "label_encoder.gob",
	}
}

func (c Config) ModelPath() string {
	return filepath.Join(c.Dir, c.ModelFile)
}

func (c Config) EncoderPath() string {
	return filepath.Join(c.Dir, c.EncoderFile)
}

// Metadata is written into both files of a pair.
type Metadata struct {
	FormatVersion int
	PairID        string
	CreatedAt     time.Time
	ModelType     string
	FeatureNames  []string
	FeatureRanges []ml.FeatureRange
}

// Pair is a loaded model with the encoder it was trained against.
type Pair struct {
	Model    ml.Classifier
	Encoder  *triage.LabelEncoder
	Metadata Metadata
}

type modelBlob struct {
	Metadata Metadata
	Model    ml.Classifier
}

type encoderBlob struct {
	FormatVersion int
	PairID        string
	Classes       []string
}

type Store struct {
	config Config
}

func NewStore(config Config) *Store {
	defaults := DefaultConfig()
	if config.Dir == "" {
		config.Dir = defaults.Dir
	}
	if config.ModelFile == "" {
		config.ModelFile = defaults.ModelFile
	}
	if config.EncoderFile == "" {
		config.EncoderFile = defaults.EncoderFile
	}
	return &Store{config: config}
}

func (s *Store) Config() Config {
	return s.config
}

// Save writes the model and encoder under a fresh pair id, replacing any
// previous pair.
func (s *Store) Save(model ml.Classifier, encoder *triage.LabelEncoder, ranges []ml.FeatureRange) (*Metadata, error) {
	if model == nil || encoder == nil {
		return nil, errors.New("model and encoder are required")
	}
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	meta := Metadata{
		FormatVersion: FormatVersion,
		PairID:        uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		ModelType:     model.Name(),
		FeatureNames:  triage.FeatureNames(),
		FeatureRanges: ranges,
	}
	if err := writeGob(s.config.ModelPath(), &modelBlob{Metadata: meta, Model: model}); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	blob := &encoderBlob{FormatVersion: FormatVersion, PairID: meta.PairID, Classes: encoder.Classes}
	if err := writeGob(s.config.EncoderPath(), blob); err != nil {
		return nil, fmt.Errorf("save label encoder: %w", err)
	}
	return &meta, nil
}

// Load reads both files and checks that they belong to the same pair.
func (s *Store) Load() (*Pair, error) {
	for _, path := range []string{s.config.ModelPath(), s.config.EncoderPath()} {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w (missing %s)", ErrArtifactsNotFound, path)
		} else if err != nil {
			return nil, err
		}
	}

	var model modelBlob
	if err := readGob(s.config.ModelPath(), &model); err != nil {
		return nil, fmt.Errorf("%w: model: %v", ErrArtifactCorrupt, err)
	}
	var enc encoderBlob
	if err := readGob(s.config.EncoderPath(), &enc); err != nil {
		return nil, fmt.Errorf("%w: label encoder: %v", ErrArtifactCorrupt, err)
	}

	switch {
	case model.Model == nil:
		return nil, fmt.Errorf("%w: model blob holds no model", ErrArtifactCorrupt)
	case model.Metadata.FormatVersion != FormatVersion || enc.FormatVersion != FormatVersion:
		return nil, fmt.Errorf("%w: format version %d/%d, want %d",
			ErrArtifactCorrupt, model.Metadata.FormatVersion, enc.FormatVersion, FormatVersion)
	case model.Metadata.PairID != enc.PairID:
		return nil, fmt.Errorf("%w: model pair %s does not match encoder pair %s",
			ErrArtifactCorrupt, model.Metadata.PairID, enc.PairID)
	}

	encoder, err := triage.NewLabelEncoder(enc.Classes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if model.Model.NumClasses() > encoder.NumClasses() {
		return nil, fmt.Errorf("%w: model has %d classes, encoder %d",
			ErrArtifactCorrupt, model.Model.NumClasses(), encoder.NumClasses())
	}
	return &Pair{Model: model.Model, Encoder: encoder, Metadata: model.Metadata}, nil
}

func writeGob(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(file).Encode(value); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func readGob(path string, value any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(value)
}
