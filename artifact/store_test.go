package artifact

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalsfirst/ml"
	"vitalsfirst/triage"
	"vitalsfirst/triage/triagetest"
)

func fitted(t *testing.T) (ml.Classifier, *triage.Dataset) {
	t.Helper()
	ds, err := triage.LoadDataset(strings.NewReader(triagetest.BalancedCSV()))
	require.NoError(t, err)
	model := ml.NewRandomForest(10, 0, 2, 42)
	require.NoError(t, model.Fit(ds.Features, ds.Labels))
	return model, ds
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(Config{Dir: filepath.Join(t.TempDir(), "models")})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	model, ds := fitted(t)
	ranges, err := ml.ComputeRanges(ds.Features)
	require.NoError(t, err)

	meta, err := store.Save(model, ds.Encoder, ranges)
	require.NoError(t, err)
	assert.NotEmpty(t, meta.PairID)
	assert.FileExists(t, store.Config().ModelPath())
	assert.FileExists(t, store.Config().EncoderPath())

	pair, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, meta.PairID, pair.Metadata.PairID)
	assert.Equal(t, ml.ModelRandomForest, pair.Metadata.ModelType)
	assert.Equal(t, triage.FeatureNames(), pair.Metadata.FeatureNames)
	assert.Equal(t, ranges, pair.Metadata.FeatureRanges)
	assert.Equal(t, ds.Encoder.Classes, pair.Encoder.Classes)

	for _, row := range ds.Features {
		want, err := model.Predict(row)
		require.NoError(t, err)
		got, err := pair.Model.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		wantProba, err := model.PredictProba(row)
		require.NoError(t, err)
		gotProba, err := pair.Model.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, wantProba, gotProba)
	}
}

func TestLoadMissingArtifacts(t *testing.T) {
	store := testStore(t)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrArtifactsNotFound)

	model, ds := fitted(t)
	_, err = store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(store.Config().EncoderPath()))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrArtifactsNotFound)
}

func TestLoadCorruptArtifacts(t *testing.T) {
	store := testStore(t)
	model, ds := fitted(t)
	_, err := store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Config().ModelPath(), []byte("not a gob"), 0o600))
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestLoadMismatchedPair(t *testing.T) {
	store := testStore(t)
	model, ds := fitted(t)
	_, err := store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)

	// Keep the old encoder file while a newer model replaces its partner.
	oldEncoder, err := os.ReadFile(store.Config().EncoderPath())
	require.NoError(t, err)
	_, err = store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Config().EncoderPath(), oldEncoder, 0o600))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
	assert.Contains(t, err.Error(), "does not match")
}

func TestLoadVersionMismatch(t *testing.T) {
	store := testStore(t)
	model, ds := fitted(t)
	meta, err := store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)

	file, err := os.Create(store.Config().EncoderPath())
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(file).Encode(&encoderBlob{
		FormatVersion: FormatVersion + 1,
		PairID:        meta.PairID,
		Classes:       ds.Encoder.Classes,
	}))
	require.NoError(t, file.Close())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestLoadUnsortedClasses(t *testing.T) {
	store := testStore(t)
	model, ds := fitted(t)
	meta, err := store.Save(model, ds.Encoder, nil)
	require.NoError(t, err)

	file, err := os.Create(store.Config().EncoderPath())
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(file).Encode(&encoderBlob{
		FormatVersion: FormatVersion,
		PairID:        meta.PairID,
		Classes:       []string{"Urgent", "Emergency", "Non-Urgent"},
	}))
	require.NoError(t, file.Close())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestNewStoreDefaults(t *testing.T) {
	store := NewStore(Config{})
	assert.Equal(t, DefaultConfig(), store.Config())
	assert.Equal(t, filepath.Join("models", "label_encoder.gob"), store.Config().EncoderPath())
}
