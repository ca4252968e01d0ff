package preprocess

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder_TransformInverse(t *testing.T) {
	enc, err := NewLabelEncoder([]string{"Cloudy", "Rainy", "Sunny"})
	require.NoError(t, err)

	i, err := enc.Transform("Rainy")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	label, err := enc.Inverse(i)
	require.NoError(t, err)
	assert.Equal(t, "Rainy", label)

	_, err = enc.Transform("Foggy")
	assert.ErrorIs(t, err, ErrUnseenLabel)
	_, err = enc.Inverse(3)
	assert.Error(t, err)
}

func TestLabelEncoder_Invalid(t *testing.T) {
	_, err := NewLabelEncoder(nil)
	assert.Error(t, err)
	_, err = NewLabelEncoder([]string{"a", "a"})
	assert.Error(t, err)
}

func TestStandardScaler(t *testing.T) {
	s, err := NewStandardScaler([]float64{10, 0}, []float64{2, 0})
	require.NoError(t, err)

	out, err := s.Transform([]float64{14, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3}, out, 1e-12)

	back, err := s.Inverse(out)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{14, 3}, back, 1e-12)

	_, err = s.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrDimension)

	rows, err := s.TransformRows([][]float64{{10, 1}, {12, 2}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, rows[1], 1e-12)
}

func TestStandardScaler_Mismatch(t *testing.T) {
	_, err := NewStandardScaler([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	encPath := filepath.Join(dir, "enc.json")
	scPath := filepath.Join(dir, "sc.json")
	require.NoError(t, os.WriteFile(encPath, []byte(`{"classes":["A","B"]}`), 0o644))
	require.NoError(t, os.WriteFile(scPath, []byte(`{"mean":[1],"scale":[2]}`), 0o644))

	enc, err := LoadEncoder(encPath)
	require.NoError(t, err)
	i, err := enc.Transform("B")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	sc, err := LoadScaler(scPath)
	require.NoError(t, err)
	assert.Equal(t, 1, sc.Width())

	_, err = LoadScaler(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(scPath, []byte(`{not json`), 0o644))
	_, err = LoadScaler(scPath)
	assert.Error(t, err)
}
