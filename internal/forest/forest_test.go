package forest

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable builds two classes split on feature 1 (hour < 15 vs >= 18) with
// noise on the other features.
func separable(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		class := i % 2
		hour := 12 + rng.Intn(3)
		if class == 1 {
			hour = 18 + rng.Intn(4)
		}
		X[i] = []float64{float64(rng.Intn(3)), float64(hour), float64(rng.Intn(7)), float64(1 + rng.Intn(6))}
		y[i] = class
	}
	return X, y
}

func TestFit_LearnsSeparableData(t *testing.T) {
	X, y := separable(200, 1)
	f, err := Fit(X, y, 2, Config{NumTrees: 25, Seed: 42})
	require.NoError(t, err)

	testX, testY := separable(50, 2)
	acc, err := f.Accuracy(testX, testY)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95)

	class, p, err := f.Predict([]float64{0, 20, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, class)
	assert.InDelta(t, 1.0, p, 0.2)
}

func TestFit_Deterministic(t *testing.T) {
	X, y := separable(120, 7)
	a, err := Fit(X, y, 2, Config{NumTrees: 10, Seed: 42})
	require.NoError(t, err)
	b, err := Fit(X, y, 2, Config{NumTrees: 10, Seed: 42})
	require.NoError(t, err)

	rawA, _ := json.Marshal(a)
	rawB, _ := json.Marshal(b)
	assert.JSONEq(t, string(rawA), string(rawB))
}

func TestPredictProba_SumsToOne(t *testing.T) {
	X := [][]float64{{0, 1}, {0, 2}, {1, 1}, {1, 2}, {0, 3}, {1, 3}}
	y := []int{0, 1, 2, 0, 1, 2}
	f, err := Fit(X, y, 3, Config{NumTrees: 15, Seed: 3, MaxDepth: 2})
	require.NoError(t, err)

	proba, err := f.PredictProba([]float64{1, 2})
	require.NoError(t, err)
	sum := 0.0
	for _, p := range proba {
		assert.GreaterOrEqual(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	_, err = f.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestFit_SingleClassAndErrors(t *testing.T) {
	f, err := Fit([][]float64{{1}, {2}}, []int{0, 0}, 2, Config{NumTrees: 3})
	require.NoError(t, err)
	class, p, err := f.Predict([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, 0, class)
	assert.Equal(t, 1.0, p)

	_, err = Fit(nil, nil, 2, Config{})
	assert.True(t, errors.Is(err, ErrEmpty))
	_, err = Fit([][]float64{{1}}, []int{3}, 2, Config{})
	assert.Error(t, err)
	_, err = Fit([][]float64{{1}, {1, 2}}, []int{0, 1}, 2, Config{})
	assert.Error(t, err)
}
