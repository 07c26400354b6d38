// Package forest implements a random forest classifier over dense float
// features: bootstrap-sampled CART trees split on gini impurity, with a
// random feature subset considered at each node.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrEmpty is returned when there is nothing to fit.
var ErrEmpty = errors.New("forest: empty training set")

// Config controls tree growth. Zero values select defaults.
type Config struct {
	NumTrees        int
	MaxDepth        int // 0 grows until leaves are pure
	MinSamplesSplit int
	MaxFeatures     int // 0 uses floor(sqrt(features))
	Seed            int64
}

func (c Config) withDefaults(numFeatures int) Config {
	if c.NumTrees <= 0 {
		c.NumTrees = 100
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = int(math.Sqrt(float64(numFeatures)))
	}
	if c.MaxFeatures < 1 {
		c.MaxFeatures = 1
	}
	if c.MaxFeatures > numFeatures {
		c.MaxFeatures = numFeatures
	}
	return c
}

// Node is a split (Left != nil) or a leaf carrying class probabilities.
type Node struct {
	Feature   int       `json:"f,omitempty"`
	Threshold float64   `json:"t,omitempty"`
	Left      *Node     `json:"l,omitempty"`
	Right     *Node     `json:"r,omitempty"`
	Probs     []float64 `json:"p,omitempty"`
}

// Forest is a fitted ensemble. It is immutable and safe for concurrent use.
type Forest struct {
	Trees       []*Node `json:"trees"`
	NumClasses  int     `json:"num_classes"`
	NumFeatures int     `json:"num_features"`
}

// Fit grows cfg.NumTrees trees on X (rows of equal width) and labels y in [0, numClasses).
func Fit(X [][]float64, y []int, numClasses int, cfg Config) (*Forest, error) {
	if len(X) == 0 {
		return nil, ErrEmpty
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("forest: %d rows but %d labels", len(X), len(y))
	}
	numFeatures := len(X[0])
	for i, row := range X {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), numFeatures)
		}
		if y[i] < 0 || y[i] >= numClasses {
			return nil, fmt.Errorf("forest: label %d of row %d out of range", y[i], i)
		}
	}

	cfg = cfg.withDefaults(numFeatures)
	rng := rand.New(rand.NewSource(cfg.Seed))
	b := &builder{X: X, y: y, numClasses: numClasses, numFeatures: numFeatures, cfg: cfg, rng: rng}

	f := &Forest{NumClasses: numClasses, NumFeatures: numFeatures, Trees: make([]*Node, cfg.NumTrees)}
	n := len(X)
	for t := range f.Trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.Trees[t] = b.grow(sample, 0)
	}
	return f, nil
}

// PredictProba averages the leaf distributions of every tree.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != f.NumFeatures {
		return nil, fmt.Errorf("forest: got %d features, want %d", len(x), f.NumFeatures)
	}
	out := make([]float64, f.NumClasses)
	for _, tree := range f.Trees {
		node := tree
		for node.Left != nil {
			if x[node.Feature] <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		for c, p := range node.Probs {
			out[c] += p
		}
	}
	if len(f.Trees) > 0 {
		for c := range out {
			out[c] /= float64(len(f.Trees))
		}
	}
	return out, nil
}

// Predict returns the most probable class and its probability. Ties go to the lower class.
func (f *Forest) Predict(x []float64) (int, float64, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return best, proba[best], nil
}

// Accuracy is the fraction of rows whose prediction matches y.
func (f *Forest) Accuracy(X [][]float64, y []int) (float64, error) {
	if len(X) == 0 {
		return 0, ErrEmpty
	}
	correct := 0
	for i, row := range X {
		pred, _, err := f.Predict(row)
		if err != nil {
			return 0, err
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}

type builder struct {
	X           [][]float64
	y           []int
	numClasses  int
	numFeatures int
	cfg         Config
	rng         *rand.Rand
}

func (b *builder) counts(idx []int) []int {
	c := make([]int, b.numClasses)
	for _, i := range idx {
		c[b.y[i]]++
	}
	return c
}

func (b *builder) leaf(counts []int, n int) *Node {
	probs := make([]float64, b.numClasses)
	for c, k := range counts {
		probs[c] = float64(k) / float64(n)
	}
	return &Node{Probs: probs}
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, k := range counts {
		p := float64(k) / float64(n)
		g -= p * p
	}
	return g
}

func pure(counts []int) bool {
	nonzero := 0
	for _, k := range counts {
		if k > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

func (b *builder) grow(idx []int, depth int) *Node {
	n := len(idx)
	counts := b.counts(idx)
	if pure(counts) || n < b.cfg.MinSamplesSplit || (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) {
		return b.leaf(counts, n)
	}

	parent := gini(counts, n) * float64(n)
	bestScore := parent
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, n)
	evaluated := 0
	for _, f := range b.rng.Perm(b.numFeatures) {
		if evaluated >= b.cfg.MaxFeatures {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(i, j int) bool { return b.X[sorted[i]][f] < b.X[sorted[j]][f] })
		if b.X[sorted[0]][f] == b.X[sorted[n-1]][f] {
			continue // constant here; does not count toward MaxFeatures
		}
		evaluated++

		left := make([]int, b.numClasses)
		right := append([]int(nil), counts...)
		for i := 0; i < n-1; i++ {
			c := b.y[sorted[i]]
			left[c]++
			right[c]--
			lo, hi := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := i+1, n-i-1
			score := gini(left, nl)*float64(nl) + gini(right, nr)*float64(nr)
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}

	if bestFeature < 0 {
		return b.leaf(counts, n)
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if b.X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	return &Node{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      b.grow(leftIdx, depth+1),
		Right:     b.grow(rightIdx, depth+1),
	}
}
