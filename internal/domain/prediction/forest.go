package prediction

import (
	"cmp"
	"context"
	"math/rand"
	"slices"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/dataset"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/stats"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

const (
	minImportanceCalls = 20
	minGain            = 1e-12
)

// BuildFeatureImportance estimates how much each numeric criterion explains
// the final percent. It grows an ensemble of regression trees on bootstrap
// samples of the calls (missing scores count as 0), sums each split's
// reduction in squared error per criterion, normalises per tree and then over
// the ensemble. The result is an approximation whose exact values depend on
// the seed; its ordering is what callers should rely on. Fewer than twenty
// calls give no result.
func BuildFeatureImportance(ds *dataset.Dataset, opts ...Option) []types.FeatureImportance {
	out, _ := FeatureImportance(context.Background(), ds, opts...)
	return out
}

// FeatureImportance is BuildFeatureImportance with cancellation. ctx is
// checked between trees.
func FeatureImportance(ctx context.Context, ds *dataset.Dataset, opts ...Option) ([]types.FeatureImportance, error) {
	cfg := forestConfig{trees: DefaultTrees, seed: DefaultSeed}
	for _, opt := range opts {
		opt(&cfg)
	}
	out := make([]types.FeatureImportance, 0)
	if ds.Len() < minImportanceCalls {
		return out, nil
	}

	values, _ := ds.ScoresByCriteria()
	features := lo.Keys(values)
	if len(features) == 0 {
		return out, nil
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	x, _ := ds.Matrix(features, func(c *model.Call, id int64) (float64, bool) { return c.NumericScore(id) })
	y := ds.FinalPercents()

	imp, err := growForest(ctx, x, y, len(features), cfg)
	if err != nil {
		return nil, err
	}
	for i, id := range features {
		out = append(out, types.FeatureImportance{
			CriteriaID:   id,
			CriteriaName: ds.CriteriaName(id),
			Importance:   stats.Round(imp[i], 4),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out, nil
}

func growForest(ctx context.Context, x [][]float64, y []float64, nFeatures int, cfg forestConfig) ([]float64, error) {
	rng := rand.New(rand.NewSource(cfg.seed))
	total := make([]float64, nFeatures)
	n := len(y)
	t := &tree{
		xs:       make([][]float64, n),
		ys:       make([]float64, n),
		goesLeft: make([]bool, n),
		scratch:  make([]int, 0, n),
		imp:      make([]float64, nFeatures),
		maxDepth: cfg.maxDepth,
	}
	cols := make([][]int, nFeatures)
	for f := range cols {
		cols[f] = make([]int, n)
	}

	for range cfg.trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for p := range n {
			row := rng.Intn(n)
			t.xs[p] = x[row]
			t.ys[p] = y[row]
		}
		// each column lists sample positions ordered by that feature
		for f, col := range cols {
			for p := range col {
				col[p] = p
			}
			slices.SortStableFunc(col, func(a, b int) int { return cmp.Compare(t.xs[a][f], t.xs[b][f]) })
		}
		clear(t.imp)
		t.grow(cols, 0)
		normalise(t.imp)
		floats.Add(total, t.imp)
	}
	normalise(total)
	return total, nil
}

// tree holds one bootstrap sample and the scratch space for growing a
// regression tree on it. Rows are addressed by their position in the sample.
type tree struct {
	xs       [][]float64
	ys       []float64
	goesLeft []bool
	scratch  []int
	imp      []float64
	maxDepth int
}

// grow splits the node on the feature and threshold that most reduce the
// squared error and recurses until nodes are pure, hold a single row or reach
// the depth limit. cols holds the node's rows once per feature, each sorted by
// that feature; children keep the order so no node sorts again. Each chosen
// split credits its gain to the feature in imp.
func (t *tree) grow(cols [][]int, depth int) {
	n := len(cols[0])
	if n < 2 || (t.maxDepth > 0 && depth >= t.maxDepth) {
		return
	}
	sumAll, sqAll := t.sums(cols[0])
	sse := sqAll - sumAll*sumAll/float64(n)
	if sse <= minGain {
		return
	}

	bestGain, bestFeature, bestAt := 0.0, -1, 0
	for f, order := range cols {
		var sumL, sqL float64
		for k := 1; k < n; k++ {
			v := t.ys[order[k-1]]
			sumL += v
			sqL += v * v
			if t.xs[order[k-1]][f] == t.xs[order[k]][f] {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			sumR, sqR := sumAll-sumL, sqAll-sqL
			gain := sse - (sqL - sumL*sumL/nl) - (sqR - sumR*sumR/nr)
			if gain > bestGain+minGain {
				bestGain, bestFeature, bestAt = gain, f, k
			}
		}
	}
	if bestFeature < 0 {
		return
	}
	t.imp[bestFeature] += bestGain

	for k, p := range cols[bestFeature] {
		t.goesLeft[p] = k < bestAt
	}
	left := make([][]int, len(cols))
	right := make([][]int, len(cols))
	for f, col := range cols {
		t.partition(col)
		left[f], right[f] = col[:bestAt], col[bestAt:]
	}
	t.grow(left, depth+1)
	t.grow(right, depth+1)
}

// partition moves left rows to the front of col, keeping relative order on
// both sides.
func (t *tree) partition(col []int) {
	t.scratch = t.scratch[:0]
	l := 0
	for _, p := range col {
		if t.goesLeft[p] {
			col[l] = p
			l++
			continue
		}
		t.scratch = append(t.scratch, p)
	}
	copy(col[l:], t.scratch)
}

func (t *tree) sums(rows []int) (sum, sq float64) {
	for _, p := range rows {
		sum += t.ys[p]
		sq += t.ys[p] * t.ys[p]
	}
	return sum, sq
}

func normalise(v []float64) {
	if s := floats.Sum(v); s > 0 {
		floats.Scale(1/s, v)
	}
}
