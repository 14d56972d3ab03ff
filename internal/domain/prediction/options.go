package prediction

const (
	// DefaultTrees is the ensemble size used for feature importance.
	DefaultTrees = 100
	// DefaultSeed makes the ensemble reproducible.
	DefaultSeed = 42
)

type forestConfig struct {
	trees    int
	seed     int64
	maxDepth int
}

// Option configures BuildFeatureImportance.
type Option func(*forestConfig)

// WithTrees sets the number of trees in the ensemble.
func WithTrees(n int) Option {
	return func(c *forestConfig) {
		if n > 0 {
			c.trees = n
		}
	}
}

// WithSeed sets the bootstrap seed.
func WithSeed(seed int64) Option {
	return func(c *forestConfig) {
		c.seed = seed
	}
}

// WithMaxDepth caps tree depth. Zero grows trees until their leaves are pure;
// negative values are ignored.
func WithMaxDepth(depth int) Option {
	return func(c *forestConfig) {
		if depth >= 0 {
			c.maxDepth = depth
		}
	}
}
