package period

import (
	"sort"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/types"
)

// Bucket is the set of calls falling in one calendar period.
type Bucket struct {
	Key   string
	Label string
	Calls []*model.Call
}

// Group buckets calls by their period key and returns the buckets in
// ascending key order. Calls keep their input order inside a bucket.
func Group(calls []model.Call, g types.Granularity) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for i := range calls {
		c := &calls[i]
		k := Key(c.CallDate, g)
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, Bucket{Key: k, Label: Label(c.CallDate, g)})
		}
		out[pos].Calls = append(out[pos].Calls, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
