package testcalls

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// Generator tuning.
const (
	baseScoreMin      = 55.0
	baseScoreRange    = 35.0
	driftRange        = 0.6 // per day, centred on zero
	criteriaBiasRange = 20.0
	scoreNoise        = 8.0
	unassignedRate    = 0.02
	missingBudgetRate = 0.05
	minDurationSec    = 120
	durationRangeSec  = 1080
)

var managerNames = []string{
	"Anna Petrova", "Boris Ivanov", "Chloe Martin", "Daniel Okafor",
	"Elena Sokolova", "Farid Haddad", "Grace Liu", "Hugo Silva",
}

var outcomes = []string{"won", "lost", "pending"}

// Config sizes a synthetic data set.
type Config struct {
	ProjectID int64
	Managers  int
	Calls     int
	Days      int
	Start     time.Time
	Seed      int64
}

// DefaultConfig returns a three-month data set for six managers.
func DefaultConfig() Config {
	return Config{
		ProjectID: 1,
		Managers:  6,
		Calls:     600,
		Days:      90,
		Start:     time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Seed:      7,
	}
}

type profile struct {
	manager model.Manager
	base    float64
	drift   float64
	bias    map[int64]float64
}

// Generate returns cfg.Calls chronologically ordered calls. The same config
// always yields the same calls.
func Generate(cfg Config) []model.Call {
	if cfg.Calls <= 0 {
		return nil
	}
	if cfg.Managers <= 0 {
		cfg.Managers = 1
	}
	if cfg.Days <= 0 {
		cfg.Days = 1
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	profiles := make([]profile, cfg.Managers)
	for i := range profiles {
		name := managerNames[i%len(managerNames)]
		if i >= len(managerNames) {
			name = fmt.Sprintf("%s %d", name, i/len(managerNames)+1)
		}
		p := profile{
			manager: model.Manager{ID: int64(i + 1), Name: name},
			base:    baseScoreMin + rng.Float64()*baseScoreRange,
			drift:   (rng.Float64() - 0.5) * driftRange,
			bias:    make(map[int64]float64),
		}
		for _, cr := range NumericCriteria() {
			p.bias[cr.ID] = (rng.Float64() - 0.5) * criteriaBiasRange
		}
		profiles[i] = p
	}

	calls := make([]model.Call, cfg.Calls)
	for i := range calls {
		p := profiles[rng.Intn(len(profiles))]
		day := rng.Intn(cfg.Days)
		at := cfg.Start.AddDate(0, 0, day).Add(time.Duration(9*60+rng.Intn(9*60)) * time.Minute)
		calls[i] = generateCall(rng, cfg, p, day, at)
		if rng.Float64() < unassignedRate {
			calls[i].Manager = nil
		}
	}

	sort.SliceStable(calls, func(i, j int) bool { return calls[i].CallDate.Before(calls[j].CallDate) })
	for i := range calls {
		calls[i].ID = int64(i + 1)
		calls[i].ExternalID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("call-%d-%d", cfg.Seed, i))).String()
	}
	return calls
}

func generateCall(rng *rand.Rand, cfg Config, p profile, day int, at time.Time) model.Call {
	m := p.manager
	c := model.Call{
		ProjectID:       cfg.ProjectID,
		Manager:         &m,
		CallDate:        at,
		DurationSeconds: minDurationSec + rng.Intn(durationRangeSec),
	}

	groupScores := make(map[int64][]float64)
	var final []float64
	for _, cr := range NumericCriteria() {
		if cr.ID == Budget.ID && rng.Float64() < missingBudgetRate {
			c.Scores = append(c.Scores, model.CallScore{CriteriaID: cr.ID, Criteria: cr, Score: model.MissingScore()})
			continue
		}
		v := p.base + p.bias[cr.ID] + p.drift*float64(day) + rng.NormFloat64()*scoreNoise
		v = math.Round(math.Max(0, math.Min(100, v)))
		c.Scores = append(c.Scores, model.CallScore{CriteriaID: cr.ID, Criteria: cr, Score: model.NumericScore(v), Reason: reasonFor(v)})
		groupScores[cr.Group.ID] = append(groupScores[cr.Group.ID], v)
		if cr.InFinalScore {
			final = append(final, v)
		}
	}
	outcome := outcomes[rng.Intn(len(outcomes))]
	c.Scores = append(c.Scores,
		model.CallScore{CriteriaID: Outcome.ID, Criteria: Outcome, Score: model.TagScore(outcome)},
		model.CallScore{CriteriaID: Advice.ID, Criteria: Advice, Score: model.TagScore("Slow down when presenting the price")},
	)

	for _, g := range Groups() {
		vs := groupScores[g.ID]
		if len(vs) == 0 {
			c.GroupAverages = append(c.GroupAverages, model.CallGroupAverage{GroupID: g.ID, Group: g, Average: model.MissingScore()})
			continue
		}
		c.GroupAverages = append(c.GroupAverages, model.CallGroupAverage{GroupID: g.ID, Group: g, Average: model.NumericScore(round2(mean(vs)))})
	}
	c.FinalPercent = round2(mean(final))
	c.Summary = fmt.Sprintf("%s call with a %s outcome. The client asked about delivery terms and pricing.", m.Name, outcome)
	return c
}

func reasonFor(v float64) string {
	switch {
	case v >= 80:
		return "Done confidently"
	case v >= 60:
		return "Partially done"
	default:
		return "Missed"
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
