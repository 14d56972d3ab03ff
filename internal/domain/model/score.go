package model

import (
	"math"
	"strconv"
	"strings"
)

// ScoreKind discriminates the Score variant.
type ScoreKind uint8

const (
	ScoreMissing ScoreKind = iota
	ScoreNumeric
	ScoreTag
)

// Score is a tagged variant: numeric value, textual tag, or missing.
// Statistics only ever read the numeric case.
type Score struct {
	Kind  ScoreKind
	Value float64
	Tag   string
}

// NumericScore builds a numeric Score. NaN and infinities become Missing.
func NumericScore(v float64) Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Score{}
	}
	return Score{Kind: ScoreNumeric, Value: v}
}

// TagScore builds a tag Score. Blank tags become Missing.
func TagScore(tag string) Score {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Score{}
	}
	return Score{Kind: ScoreTag, Tag: tag}
}

// MissingScore is the absent score.
func MissingScore() Score { return Score{} }

// Numeric returns the value when the score is numeric.
func (s Score) Numeric() (float64, bool) {
	return s.Value, s.Kind == ScoreNumeric
}

// IsMissing reports whether no score was recorded.
func (s Score) IsMissing() bool { return s.Kind == ScoreMissing }

// String renders the score the way it is stored.
func (s Score) String() string {
	switch s.Kind {
	case ScoreNumeric:
		return strconv.FormatFloat(s.Value, 'f', -1, 64)
	case ScoreTag:
		return s.Tag
	default:
		return ""
	}
}

// ParseScore converts stored score text into a Score according to the
// criterion type. Numeric criteria accept "85", "85.5", "85,5" and "85%";
// anything else on a numeric criterion is a tag.
func ParseScore(raw string, t ScoreType) Score {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MissingScore()
	}
	if t == ScoreTypeNumeric || t == "" {
		s := strings.TrimSuffix(strings.ReplaceAll(raw, ",", "."), "%")
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return NumericScore(v)
		}
	}
	return TagScore(raw)
}
