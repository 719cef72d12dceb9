// Package vote defines the tri-valued vote alphabet the engine reasons
// about and the single coercion path that gets arbitrary delta payloads
// into it.
package vote

import (
	"math"
	"strconv"
	"strings"
)

// Vote is one of the four observable states of a (participant, statement)
// cell. Missing is distinct from an explicit Pass: Missing means no vote
// was ever recorded, Pass means the participant looked at the statement
// and declined to take a side.
type Vote int8

const (
	Missing Vote = iota
	Agree
	Disagree
	Pass
)

// Numeric returns the signed numeric encoding used by the dense matrix and
// by the statistics kernel: Agree=+1, Disagree=-1, Pass=0, Missing=NaN.
func (v Vote) Numeric() float64 {
	switch v {
	case Agree:
		return 1
	case Disagree:
		return -1
	case Pass:
		return 0
	default:
		return math.NaN()
	}
}

func (v Vote) String() string {
	switch v {
	case Agree:
		return "agree"
	case Disagree:
		return "disagree"
	case Pass:
		return "pass"
	default:
		return "missing"
	}
}

// Observed reports whether v counts toward a statement's total observed
// vote count (agree + disagree + pass, per spec: S excludes Missing).
func (v Vote) Observed() bool {
	return v != Missing
}

// Coerce maps an arbitrary delta payload value into the Vote alphabet. The
// second return reports whether the input was recognized; an unrecognized
// or nil input yields (Missing, false) and the caller should count it as
// an InputValidation rejection rather than silently recording a pass.
//
// Recognized shapes: the strings "agree"/"disagree"/"pass" (any case,
// surrounding whitespace trimmed), signed integers and floats coerced by
// sign (>0 agree, <0 disagree, ==0 pass), and bool true/false are rejected
// (ambiguous, not part of the documented alphabet).
func Coerce(raw any) (Vote, bool) {
	switch t := raw.(type) {
	case nil:
		return Missing, false
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "agree", "agreed", "yes", "+1", "1":
			return Agree, true
		case "disagree", "disagreed", "no", "-1":
			return Disagree, true
		case "pass", "skip", "0":
			return Pass, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return coerceNumeric(f), true
		}
		return Missing, false
	case int:
		return coerceNumeric(float64(t)), true
	case int32:
		return coerceNumeric(float64(t)), true
	case int64:
		return coerceNumeric(float64(t)), true
	case float32:
		return coerceNumeric(float64(t)), true
	case float64:
		if math.IsNaN(t) {
			return Missing, false
		}
		return coerceNumeric(t), true
	default:
		return Missing, false
	}
}

func coerceNumeric(f float64) Vote {
	switch {
	case f > 0:
		return Agree
	case f < 0:
		return Disagree
	default:
		return Pass
	}
}
