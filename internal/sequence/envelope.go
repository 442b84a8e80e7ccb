package sequence

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep (cubic-ish) for ease="cubic"
func smootherstep(x float64) float64 {
	// 6x^5 - 15x^4 + 10x^3
	return x * x * x * (x*(x*6-15) + 10)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default:
		return x
	}
}

// Keyed builds an envelope from keyframes in any order.
func Keyed(keys ...Keyframe) Envelope {
	e := Envelope{Keys: append([]Keyframe(nil), keys...)}
	e.sort()
	return e
}

func (e *Envelope) sort() {
	sort.SliceStable(e.Keys, func(i, j int) bool { return e.Keys[i].T < e.Keys[j].T })
}

// Empty reports whether the envelope has no keys.
func (e Envelope) Empty() bool { return len(e.Keys) == 0 }

// Eval returns the value of the envelope at time t (seconds).
// If there are no keys, returns 0; if one key, returns its value.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	for i := 0; i < n-1; i++ {
		a, b := e.Keys[i], e.Keys[i+1]
		if t >= a.T && t <= b.T {
			den := b.T - a.T
			if den <= 0 {
				return b.V
			}
			u := easeApply(a.Ease, clamp01((t-a.T)/den))
			return a.V + (b.V-a.V)*u
		}
	}
	return e.Keys[n-1].V
}

// UnmarshalYAML accepts either a keyframe list or a bare number (a
// constant envelope).
func (e *Envelope) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		e.Keys = []Keyframe{{V: v}}
		return nil
	}
	if err := node.Decode(&e.Keys); err != nil {
		return err
	}
	e.sort()
	return nil
}

func (e Envelope) MarshalYAML() (interface{}, error) {
	return e.Keys, nil
}

// IsZero lets omitempty drop envelopes without keys.
func (e Envelope) IsZero() bool { return e.Empty() }
