package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariant is returned for animation tags outside the known set.
var ErrUnknownVariant = errors.New("unknown animation variant")

// Variant selects one of the buffer-filling strategies.
type Variant uint8

const (
	Rainbow Variant = iota
	RainbowCycle
	RainbowMiddle
	RainbowMiddleCycle
	SolidTrail
	SolidTrailDouble
	SolidTrailMiddle
	SolidTrailMiddleDouble
	RainbowTrail
	RainbowTrailMiddle
	RainbowTrailMiddleCycle
	RainbowTrailMiddleDoubleCycle

	numVariants
)

var variantNames = [numVariants]string{
	Rainbow:                       "rainbow",
	RainbowCycle:                  "rainbow-cycle",
	RainbowMiddle:                 "rainbow-middle",
	RainbowMiddleCycle:            "rainbow-middle-cycle",
	SolidTrail:                    "solid-trail",
	SolidTrailDouble:              "solid-trail-double",
	SolidTrailMiddle:              "solid-trail-middle",
	SolidTrailMiddleDouble:        "solid-trail-middle-double",
	RainbowTrail:                  "rainbow-trail",
	RainbowTrailMiddle:            "rainbow-trail-middle",
	RainbowTrailMiddleCycle:       "rainbow-trail-middle-cycle",
	RainbowTrailMiddleDoubleCycle: "rainbow-trail-middle-double-cycle",
}

func (v Variant) Valid() bool { return v < numVariants }

func (v Variant) String() string {
	if !v.Valid() {
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
	return variantNames[v]
}

// Trail reports whether the variant draws the decaying peak marker.
func (v Variant) Trail() bool { return v.Valid() && strategies[v].markers > 0 }

// Middle reports whether the variant grows from the center of the strip.
func (v Variant) Middle() bool { return v.Valid() && strategies[v].middle }

// Lookup resolves a variant by name. Names are matched case-insensitively and
// underscores are accepted in place of dashes.
func Lookup(name string) (Variant, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for i, n := range variantNames {
		if n == key {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Variants lists every known variant in tag order.
func Variants() []Variant {
	out := make([]Variant, numVariants)
	for i := range out {
		out[i] = Variant(i)
	}
	return out
}

// Names lists every variant name in tag order.
func Names() []string {
	out := make([]string, numVariants)
	copy(out, variantNames[:])
	return out
}
