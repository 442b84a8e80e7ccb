// Package trail tracks the peak marker that follows a progress value: it jumps
// to new highs at once and falls back one position per cadence when progress
// drops below it.
package trail

// State is the persistent peak marker. Peak stays in [0,N] as long as every
// progress value handed to Advance does. Step is a tick counter and wraps at
// 8 bits.
type State struct {
	Peak int
	Step uint8
}

// Advance runs one tick of the decay state machine. progress must already be
// clipped to the strip length. A cadence of 0 is treated as 1.
func Advance(progress int, cadence uint8, st *State) {
	if cadence == 0 {
		cadence = 1
	}
	if progress < 0 {
		progress = 0
	}

	if progress > st.Peak {
		st.Peak = progress
	} else if st.Step%cadence == 0 && progress < st.Peak {
		if st.Peak > 0 {
			st.Peak--
		}
		st.Step = 0
	}
	st.Step++
}
