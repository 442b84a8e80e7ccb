package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed to /diag subscribers.
const (
	AnimUnknown   = "ANIM.UNKNOWN"
	AnimSelected  = "ANIM.SELECTED"
	CtrlBadJSON   = "CTRL.BAD_JSON"
	CtrlRange     = "CTRL.RANGE"
	DriverWrite   = "DRIVER.WRITE"
	ProgramLoaded = "PROGRAM.LOADED"
	ProgramDone   = "PROGRAM.DONE"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}
