package media

// Phase identifies where an upload attempt currently is.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseRequesting   Phase = "requesting"
	PhaseTransferring Phase = "transferring"
	PhaseProcessing   Phase = "processing"
	PhaseReady        Phase = "ready"
	PhaseFailed       Phase = "failed"
)

// IsTerminal reports whether no further automatic transition can occur.
func (p Phase) IsTerminal() bool {
	return p == PhaseReady || p == PhaseFailed
}

// UploadProgress is an immutable snapshot of an in-flight transfer.
// Percent is only meaningful while transferring or processing.
type UploadProgress struct {
	Phase   Phase  `json:"phase"`
	Percent int    `json:"percent"`
	Error   string `json:"error,omitempty"`
}

// NewProgress returns the initial snapshot for a fresh attempt.
func NewProgress() UploadProgress {
	return UploadProgress{Phase: PhaseIdle}
}

// Advance returns a snapshot moved to the given phase. Percent never
// decreases within an attempt; callers reporting a lower value keep the
// previous one.
func (p UploadProgress) Advance(phase Phase, percent int) UploadProgress {
	if percent < p.Percent {
		percent = p.Percent
	}
	if percent > 100 {
		percent = 100
	}
	return UploadProgress{Phase: phase, Percent: percent}
}

// Fail returns a terminal failed snapshot carrying the error message.
func (p UploadProgress) Fail(message string) UploadProgress {
	return UploadProgress{Phase: PhaseFailed, Percent: p.Percent, Error: message}
}
