package media

import "testing"

func TestPhaseIsTerminal(t *testing.T) {
	tests := []struct {
		phase    Phase
		terminal bool
	}{
		{PhaseIdle, false},
		{PhaseRequesting, false},
		{PhaseTransferring, false},
		{PhaseProcessing, false},
		{PhaseReady, true},
		{PhaseFailed, true},
	}
	for _, tt := range tests {
		if got := tt.phase.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.phase, got, tt.terminal)
		}
	}
}

func TestProgressAdvanceNeverDecreases(t *testing.T) {
	p := NewProgress()
	p = p.Advance(PhaseTransferring, 40)
	p = p.Advance(PhaseTransferring, 25)
	if p.Percent != 40 {
		t.Fatalf("expected percent to stay at 40, got %d", p.Percent)
	}
	p = p.Advance(PhaseTransferring, 80)
	if p.Percent != 80 {
		t.Fatalf("expected percent 80, got %d", p.Percent)
	}
}

func TestProgressAdvanceClampsAtHundred(t *testing.T) {
	p := NewProgress().Advance(PhaseProcessing, 150)
	if p.Percent != 100 {
		t.Fatalf("expected percent clamped to 100, got %d", p.Percent)
	}
}

func TestProgressFailKeepsPercent(t *testing.T) {
	p := NewProgress().Advance(PhaseTransferring, 63)
	failed := p.Fail("transfer aborted")
	if failed.Phase != PhaseFailed {
		t.Fatalf("expected failed phase, got %s", failed.Phase)
	}
	if failed.Percent != 63 {
		t.Fatalf("expected percent preserved at 63, got %d", failed.Percent)
	}
	if failed.Error != "transfer aborted" {
		t.Fatalf("unexpected error message %q", failed.Error)
	}
}

func TestNewProgressStartsIdle(t *testing.T) {
	p := NewProgress()
	if p.Phase != PhaseIdle || p.Percent != 0 || p.Error != "" {
		t.Fatalf("unexpected initial progress %+v", p)
	}
}
