package sigchan

import "testing"

func TestEmitCoalesces(t *testing.T) {
	c := New()
	c.Emit()
	c.Emit()
	c.Emit()

	got := 0
	for {
		select {
		case <-c.C():
			got++
			continue
		default:
		}
		break
	}
	if got != 1 {
		t.Fatalf("got %d signals, want 1", got)
	}
}
