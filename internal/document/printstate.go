package document

import "time"

// PrintState models the auto-print trigger of a label document:
// the document waits for the label image, then prints, but never blocks
// past the fallback timeout.
type PrintState int

const (
	StateImageLoading PrintState = iota
	StateImageReady
	StatePrintTriggered
)

// PrintEvent advances the trigger state machine.
type PrintEvent int

const (
	EventImageLoaded PrintEvent = iota
	EventTimeout
)

const (
	// PrintFallbackTimeout bounds the single-label path: if the image
	// has not signaled loaded by then, print anyway.
	PrintFallbackTimeout = 3000 * time.Millisecond

	// PrintPollInterval is how often the document checks image state.
	PrintPollInterval = 100 * time.Millisecond

	// BatchSettleDelay is the fixed wait before the batch document
	// prints. The batch path deliberately does not poll per image.
	BatchSettleDelay = 1000 * time.Millisecond
)

// Next returns the state after handling an event. ImageLoading moves to
// ImageReady on load and jumps straight to PrintTriggered on timeout;
// ImageReady prints on either event; PrintTriggered is terminal.
func (s PrintState) Next(e PrintEvent) PrintState {
	switch s {
	case StateImageLoading:
		if e == EventImageLoaded {
			return StateImageReady
		}
		return StatePrintTriggered
	case StateImageReady:
		return StatePrintTriggered
	default:
		return StatePrintTriggered
	}
}

func (s PrintState) String() string {
	switch s {
	case StateImageLoading:
		return "image_loading"
	case StateImageReady:
		return "image_ready"
	default:
		return "print_triggered"
	}
}
