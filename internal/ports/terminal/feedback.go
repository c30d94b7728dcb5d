package terminal

import (
	"fmt"
	"io"
	"sync"
)

// Feedback prints presentation cues. It implements ports.FeedbackPort.
type Feedback struct {
	mu      *sync.Mutex
	out     io.Writer
	palette Palette
	bell    bool
}

// NewFeedback writes cues to out. With bell set, every tap rings the terminal bell.
// mu serialises writes with other users of out and may be nil.
func NewFeedback(out io.Writer, mu *sync.Mutex, p Palette, bell bool) *Feedback {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Feedback{mu: mu, out: out, palette: p, bell: bell}
}

func (f *Feedback) Tap() {
	if !f.bell {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprint(f.out, "\a")
}

func (f *Feedback) Match() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.palette.Matched.Fprintln(f.out, "Match!")
}

func (f *Feedback) Win(winner string, tie bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tie {
		f.palette.Win.Fprintf(f.out, "It's a tie! %s is listed first.\n", winner)
		return
	}
	f.palette.Win.Fprintf(f.out, "%s wins!\n", winner)
}
