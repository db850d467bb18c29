// Package spinner draws a one-line progress indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const interval = 80 * time.Millisecond

var frames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner animates a message until Stop is called.
type Spinner struct {
	w       io.Writer
	message string
	done    chan struct{}
	cleared chan struct{}
	once    sync.Once
}

// Start begins animating message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.cleared)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.done:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2)) //nolint:errcheck
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r%c %s", frames[i%len(frames)], s.message) //nolint:errcheck
		}
	}
}

// Stop clears the line and waits for the animation to end. It is safe to
// call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.cleared
}
