package log

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/tj/go-spin"
)

// Spinner shows progress for a long-running step. On non-terminal stderr it
// degrades to a single info line so logs stay readable in CI.
type Spinner struct {
	msg    string
	stopCh chan struct{}
	doneCh chan struct{}
	tty    bool
}

// StartSpinner begins animating msg on stderr.
func StartSpinner(msg string) *Spinner {
	s := &Spinner{
		msg:    msg,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		tty:    stderrIsTerminal(),
	}

	if !s.tty {
		Info(msg)
		close(s.doneCh)
		return s
	}

	frame := spin.New()
	c := color.New(color.FgHiCyan)
	go func() {
		defer close(s.doneCh)
		for {
			select {
			case <-s.stopCh:
				return
			case <-time.After(100 * time.Millisecond):
				c.Fprintf(os.Stderr, "\r  • %s %s", s.msg, frame.Next())
			}
		}
	}()
	return s
}

// Stop ends the animation, marking the step done.
func (s *Spinner) Stop() {
	if !s.tty {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	color.New(color.FgHiWhite).Fprintf(os.Stderr, "\r  • %s", s.msg)
	color.New(color.FgHiGreen).Fprint(os.Stderr, " ✓")
	fmt.Fprintln(os.Stderr)
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
