package main

import (
	"fmt"
	"io"
	"sync"
)

// terminalStatus prints status changes on their own line.
type terminalStatus struct {
	mu sync.Mutex
	w  io.Writer
}

func newTerminalStatus(w io.Writer) *terminalStatus {
	return &terminalStatus{w: w}
}

// SetStatus writes the status text.
func (s *terminalStatus) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, text)
}
