// Copyright (c) 2025 Csvflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"atomicgo.dev/cursor"

	"csvflow/cli/internal/terminal"
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

const spinnerInterval = 100 * time.Millisecond

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal, with the cursor hidden while it runs.
//
// The line is cut to the terminal width so it never wraps. When w is not a
// terminal nothing is drawn. Calling the returned function clears the line,
// restores the cursor and waits for the goroutine to exit; it is safe to
// call more than once.
func startInlineSpinner(w io.Writer, text string) func() {
	if !terminal.IsTerminal(w) {
		return func() {}
	}

	cursor.Hide()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		width := terminal.Width() - 1
		i := 0
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			line := terminal.Truncate(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text), width)
			select {
			case <-stop:
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}
