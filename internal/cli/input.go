// Package cli handles cmd line input and classification output for DBG
// and testing trigger dictionaries in real time.
package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/truevox/snipmatch/internal/utils"
	"github.com/truevox/snipmatch/pkg/match"
	"github.com/truevox/snipmatch/pkg/replace"
	"github.com/truevox/snipmatch/pkg/snippet"
)

// InputHandler reads lines from stdin and classifies each one with the
// caret at end of line. Colon commands poke at the library and the
// expansion pipeline without leaving the session.
type InputHandler struct {
	detector     *match.Detector
	library      *snippet.Library
	limit        int
	previewWidth int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with display limits
func NewInputHandler(detector *match.Detector, library *snippet.Library, limit, previewWidth int) *InputHandler {
	return &InputHandler{
		detector:     detector,
		library:      library,
		limit:        limit,
		previewWidth: previewWidth,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin, and
// classifies it. Only the line ending is stripped: a trailing space is
// a boundary and decides whether a trigger is sealed, so it has to
// survive into evaluation. Loop terminates on :quit or closed stdin.
func (h *InputHandler) Start() error {
	log.Print("SnipMatch CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a line and press Enter to classify it (caret sits at end of line):")
	log.Print("commands: :stats  :reload  :expand <text>  :quit")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if h.handleCommand(line) {
				return nil
			}
			continue
		}
		h.handleInput(line)
	}
}

// handleInput classifies a single line and prints the outcome.
func (h *InputHandler) handleInput(text string) {
	h.requestCount++

	if err := utils.ValidateText(text); err != nil {
		log.Errorf("Rejected input: %v", err)
		return
	}

	start := time.Now()
	result := h.detector.EvaluateAtEnd(text)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %q", elapsed, text)

	h.printResult(result)
}

// handleCommand runs one colon command. Returns true when the loop
// should exit.
func (h *InputHandler) handleCommand(line string) bool {
	switch {
	case line == ":quit" || line == ":q":
		return true
	case line == ":stats":
		h.printStats()
	case line == ":reload":
		h.reload()
	case strings.HasPrefix(line, ":expand "):
		h.expand(strings.TrimPrefix(line, ":expand "))
	case line == ":expand":
		log.Warn("Usage: :expand <text>")
	default:
		log.Warnf("Unknown command: %s", strings.Fields(line)[0])
	}
	return false
}

func (h *InputHandler) reload() {
	report, err := h.library.Reload()
	if err != nil {
		log.Errorf("Reload failed: %v", err)
		return
	}
	h.detector.Reconfigure(h.library.Entries())
	log.Printf("Reloaded %d snippets from %d sources (%d dropped, %d overridden)",
		report.Accepted, report.Sources, report.Dropped, report.Overridden)
}

// expand runs the full pipeline on one line: classify at end of text,
// then splice the replacement over the matched span the way an editor
// host would.
func (h *InputHandler) expand(text string) {
	result := h.detector.EvaluateAtEnd(text)
	if result.State != match.StateComplete {
		log.Warnf("Nothing to expand: state is %s", result.State)
		return
	}

	buf := replace.Buffer{Text: text, Caret: len(text)}
	expanded, _, err := replace.Apply(buf, result)
	if err != nil {
		log.Errorf("Expansion failed: %v", err)
		return
	}
	log.Printf("before: %q (caret %d)", buf.Text, buf.Caret)
	log.Printf("after:  %q (caret %d)", expanded.Text, expanded.Caret)
}
