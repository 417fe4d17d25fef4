// Terminal rendering for classification results: state labels, trigger
// previews and the :stats counters.

package cli

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/truevox/snipmatch/internal/utils"
	"github.com/truevox/snipmatch/pkg/match"
)

var stateColors = map[match.State]int{
	match.StateIdle:      243,
	match.StateNoMatch:   167,
	match.StateTyping:    75,
	match.StateAmbiguous: 179,
	match.StateComplete:  114,
}

// renderState colors a state label for terminal output.
func renderState(state match.State) string {
	color, ok := stateColors[state]
	if !ok {
		return state.String()
	}
	return fmt.Sprintf("\033[38;5;%dm%-9s\033[0m", color, state.String())
}

// printResult pretty prints one classification outcome.
func (h *InputHandler) printResult(result match.Result) {
	switch result.State {
	case match.StateComplete:
		clTrigger := fmt.Sprintf("\033[38;5;75m%s\033[0m", result.Trigger)
		preview := utils.TruncateForDisplay(result.Content, h.previewWidth)
		log.Printf("%s %s -> %s", renderState(result.State), clTrigger, preview)
		log.Printf("          span [%d:%d]", result.SpanStart, result.SpanEnd)
	case match.StateAmbiguous:
		log.Printf("%s %q could seal now or keep going:", renderState(result.State), result.PotentialTrigger)
		h.printCompletions(result.PossibleCompletions)
	case match.StateTyping:
		log.Printf("%s %q", renderState(result.State), result.PotentialTrigger)
	default:
		log.Print(renderState(result.State))
	}
}

// printCompletions lists candidate triggers, capped at the display limit.
func (h *InputHandler) printCompletions(completions []string) {
	shown := completions
	if h.limit > 0 && len(shown) > h.limit {
		shown = shown[:h.limit]
	}
	for i, trigger := range shown {
		clTrigger := fmt.Sprintf("\033[38;5;75m%s\033[0m", trigger)
		log.Printf("%2d. %s", i+1, clTrigger)
	}
	if len(completions) > len(shown) {
		log.Printf("    ... and %d more", len(completions)-len(shown))
	}
}

// printStats dumps index and library counters.
func (h *InputHandler) printStats() {
	stats := h.detector.Introspect()
	report := h.library.Report()

	log.Printf("triggers:   %8s", utils.FormatWithCommas(stats.TriggerCount))
	log.Printf("max length: %8s", utils.FormatWithCommas(stats.MaxTriggerLength))
	log.Printf("trie nodes: %8s", utils.FormatWithCommas(stats.NodeCount))
	log.Printf("trie depth: %8s", utils.FormatWithCommas(stats.TreeDepth))
	log.Printf("sources:    %8s", utils.FormatWithCommas(report.Sources))
	log.Printf("accepted:   %8s", utils.FormatWithCommas(report.Accepted))
	log.Printf("dropped:    %8s", utils.FormatWithCommas(report.Dropped))
	log.Printf("overridden: %8s", utils.FormatWithCommas(report.Overridden))
	log.Printf("requests this session: %d", h.requestCount)
}
