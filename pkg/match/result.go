package match

// State classifies the caret context against the trigger dictionary.
type State int

const (
	// StateIdle means the look-back window is empty: nothing typed yet,
	// or the caret sits right after a boundary with no trigger material
	// before it.
	StateIdle State = iota
	// StateNoMatch means a candidate window exists but no trigger fits.
	StateNoMatch
	// StateTyping means the caret context is a strict prefix of at least
	// one trigger.
	StateTyping
	// StateAmbiguous means the context is a trigger and simultaneously a
	// strict prefix of longer triggers; a boundary has not arrived yet.
	StateAmbiguous
	// StateComplete means a trigger matched and is sealed by a boundary;
	// ready for expansion.
	StateComplete
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateNoMatch:   "no_match",
	StateTyping:    "typing",
	StateAmbiguous: "ambiguous",
	StateComplete:  "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Result is the outcome of one evaluation. Only the fields meaningful
// for its State are populated:
//
//   - Typing: PotentialTrigger, span offsets.
//   - Ambiguous: PotentialTrigger, PossibleCompletions, span offsets.
//   - Complete: Trigger, Content, span offsets.
//   - Idle, NoMatch: State only.
//
// SpanStart and SpanEnd are byte offsets into the evaluated text for the
// matched span; replacement components splice content over exactly that
// range.
type Result struct {
	State               State
	PotentialTrigger    string
	PossibleCompletions []string
	Trigger             string
	Content             string
	SpanStart           int
	SpanEnd             int
}
