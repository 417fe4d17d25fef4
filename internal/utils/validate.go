package utils

import (
	"fmt"
	"unicode/utf8"
)

// Shared input guards for the CLI and the IPC server.
const (
	// MaxTriggerRunes bounds accepted trigger length; anything longer is
	// a snippet-file mistake, not something a user types before a boundary.
	MaxTriggerRunes = 100

	// MaxTextBytes bounds a single evaluate payload. The engine itself is
	// window-bounded, so this only guards transport memory.
	MaxTextBytes = 1 << 20
)

// ValidateTrigger reports whether a trigger string is acceptable for
// indexing. Empty triggers and absurdly long ones are rejected.
func ValidateTrigger(trigger string) error {
	if trigger == "" {
		return fmt.Errorf("trigger is empty")
	}
	if n := utf8.RuneCountInString(trigger); n > MaxTriggerRunes {
		return fmt.Errorf("trigger is %d runes, limit is %d", n, MaxTriggerRunes)
	}
	return nil
}

// ValidateText reports whether an evaluate payload is within transport
// limits.
func ValidateText(text string) error {
	if len(text) > MaxTextBytes {
		return fmt.Errorf("text is %d bytes, limit is %d", len(text), MaxTextBytes)
	}
	return nil
}
