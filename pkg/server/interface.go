/*
Package server implements msgpack IPC for trigger matching services.

The server package provides a minimal interface for caret-context
classification using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports evaluate requests,
library management ops, and config updates. Messages are processed
synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send
structured messages via stdin and receive responses through stdout.
Each message contains an ID field and other fields based on the
operation type.

Evaluate requests use mainly this structure:

	{"id": "req_001", "t": "hello ;brb ", "c": 11}

The caret field is optional; when absent the text is evaluated at its
end. The server responds with the classification:

	{"id": "req_001", "s": "complete", "tr": ";brb", "ct": "be right back", "ss": 6, "se": 10, "tm": 42}

Library management enables runtime reload and inspection of loaded
snippet sets:

	{"id": "ctl_001", "action": "reload"}
	{"id": "ctl_002", "action": "get_info"}

Config messages allow adjustment of server parameters without restart:

	{"id": "cfg_001", "action": "get_options"}
	{"id": "cfg_002", "action": "update_config", "max_completions": 8}

Response structures include status information and error details when
an op fails. Changes to prefix_char or watch are persisted but only take
effect on restart; the response carries a restart flag when that occurs.

When snippet watching is enabled, the server pushes unsolicited reload
events after files change on disk. Event ids are generated short ids and
the frame carries an "event" field, so clients can tell pushes apart
from responses they are waiting on.

# Message Types

EvaluateRequest and EvaluateResponse handle the main classification op.
Requests include the text and an optional caret byte offset. Responses
contain the state name, the matched or potential trigger, replacement
content, possible completions, the matched span offsets, and timing.

ControlRequest covers library and config ops through an action string.
Supported actions: "reload", "get_info", "get_options", "update_config".

Malformed frames at the dispatch level produce error responses with the
request id echoed back. A corrupted stream that the decoder cannot
resync from shuts the server down cleanly instead.
*/
package server

// EvaluateRequest - caret classification request
type EvaluateRequest struct {
	ID    string `msgpack:"id"`
	Text  string `msgpack:"t"`
	Caret *int   `msgpack:"c,omitempty"` // absent means end of text
}

// EvaluateResponse - classification response
type EvaluateResponse struct {
	ID          string   `msgpack:"id"`
	State       string   `msgpack:"s"`
	Trigger     string   `msgpack:"tr,omitempty"`
	Content     string   `msgpack:"ct,omitempty"`
	Potential   string   `msgpack:"pt,omitempty"`
	Completions []string `msgpack:"pc,omitempty"`
	SpanStart   int      `msgpack:"ss,omitempty"`
	SpanEnd     int      `msgpack:"se,omitempty"`
	TimeTaken   int64    `msgpack:"tm"` // microseconds
}

// ControlRequest - library and config management request
type ControlRequest struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"` // "reload", "get_info", "get_options", "update_config"

	// update_config fields, all optional
	PrefixChar     *string `msgpack:"prefix_char,omitempty"`
	MaxCompletions *int    `msgpack:"max_completions,omitempty"`
	TimingLog      *bool   `msgpack:"timing_log,omitempty"`
	Watch          *bool   `msgpack:"watch,omitempty"`
}

// ControlResponse - library operation response
type ControlResponse struct {
	ID         string `msgpack:"id"`
	Status     string `msgpack:"status"`
	Error      string `msgpack:"error,omitempty"`
	Triggers   int    `msgpack:"triggers,omitempty"`
	MaxLen     int    `msgpack:"max_len,omitempty"`
	Nodes      int    `msgpack:"nodes,omitempty"`
	Depth      int    `msgpack:"depth,omitempty"`
	Sources    int    `msgpack:"sources,omitempty"`
	Accepted   int    `msgpack:"accepted,omitempty"`
	Dropped    int    `msgpack:"dropped,omitempty"`
	Overridden int    `msgpack:"overridden,omitempty"`
	Watching   bool   `msgpack:"watching,omitempty"`
}

// OptionsResponse - current config options
type OptionsResponse struct {
	ID             string   `msgpack:"id"`
	Status         string   `msgpack:"status"`
	PrefixChar     string   `msgpack:"prefix_char"`
	Paths          []string `msgpack:"paths,omitempty"`
	Watch          bool     `msgpack:"watch"`
	DebounceMs     int      `msgpack:"debounce_ms"`
	MaxTextBytes   int      `msgpack:"max_text_bytes"`
	MaxCompletions int      `msgpack:"max_completions"`
	TimingLog      bool     `msgpack:"timing_log"`
}

// ConfigResponse - config update response
type ConfigResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Error   string `msgpack:"error,omitempty"`
	Restart bool   `msgpack:"restart,omitempty"` // change takes effect on restart
}

// ReloadEvent - unsolicited push after a watcher-triggered reload
type ReloadEvent struct {
	ID       string `msgpack:"id"`
	Event    string `msgpack:"event"` // always "reload"
	Triggers int    `msgpack:"triggers"`
	Accepted int    `msgpack:"accepted"`
	Dropped  int    `msgpack:"dropped"`
}

// EvaluateError holds basic error information for failed requests
type EvaluateError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
