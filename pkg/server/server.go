package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/truevox/snipmatch/internal/utils"
	"github.com/truevox/snipmatch/pkg/config"
	"github.com/truevox/snipmatch/pkg/match"
	"github.com/truevox/snipmatch/pkg/snippet"
)

// request is the superset of every inbound frame, used for dispatch.
// Control frames carry an action; evaluate frames carry text.
type request struct {
	ID    string  `msgpack:"id"`
	Text  *string `msgpack:"t"`
	Caret *int    `msgpack:"c"`

	Action         string  `msgpack:"action"`
	PrefixChar     *string `msgpack:"prefix_char"`
	MaxCompletions *int    `msgpack:"max_completions"`
	TimingLog      *bool   `msgpack:"timing_log"`
	Watch          *bool   `msgpack:"watch"`
}

// Server handles the IPC for trigger classification
type Server struct {
	detector   *match.Detector
	library    *snippet.Library
	config     *config.Config
	configPath string
	watcher    *snippet.Watcher

	dec *msgpack.Decoder

	writeMu sync.Mutex
	out     *bufio.Writer
	enc     *msgpack.Encoder
}

// NewServer creates a classification server using stdin/stdout for IPC.
// When watching is configured the snippet watcher is created here and
// started by Run.
func NewServer(detector *match.Detector, library *snippet.Library, cfg *config.Config, configPath string) (*Server, error) {
	return newServerIO(detector, library, cfg, configPath, os.Stdin, os.Stdout)
}

func newServerIO(detector *match.Detector, library *snippet.Library, cfg *config.Config, configPath string, r io.Reader, w io.Writer) (*Server, error) {
	out := bufio.NewWriter(w)
	s := &Server{
		detector:   detector,
		library:    library,
		config:     cfg,
		configPath: configPath,
		dec:        msgpack.NewDecoder(bufio.NewReader(r)),
		out:        out,
		enc:        msgpack.NewEncoder(out),
	}

	if cfg.Snippets.Watch && len(library.Paths()) > 0 {
		watcher, err := snippet.NewWatcher(library.Paths(), cfg.Debounce(), s.onSnippetsChanged)
		if err != nil {
			return nil, fmt.Errorf("snippet watcher: %w", err)
		}
		s.watcher = watcher
	}
	return s, nil
}

// Run serves requests until stdin closes or ctx is cancelled. The
// watcher lifecycle is tied to the serve loop: both stop together.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if s.watcher != nil {
		s.watcher.Start(ctx)
		g.Go(func() error {
			<-ctx.Done()
			s.watcher.Stop()
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		return s.serve()
	})

	return g.Wait()
}

// serve reads frames from stdin until EOF.
func (s *Server) serve() error {
	log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(map[string]string{"status": "ready"})

	for {
		var req request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// A frame the decoder cannot resync from poisons the
			// whole stream; shut down instead of guessing.
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "malformed frame", 400)
			return fmt.Errorf("decode request: %w", err)
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded frame.
func (s *Server) handleRequest(req request) {
	switch {
	case req.Action != "":
		s.handleControl(req)
	case req.Text != nil:
		s.handleEvaluate(req)
	default:
		s.sendError(req.ID, "request carries neither text nor action", 400)
	}
}

// handleEvaluate classifies the caret context of one request.
func (s *Server) handleEvaluate(req request) {
	text := *req.Text

	maxBytes := s.config.Server.MaxTextBytes
	if maxBytes <= 0 {
		maxBytes = utils.MaxTextBytes
	}
	if len(text) > maxBytes {
		s.sendError(req.ID, fmt.Sprintf("text exceeds maximum size of %d bytes", maxBytes), 413)
		log.Debugf("Text too large in request %s: %d bytes", req.ID, len(text))
		return
	}

	start := time.Now()
	var result match.Result
	if req.Caret != nil {
		result = s.detector.Evaluate(text, *req.Caret)
	} else {
		result = s.detector.EvaluateAtEnd(text)
	}
	elapsed := time.Since(start)

	completions := result.PossibleCompletions
	if limit := s.config.Server.MaxCompletions; limit > 0 && len(completions) > limit {
		completions = completions[:limit]
	}

	if s.config.Server.TimingLog {
		log.Debugf("evaluate %s: %s in %dus", req.ID, result.State, elapsed.Microseconds())
	}

	s.send(EvaluateResponse{
		ID:          req.ID,
		State:       result.State.String(),
		Trigger:     result.Trigger,
		Content:     result.Content,
		Potential:   result.PotentialTrigger,
		Completions: completions,
		SpanStart:   result.SpanStart,
		SpanEnd:     result.SpanEnd,
		TimeTaken:   elapsed.Microseconds(),
	})
}

// handleControl runs library and config actions.
func (s *Server) handleControl(req request) {
	switch req.Action {
	case "reload":
		if _, err := s.library.Reload(); err != nil {
			s.send(ControlResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		s.detector.Reconfigure(s.library.Entries())
		s.send(s.infoResponse(req.ID))

	case "get_info":
		s.send(s.infoResponse(req.ID))

	case "get_options":
		s.send(OptionsResponse{
			ID:             req.ID,
			Status:         "ok",
			PrefixChar:     s.config.Engine.PrefixChar,
			Paths:          s.library.Paths(),
			Watch:          s.config.Snippets.Watch,
			DebounceMs:     s.config.Snippets.DebounceMs,
			MaxTextBytes:   s.config.Server.MaxTextBytes,
			MaxCompletions: s.config.Server.MaxCompletions,
			TimingLog:      s.config.Server.TimingLog,
		})

	case "update_config":
		s.handleUpdateConfig(req)

	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// handleUpdateConfig persists config changes. Prefix and watch changes
// only apply on restart; the response flags that.
func (s *Server) handleUpdateConfig(req request) {
	if s.configPath == "" {
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: "no active config file"})
		return
	}

	if err := s.config.Update(s.configPath, req.PrefixChar, req.MaxCompletions, req.TimingLog, req.Watch); err != nil {
		s.send(ConfigResponse{ID: req.ID, Status: "error", Error: err.Error()})
		return
	}

	restart := req.PrefixChar != nil || req.Watch != nil
	s.send(ConfigResponse{ID: req.ID, Status: "ok", Restart: restart})
}

// infoResponse assembles the shared stats payload for reload/get_info.
func (s *Server) infoResponse(id string) ControlResponse {
	stats := s.detector.Introspect()
	report := s.library.Report()
	return ControlResponse{
		ID:         id,
		Status:     "ok",
		Triggers:   stats.TriggerCount,
		MaxLen:     stats.MaxTriggerLength,
		Nodes:      stats.NodeCount,
		Depth:      stats.TreeDepth,
		Sources:    report.Sources,
		Accepted:   report.Accepted,
		Dropped:    report.Dropped,
		Overridden: report.Overridden,
		Watching:   s.watcher != nil,
	}
}

// onSnippetsChanged reloads the library after the watcher settles and
// pushes an event so clients know the dictionary moved underneath them.
func (s *Server) onSnippetsChanged() {
	report, err := s.library.Reload()
	if err != nil {
		log.Errorf("Reload after snippet change failed: %v", err)
		return
	}
	s.detector.Reconfigure(s.library.Entries())
	stats := s.detector.Introspect()

	s.send(ReloadEvent{
		ID:       shortID(),
		Event:    "reload",
		Triggers: stats.TriggerCount,
		Accepted: report.Accepted,
		Dropped:  report.Dropped,
	})
	log.Debugf("Pushed reload event: %d triggers", stats.TriggerCount)
}

// send encodes one frame to stdout. Safe for concurrent use; watcher
// pushes interleave with responses but frames never tear.
func (s *Server) send(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Flushing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(EvaluateError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

// shortID generates a compact id for pushed events.
func shortID() string {
	return uuid.New().String()[:8]
}
