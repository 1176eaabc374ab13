// Package hook speaks the PreToolUse hook protocol: a JSON request on stdin,
// an exit status, and an optional message on stderr.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/boshu2/safety-net/internal/safety"
)

// Exit statuses understood by the hook host.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// ToolBash is the only tool whose input is evaluated.
const ToolBash = "Bash"

// MaxRequestBytes bounds how much of stdin is read.
const MaxRequestBytes = 4 << 20

// Request is the hook payload.
type Request struct {
	SessionID     string          `json:"session_id,omitempty"`
	HookEventName string          `json:"hook_event_name,omitempty"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input,omitempty"`
	WorkDir       string          `json:"cwd,omitempty"`
}

// bashInput is the tool_input shape for the Bash tool.
type bashInput struct {
	Command string `json:"command"`
}

// ReadRequest decodes one request from r.
func ReadRequest(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxRequestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read hook input: %w", err)
	}
	if len(data) > MaxRequestBytes {
		return nil, ErrInputTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &req, nil
}

// Command returns the shell command carried by a Bash request. It reports
// false for other tools, a non-object tool_input, or an empty command.
func (r *Request) Command() (string, bool) {
	if r == nil || r.ToolName != ToolBash || len(r.ToolInput) == 0 {
		return "", false
	}
	var in bashInput
	if err := json.Unmarshal(r.ToolInput, &in); err != nil {
		return "", false
	}
	if in.Command == "" {
		return "", false
	}
	return in.Command, true
}

// Result is what the hook reports back to its host.
type Result struct {
	ExitCode int
	Message  string
}

// ResultFor maps a verdict to the hook protocol. Warnings keep exit status 0
// and still carry their message.
func ResultFor(v safety.Verdict) Result {
	switch v.Outcome {
	case safety.Block:
		return Result{ExitCode: ExitBlock, Message: v.Message}
	case safety.Warn:
		return Result{ExitCode: ExitAllow, Message: v.Message}
	default:
		return Result{ExitCode: ExitAllow}
	}
}

// Write prints the message, if any, followed by a newline.
func (res Result) Write(w io.Writer) {
	if res.Message == "" {
		return
	}
	_, _ = fmt.Fprintln(w, res.Message)
}

// Handler runs requests through a safety engine.
type Handler struct {
	Engine *safety.Engine
	Logger *slog.Logger
}

// Handle reads one request from in and returns the result. Input that cannot
// be parsed is allowed with a warning so a broken host does not wedge every
// command; evaluation faults inside the engine block.
func (h *Handler) Handle(ctx context.Context, in io.Reader) Result {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	req, err := ReadRequest(in)
	if err != nil {
		logger.Warn("hook input rejected", "error", err)
		return Result{ExitCode: ExitAllow, Message: "WARNING: safety-net could not parse hook input; command not checked"}
	}

	cmd, ok := req.Command()
	if !ok {
		logger.Debug("hook request skipped", "tool", req.ToolName)
		return Result{ExitCode: ExitAllow}
	}

	v, res := h.Engine.Check(ctx, safety.RawCommand{Command: cmd, WorkDir: req.WorkDir})
	logger.Debug("hook verdict", "outcome", v.Outcome, "rule", v.RuleID, "policy", res.Source)
	return ResultFor(v)
}
