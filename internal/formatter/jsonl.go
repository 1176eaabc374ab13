package formatter

import (
	"encoding/json"
	"io"

	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/redact"
	"github.com/boshu2/safety-net/internal/safety"
)

// JSONLFormatter outputs verdicts as JSON Lines.
// Each verdict is a single JSON object on one line.
type JSONLFormatter struct {
	// Pretty enables indented JSON (not recommended for JSONL).
	Pretty bool
}

// NewJSONLFormatter creates a new JSONL formatter.
func NewJSONLFormatter() *JSONLFormatter {
	return &JSONLFormatter{
		Pretty: false,
	}
}

// VerdictRecord is one evaluated command as written to JSONL and JSON output.
type VerdictRecord struct {
	Index       int         `json:"index"`
	Command     string      `json:"command"`
	Outcome     string      `json:"outcome"`
	RuleID      string      `json:"rule_id,omitempty"`
	Message     string      `json:"message,omitempty"`
	Alternative string      `json:"alternative,omitempty"`
	Policy      policy.Tier `json:"policy,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// NewVerdictRecord builds a record. The command text is redacted because
// batch input may carry credentials.
func NewVerdictRecord(index int, command string, v safety.Verdict, source policy.Tier) *VerdictRecord {
	return &VerdictRecord{
		Index:       index,
		Command:     redact.Secrets(command),
		Outcome:     v.Outcome.String(),
		RuleID:      v.RuleID,
		Message:     v.Message,
		Alternative: v.Alternative,
		Policy:      source,
	}
}

// Format writes the record as a JSON line.
func (jf *JSONLFormatter) Format(w io.Writer, rec *VerdictRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false) // commands routinely contain < > &

	if jf.Pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(rec)
}

// Extension returns the file extension for JSONL.
func (jf *JSONLFormatter) Extension() string {
	return ".jsonl"
}
