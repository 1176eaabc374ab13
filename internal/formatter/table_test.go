package formatter

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_BasicOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "OUTCOME", "RULE", "COMMAND")
	tbl.AddRow("block", "force_push", "git push -f")
	tbl.AddRow("allow", "", "git status")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()

	if !strings.Contains(out, "OUTCOME") || !strings.Contains(out, "RULE") || !strings.Contains(out, "COMMAND") {
		t.Errorf("missing headers in output:\n%s", out)
	}
	if !strings.Contains(out, "-------") {
		t.Errorf("missing separator in output:\n%s", out)
	}
	if !strings.Contains(out, "force_push") || !strings.Contains(out, "git status") {
		t.Errorf("missing data rows in output:\n%s", out)
	}

	// header, separator, 2 data rows
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
}

func TestTable_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output for table with no rows, got:\n%s", buf.String())
	}
}

func TestTable_MaxWidth(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "COMMAND", "OUTCOME")
	tbl.SetMaxWidth(0, 8)
	tbl.AddRow("git push --force origin", "block")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "git p...") {
		t.Errorf("expected truncated command, got:\n%s", out)
	}
}

func TestTable_MaxWidthRuneSafe(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "MSG")
	tbl.SetMaxWidth(0, 5)
	tbl.AddRow("ééééééééé")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "éé...") {
		t.Errorf("expected rune-safe truncation, got:\n%s", buf.String())
	}
}

func TestTable_FlattensNewlines(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "MESSAGE")
	tbl.AddRow("BLOCKED: x.\nSafe alternative: y")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}
}

func TestTable_MissingValues(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B", "C")
	tbl.AddRow("only-one")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "only-one") {
		t.Errorf("missing value in output:\n%s", buf.String())
	}
}
