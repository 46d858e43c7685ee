package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/mailsense/internal/domain/mail"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"mailsense-cli", "--env", "test"}, args...))
	return out.String(), err
}

func TestAnalyze_Summary(t *testing.T) {
	out, err := run(t, "analyze", "emails", "from", "John")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Original: emails from John", "Intent: ", "Suggested results: "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyze_JSON(t *testing.T) {
	out, err := run(t, "analyze", "--json", "urgent emails from John")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if decoded["original_query"] != "urgent emails from John" {
		t.Errorf("unexpected original_query %v", decoded["original_query"])
	}
	if _, ok := decoded["suggested_top_k"]; !ok {
		t.Error("expected suggested_top_k")
	}
}

func TestAnalyze_Errors(t *testing.T) {
	if _, err := run(t, "analyze"); err == nil || !strings.Contains(err.Error(), "query is required") {
		t.Errorf("expected missing query error, got %v", err)
	}
	if _, err := run(t, "analyze", "--timezone", "Nowhere/Land", "hi"); err == nil {
		t.Error("expected timezone error")
	}
}

func TestAsk_Validation(t *testing.T) {
	if _, err := run(t, "ask"); err == nil || !strings.Contains(err.Error(), "query is required") {
		t.Errorf("expected missing query error, got %v", err)
	}
	if _, err := run(t, "ask", "--top-k", "-1", "hi"); err == nil || !strings.Contains(err.Error(), "top-k") {
		t.Errorf("expected top-k error, got %v", err)
	}
}

func TestIngest_RequiresOneFile(t *testing.T) {
	if _, err := run(t, "ingest"); err == nil {
		t.Error("expected error without a file")
	}
	if _, err := run(t, "ingest", "a.json", "b.json"); err == nil {
		t.Error("expected error with two files")
	}
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	if _, err := run(t, "--log-level", "loud", "analyze", "hi"); err == nil {
		t.Error("expected invalid log level error")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadMessages(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"array", `[{"id":"1","from":"a","subject":"s"},{"id":"2","from":"b","body":"x"}]`, 2, false},
		{"wrapped", `{"messages":[{"id":"1","from":"a","subject":"s"}]}`, 1, false},
		{"empty array", `[]`, 0, true},
		{"malformed", `{"messages":`, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msgs, err := readMessages(writeFile(t, tc.content))
			if (err != nil) != tc.wantErr {
				t.Fatalf("readMessages() error = %v, wantErr %v", err, tc.wantErr)
			}
			if len(msgs) != tc.want {
				t.Errorf("got %d messages, want %d", len(msgs), tc.want)
			}
		})
	}

	if _, err := readMessages(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestChunk(t *testing.T) {
	msgs := make([]mail.Message, 5)
	got := chunk(msgs, 2)
	if len(got) != 3 || len(got[0]) != 2 || len(got[2]) != 1 {
		t.Errorf("unexpected chunks: %d", len(got))
	}
	if got := chunk(msgs, 0); len(got) != 1 || len(got[0]) != 5 {
		t.Error("non-positive size should yield one chunk")
	}
}

func TestPrintResponse_SendersInStableOrder(t *testing.T) {
	resp := &mail.Response{
		Citations: []mail.Citation{{From: "Ann", Subject: "Budget"}},
		SenderBreakdown: map[string]int{
			"Zoe": 1,
			"Ann": 3,
			"Bob": 1,
			"Cal": 2,
		},
	}

	var out bytes.Buffer
	(&runner{out: &out}).printResponse(resp)

	want := "senders:\n   Ann: 3\n   Cal: 2\n   Bob: 1\n   Zoe: 1\n"
	if !strings.HasSuffix(out.String(), want) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
