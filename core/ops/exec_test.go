package ops_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jdelaire/sentinelbot/core/ops"
)

func TestExecRunsShellBlocks(t *testing.T) {
	op := &ops.ExecOp{Shell: "sh"}
	call := ops.Call{CodeBlocks: []ops.CodeBlock{
		{Language: "sh", Code: "echo hello; echo oops >&2; exit 3"},
		{Language: "python", Code: "print('skipped')"},
	}}

	reply, err := op.Execute(context.Background(), call)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !reply.HTML {
		t.Error("reply is not HTML")
	}
	for _, want := range []string{"return_code: <pre>3</pre>", "hello", "oops"} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("missing %q in %q", want, reply.Text)
		}
	}
	if strings.Contains(reply.Text, "skipped") {
		t.Errorf("non-shell block executed: %q", reply.Text)
	}
}

func TestExecEscapesOutput(t *testing.T) {
	op := &ops.ExecOp{Shell: "sh"}
	call := ops.Call{CodeBlocks: []ops.CodeBlock{{Language: "BASH", Code: "echo '<b>'"}}}

	reply, err := op.Execute(context.Background(), call)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(reply.Text, "&lt;b&gt;") || strings.Contains(reply.Text, "<b>") {
		t.Errorf("output not escaped: %q", reply.Text)
	}
}

func TestExecNothingToExecute(t *testing.T) {
	op := &ops.ExecOp{}
	reply, err := op.Execute(context.Background(), ops.Call{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(reply.Text) != "*nothing to execute*" {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestExecTimeout(t *testing.T) {
	op := &ops.ExecOp{Shell: "sh", Timeout: 100 * time.Millisecond}
	call := ops.Call{CodeBlocks: []ops.CodeBlock{{Language: "sh", Code: "sleep 5"}}}

	reply, err := op.Execute(context.Background(), call)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(reply.Text, "command timed out after 100ms") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestExecMissingShell(t *testing.T) {
	op := &ops.ExecOp{Shell: "/nonexistent/shell"}
	call := ops.Call{CodeBlocks: []ops.CodeBlock{{Language: "sh", Code: "true"}}}

	reply, err := op.Execute(context.Background(), call)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(reply.Text, "language-text") {
		t.Errorf("reply = %q", reply.Text)
	}
}
