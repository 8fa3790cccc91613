package ops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os/exec"
	"strings"
	"time"
)

const defaultExecTimeout = 60 * time.Second

var execLanguages = map[string]bool{"sh": true, "bash": true, "shell": true}

var execTmpl = template.Must(template.New("exec").Parse(`
{{- range .}}
{{- if .Err}}
<pre><code class="language-text">
{{.Err}}
</code></pre>
{{- else}}
return_code: <pre>{{.ReturnCode}}</pre>
stdout:
<pre><code class="language-bash">
{{.Stdout}}
</code></pre>
stderr:
<pre><code class="language-bash">
{{.Stderr}}
</code></pre>
{{- end}}
{{else}}
*nothing to execute*
{{- end}}
`))

type execResult struct {
	Err        string
	ReturnCode int
	Stdout     string
	Stderr     string
}

// ExecOp runs every shell code block in the message and reports the exit
// code and output of each.
type ExecOp struct {
	Timeout time.Duration
	Shell   string
}

func (e *ExecOp) Name() string        { return "_admin_exec" }
func (e *ExecOp) Description() string { return "Run sh/bash code blocks" }

func (e *ExecOp) Execute(ctx context.Context, call Call) (Reply, error) {
	var results []execResult
	for _, block := range call.CodeBlocks {
		if !execLanguages[strings.ToLower(block.Language)] {
			continue
		}
		results = append(results, e.run(ctx, block.Code))
	}

	var buf bytes.Buffer
	if err := execTmpl.Execute(&buf, results); err != nil {
		return Reply{}, fmt.Errorf("render exec output: %w", err)
	}
	return Reply{Text: buf.String(), HTML: true}, nil
}

func (e *ExecOp) run(ctx context.Context, code string) execResult {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", code)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return execResult{Err: fmt.Sprintf("command timed out after %s", timeout)}
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return execResult{Err: err.Error()}
	}

	return execResult{
		ReturnCode: cmd.ProcessState.ExitCode(),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
}
