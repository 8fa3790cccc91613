package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/jdelaire/sentinelbot/core"
)

var reportTmpl = template.Must(template.New("report").Parse(`Some error occured on bot:
<pre><code class="language-go">
{{.Signature}}
</code></pre>
Update serialized:
<pre><code class="json">
{{.Update}}
</code></pre>
Last response:
<pre><code class="json">
{{.LastResponse}}
</code></pre>
`))

// Reporter renders diagnostic reports as HTML and sends them to a chat.
// Without a destination chat every report is logged locally instead.
type Reporter struct {
	sender core.Sender
	chatID int64
	logger *slog.Logger
}

// New creates a Reporter. chatID 0 disables remote delivery.
func New(sender core.Sender, chatID int64, logger *slog.Logger) *Reporter {
	return &Reporter{sender: sender, chatID: chatID, logger: logger}
}

// Report renders f and delivers it, falling back to a file attachment when
// the text exceeds the transport's size limit.
func (r *Reporter) Report(ctx context.Context, f core.Failure) error {
	if r.chatID == 0 {
		update, last, err := sections(f)
		if err != nil {
			return err
		}
		r.logger.Error("failure report (no report chat configured)",
			"report_id", f.ID,
			"signature", f.Signature,
			"update", update,
			"last_response", last,
		)
		return nil
	}

	text, err := Render(f)
	if err != nil {
		return err
	}

	m := core.NewMessage(r.chatID, text, "report")
	m.ID = f.ID
	m.ParseMode = core.ParseModeHTML
	if _, err := core.Deliver(ctx, r.sender, m, "report.html"); err != nil {
		return fmt.Errorf("deliver report: %w", err)
	}
	return nil
}

// Announce sends a lifecycle notice such as a restart.
func (r *Reporter) Announce(ctx context.Context, text string) error {
	if r.chatID == 0 {
		r.logger.Info("announce (no report chat configured)", "text", text)
		return nil
	}
	m := core.NewMessage(r.chatID, text, "announce")
	m.ParseMode = core.ParseModeMarkdownV2
	_, err := r.sender.SendMessage(ctx, m)
	return err
}

// Render produces the HTML report body for f.
func Render(f core.Failure) (string, error) {
	update, last, err := sections(f)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = reportTmpl.Execute(&buf, struct {
		Signature    string
		Update       string
		LastResponse string
	}{f.Signature, update, last})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// sections returns the pruned update dump and the compacted last response.
func sections(f core.Failure) (update, last string, err error) {
	if f.Update != nil {
		update, err = DumpUpdate(*f.Update)
		if err != nil {
			return "", "", fmt.Errorf("dump update: %w", err)
		}
	}
	if len(f.LastResponse) > 0 {
		last = compactJSON(f.LastResponse)
	}
	return update, last, nil
}

// DumpUpdate serializes u with empty fields pruned. The raw wire payload is
// preferred when present since it carries fields the bot does not model.
func DumpUpdate(u core.Update) (string, error) {
	var generic any
	if len(u.Raw) > 0 {
		if err := json.Unmarshal(u.Raw, &generic); err != nil {
			return "", err
		}
	} else {
		b, err := json.Marshal(u)
		if err != nil {
			return "", err
		}
		if err := json.Unmarshal(b, &generic); err != nil {
			return "", err
		}
		blankZeroTimes(generic)
	}

	out, err := json.Marshal(Prune(generic))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Prune removes nil values, empty strings, empty lists and empty objects
// from maps, recursively. Zero numbers and false booleans are kept.
func Prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			p := Prune(val)
			if isEmpty(p) {
				continue
			}
			out[k] = p
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Prune(val)
		}
		return out
	default:
		return v
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// blankZeroTimes blanks zero time.Time values rendered by encoding/json so
// Prune drops them like other empty fields.
func blankZeroTimes(v any) {
	zero := time.Time{}.Format(time.RFC3339Nano)
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if s, ok := val.(string); ok && s == zero {
				t[k] = ""
				continue
			}
			blankZeroTimes(val)
		}
	case []any:
		for _, val := range t {
			blankZeroTimes(val)
		}
	}
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
