package ops

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
)

// DownloadOp sends a local file back to the chat as a document.
type DownloadOp struct{}

func (d *DownloadOp) Name() string        { return "_admin_download" }
func (d *DownloadOp) Description() string { return "Send local file <path> as a document" }

func (d *DownloadOp) Execute(_ context.Context, call Call) (Reply, error) {
	path := strings.TrimSpace(call.Args)
	if path == "" {
		return Text("/" + d.Name() + " requires argument (filepath)"), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Text("File not found"), nil
		}
		return Reply{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Text("Path is a directory"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Reply{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Reply{
		HTML: true,
		Document: &Document{
			Name:    filepath.Base(path),
			Data:    data,
			Caption: "<pre><code>" + html.EscapeString(listing(path, info)) + "</code></pre>",
		},
	}, nil
}

// listing renders an "ls -ahl" style line for a file.
func listing(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s %s %s %s",
		info.Mode().String(), humanSize(info.Size()), info.ModTime().Format("Jan _2 15:04"), path)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
