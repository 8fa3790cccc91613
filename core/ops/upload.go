package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var forceFlags = map[string]bool{"-f": true, "--force": true}

// UploadOp saves the file attached to the command message to a local path.
type UploadOp struct {
	Files Downloader
}

func (u *UploadOp) Name() string        { return "_admin_upload" }
func (u *UploadOp) Description() string { return "Save attached file to <path> [-f]" }

func (u *UploadOp) Execute(ctx context.Context, call Call) (Reply, error) {
	path, force := parseUploadArgs(call.Args)
	if path == "" {
		return Text("/" + u.Name() + " requires argument (filepath)"), nil
	}

	if _, err := os.Stat(path); err == nil && !force {
		return Text("File already exists, can not overwrite it (add -f/--force to bypass)"), nil
	}

	if call.Attachment == nil {
		return Text("No file found on message (attach a document, photo or video)"), nil
	}

	data, err := u.Files.DownloadFile(ctx, call.Attachment.FileID)
	if err != nil {
		return Reply{}, fmt.Errorf("download %s: %w", call.Attachment.Kind, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Reply{}, fmt.Errorf("create upload dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Reply{}, fmt.Errorf("write upload: %w", err)
	}

	return Text(fmt.Sprintf("File (%s) saved to %s", call.Attachment.Kind, path)), nil
}

// parseUploadArgs splits off -f/--force flags wherever they appear and
// returns the remaining text as the target path.
func parseUploadArgs(args string) (path string, force bool) {
	var rest []string
	for _, part := range strings.Fields(args) {
		if forceFlags[part] {
			force = true
			continue
		}
		rest = append(rest, part)
	}
	return strings.TrimSpace(strings.Join(rest, " ")), force
}
