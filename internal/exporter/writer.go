package exporter

import (
	"context"
	"fmt"
	"os"
)

// reportFileMode is readable by the host and its file editor add-ons.
const reportFileMode = 0o644

// writeFile writes content to path on a worker goroutine and waits for it.
// A ctx that has already ended leaves path untouched. Once started the write
// is a single open/write/close and is always waited for, so an error return
// never hides a replaced file.
func writeFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- os.WriteFile(path, content, reportFileMode)
	}()

	if err := <-done; err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
