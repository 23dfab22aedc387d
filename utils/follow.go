package utils

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

type follower struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (f *follower) Close() error {
	f.cancel()
	return f.PipeReader.Close()
}

// Follow returns the content of path followed by everything appended to it,
// like 'tail -f'. A truncated or recreated file is read again from the start.
// The stream ends when ctx is done or the reader is closed.
func Follow(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, err
	}
	// watch the directory so that a recreated file is noticed
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		file.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		defer func() { file.Close() }()

		for {
			if _, err := io.Copy(pw, file); err != nil {
				pw.CloseWithError(err)
				return
			}

			select {
			case <-ctx.Done():
				pw.Close()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					pw.Close()
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Create) {
					if reopened, err := os.Open(path); err == nil {
						file.Close()
						file = reopened
					}
					continue
				}
				if event.Has(fsnotify.Write) {
					rewindIfTruncated(file)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					pw.Close()
					return
				}
				pw.CloseWithError(err)
				return
			}
		}
	}()

	return &follower{PipeReader: pr, cancel: cancel}, nil
}

func rewindIfTruncated(file *os.File) {
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	info, err := file.Stat()
	if err != nil {
		return
	}
	if info.Size() < offset {
		file.Seek(0, io.SeekStart)
	}
}
