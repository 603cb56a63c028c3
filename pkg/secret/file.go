package secret

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
)

// File provides a secret stored in a file.
// The file is read at construction; Reload and Watch pick up later changes.
type File struct {
	path string
	opts options
	snap snapshot
}

// NewFile reads the secret file. A missing or unreadable file fails with
// ErrSecretUnavailable.
func NewFile(path string, opts ...Option) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f := &File{
		path: filepath.Clean(path),
		opts: applyOptions(opts),
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) ProvideSecret() string {
	return f.snap.load()
}

// Path returns the watched file path.
func (f *File) Path() string {
	return f.path
}

// Reload re-reads the file. On failure the previous secret is kept.
func (f *File) Reload() error {
	value, err := readSecretFile(f.path)
	if err != nil {
		return err
	}

	value, err = f.opts.normalize(value)
	if err != nil {
		return errors.Join(ErrSecretUnavailable, err)
	}

	f.snap.store(value)
	return nil
}

// Watch reloads the secret whenever the file's directory changes, until ctx
// is done. Events are debounced so editors and atomic renames cause a single
// reload. The directory is watched rather than the file so replacements via
// rename keep being observed.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return err
	}

	log := f.opts.logger.With(logger.Component("secret.file"), logger.Path(f.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.opts.debounce)
			} else {
				timer.Reset(f.opts.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WarnContext(ctx, "secret watcher error", logger.Error(err))

		case <-fire:
			fire = nil
			if err := f.Reload(); err != nil {
				log.WarnContext(ctx, "secret reload failed, keeping previous value", logger.Error(err))
				continue
			}
			log.InfoContext(ctx, "secret reloaded")
		}
	}
}

func readSecretFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Join(ErrSecretUnavailable, fmt.Errorf("open %s: %w", path, err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSecretSize+1))
	if err != nil {
		return "", errors.Join(ErrSecretUnavailable, err)
	}
	if len(data) > maxSecretSize {
		return "", errors.Join(ErrSecretUnavailable, ErrSecretTooLarge)
	}

	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// utf8BOM is dropped from the start of secret files; editors on Windows add it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}
