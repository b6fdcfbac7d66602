// Package testutils provides helpers shared by pipeshell tests: a file system that
// counts handle releases, file fixtures and stream capture.
package testutils

import (
	"os"
	"sync"

	"github.com/spf13/afero"
)

// TrackingFs wraps an afero.Fs and records every file it opens, so tests can check
// that each handle is closed exactly once.
type TrackingFs struct {
	afero.Fs

	mu    sync.Mutex
	files []*TrackedFile
	// FailWritesAfter makes every opened file fail writes once it has accepted that
	// many bytes. Zero disables the failure.
	FailWritesAfter int
}

// NewTrackingFs wraps base; a nil base means a fresh in-memory file system.
func NewTrackingFs(base afero.Fs) *TrackingFs {
	if base == nil {
		base = afero.NewMemMapFs()
	}
	return &TrackingFs{Fs: base}
}

// Open opens name for reading and tracks the handle.
func (t *TrackingFs) Open(name string) (afero.File, error) {
	f, err := t.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return t.track(f), nil
}

// OpenFile opens name with flag and tracks the handle.
func (t *TrackingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := t.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return t.track(f), nil
}

// Create creates name and tracks the handle.
func (t *TrackingFs) Create(name string) (afero.File, error) {
	f, err := t.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return t.track(f), nil
}

func (t *TrackingFs) track(f afero.File) afero.File {
	t.mu.Lock()
	defer t.mu.Unlock()
	tracked := &TrackedFile{File: f, failAfter: t.FailWritesAfter}
	t.files = append(t.files, tracked)
	return tracked
}

// Files returns every handle opened so far.
func (t *TrackingFs) Files() []*TrackedFile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*TrackedFile(nil), t.files...)
}

// TrackedFile counts Close calls on a wrapped file.
type TrackedFile struct {
	afero.File

	mu        sync.Mutex
	closes    int
	written   int
	failAfter int
}

// Close closes the underlying file and counts the call.
func (f *TrackedFile) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	return f.File.Close()
}

// Write fails with os.ErrInvalid once the configured byte budget is used up.
func (f *TrackedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter > 0 && f.written+len(p) > f.failAfter {
		return 0, os.ErrInvalid
	}
	n, err := f.File.Write(p)
	f.written += n
	return n, err
}

// WriteString routes through Write so the failure budget applies.
func (f *TrackedFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Closes returns how many times Close was called.
func (f *TrackedFile) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}
