// Package context holds the interpreter's session state: working directory, its
// predecessor, the home directory, the bounded command history and the last exit code.
// A Session is safe for concurrent use.
package context

import (
	"sync"

	"pipeshell/pkg/shelltypes"
)

// DefaultHistoryLimit is the number of history entries kept when no limit is configured.
const DefaultHistoryLimit = 500

// Session is the mutable state owned by one interpreter.
type Session struct {
	mu           sync.RWMutex
	cwd          string
	previous     string
	home         string
	history      []string
	historyLimit int
	lastExitCode shelltypes.ExitCode
}

// NewSession creates a session starting in cwd. A limit of zero or less means
// DefaultHistoryLimit.
func NewSession(cwd, home string, historyLimit int) *Session {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Session{
		cwd:          cwd,
		home:         home,
		historyLimit: historyLimit,
	}
}

// WorkingDirectory returns the current working directory.
func (s *Session) WorkingDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cwd
}

// PreviousDirectory returns the directory before the last change, or "" if none.
func (s *Session) PreviousDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous
}

// HomeDirectory returns the directory "~" expands to.
func (s *Session) HomeDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.home
}

// Directories returns the working and previous directories as one consistent snapshot.
func (s *Session) Directories() (cwd, previous string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cwd, s.previous
}

// SetDirectories records a directory change.
func (s *Session) SetDirectories(cwd, previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cwd = cwd
	s.previous = previous
}

// AddHistory appends line, dropping the oldest entries beyond the limit.
func (s *Session) AddHistory(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, line)
	if excess := len(s.history) - s.historyLimit; excess > 0 {
		s.history = append([]string(nil), s.history[excess:]...)
	}
}

// History returns the recorded lines, oldest first.
func (s *Session) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history...)
}

// ClearHistory forgets every recorded line.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// LastExitCode returns the classification of the last executed line.
func (s *Session) LastExitCode() shelltypes.ExitCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastExitCode
}

// SetLastExitCode records the classification of the last executed line.
func (s *Session) SetLastExitCode(code shelltypes.ExitCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastExitCode = code
}
