package persona

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Service serves the assistant persona text from a file and hot-reloads it on
// change, falling back to a built-in default when the file is absent or empty.
type Service struct {
	path     string
	fallback string
	logger   *slog.Logger

	mu   sync.RWMutex
	text string
}

func New(path, fallback string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		path:     strings.TrimSpace(path),
		fallback: fallback,
		logger:   logger,
	}
	svc.reload()
	return svc
}

func (s *Service) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.text == "" {
		return s.fallback
	}
	return s.text
}

func (s *Service) reload() {
	if s.path == "" {
		return
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("persona file unreadable, using fallback", "path", s.path, "error", err)
		s.mu.Lock()
		s.text = ""
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.text = strings.TrimSpace(string(raw))
	s.mu.Unlock()
	s.logger.Info("persona loaded", "path", s.path)
}

// Start watches the persona file's directory until the context is done. With
// no file configured it returns immediately.
func (s *Service) Start(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create persona watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save and
	// a watch on the old inode goes stale.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch persona dir: %w", err)
	}
	s.logger.Info("persona watcher started", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("persona watcher stopped")
			return nil
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.reload()
			}
		case err := <-watcher.Errors:
			if err != nil {
				s.logger.Error("persona watcher error", "error", err)
			}
		}
	}
}
