// Package prompts serves flow prompt templates, overlaying files from a
// directory on the built-in set.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Sk16er/Scholar-chat/application/flows"
	"github.com/Sk16er/Scholar-chat/application/ports"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const templateExt = ".tmpl"

// Store holds the active prompt templates
type Store struct {
	dir      string
	defaults map[string]string

	mu        sync.RWMutex
	templates map[string]string

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	logger  *zap.Logger
}

var _ ports.PromptStore = (*Store)(nil)

// NewStore loads the built-in templates and, when dir is set, every
// <name>.tmpl file in it
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		dir:      dir,
		defaults: flows.DefaultPrompts(),
		logger:   logger,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the template with the given name
func (s *Store) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.templates[name]; ok {
		return t, nil
	}
	return "", fmt.Errorf("prompt %q not found", name)
}

// Names lists the loaded template names
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.templates))
	for name := range s.templates {
		out = append(out, name)
	}
	return out
}

// Reload rereads the override directory. A template that fails to parse
// keeps the previous version.
func (s *Store) Reload() error {
	next := make(map[string]string, len(s.defaults))
	for k, v := range s.defaults {
		next[k] = v
	}

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read prompt directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != templateExt {
				continue
			}
			name := strings.TrimSuffix(e.Name(), templateExt)
			data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
			if err != nil {
				s.logger.Warn("Failed to read prompt override", zap.String("name", name), zap.Error(err))
				continue
			}
			if _, err := template.New(name).Parse(string(data)); err != nil {
				s.logger.Error("Invalid prompt override, keeping current", zap.String("name", name), zap.Error(err))
				if cur, err := s.Get(name); err == nil {
					next[name] = cur
				}
				continue
			}
			next[name] = string(data)
		}
	}

	s.mu.Lock()
	s.templates = next
	s.mu.Unlock()
	return nil
}

// Watch reloads templates whenever the override directory changes
func (s *Store) Watch() error {
	if s.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch prompt directory: %w", err)
	}
	s.watcher = w
	s.stopCh = make(chan struct{})
	go s.watchLoop()
	s.logger.Info("Prompt watcher started", zap.String("dir", s.dir))
	return nil
}

// Stop ends watching
func (s *Store) Stop() {
	if s.watcher == nil {
		return
	}
	close(s.stopCh)
	s.watcher.Close()
	s.watcher = nil
}

func (s *Store) watchLoop() {
	var debounce *time.Timer
	for {
		select {
		case <-s.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != templateExt {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := s.Reload(); err != nil {
					s.logger.Error("Failed to reload prompts", zap.Error(err))
					return
				}
				s.logger.Info("Prompts reloaded", zap.String("dir", s.dir))
			})
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("Prompt watcher error", zap.Error(err))
		}
	}
}
