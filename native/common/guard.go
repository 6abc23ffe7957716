package common

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var ErrModulePaused = errors.New("module paused")

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// PauseSet is a mutable PauseView keyed by lower-cased module name.
type PauseSet struct {
	mu      sync.RWMutex
	modules map[string]struct{}
}

// NewPauseSet returns a set with the named modules paused.
func NewPauseSet(modules ...string) *PauseSet {
	s := &PauseSet{modules: make(map[string]struct{}, len(modules))}
	for _, m := range modules {
		s.Pause(m)
	}
	return s
}

func normalize(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}

// IsPaused implements PauseView.
func (s *PauseSet) IsPaused(module string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.modules[normalize(module)]
	return ok
}

// Pause marks module as paused.
func (s *PauseSet) Pause(module string) {
	if s == nil {
		return
	}
	name := normalize(module)
	if name == "" {
		return
	}
	s.mu.Lock()
	s.modules[name] = struct{}{}
	s.mu.Unlock()
}

// Resume clears the pause on module.
func (s *PauseSet) Resume(module string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.modules, normalize(module))
	s.mu.Unlock()
}

// Modules lists the paused modules in sorted order.
func (s *PauseSet) Modules() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.modules))
	for m := range s.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
