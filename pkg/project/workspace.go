package project

import (
	"sort"
	"sync"
)

// Workspace holds every configured project. Projects are independent:
// documents, schemas and diagnostics never cross project boundaries.
type Workspace struct {
	mu       sync.RWMutex
	projects map[string]*Project
	// membership decides which project claims a file, checked in sorted
	// project-name order for determinism.
	membership map[string]Scope
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		projects:   make(map[string]*Project),
		membership: make(map[string]Scope),
	}
}

// AddProject registers a project together with the scope deciding which
// files belong to it. A project added twice replaces the earlier entry.
func (w *Workspace) AddProject(p *Project, scope Scope) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.projects[p.Name()] = p
	w.membership[p.Name()] = scope
}

// Project returns the named project, or nil.
func (w *Workspace) Project(name string) *Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.projects[name]
}

// ProjectForFile returns the first project (by name order) whose scope
// matches path, or nil when no project claims it.
func (w *Workspace) ProjectForFile(path string) *Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, name := range w.namesLocked() {
		if w.membership[name].Matches(path) {
			return w.projects[name]
		}
	}
	return nil
}

// Projects returns every project, ordered by name.
func (w *Workspace) Projects() []*Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Project, 0, len(w.projects))
	for _, name := range w.namesLocked() {
		out = append(out, w.projects[name])
	}
	return out
}

func (w *Workspace) namesLocked() []string {
	names := make([]string, 0, len(w.projects))
	for name := range w.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
