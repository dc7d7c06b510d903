package common

import "strings"

// Pauses is an in-memory pause registry satisfying PauseView. Mutations are
// admin-gated by the owning engine; the registry itself only tracks toggles.
type Pauses struct {
	paused map[string]bool
}

// NewPauses constructs an empty registry with every module running.
func NewPauses() *Pauses {
	return &Pauses{paused: make(map[string]bool)}
}

func normalizeModule(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}

// Pause marks the module as suspended.
func (p *Pauses) Pause(module string) {
	if p == nil {
		return
	}
	if name := normalizeModule(module); name != "" {
		p.paused[name] = true
	}
}

// Unpause resumes the module.
func (p *Pauses) Unpause(module string) {
	if p == nil {
		return
	}
	delete(p.paused, normalizeModule(module))
}

// IsPaused implements PauseView.
func (p *Pauses) IsPaused(module string) bool {
	if p == nil {
		return false
	}
	return p.paused[normalizeModule(module)]
}
