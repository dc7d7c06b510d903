package common

import (
	"errors"
	"fmt"
)

// ErrModulePaused rejects mutating operations while a module is suspended.
// Callers match it with errors.Is; Guard wraps it with the module name.
var ErrModulePaused = errors.New("module paused")

// Module identifiers understood by the pause registry.
const (
	ModuleEscrow      = "escrow"
	ModuleMarketplace = "marketplace"
	ModuleReputation  = "reputation"
)

// PauseView is the read side of the pause registry. Engines consult it before
// every mutating operation; a nil view means pausing is not wired and the
// module runs unconditionally.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard returns an ErrModulePaused-wrapping error when the module is
// suspended. The module name is normalized the same way the registry stores
// it, so callers and the pause surface cannot disagree on casing.
func Guard(p PauseView, module string) error {
	module = normalizeModule(module)
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return fmt.Errorf("%s: %w", module, ErrModulePaused)
	}
	return nil
}
