package core

// ModuleID is the dotted identifier of a module, e.g. "trigger.http".
type ModuleID string

// Module is implemented by every pluggable component of the process.
type Module interface {
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	ID ModuleID

	// New returns a fresh, unconfigured instance.
	New func() Module
}
