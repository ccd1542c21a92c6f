package sim

// HookPos identifies a position at which hooks can be invoked.
type HookPos struct {
	Name string
}

// HookPosBeforeEvent triggers before an event is handled.
var HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after an event is handled.
var HookPosAfterEvent = &HookPos{Name: "AfterEvent"}

// HookCtx carries the information about the site where a hook is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// A Hook is a short piece of program invoked by a hookable object.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable is an object that accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase implements Hookable and can be embedded by other types.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// InvokeHook triggers all the registered hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}
