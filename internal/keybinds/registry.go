package keybinds

import (
	"sort"
	"strings"
)

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry maps keys to actions per context. It is not safe for concurrent
// use; the TUI owns it on its event loop.
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// pending holds the first key of a multi-key sequence per context
	pending map[Context]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register binds key to action in context, replacing any previous binding
// of that key
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple binds several keys to the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for key, bound := range r.bindings[context] {
		if bound == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match looks key up in context, then in the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if action, ok := r.bindings[context][key]; ok {
		return action, true
	}
	if action, ok := r.bindings[ContextGlobal][key]; ok {
		return action, true
	}
	return "", false
}

// MatchMultiKey resolves sequences such as "gg". It returns the action,
// whether the match is complete, and whether key started a sequence that
// needs another key.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	if prev, ok := r.pending[context]; ok {
		delete(r.pending, context)
		action, ok := r.Match(context, prev+key)
		return action, ok, false
	}

	if r.startsSequence(context, key) {
		r.pending[context] = key
		return "", false, true
	}

	action, ok := r.Match(context, key)
	return action, ok, false
}

// startsSequence reports whether some longer plain-letter binding begins
// with key
func (r *Registry) startsSequence(context Context, key string) bool {
	if len(key) != 1 {
		return false
	}
	for _, bindings := range []map[string]Action{r.bindings[context], r.bindings[ContextGlobal]} {
		for bound := range bindings {
			if len(bound) > 1 && !strings.Contains(bound, "+") && strings.HasPrefix(bound, key) && isSequence(bound) {
				return true
			}
		}
	}
	return false
}

// isSequence reports whether key is a run of single characters like "gg"
// rather than a named key like "end"
func isSequence(key string) bool {
	for i := 1; i < len(key); i++ {
		if key[i] != key[0] {
			return false
		}
	}
	return true
}

// ClearMultiKeyState drops any half-typed sequence in context
func (r *Registry) ClearMultiKeyState(context Context) {
	delete(r.pending, context)
}

// GetBinding returns the keys bound to action, sorted. Global bindings are
// used when the context has none.
func (r *Registry) GetBinding(context Context, action Action) []string {
	keys := keysFor(r.bindings[context], action)
	if len(keys) == 0 {
		keys = keysFor(r.bindings[ContextGlobal], action)
	}
	sort.Strings(keys)
	return keys
}

func keysFor(bindings map[string]Action, action Action) []string {
	var keys []string
	for key, bound := range bindings {
		if bound == action {
			keys = append(keys, key)
		}
	}
	return keys
}

// GetBindingString returns the keys for action joined for display
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, "/")
}

// ListBindings returns the bindings of context followed by global ones,
// each group sorted by key
func (r *Registry) ListBindings(context Context) []Binding {
	var out []Binding
	groups := []Context{context}
	if context != ContextGlobal {
		groups = append(groups, ContextGlobal)
	}
	for _, c := range groups {
		keys := make([]string, 0, len(r.bindings[c]))
		for key := range r.bindings[c] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, Binding{Key: key, Action: r.bindings[c][key], Context: c})
		}
	}
	return out
}

// HasBinding checks if a key is bound in context or globally
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	clone.Merge(r)
	return clone
}

// Merge copies every binding of other into r, other taking precedence
func (r *Registry) Merge(other *Registry) {
	for context, bindings := range other.bindings {
		for key, action := range bindings {
			r.Register(context, key, action)
		}
	}
}
