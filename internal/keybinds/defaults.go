package keybinds

// NewDefaultRegistry creates a registry with the default inspector bindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)

	registerNormalBindings(r)
	registerFindBindings(r)

	return r
}

func registerNormalBindings(r *Registry) {
	r.Register(ContextNormal, "q", ActionQuit)
	r.Register(ContextNormal, "?", ActionToggleHelp)

	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionScrollDown)
	r.RegisterMultiple(ContextNormal, []string{"pgup", "ctrl+u"}, ActionPageUp)
	r.RegisterMultiple(ContextNormal, []string{"pgdown", "ctrl+d"}, ActionPageDown)
	r.RegisterMultiple(ContextNormal, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextNormal, []string{"G", "end"}, ActionGoToBottom)
	r.RegisterMultiple(ContextNormal, []string{"tab", "shift+tab"}, ActionSwitchPane)

	r.RegisterMultiple(ContextNormal, []string{"/", "ctrl+f"}, ActionOpenFind)
	r.Register(ContextNormal, "n", ActionSearchNext)
	r.Register(ContextNormal, "N", ActionSearchPrevious)

	r.Register(ContextNormal, "r", ActionAutoRedact)
	r.Register(ContextNormal, "m", ActionMaskMatch)
	r.Register(ContextNormal, "x", ActionRemoveMatch)
	r.RegisterMultiple(ContextNormal, []string{"u", "ctrl+z"}, ActionUndo)

	r.Register(ContextNormal, "c", ActionCopyRequest)
	r.Register(ContextNormal, "C", ActionCopyResponse)
	r.Register(ContextNormal, "y", ActionCopyURL)

	r.Register(ContextNormal, "w", ActionToggleWrap)
	r.Register(ContextNormal, "t", ActionToggleTheme)
	r.Register(ContextNormal, "s", ActionSaveSnapshot)
}

// Find bar keys; printable keys fall through to the text input
func registerFindBindings(r *Registry) {
	r.RegisterMultiple(ContextFind, []string{"enter", "down", "ctrl+n"}, ActionSearchNext)
	r.RegisterMultiple(ContextFind, []string{"up", "ctrl+p"}, ActionSearchPrevious)
	r.Register(ContextFind, "esc", ActionCloseFind)
}
