package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available everywhere
	ContextNormal Context = "normal" // Panes focused
	ContextFind   Context = "find"   // Find bar focused
)

// Contexts lists every context in lookup order after the specific one
var Contexts = []Context{ContextGlobal, ContextNormal, ContextFind}

const (
	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Scrolling the focused pane
	ActionScrollUp       Action = "scroll_up"
	ActionScrollDown     Action = "scroll_down"
	ActionPageUp         Action = "page_up"
	ActionPageDown       Action = "page_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToBottom     Action = "go_to_bottom"
	ActionSwitchPane     Action = "switch_pane"

	// Find
	ActionOpenFind       Action = "open_find"
	ActionCloseFind      Action = "close_find"
	ActionSearchNext     Action = "search_next"
	ActionSearchPrevious Action = "search_previous"

	// Editing the panes
	ActionAutoRedact  Action = "auto_redact"
	ActionMaskMatch   Action = "mask_match"
	ActionRemoveMatch Action = "remove_match"
	ActionUndo        Action = "undo"

	// Clipboard
	ActionCopyRequest  Action = "copy_request"
	ActionCopyResponse Action = "copy_response"
	ActionCopyURL      Action = "copy_url"

	// Display
	ActionToggleWrap  Action = "toggle_wrap"
	ActionToggleTheme Action = "toggle_theme"
	ActionToggleHelp  Action = "toggle_help"

	ActionSaveSnapshot Action = "save_snapshot"
)

// ActionInfo contains metadata about an action
type ActionInfo struct {
	Action      Action
	Description string
	Category    string
}

var actionInfos = map[Action]ActionInfo{
	ActionQuit:           {ActionQuit, "Quit", "Global"},
	ActionQuitForce:      {ActionQuitForce, "Force quit", "Global"},
	ActionScrollUp:       {ActionScrollUp, "Scroll up", "Navigation"},
	ActionScrollDown:     {ActionScrollDown, "Scroll down", "Navigation"},
	ActionPageUp:         {ActionPageUp, "Page up", "Navigation"},
	ActionPageDown:       {ActionPageDown, "Page down", "Navigation"},
	ActionGoToTop:        {ActionGoToTop, "Go to top", "Navigation"},
	ActionGoToBottom:     {ActionGoToBottom, "Go to bottom", "Navigation"},
	ActionSwitchPane:     {ActionSwitchPane, "Switch pane", "Navigation"},
	ActionOpenFind:       {ActionOpenFind, "Find", "Find"},
	ActionCloseFind:      {ActionCloseFind, "Close find bar", "Find"},
	ActionSearchNext:     {ActionSearchNext, "Next match", "Find"},
	ActionSearchPrevious: {ActionSearchPrevious, "Previous match", "Find"},
	ActionAutoRedact:     {ActionAutoRedact, "Auto-Redact request", "Edit"},
	ActionMaskMatch:      {ActionMaskMatch, "Mask current match", "Edit"},
	ActionRemoveMatch:    {ActionRemoveMatch, "Remove current match", "Edit"},
	ActionUndo:           {ActionUndo, "Undo", "Edit"},
	ActionCopyRequest:    {ActionCopyRequest, "Copy request", "Clipboard"},
	ActionCopyResponse:   {ActionCopyResponse, "Copy response", "Clipboard"},
	ActionCopyURL:        {ActionCopyURL, "Copy URL", "Clipboard"},
	ActionToggleWrap:     {ActionToggleWrap, "Toggle wrap", "View"},
	ActionToggleTheme:    {ActionToggleTheme, "Toggle theme", "View"},
	ActionToggleHelp:     {ActionToggleHelp, "Toggle help", "View"},
	ActionSaveSnapshot:   {ActionSaveSnapshot, "Save snapshot", "File"},
}

// GetActionInfo returns human-readable information about an action
func GetActionInfo(action Action) ActionInfo {
	if info, ok := actionInfos[action]; ok {
		return info
	}
	return ActionInfo{action, string(action), "Unknown"}
}

// IsKnownAction reports whether action is one the inspector handles
func IsKnownAction(action Action) bool {
	_, ok := actionInfos[action]
	return ok
}
