/*
Package tui implements the terminal inspector for one captured exchange.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: the two displayed buffers, the search session, undo history and view state
  - Update: processes key and window messages
  - View: renders the URL bar, both panes and the status or find bar

# Key Components

  - model.go: Model struct, modes and the Update/View entry points
  - keys.go: keyboard routing through the keybinds registry
  - actions.go: search navigation, redaction, undo, clipboard and snapshot export
  - render.go: layout, match highlighting and wrapping
  - init.go: construction from a capture.Exchange and Run

# Buffers

The request and response panes hold formatted message text. Every edit
(Auto-Redact, masking or removing the current match) pushes both buffers on
the undo stack, replaces the text and reruns the active search so match
offsets always refer to the text on screen.

# Keybind System

Keys resolve through keybinds.Registry in the normal and find contexts, with
global bindings (ctrl+c) working everywhere. Users override them in
keybinds.json.

# Threading Model

Everything runs on Bubble Tea's event loop. The Model is not shared with
other goroutines.

# Example Usage

	ex, _ := capture.FromFiles("req.txt", "resp.txt", true)
	if err := tui.Run(ex, tui.Options{Settings: settings}); err != nil {
		log.Fatal(err)
	}
*/
package tui
