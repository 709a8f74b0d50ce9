/*
Package keybinds maps keys to inspector actions.

# Overview

Bindings live in a Registry keyed by context. The inspector has three
contexts:

  - global: active everywhere (ctrl+c)
  - normal: the request and response panes
  - find: the find bar, where printable keys go to the text input

A key is looked up in the current context first, then in global.

# Configuration File Format

Users override defaults in ~/.reqshot/keybinds.json. Each section maps an
action to a comma-separated key list; comments are allowed:

	{
	  // copy the URL with y or ctrl+y
	  "normal": {
	    "copy_url": "y,ctrl+y",
	    "auto_redact": "R"
	  },
	  "find": {
	    "close_find": "esc,ctrl+g"
	  }
	}

Keys listed for an action replace its default keys in that section.

# Multi-Key Sequences

A binding made of one repeated character, such as "gg", turns its first
key into a prefix: MatchMultiKey reports a partial match and waits for the
next key.

# Validation

Validator rejects unknown actions, malformed keys and a key claimed by two
actions in one section. Rebinding ctrl+c or shadowing a global key only
produces warnings.
*/
package keybinds
