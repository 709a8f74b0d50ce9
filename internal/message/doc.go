/*
Package message reformats raw HTTP messages for display.

# Overview

A raw message is a header block, the CRLF blank line ("\r\n\r\n") and a
body. Format splits the message at the first delimiter, sniffs the body and
re-indents HTML or JSON bodies. Headers are never touched and anything that
cannot be recognised passes through unchanged.

# Components

Sniffer (sniff.go):
  - Classify returns KindHTML, KindJSON or KindOpaque
  - Header hints (text/html, json) win over body hints

HTML (html.go):
  - Textual re-flow of tag structure, not a parser
  - Void elements meta, link and br do not nest
  - Unbalanced closing tags clamp indentation at zero

JSON (json.go):
  - Single quote-aware scan, forgiving of invalid JSON
  - Text before the first brace or bracket (JSONP callbacks) is kept verbatim

Formatter (format.go):
  - Split and Format over the whole message
  - Panics inside a reindenter fall back to the original body

Every function is pure and safe for concurrent use. Messages are handled
in memory; they are bounded by what an inspector displays, so there is
no streaming.

# Example Usage

	raw := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"a\":1}"
	fmt.Println(message.Format(raw))
	// HTTP/1.1 200 OK
	// Content-Type: application/json
	//
	// {
	//   "a": 1
	// }
*/
package message
