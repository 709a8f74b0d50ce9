// Package search finds a literal, case-insensitive query across the request
// and response buffers and tracks which match is current.
//
// A Session is a plain value. Callers keep it between keystrokes and pass it
// back through Advance or Retreat; the package holds no state of its own.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// BufferID names one of the two searchable buffers
type BufferID int

const (
	Request BufferID = iota
	Response
)

func (b BufferID) String() string {
	if b == Response {
		return "response"
	}
	return "request"
}

// NoCursor is the cursor of a session without matches
const NoCursor = -1

// Match is a half-open byte range [Start, End) in one buffer
type Match struct {
	Buffer BufferID `json:"buffer" yaml:"buffer"`
	Start  int      `json:"start" yaml:"start"`
	End    int      `json:"end" yaml:"end"`
}

// Buffers holds the displayed text of both panes
type Buffers struct {
	Request  string
	Response string
}

// Text returns the buffer identified by id
func (b Buffers) Text(id BufferID) string {
	if id == Response {
		return b.Response
	}
	return b.Request
}

// Session is the result of one search plus the current position in it
type Session struct {
	Query   string  `json:"query" yaml:"query"`
	Matches []Match `json:"matches" yaml:"matches"`
	Cursor  int     `json:"cursor" yaml:"cursor"`
}

// Search scans Request, then Response, for every non-overlapping occurrence
// of query. Matching is literal and ignores case. An empty query yields an
// empty session.
func Search(buffers Buffers, query string) Session {
	s := Session{Query: query, Cursor: NoCursor}
	if query == "" {
		return s
	}

	find := indexAll(query)
	for _, id := range []BufferID{Request, Response} {
		for _, loc := range find(buffers.Text(id)) {
			s.Matches = append(s.Matches, Match{Buffer: id, Start: loc[0], End: loc[1]})
		}
	}

	if len(s.Matches) > 0 {
		s.Cursor = 0
	}
	return s
}

// Len returns the number of matches
func (s Session) Len() int {
	return len(s.Matches)
}

// Advance moves the cursor to the next match, wrapping to the first
func (s Session) Advance() Session {
	if len(s.Matches) == 0 {
		return s
	}
	s.Cursor = (s.Cursor + 1) % len(s.Matches)
	return s
}

// Retreat moves the cursor to the previous match, wrapping to the last
func (s Session) Retreat() Session {
	if len(s.Matches) == 0 {
		return s
	}
	s.Cursor--
	if s.Cursor < 0 {
		s.Cursor = len(s.Matches) - 1
	}
	return s
}

// Current returns the highlighted match. ok is false when there is none.
func (s Session) Current() (m Match, ok bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[s.Cursor], true
}

// Counter formats the position as "i/N", or "0/0" without matches
func (s Session) Counter() string {
	if _, ok := s.Current(); !ok {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.Cursor+1, len(s.Matches))
}

// indexAll returns a matcher for every non-overlapping occurrence of query.
// Queries that are not valid UTF-8 cannot compile as a pattern and are
// scanned bytewise, folding ASCII letters only.
func indexAll(query string) func(text string) [][]int {
	if pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query)); err == nil {
		return func(text string) [][]int {
			return pattern.FindAllStringIndex(text, -1)
		}
	}

	needle := foldASCII(query)
	return func(text string) [][]int {
		haystack := foldASCII(text)
		var locs [][]int
		for from := 0; from <= len(haystack)-len(needle); {
			i := strings.Index(haystack[from:], needle)
			if i < 0 {
				break
			}
			start := from + i
			locs = append(locs, []int{start, start + len(needle)})
			from = start + len(needle)
		}
		return locs
	}
}

// foldASCII lowercases ASCII letters and leaves every other byte in place,
// so offsets into the result are offsets into s
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
