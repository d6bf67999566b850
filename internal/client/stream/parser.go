package stream

import (
	"strings"
)

// pingEvent payloads are keep-alives and never dispatched.
const pingEvent = "ping"

// parser turns Server-Sent-Events lines into events. Each data line is
// delivered on its own; a blank line ends the current event and forgets
// its name.
type parser struct {
	name string
}

type lineKind int

const (
	lineBoundary lineKind = iota
	lineComment
	lineEventName
	lineData
	lineKeepAlive
	lineIgnored
)

// feed consumes one line (without its terminator) and reports what it was.
// ev is only meaningful for lineData.
func (p *parser) feed(line string) (lineKind, Event) {
	line = strings.TrimSuffix(line, "\r")

	switch {
	case line == "":
		p.name = ""
		return lineBoundary, Event{}
	case strings.HasPrefix(line, ":"):
		return lineComment, Event{}
	case strings.HasPrefix(line, "event:"):
		p.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		return lineEventName, Event{}
	case strings.HasPrefix(line, "data:"):
		data := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		if p.name == pingEvent || strings.TrimSpace(data) == "" {
			return lineKeepAlive, Event{}
		}
		return lineData, Event{Name: p.name, Data: data}
	default:
		return lineIgnored, Event{}
	}
}
