package input

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var specRe = regexp.MustCompile(`^(.+?)(?::(\d*)-(\d*))?$`)

// Spec is a path with an optional 1-indexed, inclusive line range.
type Spec struct {
	Path  string
	Start int // 0 means from the first line
	End   int // 0 means to the last line
	// Ranged is true when a range was given, even an open one like "a.md:3-".
	Ranged bool
}

// ParseSpec parses "notes.md", "notes.md:10-20", "notes.md:10-" or
// "notes.md:-20".
func ParseSpec(s string) (Spec, error) {
	m := specRe.FindStringSubmatch(s)
	if m == nil {
		return Spec{}, fmt.Errorf("invalid file spec: %q", s)
	}

	spec := Spec{Path: m[1]}
	if len(m[0]) == len(m[1]) {
		return spec, nil
	}
	spec.Ranged = true
	var err error
	if m[2] != "" {
		if spec.Start, err = strconv.Atoi(m[2]); err != nil {
			return Spec{}, fmt.Errorf("invalid start line: %s", m[2])
		}
	}
	if m[3] != "" {
		if spec.End, err = strconv.Atoi(m[3]); err != nil {
			return Spec{}, fmt.Errorf("invalid end line: %s", m[3])
		}
	}
	if spec.Start > 0 && spec.End > 0 && spec.End < spec.Start {
		return Spec{}, fmt.Errorf("invalid line range %d-%d", spec.Start, spec.End)
	}
	return spec, nil
}

// String renders the spec back in the form ParseSpec accepts.
func (s Spec) String() string {
	if !s.Ranged {
		return s.Path
	}
	var start, end string
	if s.Start > 0 {
		start = strconv.Itoa(s.Start)
	}
	if s.End > 0 {
		end = strconv.Itoa(s.End)
	}
	return s.Path + ":" + start + "-" + end
}

// Lines returns lines start..end (1-indexed, inclusive) of content.
func Lines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	from := max(start-1, 0)
	to := len(lines)
	if end > 0 {
		to = min(end, to)
	}
	if from >= to {
		return ""
	}
	return strings.Join(lines[from:to], "\n")
}
