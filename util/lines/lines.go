package lines

import (
	"fmt"
	"strings"
)

// Lines collects indented text lines for multi-line String() representations
type Lines struct {
	l      []string
	prefix string
}

func New(prefix ...string) *Lines {
	ret := &Lines{l: make([]string, 0)}
	if len(prefix) > 0 {
		ret.prefix = prefix[0]
	}
	return ret
}

func (l *Lines) Add(format string, args ...any) *Lines {
	l.l = append(l.l, fmt.Sprintf(format, args...))
	return l
}

// Append adds all lines of another Lines object, each indented with own prefix
func (l *Lines) Append(ln *Lines) *Lines {
	for _, s := range ln.l {
		l.l = append(l.l, ln.prefix+s)
	}
	return l
}

func (l *Lines) Len() int {
	return len(l.l)
}

func (l *Lines) String() string {
	var b strings.Builder
	for _, s := range l.l {
		b.WriteString(l.prefix)
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// Join returns lines joined with separator, without prefix
func (l *Lines) Join(sep string) string {
	return strings.Join(l.l, sep)
}
