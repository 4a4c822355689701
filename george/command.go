package george

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one George instruction: a name, its ordered arguments, and the
// replies that mean failure for this particular command.
//
// Use NewCommand and the Errors/ErrorsAt builders:
//
//	NewCommand("tv_ClipEnumId", sceneID, 0).Errors(SentinelNone)
type Command struct {
	Name string
	Args []any

	sentinels []Sentinel
	// sentinelIndex selects the reply token checked against sentinels;
	// -1 checks the whole reply.
	sentinelIndex int
}

// NewCommand creates a command with no declared sentinels.
func NewCommand(name string, args ...any) Command {
	return Command{Name: name, Args: args, sentinelIndex: -1}
}

// Errors returns a copy of the command that fails when the whole reply matches
// any of the given sentinels.
func (c Command) Errors(sentinels ...Sentinel) Command {
	c.sentinels = append([]Sentinel(nil), sentinels...)
	c.sentinelIndex = -1
	return c
}

// ErrorsAt returns a copy of the command that fails when the reply token at
// index matches any of the given sentinels. This covers replies that carry an
// error code inside an otherwise well-formed payload.
func (c Command) ErrorsAt(index int, sentinels ...Sentinel) Command {
	c.sentinels = append([]Sentinel(nil), sentinels...)
	c.sentinelIndex = index
	return c
}

// Sentinels returns the sentinels declared for this command.
func (c Command) Sentinels() []Sentinel {
	return c.sentinels
}

// Format returns the command line without trailing newline.
func (c Command) Format() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, arg := range c.Args {
		b.WriteByte(' ')
		b.WriteString(FormatArg(arg))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return c.Format()
}

// match reports the sentinel matched by reply, if any.
func (c Command) match(reply string) (Sentinel, bool) {
	if len(c.sentinels) == 0 {
		return Sentinel{}, false
	}
	value := reply
	if c.sentinelIndex >= 0 {
		tokens := Tokenize(reply)
		if c.sentinelIndex >= len(tokens) {
			return Sentinel{}, false
		}
		value = tokens[c.sentinelIndex]
	}
	for _, s := range c.sentinels {
		if s.Match(value) {
			return s, true
		}
	}
	return Sentinel{}, false
}

// FormatArg formats one argument the way George expects it.
func FormatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return quote(v)
	case Path:
		return quote(v.String())
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return quote(v.String())
	default:
		return fmt.Sprint(v)
	}
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

// OptionalArgs returns the leading run of present arguments. George commands
// with trailing optional arguments cannot skip one and send the next, so the
// list stops at the first nil.
func OptionalArgs(args ...any) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if a == nil {
			break
		}
		out = append(out, a)
	}
	return out
}
