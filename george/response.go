package george

import (
	"strconv"
	"strings"
)

// Reply is the raw textual response to one command.
type Reply string

// String returns the raw reply.
func (r Reply) String() string {
	return string(r)
}

// Tokens splits the reply on spaces, keeping double-quoted tokens together.
func (r Reply) Tokens() []string {
	return Tokenize(string(r))
}

// Int decodes the whole reply as an integer.
func (r Reply) Int() (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(r)))
	if err != nil {
		return 0, newCastError("reply", string(r), "integer")
	}
	return v, nil
}

// Float decodes the whole reply as a float.
func (r Reply) Float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(r)), 64)
	if err != nil {
		return 0, newCastError("reply", string(r), "number")
	}
	return v, nil
}

// Unquote returns the reply with surrounding double quotes removed.
func (r Reply) Unquote() string {
	return strings.Trim(string(r), `"`)
}

// Sentinel is a reply value reserved to mean failure or absence. Its meaning
// is decided by the command that declares it.
type Sentinel struct {
	token  string
	code   int
	isCode bool
}

// Sentinel catalogue.
var (
	// SentinelEmpty matches an empty reply ("nothing to report").
	SentinelEmpty = Sentinel{token: ""}

	// SentinelNone matches the literal "none" ("no object at this index").
	SentinelNone = Sentinel{token: "none"}

	// SentinelError matches the literal "ERROR".
	SentinelError = Sentinel{token: "ERROR"}
)

// Token returns a sentinel that matches the exact reply text.
func Token(s string) Sentinel {
	return Sentinel{token: s}
}

// Code returns a sentinel that matches a reply whose integer value is n.
func Code(n int) Sentinel {
	return Sentinel{code: n, isCode: true}
}

// IsCode reports whether the sentinel is an integer code, and which one.
func (s Sentinel) IsCode() (int, bool) {
	return s.code, s.isCode
}

// Match reports whether value is this sentinel.
func (s Sentinel) Match(value string) bool {
	value = strings.TrimSpace(value)
	if s.isCode {
		n, err := strconv.Atoi(value)
		return err == nil && n == s.code
	}
	return value == s.token
}

// String returns the sentinel as it appears on the wire.
func (s Sentinel) String() string {
	if s.isCode {
		return strconv.Itoa(s.code)
	}
	if s.token == "" {
		return `""`
	}
	return s.token
}
