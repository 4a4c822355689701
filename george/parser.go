package george

import (
	"slices"
	"strconv"
	"strings"
)

// Tokenize splits a reply on whitespace. A double-quoted run is one token
// with its quotes removed, so paths and names containing spaces survive.
// Backslashes carry no meaning: George replies contain raw Windows paths.
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
		pending bool // a token was started, possibly empty ("")
	)

	flush := func() {
		if pending {
			tokens = append(tokens, current.String())
			current.Reset()
			pending = false
		}
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			pending = true
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && !inQuote:
			flush()
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	flush()
	return tokens
}

// ParseCommandLine parses a raw George line (as typed at a prompt) into a
// Command. Arguments stay strings; quoted arguments keep their spaces.
func ParseCommandLine(line string) (Command, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), CommandPrefix))
	if len(line) > MaxLineLength {
		return Command{}, ErrLineTooLong
	}
	tokens := Tokenize(line)
	if len(tokens) == 0 || tokens[0] == "" {
		return Command{}, &ArgumentError{Argument: "command", Message: "empty command line"}
	}
	args := make([]any, 0, len(tokens)-1)
	for _, t := range tokens[1:] {
		args = append(args, t)
	}
	return NewCommand(tokens[0], args...), nil
}

// Cast converts the tokens of one field into its typed value.
type Cast func(tokens []string) (any, error)

// Field describes one logical value of a reply.
type Field struct {
	Name string
	// Width is the number of consecutive tokens the field consumes.
	Width int
	// Skip marks identity fields that the reply does not carry; the caller
	// supplies them after parsing.
	Skip bool
	Cast Cast
}

// Schema is the ordered description of a reply.
type Schema []Field

// Width returns the number of tokens the schema consumes.
func (s Schema) Width() int {
	n := 0
	for _, f := range s {
		if !f.Skip {
			n += f.Width
		}
	}
	return n
}

// Fields holds decoded values by field name.
type Fields struct {
	values map[string]any
	order  []string
}

// ParseFields decodes reply according to schema. Skipped fields consume no
// tokens. Trailing tokens beyond the schema are ignored.
func ParseFields(reply string, schema Schema) (Fields, error) {
	tokens := Tokenize(reply)
	out := Fields{values: make(map[string]any, len(schema))}

	pos := 0
	for _, f := range schema {
		if f.Skip {
			continue
		}
		width := max(f.Width, 1)
		if pos+width > len(tokens) {
			return Fields{}, newMissingTokenError(f.Name, schema.Width(), len(tokens))
		}
		v, err := f.Cast(tokens[pos : pos+width])
		if err != nil {
			return Fields{}, err
		}
		out.values[f.Name] = v
		out.order = append(out.order, f.Name)
		pos += width
	}
	return out, nil
}

// Has reports whether name was decoded.
func (f Fields) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Names returns the decoded field names in schema order.
func (f Fields) Names() []string {
	return slices.Clone(f.order)
}

// Value returns the raw decoded value of name.
func (f Fields) Value(name string) any {
	return f.values[name]
}

// Int returns an integer field, or 0.
func (f Fields) Int(name string) int {
	v, _ := f.values[name].(int)
	return v
}

// Float returns a float field, or 0.
func (f Fields) Float(name string) float64 {
	v, _ := f.values[name].(float64)
	return v
}

// String returns a string field, or "".
func (f Fields) String(name string) string {
	v, _ := f.values[name].(string)
	return v
}

// Bool returns a boolean field, or false.
func (f Fields) Bool(name string) bool {
	v, _ := f.values[name].(bool)
	return v
}

// Get returns a field of any decoded type, for enums and grouped fields.
func Get[T any](f Fields, name string) T {
	v, _ := f.values[name].(T)
	return v
}

// IntField decodes one integer token.
func IntField(name string) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		v, err := strconv.Atoi(t[0])
		if err != nil {
			return nil, newCastError(name, t[0], "integer")
		}
		return v, nil
	}}
}

// FloatField decodes one numeric token.
func FloatField(name string) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		v, err := strconv.ParseFloat(t[0], 64)
		if err != nil {
			return nil, newCastError(name, t[0], "number")
		}
		return v, nil
	}}
}

// StringField keeps one token as is.
func StringField(name string) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		return t[0], nil
	}}
}

// PathField decodes one token as a slash-separated path.
func PathField(name string) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		return NormalizePath(t[0]), nil
	}}
}

// BoolField decodes 1/0, on/off, true/false and yes/no, case-insensitively.
func BoolField(name string) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		v, ok := ParseBool(t[0])
		if !ok {
			return nil, newCastError(name, t[0], "boolean")
		}
		return v, nil
	}}
}

// ParseBool decodes the boolean spellings George uses.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true, true
	case "0", "off", "false", "no":
		return false, true
	}
	return false, false
}

// EnumField decodes one token into a member of a closed value set. Tokens are
// compared case-insensitively; an unknown token is a decode failure.
func EnumField[E ~string](name string, values ...E) Field {
	return Field{Name: name, Width: 1, Cast: func(t []string) (any, error) {
		e, err := ParseEnum(name, t[0], values...)
		if err != nil {
			return nil, err
		}
		return e, nil
	}}
}

// ParseEnum returns the member of values matching token.
func ParseEnum[E ~string](field, token string, values ...E) (E, error) {
	for _, v := range values {
		if strings.EqualFold(string(v), token) {
			return v, nil
		}
	}
	var zero E
	return zero, newCastError(field, token, "enum value")
}

// GroupField decodes width consecutive tokens as a single value.
func GroupField(name string, width int, cast Cast) Field {
	return Field{Name: name, Width: width, Cast: cast}
}

// Skipped declares an identity field that the reply does not carry.
func Skipped(name string) Field {
	return Field{Name: name, Skip: true}
}
