// =============================================================================
// translate.go - Input Translation (REPL Input → George Command Lines)
// =============================================================================
//
// The REPL accepts three kinds of input:
//
//   Dot-commands:   ".layers", ".undo tv_LayerCreate \"ink\""
//   George lines:   "tv_GetWidth", "tv_ClipName 102"
//   Short forms:    "width", "ClipName 102"
//
// Short forms are expanded before sending: a handful of query words map to
// full commands, and a command name without the tv_ prefix gets it added.
// Arguments are passed through untouched, quotes included.
//
//   "width"           → "tv_GetWidth"
//   "fps"             → "tv_FrameRate"
//   "LayerInfo 104"   → "tv_LayerInfo 104"
//
// =============================================================================

package main

import (
	"fmt"
	"strings"

	"github.com/johhnry/gotvpaint/george"
)

const georgePrefix = "tv_"

// shortForms maps query words to the George command they stand for.
var shortForms = map[string]string{
	"width":   "tv_GetWidth",
	"height":  "tv_GetHeight",
	"ratio":   "tv_GetRatio",
	"field":   "tv_GetField",
	"fps":     "tv_FrameRate",
	"frame":   "tv_ProjectCurrentFrame",
	"start":   "tv_StartFrame",
	"project": "tv_ProjectCurrentId",
	"scene":   "tv_SceneCurrentId",
	"clip":    "tv_ClipCurrentId",
	"layer":   "tv_LayerCurrentID",
	"name":    "tv_GetProjectName",
}

// inputKind classifies a line read by the REPL.
type inputKind int

const (
	inputEmpty inputKind = iota
	inputDot
	inputGeorge
)

// input is a parsed REPL line. For dot-commands name is the command without
// its dot, lowercased; for George lines line is the expanded command line.
type input struct {
	kind inputKind
	name string
	arg  string
	line string
}

// parseInput classifies line and expands George short forms.
func parseInput(line string) (input, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return input{kind: inputEmpty}, nil
	}

	if rest, ok := strings.CutPrefix(trimmed, "."); ok {
		name, arg, _ := strings.Cut(rest, " ")
		if name == "" {
			return input{}, fmt.Errorf("missing command after '.'")
		}
		return input{kind: inputDot, name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, nil
	}

	expanded, err := expandGeorge(trimmed)
	if err != nil {
		return input{}, err
	}
	return input{kind: inputGeorge, line: expanded}, nil
}

// expandGeorge turns a George line or short form into a full command line
// and checks that it parses.
func expandGeorge(line string) (string, error) {
	line = strings.TrimSpace(line)
	name, args, _ := strings.Cut(line, " ")

	switch {
	case shortForms[strings.ToLower(name)] != "":
		name = shortForms[strings.ToLower(name)]
	case !hasGeorgePrefix(name):
		name = georgePrefix + name
	}

	if args = strings.TrimSpace(args); args != "" {
		line = name + " " + args
	} else {
		line = name
	}

	if _, err := george.ParseCommandLine(line); err != nil {
		return "", err
	}
	return line, nil
}

func hasGeorgePrefix(name string) bool {
	return len(name) >= len(georgePrefix) && strings.EqualFold(name[:len(georgePrefix)], georgePrefix)
}
