// Package minify implements the lexical HTML, CSS and JavaScript compaction
// applied to web assets before they are packed into the device filesystem
// image.
//
// Each minifier is an ordered Pipeline of named, pure text-to-text stages.
// Stages assume the ones before them already ran (for example, punctuation
// stripping expects whitespace runs to be collapsed), so a pipeline must be
// run as a whole and in order.
//
// The lexical minifiers know nothing about string or regular-expression
// literals: a "//" inside a quoted URL or a "/*" inside a regex is treated
// as a comment. Use the syntax engine (see NewEngine) when the assets rely
// on such literals.
package minify

import (
	"regexp"
	"strings"
)

// Stage is a single named text transform.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline is an ordered sequence of stages.
type Pipeline []Stage

// Run applies every stage in order and returns the final text.
func (p Pipeline) Run(s string) string {
	for _, stage := range p {
		s = stage.Apply(s)
	}
	return s
}

// Names lists the stage names in execution order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage.Name
	}
	return names
}

// Stage returns the stage with the given name.
func (p Pipeline) Stage(name string) (Stage, bool) {
	for _, stage := range p {
		if stage.Name == name {
			return stage, true
		}
	}
	return Stage{}, false
}

// RegexStage replaces every match of pattern with repl. repl may reference
// submatches with ${n}.
func RegexStage(name, pattern, repl string) Stage {
	re := regexp.MustCompile(pattern)
	return Stage{
		Name: name,
		Apply: func(s string) string {
			return re.ReplaceAllString(s, repl)
		},
	}
}

// ReplaceStage replaces every literal occurrence of old with repl.
func ReplaceStage(name, old, repl string) Stage {
	return Stage{
		Name: name,
		Apply: func(s string) string {
			return strings.ReplaceAll(s, old, repl)
		},
	}
}

// TrimStage strips leading and trailing whitespace.
func TrimStage(name string) Stage {
	return Stage{Name: name, Apply: strings.TrimSpace}
}

// Shared stage patterns.
const (
	blockCommentPattern = `(?s)/\*.*?\*/`
	whitespacePattern   = `[\s\v]+`
)
