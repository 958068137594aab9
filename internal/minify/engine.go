package minify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	fserrors "github.com/conneroisu/fsbuild/internal/errors"
)

// Kind classifies an asset by how it is minified.
type Kind int

const (
	KindOpaque Kind = iota
	KindScript
	KindStylesheet
	KindMarkup
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStylesheet:
		return "stylesheet"
	case KindMarkup:
		return "markup"
	default:
		return "opaque"
	}
}

// IsText reports whether files of this kind are decoded and rewritten.
func (k Kind) IsText() bool {
	return k != KindOpaque
}

// Classify derives the Kind of a file from its lowercased extension.
func Classify(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js":
		return KindScript
	case ".css":
		return KindStylesheet
	case ".html":
		return KindMarkup
	default:
		return KindOpaque
	}
}

// Engine minifies the text of one asset.
type Engine interface {
	Name() string
	Minify(kind Kind, src string) (string, error)
}

// Engine names accepted by NewEngine.
const (
	EngineLexical = "lexical"
	EngineSyntax  = "syntax"
)

// Engines lists the supported engine names.
func Engines() []string {
	return []string{EngineLexical, EngineSyntax}
}

// NewEngine returns the engine registered under name.
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineLexical:
		return Lexical{}, nil
	case EngineSyntax:
		return NewSyntax(), nil
	default:
		return nil, fserrors.NewConfigError(fserrors.ErrCodeUnknownEngine,
			fmt.Sprintf("unknown minify engine %q (supported: %s)", name, strings.Join(Engines(), ", ")))
	}
}

// Lexical is the regex-driven engine.
type Lexical struct{}

// Name implements Engine.
func (Lexical) Name() string { return EngineLexical }

// Minify implements Engine.
func (Lexical) Minify(kind Kind, src string) (string, error) {
	switch kind {
	case KindScript:
		return Script(src), nil
	case KindStylesheet:
		return Stylesheet(src), nil
	case KindMarkup:
		return Markup(src)
	default:
		return src, nil
	}
}

const (
	mediaHTML = "text/html"
	mediaCSS  = "text/css"
	mediaJS   = "application/javascript"
)

// Syntax delegates to tdewolff/minify, which tokenizes its input and so
// leaves string and regex literals intact.
type Syntax struct {
	m *tdminify.M
}

// NewSyntax builds a Syntax engine with HTML, CSS and JS minifiers
// registered. HTML minification recurses into embedded script and style.
func NewSyntax() *Syntax {
	m := tdminify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.AddFunc(mediaHTML, html.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return &Syntax{m: m}
}

// Name implements Engine.
func (s *Syntax) Name() string { return EngineSyntax }

// Minify implements Engine.
func (s *Syntax) Minify(kind Kind, src string) (string, error) {
	var media string
	switch kind {
	case KindScript:
		media = mediaJS
	case KindStylesheet:
		media = mediaCSS
	case KindMarkup:
		media = mediaHTML
	default:
		return src, nil
	}

	out, err := s.m.String(media, src)
	if err != nil {
		return "", fserrors.NewMinifyError(fserrors.ErrCodeMinifyFailed, kind.String()+" minification failed", err).
			WithContext("engine", EngineSyntax)
	}
	return out, nil
}
