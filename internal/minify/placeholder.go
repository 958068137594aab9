package minify

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoSentinel is returned when every private-use code point already
// occurs in a document, leaving nothing safe to build placeholders from.
var ErrNoSentinel = errors.New("minify: no unused private-use rune available for placeholders")

type blockKind string

const (
	blockScript blockKind = "script"
	blockStyle  blockKind = "style"
)

type block struct {
	original  string
	rewritten string
	minified  bool
	resolved  int
}

// placeholders parks embedded blocks behind tokens of the form
// <sentinel>kind:index<sentinel>. The sentinel is a private-use rune that
// does not occur anywhere in the source document, and none of the markup
// stages insert or join characters around it, so every token found later
// was put there by extract.
type placeholders struct {
	sentinel string
	tokenRe  *regexp.Regexp
	blocks   map[blockKind][]*block
}

func newPlaceholders(doc string) (*placeholders, error) {
	sentinel, err := pickSentinel(doc)
	if err != nil {
		return nil, err
	}

	q := regexp.QuoteMeta(sentinel)
	return &placeholders{
		sentinel: sentinel,
		tokenRe:  regexp.MustCompile(q + `(script|style):(\d+)` + q),
		blocks:   make(map[blockKind][]*block),
	}, nil
}

func pickSentinel(doc string) (string, error) {
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if !strings.ContainsRune(doc, r) {
			return string(r), nil
		}
	}
	return "", ErrNoSentinel
}

func (p *placeholders) token(kind blockKind, index int) string {
	return p.sentinel + string(kind) + ":" + strconv.Itoa(index) + p.sentinel
}

// extract replaces every match of re with a fresh token, recording the
// original block in occurrence order.
func (p *placeholders) extract(doc string, kind blockKind, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(doc, func(match string) string {
		p.blocks[kind] = append(p.blocks[kind], &block{original: match})
		return p.token(kind, len(p.blocks[kind])-1)
	})
}

// resolve substitutes every token of the given kind with its rewritten
// block. Replacement text is never rescanned.
func (p *placeholders) resolve(doc string, kind blockKind, rewrite func(string) (string, bool)) string {
	blocks := p.blocks[kind]
	for _, b := range blocks {
		b.rewritten, b.minified = rewrite(b.original)
	}

	return p.tokenRe.ReplaceAllStringFunc(doc, func(tok string) string {
		m := p.tokenRe.FindStringSubmatch(tok)
		if blockKind(m[1]) != kind {
			return tok
		}
		i, err := strconv.Atoi(m[2])
		if err != nil || i >= len(blocks) {
			return tok
		}
		blocks[i].resolved++
		return blocks[i].rewritten
	})
}

// verify checks that no token survived and none was used twice. Blocks
// with zero resolutions were inside an HTML comment and went with it.
func (p *placeholders) verify(doc string) error {
	if loc := p.tokenRe.FindStringIndex(doc); loc != nil {
		return fmt.Errorf("minify: unresolved placeholder at offset %d", loc[0])
	}
	for kind, blocks := range p.blocks {
		for i, b := range blocks {
			if b.resolved > 1 {
				return fmt.Errorf("minify: %s placeholder %d resolved %d times", kind, i, b.resolved)
			}
		}
	}
	return nil
}

func (p *placeholders) stats() MarkupStats {
	var s MarkupStats
	for _, b := range p.blocks[blockScript] {
		s.Scripts++
		if b.minified {
			s.InlineScripts++
		}
		if b.resolved == 0 {
			s.Dropped++
		}
	}
	for _, b := range p.blocks[blockStyle] {
		s.Styles++
		if b.resolved == 0 {
			s.Dropped++
		}
	}
	return s
}
