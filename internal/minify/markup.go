package minify

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	scriptPartsRe = regexp.MustCompile(`(?is)^(<script[^>]*>)(.*)</script>$`)
	stylePartsRe  = regexp.MustCompile(`(?is)^<style[^>]*>(.*)</style>$`)
	srcAttrRe     = regexp.MustCompile(`(?i)\ssrc\s*=`)
)

// MarkupPipeline holds the structural HTML stages. They run while embedded
// script and style blocks are parked behind placeholders.
var MarkupPipeline = Pipeline{
	RegexStage("comments", `(?s)<!--.*?-->`, ""),
	RegexStage("collapse-whitespace", whitespacePattern, " "),
	RegexStage("inter-tag-whitespace", `>\s+<`, "><"),
}

// MarkupStats describes the embedded blocks seen while minifying a document.
type MarkupStats struct {
	Scripts       int // all <script> blocks
	InlineScripts int // <script> blocks without a src attribute, minified
	Styles        int // <style> blocks, all minified
	Dropped       int // blocks that sat inside an HTML comment and were removed with it
}

// Markup minifies an HTML document lexically. Inline <script> and <style>
// bodies are minified with Script and Stylesheet; scripts loaded via src
// are kept as written.
func Markup(src string) (string, error) {
	out, _, err := MarkupWithStats(src)
	return out, err
}

// MarkupWithStats is Markup that also reports what happened to the
// embedded blocks.
func MarkupWithStats(src string) (string, MarkupStats, error) {
	ph, err := newPlaceholders(src)
	if err != nil {
		return "", MarkupStats{}, err
	}

	doc := ph.extract(src, blockScript, scriptBlockRe)
	doc = ph.extract(doc, blockStyle, styleBlockRe)

	doc = MarkupPipeline.Run(doc)

	doc = ph.resolve(doc, blockScript, rewriteScript)
	doc = ph.resolve(doc, blockStyle, rewriteStyle)

	if err := ph.verify(doc); err != nil {
		return "", MarkupStats{}, err
	}

	stats := ph.stats()
	return strings.TrimSpace(doc), stats, nil
}

// rewriteScript minifies an inline script block. External scripts are
// returned untouched.
func rewriteScript(original string) (string, bool) {
	parts := scriptPartsRe.FindStringSubmatch(original)
	if parts == nil || srcAttrRe.MatchString(parts[1]) {
		return original, false
	}
	return "<script>" + Script(parts[2]) + "</script>", true
}

func rewriteStyle(original string) (string, bool) {
	parts := stylePartsRe.FindStringSubmatch(original)
	if parts == nil {
		return original, false
	}
	return "<style>" + Stylesheet(parts[1]) + "</style>", true
}
