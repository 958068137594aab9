package minify

// ScriptPipeline compacts JavaScript. The order matters: comments go first
// so their text is never joined onto code, whitespace is collapsed before
// the punctuation passes so they only ever see single spaces.
var ScriptPipeline = Pipeline{
	RegexStage("line-comments", `(?m)//.*?$`, ""),
	RegexStage("block-comments", blockCommentPattern, ""),
	RegexStage("collapse-whitespace", whitespacePattern, " "),
	RegexStage("punctuation", `\s*([{};,:])\s*`, "${1}"),
	RegexStage("operators", `\s*([=<>!+\-*/])\s*`, "${1}"),
	ReplaceStage("newlines", "\n", ""),
	TrimStage("trim"),
}

// Script minifies JavaScript source lexically.
func Script(src string) string {
	return ScriptPipeline.Run(src)
}
