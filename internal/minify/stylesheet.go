package minify

// StylesheetPipeline compacts CSS.
var StylesheetPipeline = Pipeline{
	RegexStage("block-comments", blockCommentPattern, ""),
	RegexStage("collapse-whitespace", whitespacePattern, " "),
	RegexStage("punctuation", `\s*([{}:;,])\s*`, "${1}"),
	ReplaceStage("newlines", "\n", ""),
	TrimStage("trim"),
}

// Stylesheet minifies CSS source lexically.
func Stylesheet(src string) string {
	return StylesheetPipeline.Run(src)
}
