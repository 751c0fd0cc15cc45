package telegram

import "strings"

// MarkdownV2 中需要转义的字符，反斜杠必须最先处理
var markdownV2Replacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMarkdownV2 用于转义 MarkdownV2 格式中的特殊字符
func EscapeMarkdownV2(input string) string {
	return markdownV2Replacer.Replace(input)
}
