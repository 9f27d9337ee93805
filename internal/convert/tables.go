package convert

import (
	"sort"
	"strings"
)

// ToolClaudeToCopilot maps a single Claude Code tool name to its Copilot
// equivalent. Unknown tools pass through unchanged.
func ToolClaudeToCopilot(tool string) string {
	tool = strings.TrimSpace(tool)
	switch {
	case tool == "Read" || tool == "Write" || tool == "Edit":
		return "codebase"
	case tool == "Grep" || tool == "Glob":
		return "search/codebase"
	case tool == "Bash":
		return "terminal"
	case strings.HasPrefix(tool, "Bash(git"):
		return "githubRepo"
	case tool == "WebFetch":
		return "fetch"
	case tool == "WebSearch":
		return "websearch"
	default:
		return tool
	}
}

// ToolCopilotToClaude maps a single Copilot tool name back to Claude Code.
// The codebase/githubRepo mappings are 1:N in reverse and only return a
// representative value; full round-trips are not guaranteed.
func ToolCopilotToClaude(tool string) string {
	switch strings.TrimSpace(tool) {
	case "codebase":
		return "Read"
	case "search/codebase":
		return "Grep"
	case "terminal":
		return "Bash"
	case "githubRepo":
		return "Bash"
	case "fetch":
		return "WebFetch"
	case "websearch":
		return "WebSearch"
	default:
		return tool
	}
}

// ToolsClaudeToCopilot converts and deduplicates a tool list.
func ToolsClaudeToCopilot(tools []string) []string {
	seen := make(map[string]bool, len(tools))
	var out []string
	for _, t := range tools {
		c := ToolClaudeToCopilot(t)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// ModelClaudeToCopilot maps a Claude Code model alias to a Copilot model ID.
func ModelClaudeToCopilot(model string) string {
	switch strings.ToLower(model) {
	case "haiku":
		return "GPT-4o-mini"
	case "sonnet":
		return "GPT-4o"
	case "opus":
		return "o1"
	default:
		return model
	}
}

// ModelCopilotToClaude is the inverse of ModelClaudeToCopilot.
func ModelCopilotToClaude(model string) string {
	switch strings.ToLower(model) {
	case "gpt-4o-mini":
		return "haiku"
	case "gpt-4o":
		return "sonnet"
	case "o1":
		return "opus"
	default:
		return model
	}
}

// ModelClaudeToCodex maps a Claude Code model alias to a Codex model ID.
func ModelClaudeToCodex(model string) string {
	switch strings.ToLower(model) {
	case "haiku":
		return "gpt-4.1-mini"
	case "sonnet":
		return "gpt-4.1"
	case "opus":
		return "o3"
	default:
		return model
	}
}

// bodyReplacements lists the Claude Code <-> Copilot body placeholder pairs
// in $9..$1 order, so replacement never partially matches a longer token
// (e.g. "$1" inside "$10") before the longer one has been handled.
var bodyReplacements = [...][2]string{
	{"$ARGUMENTS", "${arguments}"},
	{"$9", "${arg9}"},
	{"$8", "${arg8}"},
	{"$7", "${arg7}"},
	{"$6", "${arg6}"},
	{"$5", "${arg5}"},
	{"$4", "${arg4}"},
	{"$3", "${arg3}"},
	{"$2", "${arg2}"},
	{"$1", "${arg1}"},
}

// BodyClaudeToCopilot converts $ARGUMENTS/$1-$9 placeholders to Copilot's
// ${arguments}/${arg1}-${arg9} form.
func BodyClaudeToCopilot(body string) string {
	for _, pair := range bodyReplacements {
		body = strings.ReplaceAll(body, pair[0], pair[1])
	}
	return body
}

// BodyCopilotToClaude is the inverse of BodyClaudeToCopilot.
func BodyCopilotToClaude(body string) string {
	for i := len(bodyReplacements) - 1; i >= 0; i-- {
		body = strings.ReplaceAll(body, bodyReplacements[i][1], bodyReplacements[i][0])
	}
	return body
}

// ParseAllowedTools splits a comma-separated allowed-tools string.
func ParseAllowedTools(tools string) []string {
	parts := strings.Split(tools, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatAllowedTools joins a tool list back into the comma-separated form.
func FormatAllowedTools(tools []string) string {
	return strings.Join(tools, ", ")
}

// EscapeYAMLString quotes s if it contains characters that would otherwise
// confuse a YAML scalar parser, matching the conservative hand-rolled
// escaping the source dialects use for writing frontmatter.
func EscapeYAMLString(s string) string {
	needsQuote := strings.ContainsAny(s, ":\"#\n") ||
		strings.HasPrefix(s, " ") ||
		strings.HasSuffix(s, " ")
	if !needsQuote {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return `"` + escaped + `"`
}
