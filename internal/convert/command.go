package convert

import "strings"

// ClaudeCodeCommand is a parsed `.claude/commands/<name>.md` document.
type ClaudeCodeCommand struct {
	Name                    string
	Description             string
	AllowedTools            string
	ArgumentHint            string
	Model                   string
	DisableModelInvocation  bool
	UserInvocable           bool
	hasDisableModelInvoc    bool
	hasUserInvocable        bool
	Body                    string
}

type claudeCodeCommandFrontmatter struct {
	Name                   string `yaml:"name"`
	Description            string `yaml:"description"`
	AllowedTools           string `yaml:"allowed-tools"`
	ArgumentHint           string `yaml:"argument-hint"`
	Model                  string `yaml:"model"`
	DisableModelInvocation *bool  `yaml:"disable-model-invocation"`
	UserInvocable          *bool  `yaml:"user-invocable"`
}

// ParseClaudeCodeCommand parses a Claude Code Command from its raw content.
// The name is taken directly from frontmatter; callers loading from a file
// should fall back to the filename (minus ".md") when Name is empty.
func ParseClaudeCodeCommand(content string) (ClaudeCodeCommand, error) {
	var fm claudeCodeCommandFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return ClaudeCodeCommand{}, err
	}
	cmd := ClaudeCodeCommand{
		Name:         normalizeName(fm.Name),
		Description:  fm.Description,
		AllowedTools: fm.AllowedTools,
		ArgumentHint: fm.ArgumentHint,
		Model:        fm.Model,
		Body:         body,
	}
	if fm.DisableModelInvocation != nil {
		cmd.hasDisableModelInvoc = true
		cmd.DisableModelInvocation = *fm.DisableModelInvocation
	}
	if fm.UserInvocable != nil {
		cmd.hasUserInvocable = true
		cmd.UserInvocable = *fm.UserInvocable
	}
	return cmd, nil
}

// NameFromCommandFilename extracts a command name from a `.md` filename.
func NameFromCommandFilename(filename string) string {
	return nameFromFilename(filename, ".md")
}

// ToMarkdown serializes back to Claude Code Command markdown.
func (c ClaudeCodeCommand) ToMarkdown() string {
	var fields []string
	if c.Name != "" {
		fields = append(fields, "name: "+EscapeYAMLString(c.Name))
	}
	if c.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(c.Description))
	}
	if c.AllowedTools != "" {
		fields = append(fields, "allowed-tools: "+EscapeYAMLString(c.AllowedTools))
	}
	if c.ArgumentHint != "" {
		fields = append(fields, "argument-hint: "+EscapeYAMLString(c.ArgumentHint))
	}
	if c.Model != "" {
		fields = append(fields, "model: "+c.Model)
	}
	if c.hasDisableModelInvoc {
		fields = append(fields, boolField("disable-model-invocation", c.DisableModelInvocation))
	}
	if c.hasUserInvocable {
		fields = append(fields, boolField("user-invocable", c.UserInvocable))
	}
	return renderMarkdown(fields, c.Body)
}

// ToCopilot converts to Copilot Prompt format. Tool/model tables and body
// placeholder substitution apply; the result has no opinion about target
// filename, only content.
func (c ClaudeCodeCommand) ToCopilot() CopilotPrompt {
	var tools []string
	if c.AllowedTools != "" {
		converted := ToolsClaudeToCopilot(ParseAllowedTools(c.AllowedTools))
		if len(converted) > 0 {
			tools = converted
		}
	}
	model := ""
	if c.Model != "" {
		model = ModelClaudeToCopilot(c.Model)
	}
	return CopilotPrompt{
		Name:        c.Name,
		Description: c.Description,
		Tools:       tools,
		Hint:        c.ArgumentHint,
		Model:       model,
		Body:        BodyClaudeToCopilot(c.Body),
	}
}

// ToCodex converts to Codex Prompt format. Codex prompts carry no name or
// tool metadata in frontmatter.
func (c ClaudeCodeCommand) ToCodex() CodexPrompt {
	return CodexPrompt{
		Description: c.Description,
		Body:        BodyClaudeToCopilot(c.Body), // Codex uses the same ${arg} placeholder style.
	}
}

// CopilotPrompt is a parsed `.github/prompts/<name>.prompt.md` document.
type CopilotPrompt struct {
	Name        string
	Description string
	Tools       []string
	Hint        string
	Model       string
	Agent       string
	Body        string
}

type copilotPromptFrontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tools       []string `yaml:"tools"`
	Hint        string   `yaml:"hint"`
	Model       string   `yaml:"model"`
	Agent       string   `yaml:"agent"`
}

// ParseCopilotPrompt parses a Copilot Prompt from its raw content.
func ParseCopilotPrompt(content string) (CopilotPrompt, error) {
	var fm copilotPromptFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return CopilotPrompt{}, err
	}
	return CopilotPrompt{
		Name:        normalizeName(fm.Name),
		Description: fm.Description,
		Tools:       fm.Tools,
		Hint:        fm.Hint,
		Model:       fm.Model,
		Agent:       fm.Agent,
		Body:        body,
	}, nil
}

// NameFromPromptFilename strips ".prompt.md" (preferred) or ".md".
func NameFromPromptFilename(filename string) string {
	return nameFromFilename(filename, ".prompt.md", ".md")
}

// ToMarkdown serializes back to Copilot Prompt markdown.
func (p CopilotPrompt) ToMarkdown() string {
	var fields []string
	if p.Name != "" {
		fields = append(fields, "name: "+EscapeYAMLString(p.Name))
	}
	if p.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(p.Description))
	}
	if len(p.Tools) > 0 {
		fields = append(fields, "tools: ["+yamlStringArray(p.Tools)+"]")
	}
	if p.Hint != "" {
		fields = append(fields, "hint: "+EscapeYAMLString(p.Hint))
	}
	if p.Model != "" {
		fields = append(fields, "model: "+p.Model)
	}
	if p.Agent != "" {
		fields = append(fields, "agent: "+EscapeYAMLString(p.Agent))
	}
	return renderMarkdown(fields, p.Body)
}

// CodexPrompt is a parsed `~/.codex/prompts/<name>.md` document. Codex
// carries no name field in frontmatter; Name is only populated when loaded
// from a file path.
type CodexPrompt struct {
	Name        string
	Description string
	Body        string
}

type codexPromptFrontmatter struct {
	Description string `yaml:"description"`
}

// ParseCodexPrompt parses a Codex Prompt from its raw content. Name is
// always empty; callers loading from a file should set it from the
// filename.
func ParseCodexPrompt(content string) (CodexPrompt, error) {
	var fm codexPromptFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return CodexPrompt{}, err
	}
	return CodexPrompt{Description: fm.Description, Body: body}, nil
}

// ToMarkdown serializes back to Codex Prompt markdown.
func (p CodexPrompt) ToMarkdown() string {
	var fields []string
	if p.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(p.Description))
	}
	return renderMarkdown(fields, p.Body)
}

func boolField(key string, v bool) string {
	if v {
		return key + ": true"
	}
	return key + ": false"
}

func yamlStringArray(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(it, "'", "''"))
		b.WriteByte('\'')
	}
	return b.String()
}

func renderMarkdown(fields []string, body string) string {
	if len(fields) == 0 {
		return body
	}
	return "---\n" + strings.Join(fields, "\n") + "\n---\n\n" + body
}
