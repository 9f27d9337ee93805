package convert

import "strings"

// ClaudeCodeAgent is a parsed `.claude/agents/<name>.md` document.
type ClaudeCodeAgent struct {
	Name        string
	Description string
	Tools       string
	Model       string
	Body        string
}

type claudeCodeAgentFrontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tools       string `yaml:"tools"`
	Model       string `yaml:"model"`
}

// ParseClaudeCodeAgent parses a Claude Code Agent from its raw content.
func ParseClaudeCodeAgent(content string) (ClaudeCodeAgent, error) {
	var fm claudeCodeAgentFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return ClaudeCodeAgent{}, err
	}
	return ClaudeCodeAgent{
		Name:        normalizeName(fm.Name),
		Description: fm.Description,
		Tools:       fm.Tools,
		Model:       fm.Model,
		Body:        body,
	}, nil
}

// NameFromAgentFilename strips the ".md" extension from an agent filename.
func NameFromAgentFilename(filename string) string {
	return nameFromFilename(filename, ".md")
}

// ToMarkdown serializes back to Claude Code Agent markdown.
func (a ClaudeCodeAgent) ToMarkdown() string {
	var fields []string
	if a.Name != "" {
		fields = append(fields, "name: "+EscapeYAMLString(a.Name))
	}
	if a.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(a.Description))
	}
	if a.Tools != "" {
		fields = append(fields, "tools: "+EscapeYAMLString(a.Tools))
	}
	if a.Model != "" {
		fields = append(fields, "model: "+a.Model)
	}
	return renderMarkdown(fields, a.Body)
}

// ToCopilot converts to Copilot Agent format. The body is NOT converted:
// agent system prompts carry no $ARGUMENTS/$N placeholders.
func (a ClaudeCodeAgent) ToCopilot() CopilotAgent {
	var tools []string
	if a.Tools != "" {
		converted := ToolsClaudeToCopilot(ParseAllowedTools(a.Tools))
		if len(converted) > 0 {
			tools = converted
		}
	}
	model := ""
	if a.Model != "" {
		model = ModelClaudeToCopilot(a.Model)
	}
	return CopilotAgent{
		Name:        a.Name,
		Description: a.Description,
		Tools:       tools,
		Model:       model,
		Target:      "vscode",
		Body:        a.Body,
	}
}

// ToCodex converts to Codex Agent format.
func (a ClaudeCodeAgent) ToCodex() CodexAgent {
	return CodexAgent{Name: a.Name, Description: a.Description, Body: a.Body}
}

// CopilotAgentHandoff is one entry in a Copilot Agent's workflow handoffs.
type CopilotAgentHandoff struct {
	Agent   string
	Label   string
	Prompt  string
	Send    bool
	HasSend bool
}

// CopilotAgent is a parsed `.github/agents/<name>.agent.md` document.
type CopilotAgent struct {
	Name        string
	Description string
	Tools       []string
	Model       string
	Target      string
	Handoffs    []CopilotAgentHandoff
	Body        string
}

type copilotAgentHandoffYAML struct {
	Agent  string `yaml:"agent"`
	Label  string `yaml:"label"`
	Prompt string `yaml:"prompt"`
	Send   *bool  `yaml:"send"`
}

type copilotAgentFrontmatter struct {
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Tools       []string                  `yaml:"tools"`
	Model       string                    `yaml:"model"`
	Target      string                    `yaml:"target"`
	Handoffs    []copilotAgentHandoffYAML `yaml:"handoffs"`
}

// ParseCopilotAgent parses a Copilot Agent from its raw content.
func ParseCopilotAgent(content string) (CopilotAgent, error) {
	var fm copilotAgentFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return CopilotAgent{}, err
	}
	agent := CopilotAgent{
		Name:        normalizeName(fm.Name),
		Description: fm.Description,
		Tools:       fm.Tools,
		Model:       fm.Model,
		Target:      fm.Target,
		Body:        body,
	}
	for _, h := range fm.Handoffs {
		entry := CopilotAgentHandoff{Agent: h.Agent, Label: h.Label, Prompt: h.Prompt}
		if h.Send != nil {
			entry.HasSend = true
			entry.Send = *h.Send
		}
		agent.Handoffs = append(agent.Handoffs, entry)
	}
	return agent, nil
}

// NameFromAgentMDFilename strips ".agent.md" (preferred) or ".md".
func NameFromAgentMDFilename(filename string) string {
	return nameFromFilename(filename, ".agent.md", ".md")
}

// ToMarkdown serializes back to Copilot Agent markdown.
func (a CopilotAgent) ToMarkdown() string {
	var fields []string
	if a.Name != "" {
		fields = append(fields, "name: "+EscapeYAMLString(a.Name))
	}
	if a.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(a.Description))
	}
	if len(a.Tools) > 0 {
		fields = append(fields, "tools: ["+yamlStringArray(a.Tools)+"]")
	}
	if a.Model != "" {
		fields = append(fields, "model: "+a.Model)
	}
	if a.Target != "" {
		fields = append(fields, "target: "+a.Target)
	}
	if len(a.Handoffs) > 0 {
		fields = append(fields, "handoffs:")
		for _, h := range a.Handoffs {
			var hFields []string
			if h.Agent != "" {
				hFields = append(hFields, "agent: "+EscapeYAMLString(h.Agent))
			}
			if h.Label != "" {
				hFields = append(hFields, "label: "+EscapeYAMLString(h.Label))
			}
			if h.Prompt != "" {
				hFields = append(hFields, "prompt: "+EscapeYAMLString(h.Prompt))
			}
			if h.HasSend {
				hFields = append(hFields, boolField("send", h.Send))
			}
			if len(hFields) > 0 {
				fields = append(fields, "  - "+strings.Join(hFields, "\n    "))
			}
		}
	}
	return renderMarkdown(fields, a.Body)
}

// CodexAgent is a parsed `.codex/agents/<name>.agent.md` document. Codex
// carries no name field in frontmatter; Name is only populated when loaded
// from a file path.
type CodexAgent struct {
	Name        string
	Description string
	Body        string
}

type codexAgentFrontmatter struct {
	Description string `yaml:"description"`
}

// ParseCodexAgent parses a Codex Agent from its raw content.
func ParseCodexAgent(content string) (CodexAgent, error) {
	var fm codexAgentFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return CodexAgent{}, err
	}
	return CodexAgent{Description: fm.Description, Body: body}, nil
}

// ToMarkdown serializes back to Codex Agent markdown.
func (a CodexAgent) ToMarkdown() string {
	var fields []string
	if a.Description != "" {
		fields = append(fields, "description: "+EscapeYAMLString(a.Description))
	}
	return renderMarkdown(fields, a.Body)
}
