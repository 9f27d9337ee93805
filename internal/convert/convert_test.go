package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruminaider/plm/internal/convert"
	"github.com/ruminaider/plm/internal/vfs"
)

func TestParseClaudeCodeCommand(t *testing.T) {
	t.Run("full frontmatter round-trips body exactly", func(t *testing.T) {
		content := "---\n" +
			"name: commit\n" +
			"description: Create a commit\n" +
			"allowed-tools: Bash(git:*), Read\n" +
			"argument-hint: \"[message]\"\n" +
			"model: sonnet\n" +
			"---\n\n" +
			"Run $ARGUMENTS against $1.\n\nSecond paragraph.\n"

		cmd, err := convert.ParseClaudeCodeCommand(content)
		require.NoError(t, err)
		assert.Equal(t, "commit", cmd.Name)
		assert.Equal(t, "Create a commit", cmd.Description)
		assert.Equal(t, "Bash(git:*), Read", cmd.AllowedTools)
		assert.Equal(t, "[message]", cmd.ArgumentHint)
		assert.Equal(t, "sonnet", cmd.Model)
		assert.Equal(t, "\nRun $ARGUMENTS against $1.\n\nSecond paragraph.\n", cmd.Body)
	})

	t.Run("no frontmatter yields full content as body", func(t *testing.T) {
		cmd, err := convert.ParseClaudeCodeCommand("just a body\nwith two lines\n")
		require.NoError(t, err)
		assert.Empty(t, cmd.Name)
		assert.Equal(t, "just a body\nwith two lines\n", cmd.Body)
	})

	t.Run("empty frontmatter block yields zero-value fields", func(t *testing.T) {
		cmd, err := convert.ParseClaudeCodeCommand("---\n---\nbody text\n")
		require.NoError(t, err)
		assert.Empty(t, cmd.Name)
		assert.Equal(t, "body text\n", cmd.Body)
	})

	t.Run("delimiters with surrounding whitespace still parse as frontmatter", func(t *testing.T) {
		cmd, err := convert.ParseClaudeCodeCommand("  ---  \nname: commit\n  ---\nbody text\n")
		require.NoError(t, err)
		assert.Equal(t, "commit", cmd.Name)
		assert.Equal(t, "body text\n", cmd.Body)
	})

	t.Run("closing delimiter with extra trailing dashes still parses as frontmatter", func(t *testing.T) {
		cmd, err := convert.ParseClaudeCodeCommand("---\nname: commit\n----\nbody text\n")
		require.NoError(t, err)
		assert.Equal(t, "commit", cmd.Name)
		assert.Equal(t, "body text\n", cmd.Body)
	})
}

func TestClaudeCodeCommandToCopilot(t *testing.T) {
	cmd := convert.ClaudeCodeCommand{
		Name:         "commit",
		Description:  "Create a commit",
		AllowedTools: "Bash(git:*), Read, Write",
		ArgumentHint: "[message]",
		Model:        "haiku",
		Body:         "Do $ARGUMENTS with $1 and $2.",
	}

	prompt := cmd.ToCopilot()
	assert.Equal(t, "commit", prompt.Name)
	assert.ElementsMatch(t, []string{"githubRepo", "codebase"}, prompt.Tools)
	assert.Equal(t, "GPT-4o-mini", prompt.Model)
	assert.Equal(t, "Do ${arguments} with ${arg1} and ${arg2}.", prompt.Body)

	markdown := prompt.ToMarkdown()
	assert.Contains(t, markdown, "name: commit")
	assert.Contains(t, markdown, "tools: [")
}

func TestClaudeCodeCommandToCodex(t *testing.T) {
	cmd := convert.ClaudeCodeCommand{
		Description: "Create a commit",
		Body:        "Do $ARGUMENTS.",
	}
	prompt := cmd.ToCodex()
	assert.Equal(t, "Create a commit", prompt.Description)
	assert.Equal(t, "Do ${arguments}.", prompt.Body)
	assert.Contains(t, prompt.ToMarkdown(), "description: Create a commit")
}

func TestClaudeCodeAgentToCopilotBodyUnconverted(t *testing.T) {
	agent := convert.ClaudeCodeAgent{
		Name:        "reviewer",
		Description: "Reviews code",
		Tools:       "Read, Grep",
		Model:       "opus",
		Body:        "You review $ARGUMENTS verbatim.",
	}
	copilotAgent := agent.ToCopilot()
	assert.Equal(t, "reviewer", copilotAgent.Name)
	assert.Equal(t, "o1", copilotAgent.Model)
	assert.Equal(t, "vscode", copilotAgent.Target)
	assert.Equal(t, "You review $ARGUMENTS verbatim.", copilotAgent.Body, "agent body must not undergo placeholder conversion")
}

func TestEscapeYAMLString(t *testing.T) {
	assert.Equal(t, "plain", convert.EscapeYAMLString("plain"))
	assert.Equal(t, `"has: colon"`, convert.EscapeYAMLString("has: colon"))
	assert.Equal(t, `"quote \"inside\""`, convert.EscapeYAMLString(`quote "inside"`))
}

func TestConvertAndWriteSameFormatCopiesVerbatim(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddFile("/src/commit.md", "---\nname: commit\n---\n\nbody\n")

	result, err := convert.ConvertAndWrite(fs, convert.CommandComponent, "/src/commit.md", "/dst/commit.md", convert.ClaudeCode, convert.ClaudeCode)
	require.NoError(t, err)
	assert.False(t, result.Converted)

	got, err := fs.ReadToString("/dst/commit.md")
	require.NoError(t, err)
	assert.Equal(t, "---\nname: commit\n---\n\nbody\n", got)
}

func TestConvertAndWriteClaudeToCopilot(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddFile("/src/commit.md", "---\nname: commit\ndescription: test\n---\n\nRun $ARGUMENTS.\n")

	result, err := convert.ConvertAndWrite(fs, convert.CommandComponent, "/src/commit.md", "/dst/commit.prompt.md", convert.ClaudeCode, convert.Copilot)
	require.NoError(t, err)
	assert.True(t, result.Converted)

	got, err := fs.ReadToString("/dst/commit.prompt.md")
	require.NoError(t, err)
	assert.Contains(t, got, "${arguments}")
	assert.NotContains(t, got, ".tmp")
}

func TestConvertAndWriteRejectsNonClaudeSource(t *testing.T) {
	fs := vfs.NewMock()
	fs.AddFile("/src/commit.prompt.md", "---\nname: commit\n---\n\nbody\n")

	_, err := convert.ConvertAndWrite(fs, convert.CommandComponent, "/src/commit.prompt.md", "/dst/commit.md", convert.Copilot, convert.Codex)
	require.Error(t, err)
}
