package convert

import (
	"github.com/ruminaider/plm/internal/errs"
	"github.com/ruminaider/plm/internal/vfs"
)

// Format is a markdown component's dialect.
type Format int

const (
	ClaudeCode Format = iota
	Copilot
	Codex
)

func (f Format) String() string {
	switch f {
	case ClaudeCode:
		return "ClaudeCode"
	case Copilot:
		return "Copilot"
	case Codex:
		return "Codex"
	default:
		return "unknown"
	}
}

// Component distinguishes Command from Agent conversion, since each has its
// own frontmatter shape and body-conversion rule.
type Component int

const (
	CommandComponent Component = iota
	AgentComponent
)

// Result reports what ConvertAndWrite did.
type Result struct {
	Converted    bool
	SourceFormat Format
	DestFormat   Format
}

// ConvertAndWrite reads sourcePath, converts it from sourceFormat to
// destFormat if they differ, and atomically writes the result to destPath.
// Same-format pairs are copied byte-for-byte. Conversion is only supported
// starting from ClaudeCode; any other source format yields
// errs.UnsupportedConversion.
func ConvertAndWrite(fs vfs.FS, component Component, sourcePath, destPath string, sourceFormat, destFormat Format) (Result, error) {
	if sourceFormat == destFormat {
		content, err := fs.ReadToString(sourcePath)
		if err != nil {
			return Result{}, err
		}
		if err := atomicWrite(fs, destPath, content); err != nil {
			return Result{}, err
		}
		return Result{Converted: false, SourceFormat: sourceFormat, DestFormat: destFormat}, nil
	}

	content, err := fs.ReadToString(sourcePath)
	if err != nil {
		return Result{}, err
	}

	markdown, err := convertContent(component, content, sourceFormat, destFormat)
	if err != nil {
		return Result{}, err
	}

	if err := atomicWrite(fs, destPath, markdown); err != nil {
		return Result{}, err
	}
	return Result{Converted: true, SourceFormat: sourceFormat, DestFormat: destFormat}, nil
}

// convertContent dispatches on component kind; only ClaudeCode sources can
// be converted.
func convertContent(component Component, content string, sourceFormat, destFormat Format) (string, error) {
	if sourceFormat != ClaudeCode {
		return "", errs.New(errs.UnsupportedConversion, "convert.convertContent",
			errUnsupportedConversion{from: sourceFormat, to: destFormat})
	}

	switch component {
	case CommandComponent:
		cmd, err := ParseClaudeCodeCommand(content)
		if err != nil {
			return "", err
		}
		switch destFormat {
		case Copilot:
			return cmd.ToCopilot().ToMarkdown(), nil
		case Codex:
			return cmd.ToCodex().ToMarkdown(), nil
		default:
			return "", errs.New(errs.UnsupportedConversion, "convert.convertContent",
				errUnsupportedConversion{from: sourceFormat, to: destFormat})
		}
	case AgentComponent:
		agent, err := ParseClaudeCodeAgent(content)
		if err != nil {
			return "", err
		}
		switch destFormat {
		case Copilot:
			return agent.ToCopilot().ToMarkdown(), nil
		case Codex:
			return agent.ToCodex().ToMarkdown(), nil
		default:
			return "", errs.New(errs.UnsupportedConversion, "convert.convertContent",
				errUnsupportedConversion{from: sourceFormat, to: destFormat})
		}
	default:
		return "", errs.New(errs.UnsupportedConversion, "convert.convertContent",
			errUnsupportedConversion{from: sourceFormat, to: destFormat})
	}
}

// atomicWrite writes content to a sibling ".tmp" file and renames it into
// place, so a reader never observes a partially-written destination.
func atomicWrite(fs vfs.FS, destPath, content string) error {
	tmpPath := destPath + ".tmp"
	if err := fs.Write(tmpPath, []byte(content)); err != nil {
		return err
	}
	if err := fs.Rename(tmpPath, destPath); err != nil {
		_ = fs.RemoveFile(tmpPath)
		return err
	}
	return nil
}

type errUnsupportedConversion struct {
	from, to Format
}

func (e errUnsupportedConversion) Error() string {
	return "conversion from " + e.from.String() + " to " + e.to.String() + " is not supported"
}
