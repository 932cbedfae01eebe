package scan

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/apparentlymart/go-shquot/shquot"
	"github.com/mattn/go-shellwords"
)

// CommandData is the data a scanner command template is executed with.
// Every field is already quoted for a POSIX shell, so the rendered line can
// be split back into argv without losing spaces.
type CommandData struct {
	Module string
	Args   string
	Output string
	Batch  string
}

// CommandTemplate is a parsed scanner command line, for example
//
//	clang-scan-deps -module-name {{ .Module }} {{ .Args }} -o {{ .Output }}
type CommandTemplate struct {
	tmpl *template.Template
}

// ParseCommand parses a scanner command template.
func ParseCommand(command string) (*CommandTemplate, error) {
	if command == "" {
		return nil, fmt.Errorf("scanner command is empty")
	}
	tmpl, err := template.New("command").Option("missingkey=error").Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parsing scanner command: %w", err)
	}
	return &CommandTemplate{tmpl: tmpl}, nil
}

// Argv renders the template and splits it into arguments.
func (c *CommandTemplate) Argv(data CommandData) ([]string, error) {
	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing scanner command template: %w", err)
	}
	argv, err := shellwords.Parse(buf.String())
	if err != nil {
		return nil, fmt.Errorf("splitting scanner command %q: %w", buf.String(), err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("scanner command renders to an empty command line")
	}
	return argv, nil
}

// requestData fills CommandData for a single request.
func requestData(req Request) CommandData {
	return CommandData{
		Module: quote(req.Module.Name),
		Args:   req.CommandLine,
		Output: quote(req.OutputPath),
	}
}

func quote(s string) string {
	return shquot.POSIXShell([]string{s})
}
