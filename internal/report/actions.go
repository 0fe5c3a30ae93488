package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// newDelimiter is replaced in tests.
var newDelimiter = func() string {
	return "ghadelimiter_" + uuid.NewString()
}

// SetOutput appends a step output to the file named by GITHUB_OUTPUT,
// using the multiline heredoc form.
func SetOutput(path, name, value string) error {
	delimiter := newDelimiter()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("output %q contains its delimiter %q", name, delimiter)
	}
	return appendFile(path, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter))
}

// AppendStepSummary appends markdown to the file named by
// GITHUB_STEP_SUMMARY.
func AppendStepSummary(path, heading, markdown string) error {
	var b strings.Builder
	if heading != "" {
		b.WriteString("## " + heading + "\n\n")
	}
	b.WriteString(markdown)
	b.WriteString("\n\n")
	return appendFile(path, b.String())
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
