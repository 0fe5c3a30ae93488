package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/altinukshini/gha-reaper/internal/model"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders the markdown report as a standalone HTML page.
func HTML(meta Meta, rows []model.AuditRow) (string, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(Markdown(rows)), &body); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}

	s := Summarize(rows)
	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Workflow reaper report</title>\n</head>\n<body>\n")
	fmt.Fprintf(&out, "<h1>Workflow reaper report</h1>\n")
	fmt.Fprintf(&out, "<p>Invocation %s at %s: %d candidates, %d stopped, %d failed, %d dry run.</p>\n",
		html.EscapeString(meta.InvocationID), meta.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		s.Candidates, s.Stopped, s.Failed, s.DryRun)
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.String(), nil
}
