package control

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithXHTML(),
		html.WithUnsafe(),
	),
)

// RenderDocBlockHTML renders a doc block's prose fields as one HTML preview
// fragment, doc-comment markdown (C# and rustdoc both permit embedded
// Markdown in summary/remarks text) converted to styled HTML the same way
// the teacher's own formatter converts markdown for delivery.
func RenderDocBlockHTML(block model.DocBlock) (string, error) {
	var out bytes.Buffer
	out.WriteString("<section class=\"doc-block\">\n")

	if err := renderMarkdownSection(&out, "Summary", block.Summary); err != nil {
		return "", err
	}
	if err := renderMarkdownSection(&out, "Remarks", block.Remarks); err != nil {
		return "", err
	}
	if err := renderMarkdownSection(&out, "Returns", block.Returns); err != nil {
		return "", err
	}

	out.WriteString("</section>\n")
	return out.String(), nil
}

func renderMarkdownSection(out *bytes.Buffer, heading, markdown string) error {
	if markdown == "" {
		return nil
	}
	out.WriteString("<h3>")
	out.WriteString(heading)
	out.WriteString("</h3>\n")
	return markdownRenderer.Convert([]byte(markdown), out)
}
