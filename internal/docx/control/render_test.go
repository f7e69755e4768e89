package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

func TestRenderDocBlockHTMLRendersNonEmptySections(t *testing.T) {
	html, err := RenderDocBlockHTML(model.DocBlock{
		Summary: "Computes the **sum** of two numbers.",
		Remarks: "Overflow is not checked.",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>Summary</h3>")
	assert.Contains(t, html, "<strong>sum</strong>")
	assert.Contains(t, html, "<h3>Remarks</h3>")
	assert.NotContains(t, html, "<h3>Returns</h3>")
}

func TestRenderDocBlockHTMLEmptyBlockRendersEmptySection(t *testing.T) {
	html, err := RenderDocBlockHTML(model.DocBlock{})
	require.NoError(t, err)
	assert.Equal(t, "<section class=\"doc-block\">\n</section>\n", html)
}
