package parsecs

import (
	"fmt"
	"strings"
)

// renderDocText renders a doc node's mixed content into normalized text:
// <para> inserts blank lines, <code> becomes a fenced block, <see|seealso>
// become markdown links, <paramref|typeparamref> become inline code,
// <list> becomes dash-prefixed lines. Inline whitespace is collapsed
// line-by-line while fenced blocks are preserved verbatim.
func renderDocText(n *node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	renderChildren(&b, n.children)
	return cleanupText(b.String())
}

func renderChildren(b *strings.Builder, children []child) {
	for _, c := range children {
		if c.isText {
			b.WriteString(c.text)
			continue
		}
		renderNode(b, c.elem)
	}
}

func renderNode(b *strings.Builder, n *node) {
	switch n.tag {
	case "para":
		b.WriteString("\n\n")
		renderChildren(b, n.children)
		b.WriteString("\n\n")
	case "code":
		b.WriteString("\n```\n")
		b.WriteString(rawText(n))
		b.WriteString("\n```\n")
	case "see", "seealso":
		label, target, _ := parseSeeAlsoAttrs(n)
		if label == "" {
			label = rawText(n)
		}
		if label == "" {
			label = target
		}
		if target == "" {
			b.WriteString(label)
			return
		}
		fmt.Fprintf(b, "[%s](%s)", label, target)
	case "paramref", "typeparamref":
		name := n.attr("name")
		if name == "" {
			name = rawText(n)
		}
		fmt.Fprintf(b, "`%s`", name)
	case "list":
		b.WriteString("\n")
		for _, item := range n.childElements("item") {
			term := item.firstChildElement("term")
			desc := item.firstChildElement("description")
			line := strings.TrimSpace(renderDocText(desc))
			if term != nil {
				termText := strings.TrimSpace(renderDocText(term))
				if line != "" {
					line = termText + ": " + line
				} else {
					line = termText
				}
			}
			if line == "" {
				line = strings.TrimSpace(rawText(item))
			}
			fmt.Fprintf(b, "- %s\n", line)
		}
	default:
		renderChildren(b, n.children)
	}
}

// rawText concatenates only the direct and nested text runs of n,
// ignoring element structure — used for <code> blocks, which must be
// preserved verbatim.
func rawText(n *node) string {
	var b strings.Builder
	var walk func(*node)
	walk = func(n *node) {
		for _, c := range n.children {
			if c.isText {
				b.WriteString(c.text)
			} else {
				walk(c.elem)
			}
		}
	}
	walk(n)
	return strings.Trim(b.String(), "\n")
}

// parseSeeAlsoAttrs extracts (label, target, targetKind) from a <see> or
// <seealso> element: cref or href, plus any inline text as the label.
func parseSeeAlsoAttrs(n *node) (label, target, targetKind string) {
	label = strings.TrimSpace(rawText(n))
	if cref := n.attr("cref"); cref != "" {
		return label, cref, "symbol"
	}
	if href := n.attr("href"); href != "" {
		return label, href, "href"
	}
	return label, "", ""
}

// cleanupText collapses intra-line whitespace while leaving fenced code
// blocks verbatim, tracking fence depth line-by-line.
func cleanupText(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "```" {
			inFence = !inFence
			out = append(out, trimmed)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		out = append(out, collapseWhitespace(line))
	}
	text := strings.Join(out, "\n")
	// Collapse 3+ consecutive blank lines (from nested <para>) down to one.
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.Trim(text, "\n ")
}

func collapseWhitespace(line string) string {
	fields := strings.Fields(line)
	return strings.Join(fields, " ")
}
