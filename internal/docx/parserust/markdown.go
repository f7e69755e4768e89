package parserust

import (
	"regexp"
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// parsedDocs is the structured result of splitting a rustdoc item's
// Markdown doc comment into DocBlock fields.
type parsedDocs struct {
	Summary    string
	Remarks    string
	Returns    string
	Value      string
	Safety     string
	Panics     string
	Errors     string
	Deprecated string
	Examples   []model.DocExample
	Notes      []string
	Warnings   []string
	SeeAlso    []model.SeeAlso
	Params     []model.DocParam
	TypeParams []model.DocTypeParam
	Sections   []model.DocSection
}

type docSection struct {
	heading string // "" for the leading, heading-less section
	body    []string
}

// splitSections splits doc lines into heading-delimited sections, tracking
// fenced-code-block depth so a "#" inside a ``` block is not mistaken for
// a heading.
func splitSections(text string) []docSection {
	lines := strings.Split(text, "\n")
	var sections []docSection
	current := docSection{}
	inFence := false

	flush := func() {
		sections = append(sections, current)
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			current.body = append(current.body, line)
			continue
		}
		if !inFence {
			if heading, ok := parseHeading(trimmed); ok {
				flush()
				current = docSection{heading: heading}
				continue
			}
		}
		current.body = append(current.body, line)
	}
	flush()
	return sections
}

var headingRE = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)

// parseHeading recognizes an ATX-style Markdown heading and returns its
// case-folded title.
func parseHeading(line string) (string, bool) {
	m := headingRE.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(m[1])), true
}

// splitSummaryRemarks splits the leading, heading-less section into its
// first paragraph (summary) and the remainder (remarks), on the first
// blank line.
func splitSummaryRemarks(lines []string) (summary, remarks string) {
	text := strings.Trim(strings.Join(lines, "\n"), "\n")
	if text == "" {
		return "", ""
	}
	paras := splitParagraphs(text)
	if len(paras) == 0 {
		return "", ""
	}
	summary = strings.TrimSpace(paras[0])
	if len(paras) > 1 {
		remarks = strings.TrimSpace(strings.Join(paras[1:], "\n\n"))
	}
	return summary, remarks
}

func splitParagraphs(text string) []string {
	rawParas := regexp.MustCompile(`\n\s*\n`).Split(text, -1)
	var paras []string
	for _, p := range rawParas {
		if strings.TrimSpace(p) != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// parseMarkdownDocs is the section-aware doc splitter described in the
// rustdoc parser design: the leading section becomes summary/remarks;
// known headings route to scalar/list/structured fields; anything else
// becomes a named DocSection.
func parseMarkdownDocs(docs string) parsedDocs {
	var out parsedDocs
	if strings.TrimSpace(docs) == "" {
		return out
	}

	sections := splitSections(docs)
	for i, sec := range sections {
		if sec.heading == "" {
			out.Summary, out.Remarks = splitSummaryRemarks(sec.body)
			continue
		}
		body := strings.TrimSpace(strings.Join(sec.body, "\n"))
		routeSection(&out, sec.heading, body)
		_ = i
	}
	return out
}

func routeSection(out *parsedDocs, heading, body string) {
	switch heading {
	case "errors":
		out.Errors = body
	case "panics":
		out.Panics = body
	case "safety":
		out.Safety = body
	case "returns":
		out.Returns = body
	case "value":
		out.Value = body
	case "deprecated":
		out.Deprecated = body
	case "examples":
		out.Examples = append(out.Examples, extractExamples(body)...)
	case "notes":
		out.Notes = append(out.Notes, splitListLines(body)...)
	case "warnings":
		out.Warnings = append(out.Warnings, splitListLines(body)...)
	case "see also":
		out.SeeAlso = append(out.SeeAlso, parseSeeAlsoSection(body)...)
	case "arguments", "parameters", "params", "args":
		out.Params = append(out.Params, parseParamSection(body)...)
	case "type parameters", "type params", "typeparam", "typeparams":
		out.TypeParams = append(out.TypeParams, parseTypeParamSection(body)...)
	default:
		out.Sections = append(out.Sections, model.DocSection{Title: heading, Body: body})
	}
}

var fencedExampleRE = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)\n?```")

// extractExamples walks fenced code blocks in an "Examples" section.
func extractExamples(body string) []model.DocExample {
	matches := fencedExampleRE.FindAllStringSubmatch(body, -1)
	examples := make([]model.DocExample, 0, len(matches))
	for _, m := range matches {
		examples = append(examples, model.DocExample{Lang: m[1], Code: m[2]})
	}
	return examples
}

func splitListLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

var markdownLinkRE = regexp.MustCompile(`^\[(.*?)\]\((.*?)\)(.*)$`)

// parseSeeAlsoSection parses a bullet list of "see also" references,
// attempting markdown [label](target) extraction per entry.
func parseSeeAlsoSection(body string) []model.SeeAlso {
	var out []model.SeeAlso
	for _, line := range splitListLines(body) {
		out = append(out, parseSeeAlsoLine(line))
	}
	return out
}

func parseSeeAlsoLine(line string) model.SeeAlso {
	if label, target, ok := parseMarkdownLink(line); ok {
		return model.SeeAlso{Label: label, Target: target}
	}
	return model.SeeAlso{Target: strings.TrimSpace(line)}
}

func parseMarkdownLink(line string) (label, target string, ok bool) {
	m := markdownLinkRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// parseParamSection parses a bullet list of "- name: description" entries.
func parseParamSection(body string) []model.DocParam {
	var out []model.DocParam
	for _, line := range splitListLines(body) {
		name, desc := splitParamItem(line)
		out = append(out, model.DocParam{Name: name, Description: desc})
	}
	return out
}

func splitParamItem(line string) (name, description string) {
	name, rest, found := strings.Cut(line, ":")
	if !found {
		name, rest, found = strings.Cut(line, "-")
	}
	if !found {
		return strings.TrimSpace(line), ""
	}
	name = strings.TrimSpace(strings.Trim(name, "`"))
	return name, strings.TrimSpace(rest)
}

func parseTypeParamSection(body string) []model.DocTypeParam {
	var out []model.DocTypeParam
	for _, line := range splitListLines(body) {
		name, desc := splitParamItem(line)
		out = append(out, model.DocTypeParam{Name: name, Description: desc})
	}
	return out
}
