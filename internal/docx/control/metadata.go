package control

import (
	"strings"

	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/model"
)

// ProjectUpsertRequest is the upsert_project request shape. Aliases are
// merged case-insensitively into whatever the project already carries.
type ProjectUpsertRequest struct {
	ProjectID   string
	Name        string
	Language    string
	RootPath    string
	Description string
	Aliases     []string
}

// UpsertProject fetches the existing project (if any), applies the
// supplied fields, merges aliases, and re-derives SearchText.
func (p *Plane) UpsertProject(req ProjectUpsertRequest) (model.Project, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return model.Project{}, docxerr.Invalid("project_id is required")
	}

	project, err := p.store.GetProject(req.ProjectID)
	if err != nil && docxerr.KindOf(err) != docxerr.NotFound {
		return model.Project{}, err
	}
	if project == nil {
		project = &model.Project{ProjectID: req.ProjectID}
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Language != "" {
		project.Language = req.Language
	}
	if req.RootPath != "" {
		project.RootPath = req.RootPath
	}
	if req.Description != "" {
		project.Description = req.Description
	}

	mergeAliases(&project.Aliases, req.Aliases)

	if project.Name == "" && len(project.Aliases) > 0 {
		project.Name = project.Aliases[0]
	}

	project.SearchText = buildProjectSearchText(*project)

	return p.store.UpsertProject(*project)
}

// GetProject fetches a project by id.
func (p *Plane) GetProject(projectID string) (*model.Project, error) {
	return p.store.GetProject(projectID)
}

// ListProjects lists every project, sorted by id.
func (p *Plane) ListProjects(limit int) ([]model.Project, error) {
	return p.store.ListProjects(limit)
}

// SearchProjects matches a substring against name, id, or alias.
func (p *Plane) SearchProjects(pattern string, limit int) ([]model.Project, error) {
	return p.store.SearchProjects(pattern, limit)
}

// ListIngests lists a project's ingest records in store order; they are
// not sorted by ingest time.
func (p *Plane) ListIngests(projectID string, limit int) ([]model.Ingest, error) {
	return p.store.ListIngests(projectID, limit)
}

// GetIngest fetches one ingest record by its stored id.
func (p *Plane) GetIngest(ingestID string) (*model.Ingest, error) {
	return p.store.GetIngest(ingestID)
}

// ListDocSources lists a project's doc sources, optionally narrowed to one
// ingest.
func (p *Plane) ListDocSources(projectID, ingestID string, limit int) ([]model.DocSource, error) {
	return p.store.ListDocSources(projectID, ingestID, limit)
}

// GetDocSource fetches one doc source record by its stored id.
func (p *Plane) GetDocSource(docSourceID string) (*model.DocSource, error) {
	return p.store.GetDocSource(docSourceID)
}

// mergeAliases appends every trimmed, non-empty, not-yet-seen incoming
// alias onto target, comparing case-insensitively.
func mergeAliases(target *[]string, incoming []string) {
	seen := make(map[string]bool, len(*target))
	for _, alias := range *target {
		if trimmed := strings.ToLower(strings.TrimSpace(alias)); trimmed != "" {
			seen[trimmed] = true
		}
	}
	for _, alias := range incoming {
		trimmed := strings.TrimSpace(alias)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if !seen[key] {
			seen[key] = true
			*target = append(*target, trimmed)
		}
	}
}

// buildProjectSearchText derives a lowercase, deduplicated, pipe-joined
// blob from id/name/aliases for cheap substring search.
func buildProjectSearchText(project model.Project) string {
	seen := make(map[string]bool)
	var ordered []string
	push := func(value string) {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" || seen[trimmed] {
			return
		}
		seen[trimmed] = true
		ordered = append(ordered, trimmed)
	}

	push(project.ProjectID)
	push(project.Name)
	for _, alias := range project.Aliases {
		push(alias)
	}

	if len(ordered) == 0 {
		return ""
	}
	return strings.Join(ordered, "|")
}
