package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	canvasURI        = "builder://canvas"
	projectsURI      = "builder://projects"
	projectURIPrefix = "builder://project/"
	templatesURI     = "builder://templates"
)

func (s *Server) registerResources() {
	// ── builder://canvas ───────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		canvasURI,
		"Current Canvas",
		mcp.WithResourceDescription("Components on the working canvas, in order"),
		mcp.WithMIMEType("application/json"),
	), s.handleCanvasResource)

	// ── builder://projects ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		projectsURI,
		"Saved Projects",
		mcp.WithMIMEType("application/json"),
	), s.handleProjectsResource)

	// ── builder://templates ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"Block Templates",
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)

	// ── builder://project/{id} ─────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			projectURIPrefix+"{id}",
			"Saved Project",
		),
		s.handleProjectResource,
	)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleCanvasResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(canvasURI, canvasView{
		Session:    s.session.Info(),
		Components: s.session.Components(),
	})
}

func (s *Server) handleProjectsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := s.session.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(projectsURI, projects)
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(templatesURI, s.session.Library().Templates())
}

func (s *Server) handleProjectResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	projectID := strings.TrimPrefix(uri, projectURIPrefix)
	if projectID == "" || projectID == uri {
		return nil, fmt.Errorf("could not extract project id from URI: %s", uri)
	}
	project, err := s.session.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, project)
}
