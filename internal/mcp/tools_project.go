package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerProjectTools() {
	// ── list_projects ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List saved projects with their component counts"),
	), s.handleListProjects)

	// ── new_project ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("new_project",
		mcp.WithDescription("Save the current canvas as a new project and make it the active one"),
		mcp.WithString("name", mcp.Description("Project name"), mcp.Required()),
	), s.handleNewProject)

	// ── open_project ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_project",
		mcp.WithDescription("Replace the canvas with a saved project's components"),
		mcp.WithString("id", mcp.Description("Project ID"), mcp.Required()),
	), s.handleOpenProject)

	// ── delete_project ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a saved project. Requires confirm=true."),
		mcp.WithString("id", mcp.Description("Project ID"), mcp.Required()),
		mcp.WithBoolean("confirm", mcp.Description("Must be true to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteProject)

	// ── save_project ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Write the active project now instead of waiting for autosave"),
	), s.handleSaveProject)
}

func (s *Server) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.session.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(projects)
}

func (s *Server) handleNewProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "name")
	if err != nil {
		return nil, err
	}
	project, err := s.session.NewProject(ctx, name)
	if err != nil {
		return nil, err
	}
	return jsonResult(project.Summary())
}

func (s *Server) handleOpenProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := requireString(req.GetArguments(), "id")
	if err != nil {
		return nil, err
	}
	project, err := s.session.Open(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return jsonResult(project)
}

func (s *Server) handleDeleteProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	projectID, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	confirm, _ := args["confirm"].(bool)
	if err := s.session.Delete(ctx, projectID, confirm); err != nil {
		return nil, err
	}
	return textResult("deleted project " + projectID), nil
}

func (s *Server) handleSaveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := s.session.Save(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(project.Summary())
}
