package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/domain"
)

func (s *Server) registerCatalogTools() {
	// ── list_component_kinds ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_component_kinds",
		mcp.WithDescription("List the component kinds that can be placed on the canvas, with their default content and styles"),
	), s.handleListKinds)

	// ── list_templates ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the block templates (hero, features, cta, ...) that insert several components at once"),
	), s.handleListTemplates)
}

func (s *Server) registerCanvasTools() {
	// ── get_canvas ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_canvas",
		mcp.WithDescription("Return every component on the canvas in order, plus the session state"),
	), s.handleGetCanvas)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Append a component of the given kind with its default content and styles"),
		mcp.WithString("type",
			mcp.Description("Component kind"),
			mcp.Required(),
			mcp.Enum(kindNames()...),
		),
	), s.handleAddComponent)

	// ── update_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Change the content of a component and/or merge style values into it"),
		mcp.WithString("id", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content (text, or image URL for images)")),
		mcp.WithString("backgroundColor", mcp.Description("CSS color, e.g. #ffffff")),
		mcp.WithString("textColor", mcp.Description("CSS color, e.g. #000000")),
		mcp.WithString("fontSize", mcp.Description("CSS size, e.g. 16px")),
		mcp.WithString("padding", mcp.Description("CSS padding, e.g. 10px")),
		mcp.WithString("textAlign", mcp.Description("Text alignment"), mcp.Enum("left", "center", "right")),
	), s.handleUpdateComponent)

	// ── update_component_style ─────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component_style",
		mcp.WithDescription("Set one attribute through the inspector; refuses attributes the component kind does not offer"),
		mcp.WithString("id", mcp.Description("Component ID (defaults to the selected component)")),
		mcp.WithString("key",
			mcp.Description("Attribute to set: content or a style key"),
			mcp.Required(),
			mcp.Enum(append([]string{"content"}, styleKeyNames()...)...),
		),
		mcp.WithString("value", mcp.Description("New value"), mcp.Required()),
	), s.handleUpdateStyle)

	// ── remove_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Remove a component from the canvas"),
		mcp.WithString("id", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveComponent)

	// ── reorder_components ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_components",
		mcp.WithDescription("Move a component to the position of another one, as a drag-and-drop drop would"),
		mcp.WithString("sourceId", mcp.Description("Component being moved"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Component it is dropped onto"), mcp.Required()),
	), s.handleReorder)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move the component at one position to another (0-based indices)"),
		mcp.WithNumber("from", mcp.Description("Current index"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Target index"), mcp.Required()),
	), s.handleMove)

	// ── insert_template ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_template",
		mcp.WithDescription("Append all components of a block template to the canvas"),
		mcp.WithString("templateId", mcp.Description("Template ID, see list_templates"), mcp.Required()),
	), s.handleInsertTemplate)
}

func kindNames() []string {
	out := make([]string, len(domain.Kinds))
	for i, k := range domain.Kinds {
		out[i] = string(k)
	}
	return out
}

func styleKeyNames() []string {
	out := make([]string, len(domain.StyleKeys))
	for i, k := range domain.StyleKeys {
		out[i] = string(k)
	}
	return out
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListKinds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Library().Components())
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Library().Templates())
}

type canvasView struct {
	Session    domain.SessionInfo `json:"session"`
	Components []domain.Component `json:"components"`
}

func (s *Server) handleGetCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(canvasView{
		Session:    s.session.Info(),
		Components: s.session.Components(),
	})
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	compID, ok := s.session.Add(ctx, domain.Kind(kind))
	if !ok {
		return nil, fmt.Errorf("add component %q: %w", kind, domain.ErrUnknownKind)
	}
	comp, _ := s.session.Component(compID)
	return jsonResult(comp)
}

func (s *Server) handleUpdateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	compID, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}

	var patch domain.ComponentPatch
	if v, ok := args["content"].(string); ok {
		patch.Content = &v
	}
	for _, key := range domain.StyleKeys {
		if v, ok := args[string(key)].(string); ok && v != "" {
			if patch.Styles == nil {
				patch.Styles = domain.Style{}
			}
			patch.Styles[key] = v
		}
	}
	if patch.Content == nil && len(patch.Styles) == 0 {
		return nil, fmt.Errorf("nothing to update: pass content or at least one style")
	}

	if !s.session.Update(ctx, compID, patch) {
		return appliedResult(false, "update_component"), nil
	}
	comp, _ := s.session.Component(compID)
	return jsonResult(comp)
}

func (s *Server) handleUpdateStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	key, err := requireString(args, "key")
	if err != nil {
		return nil, err
	}
	value, _ := args["value"].(string)
	compID, _ := args["id"].(string)

	if err := s.session.ApplyControl(ctx, compID, key, value); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return appliedResult(false, "update_component_style"), nil
		}
		return nil, err
	}
	return appliedResult(true, "update_component_style"), nil
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	compID, err := requireString(req.GetArguments(), "id")
	if err != nil {
		return nil, err
	}
	return appliedResult(s.session.Remove(ctx, compID), "remove_component"), nil
}

func (s *Server) handleReorder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sourceID, err := requireString(args, "sourceId")
	if err != nil {
		return nil, err
	}
	targetID, err := requireString(args, "targetId")
	if err != nil {
		return nil, err
	}
	if !s.session.Reorder(ctx, sourceID, targetID) {
		return appliedResult(false, "reorder_components"), nil
	}
	return jsonResult(s.session.Components())
}

func (s *Server) handleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, ok := getInt(args, "from")
	if !ok {
		return nil, fmt.Errorf("from is required")
	}
	to, ok := getInt(args, "to")
	if !ok {
		return nil, fmt.Errorf("to is required")
	}
	if !s.session.Move(ctx, from, to) {
		return appliedResult(false, "move_component"), nil
	}
	return jsonResult(s.session.Components())
}

func (s *Server) handleInsertTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templateID, err := requireString(req.GetArguments(), "templateId")
	if err != nil {
		return nil, err
	}
	ids, err := s.session.InsertTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"templateId": templateID, "inserted": ids})
}
