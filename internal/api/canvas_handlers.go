package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sitebuilder/internal/domain"
)

// Canvas operations on missing ids or unknown kinds are no-ops, reported as
// {"applied": false} with status 200.

func (h *handlers) listComponentDefinitions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"components": h.session.Library().Components()})
}

func (h *handlers) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.session.Library().Templates()})
}

func (h *handlers) getCanvas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"components": h.session.Components(),
		"session":    h.session.Info(),
	})
}

type addRequest struct {
	Type domain.Kind `json:"type" binding:"required"`
}

func (h *handlers) addComponent(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id, ok := h.session.Add(c.Request.Context(), req.Type)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"applied": false})
		return
	}
	comp, _ := h.session.Component(id)
	c.JSON(http.StatusCreated, gin.H{"applied": true, "id": id, "component": comp})
}

func (h *handlers) updateComponent(c *gin.Context) {
	var patch domain.ComponentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	applied := h.session.Update(c.Request.Context(), c.Param("id"), patch)
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (h *handlers) removeComponent(c *gin.Context) {
	applied := h.session.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

type styleRequest struct {
	Key   domain.StyleKey `json:"key" binding:"required"`
	Value string          `json:"value"`
}

func (h *handlers) updateStyle(c *gin.Context) {
	var req styleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Key.Valid() {
		h.fail(c, domain.ErrUnknownStyleKey)
		return
	}
	applied := h.session.UpdateStyle(c.Request.Context(), c.Param("id"), req.Key, req.Value)
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

type reorderRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
}

func (h *handlers) reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	applied := h.session.Reorder(c.Request.Context(), req.SourceID, req.TargetID)
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

type moveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func (h *handlers) move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	applied := h.session.Move(c.Request.Context(), *req.From, *req.To)
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

func (h *handlers) insertTemplate(c *gin.Context) {
	ids, err := h.session.InsertTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}

type idRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *handlers) selectComponent(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": h.session.Select(req.ID)})
}

func (h *handlers) clearSelection(c *gin.Context) {
	h.session.ClearSelection()
	c.Status(http.StatusNoContent)
}

func (h *handlers) dragOver(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": h.session.DragOver(req.ID)})
}

func (h *handlers) clearDragOver(c *gin.Context) {
	h.session.ClearDragOver()
	c.Status(http.StatusNoContent)
}

// ── Inspector ──────────────────────────────────────────────

func (h *handlers) inspect(c *gin.Context) {
	comp, controls, ok := h.session.Inspect()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no component selected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"component": comp, "controls": controls})
}

type controlRequest struct {
	ID    string `json:"id"` // defaults to the selection
	Value string `json:"value"`
}

func (h *handlers) applyControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ID == "" && h.session.Info().SelectedID == "" {
		badRequest(c, errors.New("no component selected"))
		return
	}
	if err := h.session.ApplyControl(c.Request.Context(), req.ID, c.Param("key"), req.Value); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": true})
}
