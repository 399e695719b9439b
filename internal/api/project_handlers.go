package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Info())
}

func (h *handlers) listProjects(c *gin.Context) {
	projects, err := h.session.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type nameRequest struct {
	Name string `json:"name"`
}

// createProject snapshots the working canvas under a new name.
func (h *handlers) createProject(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.session.NewProject(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) openProject(c *gin.Context) {
	p, err := h.session.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// deleteProject requires ?confirm=true.
func (h *handlers) deleteProject(c *gin.Context) {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.session.Delete(c.Request.Context(), c.Param("id"), confirm); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Info())
}

func (h *handlers) renameProject(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	info, err := h.session.Rename(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handlers) saveProject(c *gin.Context) {
	p, err := h.session.Save(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Summary())
}

// streamEvents relays session events as server-sent events until the
// client disconnects.
func (h *handlers) streamEvents(c *gin.Context) {
	if h.events == nil {
		c.Status(http.StatusNotImplemented)
		return
	}
	events, cancel := h.events.Subscribe(32)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(e.Event, e.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
