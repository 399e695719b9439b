// Package api serves the builder over HTTP for the browser front end.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitebuilder/internal/auth"
	"sitebuilder/internal/monitoring"
	"sitebuilder/internal/service"
)

// Deps are the services the handlers call into.
type Deps struct {
	Session *service.Session
	Auth    *auth.Client
	Events  *service.Broadcaster
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Login   RateLimitConfig
}

type handlers struct {
	session *service.Session
	auth    *auth.Client
	events  *service.Broadcaster
	logger  *zap.Logger
}

// NewRouter builds the gin engine with every builder route.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &handlers{
		session: deps.Session,
		auth:    deps.Auth,
		events:  deps.Events,
		logger:  deps.Logger,
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/routes", h.listRoutes)
	api.POST("/login", RateLimit(deps.Login), h.login)
	api.GET("/events", h.streamEvents)

	cat := api.Group("/catalog")
	cat.GET("/components", h.listComponentDefinitions)
	cat.GET("/templates", h.listTemplates)

	cv := api.Group("/canvas")
	cv.GET("", h.getCanvas)
	cv.POST("/components", h.addComponent)
	cv.PATCH("/components/:id", h.updateComponent)
	cv.DELETE("/components/:id", h.removeComponent)
	cv.PUT("/components/:id/style", h.updateStyle)
	cv.POST("/reorder", h.reorder)
	cv.POST("/move", h.move)
	cv.POST("/templates/:id", h.insertTemplate)
	cv.PUT("/selection", h.selectComponent)
	cv.DELETE("/selection", h.clearSelection)
	cv.PUT("/dragover", h.dragOver)
	cv.DELETE("/dragover", h.clearDragOver)

	api.GET("/inspector", h.inspect)
	api.PUT("/inspector/:key", h.applyControl)

	api.GET("/session", h.getSession)
	api.PUT("/session/name", h.renameProject)
	api.POST("/session/save", h.saveProject)

	api.GET("/projects", h.listProjects)
	api.POST("/projects", h.createProject)
	api.POST("/projects/:id/open", h.openProject)
	api.DELETE("/projects/:id", h.deleteProject)

	return r
}

// Route is a navigable page of the admin front end.
type Route struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Routes are open to everyone; there is no auth guard.
var Routes = []Route{
	{Path: "/", Name: "landing", Title: "Главная"},
	{Path: "/login", Name: "login", Title: "Вход"},
	{Path: "/dashboard", Name: "dashboard", Title: "Панель управления"},
	{Path: "/builder", Name: "builder", Title: "Конструктор"},
	{Path: "/products", Name: "products", Title: "Товары"},
}

func (h *handlers) listRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": Routes})
}
