// Package web is a thin presentation layer over the two core operations,
// extract and search. Handlers hold no domain logic: they invoke the same
// functions the CLI does and render the outcome.
package web

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"scenescout/internal/extract"
	"scenescout/internal/store"
)

// Defaults pre-fill the UI forms and apply when a request omits a field.
type Defaults struct {
	VideoDir    string
	MetadataDir string
	FrameSkip   int
}

// Server exposes the process and search operations over HTTP.
type Server struct {
	echo     *echo.Echo
	det      extract.Detector
	defaults Defaults
}

// New builds the server around an already-started detector handle.
func New(det extract.Detector, defaults Defaults) *Server {
	if defaults.FrameSkip < 1 {
		defaults.FrameSkip = 30
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, det: det, defaults: defaults}
	e.GET("/", s.handleIndex)
	e.POST("/api/process", s.handleProcess)
	e.GET("/api/search", s.handleSearch)
	return s
}

// Handler exposes the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type processRequest struct {
	VideoDir    string `json:"video_dir"`
	MetadataDir string `json:"metadata_dir"`
	FrameSkip   int    `json:"frame_skip"`
	SaveFrames  bool   `json:"save_frames"`
}

type processResponse struct {
	Log string `json:"log"`
}

func (s *Server) handleProcess(c echo.Context) error {
	var req processRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.VideoDir == "" {
		req.VideoDir = s.defaults.VideoDir
	}
	if req.MetadataDir == "" {
		req.MetadataDir = s.defaults.MetadataDir
	}
	if req.FrameSkip < 1 {
		req.FrameSkip = s.defaults.FrameSkip
	}
	if s.det == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "detector is not available"})
	}

	// Synchronous on purpose: same single thread of control as the CLI.
	log, err := extract.ProcessDirectory(c.Request().Context(), req.VideoDir, req.MetadataDir,
		s.det, req.FrameSkip, req.SaveFrames)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, processResponse{Log: log})
}

func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
	}
	dir := c.QueryParam("dir")
	if dir == "" {
		dir = s.defaults.MetadataDir
	}

	results, err := store.New(dir).Search(query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTML(http.StatusOK, indexHTML)
}
