// Package api exposes the label engine over HTTP and WebSocket.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lubritrack/label-engine/internal/composer"
	"github.com/lubritrack/label-engine/internal/document"
	"github.com/lubritrack/label-engine/internal/pdf"
	"github.com/lubritrack/label-engine/internal/printer"
	"github.com/lubritrack/label-engine/internal/store"
	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// Server is the API server.
type Server struct {
	router   *gin.Engine
	composer *composer.Composer
	docs     *document.Renderer
	pdf      *pdf.Renderer
	store    store.ConfigurationStore
	cache    *store.PresetCache
	queue    *printer.Queue
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// Options collects the server's collaborators. PDF, cache and queue
// are optional; their endpoints report 503 when absent.
type Options struct {
	Composer *composer.Composer
	Store    store.ConfigurationStore
	Cache    *store.PresetCache
	PDF      *pdf.Renderer
	Queue    *printer.Queue
	Log      zerolog.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(opts Options, middleware ...gin.HandlerFunc) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware...)

	server := &Server{
		router:   router,
		composer: opts.Composer,
		docs:     document.NewRenderer(opts.Composer),
		pdf:      opts.PDF,
		store:    opts.Store,
		cache:    opts.Cache,
		queue:    opts.Queue,
		log:      opts.Log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin may connect
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	// Label composition
	s.router.POST("/labels", s.handleCreateLabel)
	s.router.GET("/labels/:domain/png", s.handleLabelPNG)
	s.router.GET("/labels/:domain/tag.png", s.handleServiceTag)

	// Printable documents
	s.router.POST("/documents/label", s.handleLabelDocument)
	s.router.POST("/documents/batch", s.handleBatchDocument)
	s.router.POST("/documents/label/pdf", s.handleLabelPDF)

	// Per-shop configuration
	s.router.GET("/shops/:id/config", s.handleGetConfig)
	s.router.PUT("/shops/:id/config", s.handleSaveConfig)
	s.router.POST("/shops/:id/config/reset", s.handleResetConfig)

	// Direct printing
	s.router.POST("/print", s.handlePrint)
	s.router.GET("/jobs", s.handleGetJobs)
	s.router.GET("/jobs/:id", s.handleGetJob)
	s.router.POST("/jobs/clear", s.handleClearJobs)

	// WebSocket
	s.router.GET("/ws", s.handleWebSocket)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

type labelRequest struct {
	VehicleID  string                   `json:"vehicle_id"`
	ShopID     string                   `json:"shop_id"`
	LogoSource string                   `json:"logo_source"`
	Style      labelformat.StyleOptions `json:"style"`
}

// handleCreateLabel composes a label and returns its PNG data URI.
func (s *Server) handleCreateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.VehicleID == "" {
		c.JSON(400, gin.H{"error": "vehicle_id is required"})
		return
	}

	opts := s.styleFor(req.ShopID, req.Style)

	var (
		uri string
		err error
	)
	switch {
	case req.LogoSource != "":
		uri, err = s.composer.ComposeWithLogo(c.Request.Context(), req.VehicleID, req.LogoSource, opts)
	case labelformat.ModeFor(opts) == labelformat.ModeCaptioned:
		uri, err = s.composer.Compose(c.Request.Context(), req.VehicleID, opts)
	default:
		uri, err = s.composer.ComposePlain(c.Request.Context(), req.VehicleID, opts.QRPixelSize)
	}
	if err != nil {
		s.composeError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"vehicle_id": req.VehicleID,
		"mode":       string(labelformat.ModeFor(opts)),
		"image":      uri,
	})
}

// handleLabelPNG serves the label as raw PNG bytes for <img> tags.
func (s *Server) handleLabelPNG(c *gin.Context) {
	domain := c.Param("domain")

	opts := s.styleFor(c.Query("shop_id"), labelformat.StyleOptions{
		PrimaryCaption: c.Query("caption"),
		ShopName:       c.Query("shop_name"),
	})

	var (
		uri string
		err error
	)
	if labelformat.ModeFor(opts) == labelformat.ModeCaptioned {
		uri, err = s.composer.Compose(c.Request.Context(), domain, opts)
	} else {
		uri, err = s.composer.ComposePlain(c.Request.Context(), domain, opts.QRPixelSize)
	}
	if err != nil {
		s.composeError(c, err)
		return
	}

	png, err := composer.DecodePNGDataURI(uri)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.Data(200, "image/png", png)
}

// handleServiceTag serves a Code128 service tag as PNG.
func (s *Server) handleServiceTag(c *gin.Context) {
	record := labelformat.ServiceRecord{VehicleID: c.Param("domain")}
	if n, err := strconv.Atoi(c.Query("change")); err == nil && n > 0 {
		record.ChangeNumber = n
	}

	uri, err := s.composer.ComposeServiceTag(record)
	if err != nil {
		s.composeError(c, err)
		return
	}

	png, err := composer.DecodePNGDataURI(uri)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.Data(200, "image/png", png)
}

type documentRequest struct {
	Record  labelformat.ServiceRecord   `json:"record"`
	Records []labelformat.ServiceRecord `json:"records"`
	Shop    labelformat.ShopProfile     `json:"shop"`
	ShopID  string                      `json:"shop_id"`
	Style   labelformat.StyleOptions    `json:"style"`
}

// handleLabelDocument renders the single-label HTML document.
// ?autoprint=true arms the browser print trigger.
func (s *Server) handleLabelDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	autoprint := c.Query("autoprint") == "true"
	opts := s.styleFor(req.ShopID, req.Style)

	html, err := s.docs.RenderLabel(c.Request.Context(), req.Record, req.Shop, opts, autoprint)
	if err != nil {
		s.documentError(c, err)
		return
	}

	c.Data(200, "text/html; charset=utf-8", []byte(html))
}

// handleBatchDocument renders the multi-label grid document.
func (s *Server) handleBatchDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	autoprint := c.Query("autoprint") == "true"
	opts := s.styleFor(req.ShopID, req.Style)

	html, err := s.docs.RenderBatch(c.Request.Context(), req.Records, req.Shop, opts, autoprint)
	if err != nil {
		s.documentError(c, err)
		return
	}

	c.Data(200, "text/html; charset=utf-8", []byte(html))
}

// handleLabelPDF renders the label document and prints it to PDF
// through headless Chrome.
func (s *Server) handleLabelPDF(c *gin.Context) {
	if s.pdf == nil {
		c.JSON(503, gin.H{"error": "pdf rendering is not configured"})
		return
	}

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	opts := s.styleFor(req.ShopID, req.Style)

	html, err := s.docs.RenderLabel(c.Request.Context(), req.Record, req.Shop, opts, false)
	if err != nil {
		s.documentError(c, err)
		return
	}

	paper := labelformat.PaperThermal
	if req.ShopID != "" {
		if cfg, err := s.store.Load(c.Request.Context(), req.ShopID); err == nil {
			paper = cfg.PaperSize
		}
	}

	data, err := s.pdf.Render(c.Request.Context(), html, paper)
	if err != nil {
		c.JSON(500, gin.H{"error": fmt.Sprintf("failed to render pdf: %v", err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=label-%s.pdf", req.Record.VehicleID))
	c.Data(200, "application/pdf", data)
}

// handleGetConfig returns the shop's configuration. A missing or
// unreadable record degrades to the defaults so label rendering never
// blocks on configuration state.
func (s *Server) handleGetConfig(c *gin.Context) {
	shopID := c.Param("id")

	cfg, err := s.store.Load(c.Request.Context(), shopID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn().Str("shop_id", shopID).Err(err).Msg("configuration load failed, serving defaults")
		}
		cfg = labelformat.DefaultConfiguration(shopID)
	}

	c.JSON(200, cfg)
}

// handleSaveConfig merges a partial update and returns the canonical
// stored configuration.
func (s *Server) handleSaveConfig(c *gin.Context) {
	shopID := c.Param("id")

	var patch labelformat.ConfigurationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	// Validate against the defaults so a bad patch never reaches disk.
	merged := patch.Apply(labelformat.DefaultConfiguration(shopID))
	if err := labelformat.Validate(&merged); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Save(c.Request.Context(), shopID, patch); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	cfg, err := s.store.Load(c.Request.Context(), shopID)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	if s.cache != nil {
		if err := s.cache.Put(shopID, cfg); err != nil {
			s.log.Warn().Str("shop_id", shopID).Err(err).Msg("preset cache write failed")
		}
	}

	c.JSON(200, cfg)
}

// handleResetConfig restores the shop's defaults.
func (s *Server) handleResetConfig(c *gin.Context) {
	shopID := c.Param("id")

	if err := s.store.Reset(c.Request.Context(), shopID); err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	if s.cache != nil {
		s.cache.Remove(shopID)
	}

	cfg, err := s.store.Load(c.Request.Context(), shopID)
	if err != nil {
		cfg = labelformat.DefaultConfiguration(shopID)
	}

	c.JSON(200, cfg)
}

// handlePrint composes a label and queues it for the thermal printer.
func (s *Server) handlePrint(c *gin.Context) {
	if s.queue == nil {
		c.JSON(503, gin.H{"error": "no printer configured"})
		return
	}

	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.VehicleID == "" {
		c.JSON(400, gin.H{"error": "vehicle_id is required"})
		return
	}

	opts := s.styleFor(req.ShopID, req.Style)

	uri, err := s.composer.Compose(c.Request.Context(), req.VehicleID, opts)
	if err != nil {
		s.composeError(c, err)
		return
	}

	img, err := composer.DecodeDataURI(uri)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	jobID := s.queue.Enqueue(req.VehicleID, img)
	s.BroadcastJobQueued(jobID, req.VehicleID)

	c.JSON(200, gin.H{
		"success": true,
		"job_id":  jobID,
	})
}

// handleGetJobs returns every print job.
func (s *Server) handleGetJobs(c *gin.Context) {
	if s.queue == nil {
		c.JSON(503, gin.H{"error": "no printer configured"})
		return
	}

	c.JSON(200, gin.H{"jobs": s.queue.GetAllJobs()})
}

// handleGetJob returns one print job by ID.
func (s *Server) handleGetJob(c *gin.Context) {
	if s.queue == nil {
		c.JSON(503, gin.H{"error": "no printer configured"})
		return
	}

	job := s.queue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}

	c.JSON(200, job)
}

// handleClearJobs drops completed jobs.
func (s *Server) handleClearJobs(c *gin.Context) {
	if s.queue == nil {
		c.JSON(503, gin.H{"error": "no printer configured"})
		return
	}

	s.queue.ClearCompleted()
	c.JSON(200, gin.H{"success": true})
}

// styleFor resolves effective style options: explicit request style
// wins, then the shop's cached preset, then the defaults.
func (s *Server) styleFor(shopID string, explicit labelformat.StyleOptions) labelformat.StyleOptions {
	if explicit != (labelformat.StyleOptions{}) {
		return explicit.WithDefaults()
	}

	if s.cache != nil && shopID != "" {
		if cfg, ok := s.cache.Get(shopID); ok {
			return styleFromConfiguration(cfg).WithDefaults()
		}
	}

	return explicit.WithDefaults()
}

// styleFromConfiguration maps a persisted shop configuration onto the
// composer's style options.
func styleFromConfiguration(cfg labelformat.Configuration) labelformat.StyleOptions {
	return labelformat.StyleOptions{
		QRPixelSize:     cfg.QRSize,
		BackgroundColor: cfg.Colors.Background,
		TextColor:       cfg.Colors.Text,
		PrimaryCaption:  cfg.HeaderText,
		FontSizePx:      cfg.FontSize,
	}
}

func (s *Server) composeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, composer.ErrMissingInput):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, composer.ErrBitmapLoad):
		c.JSON(502, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": err.Error()})
	}
}

func (s *Server) documentError(c *gin.Context, err error) {
	if errors.Is(err, document.ErrMissingVehicleID) || errors.Is(err, document.ErrNoRecords) {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	s.composeError(c, err)
}

// Run starts the API server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
