// Package api exposes the production core over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"example.com/brickworks/services/production/config"
	"example.com/brickworks/services/production/internal/search"
	"example.com/brickworks/services/production/internal/services"
	"example.com/brickworks/services/production/internal/tracing"
)

// Server wires the HTTP routes to the operation core.
type Server struct {
	router *gin.Engine
	core   *services.Core
	search *search.ElasticClient
	config config.ServerConfig
}

// NewServer creates the HTTP server. searchClient may be nil; the audit
// search endpoint then reports unavailable.
func NewServer(cfg config.ServerConfig, core *services.Core, searchClient *search.ElasticClient, tracer tracing.Tracer) *Server {
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	if cfg.CorsEnabled {
		router.Use(CORSMiddleware())
	}
	if tracer != nil && tracer.Application() != nil {
		router.Use(nrgin.Middleware(tracer.Application()))
	}
	router.Use(ActorMiddleware())

	s := &Server{
		router: router,
		core:   core,
		search: searchClient,
		config: cfg,
	}
	s.setupRoutes()
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	return s.router.Run(s.config.Address)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")

	mining := v1.Group("/mining-shifts")
	mining.POST("", s.createMiningShift)
	mining.GET("/:id", s.getMiningShift)
	mining.POST("/:id/start", s.startMiningShift)
	mining.POST("/:id/pause", s.pauseMiningShift)
	mining.POST("/:id/resume", s.resumeMiningShift)
	mining.POST("/:id/output", s.recordMiningOutput)
	mining.POST("/:id/complete", s.completeMiningShift)
	mining.POST("/:id/cancel", s.cancelMiningShift)

	stockpiles := v1.Group("/stockpiles")
	stockpiles.POST("", s.createStockpile)
	stockpiles.GET("/:id", s.getStockpile)
	stockpiles.POST("/:id/deposits", s.recordStockpileDeposit)
	stockpiles.POST("/:id/close", s.closeStockpile)

	mixing := v1.Group("/mix-batches")
	mixing.POST("", s.createMixBatch)
	mixing.GET("/:id", s.getMixBatch)
	mixing.POST("/:id/inputs", s.addMixInput)
	mixing.POST("/:id/start", s.startMixBatch)
	mixing.POST("/:id/pause", s.pauseMixBatch)
	mixing.POST("/:id/resume", s.resumeMixBatch)
	mixing.POST("/:id/output", s.recordMixOutput)
	mixing.POST("/:id/complete", s.completeMixBatch)
	mixing.POST("/:id/cancel", s.cancelMixBatch)

	crushing := v1.Group("/crush-runs")
	crushing.POST("", s.createCrushRun)
	crushing.GET("/:id", s.getCrushRun)
	crushing.POST("/:id/inputs", s.addCrushInput)
	crushing.POST("/:id/start", s.startCrushRun)
	crushing.POST("/:id/pause", s.pauseCrushRun)
	crushing.POST("/:id/resume", s.resumeCrushRun)
	crushing.POST("/:id/output", s.recordCrushOutput)
	crushing.POST("/:id/complete", s.completeCrushRun)
	crushing.POST("/:id/cancel", s.cancelCrushRun)

	extrusion := v1.Group("/extrusion-runs")
	extrusion.POST("", s.createExtrusionRun)
	extrusion.GET("/:id", s.getExtrusionRun)
	extrusion.POST("/:id/inputs", s.addExtrusionInput)
	extrusion.POST("/:id/start", s.startExtrusionRun)
	extrusion.POST("/:id/pause", s.pauseExtrusionRun)
	extrusion.POST("/:id/resume", s.resumeExtrusionRun)
	extrusion.POST("/:id/output", s.recordExtrusionOutput)
	extrusion.POST("/:id/complete", s.completeExtrusionRun)
	extrusion.POST("/:id/cancel", s.cancelExtrusionRun)

	drying := v1.Group("/dry-loads")
	drying.POST("", s.createDryLoad)
	drying.GET("/:id", s.getDryLoad)
	drying.POST("/:id/inputs", s.addDryInput)
	drying.POST("/:id/start", s.startDryLoad)
	drying.POST("/:id/pause", s.pauseDryLoad)
	drying.POST("/:id/resume", s.resumeDryLoad)
	drying.POST("/:id/output", s.recordDryOutput)
	drying.POST("/:id/complete", s.completeDryLoad)
	drying.POST("/:id/cancel", s.cancelDryLoad)

	kiln := v1.Group("/kiln-batches")
	kiln.POST("", s.createKilnBatch)
	kiln.GET("/:id", s.getKilnBatch)
	kiln.POST("/:id/inputs", s.addKilnInput)
	kiln.POST("/:id/start", s.startKilnBatch)
	kiln.POST("/:id/pause", s.pauseKilnBatch)
	kiln.POST("/:id/resume", s.resumeKilnBatch)
	kiln.POST("/:id/output", s.recordKilnOutput)
	kiln.POST("/:id/complete", s.completeKilnBatch)
	kiln.POST("/:id/cancel", s.cancelKilnBatch)

	pallets := v1.Group("/pallets")
	pallets.POST("", s.createPallet)
	pallets.GET("/:id", s.getPallet)
	pallets.GET("/:id/inventory", s.getPalletInventory)
	pallets.POST("/:id/units", s.addPalletUnits)
	pallets.POST("/:id/close", s.closePallet)
	pallets.POST("/:id/cancel", s.cancelPallet)

	shipments := v1.Group("/shipments")
	shipments.POST("", s.createShipment)
	shipments.GET("/:id", s.getShipment)
	shipments.POST("/:id/picks", s.addShipmentPick)
	shipments.POST("/:id/picks/release", s.releaseShipmentPick)
	shipments.POST("/:id/dispatch", s.dispatchShipment)
	shipments.POST("/:id/cancel", s.cancelShipment)

	orders := v1.Group("/orders")
	orders.POST("", s.createSalesOrder)
	orders.GET("/:id", s.getSalesOrder)
	orders.GET("/:id/reservations", s.getOrderReservations)
	orders.POST("/:id/lines", s.addOrderLine)
	orders.POST("/:id/reservations", s.reserveForOrder)
	orders.POST("/:id/reservations/release", s.releaseOrderReservation)
	orders.POST("/:id/confirm", s.confirmOrder)
	orders.POST("/:id/close", s.closeOrder)
	orders.POST("/:id/cancel", s.cancelOrder)

	invoices := v1.Group("/invoices")
	invoices.POST("", s.issueInvoice)
	invoices.GET("/:id", s.getInvoice)
	invoices.POST("/:id/payments", s.recordPayment)
	invoices.POST("/:id/complete", s.completeInvoice)
	invoices.POST("/:id/cancel", s.cancelInvoice)

	v1.GET("/availability/:edge/:upstream_id", s.getAvailability)
	v1.GET("/aggregates/:id/events", s.getAggregateHistory)
	v1.GET("/events/search", s.searchEvents)
}
