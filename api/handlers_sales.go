package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"example.com/brickworks/services/production/internal/services"
)

// Sales orders.

func (s *Server) createSalesOrder(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required,refcode"`
		Customer string `json:"customer" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateSalesOrder(c.Request.Context(), actorFrom(c), services.CreateSalesOrderInput{
		Code:     req.Code,
		Customer: req.Customer,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getSalesOrder(c *gin.Context) {
	order, err := s.core.GetSalesOrder(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) getOrderReservations(c *gin.Context) {
	held, err := s.core.OrderReservations(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": c.Param("id"), "reservations": held})
}

func (s *Server) addOrderLine(c *gin.Context) {
	var req struct {
		Product   string  `json:"product" binding:"required"`
		Units     float64 `json:"units" binding:"required,gt=0"`
		UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddOrderLine(c.Request.Context(), actorFrom(c), c.Param("id"), services.OrderLineInput{
		Product:   req.Product,
		Units:     req.Units,
		UnitPrice: req.UnitPrice,
	})
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) reserveForOrder(c *gin.Context) {
	var req pickRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.ReserveForOrder(c.Request.Context(), actorFrom(c), c.Param("id"), req.PalletID, req.Units)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) releaseOrderReservation(c *gin.Context) {
	var req pickRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.ReleaseOrderReservation(c.Request.Context(), actorFrom(c), c.Param("id"), req.PalletID, req.Units)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) confirmOrder(c *gin.Context) {
	result, err := s.core.ConfirmOrder(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) closeOrder(c *gin.Context) {
	result, err := s.core.CloseOrder(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelOrder(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Invoices.

func (s *Server) issueInvoice(c *gin.Context) {
	var req struct {
		Code    string  `json:"code" binding:"required,refcode"`
		OrderID string  `json:"order_id" binding:"required"`
		Amount  float64 `json:"amount" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.IssueInvoice(c.Request.Context(), actorFrom(c), services.IssueInvoiceInput{
		Code:    req.Code,
		OrderID: req.OrderID,
		Amount:  req.Amount,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getInvoice(c *gin.Context) {
	invoice, err := s.core.GetInvoice(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (s *Server) recordPayment(c *gin.Context) {
	var req struct {
		Amount    float64 `json:"amount" binding:"required,gt=0"`
		Method    string  `json:"method" binding:"required"`
		Reference string  `json:"reference"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordPayment(c.Request.Context(), actorFrom(c), c.Param("id"), services.PaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeInvoice(c *gin.Context) {
	result, err := s.core.CompleteInvoice(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelInvoice(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelInvoice(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Queries.

func (s *Server) getAvailability(c *gin.Context) {
	result, err := s.core.EdgeAvailability(c.Request.Context(), actorFrom(c), c.Param("edge"), c.Param("upstream_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"edge":        c.Param("edge"),
		"upstream_id": c.Param("upstream_id"),
		"quantity":    result.Quantity,
		"unit":        result.Unit,
		"known":       result.Known(),
	})
}

func (s *Server) getAggregateHistory(c *gin.Context) {
	events, err := s.core.AggregateHistory(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aggregate_id": c.Param("id"), "events": events})
}

func (s *Server) searchEvents(c *gin.Context) {
	if s.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event search is not configured"})
		return
	}
	actor := actorFrom(c)
	if actor.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing tenant"})
		return
	}

	size := 50
	if v := c.Query("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			size = n
		}
	}

	hits, err := s.search.SearchEvents(c.Request.Context(), actor.TenantID,
		c.Query("aggregate_id"), c.Query("event_type"), size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}
