package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/brickworks/services/production/internal/services"
)

// Pallets.

func (s *Server) createPallet(c *gin.Context) {
	var req struct {
		Code    string `json:"code" binding:"required,refcode"`
		Product string `json:"product" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreatePallet(c.Request.Context(), actorFrom(c), services.CreatePalletInput{
		Code:    req.Code,
		Product: req.Product,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getPallet(c *gin.Context) {
	pallet, err := s.core.GetPallet(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pallet)
}

func (s *Server) getPalletInventory(c *gin.Context) {
	balance, err := s.core.PalletInventory(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pallet_id":  c.Param("id"),
		"on_hand":    balance.OnHand,
		"reserved":   balance.Reserved,
		"reservable": balance.Reservable(),
	})
}

func (s *Server) addPalletUnits(c *gin.Context) {
	var req struct {
		KilnBatchID string  `json:"kiln_batch_id" binding:"required"`
		Units       float64 `json:"units" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddPalletUnits(c.Request.Context(), actorFrom(c), c.Param("id"), req.KilnBatchID, req.Units)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) closePallet(c *gin.Context) {
	result, err := s.core.ClosePallet(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelPallet(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelPallet(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Shipments.

func (s *Server) createShipment(c *gin.Context) {
	var req struct {
		Code    string `json:"code" binding:"required,refcode"`
		OrderID string `json:"order_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateShipment(c.Request.Context(), actorFrom(c), services.CreateShipmentInput{
		Code:    req.Code,
		OrderID: req.OrderID,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getShipment(c *gin.Context) {
	shipment, err := s.core.GetShipment(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

type pickRequest struct {
	PalletID string  `json:"pallet_id" binding:"required"`
	Units    float64 `json:"units" binding:"required,gt=0"`
}

func (s *Server) addShipmentPick(c *gin.Context) {
	var req pickRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddShipmentPick(c.Request.Context(), actorFrom(c), c.Param("id"), req.PalletID, req.Units)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) releaseShipmentPick(c *gin.Context) {
	var req pickRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.ReleaseShipmentPick(c.Request.Context(), actorFrom(c), c.Param("id"), req.PalletID, req.Units)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) dispatchShipment(c *gin.Context) {
	result, err := s.core.DispatchShipment(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelShipment(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelShipment(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}
