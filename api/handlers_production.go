package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/brickworks/services/production/internal/services"
)

func (s *Server) respond(c *gin.Context, status int, result *services.OpResult, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, result)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

type tonnageRequest struct {
	Tonnes float64 `json:"tonnes" binding:"required,gt=0"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Mining shifts.

func (s *Server) createMiningShift(c *gin.Context) {
	var req struct {
		Code          string  `json:"code" binding:"required,refcode"`
		Pit           string  `json:"pit" binding:"required"`
		PlannedTonnes float64 `json:"planned_tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateMiningShift(c.Request.Context(), actorFrom(c), services.CreateMiningShiftInput{
		Code:          req.Code,
		Pit:           req.Pit,
		PlannedTonnes: req.PlannedTonnes,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getMiningShift(c *gin.Context) {
	shift, err := s.core.GetMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (s *Server) startMiningShift(c *gin.Context) {
	result, err := s.core.StartMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseMiningShift(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeMiningShift(c *gin.Context) {
	result, err := s.core.ResumeMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordMiningOutput(c *gin.Context) {
	var req tonnageRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordMiningOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeMiningShift(c *gin.Context) {
	result, err := s.core.CompleteMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelMiningShift(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelMiningShift(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Stockpiles.

func (s *Server) createStockpile(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required,refcode"`
		Material string `json:"material" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateStockpile(c.Request.Context(), actorFrom(c), services.CreateStockpileInput{
		Code:     req.Code,
		Material: req.Material,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getStockpile(c *gin.Context) {
	pile, err := s.core.GetStockpile(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pile)
}

func (s *Server) recordStockpileDeposit(c *gin.Context) {
	var req struct {
		ShiftID string  `json:"shift_id" binding:"required"`
		Tonnes  float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordStockpileDeposit(c.Request.Context(), actorFrom(c), c.Param("id"), req.ShiftID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) closeStockpile(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CloseStockpile(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Mix batches.

func (s *Server) createMixBatch(c *gin.Context) {
	var req struct {
		Code   string `json:"code" binding:"required,refcode"`
		Recipe string `json:"recipe" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateMixBatch(c.Request.Context(), actorFrom(c), services.CreateMixBatchInput{
		Code:   req.Code,
		Recipe: req.Recipe,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getMixBatch(c *gin.Context) {
	batch, err := s.core.GetMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) addMixInput(c *gin.Context) {
	var req struct {
		StockpileID string  `json:"stockpile_id" binding:"required"`
		Tonnes      float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddMixInput(c.Request.Context(), actorFrom(c), c.Param("id"), req.StockpileID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) startMixBatch(c *gin.Context) {
	result, err := s.core.StartMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseMixBatch(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeMixBatch(c *gin.Context) {
	result, err := s.core.ResumeMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordMixOutput(c *gin.Context) {
	var req tonnageRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordMixOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeMixBatch(c *gin.Context) {
	result, err := s.core.CompleteMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelMixBatch(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelMixBatch(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Crush runs.

func (s *Server) createCrushRun(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required,refcode"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateCrushRun(c.Request.Context(), actorFrom(c), req.Code)
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getCrushRun(c *gin.Context) {
	run, err := s.core.GetCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) addCrushInput(c *gin.Context) {
	var req struct {
		MixBatchID string  `json:"mix_batch_id" binding:"required"`
		Tonnes     float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddCrushInput(c.Request.Context(), actorFrom(c), c.Param("id"), req.MixBatchID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) startCrushRun(c *gin.Context) {
	result, err := s.core.StartCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseCrushRun(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeCrushRun(c *gin.Context) {
	result, err := s.core.ResumeCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordCrushOutput(c *gin.Context) {
	var req struct {
		Tonnes   float64 `json:"tonnes" binding:"required,gt=0"`
		FinesPct float64 `json:"fines_pct" binding:"gte=0,lte=100"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordCrushOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Tonnes, req.FinesPct)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeCrushRun(c *gin.Context) {
	result, err := s.core.CompleteCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelCrushRun(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelCrushRun(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Extrusion runs.

func (s *Server) createExtrusionRun(c *gin.Context) {
	var req struct {
		Code    string `json:"code" binding:"required,refcode"`
		DieCode string `json:"die_code" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateExtrusionRun(c.Request.Context(), actorFrom(c), services.CreateExtrusionRunInput{
		Code:    req.Code,
		DieCode: req.DieCode,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getExtrusionRun(c *gin.Context) {
	run, err := s.core.GetExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) addExtrusionInput(c *gin.Context) {
	var req struct {
		CrushRunID string  `json:"crush_run_id" binding:"required"`
		Tonnes     float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddExtrusionInput(c.Request.Context(), actorFrom(c), c.Param("id"), req.CrushRunID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) startExtrusionRun(c *gin.Context) {
	result, err := s.core.StartExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseExtrusionRun(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeExtrusionRun(c *gin.Context) {
	result, err := s.core.ResumeExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordExtrusionOutput(c *gin.Context) {
	var req tonnageRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordExtrusionOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeExtrusionRun(c *gin.Context) {
	result, err := s.core.CompleteExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelExtrusionRun(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelExtrusionRun(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Dry loads.

func (s *Server) createDryLoad(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required,refcode"`
		Yard string `json:"yard" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateDryLoad(c.Request.Context(), actorFrom(c), services.CreateDryLoadInput{
		Code: req.Code,
		Yard: req.Yard,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getDryLoad(c *gin.Context) {
	load, err := s.core.GetDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

func (s *Server) addDryInput(c *gin.Context) {
	var req struct {
		ExtrusionRunID string  `json:"extrusion_run_id" binding:"required"`
		Tonnes         float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddDryInput(c.Request.Context(), actorFrom(c), c.Param("id"), req.ExtrusionRunID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) startDryLoad(c *gin.Context) {
	result, err := s.core.StartDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseDryLoad(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeDryLoad(c *gin.Context) {
	result, err := s.core.ResumeDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordDryOutput(c *gin.Context) {
	var req struct {
		Tonnes      float64 `json:"tonnes" binding:"required,gt=0"`
		MoisturePct float64 `json:"moisture_pct" binding:"gte=0,lte=100"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordDryOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Tonnes, req.MoisturePct)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeDryLoad(c *gin.Context) {
	result, err := s.core.CompleteDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelDryLoad(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelDryLoad(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

// Kiln batches.

func (s *Server) createKilnBatch(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required,refcode"`
		Kiln string `json:"kiln" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CreateKilnBatch(c.Request.Context(), actorFrom(c), services.CreateKilnBatchInput{
		Code: req.Code,
		Kiln: req.Kiln,
	})
	s.respond(c, http.StatusCreated, result, err)
}

func (s *Server) getKilnBatch(c *gin.Context) {
	batch, err := s.core.GetKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) addKilnInput(c *gin.Context) {
	var req struct {
		DryLoadID string  `json:"dry_load_id" binding:"required"`
		Tonnes    float64 `json:"tonnes" binding:"required,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.AddKilnInput(c.Request.Context(), actorFrom(c), c.Param("id"), req.DryLoadID, req.Tonnes)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) startKilnBatch(c *gin.Context) {
	result, err := s.core.StartKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) pauseKilnBatch(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.PauseKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) resumeKilnBatch(c *gin.Context) {
	result, err := s.core.ResumeKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) recordKilnOutput(c *gin.Context) {
	var req struct {
		Units        float64 `json:"units" binding:"required,gt=0"`
		ShrinkagePct float64 `json:"shrinkage_pct" binding:"gte=0,lte=100"`
	}
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.RecordKilnOutput(c.Request.Context(), actorFrom(c), c.Param("id"), req.Units, req.ShrinkagePct)
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) completeKilnBatch(c *gin.Context) {
	result, err := s.core.CompleteKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"))
	s.respond(c, http.StatusOK, result, err)
}

func (s *Server) cancelKilnBatch(c *gin.Context) {
	var req reasonRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := s.core.CancelKilnBatch(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	s.respond(c, http.StatusOK, result, err)
}
