package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

// jurnalHandler handles HTTP requests related to journal entries.
type jurnalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func registerJurnalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := &jurnalHandler{journalService: journalService}

	jurnals := rg.Group("/jurnals")
	{
		jurnals.POST("", h.createJurnal)
		jurnals.GET("", h.listJurnals)
		jurnals.GET("/:id", h.getJurnal)
		jurnals.DELETE("/:id", h.deleteJurnal)
	}
}

// createJurnal godoc
// @Summary Create a journal entry
// @Description Posts a balanced journal entry. Every line must reference an active, non-header account.
// @Tags jurnals
// @Accept json
// @Produce json
// @Param jurnal body dto.CreateJournalRequest true "Journal entry"
// @Success 201 {object} dto.CreateJournalResponse
// @Failure 400 {object} errorResponse "Invalid input or unbalanced entry"
// @Failure 422 {object} errorResponse "Unknown or header account"
// @Failure 500 {object} errorResponse "Failed to create journal"
// @Security BearerAuth
// @Router /jurnals [post]
func (h *jurnalHandler) createJurnal(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actor := middleware.ActorFromContext(c)
	logger.Info("Received request to create journal", slog.String("tanggal", req.Tanggal), slog.Int("line_count", len(req.Details)))

	entry, err := h.journalService.CreateJournal(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create journal")
		return
	}

	logger.Info("Journal created successfully", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.CreateJournalResponse{
		EntryID: entry.EntryID,
		Date:    entry.EntryDate.Format(domain.DateFormat),
	})
}

// listJurnals godoc
// @Summary List journal entries
// @Description Lists journal entries newest first, optionally within [dari, sampai]
// @Tags jurnals
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Param dari query string false "From date (YYYY-MM-DD)"
// @Param sampai query string false "To date (YYYY-MM-DD)"
// @Param sumber query string false "Source kind"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to list journals"
// @Security BearerAuth
// @Router /jurnals [get]
func (h *jurnalHandler) listJurnals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list journals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJurnal godoc
// @Summary Get a journal entry
// @Tags jurnals
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} errorResponse "Journal not found"
// @Failure 500 {object} errorResponse "Failed to retrieve journal"
// @Security BearerAuth
// @Router /jurnals/{id} [get]
func (h *jurnalHandler) getJurnal(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(entry))
}

// deleteJurnal godoc
// @Summary Delete a journal entry
// @Description Hard deletes the entry and invalidates every snapshot that covers its date
// @Tags jurnals
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} errorResponse "Journal not found"
// @Failure 500 {object} errorResponse "Failed to delete journal"
// @Security BearerAuth
// @Router /jurnals/{id} [delete]
func (h *jurnalHandler) deleteJurnal(c *gin.Context) {
	entryID := c.Param("id")
	if err := h.journalService.DeleteEntry(c.Request.Context(), entryID, middleware.ActorFromContext(c)); err != nil {
		respondError(c, err, "Failed to delete journal")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Journal deleted", slog.String("entry_id", entryID))
	c.Status(http.StatusNoContent)
}
