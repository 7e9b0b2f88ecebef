package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/export"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

// laporanHandler handles HTTP requests for reports and snapshots.
type laporanHandler struct {
	rollup         portssvc.RollupService
	snapshots      portssvc.SnapshotService
	openingBalance portssvc.OpeningBalanceSvc
	enqueuer       SnapshotEnqueuer
}

// reportResolver pulls a period report for the query of the current request.
type reportResolver func(c *gin.Context) (*domain.PeriodReport, error)

func registerLaporanRoutes(
	rg *gin.RouterGroup,
	rollup portssvc.RollupService,
	snapshots portssvc.SnapshotService,
	openingBalance portssvc.OpeningBalanceSvc,
	enqueuer SnapshotEnqueuer,
) {
	h := &laporanHandler{
		rollup:         rollup,
		snapshots:      snapshots,
		openingBalance: openingBalance,
		enqueuer:       enqueuer,
	}

	laporan := rg.Group("/laporan")
	{
		laporan.GET("/neraca-harian", h.getNeracaHarian)
		laporan.GET("/neraca-harian/export", h.exportReport(h.resolveHarian))
		laporan.GET("/neraca-bulanan", h.getNeracaBulanan)
		laporan.GET("/neraca-bulanan/export", h.exportReport(h.resolveBulanan))
		laporan.GET("/neraca-tahunan", h.getNeracaTahunan)
		laporan.GET("/neraca-tahunan/export", h.exportReport(h.resolveTahunan))
		laporan.GET("/shu-harian", h.getShuHarian)
		laporan.POST("/shu-awal", h.postShuAwal)
		laporan.POST("/snapshots", h.createSnapshot)
		laporan.DELETE("/snapshots/:type/:key", h.deleteSnapshot)
		laporan.POST("/tutup-tahun", h.closeYear)
	}
}

func (h *laporanHandler) resolveHarian(c *gin.Context) (*domain.PeriodReport, error) {
	var params dto.NeracaHarianParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, errBinding{err}
	}
	date, err := parseDateField("tanggal", params.Tanggal)
	if err != nil {
		return nil, err
	}
	return h.rollup.ResolveDaily(c.Request.Context(), date)
}

func (h *laporanHandler) resolveBulanan(c *gin.Context) (*domain.PeriodReport, error) {
	var params dto.NeracaBulananParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, errBinding{err}
	}
	return h.rollup.ComputeMonthly(c.Request.Context(), params.Tahun, time.Month(params.Bulan))
}

func (h *laporanHandler) resolveTahunan(c *gin.Context) (*domain.PeriodReport, error) {
	var params dto.NeracaTahunanParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, errBinding{err}
	}
	return h.rollup.ComputeYearly(c.Request.Context(), params.Tahun)
}

// errBinding marks a request binding failure so it is reported field by field.
type errBinding struct{ err error }

func (e errBinding) Error() string { return e.err.Error() }
func (e errBinding) Unwrap() error { return e.err }

func (h *laporanHandler) respondReport(c *gin.Context, resolve reportResolver) {
	report, err := resolve(c)
	if err != nil {
		if be, ok := err.(errBinding); ok {
			respondBindError(c, be.err)
			return
		}
		respondError(c, err, "Failed to generate report")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Report generated",
		slog.String("period_type", string(report.Type)),
		slog.String("period_key", report.Key),
		slog.String("source", string(report.Summary.Source)),
		slog.Int("row_count", len(report.Rows)))
	c.JSON(http.StatusOK, dto.ToPeriodReportResponse(report))
}

// getNeracaHarian godoc
// @Summary Daily trial balance
// @Description Returns the neraca saldo for one date, from a fresh snapshot when available
// @Tags laporan
// @Produce json
// @Param tanggal query string true "Report date (YYYY-MM-DD)"
// @Success 200 {object} dto.PeriodReportResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /laporan/neraca-harian [get]
func (h *laporanHandler) getNeracaHarian(c *gin.Context) {
	h.respondReport(c, h.resolveHarian)
}

// getNeracaBulanan godoc
// @Summary Monthly trial balance
// @Description Returns the neraca saldo for a calendar month
// @Tags laporan
// @Produce json
// @Param tahun query int true "Year"
// @Param bulan query int true "Month (1-12)"
// @Success 200 {object} dto.PeriodReportResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /laporan/neraca-bulanan [get]
func (h *laporanHandler) getNeracaBulanan(c *gin.Context) {
	h.respondReport(c, h.resolveBulanan)
}

// getNeracaTahunan godoc
// @Summary Yearly trial balance
// @Description Returns the neraca saldo for a calendar year
// @Tags laporan
// @Produce json
// @Param tahun query int true "Year"
// @Success 200 {object} dto.PeriodReportResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /laporan/neraca-tahunan [get]
func (h *laporanHandler) getNeracaTahunan(c *gin.Context) {
	h.respondReport(c, h.resolveTahunan)
}

// exportReport godoc
// @Summary Export a trial balance
// @Description Downloads the daily, monthly or yearly neraca saldo as XLSX. Takes the same query as the JSON report.
// @Tags laporan
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to export report"
// @Security BearerAuth
// @Router /laporan/neraca-harian/export [get]
// @Router /laporan/neraca-bulanan/export [get]
// @Router /laporan/neraca-tahunan/export [get]
func (h *laporanHandler) exportReport(resolve reportResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := resolve(c)
		if err != nil {
			if be, ok := err.(errBinding); ok {
				respondBindError(c, be.err)
				return
			}
			respondError(c, err, "Failed to export report")
			return
		}

		var buf bytes.Buffer
		if err := export.WriteTrialBalance(&buf, report); err != nil {
			respondError(c, fmt.Errorf("render workbook: %w", err), "Failed to export report")
			return
		}

		middleware.GetLoggerFromContext(c).Info("Report exported",
			slog.String("period_key", report.Key),
			slog.Int("bytes", buf.Len()))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(report)))
		c.Data(http.StatusOK, export.ContentType, buf.Bytes())
	}
}

// getShuHarian godoc
// @Summary Daily SHU series
// @Description Lists SHU for the day and SHU cumulative from inception for every day of a month
// @Tags laporan
// @Produce json
// @Param tahun query int true "Year"
// @Param bulan query int true "Month (1-12)"
// @Success 200 {object} dto.ShuSeriesResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 500 {object} errorResponse "Failed to compute SHU series"
// @Security BearerAuth
// @Router /laporan/shu-harian [get]
func (h *laporanHandler) getShuHarian(c *gin.Context) {
	var params dto.NeracaBulananParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	period, err := domain.MonthlyPeriod(params.Tahun, time.Month(params.Bulan))
	if err != nil {
		respondError(c, apperrors.NewValidationError("bulan", err.Error()), "Failed to compute SHU series")
		return
	}

	series, err := h.rollup.DailyShuSeries(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Failed to compute SHU series")
		return
	}
	c.JSON(http.StatusOK, dto.ToShuSeriesResponse(period, series))
}

// postShuAwal godoc
// @Summary Post SHU awal
// @Description Posts the opening SHU as a journal entry dated the day before tanggal. Replaying the same idempotency key returns the original entry.
// @Tags laporan
// @Accept json
// @Produce json
// @Param request body dto.ShuAwalRequest true "SHU awal"
// @Success 201 {object} dto.ShuAwalResponse "Posted"
// @Success 200 {object} dto.ShuAwalResponse "Replayed"
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 409 {object} errorResponse "Idempotency key reused with a different payload"
// @Failure 422 {object} errorResponse "Unknown account"
// @Failure 500 {object} errorResponse "Failed to post SHU awal"
// @Security BearerAuth
// @Router /laporan/shu-awal [post]
func (h *laporanHandler) postShuAwal(c *gin.Context) {
	var req dto.ShuAwalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.openingBalance.PostShuAwal(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to post SHU awal")
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, dto.ShuAwalResponse{
		EntryID:  result.EntryID,
		Date:     result.Date.Format(domain.DateFormat),
		Replayed: result.Replayed,
	})
}

// createSnapshot godoc
// @Summary Snapshot a period
// @Description Persists the period report. With async=true the work is queued for the worker instead.
// @Tags laporan
// @Accept json
// @Produce json
// @Param request body dto.SnapshotRequest true "Period to snapshot"
// @Success 201 {object} dto.SnapshotResponse "Saved"
// @Success 202 {object} dto.SnapshotResponse "Queued"
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 409 {object} errorResponse "Ledger changed during computation"
// @Failure 503 {object} errorResponse "Background worker not configured"
// @Security BearerAuth
// @Router /laporan/snapshots [post]
func (h *laporanHandler) createSnapshot(c *gin.Context) {
	var req dto.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	period, err := domain.ParsePeriod(domain.PeriodType(req.PeriodType), req.PeriodKey)
	if err != nil {
		respondError(c, apperrors.NewValidationError("period_key", err.Error()), "Failed to save snapshot")
		return
	}
	logger := middleware.GetLoggerFromContext(c).With(
		slog.String("period_type", string(period.Type)),
		slog.String("period_key", period.Key))

	if req.Async {
		if h.enqueuer == nil {
			respondError(c, apperrors.NewAppError(http.StatusServiceUnavailable, "background worker not configured", nil),
				"Background worker is not configured")
			return
		}
		taskID, err := h.enqueuer.EnqueueSnapshotPeriod(c.Request.Context(), period)
		if err != nil {
			respondError(c, fmt.Errorf("enqueue snapshot: %w", err), "Failed to queue snapshot")
			return
		}
		logger.Info("Snapshot queued", slog.String("task_id", taskID))
		c.JSON(http.StatusAccepted, dto.SnapshotResponse{
			PeriodType: string(period.Type),
			PeriodKey:  period.Key,
			Queued:     true,
			TaskID:     taskID,
		})
		return
	}

	snap, err := h.snapshots.SnapshotPeriod(c.Request.Context(), period)
	if err != nil {
		respondError(c, err, "Failed to save snapshot")
		return
	}
	logger.Info("Snapshot saved", slog.Int64("revision", snap.Revision))
	c.JSON(http.StatusCreated, dto.ToSnapshotResponse(snap))
}

// closeYear godoc
// @Summary Close a year
// @Description Snapshots the twelve months and the year. With async=true the work is queued for the worker instead.
// @Tags laporan
// @Accept json
// @Produce json
// @Param request body dto.CloseYearRequest true "Year to close"
// @Success 201 {object} dto.CloseYearResponse "Saved"
// @Success 202 {object} dto.CloseYearResponse "Queued"
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 409 {object} errorResponse "Ledger changed during computation"
// @Failure 503 {object} errorResponse "Background worker not configured"
// @Security BearerAuth
// @Router /laporan/tutup-tahun [post]
func (h *laporanHandler) closeYear(c *gin.Context) {
	var req dto.CloseYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	logger := middleware.GetLoggerFromContext(c).With(slog.Int("tahun", req.Tahun))

	if req.Async {
		if h.enqueuer == nil {
			respondError(c, apperrors.NewAppError(http.StatusServiceUnavailable, "background worker not configured", nil),
				"Background worker is not configured")
			return
		}
		taskID, err := h.enqueuer.EnqueueCloseYear(c.Request.Context(), req.Tahun)
		if err != nil {
			respondError(c, fmt.Errorf("enqueue close year: %w", err), "Failed to queue year close")
			return
		}
		logger.Info("Year close queued", slog.String("task_id", taskID))
		c.JSON(http.StatusAccepted, dto.CloseYearResponse{Tahun: req.Tahun, Queued: true, TaskID: taskID})
		return
	}

	snaps, err := h.snapshots.CloseYear(c.Request.Context(), req.Tahun)
	if err != nil {
		respondError(c, err, "Failed to close year")
		return
	}
	logger.Info("Year closed", slog.Int("snapshots", len(snaps)))
	c.JSON(http.StatusCreated, dto.ToCloseYearResponse(req.Tahun, snaps))
}

// deleteSnapshot godoc
// @Summary Delete a snapshot
// @Description Drops a persisted snapshot. Later reads compute from the jurnal.
// @Tags laporan
// @Param type path string true "Period type (daily, monthly, yearly)"
// @Param key path string true "Period key (YYYY-MM-DD, YYYY-MM or YYYY)"
// @Success 204 "No Content"
// @Failure 400 {object} errorResponse "Invalid period"
// @Failure 404 {object} errorResponse "Snapshot not found"
// @Security BearerAuth
// @Router /laporan/snapshots/{type}/{key} [delete]
func (h *laporanHandler) deleteSnapshot(c *gin.Context) {
	period, err := domain.ParsePeriod(domain.PeriodType(c.Param("type")), c.Param("key"))
	if err != nil {
		respondError(c, apperrors.NewValidationError("key", err.Error()), "Failed to delete snapshot")
		return
	}
	if err := h.snapshots.DeleteSnapshot(c.Request.Context(), period); err != nil {
		respondError(c, err, "Failed to delete snapshot")
		return
	}
	c.Status(http.StatusNoContent)
}
