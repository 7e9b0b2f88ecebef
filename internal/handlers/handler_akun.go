package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/koperasi_ledger/internal/apperrors"
	"github.com/SscSPs/koperasi_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/koperasi_ledger/internal/core/ports/services"
	"github.com/SscSPs/koperasi_ledger/internal/dto"
	"github.com/SscSPs/koperasi_ledger/internal/middleware"
)

// akunHandler handles HTTP requests related to the chart of accounts.
type akunHandler struct {
	accountService        portssvc.AccountSvcFacade
	journalService        portssvc.JournalReaderSvc
	openingBalanceService portssvc.OpeningBalanceSvc
}

func registerAkunRoutes(
	rg *gin.RouterGroup,
	accountService portssvc.AccountSvcFacade,
	journalService portssvc.JournalReaderSvc,
	openingBalanceService portssvc.OpeningBalanceSvc,
) {
	h := &akunHandler{
		accountService:        accountService,
		journalService:        journalService,
		openingBalanceService: openingBalanceService,
	}

	akuns := rg.Group("/akuns")
	{
		akuns.GET("", h.listAkuns)
		akuns.POST("", h.createAkun)
		akuns.GET("/:id", h.getAkun)
		akuns.PATCH("/:id/status", h.setAkunStatus)
		akuns.GET("/:id/mutasi", h.getMutasi)
		akuns.GET("/:id/saldo-awal", h.getSaldoAwal)
		akuns.PUT("/:id/saldo-awal", h.putSaldoAwal)
	}
}

func accountIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func parseDateField(field, value string) (time.Time, error) {
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// listAkuns godoc
// @Summary List accounts
// @Description Lists the chart of accounts ordered by code
// @Tags akuns
// @Produce json
// @Param include_headers query bool false "Include header accounts" default(true)
// @Success 200 {array} dto.AccountResponse
// @Failure 500 {object} errorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /akuns [get]
func (h *akunHandler) listAkuns(c *gin.Context) {
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	includeHeaders := params.IncludeHeaders == nil || *params.IncludeHeaders

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), includeHeaders)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// createAkun godoc
// @Summary Create an account
// @Description Adds a node to the chart of accounts. The normal balance side defaults from the account type.
// @Tags akuns
// @Accept json
// @Produce json
// @Param account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 409 {object} errorResponse "Account code already exists"
// @Failure 500 {object} errorResponse "Failed to create account"
// @Security BearerAuth
// @Router /akuns [post]
func (h *akunHandler) createAkun(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", req.AccountType))
	account, err := h.accountService.CreateAccount(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.Int64("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAkun godoc
// @Summary Get an account by ID
// @Tags akuns
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid ID"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /akuns/{id} [get]
func (h *akunHandler) getAkun(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// setAkunStatus godoc
// @Summary Activate or deactivate an account
// @Description Inactive accounts reject new postings but stay in reports
// @Tags akuns
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param status body dto.SetAccountStatusRequest true "New status"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /akuns/{id}/status [patch]
func (h *akunHandler) setAkunStatus(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	var req dto.SetAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.SetAccountActive(c.Request.Context(), id, *req.IsActive, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Account status changed",
		slog.Int64("account_id", id),
		slog.Bool("is_active", account.IsActive))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getMutasi godoc
// @Summary Account ledger
// @Description Returns the buku besar of one account over [dari, sampai] with running balances
// @Tags akuns
// @Produce json
// @Param id path int true "Account ID"
// @Param dari query string true "From date (YYYY-MM-DD)"
// @Param sampai query string true "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountLedgerResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 404 {object} errorResponse "Account not found"
// @Failure 500 {object} errorResponse "Failed to build account ledger"
// @Security BearerAuth
// @Router /akuns/{id}/mutasi [get]
func (h *akunHandler) getMutasi(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		respondError(c, err, "Failed to build account ledger")
		return
	}
	var params dto.AccountLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	from, err := parseDateField("dari", params.Dari)
	if err != nil {
		respondError(c, err, "Failed to build account ledger")
		return
	}
	to, err := parseDateField("sampai", params.Sampai)
	if err != nil {
		respondError(c, err, "Failed to build account ledger")
		return
	}

	ledger, err := h.journalService.AccountLedger(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, err, "Failed to build account ledger")
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// getSaldoAwal godoc
// @Summary Get an opening balance
// @Description Returns the journal-derived balance of the account at the start of tanggal
// @Tags akuns
// @Produce json
// @Param id path int true "Account ID"
// @Param tanggal query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.SaldoAwalResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /akuns/{id}/saldo-awal [get]
func (h *akunHandler) getSaldoAwal(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		respondError(c, err, "Failed to read opening balance")
		return
	}
	var params dto.SaldoAwalParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	date, err := parseDateField("tanggal", params.Tanggal)
	if err != nil {
		respondError(c, err, "Failed to read opening balance")
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to read opening balance")
		return
	}
	ob, err := h.openingBalanceService.GetOpeningBalance(c.Request.Context(), account.Code, date)
	if err != nil {
		respondError(c, err, "Failed to read opening balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaldoAwalResponse(account.AccountID, ob))
}

// putSaldoAwal godoc
// @Summary Set an opening balance
// @Description Overwrites the opening balance of the account at tanggal by posting the difference against the opening-balance counter account
// @Tags akuns
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param saldo body dto.SetSaldoAwalRequest true "Opening balance"
// @Success 200 {object} dto.SaldoAwalResponse
// @Failure 400 {object} errorResponse "Invalid input"
// @Failure 404 {object} errorResponse "Account not found"
// @Failure 422 {object} errorResponse "Header account"
// @Security BearerAuth
// @Router /akuns/{id}/saldo-awal [put]
func (h *akunHandler) putSaldoAwal(c *gin.Context) {
	id, err := accountIDParam(c)
	if err != nil {
		respondError(c, err, "Failed to set opening balance")
		return
	}
	var req dto.SetSaldoAwalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	date, err := parseDateField("tanggal", req.Tanggal)
	if err != nil {
		respondError(c, err, "Failed to set opening balance")
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to set opening balance")
		return
	}
	ob, err := h.openingBalanceService.SetOpeningBalance(c.Request.Context(), account.Code, date, req.Debet, req.Kredit, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to set opening balance")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Opening balance set",
		slog.String("account_code", account.Code),
		slog.String("tanggal", req.Tanggal))
	c.JSON(http.StatusOK, dto.ToSaldoAwalResponse(account.AccountID, ob))
}
