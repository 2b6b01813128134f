package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/payrail"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
)

// PaymentHandler exposes the payment rail emulator
type PaymentHandler struct {
	BaseHandler
	rail *payrail.Emulator
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(rail *payrail.Emulator) *PaymentHandler {
	return &PaymentHandler{rail: rail}
}

// CreateAccountRequest represents a request to open a virtual collection account
// @Description Request body for creating a collection account
type CreateAccountRequest struct {
	CustomerID string         `json:"customer_id" binding:"required,max=100" example:"cust_1001"`
	Purpose    string         `json:"purpose" binding:"max=200" example:"seller payouts"`
	Metadata   map[string]any `json:"metadata"`
}

// CreateLinkRequest represents a request to create a payment link
// @Description Request body for creating a UPI payment link
type CreateLinkRequest struct {
	Amount           float64 `json:"amount" binding:"required,gt=0" example:"499"`
	Currency         string  `json:"currency" binding:"omitempty,len=3" example:"INR"`
	Purpose          string  `json:"purpose" binding:"max=200" example:"Order #1001"`
	CustomerID       string  `json:"customer_id" binding:"max=100" example:"cust_1001"`
	ExpiresInMinutes int     `json:"expires_in_minutes" binding:"gte=0" example:"60"`
}

// SettleRequest represents a request to simulate an incoming payment
// @Description Request body for simulating a settlement
type SettleRequest struct {
	AccountID string         `json:"account_id" example:"va_3f0c6b1e"`
	LinkID    string         `json:"link_id" example:"plink_3f0c6b1e"`
	Amount    float64        `json:"amount" binding:"required,gt=0" example:"499"`
	Method    string         `json:"payment_method" binding:"omitempty,oneof=upi imps neft rtgs card" example:"upi"`
	Metadata  map[string]any `json:"metadata"`
	// Async returns 202 immediately; the outcome is delivered by webhook only
	Async     bool           `json:"async" example:"false"`
}

// SettlementAcceptedResponse is returned for asynchronous settlements
// @Description Asynchronous settlement acknowledgement
type SettlementAcceptedResponse struct {
	Status    string `json:"status" example:"pending"`
	AccountID string `json:"account_id,omitempty" example:"va_3f0c6b1e"`
	LinkID    string `json:"link_id,omitempty" example:"plink_3f0c6b1e"`
}

// CreateAccount godoc
// @ID           createCollectionAccount
//
//	@Summary		Create a collection account
//	@Description	Open a virtual account with a synthetic account number and UPI handle
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Client-ID		header		string					true	"Client ID"
//	@Param			X-Client-Secret	header		string					true	"Client secret"
//	@Param			request			body		CreateAccountRequest	true	"Account creation request"
//	@Success		201				{object}	APIResponse[CollectionAccountResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Router			/payments/accounts [post]
func (h *PaymentHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := h.rail.CreateAccount(c.Request.Context(), payrail.CreateAccountRequest{
		CustomerID: req.CustomerID,
		Purpose:    req.Purpose,
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAccountResponse(account))
}

// GetAccount godoc
// @ID           getCollectionAccount
//
//	@Summary		Get a collection account
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"
//	@Success		200	{object}	APIResponse[CollectionAccountResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payments/accounts/{id} [get]
func (h *PaymentHandler) GetAccount(c *gin.Context) {
	account, err := h.rail.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAccountResponse(account))
}

// ListTransactions godoc
// @ID           listAccountTransactions
//
//	@Summary		List account transactions
//	@Description	Transactions recorded against the account, newest first
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"
//	@Success		200	{object}	APIResponse[[]TransactionResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payments/accounts/{id}/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	txs, err := h.rail.ListTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponses(txs))
}

// CreateLink godoc
// @ID           createPaymentLink
//
//	@Summary		Create a payment link
//	@Description	Create a UPI deep link and QR image for a fixed amount
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateLinkRequest	true	"Payment link request"
//	@Success		201		{object}	APIResponse[PaymentLinkResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/payments/links [post]
func (h *PaymentHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	link, err := h.rail.CreatePaymentLink(c.Request.Context(), payrail.CreateLinkRequest{
		Amount:           toDecimal(req.Amount),
		Currency:         req.Currency,
		Purpose:          req.Purpose,
		CustomerID:       req.CustomerID,
		ExpiresInMinutes: req.ExpiresInMinutes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toLinkResponse(link))
}

// GetLink godoc
// @ID           getPaymentLink
//
//	@Summary		Get a payment link
//	@Description	Links past their expiry read as expired
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment link ID"
//	@Success		200	{object}	APIResponse[PaymentLinkResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payments/links/{id} [get]
func (h *PaymentHandler) GetLink(c *gin.Context) {
	link, err := h.rail.GetPaymentLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toLinkResponse(link))
}

// Settle godoc
// @ID           settlePayment
//
//	@Summary		Simulate a settlement
//	@Description	Resolve an incoming payment after the configured latency. A failed
//	@Description	settlement is still a 200 with status "failed".
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SettleRequest	true	"Settlement request"
//	@Success		200		{object}	APIResponse[TransactionResponse]
//	@Success		202		{object}	APIResponse[SettlementAcceptedResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/payments/settlements [post]
func (h *PaymentHandler) Settle(c *gin.Context) {
	var req SettleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	appReq := payrail.SettleRequest{
		AccountID: req.AccountID,
		LinkID:    req.LinkID,
		Amount:    toDecimal(req.Amount),
		Method:    req.Method,
		Metadata:  req.Metadata,
	}

	if req.Async {
		// The settlement outlives this request
		ctx := context.WithoutCancel(c.Request.Context())
		results, err := h.rail.SettleAsync(ctx, appReq)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		go logSettlement(ctx, results)
		h.Accepted(c, SettlementAcceptedResponse{
			Status:    "pending",
			AccountID: req.AccountID,
			LinkID:    req.LinkID,
		})
		return
	}

	tx, err := h.rail.Settle(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponse(tx))
}

func logSettlement(ctx context.Context, results <-chan payrail.SettlementResult) {
	res := <-results
	if res.Err != nil {
		logger.L(ctx).Warn("Asynchronous settlement aborted", zap.Error(res.Err))
		return
	}
	logger.L(ctx).Info("Asynchronous settlement resolved",
		zap.String("transaction_id", res.Transaction.ID),
		zap.String("status", string(res.Transaction.Status)),
	)
}

// GetTransaction godoc
// @ID           getTransaction
//
//	@Summary		Get a transaction
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Transaction ID"
//	@Success		200	{object}	APIResponse[TransactionResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/payments/transactions/{id} [get]
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	tx, err := h.rail.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponse(tx))
}

// VerifyByReference godoc
// @ID           verifyTransaction
//
//	@Summary		Verify a payment by UTR
//	@Description	Look up a successful transaction by its bank reference number
//	@Tags			payments
//	@Produce		json
//	@Param			reference	path		string	true	"UTR reference number"
//	@Success		200			{object}	APIResponse[TransactionResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Router			/payments/transactions/verify/{reference} [get]
func (h *PaymentHandler) VerifyByReference(c *gin.Context) {
	tx, err := h.rail.VerifyByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponse(tx))
}
