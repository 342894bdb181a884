// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/bank-ledger/internal/customerdelivery"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/web"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	OpenAccount(ctx context.Context, arg domain.OpenAccountParams) (domain.OpenAccountResult, error)
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	GetBalance(ctx context.Context, id int64) (decimal.Decimal, error)
	GetHistory(ctx context.Context, id int64, period domain.Period) ([]domain.Transaction, error)
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type dataBalance struct {
	AccountID int64           `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type openRequest struct {
	Customer       customerdelivery.CustomerRequest `json:"customer"`
	Kind           string                           `json:"kind" binding:"required,account_kind"`
	Mode           string                           `json:"mode" binding:"required,operation_mode"`
	InitialDeposit string                           `json:"initial_deposit" binding:"omitempty,decimal"`
	Services       domain.ServiceFlags              `json:"services"`
}

func (r openRequest) params() domain.OpenAccountParams {
	deposit := decimal.Zero
	if r.InitialDeposit != "" {
		deposit = decimal.RequireFromString(r.InitialDeposit)
	}

	return domain.OpenAccountParams{
		Customer:       r.Customer.Customer(0),
		Kind:           domain.AccountKind(r.Kind),
		Mode:           domain.OperationMode(r.Mode),
		InitialDeposit: deposit,
		Services:       r.Services,
	}
}

// Open handles http request to onboard a customer with a new account.
func (h *Handler) Open(gctx *gin.Context) {
	var req openRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	res, err := h.service.OpenAccount(gctx.Request.Context(), req.params())
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: res})
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	acc, err := h.service.GetAccount(gctx.Request.Context(), req.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{acc}})
}

// Balance handles http request to get the current account balance.
func (h *Handler) Balance(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	balance, err := h.service.GetBalance(gctx.Request.Context(), req.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataBalance{AccountID: req.ID, Balance: balance}})
}

type historyRequest struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// History handles http request to list account transactions, most recent first.
func (h *Handler) History(gctx *gin.Context) {
	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	var req historyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	period := domain.Period{From: req.From, To: req.To}

	items, err := h.service.GetHistory(gctx.Request.Context(), uri.ID, period)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataTransactions{items}})
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
}

// Deposit handles http request to deposit money into the account.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.move(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money from the account.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.move(gctx, h.service.Withdraw)
}

func (h *Handler) move(gctx *gin.Context, op func(context.Context, int64, decimal.Decimal) (domain.Account, error)) {
	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	acc, err := op(gctx.Request.Context(), uri.ID, decimal.RequireFromString(req.Amount))
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{acc}})
}
