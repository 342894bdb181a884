// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/web"
	"github.com/shopspring/decimal"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (domain.Account, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	FromAccountID int64  `json:"from_account_id" binding:"required,min=1"`
	ToAccountID   int64  `json:"to_account_id" binding:"required,min=1"`
	Amount        string `json:"amount" binding:"required,decimal"`
}

type data struct {
	Account domain.Account `json:"account"`
}

// Create handles http request to move money between two accounts.
//
// The response carries the updated source account.
func (h *Handler) Create(gctx *gin.Context) {
	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	from, err := h.service.Transfer(gctx.Request.Context(), req.FromAccountID, req.ToAccountID, decimal.RequireFromString(req.Amount))
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{from}})
}
