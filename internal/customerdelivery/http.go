// Package customerdelivery manages delivery layer of customers.
package customerdelivery

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/web"
)

// Service provides service layer interface needed by customer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package customerdelivery
type Service interface {
	Get(ctx context.Context, id int64) (domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (domain.Customer, error)
	ListAccounts(ctx context.Context, customerID int64) ([]domain.Account, error)
}

// Remover removes customers together with their accounts.
type Remover interface {
	DeleteCustomer(ctx context.Context, customerID int64) error
}

// Handler facilitates customer delivery layer logic.
type Handler struct {
	service Service
	remover Remover
}

// NewHandler returns customer handler.
func NewHandler(cs Service, r Remover) Handler {
	return Handler{service: cs, remover: r}
}

// dateLayout matches the datetime rule on CustomerRequest.DateOfBirth.
const dateLayout = "2006-01-02"

// CustomerRequest is the customer part of onboarding and update requests.
type CustomerRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	FatherName    string `json:"father_name"`
	DateOfBirth   string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	MobileNumber  string `json:"mobile_number" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Nationality   string `json:"nationality"`
	Class         string `json:"class" binding:"required,customer_class"`
}

// Customer converts the validated request into the customer with the given id.
func (r CustomerRequest) Customer(id int64) domain.Customer {
	dob, _ := time.Parse(dateLayout, r.DateOfBirth) // checked by the datetime rule

	return domain.Customer{
		ID:            id,
		FullName:      r.FullName,
		FatherName:    r.FatherName,
		DateOfBirth:   dob,
		Gender:        r.Gender,
		MaritalStatus: r.MaritalStatus,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		MobileNumber:  r.MobileNumber,
		Email:         r.Email,
		Nationality:   r.Nationality,
		Class:         domain.CustomerClass(r.Class),
	}
}

type idRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

type data struct {
	Customer domain.Customer `json:"customer"`
}

type dataCustomers struct {
	Customers []domain.Customer `json:"customers"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

// List handles http request to list all customers.
func (h *Handler) List(gctx *gin.Context) {
	customers, err := h.service.List(gctx.Request.Context())
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataCustomers{customers}})
}

// Get handles http request to get customer.
func (h *Handler) Get(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	c, err := h.service.Get(gctx.Request.Context(), req.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{c}})
}

// Update handles http request to replace customer fields.
func (h *Handler) Update(gctx *gin.Context) {
	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	var req CustomerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	c, err := h.service.Update(gctx.Request.Context(), req.Customer(uri.ID))
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{c}})
}

// Delete handles http request to delete customer with all of its accounts.
func (h *Handler) Delete(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	if err := h.remover.DeleteCustomer(gctx.Request.Context(), req.ID); err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

// ListAccounts handles http request to list customer accounts.
func (h *Handler) ListAccounts(gctx *gin.Context) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		web.AbortWithBindingError(gctx, err)
		return
	}

	accounts, err := h.service.ListAccounts(gctx.Request.Context(), req.ID)
	if err != nil {
		web.AbortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataAccounts{accounts}})
}
