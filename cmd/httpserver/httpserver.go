// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-petr/bank-ledger/internal/accountdelivery"
	"github.com/go-petr/bank-ledger/internal/customerdelivery"
	"github.com/go-petr/bank-ledger/internal/customerservice"
	"github.com/go-petr/bank-ledger/internal/ledgerrepo"
	"github.com/go-petr/bank-ledger/internal/ledgerservice"
	"github.com/go-petr/bank-ledger/internal/memstore"
	"github.com/go-petr/bank-ledger/internal/middleware"
	"github.com/go-petr/bank-ledger/internal/transferdelivery"
	"github.com/go-petr/bank-ledger/pkg/configpkg"
	"github.com/go-petr/bank-ledger/pkg/dbpkg"
	"github.com/go-petr/bank-ledger/pkg/validationpkg"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Store is the ledger store the server runs on.
type Store interface {
	ledgerservice.Store
	customerservice.Repo
}

// OpenStore returns the store selected by config.StoreBackend.
//
// The returned db is nil for the in-memory backend.
func OpenStore(config configpkg.Config) (Store, *sql.DB, error) {
	switch config.StoreBackend {
	case configpkg.BackendMemory, "":
		return memstore.New(), nil, nil
	case configpkg.BackendPostgres:
		conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
		}

		return ledgerrepo.NewRepoPGS(conn), conn, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
}

// Server holds handlers router and configuration.
type Server struct {
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(store Store, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	ledgerService := ledgerservice.New(store, ledgerservice.RetryPolicy{
		Retries: config.CommitRetries,
		Backoff: config.CommitRetryBackoff,
	})
	customerService := customerservice.New(store)

	accountHandler := accountdelivery.NewHandler(ledgerService)
	transferHandler := transferdelivery.NewHandler(ledgerService)
	customerHandler := customerdelivery.NewHandler(customerService, ledgerService)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("unexpected validator engine")
	}

	if err := validationpkg.Register(v); err != nil {
		return nil, fmt.Errorf("cannot register validators: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/accounts", accountHandler.Open)
	engine.GET("/accounts/:id", accountHandler.Get)
	engine.GET("/accounts/:id/balance", accountHandler.Balance)
	engine.GET("/accounts/:id/transactions", accountHandler.History)
	engine.POST("/accounts/:id/deposits", accountHandler.Deposit)
	engine.POST("/accounts/:id/withdrawals", accountHandler.Withdraw)

	engine.POST("/transfers", transferHandler.Create)

	engine.GET("/customers", customerHandler.List)
	engine.GET("/customers/:id", customerHandler.Get)
	engine.PUT("/customers/:id", customerHandler.Update)
	engine.DELETE("/customers/:id", customerHandler.Delete)
	engine.GET("/customers/:id/accounts", customerHandler.ListAccounts)

	return &Server{Engine: engine, Config: config}, nil
}
