package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmarieta/chatarra/internal/http/auth"
	"github.com/dmarieta/chatarra/internal/http/employee"
	"github.com/dmarieta/chatarra/internal/http/ledger"
	"github.com/dmarieta/chatarra/internal/http/transaction"
)

func New(
	jwtSecret string,
	transactionsV1 *transaction.Handler,
	ledgerV1 *ledger.Handler,
	employeesV1 *employee.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	router.Use(auth.Middleware(jwtSecret))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/ledger", func(r chi.Router) {
			ledgerV1.Routes(r)
		})

		r.Route("/employees", func(r chi.Router) {
			employeesV1.Routes(r)
		})
	})

	return router
}
