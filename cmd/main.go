package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/go-chi/chi/v5"
	oapimw "github.com/oapi-codegen/nethttp-middleware"
	"github.com/wildhaven/parkops-backend/internal/apispec"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/container"
	"github.com/wildhaven/parkops-backend/internal/logging"
	"github.com/wildhaven/parkops-backend/internal/middleware"
	"github.com/wildhaven/parkops-backend/internal/swagger"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	spec, err := apispec.GetSwagger()
	if err != nil {
		log.Fatalf("Failed to load OpenAPI spec: %v", err)
	}
	// The router matches paths against the document, not the request
	// host, so the servers list must not constrain validation.
	spec.Servers = nil

	r := chi.NewMux()
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.NewCORSHandler(&cfg.CORS))

	// Docs are mounted outside the validator so they are reachable
	// without appearing in the OpenAPI document.
	r.Get("/docs/openapi.json", swagger.ServeSwaggerJSON)
	r.Get("/docs/*", swagger.UIHandler())

	r.Group(func(r chi.Router) {
		r.Use(oapimw.OapiRequestValidatorWithOptions(spec, &oapimw.Options{
			Options: openapi3filter.Options{
				AuthenticationFunc: c.Authenticator.Authenticate,
			},
		}))
		c.Server.Routes(r)
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logging.Info("Shutting down server...")
		c.Cleanup()
		os.Exit(0)
	}()

	logging.Info("Server starting", "addr", addr)
	log.Fatal(s.ListenAndServe())
}
