// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/infrastructure"
	"github.com/quillworks/quill/pkg/middleware"
	"github.com/quillworks/quill/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	specBytes, err := buildSpec(cfg)
	if err != nil {
		return nil, fmt.Errorf("build openapi spec: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, specBytes)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.BodyLimit(cfg.Server.MaxBodySizeBytes()))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
