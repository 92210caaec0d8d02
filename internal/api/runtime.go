package api

import (
	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/internal/infrastructure"
	"github.com/quillworks/quill/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   config.PipelineConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Gateway:   infra.Gateway,
		},
		Pagination: cfg.API.Pagination,
		Pipeline:   cfg.Pipeline,
	}
}
