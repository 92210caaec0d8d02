package api

import (
	"time"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/ledger"
	"github.com/quillworks/quill/internal/profile"
	"github.com/quillworks/quill/internal/proposals"
	"github.com/quillworks/quill/internal/templates"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Ledger    ledger.System
	Profiles  profile.System
	Proposals proposals.System
	Templates *templates.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	ledgerSystem := ledger.New(
		ledger.NewStore(db),
		runtime.Pipeline.LedgerCeiling(),
		runtime.Logger,
	)

	profileSystem := profile.NewManager(
		profile.NewStore(db),
		runtime.Pipeline.MinConsistentEdits,
		runtime.Pipeline.DecayFactor,
		runtime.Logger,
	)

	jobAnalyzer := analyzer.New(
		runtime.Gateway,
		runtime.Pipeline.MinJobLength,
		runtime.Pipeline.MaxJobLength,
		runtime.Logger,
	)

	seed := runtime.Pipeline.SelectorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	proposalSystem := proposals.NewOrchestrator(
		proposals.NewStore(db, runtime.Pagination),
		ledgerSystem,
		runtime.Gateway,
		jobAnalyzer,
		templates.NewSelector(seed),
		profileSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Ledger:    ledgerSystem,
		Profiles:  profileSystem,
		Proposals: proposalSystem,
		Templates: templates.NewHandler(runtime.Logger),
	}
}
