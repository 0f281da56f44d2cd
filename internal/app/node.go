package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/crate/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/source"             //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			source.NodeID,
			fs.ResolverNodeID,
			fs.CopierNodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			cas.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.DescriptorLoader](ctx)
	if err != nil {
		return nil, err
	}

	sources, err := graft.Dep[ports.SourceSelector](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[ports.PatternResolver](ctx)
	if err != nil {
		return nil, err
	}

	copier, err := graft.Dep[ports.Copier](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	verifier, err := graft.Dep[ports.Verifier](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RecordStore](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, sources, resolver, copier, hasher, verifier, store, telemetry, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
