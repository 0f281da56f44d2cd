package source

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/crate/internal/core/ports"
)

// NodeID is the unique identifier for the source selector Graft node.
const NodeID graft.ID = "adapter.source_selector"

func init() {
	graft.Register(graft.Node[ports.SourceSelector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceSelector, error) {
			return NewSelector(NewNoOp(), NewArchive(), NewGit()), nil
		},
	})
}
