package progrock_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/crate/internal/adapters/telemetry/progrock"
	"go.trai.ch/crate/internal/core/ports"
)

func TestNew(t *testing.T) {
	recorder := progrock.New(nil)
	assert.NotNil(t, recorder)
	require.NoError(t, recorder.Close())
}

func TestRecorder_RecordStoresVertexInContext(t *testing.T) {
	recorder := progrock.New(nil)

	ctx, vertex := recorder.Record(context.Background(), "source")
	got, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, got)

	vertex.Cached()
	vertex.Complete(nil)
	require.NoError(t, recorder.Close())
}

func TestRecorder_CloseSummarizesSteps(t *testing.T) {
	var out bytes.Buffer
	recorder := progrock.New(&out)
	ctx := context.Background()

	_, source := recorder.Record(ctx, "source NamedType/1.0.0")
	source.Cached()
	source.Complete(nil)

	_, pkg := recorder.Record(ctx, "package NamedType/1.0.0")
	pkg.Complete(errors.New("required pattern matched nothing"))

	require.NoError(t, recorder.Close())
	assert.Contains(t, out.String(), "2 steps: 1 unchanged, 1 failed in ")
}

func TestRecorder_CloseWithoutStepsIsSilent(t *testing.T) {
	var out bytes.Buffer
	recorder := progrock.New(&out)

	require.NoError(t, recorder.Close())
	assert.Empty(t, out.String())
}
