package tracing

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildSpansInheritTrace(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "trace-1")
	childCtx, resolve := StartChildSpan(ctx, "resolve")
	resolve.SetAttr("suggestions", 2)
	resolve.End()
	_, evaluate := StartChildSpan(ctx, "evaluate")
	evaluate.End()
	root.End()

	assert.Equal(t, resolve, SpanFromContext(childCtx))
	assert.Equal(t, "trace-1", resolve.TraceID)
	assert.Equal(t, "trace-1", evaluate.TraceID)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "resolve", root.Children[0].Name)
	assert.Equal(t, 2, resolve.Attrs["suggestions"])
}

func TestChildSpanWithoutParent(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	assert.Empty(t, span.TraceID)
	assert.Nil(t, SpanFromContext(context.Background()))
}

func TestSamplerFinishEndsSpan(t *testing.T) {
	for _, sm := range []Sampler{NewSampler(false, 1), NewSampler(true, 0), NewSampler(true, 1)} {
		_, span := StartSpan(context.Background(), "search", "t")
		sm.Finish(span)
		assert.False(t, span.EndTime.IsZero())
	}
}

func TestEndWhileParentLogs(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "search", "trace-2")
	var children []*Span
	for i := 0; i < 8; i++ {
		_, child := StartChildSpan(ctx, "evaluate")
		children = append(children, child)
	}

	var wg sync.WaitGroup
	for _, child := range children {
		wg.Add(1)
		go func(s *Span) {
			defer wg.Done()
			s.SetAttr("hits", 1)
			s.End()
		}(child)
	}
	root.End()
	root.Log()
	wg.Wait()

	for _, child := range children {
		assert.False(t, child.EndTime.IsZero())
	}
}
