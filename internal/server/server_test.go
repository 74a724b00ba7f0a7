package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AgentWings/chrome-devtools-mcp/internal/browser"
	"github.com/AgentWings/chrome-devtools-mcp/internal/config"
	"github.com/AgentWings/chrome-devtools-mcp/internal/tools"
)

// fakeResolver hands out a fixed context without touching a browser.
type fakeResolver struct {
	ctx      *browser.Context
	err      error
	resolves atomic.Int32
	closed   atomic.Bool
}

func (f *fakeResolver) Resolve() (*browser.Context, error) {
	f.resolves.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.ctx, nil
}

func (f *fakeResolver) Close() { f.closed.Store(true) }

func newTestInstance(t *testing.T, resolver ContextResolver) *Instance {
	t.Helper()
	if resolver == nil {
		resolver = &fakeResolver{ctx: &browser.Context{}}
	}
	return NewWithResolver(&config.Config{}, zap.NewNop(), resolver)
}

func callRequest(args string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      "test_tool",
			Arguments: json.RawMessage(args),
		},
	}
}

func TestInvokeSerializesHandlers(t *testing.T) {
	inst := newTestInstance(t, nil)

	var inFlight, overlaps, calls atomic.Int32
	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			calls.Add(1)
			return nil
		},
	})

	const n = 16
	var wg sync.WaitGroup
	var failures atomic.Int32
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := handler(context.Background(), callRequest(`{}`)); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	require.Equal(t, int32(n), calls.Load())
	require.Zero(t, overlaps.Load(), "handler bodies must never overlap")
}

func TestInvokeReusesContext(t *testing.T) {
	shared := &browser.Context{}
	resolver := &fakeResolver{ctx: shared}
	inst := newTestInstance(t, resolver)

	var seen []*browser.Context
	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(_ context.Context, _ tools.Request, _ *tools.Response, bctx *browser.Context) error {
			seen = append(seen, bctx)
			return nil
		},
	})

	for range 3 {
		_, err := handler(context.Background(), callRequest(`{}`))
		require.NoError(t, err)
	}

	require.Len(t, seen, 3)
	require.Same(t, seen[0], seen[1])
	require.Same(t, seen[1], seen[2])
	require.Equal(t, int32(3), resolver.resolves.Load())
}

func TestInvokeResolverFaultIsCallFault(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("chrome refused to start")}
	inst := newTestInstance(t, resolver)

	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			t.Fatal("handler must not run when resolution fails")
			return nil
		},
	})

	_, err := handler(context.Background(), callRequest(`{}`))
	require.ErrorContains(t, err, "chrome refused to start")
}

func TestInvokeHandlerFaultIsCallFault(t *testing.T) {
	inst := newTestInstance(t, nil)

	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			return errors.New("element not found")
		},
	})

	result, err := handler(context.Background(), callRequest(`{}`))
	require.Nil(t, result)
	require.ErrorContains(t, err, "element not found")
}

func TestInvokeFinalizationFaultSoftLands(t *testing.T) {
	inst := newTestInstance(t, nil)

	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(_ context.Context, _ tools.Request, resp *tools.Response, _ *browser.Context) error {
			resp.AppendLine("partial output")
			resp.Defer(func(*browser.Context) ([]string, error) {
				return nil, errors.New("target detached during finalize")
			})
			return nil
		},
	})

	result, err := handler(context.Background(), callRequest(`{}`))
	require.NoError(t, err, "finalization faults must not become call faults")
	require.True(t, result.IsError)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.Contains(t, tc.Text, "target detached")
}

func TestInvokeGuardReleasedAfterFault(t *testing.T) {
	inst := newTestInstance(t, nil)

	failing := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			return errors.New("boom")
		},
	})
	ok := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			return nil
		},
	})

	_, err := failing(context.Background(), callRequest(`{}`))
	require.Error(t, err)

	// A fault must leave the guard available for the next call.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = ok(ctx, callRequest(`{}`))
	require.NoError(t, err)
}

func TestInvokeRejectsMalformedArguments(t *testing.T) {
	inst := newTestInstance(t, nil)

	handler := inst.invoke(&tools.Tool{
		Name: "test_tool",
		Handler: func(context.Context, tools.Request, *tools.Response, *browser.Context) error {
			t.Fatal("handler must not run on malformed arguments")
			return nil
		},
	})

	_, err := handler(context.Background(), callRequest(`not json`))
	require.Error(t, err)
}

func TestNewRegistersAssembledTools(t *testing.T) {
	inst := newTestInstance(t, nil)
	require.NotEmpty(t, inst.Tools())
	require.NotNil(t, inst.MCP())
}

func TestCloseReleasesResolver(t *testing.T) {
	resolver := &fakeResolver{ctx: &browser.Context{}}
	inst := newTestInstance(t, resolver)

	inst.Close()
	require.True(t, resolver.closed.Load())
}

func TestInstancesAreIndependent(t *testing.T) {
	r1 := &fakeResolver{ctx: &browser.Context{}}
	r2 := &fakeResolver{ctx: &browser.Context{}}
	inst1 := newTestInstance(t, r1)
	inst2 := newTestInstance(t, r2)

	var ctx1, ctx2 *browser.Context
	h1 := inst1.invoke(&tools.Tool{Name: "test_tool", Handler: func(_ context.Context, _ tools.Request, _ *tools.Response, b *browser.Context) error {
		ctx1 = b
		return nil
	}})
	h2 := inst2.invoke(&tools.Tool{Name: "test_tool", Handler: func(_ context.Context, _ tools.Request, _ *tools.Response, b *browser.Context) error {
		ctx2 = b
		return nil
	}})

	_, err := h1(context.Background(), callRequest(`{}`))
	require.NoError(t, err)
	_, err = h2(context.Background(), callRequest(`{}`))
	require.NoError(t, err)

	require.NotSame(t, ctx1, ctx2, "sessions must never share an automation context")
}
