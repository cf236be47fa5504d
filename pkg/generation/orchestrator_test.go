package generation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/bpmngen/pkg/adapters/memory"
	"github.com/aretw0/bpmngen/pkg/compiler"
	"github.com/aretw0/bpmngen/pkg/domain"
	"github.com/aretw0/bpmngen/pkg/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	markup string
	err    error
}

// scriptedCompiler blocks every call until a reply is pushed for it.
type scriptedCompiler struct {
	calls   atomic.Int32
	started chan string
	replies chan reply
}

func newScriptedCompiler() *scriptedCompiler {
	return &scriptedCompiler{
		started: make(chan string, 8),
		replies: make(chan reply, 8),
	}
}

func (c *scriptedCompiler) Compile(ctx context.Context, source string) (string, error) {
	c.calls.Add(1)
	c.started <- source
	select {
	case r := <-c.replies:
		return r.markup, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// funcCompiler answers immediately.
type funcCompiler func(ctx context.Context, source string) (string, error)

func (f funcCompiler) Compile(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

func def(name string) *domain.WorkflowDefinition {
	return &domain.WorkflowDefinition{Name: name, Source: "name: " + name + "\n"}
}

func waitStarted(t *testing.T, c *scriptedCompiler) string {
	t.Helper()
	select {
	case src := <-c.started:
		return src
	case <-time.After(2 * time.Second):
		t.Fatal("compile was not called")
		return ""
	}
}

func TestOrchestrator_Success(t *testing.T) {
	store := memory.NewStore()
	markup := "<definitions>\r\n  <process id=\"P\"/> </definitions>"
	var gotSource string
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		gotSource = source
		return markup, nil
	}), generation.WithStore(store))

	assert.Equal(t, generation.StateIdle, o.Snapshot().State)

	d, err := o.Generate(context.Background(), def("W"))
	require.NoError(t, err)
	assert.Equal(t, "name: W\n", gotSource, "source is sent unchanged")
	assert.Equal(t, markup, d.Markup)
	assert.Equal(t, uint64(1), d.Token)

	snap := o.Snapshot()
	assert.Equal(t, generation.StateSucceeded, snap.State)
	assert.Equal(t, markup, snap.Diagram.Markup)
	assert.NoError(t, snap.Err)

	stored, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, markup, stored.Markup)

	// Idempotent reads.
	first, ok := o.LastDiagram()
	require.True(t, ok)
	second, _ := o.LastDiagram()
	assert.Equal(t, first, second)
}

func TestOrchestrator_BusyWhileRequesting(t *testing.T) {
	c := newScriptedCompiler()
	o := generation.New(c)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = o.Generate(context.Background(), def("first"))
	}()
	waitStarted(t, c)
	assert.True(t, o.Busy())
	assert.Equal(t, generation.StateRequesting, o.Snapshot().State)

	_, err := o.Generate(context.Background(), def("second"))
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, int32(1), c.calls.Load(), "busy call must not reach the transport")

	c.replies <- reply{markup: "<first/>"}
	wg.Wait()
	require.NoError(t, firstErr)

	d, ok := o.LastDiagram()
	require.True(t, ok)
	assert.Equal(t, "<first/>", d.Markup)
	assert.False(t, o.Busy())
}

func TestOrchestrator_StaleResponseDiscarded(t *testing.T) {
	c := newScriptedCompiler()
	var discarded []uint64
	var mu sync.Mutex
	o := generation.New(c, generation.WithLifecycleHooks(domain.LifecycleHooks{
		OnResultDiscarded: func(ctx context.Context, e *domain.GenerateEvent) {
			mu.Lock()
			defer mu.Unlock()
			discarded = append(discarded, e.Token)
		},
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	var slowErr error
	go func() {
		defer wg.Done()
		_, slowErr = o.Generate(context.Background(), def("slow"))
	}()
	waitStarted(t, c)

	require.True(t, o.Abandon())
	assert.Equal(t, generation.StateIdle, o.Snapshot().State)

	wg.Add(1)
	var fastDiagram *domain.Diagram
	var fastErr error
	go func() {
		defer wg.Done()
		fastDiagram, fastErr = o.Generate(context.Background(), def("fast"))
	}()
	waitStarted(t, c)

	// Both calls are now blocked on the transport; the first reply goes to one
	// of them, so answer both with the same payload shape and check tokens.
	c.replies <- reply{markup: "<fast/>"}
	c.replies <- reply{markup: "<fast/>"}
	wg.Wait()

	assert.ErrorIs(t, slowErr, domain.ErrSuperseded)
	require.NoError(t, fastErr)
	assert.Equal(t, uint64(3), fastDiagram.Token)

	snap := o.Snapshot()
	assert.Equal(t, generation.StateSucceeded, snap.State)
	assert.Equal(t, uint64(3), snap.Diagram.Token)
	assert.Equal(t, []uint64{1}, discarded)
}

func TestOrchestrator_SlowSuccessCannotOverwriteNewerFailure(t *testing.T) {
	calls := make(chan chan reply, 2)
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		ch := make(chan reply, 1)
		calls <- ch
		r := <-ch
		return r.markup, r.err
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	var slowErr error
	go func() {
		defer wg.Done()
		_, slowErr = o.Generate(context.Background(), def("slow"))
	}()
	slow := <-calls
	o.Abandon()

	wg.Add(1)
	var fastErr error
	go func() {
		defer wg.Done()
		_, fastErr = o.Generate(context.Background(), def("fast"))
	}()
	fast := <-calls

	// The newer request fails fast, then the older one succeeds late.
	fast <- reply{err: &compiler.NetworkError{Cause: errors.New("refused")}}
	time.Sleep(10 * time.Millisecond)
	slow <- reply{markup: "<late/>"}
	wg.Wait()

	var netErr *compiler.NetworkError
	assert.ErrorAs(t, fastErr, &netErr)
	assert.ErrorIs(t, slowErr, domain.ErrSuperseded)

	snap := o.Snapshot()
	assert.Equal(t, generation.StateFailed, snap.State)
	assert.Nil(t, snap.Diagram, "late success must not be applied")
	_, ok := o.LastDiagram()
	assert.False(t, ok)
}

func TestOrchestrator_FailureThenRetry(t *testing.T) {
	fail := true
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		if fail {
			return "", &compiler.RemoteValidationError{Status: 400, Detail: "Invalid YAML"}
		}
		return "<ok/>", nil
	}))

	_, err := o.Generate(context.Background(), def("W"))
	var remoteErr *compiler.RemoteValidationError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "Invalid YAML", remoteErr.Detail)

	snap := o.Snapshot()
	assert.Equal(t, generation.StateFailed, snap.State)
	assert.ErrorAs(t, snap.Err, &remoteErr)
	assert.False(t, o.Busy(), "a failed request must not leave the orchestrator busy")

	fail = false
	d, err := o.Generate(context.Background(), def("W"))
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", d.Markup)
	assert.Nil(t, o.Snapshot().Err)
}

func TestOrchestrator_FailureKeepsLastDiagram(t *testing.T) {
	fail := false
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		if fail {
			return "", &compiler.NetworkError{Cause: errors.New("down")}
		}
		return "<kept/>", nil
	}))

	_, err := o.Generate(context.Background(), def("W"))
	require.NoError(t, err)

	fail = true
	_, err = o.Generate(context.Background(), def("W"))
	require.Error(t, err)

	d, ok := o.LastDiagram()
	require.True(t, ok)
	assert.Equal(t, "<kept/>", d.Markup)
}

func TestOrchestrator_ClassifiesForeignErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "Plain Error",
			err:  errors.New("weird"),
			check: func(t *testing.T, err error) {
				var unknownErr *compiler.UnknownError
				assert.ErrorAs(t, err, &unknownErr)
			},
		},
		{
			name: "Context Canceled",
			err:  context.Canceled,
			check: func(t *testing.T, err error) {
				var netErr *compiler.NetworkError
				assert.ErrorAs(t, err, &netErr)
				assert.ErrorIs(t, err, context.Canceled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
				return "", tt.err
			}))
			_, err := o.Generate(context.Background(), def("W"))
			tt.check(t, err)
			tt.check(t, o.Snapshot().Err)
		})
	}
}

func TestOrchestrator_NilDefinition(t *testing.T) {
	c := newScriptedCompiler()
	o := generation.New(c)
	_, err := o.Generate(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, int32(0), c.calls.Load())
	assert.Equal(t, generation.StateIdle, o.Snapshot().State)
}

func TestOrchestrator_AbandonWhenIdle(t *testing.T) {
	o := generation.New(newScriptedCompiler())
	assert.False(t, o.Abandon())
	assert.Equal(t, uint64(0), o.Snapshot().Token)
}

func TestOrchestrator_Hooks(t *testing.T) {
	var events []*domain.GenerateEvent
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		return "<x/>", nil
	}), generation.WithLifecycleHooks(domain.LifecycleHooks{
		OnGenerateStart: func(ctx context.Context, e *domain.GenerateEvent) { events = append(events, e) },
		OnGenerateEnd:   func(ctx context.Context, e *domain.GenerateEvent) { events = append(events, e) },
	}))

	_, err := o.Generate(context.Background(), def("Hooked"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventGenerateStart, events[0].Type)
	assert.Equal(t, domain.EventGenerateEnd, events[1].Type)
	assert.Equal(t, "succeeded", events[1].Outcome)
	assert.Equal(t, "Hooked", events[1].Name)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", generation.StateIdle.String())
	assert.Equal(t, "requesting", generation.StateRequesting.String())
	assert.Equal(t, "succeeded", generation.StateSucceeded.String())
	assert.Equal(t, "failed", generation.StateFailed.String())
}

// gatedStore holds the first Save until release is closed.
type gatedStore struct {
	*memory.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Save(ctx context.Context, d *domain.Diagram) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.Store.Save(ctx, d)
}

func TestOrchestrator_OlderSaveCannotLandLast(t *testing.T) {
	store := &gatedStore{
		Store:   memory.NewStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	var calls atomic.Int32
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		calls.Add(1)
		return "<" + source + "/>", nil
	}), generation.WithStore(store))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := o.Generate(context.Background(), def("A"))
		assert.NoError(t, err)
	}()
	<-store.entered

	// The first result is applied and being persisted; a newer request may start.
	go func() {
		defer wg.Done()
		_, err := o.Generate(context.Background(), def("B"))
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(store.release)
	wg.Wait()

	last, ok := o.LastDiagram()
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Token)

	stored, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stored.Token)
	assert.Equal(t, "<name: B\n/>", stored.Markup)
}

func TestOrchestrator_CompilerPanicIsRecovered(t *testing.T) {
	panicking := true
	o := generation.New(funcCompiler(func(ctx context.Context, source string) (string, error) {
		if panicking {
			panic("nil map")
		}
		return "<ok/>", nil
	}))

	_, err := o.Generate(context.Background(), def("W"))
	var unknownErr *compiler.UnknownError
	require.ErrorAs(t, err, &unknownErr)
	assert.Contains(t, err.Error(), "nil map")

	snap := o.Snapshot()
	assert.Equal(t, generation.StateFailed, snap.State)
	assert.False(t, o.Busy())

	panicking = false
	d, err := o.Generate(context.Background(), def("W"))
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", d.Markup)
}
