package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recorder struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopGenerationHooks
	events []string
}

func (r *recorder) OnBuildStart(_ context.Context, idCode string) {
	r.events = append(r.events, "build:"+idCode)
}

func (r *recorder) OnCacheMiss(_ context.Context, keyType string) {
	r.events = append(r.events, "miss:"+keyType)
}

func (r *recorder) OnGenerateComplete(_ context.Context, model string, _ time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.events = append(r.events, "generate:"+model+":"+status)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Emitting through the defaults must be safe without any registration.
	Pipeline().OnClassifyComplete(ctx, 4, 2, time.Millisecond)
	Pipeline().OnRenderComplete(ctx, "svg", 2048, time.Second, errors.New("boom"))
	Cache().OnCacheSet(ctx, "artifact", 1024)
	Generation().OnBreakerStateChange("gemini", "closed", "open")

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := Generation().(NoopGenerationHooks); !ok {
		t.Errorf("Generation() = %T, want NoopGenerationHooks", Generation())
	}
}

func TestRegisteredHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	r := &recorder{}
	SetPipelineHooks(r)
	SetCacheHooks(r)
	SetGenerationHooks(r)

	ctx := context.Background()
	Pipeline().OnBuildStart(ctx, "EMS")
	Cache().OnCacheMiss(ctx, "generation")
	Generation().OnGenerateComplete(ctx, "gemini-2.5-flash", time.Second, nil)
	Generation().OnGenerateComplete(ctx, "gemini-2.5-flash", time.Second, errors.New("quota"))

	want := []string{
		"build:EMS",
		"miss:generation",
		"generate:gemini-2.5-flash:ok",
		"generate:gemini-2.5-flash:error",
	}
	if len(r.events) != len(want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, r.events[i], want[i])
		}
	}
}

func TestSetNilKeepsCurrentHooks(t *testing.T) {
	Reset()
	defer Reset()

	r := &recorder{}
	SetPipelineHooks(r)
	SetCacheHooks(r)
	SetGenerationHooks(r)

	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetGenerationHooks(nil)

	if Pipeline() != PipelineHooks(r) {
		t.Error("SetPipelineHooks(nil) replaced the registered hooks")
	}
	if Cache() != CacheHooks(r) {
		t.Error("SetCacheHooks(nil) replaced the registered hooks")
	}
	if Generation() != GenerationHooks(r) {
		t.Error("SetGenerationHooks(nil) replaced the registered hooks")
	}
}

func TestResetRestoresNoop(t *testing.T) {
	r := &recorder{}
	SetPipelineHooks(r)
	Reset()

	Pipeline().OnBuildStart(context.Background(), "AV")
	if len(r.events) != 0 {
		t.Errorf("recorder saw %v after Reset", r.events)
	}
}
