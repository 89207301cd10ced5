package goroutine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu    sync.Mutex
	tasks []string
}

func (r *recorder) report(task string, recovered any, stack []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, fmt.Sprintf("%s:%v", task, recovered))
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tasks...)
}

func TestGuardRecoversPanic(t *testing.T) {
	rec := &recorder{}
	rh := NewRecoveryHandler(rec.report)

	err := rh.Guard("dispatcher", func() error { panic("boom") })

	assert.EqualError(t, err, "dispatcher: panic: boom")
	assert.Equal(t, []string{"dispatcher:boom"}, rec.seen())
}

func TestGuardPassesErrorThrough(t *testing.T) {
	want := errors.New("stopped")
	rec := &recorder{}
	assert.Equal(t, want, NewRecoveryHandler(rec.report).Guard("x", func() error { return want }))
	assert.Empty(t, rec.seen())
}

func TestGoRecovers(t *testing.T) {
	rec := &recorder{}
	rh := NewRecoveryHandler(rec.report)

	rh.Go("ws.write", func() { panic("side effect failed") })

	assert.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "ws.write:side effect failed", rec.seen()[0])
}

func TestPackageHelpersLog(t *testing.T) {
	done := make(chan struct{})
	SafeGo("test", func() {
		defer close(done)
		panic("ignored")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("горутина не завершилась")
	}
	assert.Error(t, Guard("test", func() error { panic("x") }))
}
