package catalogue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/anisearch/internal/storage"
)

type mockObjects struct {
	objects map[string][]byte
	opens   atomic.Int32

	// gate, when set, holds every Open until closed; started is closed on the first Open.
	gate        chan struct{}
	started     chan struct{}
	startedOnce sync.Once
}

func (m *mockObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.opens.Add(1)
	if m.gate != nil {
		m.startedOnce.Do(func() { close(m.started) })
		<-m.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockObjects) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func (m *mockObjects) Ping(context.Context) error { return nil }

func (m *mockObjects) Describe() string { return "mem://" }
