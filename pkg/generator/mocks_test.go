package generator

import (
	"context"
	"io/fs"
	"sync"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/envelope"
)

// --- Mocks ---

// spyBackend は呼び出し回数と最後の Envelope を記録するのだ。
type spyBackend struct {
	mu      sync.Mutex
	calls   int
	last    *envelope.Envelope
	respond func(env *envelope.Envelope) (*domain.GeneratedImage, error)
}

func (s *spyBackend) Invoke(_ context.Context, env *envelope.Envelope) (*domain.GeneratedImage, error) {
	s.mu.Lock()
	s.calls++
	s.last = env
	s.mu.Unlock()
	if s.respond != nil {
		return s.respond(env)
	}
	return &domain.GeneratedImage{Data: []byte("generated-png"), Task: env.TaskType()}, nil
}

func (s *spyBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// mockStore は保存要求を記録するだけの ImageStore なのだ。
type mockStore struct {
	calls       int
	lastData    []byte
	lastPrefix  string
	lastPreview bool
	err         error
}

func (m *mockStore) Materialize(data []byte, prefix string, openPreview bool) (*domain.MaterializedImage, error) {
	m.calls++
	m.lastData, m.lastPrefix, m.lastPreview = data, prefix, openPreview
	if m.err != nil {
		return nil, m.err
	}
	name := prefix + "_20250101_000000.png"
	return &domain.MaterializedImage{Path: "/out/" + name, Filename: name}, nil
}

type mockThumbs struct {
	renderFunc func(ctx context.Context, source string, w, h int) (*domain.Thumbnail, error)
}

func (m *mockThumbs) Render(ctx context.Context, source string, w, h int) (*domain.Thumbnail, error) {
	return m.renderFunc(ctx, source, w, h)
}

// memFiles はメモリ上のファイルを返す FileReader なのだ。
type memFiles map[string][]byte

func (m memFiles) ReadFile(name string) ([]byte, error) {
	if data, ok := m[name]; ok {
		return data, nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
