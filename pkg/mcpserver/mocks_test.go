package mcpserver

import (
	"context"
	"sync"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/generator"
)

// --- Mocks ---

// mockGenerator は受け取った要求を記録し、固定の結果を返すのだ。
type mockGenerator struct {
	mu       sync.Mutex
	requests []any
	err      error
	images   map[string][]byte
}

var _ generator.ImageGenerator = (*mockGenerator)(nil)

func (m *mockGenerator) record(req any, prefix string) (*domain.Result, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	path := "/out/" + prefix + "_20250101_000000.png"
	return &domain.Result{ImagePath: path, Message: "done. Saved location: " + path}, nil
}

func (m *mockGenerator) last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockGenerator) TextToImage(_ context.Context, req domain.TextToImageRequest) (*domain.Result, error) {
	return m.record(req, "text2img")
}

func (m *mockGenerator) Inpainting(_ context.Context, req domain.InpaintingRequest) (*domain.Result, error) {
	return m.record(req, "inpaint")
}

func (m *mockGenerator) Outpainting(_ context.Context, req domain.OutpaintingRequest) (*domain.Result, error) {
	return m.record(req, "outpaint")
}

func (m *mockGenerator) ImageVariation(_ context.Context, req domain.ImageVariationRequest) (*domain.Result, error) {
	return m.record(req, "variation")
}

func (m *mockGenerator) ImageConditioning(_ context.Context, req domain.ImageConditioningRequest) (*domain.Result, error) {
	return m.record(req, "condition")
}

func (m *mockGenerator) ColorGuidedGeneration(_ context.Context, req domain.ColorGuidedRequest) (*domain.Result, error) {
	return m.record(req, "color_guided")
}

func (m *mockGenerator) BackgroundRemoval(_ context.Context, req domain.BackgroundRemovalRequest) (*domain.Result, error) {
	return m.record(req, "bg_removed")
}

func (m *mockGenerator) ShowImage(_ context.Context, source string, width, height int) (*domain.Thumbnail, error) {
	m.mu.Lock()
	m.requests = append(m.requests, [3]any{source, width, height})
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Thumbnail{Data: []byte("thumb-png"), Format: "png", Width: width, Height: height / 2}, nil
}

func (m *mockGenerator) LoadImage(_ context.Context, imageID string) ([]byte, error) {
	if data, ok := m.images[imageID]; ok {
		return data, nil
	}
	return nil, domain.Validationf("Unable to load image: %s not found", imageID)
}
