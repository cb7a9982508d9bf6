// Package imgutil はサムネイル作成など、生成画像の後処理を提供します。
package imgutil

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

// Renderer はローカルパスまたは URL の画像からサムネイルを作成します。
type Renderer struct {
	httpClient   httpkit.ClientInterface
	blockPrivate bool
	readFile     func(string) ([]byte, error)
}

// RendererOption は Renderer の設定を変更します。
type RendererOption func(*Renderer)

// WithPrivateURLBlocking は有効にするとプライベートネットワーク宛ての URL を拒否します。
func WithPrivateURLBlocking(enabled bool) RendererOption {
	return func(r *Renderer) { r.blockPrivate = enabled }
}

// NewFetchClient は URL 取得用の httpkit クライアントを作成します。
// リトライは行いません。blockPrivate が false の場合は httpkit 側の
// ネットワーク検証も無効にし、ループバックやプライベートアドレスも取得します。
func NewFetchClient(timeout time.Duration, blockPrivate bool) httpkit.ClientInterface {
	return httpkit.New(timeout,
		httpkit.WithMaxRetries(0),
		httpkit.WithSkipNetworkValidation(!blockPrivate),
	)
}

// NewRenderer は Renderer を作成します。httpClient は URL 取得にのみ使います。
func NewRenderer(httpClient httpkit.ClientInterface, opts ...RendererOption) *Renderer {
	r := &Renderer{httpClient: httpClient, readFile: os.ReadFile}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render は source を読み込み、width×height に収まる PNG サムネイルを返します。
// アルファチャンネルは白背景に合成されて失われます。
func (r *Renderer) Render(ctx context.Context, source string, width, height int) (*domain.Thumbnail, error) {
	if width <= 0 || height <= 0 {
		return nil, domain.Validationf("width and height must be positive (got %dx%d).", width, height)
	}

	data, err := r.load(ctx, source)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Validationf("Unsupported or corrupt image %s: %v", source, err)
	}

	thumb := Thumbnail(img, width, height)
	out, err := EncodePNG(thumb)
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindGeneration, Message: "Failed to encode thumbnail: " + err.Error(), Err: err}
	}

	slog.InfoContext(ctx, "サムネイルを作成しました",
		"source", source, "source_format", format,
		"width", thumb.Bounds().Dx(), "height", thumb.Bounds().Dy())

	return &domain.Thumbnail{
		Data:   out,
		Format: "png",
		Width:  thumb.Bounds().Dx(),
		Height: thumb.Bounds().Dy(),
	}, nil
}

// IsURL は http:// または https:// で始まるかを判定します。
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (r *Renderer) load(ctx context.Context, source string) ([]byte, error) {
	if !IsURL(source) {
		data, err := r.readFile(source)
		if err != nil {
			e := domain.Validationf("Image file not found: %s", source)
			e.Err = err
			return nil, e
		}
		return data, nil
	}

	if r.httpClient == nil {
		return nil, domain.NewBackendError("Failed to download image: no HTTP client configured", nil)
	}
	if r.blockPrivate {
		if safe, err := IsSafeURL(source); err != nil || !safe {
			slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました", "url", source, "error", err)
			return nil, domain.Validationf("Refusing to fetch image from %s: %v", source, err)
		}
	}

	data, err := r.httpClient.FetchBytes(ctx, source)
	if err != nil {
		return nil, domain.NewBackendError("Failed to download image: "+err.Error(), err)
	}
	return data, nil
}
