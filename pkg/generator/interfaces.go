package generator

import (
	"context"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/envelope"
)

// Backend は Envelope を送信して生成画像を受け取ります。
type Backend interface {
	Invoke(ctx context.Context, env *envelope.Envelope) (*domain.GeneratedImage, error)
}

// ImageStore は生成画像を永続化します。
type ImageStore interface {
	Materialize(data []byte, prefix string, openPreview bool) (*domain.MaterializedImage, error)
}

// ThumbnailRenderer はローカルパスまたは URL からサムネイルを作成します。
type ThumbnailRenderer interface {
	Render(ctx context.Context, source string, width, height int) (*domain.Thumbnail, error)
}

// ImageGenerator は呼び出し元（ツール層）が利用する統合窓口です。
type ImageGenerator interface {
	TextToImage(ctx context.Context, req domain.TextToImageRequest) (*domain.Result, error)
	Inpainting(ctx context.Context, req domain.InpaintingRequest) (*domain.Result, error)
	Outpainting(ctx context.Context, req domain.OutpaintingRequest) (*domain.Result, error)
	ImageVariation(ctx context.Context, req domain.ImageVariationRequest) (*domain.Result, error)
	ImageConditioning(ctx context.Context, req domain.ImageConditioningRequest) (*domain.Result, error)
	ColorGuidedGeneration(ctx context.Context, req domain.ColorGuidedRequest) (*domain.Result, error)
	BackgroundRemoval(ctx context.Context, req domain.BackgroundRemovalRequest) (*domain.Result, error)
	ShowImage(ctx context.Context, source string, width, height int) (*domain.Thumbnail, error)
	LoadImage(ctx context.Context, imageID string) ([]byte, error)
}
