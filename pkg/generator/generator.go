package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/envelope"
	"github.com/shouni/nova-canvas-kit/pkg/utils"
)

// operation は各ツールの保存ファイル名 prefix と成功メッセージです。
type operation struct {
	name    string
	prefix  string
	message string
}

var (
	opTextToImage = operation{"text_to_image", "text2img", "Image generated successfully."}
	opInpainting  = operation{"inpainting", "inpaint", "Inpainting completed successfully."}
	opOutpainting = operation{"outpainting", "outpaint", "Outpainting completed successfully."}
	opVariation   = operation{"image_variation", "variation", "Image variation completed successfully."}
	opCondition   = operation{"image_conditioning", "condition", "Image conditioning completed successfully."}
	opColorGuided = operation{"color_guided_generation", "color_guided", "Image generated successfully using color palette."}
	opBgRemoval   = operation{"background_removal", "bg_removed", "Background removed successfully."}
)

// NovaCanvasGenerator は 検証 → Envelope 組み立て → バックエンド呼び出し → 保存 を
// 操作ごとに束ねる統合ジェネレーターです。共有する可変状態を持たないため、
// 並行に呼び出して問題ありません。
type NovaCanvasGenerator struct {
	builder *envelope.Builder
	backend Backend
	store   ImageStore
	thumbs  ThumbnailRenderer
	files   envelope.FileReader
}

// NewNovaCanvasGenerator は依存関係を注入して NovaCanvasGenerator を初期化します。
func NewNovaCanvasGenerator(
	builder *envelope.Builder,
	backend Backend,
	store ImageStore,
	thumbs ThumbnailRenderer,
	files envelope.FileReader,
) (*NovaCanvasGenerator, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder (envelope.Builder) is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend (Backend) is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store (ImageStore) is required")
	}
	if thumbs == nil {
		return nil, fmt.Errorf("thumbs (ThumbnailRenderer) is required")
	}
	if files == nil {
		files = envelope.OSFileReader{}
	}

	return &NovaCanvasGenerator{
		builder: builder,
		backend: backend,
		store:   store,
		thumbs:  thumbs,
		files:   files,
	}, nil
}

var _ ImageGenerator = (*NovaCanvasGenerator)(nil)

func (g *NovaCanvasGenerator) TextToImage(ctx context.Context, req domain.TextToImageRequest) (*domain.Result, error) {
	slog.InfoContext(ctx, "テキストから画像を生成します",
		"num_images", req.Config.NumberOfImages, "seed", utils.Deref(req.Config.Seed))
	return g.generate(ctx, opTextToImage, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.TextToImage(req)
	})
}

func (g *NovaCanvasGenerator) Inpainting(ctx context.Context, req domain.InpaintingRequest) (*domain.Result, error) {
	return g.generate(ctx, opInpainting, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.Inpainting(req)
	})
}

func (g *NovaCanvasGenerator) Outpainting(ctx context.Context, req domain.OutpaintingRequest) (*domain.Result, error) {
	return g.generate(ctx, opOutpainting, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.Outpainting(req)
	})
}

func (g *NovaCanvasGenerator) ImageVariation(ctx context.Context, req domain.ImageVariationRequest) (*domain.Result, error) {
	return g.generate(ctx, opVariation, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.ImageVariation(req)
	})
}

func (g *NovaCanvasGenerator) ImageConditioning(ctx context.Context, req domain.ImageConditioningRequest) (*domain.Result, error) {
	return g.generate(ctx, opCondition, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.ImageConditioning(req)
	})
}

func (g *NovaCanvasGenerator) ColorGuidedGeneration(ctx context.Context, req domain.ColorGuidedRequest) (*domain.Result, error) {
	return g.generate(ctx, opColorGuided, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.ColorGuided(req)
	})
}

func (g *NovaCanvasGenerator) BackgroundRemoval(ctx context.Context, req domain.BackgroundRemovalRequest) (*domain.Result, error) {
	return g.generate(ctx, opBgRemoval, req.OpenPreview, req.Validate, func() (*envelope.Envelope, error) {
		return g.builder.BackgroundRemoval(req)
	})
}

// ShowImage はサムネイルを作成して返します。ファイルには保存しません。
func (g *NovaCanvasGenerator) ShowImage(ctx context.Context, source string, width, height int) (*domain.Thumbnail, error) {
	thumb, err := g.thumbs.Render(ctx, source, width, height)
	if err != nil {
		return nil, wrapFailure("show_image", "Error occurred while displaying image", err)
	}
	return thumb, nil
}

// LoadImage は画像IDをファイルパスとして扱い、その内容をそのまま返します。
func (g *NovaCanvasGenerator) LoadImage(ctx context.Context, imageID string) ([]byte, error) {
	data, err := g.files.ReadFile(imageID)
	if err != nil {
		slog.ErrorContext(ctx, "画像の読み込みに失敗しました", "image_id", imageID, "error", err)
		kind := domain.KindBackend
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindValidation
		}
		return nil, &domain.Error{Kind: kind, Message: fmt.Sprintf("Unable to load image: %v", err), Err: err}
	}
	return data, nil
}

// generate は全生成操作に共通するパイプラインです。
// 保存はバックエンド呼び出しが成功した後にだけ行い、失敗時は部分的な結果を返しません。
func (g *NovaCanvasGenerator) generate(
	ctx context.Context,
	op operation,
	openPreview bool,
	validate func() error,
	build func() (*envelope.Envelope, error),
) (*domain.Result, error) {
	if err := validate(); err != nil {
		slog.WarnContext(ctx, "パラメータ検証に失敗しました", "operation", op.name, "error", err)
		return nil, wrapFailure(op.name, "Error occurred during "+op.name, err)
	}

	env, err := build()
	if err != nil {
		slog.WarnContext(ctx, "リクエストの組み立てに失敗しました", "operation", op.name, "error", err)
		return nil, wrapFailure(op.name, "Error occurred during "+op.name, err)
	}

	img, err := g.backend.Invoke(ctx, env)
	if err != nil {
		return nil, wrapFailure(op.name, "Error occurred during "+op.name, err)
	}

	saved, err := g.store.Materialize(img.Data, op.prefix, openPreview)
	if err != nil {
		return nil, wrapFailure(op.name, "Error occurred while saving image", err)
	}

	return &domain.Result{
		ImagePath: saved.Path,
		Message:   fmt.Sprintf("%s Saved location: %s", op.message, saved.Path),
	}, nil
}

// wrapFailure は種別付きエラーをそのまま返し、それ以外は KindBackend として包みます。
func wrapFailure(opName, action string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	slog.Error("想定外のエラーが発生しました", "operation", opName, "error", err)
	return &domain.Error{Kind: domain.KindBackend, Message: fmt.Sprintf("%s: %v", action, err), Err: err}
}
