package envelope

import (
	"encoding/base64"
	"os"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

// FileReader は元画像・マスク画像の読み込み口です。テストで差し替えられます。
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// OSFileReader はローカルファイルシステムから読み込みます。
type OSFileReader struct{}

func (OSFileReader) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Builder は検証済みのリクエストを Envelope に変換します。
// 参照先のファイルが読めない場合は KindValidation を返します。
type Builder struct {
	files FileReader
}

// NewBuilder は Builder を作成します。files が nil ならローカルファイルを読みます。
func NewBuilder(files FileReader) *Builder {
	if files == nil {
		files = OSFileReader{}
	}
	return &Builder{files: files}
}

func (b *Builder) TextToImage(req domain.TextToImageRequest) (*Envelope, error) {
	return &Envelope{
		Params: &TextToImageParams{
			Text:         req.Prompt,
			NegativeText: req.NegativePrompt,
		},
		Config: req.Config,
	}, nil
}

func (b *Builder) Inpainting(req domain.InpaintingRequest) (*Envelope, error) {
	image, err := b.encodeFile("image_path", req.ImagePath)
	if err != nil {
		return nil, err
	}
	params := &InPaintingParams{
		Text:         req.Prompt,
		NegativeText: req.NegativePrompt,
		Image:        image,
		MaskPrompt:   req.MaskPrompt,
	}
	if req.MaskImagePath != "" {
		if params.MaskImage, err = b.encodeFile("mask_image_path", req.MaskImagePath); err != nil {
			return nil, err
		}
	}
	return &Envelope{Params: params, Config: req.Config}, nil
}

func (b *Builder) Outpainting(req domain.OutpaintingRequest) (*Envelope, error) {
	image, err := b.encodeFile("image_path", req.ImagePath)
	if err != nil {
		return nil, err
	}
	mask, err := b.encodeFile("mask_image_path", req.MaskImagePath)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Params: &OutPaintingParams{
			Text:            req.Prompt,
			NegativeText:    req.NegativePrompt,
			Image:           image,
			MaskImage:       mask,
			OutPaintingMode: string(req.Mode),
		},
		Config: req.Config,
	}, nil
}

func (b *Builder) ImageVariation(req domain.ImageVariationRequest) (*Envelope, error) {
	images := make([]string, 0, len(req.ImagePaths))
	for _, p := range req.ImagePaths {
		encoded, err := b.encodeFile("image_paths", p)
		if err != nil {
			return nil, err
		}
		images = append(images, encoded)
	}
	return &Envelope{
		Params: &ImageVariationParams{
			Text:               req.Prompt,
			NegativeText:       req.NegativePrompt,
			Images:             images,
			SimilarityStrength: req.SimilarityStrength,
		},
		Config: req.Config,
	}, nil
}

// ImageConditioning は TEXT_IMAGE タスクに conditionImage を付けて送ります。
func (b *Builder) ImageConditioning(req domain.ImageConditioningRequest) (*Envelope, error) {
	image, err := b.encodeFile("image_path", req.ImagePath)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Params: &TextToImageParams{
			Text:           req.Prompt,
			NegativeText:   req.NegativePrompt,
			ConditionImage: image,
			ControlMode:    string(req.ControlMode),
		},
		Config: req.Config,
	}, nil
}

func (b *Builder) ColorGuided(req domain.ColorGuidedRequest) (*Envelope, error) {
	params := &ColorGuidedGenerationParams{
		Text:         req.Prompt,
		NegativeText: req.NegativePrompt,
		Colors:       append([]string(nil), req.Colors...),
	}
	if req.ReferenceImagePath != "" {
		ref, err := b.encodeFile("reference_image_path", req.ReferenceImagePath)
		if err != nil {
			return nil, err
		}
		params.ReferenceImage = ref
	}
	return &Envelope{Params: params, Config: req.Config}, nil
}

func (b *Builder) BackgroundRemoval(req domain.BackgroundRemovalRequest) (*Envelope, error) {
	image, err := b.encodeFile("image_path", req.ImagePath)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Params: &BackgroundRemovalParams{Image: image},
		Config: req.Config,
	}, nil
}

func (b *Builder) encodeFile(field, path string) (string, error) {
	data, err := b.files.ReadFile(path)
	if err != nil {
		e := domain.Validationf("%s: cannot read image file %q: %v", field, path, err)
		e.Err = err
		return "", e
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
