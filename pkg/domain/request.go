package domain

// OutpaintingMode は outPaintingMode に指定できる値です。
type OutpaintingMode string

const (
	OutpaintingDefault OutpaintingMode = "DEFAULT"
	OutpaintingPrecise OutpaintingMode = "PRECISE"
)

// ControlMode は画像コンディショニングの制御方式です。
type ControlMode string

const (
	ControlCannyEdge    ControlMode = "CANNY_EDGE"
	ControlSegmentation ControlMode = "SEGMENTATION"
)

// TextToImageRequest はテキストからの画像生成要求です。
type TextToImageRequest struct {
	Prompt         string
	NegativePrompt string
	Config         GenerationConfig
	OpenPreview    bool
}

// InpaintingRequest は画像の一部を書き換える要求です。
// マスクは MaskPrompt か MaskImagePath のどちらか一方で指定します。
type InpaintingRequest struct {
	ImagePath      string
	Prompt         string
	MaskPrompt     string
	MaskImagePath  string
	NegativePrompt string
	Config         GenerationConfig
	OpenPreview    bool
}

// OutpaintingRequest はマスク画像の外側を拡張する要求です。
type OutpaintingRequest struct {
	ImagePath      string
	MaskImagePath  string
	Prompt         string
	NegativePrompt string
	Mode           OutpaintingMode
	Config         GenerationConfig
	OpenPreview    bool
}

// ImageVariationRequest は元画像（1〜5枚）のバリエーション生成要求です。
type ImageVariationRequest struct {
	ImagePaths         []string
	Prompt             string
	NegativePrompt     string
	SimilarityStrength float64
	Config             GenerationConfig
	OpenPreview        bool
}

// ImageConditioningRequest は参照画像のレイアウトに沿った生成要求です。
type ImageConditioningRequest struct {
	ImagePath      string
	Prompt         string
	NegativePrompt string
	ControlMode    ControlMode
	Config         GenerationConfig
	OpenPreview    bool
}

// ColorGuidedRequest はカラーパレットを指定した生成要求です。
type ColorGuidedRequest struct {
	Prompt             string
	Colors             []string
	ReferenceImagePath string
	NegativePrompt     string
	Config             GenerationConfig
	OpenPreview        bool
}

// BackgroundRemovalRequest は背景除去の要求です。
type BackgroundRemovalRequest struct {
	ImagePath   string
	Config      GenerationConfig
	OpenPreview bool
}
