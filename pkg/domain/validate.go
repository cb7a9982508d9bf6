package domain

import (
	"regexp"
	"unicode/utf8"
)

const (
	MaxPromptLength       = 1024
	MinImages             = 1
	MaxImages             = 4
	MinVariationImages    = 1
	MaxVariationImages    = 5
	MinSimilarityStrength = 0.2
	MaxSimilarityStrength = 1.0
	MinColors             = 1
	MaxColors             = 10
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// 各 Validate は最初に見つかった違反だけを KindValidation で返します。
// ファイルの読み取り可否は Envelope 組み立て時に確認します。

func (r TextToImageRequest) Validate() error {
	if err := checkPromptLength("prompt", r.Prompt); err != nil {
		return err
	}
	if err := checkPromptLength("negative_prompt", r.NegativePrompt); err != nil {
		return err
	}
	n := r.Config.NumberOfImages
	if n < MinImages || n > MaxImages {
		return Validationf("num_images must be between %d and %d (got %d).", MinImages, MaxImages, n)
	}
	return nil
}

func (r InpaintingRequest) Validate() error {
	if r.ImagePath == "" {
		return Validationf("image_path is required.")
	}
	hasPrompt, hasImage := r.MaskPrompt != "", r.MaskImagePath != ""
	if hasPrompt == hasImage {
		return Validationf("exactly one of mask_prompt or mask_image_path must be provided.")
	}
	return nil
}

func (r OutpaintingRequest) Validate() error {
	switch r.Mode {
	case OutpaintingDefault, OutpaintingPrecise:
	default:
		return Validationf("outpainting_mode must be 'DEFAULT' or 'PRECISE' (got %q).", r.Mode)
	}
	if r.ImagePath == "" {
		return Validationf("image_path is required.")
	}
	if r.MaskImagePath == "" {
		return Validationf("mask_image_path is required.")
	}
	return nil
}

func (r ImageVariationRequest) Validate() error {
	n := len(r.ImagePaths)
	if n < MinVariationImages || n > MaxVariationImages {
		return Validationf("image_paths list must contain %d-%d images (got %d).", MinVariationImages, MaxVariationImages, n)
	}
	s := r.SimilarityStrength
	if s < MinSimilarityStrength || s > MaxSimilarityStrength {
		return Validationf("similarity_strength must be between %.1f and %.1f (got %g).", MinSimilarityStrength, MaxSimilarityStrength, s)
	}
	return nil
}

func (r ImageConditioningRequest) Validate() error {
	switch r.ControlMode {
	case ControlCannyEdge, ControlSegmentation:
	default:
		return Validationf("control_mode must be 'CANNY_EDGE' or 'SEGMENTATION' (got %q).", r.ControlMode)
	}
	if r.ImagePath == "" {
		return Validationf("image_path is required.")
	}
	return nil
}

func (r ColorGuidedRequest) Validate() error {
	n := len(r.Colors)
	if n < MinColors || n > MaxColors {
		return Validationf("colors list must contain %d-%d color codes (got %d).", MinColors, MaxColors, n)
	}
	for _, c := range r.Colors {
		if !IsHexColor(c) {
			return Validationf("Invalid color code: %s. Hex color codes must be in the format '#rrggbb'.", c)
		}
	}
	return nil
}

func (r BackgroundRemovalRequest) Validate() error {
	if r.ImagePath == "" {
		return Validationf("image_path is required.")
	}
	return nil
}

// IsHexColor は "#" と16進6桁からなるカラーコードかを判定します。
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

func checkPromptLength(field, s string) error {
	if utf8.RuneCountInString(s) > MaxPromptLength {
		return Validationf("%s cannot exceed %d characters.", field, MaxPromptLength)
	}
	return nil
}
