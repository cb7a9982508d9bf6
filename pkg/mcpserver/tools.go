package mcpserver

import (
	"context"
	"fmt"
	"maps"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/utils"
)

// 公開ツールの既定値
const (
	defaultTextImageSize      = 1024
	defaultEditSize           = 512
	defaultNumImages          = 1
	defaultCFGScale           = 8.0
	defaultSimilarityStrength = 0.7
	defaultThumbnailSize      = 500
)

// GenerationOutput は生成系ツールの構造化結果です。
type GenerationOutput struct {
	ImagePath string `json:"image_path" jsonschema:"Absolute path of the saved PNG file"`
	Message   string `json:"message" jsonschema:"Human readable summary including the saved location"`
}

type TextToImageInput struct {
	Prompt         string   `json:"prompt" jsonschema:"Text description of the image to generate (1-1024 characters)"`
	NegativePrompt *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image (up to 1024 characters)"`
	Height         *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width          *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	NumImages      *int     `json:"num_images,omitempty" jsonschema:"Number of images to generate (1-4)"`
	CFGScale       *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	Seed           *int64   `json:"seed,omitempty" jsonschema:"Seed for reproducible generation"`
	OpenBrowser    *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type InpaintingInput struct {
	ImagePath      string   `json:"image_path" jsonschema:"Path of the image to edit"`
	Prompt         string   `json:"prompt" jsonschema:"Description of what to paint into the masked area"`
	MaskPrompt     *string  `json:"mask_prompt,omitempty" jsonschema:"Natural language description of the area to replace"`
	MaskImagePath  *string  `json:"mask_image_path,omitempty" jsonschema:"Path of a mask image (alternative to mask_prompt)"`
	NegativePrompt *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image"`
	Height         *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width          *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	CFGScale       *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	OpenBrowser    *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type OutpaintingInput struct {
	ImagePath       string   `json:"image_path" jsonschema:"Path of the image to extend"`
	MaskImagePath   string   `json:"mask_image_path" jsonschema:"Path of the mask image marking the area to keep"`
	Prompt          string   `json:"prompt" jsonschema:"Description of the extended content"`
	NegativePrompt  *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image"`
	OutpaintingMode *string  `json:"outpainting_mode,omitempty" jsonschema:"DEFAULT or PRECISE"`
	Height          *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width           *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	CFGScale        *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	OpenBrowser     *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type ImageVariationInput struct {
	ImagePaths         []string `json:"image_paths" jsonschema:"Paths of 1-5 source images"`
	Prompt             *string  `json:"prompt,omitempty" jsonschema:"Optional guidance for the variation"`
	NegativePrompt     *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image"`
	SimilarityStrength *float64 `json:"similarity_strength,omitempty" jsonschema:"Similarity to the source images (0.2-1.0)"`
	Height             *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width              *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	CFGScale           *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	OpenBrowser        *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type ImageConditioningInput struct {
	ImagePath      string   `json:"image_path" jsonschema:"Path of the reference image whose layout is followed"`
	Prompt         string   `json:"prompt" jsonschema:"Text description of the image to generate"`
	NegativePrompt *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image"`
	ControlMode    *string  `json:"control_mode,omitempty" jsonschema:"CANNY_EDGE or SEGMENTATION"`
	Height         *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width          *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	CFGScale       *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	OpenBrowser    *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type ColorGuidedInput struct {
	Prompt             string   `json:"prompt" jsonschema:"Text description of the image to generate"`
	Colors             []string `json:"colors" jsonschema:"1-10 hex color codes such as #FF5733"`
	ReferenceImagePath *string  `json:"reference_image_path,omitempty" jsonschema:"Optional reference image path"`
	NegativePrompt     *string  `json:"negative_prompt,omitempty" jsonschema:"Things to exclude from the image"`
	Height             *int     `json:"height,omitempty" jsonschema:"Image height in pixels"`
	Width              *int     `json:"width,omitempty" jsonschema:"Image width in pixels"`
	CFGScale           *float64 `json:"cfg_scale,omitempty" jsonschema:"How strongly the image follows the prompt"`
	OpenBrowser        *bool    `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type BackgroundRemovalInput struct {
	ImagePath   string `json:"image_path" jsonschema:"Path of the image whose background is removed"`
	OpenBrowser *bool  `json:"open_browser,omitempty" jsonschema:"Open the saved image in a browser"`
}

type ShowImageInput struct {
	ImagePath string `json:"image_path" jsonschema:"Local path or http(s) URL of the image"`
	Width     *int   `json:"width,omitempty" jsonschema:"Maximum thumbnail width"`
	Height    *int   `json:"height,omitempty" jsonschema:"Maximum thumbnail height"`
}

func (s *Server) registerTools() error {
	editDefaults := map[string]any{"height": defaultEditSize, "width": defaultEditSize, "cfg_scale": defaultCFGScale, "open_browser": true}

	textSchema, err := schemaFor[TextToImageInput](map[string]any{
		"negative_prompt": "", "height": defaultTextImageSize, "width": defaultTextImageSize,
		"num_images": defaultNumImages, "cfg_scale": defaultCFGScale, "seed": 0, "open_browser": true,
	})
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "text_to_image",
		Description: "Generate an image from a text prompt with Amazon Nova Canvas.",
		InputSchema: textSchema,
	}, s.textToImage)

	inpaintSchema, err := schemaFor[InpaintingInput](merge(editDefaults, map[string]any{"negative_prompt": ""}))
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "inpainting",
		Description: "Replace a masked region of an image. Give either mask_prompt or mask_image_path.",
		InputSchema: inpaintSchema,
	}, s.inpainting)

	outpaintSchema, err := schemaFor[OutpaintingInput](merge(editDefaults, map[string]any{
		"negative_prompt": "", "outpainting_mode": string(domain.OutpaintingDefault),
	}))
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "outpainting",
		Description: "Extend an image beyond the area kept by the mask image.",
		InputSchema: outpaintSchema,
	}, s.outpainting)

	variationSchema, err := schemaFor[ImageVariationInput](merge(editDefaults, map[string]any{
		"prompt": "", "negative_prompt": "", "similarity_strength": defaultSimilarityStrength,
	}))
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "image_variation",
		Description: "Generate a variation of 1-5 source images.",
		InputSchema: variationSchema,
	}, s.imageVariation)

	conditionSchema, err := schemaFor[ImageConditioningInput](merge(editDefaults, map[string]any{
		"negative_prompt": "", "control_mode": string(domain.ControlCannyEdge),
	}))
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "image_conditioning",
		Description: "Generate an image that follows the layout of a reference image.",
		InputSchema: conditionSchema,
	}, s.imageConditioning)

	colorSchema, err := schemaFor[ColorGuidedInput](merge(editDefaults, map[string]any{
		"reference_image_path": "", "negative_prompt": "",
	}))
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "color_guided_generation",
		Description: "Generate an image using a palette of hex color codes.",
		InputSchema: colorSchema,
	}, s.colorGuided)

	bgSchema, err := schemaFor[BackgroundRemovalInput](map[string]any{"open_browser": true})
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "background_removal",
		Description: "Remove the background of an image and save it as a transparent PNG.",
		InputSchema: bgSchema,
	}, s.backgroundRemoval)

	showSchema, err := schemaFor[ShowImageInput](map[string]any{"width": defaultThumbnailSize, "height": defaultThumbnailSize})
	if err != nil {
		return err
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "show_image",
		Description: "Return a PNG thumbnail of a local image or an image URL.",
		InputSchema: showSchema,
	}, s.showImage)

	return nil
}

func (s *Server) preview(openBrowser *bool) bool {
	return s.opts.AllowPreview && utils.ValueOr(openBrowser, true)
}

func editConfig(height, width *int, cfgScale *float64) domain.GenerationConfig {
	return domain.GenerationConfig{
		NumberOfImages: defaultNumImages,
		Height:         utils.ValueOr(height, defaultEditSize),
		Width:          utils.ValueOr(width, defaultEditSize),
		CFGScale:       utils.ValueOr(cfgScale, defaultCFGScale),
	}
}

func output(res *domain.Result, err error) (*mcp.CallToolResult, GenerationOutput, error) {
	if err != nil {
		return nil, GenerationOutput{}, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Message}},
	}, GenerationOutput{ImagePath: res.ImagePath, Message: res.Message}, nil
}

func (s *Server) textToImage(ctx context.Context, _ *mcp.CallToolRequest, in TextToImageInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.TextToImage(ctx, domain.TextToImageRequest{
		Prompt:         in.Prompt,
		NegativePrompt: utils.Deref(in.NegativePrompt),
		Config: domain.GenerationConfig{
			NumberOfImages: utils.ValueOr(in.NumImages, defaultNumImages),
			Height:         utils.ValueOr(in.Height, defaultTextImageSize),
			Width:          utils.ValueOr(in.Width, defaultTextImageSize),
			CFGScale:       utils.ValueOr(in.CFGScale, defaultCFGScale),
			Seed:           utils.Ptr(utils.ValueOr(in.Seed, 0)),
		},
		OpenPreview: s.preview(in.OpenBrowser),
	}))
}

func (s *Server) inpainting(ctx context.Context, _ *mcp.CallToolRequest, in InpaintingInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.Inpainting(ctx, domain.InpaintingRequest{
		ImagePath:      in.ImagePath,
		Prompt:         in.Prompt,
		MaskPrompt:     utils.Deref(in.MaskPrompt),
		MaskImagePath:  utils.Deref(in.MaskImagePath),
		NegativePrompt: utils.Deref(in.NegativePrompt),
		Config:         editConfig(in.Height, in.Width, in.CFGScale),
		OpenPreview:    s.preview(in.OpenBrowser),
	}))
}

func (s *Server) outpainting(ctx context.Context, _ *mcp.CallToolRequest, in OutpaintingInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.Outpainting(ctx, domain.OutpaintingRequest{
		ImagePath:      in.ImagePath,
		MaskImagePath:  in.MaskImagePath,
		Prompt:         in.Prompt,
		NegativePrompt: utils.Deref(in.NegativePrompt),
		Mode:           domain.OutpaintingMode(utils.ValueOr(in.OutpaintingMode, string(domain.OutpaintingDefault))),
		Config:         editConfig(in.Height, in.Width, in.CFGScale),
		OpenPreview:    s.preview(in.OpenBrowser),
	}))
}

func (s *Server) imageVariation(ctx context.Context, _ *mcp.CallToolRequest, in ImageVariationInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.ImageVariation(ctx, domain.ImageVariationRequest{
		ImagePaths:         in.ImagePaths,
		Prompt:             utils.Deref(in.Prompt),
		NegativePrompt:     utils.Deref(in.NegativePrompt),
		SimilarityStrength: utils.ValueOr(in.SimilarityStrength, defaultSimilarityStrength),
		Config:             editConfig(in.Height, in.Width, in.CFGScale),
		OpenPreview:        s.preview(in.OpenBrowser),
	}))
}

func (s *Server) imageConditioning(ctx context.Context, _ *mcp.CallToolRequest, in ImageConditioningInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.ImageConditioning(ctx, domain.ImageConditioningRequest{
		ImagePath:      in.ImagePath,
		Prompt:         in.Prompt,
		NegativePrompt: utils.Deref(in.NegativePrompt),
		ControlMode:    domain.ControlMode(utils.ValueOr(in.ControlMode, string(domain.ControlCannyEdge))),
		Config:         editConfig(in.Height, in.Width, in.CFGScale),
		OpenPreview:    s.preview(in.OpenBrowser),
	}))
}

func (s *Server) colorGuided(ctx context.Context, _ *mcp.CallToolRequest, in ColorGuidedInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.ColorGuidedGeneration(ctx, domain.ColorGuidedRequest{
		Prompt:             in.Prompt,
		Colors:             in.Colors,
		ReferenceImagePath: utils.Deref(in.ReferenceImagePath),
		NegativePrompt:     utils.Deref(in.NegativePrompt),
		Config:             editConfig(in.Height, in.Width, in.CFGScale),
		OpenPreview:        s.preview(in.OpenBrowser),
	}))
}

func (s *Server) backgroundRemoval(ctx context.Context, _ *mcp.CallToolRequest, in BackgroundRemovalInput) (*mcp.CallToolResult, GenerationOutput, error) {
	return output(s.gen.BackgroundRemoval(ctx, domain.BackgroundRemovalRequest{
		ImagePath:   in.ImagePath,
		Config:      editConfig(nil, nil, nil),
		OpenPreview: s.preview(in.OpenBrowser),
	}))
}

func (s *Server) showImage(ctx context.Context, _ *mcp.CallToolRequest, in ShowImageInput) (*mcp.CallToolResult, any, error) {
	thumb, err := s.gen.ShowImage(ctx, in.ImagePath,
		utils.ValueOr(in.Width, defaultThumbnailSize), utils.ValueOr(in.Height, defaultThumbnailSize))
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: thumb.Data, MIMEType: "image/" + thumb.Format},
			&mcp.TextContent{Text: fmt.Sprintf("Thumbnail %dx%d of %s", thumb.Width, thumb.Height, in.ImagePath)},
		},
	}, nil, nil
}

func merge(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}
