package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

// connect は in-memory トランスポートでクライアントセッションを張るのだ。
func connect(t *testing.T, gen *mockGenerator, opts Options) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	srv, err := New(gen, opts)
	require.NoError(t, err)

	st, ct := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func firstText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatalf("text content が見つからないのだ: %#v", res.Content)
	return ""
}

func TestNew(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestListTools(t *testing.T) {
	cs := connect(t, &mockGenerator{}, Options{AllowPreview: true})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	schemas := map[string]*jsonschema.Schema{}
	for _, tool := range res.Tools {
		raw, err := json.Marshal(tool.InputSchema)
		require.NoError(t, err)
		var s jsonschema.Schema
		require.NoError(t, json.Unmarshal(raw, &s))
		schemas[tool.Name] = &s
	}

	assert.Len(t, schemas, 8)
	for _, name := range []string{
		"text_to_image", "inpainting", "outpainting", "image_variation",
		"image_conditioning", "color_guided_generation", "background_removal", "show_image",
	} {
		assert.Contains(t, schemas, name)
	}

	t.Run("既定値がスキーマに載っているのだ", func(t *testing.T) {
		text := schemas["text_to_image"]
		assert.JSONEq(t, "1024", string(text.Properties["height"].Default))
		assert.JSONEq(t, "0", string(text.Properties["seed"].Default))
		assert.JSONEq(t, "true", string(text.Properties["open_browser"].Default))

		assert.JSONEq(t, `"DEFAULT"`, string(schemas["outpainting"].Properties["outpainting_mode"].Default))
		assert.JSONEq(t, "0.7", string(schemas["image_variation"].Properties["similarity_strength"].Default))
		assert.JSONEq(t, "500", string(schemas["show_image"].Properties["width"].Default))
	})

	t.Run("範囲チェックはスキーマに載せないのだ", func(t *testing.T) {
		for name, s := range schemas {
			for prop, p := range s.Properties {
				assert.Nil(t, p.Minimum, "%s.%s", name, prop)
				assert.Nil(t, p.Maximum, "%s.%s", name, prop)
				assert.Nil(t, p.MinLength, "%s.%s", name, prop)
				assert.Nil(t, p.MaxLength, "%s.%s", name, prop)
			}
		}
	})

	t.Run("必須パラメータなのだ", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"prompt"}, schemas["text_to_image"].Required)
		assert.ElementsMatch(t, []string{"image_path", "mask_image_path", "prompt"}, schemas["outpainting"].Required)
		assert.ElementsMatch(t, []string{"prompt", "colors"}, schemas["color_guided_generation"].Required)
	})
}

func TestTextToImageTool(t *testing.T) {
	t.Run("省略した引数には既定値が入るのだ", func(t *testing.T) {
		gen := &mockGenerator{}
		cs := connect(t, gen, Options{AllowPreview: true})

		res := callTool(t, cs, "text_to_image", map[string]any{"prompt": "a red fox"})
		require.False(t, res.IsError, firstText(t, res))
		assert.Equal(t, "done. Saved location: /out/text2img_20250101_000000.png", firstText(t, res))

		req, ok := gen.last().(domain.TextToImageRequest)
		require.True(t, ok)
		assert.Equal(t, "a red fox", req.Prompt)
		assert.Empty(t, req.NegativePrompt)
		assert.Equal(t, 1024, req.Config.Height)
		assert.Equal(t, 1024, req.Config.Width)
		assert.Equal(t, 1, req.Config.NumberOfImages)
		assert.Equal(t, 8.0, req.Config.CFGScale)
		require.NotNil(t, req.Config.Seed)
		assert.Equal(t, int64(0), *req.Config.Seed)
		assert.True(t, req.OpenPreview)
	})

	t.Run("指定した引数がそのまま渡るのだ", func(t *testing.T) {
		gen := &mockGenerator{}
		cs := connect(t, gen, Options{AllowPreview: true})

		res := callTool(t, cs, "text_to_image", map[string]any{
			"prompt": "a red fox", "negative_prompt": "blur", "height": 768, "width": 1280,
			"num_images": 3, "cfg_scale": 6.5, "seed": 42, "open_browser": false,
		})
		require.False(t, res.IsError)

		req := gen.last().(domain.TextToImageRequest)
		assert.Equal(t, "blur", req.NegativePrompt)
		assert.Equal(t, 768, req.Config.Height)
		assert.Equal(t, 1280, req.Config.Width)
		assert.Equal(t, 3, req.Config.NumberOfImages)
		assert.Equal(t, 6.5, req.Config.CFGScale)
		assert.Equal(t, int64(42), *req.Config.Seed)
		assert.False(t, req.OpenPreview)
	})

	t.Run("プレビュー無効のサーバーでは開かないのだ", func(t *testing.T) {
		gen := &mockGenerator{}
		cs := connect(t, gen, Options{AllowPreview: false})

		callTool(t, cs, "text_to_image", map[string]any{"prompt": "a red fox", "open_browser": true})
		assert.False(t, gen.last().(domain.TextToImageRequest).OpenPreview)
	})
}

func TestEditTools(t *testing.T) {
	gen := &mockGenerator{}
	cs := connect(t, gen, Options{AllowPreview: true})

	t.Run("inpainting はマスク画像だけでも受け付けるのだ", func(t *testing.T) {
		res := callTool(t, cs, "inpainting", map[string]any{
			"image_path": "/in/photo.png", "prompt": "a hat", "mask_image_path": "/in/mask.png",
		})
		require.False(t, res.IsError)

		req := gen.last().(domain.InpaintingRequest)
		assert.Equal(t, "/in/mask.png", req.MaskImagePath)
		assert.Empty(t, req.MaskPrompt)
		assert.Equal(t, domain.GenerationConfig{NumberOfImages: 1, Height: 512, Width: 512, CFGScale: 8}, req.Config)
	})

	t.Run("outpainting の既定モードは DEFAULT なのだ", func(t *testing.T) {
		callTool(t, cs, "outpainting", map[string]any{
			"image_path": "/in/photo.png", "mask_image_path": "/in/mask.png", "prompt": "a beach",
		})
		assert.Equal(t, domain.OutpaintingDefault, gen.last().(domain.OutpaintingRequest).Mode)
	})

	t.Run("image_variation の類似度の既定値は 0.7 なのだ", func(t *testing.T) {
		callTool(t, cs, "image_variation", map[string]any{"image_paths": []string{"/in/a.png", "/in/b.png"}})
		req := gen.last().(domain.ImageVariationRequest)
		assert.Equal(t, []string{"/in/a.png", "/in/b.png"}, req.ImagePaths)
		assert.Equal(t, 0.7, req.SimilarityStrength)
	})

	t.Run("image_conditioning の既定モードは CANNY_EDGE なのだ", func(t *testing.T) {
		callTool(t, cs, "image_conditioning", map[string]any{"image_path": "/in/photo.png", "prompt": "a castle"})
		assert.Equal(t, domain.ControlCannyEdge, gen.last().(domain.ImageConditioningRequest).ControlMode)
	})

	t.Run("color_guided_generation はパレットを渡すのだ", func(t *testing.T) {
		callTool(t, cs, "color_guided_generation", map[string]any{
			"prompt": "sunset", "colors": []string{"#FF5733", "#33FF57"},
		})
		req := gen.last().(domain.ColorGuidedRequest)
		assert.Equal(t, []string{"#FF5733", "#33FF57"}, req.Colors)
		assert.Empty(t, req.ReferenceImagePath)
	})

	t.Run("background_removal は 512 の設定で呼ぶのだ", func(t *testing.T) {
		res := callTool(t, cs, "background_removal", map[string]any{"image_path": "/in/photo.png"})
		require.False(t, res.IsError)
		assert.Contains(t, firstText(t, res), "bg_removed_")
		assert.Equal(t, 512, gen.last().(domain.BackgroundRemovalRequest).Config.Height)
	})
}

func TestToolErrors(t *testing.T) {
	msg := "num_images must be between 1 and 4 (got 5)."
	gen := &mockGenerator{err: domain.Validationf("%s", msg)}
	cs := connect(t, gen, Options{})

	res := callTool(t, cs, "text_to_image", map[string]any{"prompt": "x", "num_images": 5})
	assert.True(t, res.IsError)
	assert.Equal(t, msg, firstText(t, res))

	res = callTool(t, cs, "show_image", map[string]any{"image_path": "/missing.png"})
	assert.True(t, res.IsError)
}

func TestShowImageTool(t *testing.T) {
	gen := &mockGenerator{}
	cs := connect(t, gen, Options{})

	res := callTool(t, cs, "show_image", map[string]any{"image_path": "/in/photo.png"})
	require.False(t, res.IsError)

	require.NotEmpty(t, res.Content)
	img, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, []byte("thumb-png"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, [3]any{"/in/photo.png", 500, 500}, gen.last())
}

func TestImageResource(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	gen := &mockGenerator{images: map[string][]byte{"/out/text2img_1.png": png}}
	cs := connect(t, gen, Options{})
	ctx := context.Background()

	t.Run("画像のバイト列を返すのだ", func(t *testing.T) {
		uri := imageURIPrefix + url.PathEscape("/out/text2img_1.png")
		res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, png, res.Contents[0].Blob)
		assert.Equal(t, "image/png", res.Contents[0].MIMEType)
	})

	t.Run("存在しない画像はエラーなのだ", func(t *testing.T) {
		_, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: imageURIPrefix + "missing.png"})
		assert.Error(t, err)
	})
}

func TestHandler(t *testing.T) {
	gen := &mockGenerator{}
	srv, err := New(gen, Options{})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL}, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "background_removal",
		Arguments: map[string]any{"image_path": "/in/photo.png"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.IsType(t, domain.BackgroundRemovalRequest{}, gen.last())
}
