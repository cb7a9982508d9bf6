package domain

// TaskType は Nova Canvas に送るリクエストの種別（taskType）です。
type TaskType string

const (
	TaskTextImage             TaskType = "TEXT_IMAGE"
	TaskInpainting            TaskType = "INPAINTING"
	TaskOutpainting           TaskType = "OUTPAINTING"
	TaskImageVariation        TaskType = "IMAGE_VARIATION"
	TaskColorGuidedGeneration TaskType = "COLOR_GUIDED_GENERATION"
	TaskBackgroundRemoval     TaskType = "BACKGROUND_REMOVAL"
)

// GenerationConfig は全タスク共通の imageGenerationConfig ブロックです。
// Seed は nil の場合は送信しません。
type GenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CFGScale       float64 `json:"cfgScale"`
	Seed           *int64  `json:"seed,omitempty"`
}

// GeneratedImage はバックエンドが返した画像をデコードしたものです。
// 保存されるまではメモリ上にだけ存在します。
type GeneratedImage struct {
	Data []byte
	Task TaskType
}

// MaterializedImage はディスクに書き出した画像と、そのインライン返却用のコピーです。
type MaterializedImage struct {
	Path     string
	Base64   string
	Filename string
}

// Thumbnail は縮小済みの PNG 画像です。ディスクには書き出しません。
type Thumbnail struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Result は各生成ツールが呼び出し元に返す内容です。
type Result struct {
	ImagePath string `json:"image_path"`
	Message   string `json:"message"`
}
