// Package envelope は Nova Canvas のリクエスト形式（Envelope）を組み立てます。
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

// TaskParams はタスク別パラメータブロックの閉じた集合です。
// 実装はこのパッケージ内の型に限られます。
type TaskParams interface {
	TaskType() domain.TaskType
	isTaskParams()
}

type TextToImageParams struct {
	Text           string `json:"text"`
	NegativeText   string `json:"negativeText,omitempty"`
	ConditionImage string `json:"conditionImage,omitempty"`
	ControlMode    string `json:"controlMode,omitempty"`
}

type InPaintingParams struct {
	Text         string `json:"text,omitempty"`
	NegativeText string `json:"negativeText,omitempty"`
	Image        string `json:"image"`
	MaskPrompt   string `json:"maskPrompt,omitempty"`
	MaskImage    string `json:"maskImage,omitempty"`
}

type OutPaintingParams struct {
	Text            string `json:"text,omitempty"`
	NegativeText    string `json:"negativeText,omitempty"`
	Image           string `json:"image"`
	MaskImage       string `json:"maskImage"`
	OutPaintingMode string `json:"outPaintingMode"`
}

type ImageVariationParams struct {
	Text               string   `json:"text,omitempty"`
	NegativeText       string   `json:"negativeText,omitempty"`
	Images             []string `json:"images"`
	SimilarityStrength float64  `json:"similarityStrength"`
}

type ColorGuidedGenerationParams struct {
	Text           string   `json:"text"`
	NegativeText   string   `json:"negativeText,omitempty"`
	Colors         []string `json:"colors"`
	ReferenceImage string   `json:"referenceImage,omitempty"`
}

type BackgroundRemovalParams struct {
	Image string `json:"image"`
}

func (*TextToImageParams) TaskType() domain.TaskType { return domain.TaskTextImage }
func (*InPaintingParams) TaskType() domain.TaskType  { return domain.TaskInpainting }
func (*OutPaintingParams) TaskType() domain.TaskType { return domain.TaskOutpainting }
func (*ImageVariationParams) TaskType() domain.TaskType {
	return domain.TaskImageVariation
}
func (*ColorGuidedGenerationParams) TaskType() domain.TaskType {
	return domain.TaskColorGuidedGeneration
}
func (*BackgroundRemovalParams) TaskType() domain.TaskType {
	return domain.TaskBackgroundRemoval
}

func (*TextToImageParams) isTaskParams()           {}
func (*InPaintingParams) isTaskParams()            {}
func (*OutPaintingParams) isTaskParams()           {}
func (*ImageVariationParams) isTaskParams()        {}
func (*ColorGuidedGenerationParams) isTaskParams() {}
func (*BackgroundRemovalParams) isTaskParams()     {}

// Envelope はバックエンドへ送る1リクエスト分です。
// taskType と一致するパラメータブロックが必ず1つだけ入ります。
type Envelope struct {
	Params TaskParams
	Config domain.GenerationConfig
}

// TaskType は Params から判別子を返します。
func (e *Envelope) TaskType() domain.TaskType {
	if e.Params == nil {
		return ""
	}
	return e.Params.TaskType()
}

// MarshalJSON は taskType / タスク別ブロック / imageGenerationConfig の3キーに展開します。
func (e *Envelope) MarshalJSON() ([]byte, error) {
	key, err := paramsKey(e.Params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"taskType":              e.Params.TaskType(),
		key:                     e.Params,
		"imageGenerationConfig": e.Config,
	})
}

func paramsKey(p TaskParams) (string, error) {
	switch p.(type) {
	case *TextToImageParams:
		return "textToImageParams", nil
	case *InPaintingParams:
		return "inPaintingParams", nil
	case *OutPaintingParams:
		return "outPaintingParams", nil
	case *ImageVariationParams:
		return "imageVariationParams", nil
	case *ColorGuidedGenerationParams:
		return "colorGuidedGenerationParams", nil
	case *BackgroundRemovalParams:
		return "backgroundRemovalParams", nil
	case nil:
		return "", fmt.Errorf("envelope has no task params")
	default:
		return "", fmt.Errorf("unsupported task params type %T", p)
	}
}
