// Package bedrock は Amazon Bedrock Runtime 経由で Nova Canvas を呼び出します。
package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
	"github.com/shouni/nova-canvas-kit/pkg/envelope"
)

const (
	DefaultModelID = "amazon.nova-canvas-v1:0"
	contentType    = "application/json"
)

// InvokeModelAPI は Invoker が使う Bedrock Runtime の操作です。
// [bedrockruntime.Client] がこれを満たします。
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Invoker は Envelope を1回だけ送信し、最初の画像をデコードして返します。
// リトライは行いません。
type Invoker struct {
	client  InvokeModelAPI
	modelID string
}

// NewInvoker は Invoker を初期化します。
func NewInvoker(client InvokeModelAPI, modelID string) (*Invoker, error) {
	if client == nil {
		return nil, fmt.Errorf("client (InvokeModelAPI) is required")
	}
	if modelID == "" {
		modelID = DefaultModelID
	}
	return &Invoker{client: client, modelID: modelID}, nil
}

// ModelID は呼び出し先のモデルIDです。
func (i *Invoker) ModelID() string { return i.modelID }

type invokeResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error"`
}

// Invoke は通信失敗を KindBackend、モデル側の失敗を KindGeneration として返します。
// 複数枚生成した場合でも images[0] だけを使います。
func (i *Invoker) Invoke(ctx context.Context, env *envelope.Envelope) (*domain.GeneratedImage, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "Nova Canvas に画像生成をリクエストします", "model", i.modelID, "task", env.TaskType())

	out, err := i.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(i.modelID),
		Body:        body,
		Accept:      aws.String(contentType),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		msg := providerMessage(err)
		slog.ErrorContext(ctx, "Bedrock の呼び出しに失敗しました", "model", i.modelID, "error", msg)
		return nil, domain.NewBackendError("Client error occurred: "+msg, err)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, domain.GenerationFailuref("Image generation error. Error: invalid response body: %v", err)
	}
	// 通信が成功していても error フィールドがあれば失敗扱い
	if resp.Error != nil {
		return nil, domain.GenerationFailuref("Image generation error. Error: %s", *resp.Error)
	}
	if len(resp.Images) == 0 {
		return nil, domain.GenerationFailuref("Image generation error. Error: response contained no images")
	}
	if len(resp.Images) > 1 {
		slog.WarnContext(ctx, "複数の画像が返されましたが、先頭の1枚のみを使用します", "count", len(resp.Images))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, domain.GenerationFailuref("Image generation error. Error: invalid image payload: %v", err)
	}

	slog.InfoContext(ctx, "画像生成に成功しました", "model", i.modelID, "bytes", len(data))
	return &domain.GeneratedImage{Data: data, Task: env.TaskType()}, nil
}

// providerMessage は smithy.APIError ならプロバイダーのメッセージを取り出します。
func providerMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if m := apiErr.ErrorMessage(); m != "" {
			return m
		}
		return apiErr.ErrorCode()
	}
	return err.Error()
}
