// Package storage は生成画像を出力ディレクトリに書き出します。
package storage

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shouni/nova-canvas-kit/pkg/domain"
)

const timestampLayout = "20060102_150405"

// Materializer は画像をファイルに保存し、インライン返却用の base64 も作ります。
//
// ファイル名は {prefix}_{YYYYMMDD_HHMMSS}.png です。同じ秒・同じ prefix の
// 呼び出しは同じファイル名になり、後から書いた方が残ります。
type Materializer struct {
	dir     string
	preview PreviewHook
	now     func() time.Time
}

// Option は Materializer の設定を変更します。
type Option func(*Materializer)

// WithClock はファイル名に使う時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(m *Materializer) { m.now = now }
}

// NewMaterializer は出力ディレクトリを作成して Materializer を返します。
// preview が nil の場合はプレビューを開きません。
func NewMaterializer(dir string, preview PreviewHook, opts ...Option) (*Materializer, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("出力ディレクトリのパス解決に失敗しました: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	slog.Info("画像の保存先ディレクトリ", "dir", abs)

	m := &Materializer{dir: abs, preview: preview, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir は保存先の絶対パスです。
func (m *Materializer) Dir() string { return m.dir }

// Materialize は data を書き出します。openPreview が true ならプレビューを
// 非同期で開きますが、その成否は戻り値に影響しません。
func (m *Materializer) Materialize(data []byte, prefix string, openPreview bool) (*domain.MaterializedImage, error) {
	filename := fmt.Sprintf("%s_%s.png", prefix, m.now().Format(timestampLayout))
	path := filepath.Join(m.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("画像の保存に失敗しました: %w", err)
	}
	slog.Info("画像を保存しました", "path", path, "bytes", len(data))

	if openPreview && m.preview != nil {
		launchPreview(m.preview, path)
	}

	return &domain.MaterializedImage{
		Path:     path,
		Base64:   base64.StdEncoding.EncodeToString(data),
		Filename: filename,
	}, nil
}
