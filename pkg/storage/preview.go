package storage

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/browser"
)

// PreviewHook は保存後に画像をローカルで開く後処理です。
type PreviewHook interface {
	Open(path string) error
}

// PreviewFunc は関数を PreviewHook として使うためのアダプターです。
type PreviewFunc func(path string) error

func (f PreviewFunc) Open(path string) error { return f(path) }

// BrowserPreview は既定のブラウザで file:// URL を開きます。
// 起動したコマンドの出力は Output に流します。nil なら標準エラーです。
// 標準出力は stdio トランスポートが使うため、決して書き込みません。
type BrowserPreview struct {
	Output io.Writer
}

// browserMu は pkg/browser のパッケージ変数 Stdout/Stderr の差し替えを直列化します。
var browserMu sync.Mutex

func (p BrowserPreview) Open(path string) error {
	out := p.Output
	if out == nil {
		out = os.Stderr
	}

	browserMu.Lock()
	defer browserMu.Unlock()

	prevOut, prevErr := browser.Stdout, browser.Stderr
	browser.Stdout, browser.Stderr = out, out
	defer func() { browser.Stdout, browser.Stderr = prevOut, prevErr }()

	return browser.OpenURL(fileURL(path))
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// launchPreview はプレビューを別 goroutine で起動し、待ちません。
// エラーも panic もログに残すだけです。
func launchPreview(hook PreviewHook, path string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("プレビューの起動中に panic が発生しました", "path", path, "panic", fmt.Sprint(r))
			}
		}()
		if err := hook.Open(path); err != nil {
			slog.Warn("ブラウザで画像を開けませんでした", "path", path, "error", err)
			return
		}
		slog.Info("ブラウザで画像を開きました", "path", path)
	}()
}
