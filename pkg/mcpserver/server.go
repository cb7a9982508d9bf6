// Package mcpserver は画像生成の各操作を MCP のツールとリソースとして公開します。
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shouni/nova-canvas-kit/pkg/generator"
)

const (
	ServerName    = "nova-canvas"
	ServerVersion = "0.1.0"

	shutdownTimeout = 5 * time.Second
)

// Options はツール層の動作を調整します。
type Options struct {
	// AllowPreview が false の場合、open_browser の指定に関わらずプレビューを開きません。
	AllowPreview bool
}

// Server は ImageGenerator を MCP サーバーに登録したものです。
type Server struct {
	gen    generator.ImageGenerator
	opts   Options
	server *mcp.Server
}

// New はツールとリソーステンプレートを登録した Server を返します。
func New(gen generator.ImageGenerator, opts Options) (*Server, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (ImageGenerator) is required")
	}

	s := &Server{
		gen:    gen,
		opts:   opts,
		server: mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil),
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// MCP は登録済みの *mcp.Server を返します。
func (s *Server) MCP() *mcp.Server { return s.server }

// RunStdio は標準入出力でクライアントと通信し、切断か ctx のキャンセルまでブロックします。
func (s *Server) RunStdio(ctx context.Context) error {
	slog.InfoContext(ctx, "stdio トランスポートで待ち受けます")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler は Streamable HTTP トランスポートの http.Handler を返します。
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP は port で Streamable HTTP を待ち受け、ctx のキャンセルで停止します。
func (s *Server) RunHTTP(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP トランスポートで待ち受けます", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP サーバーが停止しました: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP サーバーの停止に失敗しました: %w", err)
		}
		return nil
	}
}
