package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/nova-canvas-kit/pkg/bedrock"
	"github.com/shouni/nova-canvas-kit/pkg/config"
	"github.com/shouni/nova-canvas-kit/pkg/envelope"
	"github.com/shouni/nova-canvas-kit/pkg/generator"
	"github.com/shouni/nova-canvas-kit/pkg/imgutil"
	"github.com/shouni/nova-canvas-kit/pkg/mcpserver"
	"github.com/shouni/nova-canvas-kit/pkg/storage"
)

// rootFlags はコマンドラインで指定された値です。空の値は設定ファイルと環境変数の値を残します。
type rootFlags struct {
	configFile string
	envFile    string
	transport  string
	port       int
	imagesDir  string
	modelID    string
	region     string
	logLevel   string
	noPreview  bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "novacanvas",
		Short: "Amazon Nova Canvas image generation MCP server",
		Long: `novacanvas exposes Amazon Nova Canvas image generation, editing and
background removal as MCP tools over stdio or Streamable HTTP.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			warnMissingConfig(logger, cfg)
			return run(cmd.Context(), cmd.ErrOrStderr(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "YAML config file")
	f.StringVar(&flags.envFile, "env-file", ".env", ".env file loaded into the environment")
	f.StringVar(&flags.transport, "transport", "", "transport: stdio or http")
	f.IntVar(&flags.port, "port", 0, "HTTP port (http transport only)")
	f.StringVar(&flags.imagesDir, "images-dir", "", "directory where generated images are saved")
	f.StringVar(&flags.modelID, "model-id", "", "Bedrock model id")
	f.StringVar(&flags.region, "region", "", "AWS region")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&flags.noPreview, "no-preview", false, "never open generated images in a browser")

	return cmd
}

// warnMissingConfig は指定された設定ファイルが無かったことを、ロガー設定後に通知します。
func warnMissingConfig(logger *slog.Logger, cfg *config.Config) {
	if cfg.ConfigFile != "" && !cfg.ConfigFileFound {
		logger.Warn("設定ファイルが見つからないため既定値を使用します", "path", cfg.ConfigFile)
	}
}

// apply は明示的に指定されたフラグで cfg を上書きし、再検証します。
func (fl *rootFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("transport") {
		cfg.Transport = fl.transport
	}
	if changed("port") {
		cfg.Port = fl.port
	}
	if changed("images-dir") {
		cfg.ImagesDir = fl.imagesDir
	}
	if changed("model-id") {
		cfg.ModelID = fl.modelID
	}
	if changed("region") {
		cfg.Region = fl.region
	}
	if changed("log-level") {
		cfg.LogLevel = fl.logLevel
	}
	if fl.noPreview {
		cfg.OpenPreview = false
	}
	return cfg.Validate()
}

// newLogger は stderr に出力する slog.Logger を作成します。stdout は stdio トランスポートが使います。
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// buildServer は設定から依存関係を組み立てます。
func buildServer(ctx context.Context, cfg *config.Config) (*mcpserver.Server, string, error) {
	client, err := bedrock.NewRuntimeClient(ctx, bedrock.ClientOptions{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
		Endpoint:        cfg.BedrockEndpoint,
	})
	if err != nil {
		return nil, "", err
	}
	invoker, err := bedrock.NewInvoker(client, cfg.ModelID)
	if err != nil {
		return nil, "", err
	}

	store, err := storage.NewMaterializer(cfg.ImagesDir, storage.BrowserPreview{})
	if err != nil {
		return nil, "", err
	}

	renderer := imgutil.NewRenderer(
		imgutil.NewFetchClient(cfg.FetchTimeout, cfg.BlockPrivateURL),
		imgutil.WithPrivateURLBlocking(cfg.BlockPrivateURL),
	)

	gen, err := generator.NewNovaCanvasGenerator(envelope.NewBuilder(nil), invoker, store, renderer, nil)
	if err != nil {
		return nil, "", err
	}

	srv, err := mcpserver.New(gen, mcpserver.Options{AllowPreview: cfg.OpenPreview})
	if err != nil {
		return nil, "", err
	}
	return srv, store.Dir(), nil
}

func run(ctx context.Context, stderr io.Writer, cfg *config.Config) error {
	srv, dir, err := buildServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("サーバーの初期化に失敗しました: %w", err)
	}

	fmt.Fprintln(stderr, renderBanner(bannerInfo{
		ModelID:   cfg.ModelID,
		Region:    cfg.Region,
		ImagesDir: dir,
		Transport: cfg.Transport,
		Port:      cfg.Port,
	}))

	switch cfg.Transport {
	case config.TransportHTTP:
		return srv.RunHTTP(ctx, cfg.Port)
	default:
		return srv.RunStdio(ctx)
	}
}
