package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/park285/cheese-board/internal/stubserver"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type stubConfig struct {
	addr   string
	assets string
}

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer obslog.Sync()
	cobra.CheckErr(newCmd(&stubConfig{}).ExecuteContext(ctx))
}

func newCmd(cfg *stubConfig) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CHESS_STUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults, err := config.LoadPartial()
	if err != nil {
		defaults = &config.AppConfig{StubAddr: ":8080"}
	}

	cmd := &cobra.Command{
		Use:           "chess-stub",
		Short:         "In-memory chess server for local development",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVarP(&cfg.addr, "addr", "a", defaults.StubAddr, "address to listen on (env: CHESS_STUB_ADDR)")
	fs.StringVar(&cfg.assets, "assets", defaults.AssetDir, "directory containing images/<piece>.png (env: CHESS_STUB_ASSETS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func serve(ctx context.Context, cfg *stubConfig) error {
	if err := obslog.InitFromEnv("chess-stub"); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger := obslog.L()

	opts := []stubserver.Option{stubserver.WithLogger(logger)}
	if cfg.assets != "" {
		opts = append(opts, stubserver.WithAssets(os.DirFS(cfg.assets)))
	}
	srv := &http.Server{
		Addr:              cfg.addr,
		Handler:           stubserver.New(opts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub_listening", zap.String("addr", cfg.addr), zap.String("assets", cfg.assets))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("stub_shutting_down")
	return srv.Shutdown(shutdownCtx)
}
