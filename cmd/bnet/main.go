package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Checker-Finance/battlenet/pkg/battlenet"
	"github.com/Checker-Finance/battlenet/pkg/cache"
	"github.com/Checker-Finance/battlenet/pkg/config"
	"github.com/Checker-Finance/battlenet/pkg/logger"
	"github.com/Checker-Finance/battlenet/pkg/secrets"
	"github.com/Checker-Finance/battlenet/pkg/utils"
)

// Version information, overridden with -ldflags "-X main.version=..." at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type CLI struct {
	Region      string      `short:"r" help:"API region (us, eu, kr, tw)." default:"${region}"`
	Locale      string      `short:"l" help:"Response locale." default:"${locale}"`
	ClientID    string      `name:"client-id" help:"OAuth client id. Falls back to CLIENTID, then the secrets file."`
	Secret      string      `help:"OAuth client secret. Visible in the process list; prefer BLSECRET or the secrets file."`
	SecretsFile string      `name:"secrets-file" help:"JSON file with CLIENTID and BLSECRET." default:"${secrets_file}"`
	Output      string      `short:"o" help:"Output format." enum:"json,yaml" default:"json"`
	Version     VersionFlag `name:"version" help:"Print version information"`

	Pets  PetsCmd  `cmd:"" help:"Print the battle pet index"`
	Token TokenCmd `cmd:"" help:"Print the WoW Token index"`
}

type VersionFlag bool

func (v VersionFlag) BeforeApply() error {
	fmt.Printf("bnet %s\n", version)
	fmt.Printf("  commit: %s\n", commit)
	fmt.Printf("  built:  %s\n", date)
	os.Exit(0)
	return nil
}

type PetsCmd struct{}

type TokenCmd struct{}

func main() {
	cfg := config.Load()
	initLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bnet"),
		kong.Description("Query the Battle.net game-data API"),
		kong.Vars{
			"region":       cfg.Region,
			"locale":       cfg.Locale,
			"secrets_file": cfg.SecretsFile,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&cli, cfg)
	stop()

	if err != nil {
		logger.S().Errorw("bnet.command_failed", "command", kctx.Command(), "error", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

// initLogging keeps stdout for command output.
func initLogging(cfg *config.Config) {
	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel, "stderr")
}

func (c *PetsCmd) Run(ctx context.Context, cli *CLI, cfg *config.Config) error {
	client, closeFn, err := newClient(ctx, cli, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	index, err := client.GetPetIndex(ctx, cli.Locale)
	if err != nil {
		return fmt.Errorf("get pet index: %w", err)
	}
	return render(os.Stdout, cli.Output, index)
}

func (c *TokenCmd) Run(ctx context.Context, cli *CLI, cfg *config.Config) error {
	client, closeFn, err := newClient(ctx, cli, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	index, err := client.GetTokenIndex(ctx, cli.Locale)
	if err != nil {
		return fmt.Errorf("get token index: %w", err)
	}
	if price, ok := index["price"].(float64); ok {
		index["price_gold"] = battlenet.GoldFromCopper(int64(price)).String()
	}
	return render(os.Stdout, cli.Output, index)
}

// newClient wires config into client options. The returned func releases the cache connection.
func newClient(ctx context.Context, cli *CLI, cfg *config.Config) (*battlenet.Client, func(), error) {
	log := logger.L()
	closeFn := func() {}

	opts := []battlenet.Option{
		battlenet.WithLogger(log),
		battlenet.WithCredentials(cli.ClientID, cli.Secret),
		battlenet.WithSecretsFile(cli.SecretsFile),
		battlenet.WithTimeout(cfg.HTTPTimeout),
		battlenet.WithRateLimit(cfg.RateRPS, cfg.RateBurst),
	}
	if cfg.InsecureSkipVerify {
		log.Warn("bnet.tls_verification_disabled")
		opts = append(opts, battlenet.WithInsecureSkipVerify())
	}

	// --- Optional AWS Secrets Manager credential tier ---
	if cfg.AWSSecretName != "" {
		provider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion, cfg.AWSSecretName)
		if err != nil {
			return nil, closeFn, err
		}
		opts = append(opts, battlenet.WithSecretProvider(provider))
	}

	// --- Optional response cache ---
	if cfg.CacheTTL > 0 {
		if cfg.RedisAddr != "" {
			log.Info("bnet.cache.redis", zap.String("addr", utils.MaskDSN(cfg.RedisAddr)))
			rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
			if err != nil {
				return nil, closeFn, err
			}
			closeFn = func() {
				if err := rc.Close(); err != nil {
					log.Warn("bnet.cache.close_failed", zap.Error(err))
				}
			}
			opts = append(opts, battlenet.WithCache(rc, cfg.CacheTTL))
		} else {
			mc := cache.NewMemory()
			closeFn = mc.Close
			opts = append(opts, battlenet.WithCache(mc, cfg.CacheTTL))
		}
	}

	client, err := battlenet.New(ctx, cli.Region, opts...)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return client, closeFn, nil
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// exitCode maps an error to a process exit status: the HTTP status class when the
// failure carries one (4 for 4xx, 5 for 5xx, 2 for a stray 2xx), otherwise 1.
func exitCode(err error) int {
	if status := battlenet.StatusCode(err); status > 0 {
		return status / 100
	}
	var netErr *battlenet.NetworkError
	if errors.As(err, &netErr) {
		return 3
	}
	return 1
}
