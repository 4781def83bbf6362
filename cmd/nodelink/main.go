// cmd/nodelink/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/config"
	"github.com/tamzrod/nodelink/internal/logging"
	"github.com/tamzrod/nodelink/internal/node"
	"github.com/tamzrod/nodelink/internal/rpc"
)

var (
	cfgPath          string
	envFile          string
	lastSelectedPath string
	machineOverride  string
)

var rootCmd = &cobra.Command{
	Use:   "nodelink",
	Short: "Control channel client for plasma power-supply nodes",
	Long: `nodelink talks JSON-RPC over WebSocket to a remote power-supply node.

It polls telemetry, classifies link quality, and runs one-off
configuration operations (parameters, Wi-Fi selection, node address).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "nodelink.yaml", "Path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&lastSelectedPath, "last-selected", "", "File remembering the last selected machine")
	rootCmd.PersistentFlags().StringVarP(&machineOverride, "machine", "m", "", "Machine to use instead of current_machine")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load NODELINK_* overrides from a .env file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig runs Load, the environment overrides, Validate and Normalize,
// then applies the last-selected file and the --machine override.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("env file: %w", err)
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg, os.Getenv)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)

	if cfg.CurrentMachine == "" && lastSelectedPath != "" {
		name, err := config.LoadLastSelected(lastSelectedPath)
		if err != nil {
			return nil, err
		}
		cfg.CurrentMachine = name
	}
	if machineOverride != "" {
		cfg.CurrentMachine = machineOverride
	}
	return cfg, nil
}

// session bundles what every node-facing command needs.
type session struct {
	cfg    *config.Config
	store  *config.Store
	log    *zap.Logger
	client *node.Client
}

func (s *session) Close() {
	_ = s.client.Close()
	_ = s.log.Sync()
}

func openSession(opts ...node.Option) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	store := config.NewStore(cfg)
	// --machine and the last-selected file bypass Validate.
	if err := store.Select(cfg.CurrentMachine); err != nil {
		return nil, err
	}
	if _, ok := store.Target(); !ok {
		return nil, fmt.Errorf("no machine selected: set current_machine or pass --machine")
	}

	dial := node.RPCDialer(rpc.Options{
		ConnectTimeout:  time.Duration(cfg.Link.ConnectTimeoutMs) * time.Millisecond,
		ResponseTimeout: time.Duration(cfg.Link.ResponseTimeoutMs) * time.Millisecond,
		Logger:          log,
	})

	opts = append([]node.Option{node.WithLogger(log)}, opts...)

	return &session{
		cfg:    cfg,
		store:  store,
		log:    log,
		client: node.New(store, dial, opts...),
	}, nil
}
