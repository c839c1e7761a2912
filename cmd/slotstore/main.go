package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/0xRadioAc7iv/go-slotstore/core"
	"github.com/0xRadioAc7iv/go-slotstore/internal"
	"github.com/0xRadioAc7iv/go-slotstore/internal/logger"
	"github.com/0xRadioAc7iv/go-slotstore/internal/utils"
)

var (
	configPath   string
	dirPath      string
	host         string
	port         int
	syncInterval uint
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "slotstore",
	Short: "Serve a slot-addressed object store over TCP",
	Long: `slotstore keeps variable-length content in a flat content file and a
fixed-size record per slot in a directory file. Freed slots are reused
first-fit by later writes.

Settings are read from defaults, then the --config ini file, then flags.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	defaults := internal.DefaultConfig()

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to an ini config file")
	rootCmd.Flags().StringVarP(&dirPath, "dir", "d", defaults.DirectoryPath, "Directory to keep the store in")
	rootCmd.Flags().StringVar(&host, "host", defaults.Host, "Address to bind the TCP server to (empty binds all interfaces)")
	rootCmd.Flags().IntVarP(&port, "port", "p", defaults.Port, "Port to use for the TCP server")
	rootCmd.Flags().UintVar(&syncInterval, "sync", defaults.SyncInterval, "Seconds between fsyncs (0 disables)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level (trace, debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags given explicitly win over the config file.
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.DirectoryPath = dirPath
	}
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("sync") {
		cfg.SyncInterval = syncInterval
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, os.Stderr)

	if err := os.MkdirAll(cfg.DirectoryPath, 0755); err != nil {
		return errors.Wrapf(err, "create %s", cfg.DirectoryPath)
	}

	store := core.Slotstore{
		DirectoryPath:   cfg.DirectoryPath,
		ContentFileName: cfg.ContentFileName,
		IndexFileName:   cfg.IndexFileName,
		ListenerHost:    cfg.Host,
		ListenerPort:    cfg.Port,
		SyncInterval:    cfg.SyncInterval,
		Logger:          log,
	}

	if err := store.Start(); err != nil {
		return errors.Wrap(err, "error while starting")
	}
	defer store.Stop()

	sig := utils.ListenForProcessInterruptOrKill()
	log.WithField("signal", sig.String()).Info("shutting down")

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
