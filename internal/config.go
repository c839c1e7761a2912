package internal

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/0xRadioAc7iv/go-slotstore/internal/utils"
)

type Config struct {
	Host string
	Port int

	DirectoryPath   string
	ContentFileName string
	IndexFileName   string
	SyncInterval    uint // seconds between fsyncs of both stores

	LogLevel string

	DialTimeout time.Duration
}

const DEFAULT_HOST = "127.0.0.1"
const DEFAULT_PORT = 9999
const DEFAULT_DIRECTORY = "./"
const DEFAULT_CONTENT_FILE = "collections.db"
const DEFAULT_INDEX_FILE = "index.db"
const DEFAULT_SYNC_INTERVAL = 15
const DEFAULT_LOG_LEVEL = "info"
const DEFAULT_DIAL_TIMEOUT = 5 * time.Second

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}

func DefaultConfig() *Config {
	return &Config{
		Host:            DEFAULT_HOST,
		Port:            DEFAULT_PORT,
		DirectoryPath:   DEFAULT_DIRECTORY,
		ContentFileName: DEFAULT_CONTENT_FILE,
		IndexFileName:   DEFAULT_INDEX_FILE,
		SyncInterval:    DEFAULT_SYNC_INTERVAL,
		LogLevel:        DEFAULT_LOG_LEVEL,
		DialTimeout:     DEFAULT_DIAL_TIMEOUT,
	}
}

// LoadConfig returns the defaults overlaid with the values found in the ini
// file at path. A missing file is not an error; a malformed one is.
//
//	[server]
//	host = 127.0.0.1
//	port = 9999
//
//	[storage]
//	dir = ./
//	content_file = collections.db
//	index_file = index.db
//	sync_interval = 15
//
//	[log]
//	level = info
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" || !utils.PathExists(path) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.apply(file); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

func (cfg *Config) apply(file *ini.File) error {
	server := file.Section("server")
	cfg.Host = server.Key("host").MustString(cfg.Host)
	cfg.Port = server.Key("port").MustInt(cfg.Port)

	storage := file.Section("storage")
	cfg.DirectoryPath = storage.Key("dir").MustString(cfg.DirectoryPath)
	cfg.ContentFileName = storage.Key("content_file").MustString(cfg.ContentFileName)
	cfg.IndexFileName = storage.Key("index_file").MustString(cfg.IndexFileName)
	cfg.SyncInterval = storage.Key("sync_interval").MustUint(cfg.SyncInterval)

	cfg.LogLevel = strings.ToLower(file.Section("log").Key("level").MustString(cfg.LogLevel))

	return cfg.Validate()
}

// Validate reports the first setting that cannot be used.
func (cfg *Config) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ContentFileName == "" || cfg.IndexFileName == "" {
		return errors.New("content and index file names must be set")
	}
	if cfg.ContentFileName == cfg.IndexFileName {
		return errors.Errorf("content and index files must differ, both are %q", cfg.IndexFileName)
	}

	for _, level := range validLogLevels {
		if cfg.LogLevel == level {
			return nil
		}
	}
	return errors.Errorf("invalid log level %q", cfg.LogLevel)
}
