package main

import (
	"encoding/json"
	"log"
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	defaultUserAgent = "golang:redditfs:v0.1.0 (by /u/nicolagi)"
	defaultBaseURL   = "https://www.reddit.com"
	defaultBatchSize = 10
)

type fsConfig struct {
	UserAgent string `json:"user_agent"`
	BaseURL   string `json:"base_url"`
	BatchSize int    `json:"batch_size"`
}

// loadDefaultConfig reads $HOME/lib/redditfs/config. The file is
// optional; a missing file yields the defaults.
func loadDefaultConfig() (*fsConfig, error) {
	var config fsConfig
	cuser, err := user.Current()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	f, err := os.Open(filepath.Join(cuser.HomeDir, "lib", "redditfs", "config"))
	if os.IsNotExist(err) {
		config.applyDefaults()
		return &config, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning, could not close %q: %v", f.Name(), err)
		}
	}()
	if err := json.NewDecoder(f).Decode(&config); err != nil {
		return nil, errors.WithStack(err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *fsConfig) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
}
