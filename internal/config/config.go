// Package config loads spindle settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the runtime settings of a spindle invocation.
type Config struct {
	// DBPath is the sqlite file holding profiles and the thread archive.
	DBPath string
	// TweetURL and UploadURL override the public API endpoints. Empty
	// means the real service.
	TweetURL  string
	UploadURL string
	Verbose   bool
}

// Load reads SPINDLE_* environment variables and, when present,
// config.yaml from the user config directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPINDLE")
	v.AutomaticEnv()
	v.SetDefault("db", defaultDBPath())
	v.SetDefault("tweet_url", "")
	v.SetDefault("upload_url", "")
	v.SetDefault("verbose", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "spindle"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		DBPath:    v.GetString("db"),
		TweetURL:  v.GetString("tweet_url"),
		UploadURL: v.GetString("upload_url"),
		Verbose:   v.GetBool("verbose"),
	}, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spindle.db"
	}
	return filepath.Join(home, ".spindle.db")
}
