package handler

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DefaultPageSize   int   `envconfig:"DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize       int   `envconfig:"MAX_PAGE_SIZE" default:"200"`
	MaxUploadBytes    int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	AutoDetectSession bool  `envconfig:"AUTO_DETECT_SESSION" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
