package report

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL    string        `envconfig:"API_BASE_URL" default:"http://localhost:9898"`
	Timeout    time.Duration `envconfig:"REPORT_TIMEOUT" default:"15s"`
	RetryCount int           `envconfig:"REPORT_RETRY_COUNT" default:"2"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
