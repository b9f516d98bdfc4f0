package importcsv

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	File              string `envconfig:"CSV_FILE"`
	DefaultStrategyID string `envconfig:"DEFAULT_STRATEGY_ID"`
	DefaultAccountID  string `envconfig:"DEFAULT_ACCOUNT_ID"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
