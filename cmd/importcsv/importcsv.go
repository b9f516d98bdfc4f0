package importcsv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tradejournal/src/csvimport"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

type importer interface {
	Import(ctx context.Context, r io.Reader, defaults csvimport.Defaults) (*csvimport.Result, error)
}

// ImportCSV loads a trade export from disk through the same importer the
// upload endpoint uses.
type ImportCSV struct {
	Log      *logger.Entry
	Config   *Config
	Importer importer
}

func (i *ImportCSV) Start(ctx context.Context) (*csvimport.Result, error) {
	if i.Config.File == "" {
		return nil, errors.New("CSV_FILE not set")
	}

	defaults, err := i.defaults()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(i.Config.File)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", i.Config.File, err)
	}
	defer f.Close()

	result, err := i.Importer.Import(ctx, f, defaults)
	if err != nil {
		return nil, err
	}

	for _, rowErr := range result.Errors {
		i.Log.WithFields(map[string]interface{}{
			"row":   rowErr.Row,
			"error": rowErr.Error,
		}).Warn("Row skipped")
	}
	i.Log.WithFields(map[string]interface{}{
		"file":     i.Config.File,
		"imported": result.Imported,
		"skipped":  len(result.Errors),
	}).Info("Import finished")

	return result, nil
}

func (i *ImportCSV) defaults() (csvimport.Defaults, error) {
	var defaults csvimport.Defaults
	if v := i.Config.DefaultStrategyID; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return defaults, fmt.Errorf("invalid DEFAULT_STRATEGY_ID: %w", err)
		}
		defaults.StrategyID = id
	}
	if v := i.Config.DefaultAccountID; v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return defaults, fmt.Errorf("invalid DEFAULT_ACCOUNT_ID: %w", err)
		}
		defaults.AccountID = id
	}
	return defaults, nil
}
