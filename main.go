package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tradejournal/src/database"
	"tradejournal/src/server"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var APP_NAME = "tradejournal"

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"debug"`
	Format     string `envconfig:"LOG_FORMAT" default:"text"` // text | json
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// SetupLogger configures the global logrus logger. The returned closer
// releases the rotating log file, if any.
func SetupLogger(config LogConfig) io.Closer {
	level, err := logger.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		level = logger.DebugLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(config.Format, "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
	} else {
		logger.SetFormatter(&logger.TextFormatter{
			FullTimestamp: true,
		})
	}

	if config.File == "" {
		logger.SetOutput(os.Stdout)
		return noopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return rotating
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	var logConfig LogConfig
	if err := envconfig.Process("", &logConfig); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	closer := SetupLogger(logConfig)
	defer closer.Close()
	defer handlePanic()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	if err := server.StartServer(server.GetConfig()); err != nil {
		logger.WithError(err).Fatal("Server crashed")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}
