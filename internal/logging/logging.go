// Package logging configures the go-logging backend shared by every package.
package logging

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

const (
	// AppModule is the logger of the command line program
	AppModule = "dinersql"
	// EngineModule is the logger of the query engine, dataframes and sessions
	EngineModule = "engine"
	// ReaderModule is the logger of the table loaders
	ReaderModule = "reader"
)

func init() {
	quietDefaults()
}

// quietDefaults keeps the engine and reader loggers at WARNING until
// InitLogger installs configured levels.
func quietDefaults() {
	logging.SetLevel(logging.WARNING, EngineModule)
	logging.SetLevel(logging.WARNING, ReaderModule)
}

const format = `%{time:2006-01-02 15:04:05} %{level:.5s}     %{module:-8s} %{message}`

// InitLogger sends log records to stderr. appLevel applies to the program's
// own logger; engineLevel to the engine and reader loggers, which are noisy
// at DEBUG. Level names are go-logging's (DEBUG, INFO, WARNING, ERROR...).
func InitLogger(appLevel, engineLevel string) error {
	return InitLoggerTo(os.Stderr, appLevel, engineLevel)
}

// InitLoggerTo is InitLogger with an explicit destination
func InitLoggerTo(w io.Writer, appLevel, engineLevel string) error {
	appCode, err := logging.LogLevel(appLevel)
	if err != nil {
		return err
	}
	engineCode, err := logging.LogLevel(engineLevel)
	if err != nil {
		return err
	}

	baseBackend := logging.NewLogBackend(w, "", 0)
	backendFormatter := logging.NewBackendFormatter(baseBackend, logging.MustStringFormatter(format))

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(appCode, "")
	backendLeveled.SetLevel(appCode, AppModule)
	backendLeveled.SetLevel(engineCode, EngineModule)
	backendLeveled.SetLevel(engineCode, ReaderModule)

	logging.SetBackend(backendLeveled)
	return nil
}
