package main

import (
	"context"
	stdlog "log"
	"os"

	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/config"
	"github.com/txix-open/isp-kit/shutdown"
	"github.com/txix-open/isp-kit/validator"
	"request-rate-service/assembly"
)

var (
	version = "1.0.0"
)

const (
	configPathEnv     = "APP_CONFIG_PATH"
	defaultConfigPath = "./conf/config.yml"
)

func main() {
	application, err := app.New(app.WithConfigOptions(
		config.WithValidator(validator.Default),
		config.WithExtraSource(config.NewYamlConfig(configPath())),
	))
	if err != nil {
		stdlog.Fatal(err)
	}
	logger := application.Logger()

	assembly, err := assembly.New(application, version)
	if err != nil {
		logger.Fatal(application.Context(), err)
	}
	application.AddRunners(assembly.Runners()...)
	application.AddClosers(assembly.Closers()...)

	shutdown.On(func() {
		logger.Info(context.Background(), "starting shutdown")
		application.Shutdown()
		logger.Info(context.Background(), "shutdown completed")
	})

	err = application.Run()
	if err != nil {
		application.Shutdown()
		logger.Fatal(context.Background(), err)
	}
}

func configPath() string {
	path := os.Getenv(configPathEnv)
	if path == "" {
		return defaultConfigPath
	}
	return path
}
