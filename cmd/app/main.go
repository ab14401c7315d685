package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"agentmarket/config"
	"agentmarket/internal/command"
	"agentmarket/internal/log"
	"agentmarket/utils/path"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	_ "agentmarket/cmd/docs"
)

var (
	rootPath = path.RootPath()
	Version  string
	envPath  string
	yamlPath string
	conf     *config.Configuration
	logger   *zap.Logger
)

func init() {
	pflag.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	pflag.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")

	cobra.OnInitialize(func() {
		if envPath != "" && yamlPath != "" {
			fmt.Println("同時指定 --env 與 --config，將以 --env 優先")
		}
		initConfig()
		initLogger()
	})
}

// @title        AgentMarket API
// @version      1.0
// @description  API marketplace：provider 上架 API，agent 以自然語言搜尋並回報使用
// @host         localhost:8000
// @basePath     /

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
// @description 請在欄位輸入 "Bearer {token}"
func main() {
	rootCmd := &cobra.Command{
		Use: "app",
		Run: func(cmd *cobra.Command, args []string) {
			if conf == nil {
				panic("config is nil! Check config/initConfig logic.")
			}
			defer logger.Sync()

			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				panic(err)
			}
			defer cleanup()

			logger.Info("start app ...")
			startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
			err = app.Run(startCtx)
			cancelStart()
			if err != nil {
				panic(err)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-app.Done():
				if err != nil {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}

			logger.Info("shutdown app ...")
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(conf.App.ShutdownTimeoutSeconds)*time.Second)
			defer cancel()

			if err := app.Stop(ctx); err != nil {
				logger.Error("shutdown app failed", zap.Error(err))
			}
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)

	command.Register(rootCmd, func() (*command.Command, func(), error) {
		return wireCommand(conf, logger)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	var err error
	logger, err = log.NewLogger(conf)
	if err != nil {
		panic(fmt.Errorf("init logger failed: %w", err))
	}
}

func initConfig() {
	src := config.Source{Watch: true}
	switch {
	case envPath != "":
		src.EnvFile = path.Resolve(envPath, rootPath)
		fmt.Println("load .env config:", src.EnvFile)
	case yamlPath != "":
		src.YAMLFile = path.Resolve(yamlPath, filepath.Join(rootPath, "conf"))
		fmt.Println("load yaml config:", src.YAMLFile)
	default:
		fmt.Println("No configuration file specified, using environment variables only.")
	}
	src.OnChange = func(c *config.Configuration, err error) {
		if err != nil {
			fmt.Println("reload config failed:", err)
			return
		}
		if Version != "" {
			c.App.Version = Version
		}
		fmt.Println("config reloaded")
	}

	var err error
	conf, err = config.Load(src)
	if err != nil {
		panic(err)
	}
	if Version != "" {
		conf.App.Version = Version
	}
}
