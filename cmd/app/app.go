package main

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"agentmarket/config"
	"agentmarket/internal/cron"
	"agentmarket/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string    `json:"env"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
	StartAt   time.Time `json:"start_at"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	httpSrv       *http.Server
	Router        *gin.Engine
	healthService *service.HealthService
	searchService *service.SearchService

	appInfo RuntimeInfo // 版本/環境快照（來源 = conf.App）
	serveErr chan error
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	router *gin.Engine,
	httpSrv *http.Server,
	healthService *service.HealthService,
	searchService *service.SearchService,
	cronSrv *cron.Cron,
) *App {
	return &App{
		conf:          conf,
		logger:        logger,
		Router:        router,
		httpSrv:       httpSrv,
		healthService: healthService,
		searchService: searchService,
		cronSrv:       cronSrv,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   time.Now(),
		},
		serveErr: make(chan error, 1),
	}
}

func (a *App) Run(ctx context.Context) error {
	// 1) 啟動時寫入版本/環境資訊
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	// 2) 從 MongoDB 載入搜尋索引，完成前 readiness 為 false
	if _, err := a.searchService.Rebuild(ctx, "startup"); err != nil {
		return err
	}

	// 3) 啟動 cron
	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	// 4) 啟動 http server
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
		close(a.serveErr)
	}()
	a.healthService.SetReady(true)

	return nil
}

// Done 在 http server 非預期結束時回傳錯誤
func (a *App) Done() <-chan error {
	return a.serveErr
}

func (a *App) Stop(ctx context.Context) (returnedError error) {
	a.healthService.SetReady(false)

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		returnedError = multierr.Append(returnedError, err)
	} else {
		a.logger.Info("http server has been stop")
	}

	if err := a.cronSrv.Stop(ctx); err != nil {
		returnedError = multierr.Append(returnedError, err)
	} else {
		a.logger.Info("cron server has been stop")
	}

	return returnedError
}
