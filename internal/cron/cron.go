package cron

import (
	"context"
	"time"

	"agentmarket/config"
	"agentmarket/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron, NewIndexJob, wire.Bind(new(IndexRebuilder), new(*service.SearchService)))

type Cron struct {
	logger   *zap.Logger
	config   *config.Configuration
	server   *cron.Cron
	indexJob *IndexJob
}

// NewCron .
func NewCron(logger *zap.Logger, config *config.Configuration, indexJob *IndexJob) *Cron {
	server := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Cron{
		logger:   logger,
		config:   config,
		server:   server,
		indexJob: indexJob,
	}
}

func (c *Cron) Run() error {
	if spec := c.config.Search.ReindexSpec; spec != "" {
		if _, err := c.server.AddFunc(spec, c.indexJob.Rebuild); err != nil {
			return err
		}
		c.logger.Info("search index rebuild scheduled", zap.String("spec", spec))
	}

	c.server.Start()
	return nil
}

// Stop 等待執行中的 job 結束，或直到 ctx 逾時
func (c *Cron) Stop(ctx context.Context) error {
	done := c.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IndexRebuilder 由 service.SearchService 實作
type IndexRebuilder interface {
	Rebuild(ctx context.Context, trigger string) (int, error)
}

// IndexJob 定期從 MongoDB 重建搜尋索引，補上其他實例的寫入
type IndexJob struct {
	logger    *zap.Logger
	rebuilder IndexRebuilder
	timeout   time.Duration
}

func NewIndexJob(logger *zap.Logger, rebuilder IndexRebuilder) *IndexJob {
	return &IndexJob{logger: logger, rebuilder: rebuilder, timeout: 5 * time.Minute}
}

func (j *IndexJob) Rebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.rebuilder.Rebuild(ctx, "cron"); err != nil {
		j.logger.Error("scheduled index rebuild failed", zap.Error(err))
	}
}
