package command

import (
	"context"

	"agentmarket/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type backfiller interface {
	Backfill(ctx context.Context, all bool) (service.BackfillResult, error)
}

type ReindexHandler struct {
	logger     *zap.Logger
	backfiller backfiller
}

func NewReindexHandler(logger *zap.Logger, searchService *service.SearchService) *ReindexHandler {
	return &ReindexHandler{
		logger:     logger,
		backfiller: searchService,
	}
}

// Reindex 為缺向量的 listing 補上 embedding；--all 則全部重算（換模型時使用）
func (handler *ReindexHandler) Reindex(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	result, err := handler.backfiller.Backfill(cmd.Context(), all)
	cmd.Printf("candidates: %d, embedded: %d, skipped: %d, failed: %d\n",
		result.Candidates, result.Embedded, result.Skipped, result.Failed)
	if err != nil {
		handler.logger.Error("reindex failed", zap.Error(err))
		return err
	}
	handler.logger.Info("reindex finished",
		zap.Bool("all", all),
		zap.Int("candidates", result.Candidates),
		zap.Int("embedded", result.Embedded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return nil
}
