package command

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"agentmarket/internal/service"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBackfiller struct {
	gotAll bool
	result service.BackfillResult
	err    error
}

func (s *stubBackfiller) Backfill(_ context.Context, all bool) (service.BackfillResult, error) {
	s.gotAll = all
	return s.result, s.err
}

func newReindexCmd(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{Use: "reindex"}
	cmd.Flags().Bool("all", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestReindexPrintsSummary(t *testing.T) {
	stub := &stubBackfiller{result: service.BackfillResult{Candidates: 4, Embedded: 2, Skipped: 1, Failed: 1}}
	handler := &ReindexHandler{logger: zap.NewNop(), backfiller: stub}
	cmd, out := newReindexCmd(t, "--all")

	require.NoError(t, handler.Reindex(cmd, nil))
	assert.True(t, stub.gotAll)
	assert.Equal(t, "candidates: 4, embedded: 2, skipped: 1, failed: 1\n", out.String())
}

func TestReindexReturnsError(t *testing.T) {
	stub := &stubBackfiller{err: errors.New("db down")}
	handler := &ReindexHandler{logger: zap.NewNop(), backfiller: stub}
	cmd, _ := newReindexCmd(t)

	assert.Error(t, handler.Reindex(cmd, nil))
	assert.False(t, stub.gotAll)
}
