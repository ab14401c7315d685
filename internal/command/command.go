package command

import (
	commandHandler "agentmarket/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewReindexHandler)

type Command struct {
	reindexCommandHandler *commandHandler.ReindexHandler
}

// NewCommand .
func NewCommand(
	reindexCommandHandler *commandHandler.ReindexHandler,
) *Command {
	return &Command{
		reindexCommandHandler: reindexCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "regenerate listing embeddings and rebuild the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			return command.reindexCommandHandler.Reindex(cmd, args)
		},
	}
	reindexCmd.Flags().Bool("all", false, "re-embed every listing, not only those missing a vector for the current model")

	rootCmd.AddCommand(reindexCmd)
}
