package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message to the assistant and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.close()

			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reply, err := app.runner.SendMessage(ctx, conversationID, message)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to continue (default: new random id)")

	return cmd
}
