package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const greeting = "AI: Hello! I am your travel assistant. How can I help you today?"

func newChatCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive travel assistant session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, greeting)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			turn := 0
			for {
				fmt.Fprint(out, "You > ")
				if !scanner.Scan() {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" {
					break
				}

				turn++
				reply, err := app.runner.SendMessage(ctx, conversationID, input)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						break
					}
					return err
				}
				fmt.Fprintf(out, "AI[%d]: %s\n", turn, reply)
			}

			fmt.Fprintln(out, "\nSession ended")
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to resume (default: new random id)")

	return cmd
}
