package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambdaurl"
	"github.com/spf13/cobra"

	"solana-terminal/handler"
	"solana-terminal/internal/domain"
	"solana-terminal/internal/usecase"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "solana-terminal",
		Short:         "Solana token and wallet analysis chat relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newLambdaCmd())
	root.AddCommand(newAskCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := build(ctx)
			if err != nil {
				return err
			}
			routes, err := a.routes()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           routes,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("serve: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			slog.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the router through a Lambda function URL with response streaming",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd.Context())
			if err != nil {
				return err
			}
			routes, err := a.routes()
			if err != nil {
				return err
			}
			lambdaurl.Start(handler.RecoverAbort(routes))
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [QUESTION...]",
		Short: "Run one chat turn and print the answer",
		Long: `Run one chat turn through the same routing as /api/chat and print the
streamed answer. Red-marked warnings are rendered in red.
Example: solana-terminal ask analyze wallet <address>`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := build(ctx)
			if err != nil {
				return err
			}
			chat, err := a.chatService()
			if err != nil {
				return err
			}

			out, err := chat.Chat(ctx, usecase.ChatInput{Messages: []domain.ChatMessage{
				{Role: domain.RoleUser, Content: strings.Join(args, " ")},
			}})
			if err != nil {
				return err
			}
			defer out.Source.Close()

			r := newSpanRenderer(cmd.OutOrStdout())
			for out.Source.Next() {
				if err := r.Write(out.Source.Content()); err != nil {
					return err
				}
			}
			if err := r.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return out.Source.Err()
		},
	}
}
