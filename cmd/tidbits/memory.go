package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tidbits-ai/tidbits/internal/tidbit"
	"github.com/tidbits-ai/tidbits/pkg/app"
)

// storeOp is a one-shot operation against the wired store. Its result is
// printed to stdout as indented JSON, matching the MCP tool payloads.
type storeOp func(ctx context.Context, store *tidbit.Store) (any, error)

func runStoreOp(cmd *cobra.Command, op storeOp) error {
	params, err := buildParams()
	if err != nil {
		return err
	}
	rt, err := app.Build(params)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := op(cmd.Context(), rt.Store)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// splitTags turns a comma-separated flag value into a tag list, dropping
// empty entries.
func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func createCmd() *cobra.Command {
	var (
		creator string
		tags    string
		voterID string
	)
	cmd := &cobra.Command{
		Use:   "create <content>",
		Short: "Create a new memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.CreateMemory(ctx, args[0], tidbit.CreateParams{
					Creator: creator,
					Tags:    splitTags(tags),
					VoterID: voterID,
				})
			})
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "Name of the creating agent")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringVar(&voterID, "voter-id", "", "Voter id recorded for attribution (casts no vote)")
	return cmd
}

func upvoteCmd() *cobra.Command {
	var voterID string
	cmd := &cobra.Command{
		Use:   "upvote <memory-id>",
		Short: "Upvote a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.UpvoteMemory(ctx, args[0], voterID)
			})
		},
	}
	cmd.Flags().StringVar(&voterID, "voter-id", "", "Voter identity")
	_ = cmd.MarkFlagRequired("voter-id")
	return cmd
}

func downvoteCmd() *cobra.Command {
	var voterID string
	cmd := &cobra.Command{
		Use:   "downvote <memory-id>",
		Short: "Downvote a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.DownvoteMemory(ctx, args[0], voterID)
			})
		},
	}
	cmd.Flags().StringVar(&voterID, "voter-id", "", "Voter identity")
	_ = cmd.MarkFlagRequired("voter-id")
	return cmd
}

func unvoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unvote <memory-id> <voter-id>",
		Short: "Withdraw a prior vote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.UnvoteMemory(ctx, args[0], args[1])
			})
		},
	}
}

func listCmd() *cobra.Command {
	var (
		orderBy string
		limit   int
		tags    string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories in ranked order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.ListMemories(ctx, tidbit.ListParams{
					OrderBy: tidbit.OrderBy(orderBy),
					Limit:   limit,
					Tags:    splitTags(tags),
				})
			})
		},
	}
	cmd.Flags().StringVar(&orderBy, "order-by", "votes", "Sort order: votes or created_at")
	cmd.Flags().IntVar(&limit, "limit", 0, "Return at most this many memories (0 = all)")
	cmd.Flags().StringVar(&tags, "tags", "", "Keep only memories carrying one of these comma-separated tags")
	return cmd
}

func getMemoriesCmd() *cobra.Command {
	var (
		voterID string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "get-memories",
		Short: "Browse memories in random order, votes hidden",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				return store.GetMemories(ctx, voterID, limit)
			})
		},
	}
	cmd.Flags().StringVar(&voterID, "voter-id", "", "Voter identity to echo back; omit to generate one")
	cmd.Flags().IntVar(&limit, "limit", 0, "Return at most this many memories (0 = all)")
	return cmd
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <memory-id>",
		Short: "Remove a memory and all its votes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreOp(cmd, func(ctx context.Context, store *tidbit.Store) (any, error) {
				if err := store.RemoveMemory(ctx, args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"removed": true, "id": args[0]}, nil
			})
		},
	}
}

func createVoterIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-voter-id",
		Short: "Generate a new voter id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Minting an id needs no storage; don't touch the backend.
			return printJSON(cmd.OutOrStdout(), map[string]string{"voter_id": uuid.NewString()})
		},
	}
}
