package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gitscribe/internal/review"
	"gitscribe/internal/service"
)

var (
	flagAutoCommit bool
	flagPrint      bool
	flagNoVerify   bool
	flagMaxTokens  int
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a commit message from the staged changes",
	Long: `gen snapshots the staged changes and asks the configured backend for a
commit message. By default the draft opens an interactive review where
you can commit it, edit it, or regenerate with extra instructions.`,
	Args: cobra.NoArgs,
	RunE: runGen,
}

func init() {
	genCmd.Flags().BoolVarP(&flagAutoCommit, "auto-commit", "a", false, "Commit immediately with the generated message")
	genCmd.Flags().BoolVarP(&flagPrint, "print", "p", false, "Print the message to stdout and exit")
	genCmd.Flags().BoolVar(&flagNoVerify, "no-verify", false, "Skip pre-commit and post-commit hooks")
	genCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Prompt token budget for this run")
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagMaxTokens > 0 {
		cfg.TokenBudget = flagMaxTokens
	}

	ctx := cmd.Context()
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}

	cand, err := svc.GenerateMessage(ctx, "")
	if err != nil {
		return err
	}

	switch {
	case flagPrint:
		fmt.Fprintln(cmd.OutOrStdout(), cand.Text)
		return nil

	case flagAutoCommit:
		result, err := svc.Commit(ctx, cand.Text, !flagNoVerify)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Committed %s on %s\n", shortHash(result.Hash), result.Branch)
		return nil

	default:
		return reviewLoop(ctx, cmd, svc, cand, cfg.Instructions)
	}
}

// reviewLoop drives the interactive session until the user commits or
// cancels.
func reviewLoop(ctx context.Context, cmd *cobra.Command, svc *service.Service, cand *service.Candidate, instructions string) error {
	regenerate := func(ctx context.Context, instructions string) (review.Candidate, error) {
		fresh, err := svc.GenerateMessage(ctx, instructions)
		if err != nil {
			return review.Candidate{}, err
		}
		return reviewCandidate(fresh), nil
	}
	commit := func(ctx context.Context, message string) error {
		result, err := svc.Commit(ctx, message, !flagNoVerify)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Committed %s on %s\n", shortHash(result.Hash), result.Branch)
		return nil
	}

	_, err := review.Run(ctx, reviewCandidate(cand), instructions, regenerate, commit, review.Options{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
	})
	return err
}

func reviewCandidate(cand *service.Candidate) review.Candidate {
	return review.Candidate{
		Message:       cand.Text,
		TokensUsed:    cand.TokensUsed,
		ExcludedFiles: cand.ExcludedFiles,
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
