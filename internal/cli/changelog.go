package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitscribe/internal/changes"
	"gitscribe/internal/service"
)

var (
	flagFrom   string
	flagTo     string
	flagDetail string
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate a changelog for a commit range",
	Long: `changelog analyzes every commit between --from and --to and renders a
Keep a Changelog style document in Markdown.`,
	Args: cobra.NoArgs,
	RunE: runChangelog,
}

var releaseNotesCmd = &cobra.Command{
	Use:   "release-notes",
	Short: "Generate release notes for a commit range",
	Long: `release-notes analyzes every commit between --from and --to and renders
user-facing release notes in Markdown. When the repository has a README
its summary anchors the tone of the notes.`,
	Args: cobra.NoArgs,
	RunE: runReleaseNotes,
}

func init() {
	for _, cmd := range []*cobra.Command{changelogCmd, releaseNotesCmd} {
		cmd.Flags().StringVar(&flagFrom, "from", "", "Start of the commit range, exclusive (tag or hash)")
		cmd.Flags().StringVar(&flagTo, "to", "HEAD", "End of the commit range, inclusive")
		cmd.Flags().StringVar(&flagDetail, "detail", "standard", "Detail level: minimal, standard, detailed")
		cmd.MarkFlagRequired("from")
	}
}

func runChangelog(cmd *cobra.Command, args []string) error {
	svc, detail, err := rangeSetup(cmd)
	if err != nil {
		return err
	}

	out, err := svc.Changelog(cmd.Context(), flagFrom, flagTo, detail)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runReleaseNotes(cmd *cobra.Command, args []string) error {
	svc, detail, err := rangeSetup(cmd)
	if err != nil {
		return err
	}

	out, err := svc.ReleaseNotes(cmd.Context(), flagFrom, flagTo, detail)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// rangeSetup validates shared range flags and wires the service for the
// changelog and release notes commands.
func rangeSetup(cmd *cobra.Command) (*service.Service, changes.DetailLevel, error) {
	detail, err := changes.ParseDetailLevel(flagDetail)
	if err != nil {
		return nil, 0, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	svc, err := newService(cmd.Context(), cfg)
	if err != nil {
		return nil, 0, err
	}
	return svc, detail, nil
}
