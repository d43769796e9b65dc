package version

import (
	"fmt"
	"io"

	"github.com/cosmosops/analyticalctl/internal/build"
	"github.com/cosmosops/analyticalctl/internal/cmd"
	"github.com/cosmosops/analyticalctl/internal/cmd/common"
	"github.com/cosmosops/analyticalctl/internal/meta"
	"github.com/cosmosops/analyticalctl/internal/util/normalizers"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
)

const (
	ShowCommitFlagName = "show-commit"
)

var (
	versionUse   = "version"
	versionShort = fmt.Sprintf("Print the %s version", meta.CLIName)
	versionLong  = normalizers.LongDesc(`
		The version command prints the version and other optional information`)
	versionExample = normalizers.Examples(fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version and the git commit hash
		%[1]s version --show-commit
		`, meta.CLIName))
)

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return run(cmd.BuildHelper(c, args))
		},
	}

	rv.Flags().Bool(ShowCommitFlagName, false, "Show the git commit hash and build date.")

	return rv
}

func run(helper cmd.Helper) error {
	info, err := helper.GetBuildInfo()
	if err != nil {
		return err
	}

	showCommit, err := helper.GetCmd().Flags().GetBool(ShowCommitFlagName)
	if err != nil {
		return err
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	out := helper.GetStreams().Out
	if outType == common.TEXT {
		return printText(info, showCommit, out)
	}

	result := map[string]any{"version": info.Version}
	if showCommit {
		result["commit"] = info.Commit
		result["date"] = info.Date
	}

	p, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(result)

	return nil
}

func printText(info *build.Info, showCommit bool, out io.Writer) error {
	if !showCommit {
		_, err := fmt.Fprintln(out, info.Version)
		return err
	}
	_, err := fmt.Fprintln(out, info.String())
	return err
}
