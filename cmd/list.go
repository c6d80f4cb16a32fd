package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unframe/unframe/internal/harness"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered tests without running them",
		Long:  "Load and compile every matching specification document and show its name, source file, tags, and task count.",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	opts, cfg, err := loadOptions()
	if err != nil {
		return err
	}

	suite, err := harness.Load(opts, cfg, logger)
	if err != nil {
		return err
	}

	for _, test := range suite.Tests() {
		line := fmt.Sprintf("%s\t%s\t%d tasks", test.Name, test.File, len(test.Tasks()))
		if len(test.Tags) > 0 {
			line += "\t[" + strings.Join(test.Tags, ", ") + "]"
		}
		if test.Description != "" {
			line += "\t" + test.Description
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	return nil
}
