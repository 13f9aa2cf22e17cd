package cmd

import (
	"github.com/spf13/cobra"
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "Lists detectable banks and banks with a dedicated grammar",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFactory()
		if err != nil {
			return fail(cmd, err)
		}
		return printJSON(cmd.OutOrStdout(), map[string][]string{
			"detectable": f.Detector().SupportedBanks(),
			"refined":    f.RegisteredBanks(),
		})
	},
}

func init() {
	rootCmd.AddCommand(banksCmd)
}
