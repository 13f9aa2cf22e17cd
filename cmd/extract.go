package cmd

import (
	"github.com/aqlanhadi/stmtparse/extractor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var parseCmd = &cobra.Command{
	Use:     "parse",
	Aliases: []string{"extract"},
	Short:   "Parses statement(s)",
	Long: `Parses a given statement, or every statement in a folder.
The issuing bank is detected from the text and the matching
grammar is applied; unknown banks use the generic grammar.`,
	RunE: parseHandler,
}

func parseHandler(cmd *cobra.Command, args []string) error {
	f, err := newFactory()
	if err != nil {
		return fail(cmd, err)
	}

	err = extractor.ExecuteAgainstPath(f, viper.GetString("target"), extractor.Options{
		Password:         viper.GetString("password"),
		Pretty:           viper.GetBool("pretty"),
		TransactionsOnly: viper.GetBool("transactions_only"),
		StatementOnly:    viper.GetBool("statement_only"),
		Out:              cmd.OutOrStdout(),
	})
	if err != nil {
		return fail(cmd, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", ".", "Statement file, or folder in which stmtparse will scan for files")
	parseCmd.Flags().Bool("transactions-only", false, "print only the transactions")
	parseCmd.Flags().Bool("statement-only", false, "omit the transactions")
	viper.BindPFlag("target", parseCmd.Flags().Lookup("file"))
	viper.BindPFlag("transactions_only", parseCmd.Flags().Lookup("transactions-only"))
	viper.BindPFlag("statement_only", parseCmd.Flags().Lookup("statement-only"))
}
