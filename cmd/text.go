package cmd

import (
	"os"
	"path/filepath"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	textFile      string
	textAlternate bool
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Prints the extracted text of a statement",
	Long: `Prints the linearized text the grammars see, together with the
detected bank. Useful when writing pattern overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFactory()
		if err != nil {
			return fail(cmd, err)
		}

		data, err := os.ReadFile(textFile)
		if err != nil {
			return fail(cmd, common.Wrap(err, common.CodeExtractionFailed, "cannot read file: "+err.Error()))
		}
		doc, err := f.Document(data, viper.GetString("password"))
		if err != nil {
			return fail(cmd, err)
		}

		output := map[string]interface{}{
			"filename": filepath.Base(textFile),
			"bank":     f.Detector().Detect(doc.Text),
			"text":     doc.Text,
		}
		if textAlternate {
			if alt, ok := doc.Alternate(); ok {
				output["alternate_text"] = alt
			}
		}
		return printJSON(cmd.OutOrStdout(), output)
	},
}

func init() {
	rootCmd.AddCommand(textCmd)
	textCmd.Flags().StringVarP(&textFile, "file", "f", "", "statement file")
	textCmd.Flags().BoolVar(&textAlternate, "alternate", false, "include the alternate decoding")
	textCmd.MarkFlagRequired("file")
}
