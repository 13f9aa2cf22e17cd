package extractor

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"
)

type Options struct {
	Password         string
	Pretty           bool
	TransactionsOnly bool
	StatementOnly    bool
	Out              io.Writer
}

// Result is the outcome of one file: a statement or a structured error.
type Result struct {
	Source    string                  `json:"source"`
	Statement *common.ParsedStatement `json:"statement,omitempty"`
	Error     *common.Error           `json:"error,omitempty"`
}

// ExecuteAgainstPath parses a file, or every file in a directory, and writes
// the JSON output to opts.Out. Directory entries are parsed concurrently and
// reported in name order.
func ExecuteAgainstPath(f *Factory, path string, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "cannot access %s", path)
	}

	if !info.IsDir() {
		logrus.WithField("path", path).Info("scanning file")
		result := ProcessFile(f, path, opts.Password)
		return write(opts, CreateFinalOutput(result, opts.TransactionsOnly, opts.StatementOnly))
	}

	logrus.WithField("path", path).Info("scanning directory")
	files, err := listFiles(path)
	if err != nil {
		return err
	}
	results := iter.Map(files, func(file *string) Result {
		return ProcessFile(f, *file, opts.Password)
	})

	output := make([]interface{}, 0, len(results))
	for _, r := range results {
		output = append(output, CreateFinalOutput(r, opts.TransactionsOnly, opts.StatementOnly))
	}
	return write(opts, output)
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read directory %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ProcessFile reads and parses one statement. It never fails: problems are
// reported in Result.Error.
func ProcessFile(f *Factory, path, password string) Result {
	result := Result{Source: filepath.Base(path)}
	log := logrus.WithField("source", result.Source)

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = common.Wrap(err, common.CodeExtractionFailed, "cannot read file: "+err.Error())
		return result
	}

	statement, err := f.Parse(data, password)
	if err != nil {
		result.Error = common.AsError(err)
		log.WithField("code", result.Error.Code).Info("statement rejected")
		return result
	}
	result.Statement = statement
	return result
}

// CreateFinalOutput shapes a result for printing. Errors always print as
// {"source", "error"} regardless of the flags.
func CreateFinalOutput(result Result, transactionsOnly, statementOnly bool) interface{} {
	if result.Error != nil || result.Statement == nil {
		e := result.Error
		if e == nil {
			e = common.New(common.CodeExtractionFailed, "no statement produced")
		}
		return map[string]interface{}{
			"source": result.Source,
			"error":  e,
		}
	}

	st := result.Statement
	if transactionsOnly {
		return st.Transactions
	}

	output := map[string]interface{}{
		"source":                result.Source,
		"card_last_four":        st.CardLastFour,
		"statement_month":       st.StatementMonth,
		"closing_balance_minor": st.ClosingBalanceMinor,
		"reward_points":         st.RewardPoints,
		"reward_points_earned":  st.RewardPointsEarned,
	}
	if st.BankCode != nil {
		output["bank_code"] = *st.BankCode
	}
	if st.RewardPointsPrevious != nil {
		output["reward_points_previous"] = *st.RewardPointsPrevious
	}
	if st.RewardPointsRedeemed != nil {
		output["reward_points_redeemed"] = *st.RewardPointsRedeemed
	}
	if st.AccountSummary != nil {
		output["account_summary"] = *st.AccountSummary
	}
	if st.StatementDate != nil {
		output["statement_date"] = *st.StatementDate
	}
	if st.DueDate != nil {
		output["due_date"] = *st.DueDate
	}
	if st.MinimumDueMinor != nil {
		output["minimum_due_minor"] = *st.MinimumDueMinor
	}

	if !statementOnly {
		output["transactions"] = st.Transactions
	}
	return output
}

// ErrorOutput is the JSON shape of a failure that has no source file.
func ErrorOutput(err error) map[string]interface{} {
	return map[string]interface{}{"error": common.AsError(err)}
}

func write(opts Options, v interface{}) error {
	enc := json.NewEncoder(opts.Out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return errors.Wrap(enc.Encode(v), "cannot write output")
}
