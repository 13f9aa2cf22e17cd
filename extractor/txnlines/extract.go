package txnlines

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/sirupsen/logrus"
)

// ScanChunks re-segments text at every date occurrence. The last money token
// of a chunk is its amount; the rest, minus money, time and points tokens,
// is its description.
func ScanChunks(cfg Config, text string) []common.ParsedTransaction {
	return values(scanChunks(cfg, text))
}

// positioned is a row keyed by the ordinal of the date occurrence it starts at.
type positioned struct {
	at  int
	txn common.ParsedTransaction
}

func values(rows []positioned) []common.ParsedTransaction {
	out := make([]common.ParsedTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.txn)
	}
	return out
}

func scanChunks(cfg Config, text string) []positioned {
	locs := cfg.DateToken.FindAllStringIndex(text, -1)
	var out []positioned
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		token := text[loc[0]:loc[1]]
		rest := text[loc[1]:end]

		amounts := moneyTokenRegex.FindAllString(rest, -1)
		if len(amounts) == 0 {
			continue
		}
		raw := amounts[len(amounts)-1]

		date, err := cfg.ParseDate(token)
		if err != nil {
			continue
		}
		amount, err := common.ParseAmountMinor(raw)
		if err != nil {
			continue
		}
		desc := chunkDescription(rest)
		if desc == "" {
			continue
		}

		trimmed := strings.TrimSpace(raw)
		crdr := ""
		if lower := strings.ToLower(trimmed); strings.HasSuffix(lower, "cr") || strings.HasSuffix(lower, "dr") {
			crdr = trimmed[len(trimmed)-2:]
		}
		sign := ""
		if strings.HasPrefix(trimmed, "+") {
			sign = "+"
		}
		out = append(out, positioned{at: i, txn: common.ParsedTransaction{
			Date:        date,
			Description: desc,
			AmountMinor: amount,
			Kind:        kindOf(sign, crdr),
		}})
	}
	return out
}

func chunkDescription(rest string) string {
	var kept []string
	for _, line := range strings.Split(rest, "\n") {
		line = common.CollapseSpaces(line)
		if line == "" || shortIntRegex.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	s := strings.Join(kept, " ")
	s = timeTokenRegex.ReplaceAllString(s, "")
	s = moneyTokenRegex.ReplaceAllString(s, " ")
	// applied twice: adjacent tokens share the separating space
	s = signedPointsRegex.ReplaceAllString(s, " ")
	s = signedPointsRegex.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "|", " ")
	return common.CollapseSpaces(s)
}

// Dedupe keeps the first of every (date, description, amount, kind).
func Dedupe(txns []common.ParsedTransaction) []common.ParsedTransaction {
	seen := make(map[string]bool, len(txns))
	out := make([]common.ParsedTransaction, 0, len(txns))
	for _, t := range txns {
		key := fmt.Sprintf("%s|%s|%d|%s", t.Date, t.Description, t.AmountMinor, t.Kind)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Extract runs the line pass over lines until an end marker. When it yields
// fewer rows than there are dates, the chunk pass fills in the date
// occurrences the line pass missed. Rows keep document order. A line-pass
// row always wins over a chunk row for the same date occurrence.
func Extract(cfg Config, lines []string) []common.ParsedTransaction {
	m := NewMachine(cfg)
	consumed := make([]string, 0, len(lines))
	for _, line := range lines {
		if !m.Feed(line) {
			break
		}
		consumed = append(consumed, line)
	}
	m.Finish()

	// ordinals[i] is the number of date occurrences before consumed[i].
	ordinals := make([]int, len(consumed))
	dates := 0
	for i, line := range consumed {
		ordinals[i] = dates
		dates += len(cfg.DateToken.FindAllStringIndex(line, -1))
	}

	byLine := make([]positioned, len(m.out))
	for i, t := range m.out {
		byLine[i] = positioned{at: ordinals[m.starts[i]], txn: t}
	}
	lineRows := Dedupe(values(byLine))
	if len(lineRows) >= dates {
		return lineRows
	}

	byChunk := scanChunks(cfg, strings.Join(consumed, "\n"))
	merged := mergeByPosition(byLine, byChunk)
	log := logrus.WithFields(logrus.Fields{
		"component": "txnlines",
		"dates":     dates,
		"lines":     len(lineRows),
		"chunks":    len(byChunk),
		"merged":    len(merged),
	})
	if len(merged) <= dates {
		log.Debug("line pass under-extracted, filling gaps from chunk pass")
		return merged
	}
	if chunkRows := Dedupe(values(byChunk)); len(chunkRows) > len(lineRows) {
		log.Debug("line pass under-extracted, using chunk pass")
		return chunkRows
	}
	return lineRows
}

// mergeByPosition takes every line row and the chunk rows whose date
// occurrence no line row claimed, in date occurrence order.
func mergeByPosition(byLine, byChunk []positioned) []common.ParsedTransaction {
	taken := make(map[int]bool, len(byLine))
	rows := make([]positioned, 0, len(byLine)+len(byChunk))
	for _, r := range byLine {
		taken[r.at] = true
		rows = append(rows, r)
	}
	for _, r := range byChunk {
		if !taken[r.at] {
			rows = append(rows, r)
		}
	}
	slices.SortStableFunc(rows, func(a, b positioned) int { return cmp.Compare(a.at, b.at) })
	return Dedupe(values(rows))
}
