// Package report renders the final bottom-K selection to console or CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/edhtail/internal/model"
)

// Options controls what the report includes.
type Options struct {
	BottomK int
	// IncludeErrors keeps results without a definite count (errored or
	// unknown) in the report; otherwise they are dropped from display.
	IncludeErrors bool
}

// Display filters results down to what the report should show: results with
// a definite count always, the rest only when errors are included.
func Display(results []model.FetchResult, opts Options) []model.FetchResult {
	out := make([]model.FetchResult, 0, len(results))
	for _, r := range results {
		if r.HasDecks() || opts.IncludeErrors {
			out = append(out, r)
		}
	}
	return out
}

// Console writes the line-oriented report. Results are assumed to be sorted
// already; an error tail is appended only for errored results when errors are
// included.
func Console(w io.Writer, results []model.FetchResult, opts Options) {
	display := Display(results, opts)

	fmt.Fprintln(w, "\n=== Least-popular commanders on EDHREC (as-commander) ===")
	if len(display) > 0 {
		cutoff := 0
		if last := display[len(display)-1]; last.HasDecks() {
			cutoff = *last.Decks
		}
		fmt.Fprintf(w, "(Bottom %d; cutoff ~ %d decks; filters active)\n\n", opts.BottomK, cutoff)
	}

	for _, r := range display {
		decks := "?"
		if r.HasDecks() {
			decks = strconv.Itoa(*r.Decks)
		}
		tail := ""
		if r.Failed() && opts.IncludeErrors {
			tail = " — ERROR: " + r.Err
		}
		fmt.Fprintf(w, "%6s  —  %s  —  %s%s\n", decks, r.Name, r.EDHRECURL, tail)
	}
}

// CSV writes the report as a CSV file with columns decks, name, edhrec_url,
// error. Missing counts render as empty cells.
func CSV(path string, results []model.FetchResult, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := WriteCSV(f, results, opts); err != nil {
		return err
	}
	return eris.Wrapf(f.Sync(), "report: sync %s", path)
}

// WriteCSV writes CSV rows for the displayable results.
func WriteCSV(w io.Writer, results []model.FetchResult, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"decks", "name", "edhrec_url", "error"}); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, r := range Display(results, opts) {
		decks := ""
		if r.HasDecks() {
			decks = strconv.Itoa(*r.Decks)
		}
		if err := cw.Write([]string{decks, r.Name, r.EDHRECURL, r.Err}); err != nil {
			return eris.Wrapf(err, "report: write row %s", r.Name)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush")
}
