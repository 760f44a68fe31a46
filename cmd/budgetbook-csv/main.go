// Command budgetbook-csv works with expense CSV files offline.
//
//	budgetbook-csv export [-n 20] [-seed 0] [-o file]
//	budgetbook-csv count FILE
//	budgetbook-csv parse [-v] FILE
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"budgetbook/internal/cli"
	"budgetbook/internal/core"
	"budgetbook/internal/csvio"
	"budgetbook/internal/log"
	"budgetbook/internal/mock"
)

const usage = `usage: budgetbook-csv <command> [flags]

commands:
  export   write generated demo expenses as CSV
  count    count data rows in a file without parsing them
  parse    parse a file and report valid and rejected rows
`

func main() {
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)
	if err := run(os.Args[1:], os.Stdout, isTerminal(os.Stdout)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("budgetbook-csv failed", log.FieldError, err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// run dispatches a subcommand. Results are printed as text for a terminal
// and as JSON otherwise.
func run(args []string, out io.Writer, human bool) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "export":
		return runExport(args[1:], out)
	case "count":
		return runCount(args[1:], out, human)
	case "parse":
		return runParse(args[1:], out, human)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	n := fs.Int("n", mock.DefaultCount, "number of expenses to generate")
	seed := fs.Uint64("seed", 0, "generator seed, 0 uses the clock")
	path := fs.String("o", "", "output file, default stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	expenses := mock.NewGenerator(*seed).Generate(*n, time.Now())
	if *path == "" {
		return csvio.Export(out, expenses)
	}

	f, err := os.Create(*path)
	if err != nil {
		return fmt.Errorf("create %s: %w", *path, err)
	}
	if err := csvio.Export(f, expenses); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *path, err)
	}
	fmt.Fprintf(out, "%d expenses exported to %s\n", len(expenses), *path)
	return nil
}

func openArg(fs *flag.FlagSet) (*os.File, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected exactly one file argument", fs.Name())
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", csvio.ErrRead, err)
	}
	return f, nil
}

type countReport struct {
	File  string           `json:"file"`
	Mode  csvio.ImportMode `json:"mode"`
	Count int              `json:"count"`
}

func runCount(args []string, out io.Writer, human bool) error {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := openArg(fs)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := csvio.CountRows(f)
	if err != nil {
		return err
	}
	rep := countReport{File: fs.Arg(0), Mode: res.Mode(), Count: res.Count()}
	if human {
		_, err = fmt.Fprintf(out, "%d expenses imported\n", rep.Count)
		return err
	}
	return json.NewEncoder(out).Encode(rep)
}

type parseReport struct {
	File     string           `json:"file"`
	Mode     csvio.ImportMode `json:"mode"`
	Count    int              `json:"count"`
	Total    int64            `json:"total"`
	Rejected []string         `json:"rejected,omitempty"`
}

func runParse(args []string, out io.Writer, human bool) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "list rejected rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, err := openArg(fs)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := csvio.Parse(f)
	if err != nil {
		return err
	}
	rep := parseReport{File: fs.Arg(0), Mode: res.Mode(), Count: res.Count()}
	for _, e := range res.Expenses {
		rep.Total += e.Amount
	}
	for _, re := range res.Errors {
		rep.Rejected = append(rep.Rejected, re.Error())
	}

	if !human {
		return json.NewEncoder(out).Encode(rep)
	}
	fmt.Fprintf(out, "%d expenses imported, total %s\n", rep.Count, core.FormatAmount(rep.Total))
	if len(rep.Rejected) > 0 {
		fmt.Fprintf(out, "%d rows rejected\n", len(rep.Rejected))
		if *verbose {
			for _, r := range rep.Rejected {
				fmt.Fprintf(out, "  %s\n", r)
			}
		}
	}
	return nil
}
