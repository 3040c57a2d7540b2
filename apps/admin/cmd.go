package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	exportsvc "github.com/mathsol/academy/services/export"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB // nil on the in-memory store
	curriculum *curriculum.Service
	aggregator *dashboard.Aggregator
	exporter   *exportsvc.Service
	mailSvc    core.EmailService
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                - run a goose command (up, down, status, ...) on the embedded migrations")
	fmt.Println("  seedcurriculum -file UNITS_FILE       - seed the curriculum catalog from a yaml/json file")
	fmt.Println("  riskdigest [-date YYYY-MM-DD] [-send] - print the students at risk and email them to the digest recipients")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seedcurriculum", flag.ExitOnError)
	seedFile := seedCmd.String("file", "", "A yaml or json file holding a `units` list of {category, title, sequence}.")

	digestCmd := flag.NewFlagSet("riskdigest", flag.ExitOnError)
	digestDate := digestCmd.String("date", "", "The day to compute the dashboard for (YYYY-MM-DD). Defaults to today.")
	digestSend := digestCmd.Bool("send", true, "Email the digest to the configured recipients.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedcurriculum":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedFile == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seedCurriculum(*seedFile)
	case "riskdigest":
		if err := digestCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.riskDigest(*digestDate, *digestSend)
	default:
		cli.printUsage()
		return errHelp
	}
}
