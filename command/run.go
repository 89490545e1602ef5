package command

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli/v2"
)

var runHelpTemplate = `Name:
	{{.HelpName}} - {{.Usage}}

Usage:
	{{.HelpName}} [file]

Options:
	{{range .VisibleFlags}}{{.}}
	{{end}}
Examples:
	1. Run the commands declared in "commands.txt" file one after the other
		 > remotecp {{.HelpName}} commands.txt

	2. Read commands from standard input and execute them one after the other
		 > cat commands.txt | remotecp {{.HelpName}}
`

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:               "run",
		HelpName:           "run",
		Usage:              "run get and put commands in batch",
		CustomHelpTemplate: runHelpTemplate,
		Before: func(c *cli.Context) error {
			err := validateRunCommand(c)
			if err != nil {
				printError(givenCommand(c), c.Command.Name, err)
			}
			return err
		},
		Action: func(c *cli.Context) error {
			reader := io.Reader(os.Stdin)
			if c.Args().Len() == 1 {
				f, err := os.Open(c.Args().First())
				if err != nil {
					printError(givenCommand(c), c.Command.Name, err)
					return err
				}
				defer f.Close()

				reader = f
			}

			return NewRun(c, reader).Run(c)
		},
	}
}

// Run executes command lines read from a reader. Commands run one at a
// time; a failing command does not stop the ones after it.
type Run struct {
	reader io.Reader
}

func NewRun(c *cli.Context, r io.Reader) Run {
	return Run{
		reader: r,
	}
}

func (r Run) Run(c *cli.Context) error {
	var merror error

	scanner := NewScanner(c.Context, r.reader)

	lineno := 0
	for line := range scanner.Scan() {
		lineno++

		// support inline comments
		line = strings.Split(line, " #")[0]

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := shellquote.Split(line)
		if err != nil {
			err = fmt.Errorf("line %v: %w", lineno, err)
			printError(givenCommand(c), c.Command.Name, err)
			merror = multierror.Append(merror, err)
			continue
		}

		if len(fields) == 0 {
			continue
		}

		subcmd := fields[0]
		if subcmd == c.Command.Name {
			err := fmt.Errorf("%q command (line: %v) is not permitted in run-mode", subcmd, lineno)
			printError(givenCommand(c), c.Command.Name, err)
			merror = multierror.Append(merror, err)
			continue
		}

		cmd := AppCommand(subcmd)
		if cmd == nil {
			err := fmt.Errorf("%q command (line: %v) not found", subcmd, lineno)
			printError(givenCommand(c), c.Command.Name, err)
			merror = multierror.Append(merror, err)
			continue
		}

		flagset := flag.NewFlagSet(subcmd, flag.ContinueOnError)
		if err := flagset.Parse(fields); err != nil {
			printError(givenCommand(c), c.Command.Name, err)
			merror = multierror.Append(merror, err)
			continue
		}

		ctx := cli.NewContext(c.App, flagset, c)
		if err := cmd.Run(ctx); err != nil {
			// already printed by the command
			merror = multierror.Append(merror, err)
		}
	}

	return multierror.Append(merror, scanner.Err()).ErrorOrNil()
}

// Scanner is a cancelable scanner.
type Scanner struct {
	*bufio.Scanner
	err    error
	linech chan string
	ctx    context.Context
}

// NewScanner creates a new scanner with cancellation.
func NewScanner(ctx context.Context, r io.Reader) *Scanner {
	scanner := &Scanner{
		ctx:     ctx,
		Scanner: bufio.NewScanner(r),
		linech:  make(chan string),
	}

	go scanner.scan()
	return scanner
}

// scan read the underlying reader.
func (s *Scanner) scan() {
	defer close(s.linech)

	for {
		select {
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return
		default:
			if !s.Scanner.Scan() {
				return
			}

			select {
			case s.linech <- s.Scanner.Text():
			case <-s.ctx.Done():
				s.err = s.ctx.Err()
				return
			}
		}
	}
}

// Scan returns read-only channel to consume lines.
func (s *Scanner) Scan() <-chan string {
	return s.linech
}

// Err returns encountered errors, if any.
func (s *Scanner) Err() error {
	if s.err != nil {
		return s.err
	}

	return s.Scanner.Err()
}

func validateRunCommand(c *cli.Context) error {
	if c.Args().Len() > 1 {
		return fmt.Errorf("expected only 1 file")
	}
	return nil
}
