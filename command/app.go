package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/peak/remotecp/log"
	"github.com/peak/remotecp/log/stat"
)

const appName = "remotecp"

// NewApp creates the command line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:  appName,
		Usage: "Copy files from and to SFTP, FTP and FTPS servers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "enable JSON formatted output",
			},
			&cli.StringFlag{
				Name:  "log",
				Value: "info",
				Usage: "log level: (debug, info, warning, error)",
			},
			&cli.BoolFlag{
				Name:  "stat",
				Usage: "collect statistics of program execution and display it at the end",
			},
		},
		Before: func(c *cli.Context) error {
			logLevel := c.String("log")
			printJSON := c.Bool("json")

			// the logger is needed to report the validation error below
			log.Init(logLevel, printJSON)

			if !log.IsValidLevel(logLevel) {
				err := fmt.Errorf("invalid log level %q", logLevel)
				printError(appName, "", err)
				return err
			}

			if c.Bool("stat") {
				stat.InitStat()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
		After: func(c *cli.Context) error {
			if c.Bool("stat") {
				log.Stat(stat.Statistics())
			}
			log.Close()
			return nil
		},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			if err != nil {
				printError(givenCommand(c), "", err)
			}
			return err
		},
		// errors are printed by the commands themselves
		ExitErrHandler: func(c *cli.Context, err error) {},
		Commands:       Commands(),
	}
}

// Commands returns the commands of the application.
func Commands() []*cli.Command {
	return []*cli.Command{
		NewGetCommand(),
		NewPutCommand(),
		NewRunCommand(),
		NewVersionCommand(),
	}
}

// AppCommand returns the command with given name.
func AppCommand(name string) *cli.Command {
	for _, c := range Commands() {
		if c.HasName(name) {
			return c
		}
	}
	return nil
}

// Main runs the application with given arguments.
func Main(ctx context.Context, args []string) error {
	return NewApp().RunContext(ctx, args)
}
