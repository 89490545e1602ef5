package command

import (
	"github.com/urfave/cli/v2"

	"github.com/peak/remotecp/internal/transfer"
)

var putHelpTemplate = `Name:
	{{.HelpName}} - {{.Usage}}

Usage:
	{{.HelpName}} [options] server user local-path remote-path

Options:
	{{range .VisibleFlags}}{{.}}
	{{end}}
Examples:
	1. Upload a file over sftp and rename it
		 > remotecp {{.HelpName}} --password secret example.com alice report.csv /data/report-2024.csv

	2. Upload all csv files of a directory into a remote directory
		 > remotecp {{.HelpName}} example.com alice "/tmp/out/*.csv" /data/

	3. Upload matching files over ftps and delete the local copies
		 > remotecp {{.HelpName}} --type ftps --port 21 --delete example.com alice "/tmp/out/file_?.csv" /data/
`

func NewPutCommand() *cli.Command {
	return &cli.Command{
		Name:               "put",
		HelpName:           "put",
		Usage:              "upload matching files to a server",
		Flags:              NewTransferFlags(),
		CustomHelpTemplate: putHelpTemplate,
		Before: func(c *cli.Context) error {
			err := validateTransferCommand(c)
			if err != nil {
				printError(commandFromContext(c), c.Command.Name, err)
			}
			return err
		},
		Action: func(c *cli.Context) error {
			fullCommand := commandFromContext(c)

			conn, err := NewConnectionSpec(c)
			if err != nil {
				printError(fullCommand, c.Command.Name, err)
				return err
			}

			return Transfer{
				req: transfer.Request{
					Direction:    transfer.Upload,
					Connection:   conn,
					Source:       c.Args().Get(2),
					Destination:  c.Args().Get(3),
					DeleteSource: c.Bool("delete"),
				},
				op:          c.Command.Name,
				fullCommand: fullCommand,

				showProgress: c.Bool("show-progress"),

				manager: transfer.NewManager(),
			}.Run(c.Context)
		},
	}
}
