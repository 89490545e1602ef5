package command

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/peak/remotecp/internal/transfer"
)

var getHelpTemplate = `Name:
	{{.HelpName}} - {{.Usage}}

Usage:
	{{.HelpName}} [options] server user remote-path local-directory

Options:
	{{range .VisibleFlags}}{{.}}
	{{end}}
Examples:
	1. Download a file over sftp into the current directory
		 > remotecp {{.HelpName}} --password secret example.com alice /data/report.csv ./

	2. Download all csv files of a directory over ftp
		 > remotecp {{.HelpName}} --type ftp --port 21 example.com alice "/data/*.csv" /tmp/out/

	3. Download matching files as txt files and delete them from the server
		 > remotecp {{.HelpName}} --extension txt --delete example.com alice "/data/file_?.csv" /tmp/out/

	4. Download over ftps from a server with a self signed certificate
		 > remotecp {{.HelpName}} --type ftps --port 21 --no-verify-ssl example.com alice "/data/*" /tmp/out/
`

func NewGetCommand() *cli.Command {
	return &cli.Command{
		Name:     "get",
		HelpName: "get",
		Usage:    "download matching files from a server",
		Flags: append(NewTransferFlags(),
			&cli.StringFlag{
				Name:    "extension",
				Aliases: []string{"x"},
				Usage:   "replace the extension of downloaded files",
			},
		),
		CustomHelpTemplate: getHelpTemplate,
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
					Direction:    transfer.Download,
					Connection:   conn,
					Source:       c.Args().Get(2),
					Destination:  c.Args().Get(3),
					Extension:    strings.TrimPrefix(c.String("extension"), "."),
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
