package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/peak/remotecp/internal/transfer"
	"github.com/peak/remotecp/log"
	"github.com/peak/remotecp/log/stat"
	"github.com/peak/remotecp/progressbar"
	"github.com/peak/remotecp/storage"
)

const (
	defaultProtocol = "sftp"
	defaultPort     = 22

	passwordEnv = "REMOTECP_PASSWORD"
)

// NewTransferFlags returns the flags shared by get and put.
func NewTransferFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Value:   defaultProtocol,
			Usage:   "transfer protocol: (sftp, ftp, ftps)",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   defaultPort,
			Usage:   "port of the server",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"w"},
			EnvVars: []string{passwordEnv},
			Usage:   "password of the user",
		},
		&cli.BoolFlag{
			Name:    "delete",
			Aliases: []string{"d"},
			Usage:   "delete each source file once it is transferred",
		},
		&cli.BoolFlag{
			Name:  "no-verify-ssl",
			Usage: "disable certificate verification of ftps servers",
		},
		&cli.StringFlag{
			Name:  "known-hosts",
			Usage: "verify sftp host keys against given known_hosts file",
		},
		&cli.BoolFlag{
			Name:    "show-progress",
			Aliases: []string{"sp"},
			Usage:   "show a progress bar",
		},
	}
}

// NewConnectionSpec builds the connection of a get or put command. The
// server and the user are the first two arguments.
func NewConnectionSpec(c *cli.Context) (storage.ConnectionSpec, error) {
	protocol, err := storage.ParseProtocol(c.String("type"))
	if err != nil {
		return storage.ConnectionSpec{}, err
	}

	return storage.ConnectionSpec{
		Host:     c.Args().Get(0),
		Port:     c.Int("port"),
		User:     c.Args().Get(1),
		Password: c.String("password"),
		Protocol: protocol,
		Options: storage.Options{
			NoVerifySSL:    c.Bool("no-verify-ssl"),
			KnownHostsFile: c.String("known-hosts"),
		},
	}, nil
}

func validateTransferCommand(c *cli.Context) error {
	if c.Args().Len() != 4 {
		return fmt.Errorf("expected server, user, source and destination arguments")
	}

	for i, name := range []string{"server", "user", "source", "destination"} {
		if strings.TrimSpace(c.Args().Get(i)) == "" {
			return fmt.Errorf("%v must not be empty", name)
		}
	}

	if _, err := storage.ParseProtocol(c.String("type")); err != nil {
		return err
	}

	if port := c.Int("port"); port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	return nil
}

// Transfer holds the state of a get or put command.
type Transfer struct {
	req         transfer.Request
	op          string
	fullCommand string

	// flags
	showProgress bool

	manager *transfer.Manager
}

// Run runs the batch and renders its events. It returns an error when the
// batch was aborted or when every file failed.
func (t Transfer) Run(ctx context.Context) error {
	var bar progressbar.ProgressBar = &progressbar.NoOpProgressBar{}
	if t.showProgress {
		bar = progressbar.NewCommandProgressBar()
	}

	printDebug(t.fullCommand, t.op, fmt.Sprintf("connecting to %v over %v", t.req.Connection.Address(), t.req.Connection.Protocol))

	bar.Start()
	report, err := t.manager.Run(ctx, t.req, t.sink(bar))
	bar.Finish()

	stat.Collect(t.op, report.Transferred(), report.Failed(), transferredBytes(report))

	if err != nil {
		return err
	}
	if report.Status == transfer.StatusFailed {
		return report.Err()
	}
	return nil
}

// sink renders the events of a batch.
func (t Transfer) sink(bar progressbar.ProgressBar) transfer.Sink {
	return func(e transfer.Event) {
		switch e := e.(type) {
		case transfer.EventTransferring:
			bar.IncrementTotalFiles()
			bar.AddTotalBytes(e.Size)
			if t.showProgress {
				return
			}
			log.Info(log.InfoMessage{
				Operation:   t.op,
				Source:      e.Src,
				Destination: e.Dst,
				Size:        e.Size,
			})
		case transfer.EventProgress:
			bar.AddCompletedBytes(e.Bytes)
		case transfer.EventTransferred:
			bar.IncrementCompletedFiles()
		case transfer.EventFailed:
			if e.Op == "delete" {
				printWarning(t.fullCommand, e.Op, e.Err)
				return
			}
			printError(t.fullCommand, t.op, e.Err)
		case transfer.EventDeleted:
			printDebug(t.fullCommand, "delete", fmt.Sprintf("deleted %v", e.Src))
		case transfer.EventDone:
			log.Info(log.SummaryMessage{
				Operation:   t.op,
				Status:      e.Status.String(),
				Transferred: e.Transferred,
				Failed:      e.Failed,
			})
		case transfer.EventAborted:
			printError(t.fullCommand, t.op, e.Err)
		}
	}
}

// transferredBytes returns the size of the files that made it. Bytes of
// failed copies are not counted.
func transferredBytes(report *transfer.Report) int64 {
	var bytes int64
	for _, result := range report.Results {
		if result.Status == transfer.ResultTransferred {
			bytes += result.Bytes
		}
	}
	return bytes
}
