package launcher

import (
	"fmt"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/hivepower/go-crowdsale/flags"
)

var app = flags.NewApp()

func init() {
	app.Flags = append(flags.CommonFlags(), flags.SaleFlags()...)
	app.Before = setupLogging
	app.Commands = []cli.Command{
		{
			Name:   "inspect",
			Usage:  "Print the resolved sale configuration and its identity",
			Action: inspectSale,
		},
		{
			Name:   "simulate",
			Usage:  "Run a full synthetic sale (contribute, finalize, refund) in-process",
			Flags:  flags.SimulateFlags(),
			Action: runSimulation,
		},
	}
}

// Launch parses the arguments and dispatches to the selected command.
func Launch(args []string) error {
	return app.Run(args)
}

// setupLogging configures the process-wide logger from the CLI flags and
// attaches the Sentry hook when a DSN is supplied.
func setupLogging(ctx *cli.Context) error {
	switch ctx.GlobalString("log.format") {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors: ctx.GlobalBool("log.color"),
		})
	default:
		return fmt.Errorf("unknown log format %q", ctx.GlobalString("log.format"))
	}

	levels := []logrus.Level{
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
		logrus.TraceLevel,
	}
	verbosity := ctx.GlobalInt("log.verbosity")
	if verbosity < 0 || verbosity >= len(levels) {
		return fmt.Errorf("log verbosity out of range: %d", verbosity)
	}
	logrus.SetLevel(levels[verbosity])

	if dsn := ctx.GlobalString("sentry.dsn"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return fmt.Errorf("sentry hook: %w", err)
		}
		hook.StacktraceConfiguration.Enable = true
		logrus.AddHook(hook)
	}
	return nil
}
