package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/ankit-chaubey/jpeg-metadata-surgery/core"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/fsutil"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/jpg"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/strip"
	"github.com/ankit-chaubey/jpeg-metadata-surgery/core/timeshift"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

const usage = `Usage: surgery <command> [flags] <file|dir>...

Commands:
  view            list EXIF, XMP and IPTC metadata
  strip-preview   report what a strip would remove
  strip           remove metadata in place
  shift-preview   report the shifted capture datetime
  shift           shift capture datetimes in place

Run "surgery <command> -h" for the flags of a command.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "view":
		err = runView(args)
	case "strip-preview":
		err = runStrip(cmd, args, true)
	case "strip":
		err = runStrip(cmd, args, false)
	case "shift-preview":
		err = runShift(cmd, args, true)
	case "shift":
		err = runShift(cmd, args, false)
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		core.PrintError(err.Error())
		os.Exit(1)
	}
}

// common holds the flags every command accepts.
type common struct {
	JSON      bool
	Verbose   bool
	Recursive bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.JSON, "json", false, "Print reports as JSON")
	fs.BoolVar(&c.Verbose, "v", false, "Verbose logging")
	fs.BoolVar(&c.Recursive, "r", false, "Descend into subdirectories")
}

func (c *common) logger() (*zap.Logger, error) {
	if c.Verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// batchOptions wires the logger, the disk store and Ctrl-C cancellation.
// The returned stop function releases the signal handler.
func batchOptions(log *zap.Logger) (core.BatchOptions, func()) {
	var canceled atomic.Bool
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sig:
			canceled.Store(true)
		case <-done:
		}
	}()
	opts := core.BatchOptions{
		Log:      log,
		Store:    fsutil.Disk{},
		Canceled: canceled.Load,
	}
	return opts, func() {
		signal.Stop(sig)
		close(done)
	}
}

// reportCancel tells the user when Ctrl-C cut a batch short.
func reportCancel(p *core.Printer) func(core.Progress) {
	return func(pr core.Progress) {
		if pr.Done && pr.Canceled {
			p.PrintInfo("interrupted: remaining files were skipped")
		}
	}
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	var c common
	c.register(fs)
	fs.Parse(args)

	files, err := collectFiles(fs.Args(), c.Recursive)
	if err != nil {
		return err
	}
	p := core.NewPrinter(c.JSON, c.Verbose)
	var merr *multierror.Error
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		m, err := jpg.View(path, data)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", path, err))
			continue
		}
		p.PrintMetadata(m)
	}
	return merr.ErrorOrNil()
}

func runStrip(cmd string, args []string, preview bool) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var c common
	c.register(fs)
	sf := registerStripFlags(fs)
	fs.Parse(args)

	req, err := sf.request(fs)
	if err != nil {
		return err
	}
	if req.Files, err = collectFiles(fs.Args(), c.Recursive); err != nil {
		return err
	}
	log, err := c.logger()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Debug("strip request",
		zap.String("preset", string(req.Preset)),
		zap.Any("categories", req.Categories),
		zap.Int("files", len(req.Files)))

	opts, stop := batchOptions(log)
	defer stop()
	p := core.NewPrinter(c.JSON, c.Verbose)
	opts.Progress = reportCancel(p)
	if preview {
		p.PrintStripPreview(strip.Preview(req, opts))
		return nil
	}
	resp := strip.Execute(req, opts)
	p.PrintStripResult(resp)

	var merr *multierror.Error
	for _, d := range resp.Details {
		if d.Status == core.StatusFailed {
			merr = multierror.Append(merr, fmt.Errorf("%s: %s", d.Path, d.Reason))
		}
	}
	return merr.ErrorOrNil()
}

func runShift(cmd string, args []string, preview bool) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var c common
	c.register(fs)
	offset := fs.String("offset", "", `Offset to apply: a duration ("-1h30m") or seconds ("-5400")`)
	fs.Parse(args)

	secs, err := parseOffset(*offset)
	if err != nil {
		return err
	}
	files, err := collectFiles(fs.Args(), c.Recursive)
	if err != nil {
		return err
	}
	log, err := c.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	req := core.ShiftRequest{Files: files, OffsetSeconds: secs}
	opts, stop := batchOptions(log)
	defer stop()
	p := core.NewPrinter(c.JSON, c.Verbose)
	opts.Progress = reportCancel(p)
	if preview {
		p.PrintShiftPreview(timeshift.Preview(req, opts))
		return nil
	}
	resp := timeshift.Execute(req, opts)
	p.PrintShiftResult(resp)

	var merr *multierror.Error
	for _, d := range resp.Details {
		if d.Status == core.StatusFailed {
			merr = multierror.Append(merr, fmt.Errorf("%s: %s", d.Path, d.Reason))
		}
	}
	return merr.ErrorOrNil()
}
