package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/palnorm"
	"github.com/bodgit/palnorm/jasc"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/urfave/cli/v2"
)

const defaultOutput = "output"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func processingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "resample",
			EnvVars: []string{"PALNORM_RESAMPLE"},
			Usage:   "normalize every image to 64 pixels wide and fit the base to each variant",
		},
		&cli.BoolFlag{
			Name:    "reorder-palette",
			EnvVars: []string{"PALNORM_REORDER_PALETTE"},
			Usage:   "write variant palettes in remapped index order",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			EnvVars: []string{"PALNORM_FORMAT"},
			Value:   string(palnorm.FormatPNG),
			Usage:   "pixel grid format: png, npy, json or 4bpp",
		},
		&cli.BoolFlag{
			Name:    "compress",
			EnvVars: []string{"PALNORM_COMPRESS"},
			Usage:   "compress npy and 4bpp grids with zstd",
		},
		&cli.BoolFlag{
			Name:    "preview",
			EnvVars: []string{"PALNORM_PREVIEW"},
			Usage:   "write preview.json for each collection",
		},
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newNormalizer(c *cli.Context) (*palnorm.Normalizer, error) {
	format, err := palnorm.ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}

	opts := palnorm.DefaultOptions()
	opts.Resample = c.Bool("resample")
	opts.ReorderPalette = c.Bool("reorder-palette")
	opts.Format = format
	opts.Compress = c.Bool("compress")
	opts.Preview = c.Bool("preview")

	return palnorm.New(opts, newLogger(c)), nil
}

func printReport(w io.Writer, r *palnorm.Report) {
	for _, res := range r.Results {
		fmt.Fprintln(w, res)
	}
	fmt.Fprintf(w, "%d processed, %d skipped, %d failed\n", r.Count(palnorm.Processed), r.Count(palnorm.Skipped), r.Count(palnorm.Failed))
}

func finish(c *cli.Context, source string, r *palnorm.Report) error {
	printReport(c.App.Writer, r)

	if file := c.String("db"); file != "" {
		db, err := palnorm.NewReportDB(file)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()

		if _, err := db.Record(source, r); err != nil {
			return cli.Exit(err, 1)
		}
	}

	if n := r.Count(palnorm.Failed); n > 0 {
		return cli.Exit(fmt.Sprintf("%d images failed", n), 1)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "palnorm"
	app.Usage = "Indexed image palette normalizer"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PALNORM_DB"},
			Usage:   "record reports in this database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "scan",
			Usage:       "Process every directory of PNG images",
			Description: "Each directory holding .png files is a collection, Base.png is its reference image.",
			ArgsUsage:   "DIRECTORY [OUTPUT]",
			Flags:       processingFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				n, err := newNormalizer(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				dir := c.Args().First()
				output := c.Args().Get(1)
				if output == "" {
					output = filepath.Join(dir, defaultOutput)
				}

				r, err := n.Scan(dir, output)
				if err != nil {
					return cli.Exit(err, 1)
				}

				return finish(c, dir, r)
			},
		},
		{
			Name:        "zip",
			Usage:       "Process the PNG images in a ZIP archive",
			Description: "Each directory inside the archive is a collection.",
			ArgsUsage:   "FILE OUTPUT",
			Flags:       processingFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				n, err := newNormalizer(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				r, err := n.ScanZip(c.Args().Get(0), c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}

				return finish(c, c.Args().Get(0), r)
			},
		},
		{
			Name:        "bundle",
			Usage:       "Process a JSON bundle of indexed images",
			Description: "The bundle maps image names to {\"pixels\": [[...]], \"palette\": [[r, g, b], ...]}.",
			ArgsUsage:   "FILE OUTPUT",
			Flags:       processingFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				n, err := newNormalizer(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Open(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				r, err := n.ProcessBundle(f, palnorm.DirSink(c.Args().Get(1)))
				if err != nil {
					return cli.Exit(err, 1)
				}

				return finish(c, c.Args().Get(0), r)
			},
		},
		{
			Name:      "inspect",
			Usage:     "Print the colors of a JASC-PAL file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				p, err := jasc.Decode(f)
				if err != nil {
					return cli.Exit(err, 1)
				}

				for i, pc := range p {
					cf, _ := colorful.MakeColor(pc)
					fmt.Fprintf(c.App.Writer, "%3d %s\n", i, cf.Hex())
				}

				return nil
			},
		},
		{
			Name:  "report",
			Usage: "Print the last recorded report",
			Action: func(c *cli.Context) error {
				if c.String("db") == "" {
					return cli.Exit("no database given", 1)
				}

				db, err := palnorm.NewReportDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				run, err := db.LastRun()
				if err != nil {
					return cli.Exit(err, 1)
				}
				if run == nil {
					return cli.Exit("nothing recorded", 1)
				}

				r, err := db.Results(run.ID)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Fprintf(c.App.Writer, "Run %d of %s at %s\n", run.ID, run.Source, run.Started.Local().Format("2006-01-02 15:04:05"))
				printReport(c.App.Writer, r)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
