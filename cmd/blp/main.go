package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"text/tabwriter"

	"github.com/bodgit/blp"
	"github.com/bodgit/blp/catalog"
	"github.com/bodgit/blp/convert"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openCatalog(c *cli.Context) (*catalog.DB, error) {
	file := c.String("db")
	if file == "" {
		return nil, nil
	}
	return catalog.New(file)
}

func info(w io.Writer, name string) error {
	f, err := convert.OpenSource(name)
	if err != nil {
		return err
	}

	b, err := blp.NewFile(f)
	if err != nil {
		return err
	}
	defer b.Close()

	h := b.Header()
	fmt.Fprintf(w, "Version:\t%d\n", h.Version)
	fmt.Fprintf(w, "Encoding:\t%s\n", h.Encoding)
	fmt.Fprintf(w, "Alpha depth:\t%d\n", h.AlphaDepth)
	fmt.Fprintf(w, "Preferred format:\t%s\n", h.PreferredFormat)
	fmt.Fprintf(w, "Dimensions:\t%dx%d\n", h.Width, h.Height)
	fmt.Fprintf(w, "Mipmaps:\t%d\n", b.MipCount())
	if j := b.JPEGHeader(); j != nil {
		fmt.Fprintf(w, "JPEG header:\t%d bytes\n", len(j))
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Level\tWidth\tHeight\tOffset\tSize\t")
	for i := 0; i < b.MipCount(); i++ {
		m, err := b.Mip(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t\n", m.Level, m.Width, m.Height, m.Offset, m.Size)
	}
	return tw.Flush()
}

func main() {
	app := cli.NewApp()

	app.Name = "blp"
	app.Usage = "BLP texture conversion utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BLP_DB"},
			Usage:   "record results in catalog `FILE`",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	formatFlag := &cli.StringFlag{
		Name:  "format",
		Usage: "output format; png, gif, bmp or tiff",
	}
	levelFlag := &cli.IntFlag{
		Name:  "level",
		Usage: "mipmap level to write",
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show header and mipmap details",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := info(os.Stdout, c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert a single texture",
			ArgsUsage: "FILE OUTPUT",
			Flags:     []cli.Flag{formatFlag, levelFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				format := c.String("format")
				if format == "" {
					format = c.Args().Get(1)
				}
				f, err := convert.ParseFormat(format)
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := openCatalog(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if db != nil {
					defer db.Close()
				}

				conv := convert.New(convert.Options{Format: f, Level: c.Int("level")}, db, newLogger(c))
				if err := conv.ConvertFile(c.Args().First(), c.Args().Get(1)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Convert every texture beneath a directory",
			ArgsUsage: "DIRECTORY",
			Flags: []cli.Flag{
				formatFlag,
				levelFlag,
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Value:   ".",
					Usage:   "write images beneath `DIRECTORY`",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of textures to convert in parallel",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				format := c.String("format")
				if format == "" {
					format = convert.PNG.String()
				}
				f, err := convert.ParseFormat(format)
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := openCatalog(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if db != nil {
					defer db.Close()
				}

				conv := convert.New(convert.Options{
					Format:  f,
					Level:   c.Int("level"),
					Workers: c.Int("workers"),
				}, db, newLogger(c))

				stats, err := conv.Scan(c.Args().First(), c.String("out"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				if stats.Failed > 0 {
					fmt.Fprintf(os.Stderr, "%d texture(s) could not be converted\n", stats.Failed)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
