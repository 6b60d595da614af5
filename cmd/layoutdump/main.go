package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/offsetlab/layoutkit/report"
	"github.com/offsetlab/layoutkit/sympath"
	"github.com/offsetlab/layoutkit/typedb"
	"github.com/offsetlab/layoutkit/verify"
	"github.com/offsetlab/layoutkit/xmltree"
)

func main() {
	app := &cli.App{
		Name:  "layoutdump",
		Usage: "resolve structure layouts, addresses and flag encodings from an xml type database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "directory holding the xml type database",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogging(c.Bool("verbose"))
		},
		Commands: []*cli.Command{
			dumpCommand(),
			versionsCommand(),
			layoutCommand(),
			verifyCommand(),
			browseCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	report.SetLogger(logger)
	return nil
}

func versionFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "version",
		Usage:    "symbol table version name, e.g. \"v0.47.05 linux64\"",
		Required: true,
	}
}

// resolveContext builds the evaluation context for one version. When the
// version name is unknown the known names go to stderr so the caller can
// pick one.
func resolveContext(db *typedb.DB, name string) (*report.Context, error) {
	ctx, err := report.NewContext(db, name)
	if err != nil {
		if _, verr := db.VersionByName(name); verr != nil {
			fmt.Fprintln(os.Stderr, "known versions:")
			for _, v := range db.Versions() {
				fmt.Fprintf(os.Stderr, "  %s\n", v.Name)
			}
		}
		return nil, err
	}
	return ctx, nil
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "evaluate a layout descriptor script and print the report",
		ArgsUsage: "<script.xml>",
		Flags:     []cli.Flag{versionFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: layoutdump --db <dir> dump --version <name> <script.xml>", 2)
			}
			db, err := typedb.LoadDir(c.String("db"))
			if err != nil {
				return err
			}
			ctx, err := resolveContext(db, c.String("version"))
			if err != nil {
				return err
			}
			ok, err := dumpReport(ctx, c.Args().First(), os.Stdout)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("some directives failed to resolve", 1)
			}
			return nil
		},
	}
}

// dumpReport writes the [info] preamble, then parses and evaluates the
// script. The preamble goes out before the script is even opened, so a
// malformed script still leaves the version identification on stdout.
func dumpReport(ctx *report.Context, scriptPath string, out io.Writer) (bool, error) {
	w := report.NewWriter(out)
	if err := ctx.WriteInfo(w); err != nil {
		return false, err
	}
	script, err := xmltree.ParseFile(scriptPath)
	if err != nil {
		return false, err
	}
	return ctx.Run(w, script), nil
}

func versionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "versions",
		Usage: "list the symbol table versions in the database",
		Action: func(c *cli.Context) error {
			db, err := typedb.LoadDir(c.String("db"))
			if err != nil {
				return err
			}
			for _, v := range db.Versions() {
				if len(v.ID) >= 4 {
					fmt.Printf("%s\t0x%02x%02x%02x%02x\n", v.Name, v.ID[0], v.ID[1], v.ID[2], v.ID[3])
				} else {
					fmt.Printf("%s\t(invalid id)\n", v.Name)
				}
			}
			return nil
		},
	}
}

func layoutCommand() *cli.Command {
	return &cli.Command{
		Name:      "layout",
		Usage:     "print the computed layout of one compound",
		ArgsUsage: "<type>",
		Flags:     []cli.Flag{versionFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: layoutdump --db <dir> layout --version <name> <type>", 2)
			}
			db, err := typedb.LoadDir(c.String("db"))
			if err != nil {
				return err
			}
			ctx, err := resolveContext(db, c.String("version"))
			if err != nil {
				return err
			}
			path, err := sympath.Parse(c.Args().First())
			if err != nil {
				return err
			}
			comp, err := db.Compound(path)
			if err != nil {
				return err
			}
			info, err := ctx.Layout.Compound(comp)
			if err != nil {
				return err
			}

			fmt.Printf("[%s]\n", c.Args().First())
			fmt.Printf("size=%s\n", report.Hex(uint64(info.Size)))
			fmt.Printf("align=%d\n", info.Align)
			for _, row := range sortedOffsets(info.Offsets) {
				fmt.Printf("%s=%s\n", row.name, report.Hex(uint64(row.offset)))
			}
			return nil
		},
	}
}

type offsetRow struct {
	name   string
	offset uint32
}

func sortedOffsets(offsets map[string]uint32) []offsetRow {
	rows := make([]offsetRow, 0, len(offsets))
	for name, off := range offsets {
		rows = append(rows, offsetRow{name, off})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].offset != rows[j].offset {
			return rows[i].offset < rows[j].offset
		}
		return rows[i].name < rows[j].name
	})
	return rows
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "compare computed layouts against a binary with dwarf info",
		ArgsUsage: "<binary>",
		Flags: []cli.Flag{
			versionFlag(),
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "compound to check (repeatable, default all)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: layoutdump --db <dir> verify --version <name> <binary>", 2)
			}
			db, err := typedb.LoadDir(c.String("db"))
			if err != nil {
				return err
			}
			ctx, err := resolveContext(db, c.String("version"))
			if err != nil {
				return err
			}

			mismatches, missing, err := verify.File(db, ctx.Layout, c.Args().First(), c.StringSlice("type"))
			if err != nil {
				return err
			}
			for _, name := range missing {
				fmt.Printf("%s: not present in binary\n", name)
			}
			for _, m := range mismatches {
				if m.Member == "" {
					fmt.Printf("%s: size %#x, binary has %#x\n", m.Compound, m.Want, m.Got)
				} else {
					fmt.Printf("%s.%s: offset %#x, binary has %#x\n", m.Compound, m.Member, m.Want, m.Got)
				}
			}
			if len(mismatches) > 0 {
				return cli.Exit(fmt.Sprintf("%d mismatches", len(mismatches)), 1)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func browseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "browse compound layouts interactively",
		Flags: []cli.Flag{versionFlag()},
		Action: func(c *cli.Context) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return cli.Exit("browse needs a terminal", 1)
			}
			db, err := typedb.LoadDir(c.String("db"))
			if err != nil {
				return err
			}
			ctx, err := resolveContext(db, c.String("version"))
			if err != nil {
				return err
			}
			return runBrowse(ctx)
		},
	}
}
