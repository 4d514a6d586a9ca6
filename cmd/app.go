// Package cmd wires the mimetype library up as a command-line tool: detect
// the type of a file, rebuild the cached repository, describe a known MIME
// type, or inspect the cache.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/sahib/mimedetect/config"
	"github.com/sahib/mimedetect/mimetype"
	colorlog "github.com/sahib/mimedetect/util/log"
)

func init() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	log.SetFormatter(&colorlog.ColorfulLogFormatter{UseColors: true})
}

func formatGroup(category string) string {
	return strings.ToUpper(category) + " COMMANDS"
}

func loadRepository(ctx *cli.Context) (*mimetype.Repository, *config.Options, error) {
	if p := ctx.GlobalString("config"); p != "" {
		config.SetPath(p)
	}
	opts, err := config.Get()
	if err != nil {
		return nil, nil, err
	}

	loader := func() (*mimetype.Repository, error) {
		return buildOrLoadRepository(opts)
	}

	repo, err := mimetype.GetRepository(loader)
	if err != nil {
		return nil, nil, err
	}
	return repo, opts, nil
}

func buildOrLoadRepository(opts *config.Options) (*mimetype.Repository, error) {
	if !opts.Rebuild() {
		if f, err := os.Open(opts.SerializationPath()); err == nil {
			defer f.Close()
			repo, err := mimetype.ReadCache(f)
			if err == nil {
				return repo, nil
			}
			log.WithError(err).Warn("binary cache invalid, rebuilding from database")
		}
	}

	f, err := os.Open(opts.DatabasePath())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeTypes, err := mimetype.ParseDatabase(f)
	if err != nil {
		return nil, err
	}
	repo := mimetype.NewRepository(mimeTypes)

	if opts.SaveCache() {
		if err := saveCache(opts.SerializationPath(), repo); err != nil {
			log.WithError(err).Warn("failed to persist binary cache")
		}
	}
	return repo, nil
}

func saveCache(path string, repo *mimetype.Repository) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return mimetype.WriteCache(f, repo)
}

func handleDetect(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError("detect needs at least one path", 1)
	}

	repo, opts, err := loadRepository(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	detector := mimetype.NewRepositoryDetector(repo)
	detector.AlwaysCheckMagic = opts.CheckMagic() || ctx.Bool("always-magic")

	buf := make([]byte, repo.MaxTestBytes())
	for _, path := range ctx.Args() {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		n, readErr := io.ReadFull(f, buf)
		f.Close()
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, readErr)
			continue
		}

		t, err := detector.DetectSingle(filepath.Base(path), buf, n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		name := opts.DefaultBinary()
		if t != nil {
			name = t.Name
		}
		fmt.Printf("%s: %s\n", path, color.GreenString(name))
	}
	return nil
}

func handleRebuild(ctx *cli.Context) error {
	opts, err := config.Get()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	loader := func() (*mimetype.Repository, error) {
		f, err := os.Open(opts.DatabasePath())
		if err != nil {
			return nil, err
		}
		defer f.Close()
		mimeTypes, err := mimetype.ParseDatabase(f)
		if err != nil {
			return nil, err
		}
		return mimetype.NewRepository(mimeTypes), nil
	}

	repo, err := mimetype.Rebuild(loader)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if opts.SaveCache() {
		if err := saveCache(opts.SerializationPath(), repo); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}

	fmt.Printf("rebuilt repository: %d mime types\n", len(repo.MimeTypes()))
	return nil
}

func handleDescribe(ctx *cli.Context) error {
	if !ctx.Args().Present() {
		return cli.NewExitError("describe needs a mime type name", 1)
	}
	repo, _, err := loadRepository(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	name := ctx.Args().First()
	t, ok := repo.Lookup(name)
	if !ok {
		return cli.NewExitError(fmt.Sprintf("unknown mime type: %s", name), 1)
	}

	locale := ctx.String("locale")
	fmt.Printf("%s\n", color.CyanString(t.Name))
	if desc := t.Description(locale); desc != "" {
		fmt.Printf("  %s\n", desc)
	}
	if len(t.Aliases) > 0 {
		fmt.Printf("  aliases: %s\n", strings.Join(t.Aliases, ", "))
	}
	if len(t.SuperTypes) > 0 {
		fmt.Printf("  super-types: %s\n", strings.Join(t.SuperTypes, ", "))
	}
	fmt.Printf("  globs: %d, magics: %d\n", len(t.Globs), len(t.Magics))
	return nil
}

func handleCache(ctx *cli.Context) error {
	opts, err := config.Get()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if ctx.Bool("clear") {
		if err := os.Remove(opts.SerializationPath()); err != nil && !os.IsNotExist(err) {
			return cli.NewExitError(err.Error(), 1)
		}
		fmt.Println("cache cleared")
		return nil
	}

	f, err := os.Open(opts.SerializationPath())
	if err != nil {
		fmt.Println("no cache present")
		return nil
	}
	defer f.Close()

	repo, err := mimetype.ReadCache(f)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Printf("cache at %s: %d mime types, max test bytes: %d\n",
		opts.SerializationPath(), len(repo.MimeTypes()), repo.MaxTestBytes())
	return nil
}

// RunCmdline builds and runs the command-line application over args
// (normally os.Args).
func RunCmdline(args []string) int {
	app := cli.NewApp()
	app.Name = "mimedetect"
	app.Usage = "Identify the MIME type of files by name and content"
	app.EnableBashCompletion = true

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "Path to the YAML configuration file",
			EnvVar: "MIMEDETECT_CONFIG",
		},
	}

	miscGroup := formatGroup("misc")

	app.Commands = []cli.Command{
		{
			Name:      "detect",
			Category:  miscGroup,
			Usage:     "Detect the MIME type of one or more files",
			ArgsUsage: "<file>...",
			Action:    handleDetect,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "always-magic",
					Usage: "Always confirm filename guesses against magic bytes",
				},
			},
		},
		{
			Name:     "rebuild",
			Category: miscGroup,
			Usage:    "Rebuild the repository from the XML database and refresh the cache",
			Action:   handleRebuild,
		},
		{
			Name:      "describe",
			Category:  miscGroup,
			Usage:     "Print what is known about a MIME type",
			ArgsUsage: "<mime/type>",
			Action:    handleDescribe,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "locale",
					Usage: "Locale to use for the description",
				},
			},
		},
		{
			Name:     "cache",
			Category: miscGroup,
			Usage:    "Inspect or clear the binary repository cache",
			Action:   handleCache,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "clear",
					Usage: "Remove the cache file instead of inspecting it",
				},
			},
		},
	}

	if err := app.Run(args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		return 1
	}
	return 0
}
