package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const progName = "locktools"

func main() {
	startLogging()

	if err := newApp().Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           progName,
		Usage:          "recover the key of a .lock file and decode it to UTF-16LE text",
		DefaultCommand: "decode",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			setDebugLogging(c.Bool("debug"))
			return nil
		},
		Commands: []*cli.Command{
			cmdDecode(),
			cmdKey(),
			cmdDump(),
			cmdLock(),
			cmdGUI(),
		},
	}
}

func lockInFlag() *cli.PathFlag {
	return &cli.PathFlag{
		Name:    "in",
		Aliases: []string{"i"},
		Usage:   "lock file to read",
		Value:   defaultLockPath,
	}
}

func cmdDecode() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Decode a lock file and write the clear text",
		Flags: []cli.Flag{
			lockInFlag(),
			&cli.PathFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "clear text file to write",
				Value:   defaultClearPath,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not print the key, chunks and contents",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "highlight headings in the printed output",
			},
		},
		Action: decodeCommand,
	}
}

func cmdKey() *cli.Command {
	return &cli.Command{
		Name:   "key",
		Usage:  "Print the key recovered from a lock file",
		Flags:  []cli.Flag{lockInFlag()},
		Action: keyCommand,
	}
}

func cmdDump() *cli.Command {
	return &cli.Command{
		Name:   "dump",
		Usage:  "Print a table of raw and decoded bytes per chunk",
		Flags:  []cli.Flag{lockInFlag()},
		Action: dumpCommand,
	}
}

func cmdLock() *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "Obfuscate a UTF-8 text file with a known key",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Usage:    "UTF-8 text file to read",
				Required: true,
			},
			&cli.PathFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "lock file to write (default: <in>.lock)",
			},
			&cli.StringFlag{
				Name:     "key",
				Aliases:  []string{"k"},
				Usage:    "4 key bytes in hex, e.g. 31214211 or 0x31,0x21,0x42,0x11",
				Required: true,
			},
		},
		Action: lockCommand,
	}
}

func cmdGUI() *cli.Command {
	return &cli.Command{
		Name:      "gui",
		Usage:     "Open the viewer window",
		ArgsUsage: "[lockfile]",
		Action: func(c *cli.Context) error {
			newViewer(c.Args().First()).Run()
			return nil
		},
	}
}

func decodeCommand(c *cli.Context) error {
	var obs Observer
	if !c.Bool("quiet") {
		obs = newHexPrinter(c.App.Writer, c.Bool("color"))
	}

	_, err := decodeLockFile(c.Path("in"), c.Path("out"), obs)
	return err
}

func keyCommand(c *cli.Context) error {
	data, err := readLockFile(c.Path("in"))
	if err != nil {
		return err
	}

	key, found := recoverKey(data)
	warnKeyUnderrun(found)
	fmt.Fprintf(c.App.Writer, "Key: %s\n", key)
	return nil
}

func dumpCommand(c *cli.Context) error {
	data, err := readLockFile(c.Path("in"))
	if err != nil {
		return err
	}

	key, found := recoverKey(data)
	warnKeyUnderrun(found)
	fmt.Fprintf(c.App.Writer, "Key: %s\n", key)
	dumpChunks(c.App.Writer, data, key)
	return nil
}

func lockCommand(c *cli.Context) error {
	key, err := parseKey(c.String("key"))
	if err != nil {
		return err
	}

	inPath := c.Path("in")
	outPath := c.Path("out")
	if outPath == "" {
		outPath = inPath + lockSuffix
	}

	return lockFile(inPath, outPath, key)
}
