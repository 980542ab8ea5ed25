// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command mpq extracts, lists, and creates Version-1 MPQ archives.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ryanuber/go-glob"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/mopaq-go/mpqarchive"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	app := &cli.App{
		Name:  "mpq",
		Usage: "inspect and build Version-1 MPQ archives",
		Commands: []*cli.Command{
			extractCommand,
			viewCommand,
			createCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		klog.Exitf("mpq: %v", err)
	}
}

var extractCommand = &cli.Command{
	Name:      "extract",
	Usage:     "extract files from an archive",
	ArgsUsage: "<archive>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: ".", Usage: "directory to extract into"},
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "glob pattern restricting which members to extract"},
	},
	Action: func(c *cli.Context) error {
		archive, err := openArchive(c.Args().First())
		if err != nil {
			return err
		}

		names, ok := archive.Files()
		if !ok {
			return fmt.Errorf("archive has no (listfile); member names cannot be listed")
		}

		pattern := c.String("filter")
		outDir := c.String("output")

		for _, name := range names {
			if pattern != "" && !glob.Glob(pattern, name) {
				continue
			}
			data, err := archive.ReadFile(name)
			if err != nil {
				klog.Warningf("skipping %s: %v", name, err)
				continue
			}

			dest := filepath.Join(outDir, filepath.FromSlash(toSlash(name)))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return err
			}
			klog.V(1).Infof("extracted %s (%s)", name, humanize.Bytes(uint64(len(data))))
		}
		return nil
	},
}

var viewCommand = &cli.Command{
	Name:      "view",
	Usage:     "list the files contained in an archive",
	ArgsUsage: "<archive>",
	Action: func(c *cli.Context) error {
		archive, err := openArchive(c.Args().First())
		if err != nil {
			return err
		}

		names, ok := archive.Files()
		if !ok {
			fmt.Println("(no listfile present)")
			return nil
		}
		for _, name := range names {
			data, err := archive.ReadFile(name)
			if err != nil {
				fmt.Printf("%s\t<unreadable: %v>\n", name, err)
				continue
			}
			fmt.Printf("%s\t%s\n", name, humanize.Bytes(uint64(len(data))))
		}
		return nil
	},
}

var createCommand = &cli.Command{
	Name:      "create",
	Usage:     "build an archive from a directory",
	ArgsUsage: "<archive> <source-dir>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "compress", Value: true, Usage: "deflate-compress each file"},
		&cli.BoolFlag{Name: "encrypt", Usage: "encrypt each file's sectors"},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 2 {
			return fmt.Errorf("usage: mpq create <archive> <source-dir>")
		}
		archivePath := c.Args().Get(0)
		srcDir := c.Args().Get(1)

		w := mpq.NewWriter()
		opts := mpq.FileOptions{Compress: c.Bool("compress"), Encrypt: c.Bool("encrypt")}

		err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(srcDir, path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			w.AddFile(filepath.ToSlash(rel), data, opts)
			klog.V(1).Infof("added %s (%s)", rel, humanize.Bytes(uint64(len(data))))
			return nil
		})
		if err != nil {
			return err
		}

		out, err := os.Create(archivePath)
		if err != nil {
			return err
		}
		defer out.Close()

		return w.Write(out)
	},
}

func openArchive(path string) (*mpq.Archive, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return mpq.Open(f)
}

func toSlash(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' {
			out[i] = '/'
		} else {
			out[i] = name[i]
		}
	}
	return string(out)
}
