// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aibor/rimfs/internal/export"
	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/pack"
	"github.com/aibor/rimfs/internal/vfs"
)

// fsName translates an absolute virtual path into its io/fs form.
func fsName(absPath string) string {
	name := strings.TrimPrefix(absPath, "/")
	if name == "" {
		return "."
	}

	return name
}

// runList walks the virtual tree from the given root path and prints one
// line per entry.
func runList(img *image.Image, args []string, out io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: list takes at most one path", ErrInvalidArgs)
	}

	root := "."
	if len(args) == 1 {
		root = fsName(args[0])
	}

	fsys := vfs.New(img)

	//nolint:wrapcheck
	return fs.WalkDir(fsys, root, func(
		path string,
		entry fs.DirEntry,
		err error,
	) error {
		if err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			fmt.Fprintf(out, "d %s\n", path)
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := fsys.ReadLink(path)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "l %s -> %s\n", path, target)
		default:
			fmt.Fprintf(out, "f %s\n", path)
		}

		return nil
	})
}

// runCat writes the content of a single file node to the given writer.
func runCat(img *image.Image, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: cat takes exactly one path", ErrInvalidArgs)
	}

	node, err := img.Find(args[0])
	if err != nil {
		return fmt.Errorf("find %q: %w", args[0], err)
	}

	if node = node.ResolveLink(true); node == nil {
		return fmt.Errorf("find %q: %w", args[0], image.ErrNotExist)
	}

	content, err := node.Content()
	if err != nil {
		return fmt.Errorf("read %q: %w", args[0], err)
	}

	if _, err := out.Write(content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	return nil
}

// runExtract writes a subtree of the virtual hierarchy into a new CPIO
// archive file.
func runExtract(img *image.Image, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf(
			"%w: extract takes an archive path and an optional root",
			ErrInvalidArgs,
		)
	}

	root := ""
	if len(args) == 2 {
		root = args[1]
	}

	archive, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	writer := export.NewCPIOWriter(archive)

	err = export.Export(img, root, writer)
	if cErr := writer.Close(); err == nil {
		err = cErr
	}

	if fErr := archive.Close(); err == nil {
		err = fErr
	}

	if err != nil {
		_ = os.Remove(args[0])
		return err
	}

	slog.Debug("Wrote archive", slog.String("path", args[0]))

	return nil
}

// runCreate packs a directory tree into a new image file. The top level
// directories of the source are the modules.
func runCreate(ctx context.Context, flags *flags) error {
	if len(flags.args) != 1 {
		return fmt.Errorf("%w: create takes a source directory", ErrInvalidArgs)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if flags.bigEndian {
		order = binary.BigEndian
	}

	writer := pack.NewWriter(order)
	fsys := os.DirFS(flags.args[0])

	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	err := fs.WalkDir(fsys, ".", func(
		path string,
		entry fs.DirEntry,
		err error,
	) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		module, rest, found := strings.Cut(path, "/")
		if !found {
			return fmt.Errorf("%w: top level file %s", ErrInvalidArgs, path)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr //nolint:wrapcheck
		}

		eg.Go(func() error {
			content, err := fs.ReadFile(fsys, path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			mu.Lock()
			defer mu.Unlock()

			//nolint:wrapcheck
			return writer.Add(module, rest, content)
		})

		return nil
	})

	if egErr := eg.Wait(); err == nil {
		err = egErr
	}

	if err != nil {
		return err
	}

	file, err := os.Create(flags.imagePath)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	_, err = writer.WriteTo(file)
	if cErr := file.Close(); err == nil {
		err = cErr
	}

	if err != nil {
		_ = os.Remove(flags.imagePath)
		return err
	}

	slog.Debug("Created image", slog.String("path", flags.imagePath))

	return nil
}
