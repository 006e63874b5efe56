package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kestrel/internal/driver"
	"kestrel/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build outputs and the compile cache",
	Long: `Clean removes the out_dir of the project containing path (default .)
and drops the compile cache in KESTREL_CACHE_DIR.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("cache-only", false, "keep build outputs, drop only the compile cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	cacheOnly, err := cmd.Flags().GetBool("cache-only")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	quiet := sess().quiet

	if !cacheOnly {
		manifest, ok, err := project.Load(base)
		if err != nil {
			return err
		}
		if ok {
			removed, err := removeDir(manifest.OutDir())
			if err != nil {
				return err
			}
			if removed && !quiet {
				fmt.Fprintf(out, "removed %s\n", relToRoot(manifest.Root, manifest.OutDir()))
			}
		}
	}

	// KESTREL_NO_CACHE не мешает чистке
	dir := sess().env.CacheDir
	if dir == "" {
		return nil
	}
	cache, err := driver.OpenDiskCache(dir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("drop cache: %w", err)
	}
	if !quiet {
		fmt.Fprintf(out, "dropped cache %s\n", cache.Dir())
	}
	return nil
}

func removeDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%q is not a directory", dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to remove %q: %w", dir, err)
	}
	return true, nil
}

func relToRoot(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
