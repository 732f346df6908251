package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"waypoint/internal/logging"
)

// DefaultExtensions are the file suffixes scanned for scenario content.
var DefaultExtensions = []string{".feature", ".spec"}

// DefaultScanWorkers bounds the parse fan-out.
const DefaultScanWorkers = 8

// ScanOptions configures a corpus scan.
type ScanOptions struct {
	Extensions []string // file suffixes to parse; DefaultExtensions if empty
	Workers    int      // parse concurrency; DefaultScanWorkers if <= 0
}

// Diagnostic records a file the scanner skipped and why.
type Diagnostic struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// ScanResult is the merged output of one corpus scan.
type ScanResult struct {
	Definitions []Definition `json:"definitions"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	FilesParsed int          `json:"files_parsed"`
}

// Scan walks root and parses every matching file. Files parse
// independently on a bounded worker pool with private accumulators;
// results merge order-independently and are sorted by (file, line) at the
// end so repeated scans of an unchanged corpus are identical. A malformed
// file becomes a diagnostic, never a scan failure.
func Scan(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus: root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus: root %q is not a directory", root)
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultScanWorkers
	}

	var paths []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range exts {
			if filepath.Ext(path) == ext {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("corpus: walk %q: %w", root, walkErr)
	}

	log := logging.New("corpus")
	res := &ScanResult{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				res.Diagnostics = append(res.Diagnostics, Diagnostic{File: path, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			defs, err := ParseFile(path, data)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("skipping malformed file", "file", path, "err", err)
				res.Diagnostics = append(res.Diagnostics, Diagnostic{File: path, Reason: err.Error()})
				return nil
			}
			res.Definitions = append(res.Definitions, defs...)
			res.FilesParsed++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("corpus: scan: %w", err)
	}

	sort.Slice(res.Definitions, func(i, j int) bool {
		a, b := res.Definitions[i], res.Definitions[j]
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	sort.Slice(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].File < res.Diagnostics[j].File
	})
	return res, nil
}
