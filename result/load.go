package result

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// Load reads a result file and decodes it. Plain .json files are read
// directly; .xz files are decompressed on the fly; .zip archives (the
// engine's native output packaging) are extracted and the first .json
// entry is used.
func Load(path string) (*Raw, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path)
	case strings.HasSuffix(path, ".xz"):
		return loadXZ(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read result file: %w", err)
		}
		return Decode(data)
	}
}

func loadXZ(path string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open xz stream: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress result file: %w", err)
	}
	return Decode(data)
}

func loadZip(path string) (*Raw, error) {
	dir, err := os.MkdirTemp("", "workbench-result-")
	if err != nil {
		return nil, fmt.Errorf("create extract dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract result archive: %w", err)
	}

	var candidates []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".json") {
			candidates = append(candidates, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan result archive: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("result archive %q contains no .json entry", path)
	}
	sort.Strings(candidates)

	data, err := os.ReadFile(candidates[0])
	if err != nil {
		return nil, fmt.Errorf("read extracted result: %w", err)
	}
	return Decode(data)
}
