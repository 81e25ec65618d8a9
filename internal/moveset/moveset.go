package moveset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"hkxshift/internal/classify"
)

var (
	// ErrInvalidSource indicates the source root is missing or not a directory.
	ErrInvalidSource = errors.New("source is not an existing directory")
	// ErrNoAssetsFound indicates neither the root nor any immediate
	// subdirectory directly contains an asset file.
	ErrNoAssetsFound = errors.New("no asset files found")
)

// Mode records how the source root was interpreted.
type Mode string

const (
	// ModeBatch treats each qualifying subdirectory as a moveset.
	ModeBatch Mode = "batch"
	// ModeSingle treats the root itself as the only moveset.
	ModeSingle Mode = "single"
)

// Moveset is one directory of assets processed as a unit.
type Moveset struct {
	Name  string
	Path  string
	Files []string
}

// Discovery is the result of resolving a source root.
type Discovery struct {
	Root     string
	Mode     Mode
	Movesets []Moveset
}

// Files returns the total number of member files across movesets.
func (d Discovery) Files() int {
	total := 0
	for _, m := range d.Movesets {
		total += len(m.Files)
	}
	return total
}

// Discover resolves root into movesets. Immediate subdirectories that
// directly contain an asset select batch mode. Otherwise a root that directly
// contains an asset is a single moveset. Movesets are ordered by name and each
// moveset's files are ordered by name.
func Discover(root string, classifier *classify.Classifier) (Discovery, error) {
	if classifier == nil {
		classifier = classify.New(classify.DefaultRules())
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Discovery{}, fmt.Errorf("%w: %s: %v", ErrInvalidSource, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return Discovery{}, fmt.Errorf("%w: %s", ErrInvalidSource, root)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return Discovery{}, fmt.Errorf("read source %s: %w", abs, err)
	}

	var movesets []Moveset
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(abs, entry.Name())
		files, err := listFiles(dir)
		if err != nil {
			return Discovery{}, err
		}
		if containsAsset(files, classifier) {
			movesets = append(movesets, Moveset{Name: entry.Name(), Path: dir, Files: files})
		}
	}
	if len(movesets) > 0 {
		sort.Slice(movesets, func(i, j int) bool { return movesets[i].Name < movesets[j].Name })
		return Discovery{Root: abs, Mode: ModeBatch, Movesets: movesets}, nil
	}

	files, err := listFiles(abs)
	if err != nil {
		return Discovery{}, err
	}
	if containsAsset(files, classifier) {
		return Discovery{
			Root:     abs,
			Mode:     ModeSingle,
			Movesets: []Moveset{{Name: filepath.Base(abs), Path: abs, Files: files}},
		}, nil
	}
	return Discovery{}, fmt.Errorf("%w in %s", ErrNoAssetsFound, abs)
}

// listFiles returns the names of regular files directly inside dir, sorted.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func containsAsset(files []string, classifier *classify.Classifier) bool {
	for _, name := range files {
		if classifier.IsAsset(name) {
			return true
		}
	}
	return false
}
