package fileingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExtensions are the document types `content import` picks up.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".html", ".htm"}

// FileMeta holds metadata about a file to be ingested.
type FileMeta struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Title is the file name without its extension.
func (f FileMeta) Title() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

/*
DiscoverFiles recursively finds files under rootDir whose extension, compared
case-insensitively, is one of exts (DefaultExtensions when empty). Hidden
directories are skipped.

Files come back sorted by path.
*/
func DiscoverFiles(ctx context.Context, rootDir string, exts []string) ([]FileMeta, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	var files []FileMeta
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		meta, metaErr := ExtractFileMeta(path)
		if metaErr != nil {
			// Skip files we can't stat, but continue
			return nil
		}
		files = append(files, meta)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// ExtractFileMeta stats path into a FileMeta.
func ExtractFileMeta(path string) (FileMeta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMeta{}, err
	}
	return FileMeta{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
