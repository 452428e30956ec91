package filelist

import (
	"os"
	"sort"
	"strings"

	"folio/internal/errors"
	"folio/internal/sorter"

	"github.com/gobwas/glob"
)

// nameFilter decides which directory entries belong in a list.
type nameFilter struct {
	known   glob.Glob
	exclude []glob.Glob
}

// newNameFilter compiles the known extensions (matched case-insensitively,
// with or without a leading dot) and the exclude patterns.
func newNameFilter(extensions []string, exclude []string) (*nameFilter, error) {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, glob.QuoteMeta(ext))
		}
	}
	if len(exts) == 0 {
		return nil, errors.NewConfigError("no known extensions", "extensions", errors.InvalidConfig, nil)
	}

	known, err := glob.Compile("*.{" + strings.Join(exts, ",") + "}")
	if err != nil {
		return nil, errors.NewConfigError("invalid extension list", "extensions", errors.InvalidConfig, err)
	}

	f := &nameFilter{known: known}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError("invalid exclude pattern", pattern, errors.InvalidConfig, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

func (f *nameFilter) accepts(name string) bool {
	if name == "" || !f.known.Match(strings.ToLower(name)) {
		return false
	}
	for _, g := range f.exclude {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// scanFolder lists the accepted regular files directly inside folder,
// sorted by s.
func scanFolder(folder string, f *nameFilter, s sorter.Sorter) ([]string, error) {
	dirEntries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.NewFileError("cannot read folder", folder, errors.FileAccessDenied, err)
		}
		return nil, errors.NewFileError("cannot read folder", folder, errors.InvalidPath, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !f.accepts(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Slice(names, func(i, j int) bool { return s.Less(names[i], names[j]) })
	return names, nil
}
