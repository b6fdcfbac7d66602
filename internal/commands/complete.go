package commands

import (
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"pipeshell/pkg/shelltypes"
)

// CompletePaths suggests entries of the directory named by the word's prefix. Directory
// suggestions end in "/" so completion can continue into them. Entries starting with a
// dot are only suggested when the word does.
func CompletePaths(cc shelltypes.CompletionContext, dirsOnly bool) []string {
	if cc.Fs == nil {
		return nil
	}

	dir, prefix := path.Split(cc.Word)
	lookup := dir
	if !path.IsAbs(lookup) {
		lookup = path.Join(cc.WorkingDirectory, dir)
	}
	entries, err := afero.ReadDir(cc.Fs, lookup)
	if err != nil {
		return nil
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			matches = append(matches, dir+name+"/")
		case !dirsOnly:
			matches = append(matches, dir+name)
		}
	}
	sort.Strings(matches)
	return matches
}
