package panel

import (
	"fmt"
	"sort"
	"strings"
)

type SortMode int

const (
	SortName SortMode = iota
	SortSize
	SortModified
	SortCreated
	SortExtension
)

var sortNames = map[SortMode]string{
	SortName:      "name",
	SortSize:      "size",
	SortModified:  "modified",
	SortCreated:   "created",
	SortExtension: "extension",
}

func (s SortMode) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return "name"
}

// ParseSortMode accepts full names and the short forms used on the command line.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(s) {
	case "name", "n":
		return SortName, nil
	case "size", "s":
		return SortSize, nil
	case "modified", "mod", "m", "date", "d":
		return SortModified, nil
	case "created", "cre", "c":
		return SortCreated, nil
	case "extension", "ext", "e", "type":
		return SortExtension, nil
	}
	return SortName, fmt.Errorf("unknown sort mode %q (name, size, mod, cre, ext)", s)
}

// Sort returns a sorted copy of entries. Directories always come first and
// ties are broken by name ascending; reverse flips only the primary key.
func Sort(entries []Entry, mode SortMode, reverse bool) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		if c := compare(a, b, mode); c != 0 {
			if reverse {
				return c > 0
			}
			return c < 0
		}
		return nameLess(a, b)
	})
	return out
}

// compare orders by the primary key, ascending. Reverse flips it.
func compare(a, b Entry, mode SortMode) int {
	switch mode {
	case SortSize:
		return cmpInt64(a.Size, b.Size)
	case SortModified:
		return a.ModTime.Compare(b.ModTime)
	case SortCreated:
		return a.Created.Compare(b.Created)
	case SortExtension:
		return strings.Compare(a.Ext, b.Ext)
	default:
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		return strings.Compare(la, lb)
	}
}

func nameLess(a, b Entry) bool {
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	return a.Name < b.Name
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
