package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LFroesch/fcmd/internal/fileops"
)

type Resolution int

const (
	ResolveNone Resolution = iota
	ResolveSkip
	ResolveOverwrite
	ResolveRename
)

func (r Resolution) String() string {
	switch r {
	case ResolveSkip:
		return "skip"
	case ResolveOverwrite:
		return "overwrite"
	case ResolveRename:
		return "rename"
	}
	return "none"
}

// ParseResolution maps a prompt answer to a Resolution.
func ParseResolution(s string) (Resolution, bool) {
	switch s {
	case "skip":
		return ResolveSkip, true
	case "overwrite":
		return ResolveOverwrite, true
	case "rename":
		return ResolveRename, true
	}
	return ResolveNone, false
}

type PasteItem struct {
	Src        string
	Dst        string
	IsDir      bool
	Size       int64
	Conflict   bool
	Resolution Resolution
}

// PastePlan is a paste with its destinations worked out. Conflicting items
// must each carry a Resolution before the plan can run.
type PastePlan struct {
	Op     RegisterOp
	DstDir string
	Items  []PasteItem
}

// Pending returns the indices of conflicts still waiting for a decision.
func (p *PastePlan) Pending() []int {
	var out []int
	for i, it := range p.Items {
		if it.Conflict && it.Resolution == ResolveNone {
			out = append(out, i)
		}
	}
	return out
}

func (p *PastePlan) NextConflict() (int, bool) {
	for i, it := range p.Items {
		if it.Conflict && it.Resolution == ResolveNone {
			return i, true
		}
	}
	return -1, false
}

func (p *PastePlan) Resolve(i int, r Resolution) {
	if i >= 0 && i < len(p.Items) {
		p.Items[i].Resolution = r
	}
}

// ResolveRemaining applies r to every undecided conflict.
func (p *PastePlan) ResolveRemaining(r Resolution) {
	for _, i := range p.Pending() {
		p.Items[i].Resolution = r
	}
}

func (p *PastePlan) Ready() bool {
	return len(p.Pending()) == 0
}

func (p *PastePlan) conflictError() error {
	pending := p.Pending()
	if len(pending) == 0 {
		return nil
	}
	ce := &ConflictError{}
	for _, i := range pending {
		ce.Paths = append(ce.Paths, p.Items[i].Dst)
	}
	return ce
}

// PlanPaste resolves destinations for the register's paths in dstDir.
// With overwrite set every conflict is pre-resolved as an overwrite.
func PlanPaste(reg Register, dstDir string, overwrite bool) (*PastePlan, error) {
	if reg.Empty() {
		return nil, ErrEmptyRegister
	}
	info, err := os.Stat(dstDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dstDir)
	}

	plan := &PastePlan{Op: reg.Op, DstDir: dstDir}
	for _, src := range reg.Paths {
		fi, err := os.Lstat(src)
		if err != nil {
			return nil, fmt.Errorf("%s: source no longer exists", filepath.Base(src))
		}
		if fi.IsDir() && within(dstDir, src) {
			return nil, fmt.Errorf("cannot paste %s into itself", filepath.Base(src))
		}

		item := PasteItem{
			Src:   src,
			Dst:   filepath.Join(dstDir, filepath.Base(src)),
			IsDir: fi.IsDir(),
			Size:  fi.Size(),
		}
		if fileops.Exists(item.Dst) {
			item.Conflict = true
			switch {
			case item.Dst == src && reg.Op == RegisterCut:
				item.Resolution = ResolveSkip
			case item.Dst == src:
				item.Resolution = ResolveRename
			case overwrite:
				item.Resolution = ResolveOverwrite
			}
		}
		plan.Items = append(plan.Items, item)
	}
	return plan, nil
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
