package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LFroesch/fcmd/internal/fileops"
	"github.com/LFroesch/fcmd/internal/logger"
)

const DefaultUndoCapacity = 50

type Options struct {
	Trash           *fileops.Trash
	SmallOpMaxItems int
	SmallOpMaxBytes int64
	UndoCapacity    int
	Now             func() time.Time
}

// Engine performs file mutations and owns the undo history. All methods
// must be called from one goroutine; background work reports back through
// Poll.
type Engine struct {
	trash      *fileops.Trash
	undo       *UndoStack
	smallItems int
	smallBytes int64
	now        func() time.Time

	active *BackgroundOperation

	// itemHook runs on the worker before each item. Tests use it to hold
	// an operation in flight.
	itemHook func(i int)
}

func NewEngine(opts Options) *Engine {
	if opts.UndoCapacity <= 0 {
		opts.UndoCapacity = DefaultUndoCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		trash:      opts.Trash,
		undo:       NewUndoStack(opts.UndoCapacity),
		smallItems: opts.SmallOpMaxItems,
		smallBytes: opts.SmallOpMaxBytes,
		now:        opts.Now,
	}
}

func (e *Engine) Undo() *UndoStack { return e.undo }

func (e *Engine) Trash() *fileops.Trash { return e.trash }

// Report describes the outcome of a request. Background is set when the
// work was handed to the worker and has not finished yet.
type Report struct {
	Label      string
	Items      int
	Background bool
	ID         string
}

type step struct {
	src  string
	name string
	run  func(progress fileops.ProgressFunc) ([]Action, error)
}

type batch struct {
	kind  OpKind
	label string
	steps []step
	bytes int64
	dirs  bool
}

func (e *Engine) small(b *batch) bool {
	return len(b.steps) <= e.smallItems && !b.dirs && b.bytes <= e.smallBytes
}

// Paste runs a plan whose conflicts are all resolved.
func (e *Engine) Paste(plan *PastePlan) (Report, error) {
	if e.active != nil {
		return Report{}, ErrOperationInProgress
	}
	if err := plan.conflictError(); err != nil {
		return Report{}, err
	}

	kind := OpCopy
	if plan.Op == RegisterCut {
		kind = OpMove
	}
	b := &batch{kind: kind}
	for _, it := range plan.Items {
		if it.Resolution == ResolveSkip {
			continue
		}
		it := it
		b.steps = append(b.steps, step{
			src:  it.Src,
			name: filepath.Base(it.Src),
			run: func(progress fileops.ProgressFunc) ([]Action, error) {
				return e.pasteItem(kind, it, plan.DstDir, progress)
			},
		})
		b.bytes += it.Size
		b.dirs = b.dirs || it.IsDir
	}
	if len(b.steps) == 0 {
		return Report{Label: "Nothing to paste"}, nil
	}
	b.label = batchLabel(kind, b.steps)
	return e.dispatch(b)
}

func (e *Engine) pasteItem(kind OpKind, it PasteItem, dstDir string, progress fileops.ProgressFunc) ([]Action, error) {
	dst := it.Dst
	var actions []Action

	switch it.Resolution {
	case ResolveRename:
		dst = filepath.Join(dstDir, fileops.UniqueName(dstDir, filepath.Base(it.Src)))
	case ResolveOverwrite:
		if fileops.Exists(dst) {
			held, err := e.trash.Put(dst)
			if err != nil {
				return nil, fmt.Errorf("overwrite %s: %w", filepath.Base(dst), err)
			}
			actions = append(actions, Action{Kind: ActionRestore, From: held, To: dst})
		}
	}

	var err error
	if kind == OpMove {
		err = fileops.Move(it.Src, dst, progress)
	} else {
		err = fileops.Copy(it.Src, dst, progress)
	}
	if err != nil {
		// put back whatever the overwrite displaced
		for i := len(actions) - 1; i >= 0; i-- {
			if rbErr := apply(actions[i], e.trash); rbErr != nil {
				logger.Error("rollback of %s failed: %v", dst, rbErr)
			}
		}
		if errors.Is(err, fileops.ErrExists) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(dst), ErrConflict)
		}
		return nil, err
	}

	if kind == OpMove {
		actions = append(actions, Action{Kind: ActionRename, From: dst, To: it.Src})
	} else {
		actions = append(actions, Action{Kind: ActionDelete, Path: dst})
	}
	return actions, nil
}

// Delete moves paths into the trash as one undoable batch.
func (e *Engine) Delete(paths []string) (Report, error) {
	if e.active != nil {
		return Report{}, ErrOperationInProgress
	}
	if len(paths) == 0 {
		return Report{}, errors.New("nothing to delete")
	}
	b := &batch{kind: OpDelete}
	for _, p := range paths {
		p := p
		if fi, err := os.Lstat(p); err == nil {
			b.dirs = b.dirs || fi.IsDir()
		}
		b.steps = append(b.steps, step{
			src:  p,
			name: filepath.Base(p),
			run: func(fileops.ProgressFunc) ([]Action, error) {
				held, err := e.trash.Put(p)
				if err != nil {
					return nil, err
				}
				return []Action{{Kind: ActionRestore, From: held, To: p}}, nil
			},
		})
	}
	b.label = batchLabel(OpDelete, b.steps)
	return e.dispatch(b)
}

// DeletePermanent removes paths outright. Nothing is pushed to the undo
// stack.
func (e *Engine) DeletePermanent(paths []string) (Report, error) {
	if e.active != nil {
		return Report{}, ErrOperationInProgress
	}
	done := 0
	for _, p := range paths {
		if err := fileops.Remove(p); err != nil {
			return Report{Items: done}, fmt.Errorf("delete %s: %w", filepath.Base(p), err)
		}
		done++
	}
	logger.Info("permanently deleted %d item(s)", done)
	return Report{Label: fmt.Sprintf("Permanently deleted %s", countLabel(done, paths)), Items: done}, nil
}

// Rename renames path within its directory and returns the new path.
func (e *Engine) Rename(path, newName string) (string, error) {
	if err := ValidateName(newName); err != nil {
		return "", err
	}
	if filepath.Base(path) == newName {
		return path, nil
	}
	newPath, err := fileops.Rename(path, newName)
	if err != nil {
		if errors.Is(err, fileops.ErrExists) {
			return "", fmt.Errorf("%s: %w", newName, ErrNameConflict)
		}
		return "", err
	}
	e.push(&UndoEntry{
		Actions: []Action{{Kind: ActionRename, From: newPath, To: path}},
		Label:   fmt.Sprintf("Renamed %s to %s", filepath.Base(path), newName),
	})
	return newPath, nil
}

// Create makes an empty file or directory in dir.
func (e *Engine) Create(dir, name string, isDir bool) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	var (
		path string
		err  error
	)
	if isDir {
		path, err = fileops.CreateDir(dir, name)
	} else {
		path, err = fileops.CreateFile(dir, name)
	}
	if err != nil {
		if errors.Is(err, fileops.ErrExists) {
			return "", fmt.Errorf("%s: %w", name, ErrNameConflict)
		}
		return "", err
	}
	e.push(&UndoEntry{
		Actions: []Action{{Kind: ActionDelete, Path: path}},
		Label:   "Created " + name,
	})
	return path, nil
}

// UndoLast applies the inverse of the most recently completed operation.
// On failure the entry stays on the stack minus the actions that already
// succeeded, so a retry resumes where it stopped.
func (e *Engine) UndoLast() (*UndoEntry, error) {
	entry, ok := e.undo.Peek()
	if !ok {
		return nil, ErrNothingToUndo
	}
	for len(entry.Actions) > 0 {
		last := entry.Actions[len(entry.Actions)-1]
		if err := apply(last, e.trash); err != nil {
			logger.Warn("undo %q stopped at %s: %v", entry.Label, last, err)
			return entry, err
		}
		entry.Actions = entry.Actions[:len(entry.Actions)-1]
	}
	e.undo.Pop()
	logger.Info("undid %q", entry.Label)
	return entry, nil
}

func (e *Engine) push(entry *UndoEntry) {
	if entry.At.IsZero() {
		entry.At = e.now()
	}
	for _, old := range e.undo.Push(entry) {
		e.discard(old)
	}
}

// discard purges the trash items of an entry that can no longer be undone.
func (e *Engine) discard(entry *UndoEntry) {
	if e.trash == nil {
		return
	}
	for _, held := range entry.heldPaths() {
		if err := e.trash.Discard(held); err != nil {
			logger.Warn("could not purge %s: %v", held, err)
		}
	}
	logger.Debug("undo history dropped %q", entry.Label)
}

func (e *Engine) dispatch(b *batch) (Report, error) {
	if e.small(b) {
		entry, done, err := e.runBatch(context.Background(), b, nil)
		if len(entry.Actions) > 0 {
			e.push(entry)
		}
		rep := Report{Label: b.label, Items: done}
		if err != nil {
			return rep, fmt.Errorf("%s: %w", b.steps[min(done, len(b.steps)-1)].name, err)
		}
		return rep, nil
	}
	op := e.start(b)
	return Report{Label: b.label, Items: len(b.steps), Background: true, ID: op.ID}, nil
}

// runBatch executes steps in order and stops at the first failure or when
// ctx is cancelled between items. The returned entry holds the inverses of
// every completed step.
func (e *Engine) runBatch(ctx context.Context, b *batch, report func(Progress)) (*UndoEntry, int, error) {
	entry := &UndoEntry{Label: b.label}
	var bytesDone int64
	progress := func(n int64) {
		bytesDone += n
	}

	for i, st := range b.steps {
		if ctx.Err() != nil {
			entry.Label = fmt.Sprintf("%s (cancelled after %d)", b.label, i)
			return entry, i, ErrCancelled
		}
		if e.itemHook != nil {
			e.itemHook(i)
		}
		if report != nil {
			report(Progress{Completed: i, Total: len(b.steps), Current: st.src, BytesDone: bytesDone})
		}
		actions, err := st.run(progress)
		if err != nil {
			logger.Error("%s failed on %s: %v", b.kind, st.src, err)
			if i > 0 {
				entry.Label = fmt.Sprintf("%s (%d of %d)", b.label, i, len(b.steps))
			}
			return entry, i, err
		}
		entry.Actions = append(entry.Actions, actions...)
	}
	if report != nil {
		report(Progress{Completed: len(b.steps), Total: len(b.steps), BytesDone: bytesDone})
	}
	return entry, len(b.steps), nil
}

func batchLabel(kind OpKind, steps []step) string {
	verb := map[OpKind]string{OpCopy: "Pasted", OpMove: "Moved", OpDelete: "Deleted"}[kind]
	if len(steps) == 1 {
		return verb + " " + steps[0].name
	}
	return fmt.Sprintf("%s %d items", verb, len(steps))
}

func countLabel(n int, paths []string) string {
	if n == 1 && len(paths) == 1 {
		return filepath.Base(paths[0])
	}
	return fmt.Sprintf("%d items", n)
}
