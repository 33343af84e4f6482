package ops

type RegisterOp int

const (
	RegisterCopy RegisterOp = iota
	RegisterCut
)

func (o RegisterOp) String() string {
	if o == RegisterCut {
		return "cut"
	}
	return "yank"
}

// Register is the pending yank or cut. Paste reads it and leaves it as is.
type Register struct {
	Op     RegisterOp
	Paths  []string
	Origin int
}

func NewRegister(op RegisterOp, paths []string, origin int) Register {
	return Register{Op: op, Paths: append([]string(nil), paths...), Origin: origin}
}

func (r Register) Empty() bool {
	return len(r.Paths) == 0
}
