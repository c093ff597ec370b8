package ownership

import "github.com/gul-lang/gul/compiler/ast"

type state int

const (
	live state = iota
	moved
)

// binding tracks one named value through the abstract interpretation.
// copyLike bindings are exempt from the consume-on-every-path rule but
// still transition to moved when used in a move position.
type binding struct {
	name     string
	state    state
	isVar    bool // var/global/by-ref: assignable, never movable
	copyLike bool
	exempt   bool // untyped parameters: no consume-at-exit obligation
	typ      ast.Type
	tainted  bool // already diagnosed; suppress follow-on reports
	depth    int // scope depth at declaration
	declPos  int
	declEnd  int
	movePos  int // source position of the move when state == moved
}

type scope struct {
	parent   *scope
	depth    int
	bindings map[string]*binding
	order    []*binding
}

func newScope(parent *scope) *scope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &scope{parent: parent, depth: depth, bindings: make(map[string]*binding)}
}

func (s *scope) define(b *binding) {
	b.depth = s.depth
	s.bindings[b.name] = b
	s.order = append(s.order, b)
}

func (s *scope) lookup(name string) *binding {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.bindings[name]; ok {
			return b
		}
	}
	return nil
}

// snapshot captures the states of every binding visible from s so a
// control-flow branch can be analyzed and rolled back.
type snapshot map[*binding]struct {
	state   state
	movePos int
}

func (s *scope) snapshot() snapshot {
	snap := make(snapshot)
	for sc := s; sc != nil; sc = sc.parent {
		for _, b := range sc.bindings {
			if _, ok := snap[b]; !ok {
				snap[b] = struct {
					state   state
					movePos int
				}{b.state, b.movePos}
			}
		}
	}
	return snap
}

func (s snapshot) restore() {
	for b, st := range s {
		b.state = st.state
		b.movePos = st.movePos
	}
}

// join folds a previously captured branch outcome into the current
// states: a binding is moved after the join if it is moved on either
// side (pointwise moved-wins join).
func (s snapshot) join() {
	for b, st := range s {
		if st.state == moved && b.state != moved {
			b.state = moved
			b.movePos = st.movePos
		}
	}
}
