package actor

import (
	"reflect"
	"time"
)

// patKind distinguishes the two element-pattern shapes a Clause can carry.
type patKind int

const (
	patBind patKind = iota // bind-by-type: accepts any value assignable to typ
	patLit                 // literal: accepts only a value deep-equal to literal
)

// ElemPattern matches (and, for bind patterns, captures) a single positional
// element of a tuple Message. It mirrors CAF's on<int>() (bind-by-type) and
// on(atom("put"), whom) (fixed literal) pattern forms.
type ElemPattern struct {
	kind    patKind
	typ     reflect.Type
	literal any
}

// Bind matches any value assignable to T and captures it as a handler
// argument, CAF's "typed wildcard" (on<T>()) or arg_match idiom.
func Bind[T any]() ElemPattern {
	var zero T
	return ElemPattern{kind: patBind, typ: reflect.TypeOf(&zero).Elem()}
}

// Lit matches only an element deep-equal to v and does not capture anything.
func Lit(v any) ElemPattern {
	return ElemPattern{kind: patLit, literal: v}
}

// AtomLit matches only the given Atom, e.g. AtomLit(atomTake) for CAF's
// on(atom("take"), arg_match).
func AtomLit(a Atom) ElemPattern {
	return Lit(a)
}

func (p ElemPattern) accepts(elem any) (any, bool) {
	switch p.kind {
	case patLit:
		if reflect.DeepEqual(elem, p.literal) {
			return nil, true
		}
		return nil, false
	case patBind:
		if elem == nil {
			return nil, p.typ != nil && p.typ.Kind() == reflect.Interface
		}
		et := reflect.TypeOf(elem)
		if !et.AssignableTo(p.typ) {
			return nil, false
		}
		return elem, true
	default:
		return nil, false
	}
}

// Clause is one arm of a Behavior: a sequence of element patterns tested
// against a message's tuple in order, plus the handler to run when every
// pattern accepts its element. Clauses are tried top-to-bottom; the first
// whose arity and patterns all accept wins, matching CAF's on<...>() chain
// priority.
type Clause struct {
	patterns []ElemPattern
	handler  func(*Self, []any)
	isOthers bool
}

// NewClause builds a low-level Clause from an explicit pattern list. This is
// the primitive every sugar constructor (On, OnAtom, OnAtomAnd, ...) below
// is built from; reach for it directly when a clause needs a shape none of
// the sugar forms cover (three-or-more bound elements, mixed literal/bind
// sequences of arbitrary length, and so on).
func NewClause(patterns []ElemPattern, handler func(*Self, []any)) Clause {
	return Clause{patterns: patterns, handler: handler}
}

// On matches any single-element message whose element is assignable to T,
// CAF's on<T>(). The bound value is passed directly to fn.
func On[T any](fn func(*Self, T)) Clause {
	return NewClause([]ElemPattern{Bind[T]()}, func(s *Self, args []any) {
		fn(s, args[0].(T))
	})
}

// OnAtom matches a single-element message carrying exactly the atom a.
func OnAtom(a Atom, fn func(*Self)) Clause {
	return NewClause([]ElemPattern{AtomLit(a)}, func(s *Self, _ []any) {
		fn(s)
	})
}

// OnAtomAnd matches a two-element message whose first element is exactly
// the atom a and whose second element is assignable to T, binding it - CAF's
// on(atom("take"), arg_match) >> [=](actor_ptr whom).
func OnAtomAnd[T any](a Atom, fn func(*Self, T)) Clause {
	return NewClause([]ElemPattern{AtomLit(a), Bind[T]()}, func(s *Self, args []any) {
		fn(s, args[0].(T))
	})
}

// OnLiteral matches a single-element message equal to v.
func OnLiteral(v any, fn func(*Self)) Clause {
	return NewClause([]ElemPattern{Lit(v)}, func(s *Self, _ []any) {
		fn(s)
	})
}

// OnPair matches a two-element message whose elements are deep-equal to v1
// and v2 respectively, e.g. CAF's on(atom("put"), whom) where whom was
// captured by value when the clause was built.
func OnPair(v1, v2 any, fn func(*Self)) Clause {
	return NewClause([]ElemPattern{Lit(v1), Lit(v2)}, func(s *Self, _ []any) {
		fn(s)
	})
}

// OnOthers matches any message regardless of shape. It must be the last
// clause in a Behavior - clauses after it are unreachable - and it never
// binds arguments; use Self.LastDequeued to inspect the full message.
func OnOthers(fn func(*Self)) Clause {
	return Clause{isOthers: true, handler: func(s *Self, _ []any) {
		fn(s)
	}}
}

func (c Clause) matches(msg Message) ([]any, bool) {
	if c.isOthers {
		return nil, true
	}
	if len(c.patterns) != len(msg.Elems) {
		return nil, false
	}
	bound := make([]any, 0, len(c.patterns))
	for i, p := range c.patterns {
		v, ok := p.accepts(msg.Elems[i])
		if !ok {
			return nil, false
		}
		if p.kind == patBind {
			bound = append(bound, v)
		}
	}
	return bound, true
}

// TimeoutClause fires when no message has arrived within After of the
// behavior becoming active - CAF's after(duration) >> [=]{...}.
type TimeoutClause struct {
	after   time.Duration
	handler func(*Self)
}

// After builds a TimeoutClause for use with Behavior.WithTimeout.
func After(d time.Duration, fn func(*Self)) TimeoutClause {
	return TimeoutClause{after: d, handler: fn}
}

// Behavior is an ordered set of clauses plus an optional receive timeout -
// the unit become/unbecome push and pop on an actor's behavior stack.
type Behavior struct {
	name string

	clauses []Clause
	timeout *TimeoutClause

	// reqFilter, when non-nil, restricts this Behavior to messages whose
	// ReqID equals *reqFilter. Used internally by Await/HandleResponse to
	// build the one-shot continuation behaviors the sync_send protocol
	// replays through the ordinary skip-buffer machinery: a message with
	// a different ReqID simply fails to match this Behavior and is
	// skipped like any other non-matching message, preserving relative
	// order for later plain receives.
	reqFilter *uuidFilter

	// oneShot behaviors are popped off the stack as soon as any of their
	// clauses fires, returning control to whatever behavior was active
	// beneath them. Used for sync_send continuations (Await).
	oneShot bool
}

// NewBehavior builds a named Behavior from an ordered clause list. name is
// used only for logging and the demo's "current state" scenarios; it has no
// effect on matching.
func NewBehavior(name string, clauses ...Clause) *Behavior {
	return &Behavior{name: name, clauses: clauses}
}

// WithTimeout returns a copy of b with the given receive-timeout clause
// attached, CAF's do_receive(...).until(...) paired with an after(...) arm.
func (b *Behavior) WithTimeout(d time.Duration, fn func(*Self)) *Behavior {
	nb := *b
	nb.timeout = &TimeoutClause{after: d, handler: fn}
	return &nb
}

// Name returns the Behavior's debug name.
func (b *Behavior) Name() string {
	if b == nil {
		return "<nil>"
	}
	return b.name
}

// dispatch tries every clause top-to-bottom and runs the first match. It
// reports whether any clause matched.
func (b *Behavior) dispatch(self *Self, msg Message) bool {
	if b.reqFilter != nil && !b.reqFilter.accepts(msg.ReqID) {
		return false
	}
	for _, c := range b.clauses {
		bound, ok := c.matches(msg)
		if !ok {
			continue
		}
		c.handler(self, bound)
		return true
	}
	return false
}
