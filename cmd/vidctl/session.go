package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/mpi-vid/errors"
	"github.com/wippyai/mpi-vid/mpi"
	"github.com/wippyai/mpi-vid/vid"
)

const defaultRestartOffset = 1000

// maxEvents bounds the event history kept for the TUI.
const maxEvents = 64

const helpText = `commands:
  create <cat> <real>          register a real id, print its virtual id
  remove <cat> <virt>          release a virtual id, print its real id
  update <cat> <virt> <real>   rebind a virtual id to a new real id
  real <cat> <virt>            translate virtual -> real
  virt <cat> <real>            translate real -> virtual
  restart [offset]             simulate a restart: every real id += offset
  show [cat]                   list live mappings
  help                         this text
categories: comm, group, type, op`

// session executes vidctl commands against one set of registries.
type session struct {
	handles *mpi.Handles
	unwatch []func()

	mu     sync.Mutex
	events []string
}

func newSession(handles *mpi.Handles) *session {
	s := &session{handles: handles}
	s.unwatch = []func(){
		watch(handles.Comms(), s.record),
		watch(handles.Groups(), s.record),
		watch(handles.Types(), s.record),
		watch(handles.Ops(), s.record),
	}
	return s
}

func watch[T ~uint64](r *vid.Registry[T], sink func(string)) func() {
	return r.Subscribe(vid.ObserverFunc[T](func(e vid.Event[T]) {
		line := fmt.Sprintf("%s %s v=%d real=%d", e.Category, e.Type, e.Virtual, e.Real)
		if e.Type == vid.EventRemapped {
			line += fmt.Sprintf(" (was %d)", e.OldReal)
		}
		sink(line)
	}))
}

func (s *session) record(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, line)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// Events returns the most recent mapping events, oldest first.
func (s *session) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *session) Close() {
	for _, fn := range s.unwatch {
		fn()
	}
	s.unwatch = nil
}

// RunScript executes r line by line. Blank lines and lines starting with
// '#' are skipped. The first failing command stops the script.
func (s *session) RunScript(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := s.Exec(ctx, line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
	return sc.Err()
}

// Exec runs one command and returns its output.
func (s *session) Exec(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		return helpText, nil
	case "show", "ls":
		return s.show(args)
	case "restart":
		return s.restart(ctx, args)
	case "create", "remove", "update", "real", "virt":
	default:
		return "", errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("unknown command %q", cmd))
	}

	want := 2
	if cmd == "update" {
		want = 3
	}
	if len(args) != want {
		return "", errors.InvalidInput(errors.PhaseParse,
			fmt.Sprintf("%s expects %d arguments, got %d", cmd, want, len(args)))
	}

	cat, err := mpi.ParseCategory(args[0])
	if err != nil {
		return "", err
	}
	acc, err := s.handles.Accessor(cat)
	if err != nil {
		return "", err
	}
	ids, err := parseIDs(args[1:])
	if err != nil {
		return "", err
	}

	switch cmd {
	case "create":
		if ids[0] == acc.Null() {
			return "", errors.NullHandle(errors.PhaseCreate, acc.Name())
		}
		virt := acc.OnCreate(ids[0])
		if virt == acc.Null() {
			return "", errors.New(errors.PhaseCreate, errors.KindExhausted).
				Category(acc.Name()).
				Value(ids[0]).
				Detail("no virtual id available").
				Build()
		}
		return fmt.Sprintf("%s real %d -> virtual %d", acc.Name(), ids[0], virt), nil

	case "remove":
		if ids[0] == acc.Null() {
			return "", errors.NullHandle(errors.PhaseRemove, acc.Name())
		}
		real := acc.OnRemove(ids[0])
		if real == acc.Null() {
			return "", errors.UnknownVirtual(errors.PhaseRemove, acc.Name(), ids[0])
		}
		return fmt.Sprintf("%s virtual %d removed (real %d)", acc.Name(), ids[0], real), nil

	case "update":
		if ids[0] == acc.Null() || ids[1] == acc.Null() {
			return "", errors.NullHandle(errors.PhaseUpdate, acc.Name())
		}
		old, ok := acc.TryVirtualToReal(ids[0])
		if !ok {
			return "", errors.UnknownVirtual(errors.PhaseUpdate, acc.Name(), ids[0])
		}
		acc.UpdateMapping(ids[0], ids[1])
		return fmt.Sprintf("%s virtual %d: real %d -> %d", acc.Name(), ids[0], old, ids[1]), nil

	case "real":
		real, ok := acc.TryVirtualToReal(ids[0])
		if !ok {
			return "", errors.UnknownVirtual(errors.PhaseLookup, acc.Name(), ids[0])
		}
		return strconv.FormatUint(real, 10), nil

	default: // virt
		virt, ok := acc.TryRealToVirtual(ids[0])
		if !ok {
			return "", errors.UnknownReal(errors.PhaseLookup, acc.Name(), ids[0])
		}
		return strconv.FormatUint(virt, 10), nil
	}
}

func (s *session) show(args []string) (string, error) {
	cats := mpi.Categories
	if len(args) > 1 {
		return "", errors.InvalidInput(errors.PhaseParse, "show takes at most one category")
	}
	if len(args) == 1 {
		c, err := mpi.ParseCategory(args[0])
		if err != nil {
			return "", err
		}
		cats = []mpi.Category{c}
	}

	var b strings.Builder
	for _, rows := range s.Rows(cats) {
		fmt.Fprintf(&b, "%-9s %10s -> %s\n", rows[0], rows[1], rows[2])
	}
	if b.Len() == 0 {
		return "no live mappings", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Rows returns (category, virtual, real) triples for the live mappings of cats.
func (s *session) Rows(cats []mpi.Category) [][]string {
	var rows [][]string
	for _, c := range cats {
		acc, err := s.handles.Accessor(c)
		if err != nil {
			continue
		}
		for _, m := range acc.Snapshot() {
			rows = append(rows, []string{
				acc.Name(),
				strconv.FormatUint(m.Virtual, 10),
				strconv.FormatUint(m.Real, 10),
			})
		}
	}
	return rows
}

func (s *session) restart(ctx context.Context, args []string) (string, error) {
	offset := uint64(defaultRestartOffset)
	switch len(args) {
	case 0:
	case 1:
		v, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			return "", errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "restart offset")
		}
		offset = v
	default:
		return "", errors.InvalidInput(errors.PhaseParse, "restart takes at most one offset")
	}

	err := s.handles.Restore(ctx, mpi.Remap{
		Comm:  shift[mpi.Comm](offset),
		Group: shift[mpi.Group](offset),
		Type:  shift[mpi.Datatype](offset),
		Op:    shift[mpi.Op](offset),
	})
	if err != nil {
		return "", err
	}

	total := 0
	for _, n := range s.handles.Counts() {
		total += n
	}
	return fmt.Sprintf("restarted: %d mappings rebound (offset %d)", total, offset), nil
}

func shift[T ~uint64](offset uint64) vid.RemapFunc[T] {
	return func(_, old T) T { return old + T(offset) }
}

func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 64)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, fmt.Sprintf("id %q", a))
		}
		ids[i] = v
	}
	return ids, nil
}
