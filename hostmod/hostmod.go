package hostmod

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/mpi-vid/errors"
	"github.com/wippyai/mpi-vid/mpi"
)

// ModuleName is the import module name guests link against.
const ModuleName = "mpi_vid"

// Operation suffixes. The export for category c and operation op is
// c.Short() + "_" + op, e.g. "comm_create".
const (
	OpCreate    = "create"
	OpRemove    = "remove"
	OpUpdate    = "update"
	OpToReal    = "to_real"
	OpToVirtual = "to_virtual"
)

var (
	i64    = []api.ValueType{api.ValueTypeI64}
	i64i64 = []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger for translation failures.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.log = l }
}

// Host exposes mpi.Handles to WebAssembly guests as a host module.
// Every function takes and returns i64 handles.
type Host struct {
	handles *mpi.Handles
	log     *zap.Logger
}

// New creates a host for handles.
func New(handles *mpi.Handles, opts ...Option) *Host {
	h := &Host{handles: handles}
	for _, fn := range opts {
		fn(h)
	}
	if h.log == nil {
		h.log = Logger()
	}
	return h
}

type hostFunc struct {
	fn      api.GoModuleFunc
	params  []api.ValueType
	results []api.ValueType
	name    string
}

// Instantiate registers the host module in rt. It must run before any
// guest importing ModuleName is instantiated.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(ModuleName)

	for _, c := range mpi.Categories {
		acc, err := h.handles.Accessor(c)
		if err != nil {
			return nil, errors.Registration(ModuleName, c.Short(), err)
		}
		for _, f := range h.funcs(acc) {
			builder.NewFunctionBuilder().
				WithGoModuleFunction(f.fn, f.params, f.results).
				WithName(c.Short() + "_" + f.name).
				Export(c.Short() + "_" + f.name)
		}
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(ModuleName, "*", err)
	}
	h.log.Debug("host module instantiated",
		zap.String("module", ModuleName),
		zap.Int("functions", len(FunctionNames())))
	return mod, nil
}

func (h *Host) funcs(acc mpi.Accessor) []hostFunc {
	return []hostFunc{
		{
			name: OpCreate, params: i64, results: i64,
			fn: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = acc.OnCreate(stack[0])
			},
		},
		{
			name: OpRemove, params: i64, results: i64,
			fn: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = acc.OnRemove(stack[0])
			},
		},
		{
			name: OpUpdate, params: i64i64, results: i64,
			fn: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = acc.UpdateMapping(stack[0], stack[1])
			},
		},
		{
			name: OpToReal, params: i64, results: i64,
			fn: func(_ context.Context, _ api.Module, stack []uint64) {
				real, ok := acc.TryVirtualToReal(stack[0])
				if !ok {
					h.log.Error("guest translated unknown virtual id",
						zap.String("category", acc.Name()),
						zap.Uint64("virtual", stack[0]))
				}
				stack[0] = real
			},
		},
		{
			name: OpToVirtual, params: i64, results: i64,
			fn: func(_ context.Context, _ api.Module, stack []uint64) {
				virt, ok := acc.TryRealToVirtual(stack[0])
				if !ok {
					h.log.Error("guest translated unknown real id",
						zap.String("category", acc.Name()),
						zap.Uint64("real", stack[0]))
				}
				stack[0] = virt
			},
		},
	}
}

// FunctionNames lists every export of the host module, sorted.
func FunctionNames() []string {
	ops := []string{OpCreate, OpRemove, OpUpdate, OpToReal, OpToVirtual}
	names := make([]string, 0, len(mpi.Categories)*len(ops))
	for _, c := range mpi.Categories {
		for _, op := range ops {
			names = append(names, c.Short()+"_"+op)
		}
	}
	sort.Strings(names)
	return names
}
