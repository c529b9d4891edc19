package internal

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/zephyrtronium/contains"
)

// Version is the runtime version reported by the command-line tool.
const Version = "1"

// SourceCache stores generated source text by key.
type SourceCache interface {
	Get(key string) (string, bool, error)
	Put(key, src string) error
}

// VM is a context for executing steplang programs. It owns the metaclass
// arena, global bindings, and execution services. A VM must not be used by
// more than one goroutine at a time.
type VM struct {
	// Singletons.
	Nil   *Object
	True  *Object
	False *Object

	// Config is the VM's configuration.
	Config Config
	// Log receives misses and faults.
	Log *slog.Logger
	// Out is the writer used by print primitives.
	Out io.Writer
	// Cache, if not nil, stores generated source for compiled closures.
	Cache SourceCache

	// classes is the metaclass arena, indexed by ClassID.
	classes []*Metaclass
	// byName maps class names to handles in classes.
	byName map[string]ClassID
	// classObjects holds the class object for each metaclass.
	classObjects map[ClassID]*Object
	// kernel holds handles of built-in classes.
	kernel kernelClasses

	// globals are context-level bindings.
	globals map[string]*Object

	// classSet is the set of classes visited during a resolution walk.
	classSet contains.Set
	// classStack is the stack of classes to visit during a resolution walk.
	classStack []ClassID

	// numberCache holds memoized Number objects.
	numberCache map[float64]*Object
	// symbols interns Symbol objects.
	symbols map[string]*Object

	// depth is the current invocation depth.
	depth int
}

type kernelClasses struct {
	object, undefined, boolean, true_, false_ ClassID
	number, str, symbol, array, block, class  ClassID
}

// NewVM prepares a new VM. The logger writes to standard error at the
// configured level.
func NewVM(cfg Config) *VM {
	lvl, err := cfg.Level()
	if err != nil {
		lvl = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return NewVMWithLogger(cfg, log)
}

// NewVMWithLogger prepares a new VM that logs to log.
func NewVMWithLogger(cfg Config, log *slog.Logger) *VM {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	if cfg.Faults.Native == "" {
		cfg.Faults.Native = Absorb
	}
	if cfg.Faults.Depth == "" {
		cfg.Faults.Depth = Propagate
	}
	vm := &VM{
		Config:       cfg,
		Log:          log,
		Out:          os.Stdout,
		byName:       map[string]ClassID{},
		classObjects: map[ClassID]*Object{},
		globals:      map[string]*Object{},
		numberCache:  map[float64]*Object{},
		symbols:      map[string]*Object{},
	}

	// Object must come first so that everything else can name it as a
	// parent, and Class must exist before any class object is requested.
	vm.initObject()
	vm.initClass()
	vm.initNil()
	vm.initBoolean()
	vm.initNumber()
	vm.initString()
	vm.initArray()
	vm.initBlock()

	vm.globals["nil"] = vm.Nil
	vm.globals["true"] = vm.True
	vm.globals["false"] = vm.False
	return vm
}

// SetGlobal binds a context-level name.
func (vm *VM) SetGlobal(name string, v *Object) {
	vm.globals[normalize(name)] = v
}

// Global looks up a context-level name. Class names resolve to class objects.
func (vm *VM) Global(name string) (*Object, bool) {
	if v, ok := vm.globals[name]; ok {
		return v, true
	}
	if id, ok := vm.byName[name]; ok {
		return vm.ClassObject(vm.classes[id]), true
	}
	return nil, false
}

// NewBool returns True or False.
func (vm *VM) NewBool(b bool) *Object {
	if b {
		return vm.True
	}
	return vm.False
}

// NewNumber creates a Number object. Small integers are memoized.
func (vm *VM) NewNumber(v float64) *Object {
	if x, ok := vm.numberCache[v]; ok {
		return x
	}
	o := vm.ObjectWith(vm.kernel.number, v)
	if v == math.Trunc(v) && v >= -1 && v <= 255 {
		vm.numberCache[v] = o
	}
	return o
}

// NewString creates a String object.
func (vm *VM) NewString(s string) *Object {
	return vm.ObjectWith(vm.kernel.str, s)
}

// NewSymbol returns the interned Symbol with the given name.
func (vm *VM) NewSymbol(s string) *Object {
	if x, ok := vm.symbols[s]; ok {
		return x
	}
	o := vm.ObjectWith(vm.kernel.symbol, s)
	vm.symbols[s] = o
	return o
}

// NewArray creates an Array object holding items.
func (vm *VM) NewArray(items []*Object) *Object {
	return vm.ObjectWith(vm.kernel.array, items)
}

// Literal converts a literal value produced by the precompiler into an object.
// Arrays are always fresh.
func (vm *VM) Literal(v interface{}) *Object {
	switch x := v.(type) {
	case nil:
		return vm.Nil
	case *Object:
		return x
	case bool:
		return vm.NewBool(x)
	case float64:
		return vm.NewNumber(x)
	case int:
		return vm.NewNumber(float64(x))
	case string:
		return vm.NewString(x)
	case Symbol:
		return vm.NewSymbol(string(x))
	case []interface{}:
		items := make([]*Object, len(x))
		for i, e := range x {
			items[i] = vm.Literal(e)
		}
		return vm.NewArray(items)
	}
	panic("steplang: unknown literal type")
}

// Symbol is the precompiled value of a symbol literal.
type Symbol string
