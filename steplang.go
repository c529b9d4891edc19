package steplang

import (
	"log/slog"

	"github.com/zephyrtronium/steplang/internal"
)

type (
	// VM is a context for executing steplang programs.
	VM = internal.VM
	// Object is a steplang object.
	Object = internal.Object
	// Scope is a chain of name bindings.
	Scope = internal.Scope
	// Closure is a named unit of executable code.
	Closure = internal.Closure
	// ClosureState is the progress of a closure from source text to code.
	ClosureState = internal.ClosureState
	// Metaclass describes a class.
	Metaclass = internal.Metaclass
	// Holder is a method or attribute declared by a metaclass.
	Holder = internal.Holder
	// Fn is a native method.
	Fn = internal.Fn
	// Binding is the result of resolving a name on an object.
	Binding = internal.Binding
	// Step is a node of a precompiled tree.
	Step = internal.Step
	// Tree is the parse tree shape consumed by the precompiler.
	Tree = internal.Tree
	// Config configures a VM.
	Config = internal.Config
	// Policy says what to do with a fault.
	Policy = internal.Policy
	// Error is the error type for all steplang failures.
	Error = internal.Error
	// Kind classifies errors.
	Kind = internal.Kind
	// SourceCache stores generated source text by key.
	SourceCache = internal.SourceCache
)

// Closure states.
const (
	Empty       = internal.Empty
	Interpreted = internal.Interpreted
	Compiled    = internal.Compiled
)

// Error kinds.
const (
	SyntaxFailure     = internal.SyntaxFailure
	ResolutionMiss    = internal.ResolutionMiss
	GenerationFailure = internal.GenerationFailure
	NativeFault       = internal.NativeFault
	DepthExceeded     = internal.DepthExceeded
)

// Fault policies.
const (
	Absorb    = internal.Absorb
	Propagate = internal.Propagate
)

// Version is the runtime version.
const Version = internal.Version

// NewVM creates a VM that logs to standard error.
func NewVM(cfg Config) *VM {
	return internal.NewVM(cfg)
}

// NewVMWithLogger creates a VM that logs to log.
func NewVMWithLogger(cfg Config, log *slog.Logger) *VM {
	return internal.NewVMWithLogger(cfg, log)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// ParseConfig parses a YAML configuration over the defaults.
func ParseConfig(b []byte) (Config, error) {
	return internal.ParseConfig(b)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return internal.LoadConfig(path)
}

// Parse parses source text into a tree.
func Parse(label, src string) (Tree, error) {
	n, err := internal.Parse(label, src)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Precompile converts a parse tree into a step tree.
func Precompile(t Tree) (*Step, error) {
	return internal.Precompile(t)
}

// Platform describes the host operating system and its version.
func Platform() string {
	return internal.Platform()
}

// IsKind reports whether err is an Error of kind k.
func IsKind(err error, k Kind) bool {
	return internal.IsKind(err, k)
}

// IsIncomplete reports whether err is a syntax failure caused by source text
// ending early, so that more input could complete it.
func IsIncomplete(err error) bool {
	return internal.IsIncomplete(err)
}
