package internal

import (
	"fmt"
	"runtime/debug"
)

// propagation carries a fault that the fault policy says should abort the
// outermost Closure call. It travels by panic and is recovered by Call.
type propagation struct {
	err *Error
}

// fault applies the configured policy for err's kind. Under Absorb it logs and
// returns nil; under Propagate it does not return.
func (vm *VM) fault(err *Error) *Object {
	policy := vm.Config.Faults.Native
	if err.Kind == DepthExceeded {
		policy = vm.Config.Faults.Depth
	}
	if policy == Propagate {
		panic(propagation{err})
	}
	attrs := []any{"kind", err.Kind.String(), "err", err.Error()}
	if err.Trace != "" {
		attrs = append(attrs, "trace", err.Trace)
	}
	vm.Log.Error("fault absorbed", attrs...)
	return vm.Nil
}

// miss logs a resolution miss. Misses are never fatal.
func (vm *VM) miss(o *Object, name string) *Object {
	vm.Log.Debug("does not understand", "class", vm.classes[o.class].Name, "selector", name)
	return vm.Nil
}

// enter records one more level of invocation depth. It returns false if the
// limit is exceeded and the fault was absorbed, in which case the caller must
// not call leave.
func (vm *VM) enter(what string) bool {
	if vm.depth >= vm.Config.MaxDepth {
		vm.fault(&Error{
			Kind: DepthExceeded,
			Msg:  fmt.Sprintf("invoking %s: depth %d exceeds limit", what, vm.depth+1),
		})
		return false
	}
	vm.depth++
	return true
}

func (vm *VM) leave() {
	vm.depth--
}

// invoke calls a callable binding on self.
func (vm *VM) invoke(b Binding, self *Object, sel string, args []*Object) *Object {
	h := b.Holder
	// Methods found through a masquerade still run with the real receiver.
	self = self.Real()
	if h.Fn != nil {
		return vm.callNative(h.Fn, self, sel, args)
	}
	if !vm.enter(sel) {
		return vm.Nil
	}
	defer vm.leave()
	s := vm.NewScope(h.env, self)
	s.owner = h.owner
	return h.Method.run(s, args)
}

// callNative calls a native holder, converting errors and panics into native
// faults.
func (vm *VM) callNative(fn Fn, self *Object, sel string, args []*Object) (r *Object) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(propagation); ok {
			panic(p)
		}
		r = vm.fault(&Error{
			Kind:  NativeFault,
			Msg:   fmt.Sprintf("%s %s panicked", vm.classes[self.class].Name, sel),
			Err:   fmt.Errorf("%v", p),
			Trace: string(debug.Stack()),
		})
	}()
	r, err := fn(vm, self, args...)
	if err != nil {
		return vm.fault(&Error{
			Kind: NativeFault,
			Msg:  fmt.Sprintf("%s %s", vm.classes[self.class].Name, sel),
			Err:  err,
		})
	}
	if r == nil {
		r = vm.Nil
	}
	return r
}
