package vm

import (
	"math"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

func (vm *VM) execArith(op bytecode.Op) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("attempt to perform arithmetic on a %s value", pickNonNumber(a, b).TypeName())
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case bytecode.OpAdd:
		vm.push(value.Number(x + y))
	case bytecode.OpSub:
		vm.push(value.Number(x - y))
	case bytecode.OpMul:
		vm.push(value.Number(x * y))
	case bytecode.OpDiv:
		if y == 0 {
			return vm.runtimeError("Attempt to divide by 0")
		}
		vm.push(value.Number(x / y))
	case bytecode.OpMod:
		if y == 0 {
			return vm.runtimeError("Attempt to divide by 0")
		}
		vm.push(value.Number(math.Mod(x, y)))
	}
	return nil
}

func pickNonNumber(a, b value.Value) value.Value {
	if !a.IsNumber() {
		return a
	}
	return b
}

func (vm *VM) execBitwise(op bytecode.Op) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("attempt to perform bitwise operation on a %s value", pickNonNumber(a, b).TypeName())
	}
	x := int64(a.AsNumber())
	y := int64(b.AsNumber())
	var r int64
	switch op {
	case bytecode.OpLShift:
		r = x << uint64(y)
	case bytecode.OpRShift:
		r = x >> uint64(y)
	case bytecode.OpBAnd:
		r = x & y
	case bytecode.OpBOr:
		r = x | y
	}
	vm.push(value.Number(float64(r)))
	return nil
}

func (vm *VM) execCompare(op bytecode.Op) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("attempt to compare a %s value", pickNonNumber(a, b).TypeName())
	}
	x, y := a.AsNumber(), b.AsNumber()
	var r bool
	switch op {
	case bytecode.OpGt:
		r = x > y
	case bytecode.OpLt:
		r = x < y
	case bytecode.OpGte:
		r = x >= y
	case bytecode.OpLte:
		r = x <= y
	}
	vm.push(value.Bool(r))
	return nil
}

// execConcat implements the `..` operator: both operands must be
// strings; the result is produced by building a temporary buffer and
// funneling it through the interner (component C), so repeated
// concatenation of the same text reuses a single String object.
func (vm *VM) execConcat() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	sa, aok := asString(a)
	sb, bok := asString(b)
	if !aok || !bok {
		bad := a
		if aok {
			bad = b
		}
		return vm.runtimeError("attempt to concatenate a %s value", bad.TypeName())
	}
	buf := make([]byte, 0, sa.Len()+sb.Len())
	buf = append(buf, sa.Bytes...)
	buf = append(buf, sb.Bytes...)
	result := vm.internBytes(buf)
	vm.push(value.FromObject(result))
	return nil
}

func asString(v value.Value) (*objects.String, bool) {
	if !v.IsObjectKind(value.KindString) {
		return nil, false
	}
	return v.AsObject().(*objects.String), true
}

// internBytes intern()s a buffer that's already been assembled: probe
// first, only allocate (and copy) on a miss.
func (vm *VM) internBytes(buf []byte) *objects.String {
	return vm.interner.Intern(buf, func(b []byte, hash uint32) *objects.String {
		owned := make([]byte, len(b))
		copy(owned, b)
		return vm.NewStringBytes(owned, hash)
	})
}

// execMakeFunc builds a Closure over constants[K], resolving each
// upvalue descriptor: is_local=1 captures the enclosing frame's stack
// slot, is_local=0 reuses the enclosing closure's own upvalue at that
// position — the standard Lua-style upvalue scheme.
func (vm *VM) execMakeFunc(frame *CallFrame) *RuntimeError {
	block := frame.Closure.Proto.Block
	k := block.Code[frame.IP]
	frame.IP++
	protoVal := block.Constants[k]
	proto, ok := protoVal.AsObject().(*objects.CodeBlock)
	if !ok {
		return vm.runtimeError("make_func: constant is not a codeblock")
	}

	u := int(block.Code[frame.IP])
	frame.IP++

	vm.collectIfNeeded()
	closure := objects.NewClosure(proto)
	vm.Protect(closure)
	vm.gc.Register(closure)

	for i := 0; i < u; i++ {
		isLocal := block.Code[frame.IP]
		idx := block.Code[frame.IP+1]
		frame.IP += 2
		if isLocal == 1 {
			closure.Upvals[i] = vm.captureUpvalue(&vm.stack[frame.Base+int(idx)])
		} else {
			closure.Upvals[i] = frame.Closure.Upvals[idx]
		}
	}
	vm.Unprotect(closure)

	vm.push(value.FromObject(closure))
	return nil
}
