package vm

import (
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// Run wraps proto in a Closure whose sole upvalue is bound to the
// globals table (the compiler treats every top-level function's
// upvalue 0 as this captured environment, threading it down through
// nested closures the way Lua 5.2+ threads _ENV), pushes it as frame
// 0's callee, and executes until the top-level call returns or a
// runtime error aborts it.
func (vm *VM) Run(proto *objects.CodeBlock) (result value.Value, err error) {
	cl := vm.NewClosure(proto)
	if len(cl.Upvals) > 0 {
		envSlot := value.FromObject(vm.Globals)
		uv := objects.NewOpenUpvalue(&envSlot)
		uv.Close()
		vm.gc.Register(uv)
		cl.Upvals[0] = uv
	}
	// A Run started from inside a host function (require()) stacks the
	// new frame above the caller's stack and restores the caller's
	// frames once the nested top-level call has finished.
	if savedFrames, savedCount := vm.frames, vm.frameCount; savedCount > 0 {
		defer func() { vm.frames, vm.frameCount = savedFrames, savedCount }()
	} else {
		vm.sp = 0
	}
	vm.push(value.FromObject(cl))
	vm.frameCount = 0
	if cerr := vm.callClosure(cl, 0); cerr != nil {
		if re, ok := cerr.(*RuntimeError); ok {
			return value.Nil(), vm.raise(re)
		}
		return value.Nil(), cerr
	}
	return vm.dispatch()
}

// dispatch is the fetch-decode-dispatch loop over current_block.code.
// Each opcode executes to completion before the next is fetched; there
// is no yielding inside an opcode.
func (vm *VM) dispatch() (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(*RuntimeError); ok {
				result, err = value.Nil(), vm.raise(re)
				return
			}
			panic(r)
		}
	}()

	for {
		frame := &vm.frames[vm.frameCount-1]
		code := frame.Closure.Proto.Block.Code
		op := bytecode.Op(code[frame.IP])
		frame.IP++

		switch op {
		case bytecode.OpLoadConst:
			k := code[frame.IP]
			frame.IP++
			vm.push(frame.Closure.Proto.Block.Constants[k])

		case bytecode.OpLoadNil:
			vm.push(value.Nil())

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			if e := vm.execArith(op); e != nil {
				return value.Nil(), vm.raise(e)
			}

		case bytecode.OpLShift, bytecode.OpRShift, bytecode.OpBAnd, bytecode.OpBOr:
			if e := vm.execBitwise(op); e != nil {
				return value.Nil(), vm.raise(e)
			}

		case bytecode.OpEq:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpNeq:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(!value.Equal(a, b)))

		case bytecode.OpGt, bytecode.OpLt, bytecode.OpGte, bytecode.OpLte:
			if e := vm.execCompare(op); e != nil {
				return value.Nil(), vm.raise(e)
			}

		case bytecode.OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return value.Nil(), vm.raise(vm.runtimeError("attempt to negate a %s value", v.TypeName()))
			}
			vm.push(value.Number(-v.AsNumber()))

		case bytecode.OpLNot:
			v := vm.pop()
			vm.push(value.Bool(!v.Truthy()))

		case bytecode.OpConcat:
			if e := vm.execConcat(); e != nil {
				return value.Nil(), vm.raise(e)
			}

		case bytecode.OpJmp:
			d := int16(frame.Closure.Proto.Block.ReadU16(frame.IP))
			frame.IP += 2 + int(d)

		case bytecode.OpJmpIfTrueOrPop:
			d := int16(frame.Closure.Proto.Block.ReadU16(frame.IP))
			frame.IP += 2
			if vm.peek(0).Truthy() {
				frame.IP += int(d)
			} else {
				vm.pop()
			}

		case bytecode.OpJmpIfFalseOrPop:
			d := int16(frame.Closure.Proto.Block.ReadU16(frame.IP))
			frame.IP += 2
			if !vm.peek(0).Truthy() {
				frame.IP += int(d)
			} else {
				vm.pop()
			}

		case bytecode.OpPopJmpIfFalse:
			d := int16(frame.Closure.Proto.Block.ReadU16(frame.IP))
			frame.IP += 2
			falsy := !vm.pop().Truthy()
			if falsy {
				frame.IP += int(d)
			}

		case bytecode.OpGetVar:
			i := code[frame.IP]
			frame.IP++
			vm.push(vm.stack[frame.Base+int(i)])

		case bytecode.OpSetVar:
			i := code[frame.IP]
			frame.IP++
			vm.stack[frame.Base+int(i)] = vm.peek(0)

		case bytecode.OpGetUpval:
			i := code[frame.IP]
			frame.IP++
			vm.push(frame.Closure.Upvals[i].Get())

		case bytecode.OpSetUpval:
			i := code[frame.IP]
			frame.IP++
			frame.Closure.Upvals[i].Set(vm.peek(0))

		case bytecode.OpCloseUpval:
			vm.closeUpto(vm.sp - 1)
			vm.pop()

		case bytecode.OpNewTable:
			vm.push(value.FromObject(vm.NewTable()))

		case bytecode.OpTableAddField:
			v := vm.pop()
			k := vm.pop()
			t := vm.peek(0).AsObject().(*objects.Table)
			if e := t.Set(k, v); e != nil {
				return value.Nil(), vm.raise(vm.runtimeError("%s", e.Error()))
			}

		case bytecode.OpTableSet:
			k := code[frame.IP]
			frame.IP++
			v := vm.pop()
			key := frame.Closure.Proto.Block.Constants[k]
			t, terr := vm.asTable(vm.peek(0))
			if terr != nil {
				return value.Nil(), vm.raise(terr)
			}
			if e := t.Set(key, v); e != nil {
				return value.Nil(), vm.raise(vm.runtimeError("%s", e.Error()))
			}
			vm.setTop(v)

		case bytecode.OpTableGet:
			k := code[frame.IP]
			frame.IP++
			key := frame.Closure.Proto.Block.Constants[k]
			t, terr := vm.asTable(vm.peek(0))
			if terr != nil {
				return value.Nil(), vm.raise(terr)
			}
			res, _ := t.Get(key)
			vm.setTop(res)

		case bytecode.OpTableGetNoPop:
			k := code[frame.IP]
			frame.IP++
			key := frame.Closure.Proto.Block.Constants[k]
			t, terr := vm.asTable(vm.peek(0))
			if terr != nil {
				return value.Nil(), vm.raise(terr)
			}
			res, _ := t.Get(key)
			vm.push(res)

		case bytecode.OpIndex:
			key := vm.pop()
			t, terr := vm.asTable(vm.peek(0))
			if terr != nil {
				return value.Nil(), vm.raise(terr)
			}
			res, e := t.Get(key)
			if e != nil {
				return value.Nil(), vm.raise(vm.runtimeError("%s", e.Error()))
			}
			vm.setTop(res)

		case bytecode.OpIndexNoPop:
			key := vm.peek(0)
			t, terr := vm.asTable(vm.peek(1))
			if terr != nil {
				return value.Nil(), vm.raise(terr)
			}
			res, e := t.Get(key)
			if e != nil {
				return value.Nil(), vm.raise(vm.runtimeError("%s", e.Error()))
			}
			vm.push(res)

		case bytecode.OpCallFunc:
			n := int(code[frame.IP])
			frame.IP++
			callee := vm.stack[vm.sp-1-n]
			if e := vm.call(callee, n); e != nil {
				if re, ok := e.(*RuntimeError); ok {
					return value.Nil(), vm.raise(re)
				}
				return value.Nil(), e
			}

		case bytecode.OpReturnVal:
			retVal := vm.pop()
			vm.closeUpto(frame.Base)
			vm.sp = frame.Base
			vm.frameCount--
			if vm.frameCount == 0 {
				return retVal, nil
			}
			vm.push(retVal)

		case bytecode.OpMakeFunc:
			if e := vm.execMakeFunc(frame); e != nil {
				return value.Nil(), vm.raise(e)
			}

		default:
			return value.Nil(), vm.raise(vm.runtimeError("unknown opcode %d", op))
		}
	}
}

func (vm *VM) asTable(v value.Value) (*objects.Table, *RuntimeError) {
	if !v.IsObjectKind(value.KindTable) {
		return nil, vm.runtimeError("attempt to index a %s value", v.TypeName())
	}
	return v.AsObject().(*objects.Table), nil
}
