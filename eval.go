// eval.go — the tree-walking evaluator.
//
// eval walks one AST node under the current environment. Statements and
// expressions both return a Value; producers of non-local control flow set
// ip.sig, and every frame that does not consume the signal returns early
// without further effect until a consumer (function call, loop, try)
// clears it.
package veureka

import "math"

func (ip *Interpreter) eval(node *Node, env *Env) Value {
	if node == nil {
		return Nil
	}

	switch node.Kind {
	case NodeProgram, NodeBlock:
		result := Nil
		for _, stmt := range node.Children {
			result = ip.eval(stmt, env)
			if ip.sig.kind != sigNone {
				break
			}
		}
		return result

	case NodeInclude:
		ip.runInclude(node.Str)
		return Nil

	case NodeLet:
		value := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		env.Define(node.Name, value, node.IsConst)
		return value

	case NodeAssign:
		value := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		if err := env.Set(node.Name, value); err != nil {
			ip.report("%s", err.Error())
		}
		return value

	case NodeCompoundAssign:
		current, ok := env.Get(node.Name)
		if !ok {
			ip.report("undefined variable '%s'", node.Name)
			return Nil
		}
		operand := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		result := ip.applyBinary(node.Op[:1], current, operand)
		if err := env.Set(node.Name, result); err != nil {
			ip.report("%s", err.Error())
		}
		return result

	case NodeIncDec:
		return ip.evalIncDec(node, env)

	case NodeFn:
		fn := &Function{Params: node.Params, Body: node.Children, Env: env}
		fv := FuncVal(fn)
		if node.Name != "" {
			env.Define(node.Name, fv, false)
		}
		return fv

	case NodeClass:
		cls := &Class{Name: node.Name}
		for _, m := range node.Children {
			cls.Methods = append(cls.Methods, Method{
				Name: m.Name,
				Fn:   &Function{Params: m.Params, Body: m.Children, Env: env},
			})
		}
		cv := Value{Tag: VTClass, Data: cls}
		env.Define(node.Name, cv, false)
		return cv

	case NodeNew:
		return ip.evalNew(node, env)

	case NodeCall:
		callee := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		args := make([]Value, 0, len(node.Children)-1)
		for _, argNode := range node.Children[1:] {
			args = append(args, ip.eval(argNode, env))
			if ip.sig.kind != sigNone {
				return Nil
			}
		}
		return ip.CallFunction(callee, args)

	case NodeBinary:
		left := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		right := ip.eval(node.Children[1], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		return ip.applyBinary(node.Op, left, right)

	case NodeUnary:
		operand := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		switch node.Op {
		case "-":
			return Num(-toNumber(operand))
		case "not":
			return Bool(!Truthy(operand))
		case "~":
			return Num(float64(^int64(toNumber(operand))))
		}
		return Nil

	case NodeIf:
		conds, blocks, elseBlock := node.IfArms()
		for i, cond := range conds {
			cv := ip.eval(cond, env)
			if ip.sig.kind != sigNone {
				return Nil
			}
			if Truthy(cv) {
				ip.eval(blocks[i], env)
				return Nil
			}
		}
		if elseBlock != nil {
			ip.eval(elseBlock, env)
		}
		return Nil

	case NodeFor:
		return ip.evalFor(node, env)

	case NodeWhile:
		for {
			cond := ip.eval(node.Children[0], env)
			if ip.sig.kind != sigNone || !Truthy(cond) {
				return Nil
			}
			ip.eval(node.Children[1], env)
			if ip.sig.kind == sigBreak {
				ip.sig = signal{}
				return Nil
			}
			if ip.sig.kind == sigContinue {
				ip.sig = signal{}
				continue
			}
			if ip.sig.kind != sigNone {
				return Nil
			}
		}

	case NodeTry:
		return ip.evalTry(node, env)

	case NodeThrow:
		value := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		ip.sig = signal{kind: sigThrow, msg: ToString(value)}
		return Nil

	case NodeReturn:
		value := Nil
		if len(node.Children) > 0 {
			value = ip.eval(node.Children[0], env)
			if ip.sig.kind != sigNone {
				return Nil
			}
		}
		ip.sig = signal{kind: sigReturn, value: value}
		return value

	case NodeBreak:
		ip.sig = signal{kind: sigBreak}
		return Nil

	case NodeContinue:
		ip.sig = signal{kind: sigContinue}
		return Nil

	case NodeIndex:
		obj := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		index := ip.eval(node.Children[1], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		switch obj.Tag {
		case VTList:
			items := obj.Data.([]Value)
			idx := int(toNumber(index))
			if idx >= 0 && idx < len(items) {
				return items[idx]
			}
			return Nil
		case VTMap:
			return obj.Data.(*MapObject).Get(ToString(index))
		}
		return Nil

	case NodeAttr:
		obj := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		return ip.attrGet(obj, node.Name)

	case NodeAttrAssign:
		obj := ip.eval(node.Children[0], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		value := ip.eval(node.Children[1], env)
		if ip.sig.kind != sigNone {
			return Nil
		}
		if obj.Tag == VTInstance {
			obj.Data.(*Instance).SetField(node.Name, value)
		}
		return value

	case NodeVar:
		if v, ok := env.Get(node.Name); ok {
			return v
		}
		ip.report("undefined variable '%s'", node.Name)
		return Nil

	case NodeNumberLit:
		return Num(node.Num)
	case NodeStringLit:
		return Str(node.Str)
	case NodeBoolLit:
		return Bool(node.Bool)
	case NodeNilLit:
		return Nil

	case NodeListLit:
		items := make([]Value, 0, len(node.Children))
		for _, elem := range node.Children {
			items = append(items, ip.eval(elem, env))
			if ip.sig.kind != sigNone {
				return Nil
			}
		}
		return List(items)

	case NodeMapLit:
		mv := NewMapObject()
		mo := mv.Data.(*MapObject)
		for i, valNode := range node.Children {
			v := ip.eval(valNode, env)
			if ip.sig.kind != sigNone {
				return Nil
			}
			mo.Set(node.Keys[i], v)
		}
		return mv
	}

	return Nil
}

// evalIncDec handles prefix and postfix ++/-- on a variable or attribute.
// The prefix form yields the new value, the postfix form the old one.
func (ip *Interpreter) evalIncDec(node *Node, env *Env) Value {
	delta := 1.0
	if node.Op == "--" {
		delta = -1
	}
	target := node.Children[0]

	if target.Kind == NodeVar {
		current, ok := env.Get(target.Name)
		if !ok {
			ip.report("undefined variable '%s'", target.Name)
			return Nil
		}
		updated := Num(toNumber(current) + delta)
		if err := env.Set(target.Name, updated); err != nil {
			ip.report("%s", err.Error())
			return Nil
		}
		if node.Prefix {
			return updated
		}
		return current
	}

	// Attribute target: only an existing instance field is updated.
	obj := ip.eval(target.Children[0], env)
	if ip.sig.kind != sigNone {
		return Nil
	}
	if obj.Tag == VTInstance {
		inst := obj.Data.(*Instance)
		if current, ok := inst.GetField(target.Name); ok {
			updated := Num(toNumber(current) + delta)
			inst.SetField(target.Name, updated)
			if node.Prefix {
				return updated
			}
			return current
		}
	}
	return Nil
}

// evalNew allocates an instance of a named class and runs __init__ when
// the class defines one. The expression yields the instance regardless of
// the initializer's result.
func (ip *Interpreter) evalNew(node *Node, env *Env) Value {
	cv, ok := env.Get(node.Name)
	if !ok {
		ip.report("class '%s' is not defined", node.Name)
		return Nil
	}
	if cv.Tag != VTClass {
		ip.report("'%s' is not a class", node.Name)
		return Nil
	}
	cls := cv.Data.(*Class)

	inst := &Instance{Class: cls}
	instVal := Value{Tag: VTInstance, Data: inst}

	args := make([]Value, 0, len(node.Children))
	for _, argNode := range node.Children {
		args = append(args, ip.eval(argNode, env))
		if ip.sig.kind != sigNone {
			return Nil
		}
	}

	if init := cls.FindMethod("__init__"); init != nil {
		ip.CallFunction(bindMethod(init, instVal), args)
	}
	return instVal
}

// attrGet resolves instance.name: fields first, then class methods bound
// to the instance. Any other receiver yields nil.
func (ip *Interpreter) attrGet(obj Value, name string) Value {
	if obj.Tag != VTInstance {
		return Nil
	}
	inst := obj.Data.(*Instance)
	if v, ok := inst.GetField(name); ok {
		return v
	}
	if m := inst.Class.FindMethod(name); m != nil {
		return bindMethod(m, obj)
	}
	return Nil
}

// bindMethod packages a class method and an instance into a callable whose
// closure extends the method's definition environment with self.
func bindMethod(m *Function, instance Value) Value {
	methodEnv := NewEnv(m.Env)
	methodEnv.Define("self", instance, false)
	return FuncVal(&Function{Params: m.Params, Body: m.Body, Env: methodEnv})
}

// evalFor iterates a list, binding the loop variable in a fresh child
// environment per element. A non-list iterable is a diagnostic and the
// loop is skipped.
func (ip *Interpreter) evalFor(node *Node, env *Env) Value {
	iterable := ip.eval(node.Children[0], env)
	if ip.sig.kind != sigNone {
		return Nil
	}
	if iterable.Tag != VTList {
		ip.report("for loop requires a list, got %s", TypeName(iterable))
		return Nil
	}

	for _, item := range iterable.Data.([]Value) {
		loopEnv := NewEnv(env)
		loopEnv.Define(node.Name, item, false)
		ip.eval(node.Children[1], loopEnv)

		if ip.sig.kind == sigBreak {
			ip.sig = signal{}
			return Nil
		}
		if ip.sig.kind == sigContinue {
			ip.sig = signal{}
			continue
		}
		if ip.sig.kind != sigNone {
			return Nil
		}
	}
	return Nil
}

// evalTry runs the try body with the signal cleared. A throw arising in
// the body is consumed by a catch clause, whose block runs in a child
// environment with the thrown message bound to the catch variable when
// one is named. A finally block runs unconditionally; a signal raised by
// the finally body itself supersedes a pending one.
func (ip *Interpreter) evalTry(node *Node, env *Env) Value {
	tryBlock, catchBlock, finallyBlock := node.TryParts()

	saved := ip.sig
	ip.sig = signal{}

	ip.eval(tryBlock, env)

	if ip.sig.kind == sigThrow && catchBlock != nil {
		catchEnv := NewEnv(env)
		if node.Name != "" {
			catchEnv.Define(node.Name, Str(ip.sig.msg), false)
		}
		ip.sig = signal{}
		ip.eval(catchBlock, catchEnv)
	}

	if finallyBlock != nil {
		pending := ip.sig
		ip.sig = signal{}
		ip.eval(finallyBlock, env)
		if ip.sig.kind == sigNone {
			ip.sig = pending
		}
	}

	if ip.sig.kind == sigNone {
		ip.sig = saved
	}
	return Nil
}

// applyBinary implements the binary operators. `+` is polymorphic over
// strings and lists; the remaining arithmetic, comparison and bitwise
// operators coerce their operands as doubles (bitwise ops truncate to
// integer). and/or evaluate both operands and yield a boolean.
func (ip *Interpreter) applyBinary(op string, left, right Value) Value {
	switch op {
	case "+":
		switch {
		case left.Tag == VTString || right.Tag == VTString:
			return Str(ToString(left) + ToString(right))
		case left.Tag == VTList && right.Tag == VTList:
			l, r := left.Data.([]Value), right.Data.([]Value)
			out := make([]Value, 0, len(l)+len(r))
			out = append(out, l...)
			out = append(out, r...)
			return List(out)
		case left.Tag == VTList:
			l := left.Data.([]Value)
			out := make([]Value, 0, len(l)+1)
			out = append(out, l...)
			out = append(out, right)
			return List(out)
		case right.Tag == VTList:
			r := right.Data.([]Value)
			out := make([]Value, 0, len(r)+1)
			out = append(out, left)
			out = append(out, r...)
			return List(out)
		default:
			return Num(toNumber(left) + toNumber(right))
		}
	case "-":
		return Num(toNumber(left) - toNumber(right))
	case "*":
		return Num(toNumber(left) * toNumber(right))
	case "/":
		if toNumber(right) == 0 {
			ip.report("division by zero")
			return Num(0)
		}
		return Num(toNumber(left) / toNumber(right))
	case "%":
		r := int64(toNumber(right))
		if r == 0 {
			ip.report("division by zero")
			return Num(0)
		}
		return Num(float64(int64(toNumber(left)) % r))
	case "**":
		return Num(math.Pow(toNumber(left), toNumber(right)))
	case "==":
		return Bool(valuesEqual(left, right))
	case "!=":
		return Bool(!valuesEqual(left, right))
	case "<":
		return Bool(toNumber(left) < toNumber(right))
	case "<=":
		return Bool(toNumber(left) <= toNumber(right))
	case ">":
		return Bool(toNumber(left) > toNumber(right))
	case ">=":
		return Bool(toNumber(left) >= toNumber(right))
	case "and":
		return Bool(Truthy(left) && Truthy(right))
	case "or":
		return Bool(Truthy(left) || Truthy(right))
	case "&":
		return Num(float64(int64(toNumber(left)) & int64(toNumber(right))))
	case "|":
		return Num(float64(int64(toNumber(left)) | int64(toNumber(right))))
	case "^":
		return Num(float64(int64(toNumber(left)) ^ int64(toNumber(right))))
	}
	return Nil
}
