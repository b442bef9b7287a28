// interpreter.go — public surface of the Veureka interpreter.
//
// EXECUTION MODEL
// ---------------
// A single Interpreter owns the global environment and the current control
// signal for the lifetime of a session; the REPL reuses one instance across
// lines. Evaluation is strictly synchronous and single-threaded.
//
// Control flow that escapes the current statement (return, break, continue,
// throw) is NOT modelled with Go panics: the evaluator carries an explicit
// signal register that producers set and the appropriate enclosing frame
// consumes. An unconsumed signal propagates to the program root, where it
// terminates execution silently.
//
// RUNTIME ERRORS
// --------------
// Runtime failures (undefined names, const mutation, division by zero,
// calling a non-callable, iterating a non-list, unknown classes) are
// diagnostics, not Go errors: they are written to Stderr and evaluation
// continues with a sentinel value (nil, or 0 for division by zero). The
// only user-visible error channel is `throw`, which travels on the signal
// register to the nearest `catch`.
package veureka

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// signalKind discriminates the control-signal register.
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigBreak
	sigContinue
	sigThrow
)

// signal is the out-of-band control state threaded through evaluation.
// value carries the return value for sigReturn; msg the thrown message
// for sigThrow.
type signal struct {
	kind  signalKind
	value Value
	msg   string
}

// Interpreter evaluates Veureka programs against a persistent global
// environment.
type Interpreter struct {
	Global *Env

	Stdout io.Writer
	Stderr io.Writer
	Stdin  *bufio.Reader

	sig signal
}

// NewInterpreter returns an interpreter with all built-in functions
// registered in its global environment.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  bufio.NewReader(os.Stdin),
	}
	ip.Global = NewEnv(nil)
	registerBuiltins(ip)
	return ip
}

// report writes a runtime diagnostic to the error stream.
func (ip *Interpreter) report(format string, args ...interface{}) {
	fmt.Fprintf(ip.Stderr, "runtime error: "+format+"\n", args...)
}

// EvalSource parses and evaluates source in the global environment.
// Lexical diagnostics are reported to Stderr and scanning continues; a
// parse error is returned and nothing is evaluated. The result is the
// value of the last executed statement.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	prog, lexErrs, err := Parse(src)
	for _, le := range lexErrs {
		fmt.Fprintln(ip.Stderr, le.Error())
	}
	if err != nil {
		return Nil, err
	}
	return ip.EvalProgram(prog), nil
}

// EvalProgram evaluates a parsed program in the global environment. Any
// signal left unconsumed at the root (an uncaught throw, a stray break)
// terminates execution silently and is cleared.
func (ip *Interpreter) EvalProgram(prog *Node) Value {
	result := Nil
	for _, stmt := range prog.Children {
		result = ip.eval(stmt, ip.Global)
		if ip.sig.kind != sigNone {
			break
		}
	}
	ip.sig = signal{}
	return result
}

// EvalStatement evaluates one statement in the global environment,
// clearing any root-level signal afterwards. REPL entry point.
func (ip *Interpreter) EvalStatement(stmt *Node) Value {
	result := ip.eval(stmt, ip.Global)
	ip.sig = signal{}
	return result
}

// CallFunction invokes a function or native value with the given
// arguments. Calling a non-callable is a runtime diagnostic yielding nil.
func (ip *Interpreter) CallFunction(fn Value, args []Value) Value {
	switch fn.Tag {
	case VTNative:
		return fn.Data.(*NativeFunc).Fn(ip, args)
	case VTFunction:
		f := fn.Data.(*Function)
		callEnv := NewEnv(f.Env)
		for i, param := range f.Params {
			if i < len(args) {
				callEnv.Define(param, args[i], false)
			} else {
				callEnv.Define(param, Nil, false)
			}
		}

		result := Nil
		for _, stmt := range f.Body {
			result = ip.eval(stmt, callEnv)
			if ip.sig.kind == sigReturn {
				result = ip.sig.value
				ip.sig = signal{}
				break
			}
			if ip.sig.kind != sigNone {
				return Nil
			}
		}
		return result
	default:
		ip.report("object of type %s is not callable", TypeName(fn))
		return Nil
	}
}

// ResetGlobals discards all user bindings and re-registers the built-ins.
// Backs the REPL clear command.
func (ip *Interpreter) ResetGlobals() {
	ip.Global = NewEnv(nil)
	ip.sig = signal{}
	registerBuiltins(ip)
}
