package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	veureka "github.com/vincenzofranchino/veureka-lang"
)

const (
	appName     = "veureka"
	version     = "0.1.0"
	historyFile = ".veureka_history"
	promptMain  = "ver> "
	promptCont  = "...> "
)

func main() {
	switch len(os.Args) {
	case 1:
		os.Exit(repl())
	case 2:
		switch os.Args[1] {
		case "--help", "-h":
			usage()
			os.Exit(0)
		case "--examples":
			runExamples()
			os.Exit(0)
		default:
			os.Exit(runFile(os.Args[1]))
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [file.ver] [--help] [--examples]\n", appName)
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Veureka %s — a small dynamically-typed scripting language

Usage:
  %s                 Start the interactive REPL.
  %s <file.ver>      Execute a script.
  %s --examples      Run the built-in examples.
  %s --help, -h      Show this message.

Notes:
  'and' and 'or' evaluate both operands and yield a boolean; they do not
  short-circuit.
`, version, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}

	ip := veureka.NewInterpreter()
	prog, lexErrs, perr := veureka.Parse(string(src))
	for _, le := range lexErrs {
		fmt.Fprintln(os.Stderr, veureka.WrapErrorWithSource(le, string(src)).Error())
	}
	if perr != nil {
		fmt.Fprintln(os.Stderr, veureka.WrapErrorWithSource(perr, string(src)).Error())
		return 1
	}

	ip.EvalProgram(prog)
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func repl() int {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Veureka REPL - Interactive Programming Language")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Type 'exit' or 'quit' to leave")
	fmt.Println("Type 'help' to see the available commands")
	fmt.Printf("Version %s\n\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := veureka.NewInterpreter()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println("\nGoodbye!")
			return 0
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		switch trimmed {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return 0
		case "help":
			printReplHelp()
			continue
		case "vars":
			fmt.Println("Global variables:")
			for _, b := range ip.Global.Bindings() {
				if b.Value.Tag == veureka.VTNative {
					continue
				}
				fmt.Printf("  %s = %s\n", b.Name, veureka.FormatValue(b.Value))
			}
			continue
		case "clear":
			ip.ResetGlobals()
			fmt.Println("Variables cleared.")
			continue
		}

		prog, lexErrs, perr := veureka.Parse(code)
		for _, le := range lexErrs {
			fmt.Fprintln(os.Stderr, veureka.WrapErrorWithSource(le, code).Error())
		}
		if perr != nil {
			fmt.Fprintln(os.Stderr, veureka.WrapErrorWithSource(perr, code).Error())
			continue
		}

		for _, stmt := range prog.Children {
			result := ip.EvalStatement(stmt)
			if isDeclaration(stmt) || result.Tag == veureka.VTNil {
				continue
			}
			fmt.Println(veureka.FormatValue(result))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

func isDeclaration(stmt *veureka.Node) bool {
	switch stmt.Kind {
	case veureka.NodeLet, veureka.NodeFn, veureka.NodeClass:
		return true
	}
	return false
}

func printReplHelp() {
	fmt.Print(`
Available commands:
  exit, quit    Leave the REPL
  help          Show this message
  clear         Reset all variables
  vars          Show all global variables

Examples:
  let x = 10
  fn square(n) => n * n
  print(square(5))

  class Person
      fn __init__(name)
          self.name = name
      end
  end
  let p = new Person("Mario")

Note: 'and'/'or' evaluate both operands; they do not short-circuit.

`)
}

// readByParseProbe accumulates lines until the buffer parses, or fails with
// an error other than "incomplete input". The parse result is discarded;
// the caller re-parses the final text.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println("Use 'exit' to leave")
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, _, perr := veureka.ParseInteractive(src)
		if perr == nil || !veureka.IsIncomplete(perr) {
			return src, true
		}
	}
}

// -----------------------------------------------------------------------------
// examples
// -----------------------------------------------------------------------------

func runExample(title, src string) {
	fmt.Println(title)
	ip := veureka.NewInterpreter()
	if _, err := ip.EvalSource(src); err != nil {
		fmt.Fprintln(os.Stderr, veureka.WrapErrorWithSource(err, src).Error())
	}
}

func runExamples() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Veureka - Programming Language")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	runExample("Example 1: Variables and Functions", `
let name = "Mario"
let age = 25
fn greet(person)
    print("Hello, " + person + "!")
end
greet(name)
`)

	fmt.Println()
	runExample("Example 2: Lists and Iteration", `
let numbers = [1, 2, 3, 4, 5]
print("Numbers:", numbers)
for n in numbers
    print(n * 2)
end
`)

	fmt.Println()
	runExample("Example 3: Lambdas and Higher-Order Functions", `
let numbers = [1, 2, 3, 4, 5]
let double = fn(x) => x * 2
let squares = map(numbers, fn(n) => n * n)
print("Doubled:", map(numbers, double))
print("Squares:", squares)
let even = filter(numbers, fn(n) => n % 2 == 0)
print("Even numbers:", even)
`)

	fmt.Println()
	runExample("Example 4: Recursive Fibonacci", `
fn fibonacci(n)
    if n < 2
        return n
    end
    return fibonacci(n - 1) + fibonacci(n - 2)
end
print("fibonacci(10) =", fibonacci(10))
`)

	fmt.Println()
	runExample("Example 5: Classes and OOP", `
class Person
    fn __init__(name, age)
        self.name = name
        self.age = age
    end
    fn greet()
        print("Hi, I am " + self.name + " and I am " + str(self.age) + " years old")
    end
    fn birthday()
        self.age += 1
        print("Happy birthday! Now I am " + str(self.age))
    end
end
let mario = new Person("Mario", 25)
mario.greet()
mario.birthday()
`)

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("All examples completed!")
	fmt.Println(strings.Repeat("=", 60))
}
