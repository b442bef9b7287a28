// include.go — textual inclusion of library files.
//
// `include "path"` resolves the referenced file and executes its top-level
// statements in the GLOBAL environment, regardless of where the include
// appears, so a library can freely publish names. Include failures are
// reported and non-fatal.
package veureka

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolveIncludePath tries, in order: the exact path, path with a .ver
// extension, and lib/path.ver.
func resolveIncludePath(path string) (string, bool) {
	candidates := []string{
		path,
		path + ".ver",
		filepath.Join("lib", path+".ver"),
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, true
		}
	}
	return "", false
}

func (ip *Interpreter) runInclude(path string) {
	resolved, ok := resolveIncludePath(path)
	if !ok {
		ip.report("include: file not found: %s", path)
		return
	}

	src, err := os.ReadFile(resolved)
	if err != nil {
		ip.report("include: cannot read %s: %v", resolved, err)
		return
	}

	prog, lexErrs, perr := Parse(string(src))
	for _, le := range lexErrs {
		fmt.Fprintln(ip.Stderr, le.Error())
	}
	if perr != nil {
		ip.report("include %s: %v", resolved, perr)
		return
	}

	for _, stmt := range prog.Children {
		ip.eval(stmt, ip.Global)
		if ip.sig.kind != sigNone {
			break
		}
	}
}
