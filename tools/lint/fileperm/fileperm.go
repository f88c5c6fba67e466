// Package fileperm reports hard-coded permission literals passed to WriteFile
// and MkdirAll calls.
package fileperm

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags permission literals that have a fileutil constant.
var Analyzer = &analysis.Analyzer{
	Name:     "fileperm",
	Doc:      "checks for hardcoded file permission literals instead of fileutil constants",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// permArgIndex is the position of the mode argument per call name suffix.
var permArgIndex = map[string]int{
	"WriteFile": 2,
	"MkdirAll":  1,
	"Mkdir":     1,
}

// permConstants maps a mode to the constant that should be used instead.
var permConstants = map[int64]string{
	0o600: "fileutil.ReadWriteUserPermission",
	0o644: "fileutil.ReadWriteUserReadOthers",
	0o755: "fileutil.ReadWriteExecuteUserReadExecuteOthers",
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		fun, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}
		idx, ok := permArgIndex[fun.Sel.Name]
		if !ok || len(call.Args) <= idx {
			return
		}
		lit, ok := call.Args[idx].(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return
		}
		mode, err := parseMode(lit.Value)
		if err != nil {
			return
		}
		if constant, ok := permConstants[mode]; ok {
			pass.Reportf(lit.Pos(), "use %s instead of hardcoded '%s'", constant, lit.Value)
		}
	})
	return nil, nil
}

// parseMode accepts 0o644, 0644 and 0O644.
func parseMode(lit string) (int64, error) {
	lit = strings.ReplaceAll(lit, "_", "")
	if len(lit) > 1 && lit[0] == '0' && lit[1] != 'o' && lit[1] != 'O' && lit[1] != 'x' && lit[1] != 'X' && lit[1] != 'b' && lit[1] != 'B' {
		lit = "0o" + lit[1:]
	}
	return strconv.ParseInt(lit, 0, 64)
}
