// Command scopecheck reports logging scopes that are opened and never
// closed.
//
//	go vet -vettool=$(which scopecheck) ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/fyrsmithlabs/logscope/internal/analysis/scopeclose"
)

func main() {
	singlechecker.Main(scopeclose.Analyzer)
}
