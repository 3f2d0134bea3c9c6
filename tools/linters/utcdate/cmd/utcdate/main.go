package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/fiscal/tools/linters/utcdate"
)

func main() {
	singlechecker.Main(utcdate.Analyzer)
}
