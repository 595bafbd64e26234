// formulac compiles formula classes to flat formula expressions and back.
//
// Usage:
//
//	formulac compile   <file.ts>                Compile a class to a flat expression
//	formulac decompile [expr] --props p.yaml    Decompile a flat expression to a class
//	formulac check     <file.ts>                Compile, decompile and compile again
//	formulac inspect   <file.ts> | --expr e     Show the formula tree
//	formulac version                            Show version
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
