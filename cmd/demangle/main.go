// Command demangle decodes a GNU v2 C++ mangled symbol name and
// prints its pretty-printed declaration.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	demangle "github.com/abelbriggs1/gnu2-demangler"
)

type args struct {
	errorOnFailure *bool
}

func readArgs() *args {
	a := &args{
		errorOnFailure: flag.Bool("error-on-failure", false, "report the failure kind and position on stderr and exit non-zero instead of echoing the input"),
	}
	flag.BoolVar(a.errorOnFailure, "e", false, "shorthand for -error-on-failure")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <symbol>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	return a
}

func main() {
	a := readArgs()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatal("expected exactly one symbol argument")
	}
	symbol := flag.Arg(0)

	if *a.errorOnFailure {
		sym, err := demangle.Parse([]byte(symbol))
		if err != nil {
			de, _ := demangle.AsError(err)
			fmt.Fprintf(os.Stderr, "%s at byte %d\n", de.Kind, de.Position)
			os.Exit(1)
		}
		fmt.Println(sym.PrettyPrint())
		return
	}

	out, _ := demangle.Demangle([]byte(symbol))
	fmt.Println(out)
}
