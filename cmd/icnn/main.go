// Package main provides the icnn CLI: it trains the example input-convex
// networks on synthetic data and optionally exports the results.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "version":
		fmt.Printf("icnn %s\n", version)
		return
	case "ficnn":
		err = runFICNN(args)
	case "picnn":
		err = runPICNN(args)
	case "conjugate":
		err = runConjugate(args)
	case "runs":
		err = runRuns(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("icnn - input-convex neural networks")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version      Show version")
	fmt.Println("  ficnn        Fit a FICNN to x² on [0,1)")
	fmt.Println("  picnn        Fit a PICNN to the padded quadratic target")
	fmt.Println("  conjugate    Train a convex-conjugate FICNN pair")
	fmt.Println("  runs         List runs recorded with -db")
	fmt.Println("")
	fmt.Println("Run 'icnn <command> -h' for command flags.")
}
