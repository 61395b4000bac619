package main

import (
	"fmt"
	"os"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "doctor":
			if err := runDoctor(args[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "help":
			printUsage()
			return
		}
	}

	if err := runServe(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("goiotdbmcp — Apache IoTDB MCP Server")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goiotdbmcp [flags]          Start the MCP server")
	fmt.Println("  goiotdbmcp doctor [flags]   Check configuration and print agent snippets")
	fmt.Println("  goiotdbmcp --help           Show the server flags")
}
