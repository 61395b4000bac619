package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rickchristie/iotdb-mcp/internal/meta"
)

func runDoctor(args []string) error {
	opts, err := parseFlags("goiotdbmcp doctor", args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	useColor := isTTY(os.Stderr.Fd())
	return doctor(os.Stderr, useColor, opts)
}

func doctor(w io.Writer, useColor bool, opts *cliOptions) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "goiotdbmcp %s\n\n", meta.Version)

	if !doctorValidateOptions(w, useColor, opts) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'goiotdbmcp doctor' again.")
		return nil
	}

	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, opts)
	return nil
}

// doctorValidateOptions checks the resolved flag/env values, printing one
// check line per setting. Returns true if all checks passed.
func doctorValidateOptions(w io.Writer, useColor bool, opts *cliOptions) bool {
	allPassed := true

	if _, err := strconv.Atoi(opts.port); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("port is an integer (%q)", opts.port))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("port is an integer (%s)", opts.port))
	}

	if opts.sqlDialect == "tree" || opts.sqlDialect == "table" {
		printCheck(w, useColor, true, fmt.Sprintf("sql-dialect is tree or table (%s)", opts.sqlDialect))
	} else {
		printCheck(w, useColor, false, fmt.Sprintf("sql-dialect is tree or table (%q)", opts.sqlDialect))
		allPassed = false
	}

	if opts.transport == "stdio" || opts.transport == "http" {
		printCheck(w, useColor, true, fmt.Sprintf("transport is stdio or http (%s)", opts.transport))
	} else {
		printCheck(w, useColor, false, fmt.Sprintf("transport is stdio or http (%q)", opts.transport))
		allPassed = false
	}

	if opts.transport == "http" {
		if _, err := strconv.Atoi(opts.httpPort); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("http-port is an integer (%q)", opts.httpPort))
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("http-port is an integer (%s)", opts.httpPort))
		}
	}

	if opts.password == "" {
		printCheck(w, useColor, true, "password is empty — the server will prompt on startup")
	}

	return allPassed
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

// printAgentSnippets prints MCP connection config snippets for AI agents.
func printAgentSnippets(w io.Writer, useColor bool, opts *cliOptions) {
	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}

	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	if opts.transport == "http" {
		url := fmt.Sprintf("http://localhost:%s/mcp", opts.httpPort)

		subheading("Claude Code")
		fmt.Fprintf(w, "  Run this command to add the server:\n\n")
		fmt.Fprintf(w, "    claude mcp add --transport http iotdb %s\n\n", url)

		subheading("Generic mcpServers entry")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "iotdb": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
		return
	}

	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add iotdb -- goiotdbmcp --host %s --port %s --sql-dialect %s\n\n",
		opts.host, opts.port, opts.sqlDialect)

	subheading("Generic mcpServers entry (stdio)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "iotdb": {
        "command": "goiotdbmcp",
        "args": ["--host", "%s", "--port", "%s", "--sql-dialect", "%s"]
      }
    }
  }
`, opts.host, opts.port, opts.sqlDialect)
}
