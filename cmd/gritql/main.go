// Command gritql compiles a pattern and runs it over a set of files,
// printing matches or rewrites to stdout (or writing them back with
// --commit). Grounded on the teacher's cmd/morfx/main.go flag layout,
// narrowed to the operations this core actually exposes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/oxhq/gritql/gritql"
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/cache"
	"github.com/oxhq/gritql/internal/compiler"
	"github.com/oxhq/gritql/internal/config"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/lang/golang"
	"github.com/oxhq/gritql/internal/lang/javascript"
	"github.com/oxhq/gritql/internal/lang/plain"
)

func registry() *lang.Registry {
	r := lang.NewRegistry()
	r.Register(golang.New())
	r.Register(javascript.New())
	r.Register(plain.New())
	return r
}

func langForExt(ext string) string {
	switch ext {
	case ".go":
		return "go"
	case ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return "javascript"
	default:
		return "plain"
	}
}

type cliOptions struct {
	patternText string
	langName    string
	commit      bool
	showDiff    bool
	jsonOutput  bool
	noCache     bool
	files       []string
}

func parseFlags(args []string) (*cliOptions, error) {
	fs := pflag.NewFlagSet("gritql", pflag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	patternFile := fs.StringP("pattern-file", "f", "", "Read the GritQL pattern from this file instead of the first argument.")
	langFlag := fs.StringP("lang", "l", "", "Target language (go, javascript, plain). Inferred from file extensions if omitted.")
	commit := fs.Bool("commit", false, "Write rewrites back to disk (default is a dry-run preview).")
	showDiff := fs.BoolP("diff", "D", false, "Show a unified diff of each rewrite.")
	jsonOutput := fs.BoolP("json", "j", false, "Output results as JSON.")
	noCache := fs.Bool("no-cache", false, "Skip the no-match cache.")
	help := fs.BoolP("help", "h", false, "Show this help message and exit.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *help {
		fs.Usage()
		return nil, flag.ErrHelp
	}

	var patternText string
	rest := fs.Args()
	if *patternFile != "" {
		b, err := os.ReadFile(*patternFile)
		if err != nil {
			return nil, fmt.Errorf("reading pattern file: %w", err)
		}
		patternText = string(b)
	} else {
		if len(rest) == 0 {
			return nil, errors.New("a pattern is required (first argument or --pattern-file)")
		}
		patternText = rest[0]
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, errors.New("at least one file argument is required")
	}

	return &cliOptions{
		patternText: patternText,
		langName:    *langFlag,
		commit:      *commit,
		showDiff:    *showDiff,
		jsonOutput:  *jsonOutput,
		noCache:     *noCache,
		files:       rest,
	}, nil
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: gritql [flags] '<pattern>' file [file...]")
	fmt.Fprintln(os.Stderr, "       gritql [flags] --pattern-file=rule.grit file [file...]")
	fs.PrintDefaults()
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	reg := registry()

	langName := opts.langName
	if langName == "" {
		langName = langForExt(filepath.Ext(opts.files[0]))
	}
	l, ok := reg.Lookup(langName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown language %q (known: %v)\n", langName, reg.Names())
		os.Exit(1)
	}

	var noMatchCache gritql.NoMatchCache
	if !opts.noCache {
		c, err := cache.Open(cfg.CachePath, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: no-match cache unavailable: %v\n", err)
		} else {
			defer c.Close()
			noMatchCache = c
		}
	}

	problem, err := gritql.Compile(compiler.Source{Path: "<cli>", Text: opts.patternText}, gritql.Options{
		Options: compiler.Options{
			Lang:     l,
			Builtins: builtin.NewTable(nil, rand.New(rand.NewSource(cfg.DefaultSeed))),
		},
		Seed:      cfg.DefaultSeed,
		Cache:     noMatchCache,
		PollEvery: cfg.CancelPollEveryNNodes,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling pattern: %v\n", err)
		os.Exit(1)
	}

	files, err := readFiles(opts.files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results, err := problem.ExecuteFiles(files, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pattern: %v\n", err)
		os.Exit(1)
	}

	if opts.jsonOutput {
		printJSON(results)
	} else {
		printResults(results, opts.showDiff)
	}

	if opts.commit {
		if err := writeBack(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing files: %v\n", err)
			os.Exit(1)
		}
	}
}

func readFiles(paths []string) ([]gritql.RichFile, error) {
	out := make([]gritql.RichFile, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, gritql.RichFile{Path: p, Content: content})
	}
	return out, nil
}

func writeBack(results []gritql.MatchResult) error {
	for _, r := range results {
		switch r.Typename {
		case gritql.TypeRewrite, gritql.TypeCreateFile:
			if err := os.WriteFile(r.SourceFile, r.Content, 0o644); err != nil {
				return err
			}
		case gritql.TypeRemoveFile:
			if err := os.Remove(r.SourceFile); err != nil {
				return err
			}
		}
	}
	return nil
}

func printJSON(results []gritql.MatchResult) {
	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		_ = enc.Encode(r)
	}
}

func printResults(results []gritql.MatchResult, showDiff bool) {
	for _, r := range results {
		switch r.Typename {
		case gritql.TypeMatch:
			fmt.Printf("match: %s\n", r.SourceFile)
		case gritql.TypeRewrite:
			fmt.Printf("rewrite: %s\n", r.SourceFile)
			if showDiff && r.Diff != "" {
				fmt.Print(r.Diff)
			}
		case gritql.TypeCreateFile:
			fmt.Printf("create: %s\n", r.SourceFile)
		case gritql.TypeRemoveFile:
			fmt.Printf("remove: %s\n", r.SourceFile)
		case gritql.TypeAnalysisLog:
			if r.Log != nil {
				fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", r.Log.Level, r.Log.SourceFile, r.Log.Message)
			}
		}
	}
}
