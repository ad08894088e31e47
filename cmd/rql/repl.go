package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang/groupcache/lru"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vegasq/rql/internal/logger"
	"github.com/vegasq/rql/output"
	"github.com/vegasq/rql/query"
)

const (
	prompt          = "rql> "
	promptContinued = "...> "
	historyFile     = ".rql_history"
)

// operators are the identifiers that start a query stage
var operators = []string{"where", "project", "extend", "summarize", "by", "order", "asc", "desc"}

// lineReader is the part of liner.State the loop needs
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func newReplCmd(a *app) *cobra.Command {
	var (
		history   string
		cacheSize int
	)
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive query shell",
		Long: `Start an interactive shell. A line ending in "|" continues on the next
line. Commands start with a dot; type .help to list them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cache = newCompileCache(cacheSize)
			if history == "" {
				if home, err := os.UserHomeDir(); err == nil {
					history = filepath.Join(home, historyFile)
				}
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			line.SetTabCompletionStyle(liner.TabPrints)
			line.SetWordCompleter(a.completeWord)

			loadHistory(line, history)
			defer saveHistory(line, history)

			fmt.Fprintln(a.stdout, "Welcome to rql. Type .help for commands, .exit to exit")
			return a.loop(line)
		},
	}
	cmd.Flags().StringVar(&history, "history", "", "history file (default ~/"+historyFile+")")
	cmd.Flags().IntVar(&cacheSize, "cache-size", 64, "number of compiled queries to keep (0 disables the cache)")
	return cmd
}

// newCompileCache returns an LRU holding size queries, or nil when size is
// not positive. lru treats zero as unbounded.
func newCompileCache(size int) *lru.Cache {
	if size <= 0 {
		return nil
	}
	return lru.New(size)
}

// loop reads queries until EOF or .exit
func (a *app) loop(r lineReader) error {
	var pending []string
	for {
		p := prompt
		if len(pending) > 0 {
			p = promptContinued
		}

		line, err := r.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			pending = nil
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if len(pending) == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				r.AppendHistory(trimmed)
				if stop := a.command(trimmed); stop {
					return nil
				}
				continue
			}
		}

		pending = append(pending, line)
		if strings.HasSuffix(trimmed, "|") {
			continue
		}

		input := strings.Join(pending, "\n")
		pending = nil
		r.AppendHistory(input)
		if err := a.execute(input, a.stdout); err != nil {
			reportError(a.stderr, err)
		}
	}
}

// command runs a dot command and reports whether the shell should exit
func (a *app) command(line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	var err error
	switch name {
	case ".exit", ".quit":
		return true
	case ".help":
		fmt.Fprint(a.stdout, `.tables              list bound tables
.schema [table]      show table columns
.functions           list builtin functions
.explain <query>     show the checked plan of a query
.format [name]       show or set the output format
.limit [n]           show or set the row limit, negative for none
.exit                leave the shell
`)
	case ".tables":
		for _, t := range a.order {
			fmt.Fprintln(a.stdout, t)
		}
	case ".schema":
		names := a.order
		if len(args) > 0 {
			if _, ok := a.tables[args[0]]; !ok {
				err = fmt.Errorf("no such table as '%s'", args[0])
				break
			}
			names = args[:1]
		}
		err = a.printSchema(names, a.stdout)
	case ".functions":
		err = a.printFunctions(a.stdout)
	case ".explain":
		var result *query.CompileResult
		result, err = a.compile(strings.TrimSpace(strings.TrimPrefix(line, ".explain")))
		if err == nil {
			fmt.Fprintln(a.stdout, query.Explain(result.Checked))
		}
	case ".format":
		if len(args) == 0 {
			fmt.Fprintln(a.stdout, a.format(a.stdout))
			break
		}
		if _, err = output.New(args[0], io.Discard); err == nil {
			a.cfg.Format = args[0]
		}
	case ".limit":
		if len(args) == 0 {
			fmt.Fprintln(a.stdout, a.cfg.Limit)
			break
		}
		var n int
		if n, err = strconv.Atoi(args[0]); err == nil {
			a.cfg.Limit = n
		} else {
			err = fmt.Errorf("invalid limit %q", args[0])
		}
	default:
		err = fmt.Errorf("unknown command %s, type .help for commands", name)
	}

	if err != nil {
		reportError(a.stderr, err)
	}
	return false
}

// completeWord completes the identifier before the cursor with a table,
// column, function or operator name. pos counts runes.
func (a *app) completeWord(line string, pos int) (head string, completions []string, tail string) {
	runes := []rune(line)
	head, tail = string(runes[:pos]), string(runes[pos:])
	start := strings.LastIndexFunc(head, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	}) + 1
	word := head[start:]
	head = head[:start]
	if word == "" {
		return head, nil, tail
	}

	seen := make(map[string]bool)
	for _, c := range a.candidates() {
		if strings.HasPrefix(c, word) && !seen[c] {
			seen[c] = true
			completions = append(completions, c)
		}
	}
	slices.Sort(completions)
	return head, completions, tail
}

func (a *app) candidates() []string {
	words := slices.Clone(operators)
	words = append(words, "and", "or", "contains", "null", "true", "false")
	words = append(words, query.GetGlobalRegistry().Names()...)
	for _, name := range a.order {
		words = append(words, name)
		words = append(words, a.tables[name].table.Schema().Names()...)
	}
	return words
}

func loadHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to load history", "path", path, "error", err)
		}
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		logger.Warn("failed to load history", "path", path, "error", err)
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("failed to save history", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		logger.Warn("failed to save history", "path", path, "error", err)
	}
}
