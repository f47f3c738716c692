package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errUsage marks a command invoked with missing or malformed arguments.
var errUsage = errors.New("usage")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// execIface defines the command surface the REPL needs. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	SetFilter(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	ToggleSort(ctx context.Context) error
	Stats(ctx context.Context) error
	Reload(ctx context.Context) error
	Add(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	SetStatus(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Uncomment(ctx context.Context, args []string) error
	SetAuthor(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

const helpText = `Commands:
  list | l                      list mail under the current filter
  filter <all|received|processing|closed>
  search [text]                 match id, sender, recipient or subject; empty clears
  sort                          toggle newest/oldest first
  stats                         totals per status
  add                           log new mail (optionally scan a document)
  show <id>                     details, history and discussion
  status <id> <status>          move mail through the pipeline
  rename <id> <new-id>          change the tracking id
  delete <id>                   remove mail
  comment <id> <text>           post to the discussion
  uncomment <id> <n|comment-id> delete a comment
  author [name]                 set the name comments are posted under
  download <id> [dir]           save the attached document locally
  reload                        refetch all mail
  exit | quit`

// runREPL reads commands from lines until EOF or exit/quit.
//
// The prompt shows the current view (from statusFn). The first token is the
// command, the rest are its arguments. Handlers report domain failures
// themselves as notices; the loop only prints usage errors so that it
// stays resilient and focused on I/O. Interactive commands read follow-up
// answers from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, lines *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mt> %s > ", statusFn()))
		line, err := lines.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpText)
		case "l", "list":
			err = a.List(ctx)
		case "filter":
			err = a.SetFilter(ctx, args)
		case "search", "find":
			err = a.Search(ctx, args)
		case "sort":
			err = a.ToggleSort(ctx)
		case "stats":
			err = a.Stats(ctx)
		case "reload":
			err = a.Reload(ctx)
		case "add", "new":
			err = a.Add(ctx)
		case "show":
			err = a.Show(ctx, args)
		case "status":
			err = a.SetStatus(ctx, args)
		case "rename":
			err = a.Rename(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "comment":
			if len(args) >= 2 {
				args = []string{args[0], restAfter(line, 2)}
			}
			err = a.Comment(ctx, args)
		case "uncomment":
			err = a.Uncomment(ctx, args)
		case "author":
			err = a.SetAuthor(ctx, args)
		case "download":
			err = a.Download(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			err = nil
		}

		if errors.Is(err, errUsage) {
			printlnFn(err.Error())
		}
	}
}

// restAfter returns line with its first n fields removed, keeping the
// spacing inside the remainder intact.
func restAfter(line string, n int) string {
	rest := strings.TrimRight(line, "\r\n")
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	return strings.TrimSpace(rest)
}
