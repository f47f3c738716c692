package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/mailtrack/internal/logging"
	"github.com/dmitrijs2005/mailtrack/internal/netx"
	"github.com/dmitrijs2005/mailtrack/internal/tracker"
)

// fetchFn is a test seam for attachment downloads.
var fetchFn = netx.Fetch

// Options tune the console.
type Options struct {
	// DownloadDir receives attachments saved with "download".
	DownloadDir string
	// RequestTimeout bounds each attachment download; zero means no limit.
	RequestTimeout time.Duration
}

// App is one console session.
type App struct {
	store  *tracker.Store
	intake *tracker.Intake
	notify tracker.Notifier
	log    logging.Logger
	opts   Options

	filter tracker.Filter
	author string

	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds a console reading from stdin and writing to stdout.
// n should be the same notifier the intake flow reports to.
func NewApp(store *tracker.Store, intake *tracker.Intake, n tracker.Notifier, log logging.Logger, opts Options) *App {
	if opts.DownloadDir == "" {
		opts.DownloadDir = "downloads"
	}
	return &App{
		store:  store,
		intake: intake,
		notify: n,
		log:    log,
		opts:   opts,
		filter: tracker.Filter{Status: tracker.FilterAll},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run loads the records and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		a.notify.Notify(tracker.LevelError, "Failed to load mail: "+err.Error())
		a.log.Error(ctx, "initial load failed", "error", err)
		return err
	}
	_ = a.Stats(ctx)
	printlnFn(`Type "help" for commands.`)
	runREPL(ctx, a, a.statusLine, a.reader)
	return nil
}

// statusLine summarises the current view for the prompt.
func (a *App) statusLine() string {
	shown := len(a.store.List(a.filter))
	line := fmt.Sprintf("%s · %d shown · %s first", a.filterName(), shown, a.filter.Order)
	if a.filter.Search != "" {
		line += fmt.Sprintf(" · %q", a.filter.Search)
	}
	return line
}

func (a *App) filterName() string {
	if a.filter.Status == "" {
		return tracker.FilterAll
	}
	return a.filter.Status
}

// argOrPrompt returns args[i], or asks for it when it was not given.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}
