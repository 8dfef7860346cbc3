package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nguyentantai21042004/minutes/internal/apperr"
	"github.com/nguyentantai21042004/minutes/internal/asr"
	"github.com/nguyentantai21042004/minutes/internal/audio"
	"github.com/nguyentantai21042004/minutes/internal/config"
	"github.com/nguyentantai21042004/minutes/internal/doctor"
	"github.com/nguyentantai21042004/minutes/internal/logger"
	"github.com/nguyentantai21042004/minutes/internal/processor"
	"github.com/nguyentantai21042004/minutes/internal/store"
	"github.com/nguyentantai21042004/minutes/internal/summarizer"
	"github.com/nguyentantai21042004/minutes/internal/watcher"
	"github.com/nguyentantai21042004/minutes/pkg/executor"
	"github.com/spf13/pflag"
)

const usage = `minutes - local meeting transcription, search and summaries

Usage:
  minutes <command> [flags] [args]

Commands:
  transcribe FILE      transcribe an audio file and store it
  summarize TARGET     summarize a meeting id or a transcript file
  search QUERY         full-text search over stored transcripts
  export MEETING_ID    write md, srt, json or docx exports
  meetings             list stored meetings
  delete MEETING_ID    delete a meeting and its index rows
  doctor               check local prerequisites
  watch                transcribe every recording dropped into the inbox

Every command accepts --config PATH (YAML). Run "minutes <command> --help" for flags.
`

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitFailure = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Print(usage)
		return exitOK
	}

	cmd, rest := args[0], args[1:]
	commands := map[string]func(*app, []string) error{
		"transcribe": (*app).transcribe,
		"summarize":  (*app).summarize,
		"search":     (*app).search,
		"export":     (*app).export,
		"meetings":   (*app).meetings,
		"delete":     (*app).delete,
		"watch":      (*app).watch,
	}

	if cmd == "doctor" {
		return runDoctor(rest)
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	if err := withApp(cmd, rest, fn); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return exitFailure
	}
	return exitOK
}

var errUsage = errors.New("usage")

// app holds the services built once per process from the loaded config.
type app struct {
	ctx   context.Context
	cfg   *config.Config
	log   logger.Logger
	store *store.Store
	proc  processor.Processor
	flags *pflag.FlagSet
}

// newFlagSet returns a flag set with the shared --config flag.
func newFlagSet(name string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to a YAML config file")
	return fs, configPath
}

func withApp(cmd string, args []string, fn func(*app, []string) error) error {
	fs, configPath := newFlagSet(cmd)
	a := &app{ctx: context.Background(), flags: fs}
	registerFlags(cmd, fs)
	if err := fs.Parse(args); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			return errUsage
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()
	a.store = st

	exec := executor.New()
	factory, err := asr.NewFactory(cfg.ASR, exec, a.log)
	if err != nil {
		return err
	}
	a.proc = processor.New(cfg, processor.Deps{
		Converter:  audio.NewFFmpeg(cfg.FFmpeg.Path, exec, a.log),
		VAD:        audio.NewVAD(cfg.VAD, exec),
		NewBackend: factory,
		Store:      st,
		Summarizer: summarizer.New(summarizer.Options{
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			PromptsDir: cfg.Paths.PromptsDir,
		}, a.log),
		Executor: exec,
		Logger:   a.log,
	})

	return fn(a, fs.Args())
}

func registerFlags(cmd string, fs *pflag.FlagSet) {
	switch cmd {
	case "transcribe":
		fs.String("model", "", "model alias: small, medium or large (default from config)")
		fs.String("language", "", "language code or auto (default from config)")
		fs.Bool("vad", false, "split on speech with voice activity detection (default from config)")
	case "summarize":
		fs.String("template", summarizer.DefaultTemplate, "prompt template: "+strings.Join(summarizer.Templates(), ", "))
	case "search":
		fs.Int64("meeting-id", 0, "only search this meeting")
		fs.Int("limit", store.DefaultSearchLimit, "maximum number of hits")
	case "export":
		fs.String("format", "all", "md, srt, json, docx or all")
	case "meetings":
		fs.Int("limit", 20, "maximum number of meetings, 0 for all")
	}
}

func oneArg(args []string, name string) (string, error) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one %s argument\n", name)
		return "", errUsage
	}
	return args[0], nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid meeting id %q", s)
	}
	return id, nil
}

func (a *app) transcribe(args []string) error {
	path, err := oneArg(args, "FILE")
	if err != nil {
		return err
	}

	opts := processor.TranscribeOptions{UseVAD: a.cfg.VAD.Enabled}
	opts.Model, _ = a.flags.GetString("model")
	opts.Language, _ = a.flags.GetString("language")
	if a.flags.Changed("vad") {
		opts.UseVAD, _ = a.flags.GetBool("vad")
	}

	out, err := a.proc.Transcribe(a.ctx, path, opts)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Meeting %d", out.Meeting.ID)))
	fmt.Printf("%s %s\n", LabelStyle.Render("Language:"), out.Language)
	fmt.Printf("%s %d\n", LabelStyle.Render("Segments:"), out.SegmentCount)
	fmt.Printf("%s %.2fs\n", LabelStyle.Render("Duration:"), out.Meeting.DurationSeconds)
	fmt.Printf("%s %s (%s)\n", LabelStyle.Render("Engine:"), out.Meeting.ModelName, out.Engine)
	printExports(out.ExportPaths)
	return nil
}

func (a *app) summarize(args []string) error {
	target, err := oneArg(args, "TARGET")
	if err != nil {
		return err
	}
	template, _ := a.flags.GetString("template")

	out, err := a.proc.Summarize(a.ctx, target, processor.SummarizeOptions{Template: template})
	if err != nil {
		return err
	}

	title := "Summary"
	if out.MeetingID != 0 {
		title = fmt.Sprintf("Summary of meeting %d", out.MeetingID)
	}
	fmt.Println(TitleStyle.Render(title))
	method := out.Summary.Method
	if out.Summary.LLMModel != "" {
		method += " (" + out.Summary.LLMModel + ")"
	}
	fmt.Printf("%s %s, %s %s\n\n", LabelStyle.Render("Template:"), out.Summary.TemplateName, LabelStyle.Render("method:"), method)
	fmt.Println(out.Summary.Text)
	return nil
}

func (a *app) search(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "expected a QUERY argument")
		return errUsage
	}
	query := strings.Join(args, " ")

	opts := processor.SearchOptions{}
	opts.Limit, _ = a.flags.GetInt("limit")
	if a.flags.Changed("meeting-id") {
		id, _ := a.flags.GetInt64("meeting-id")
		opts.MeetingID = &id
	}

	hits, err := a.proc.Search(a.ctx, query, opts)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%s %s %s\n",
			LabelStyle.Render(fmt.Sprintf("meeting %d #%d", h.MeetingID, h.SegmentID)),
			LabelStyle.Render(fmt.Sprintf("[%.2fs -> %.2fs]", h.Start, h.End)),
			SnippetStyle.Render(h.Snippet))
	}
	return nil
}

func (a *app) export(args []string) error {
	arg, err := oneArg(args, "MEETING_ID")
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	format, _ := a.flags.GetString("format")

	if strings.EqualFold(format, "all") {
		paths, err := a.proc.ExportAll(a.ctx, id)
		if err != nil {
			return err
		}
		printExports(paths)
		return nil
	}

	path, err := a.proc.Export(a.ctx, id, format)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func (a *app) meetings(args []string) error {
	limit, _ := a.flags.GetInt("limit")
	meetings, err := a.proc.Meetings(a.ctx, limit)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		fmt.Println("No meetings yet.")
		return nil
	}
	for _, m := range meetings {
		fmt.Printf("%s  %s  %-8s %8.1fs  %s  %s\n",
			TitleStyle.Render(fmt.Sprintf("%4d", m.ID)), m.CreatedAt, m.Language,
			m.DurationSeconds, m.ModelName, LabelStyle.Render(m.SourcePath))
	}
	return nil
}

func (a *app) delete(args []string) error {
	arg, err := oneArg(args, "MEETING_ID")
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if err := a.proc.DeleteMeeting(a.ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted meeting %d\n", id)
	return nil
}

func (a *app) watch(args []string) error {
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	w, err := watcher.New(a.cfg.Paths.Inbox, a.proc.Process, a.log, 500*time.Millisecond)
	if err != nil {
		return err
	}
	defer w.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "minutes is watching %s", a.cfg.Paths.Inbox)
	a.log.Info(ctx, "Backend: %s, model: %s, VAD: %t", a.cfg.ASR.Backend, a.cfg.ASR.Model, a.cfg.VAD.Enabled)
	a.log.Info(ctx, "Press Ctrl+C to stop")
	a.log.Info(ctx, "========================================")

	select {
	case <-sigChan:
		a.log.Info(ctx, "Shutdown signal received")
		cancel()
		<-errChan
		return nil
	case err := <-errChan:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("watcher: %w", err)
	}
}

// runDoctor builds only what the checks need so it works on a broken setup.
func runDoctor(args []string) int {
	fs, configPath := newFlagSet("doctor")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return exitUsage
	}
	log := logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	exec := executor.New()

	// no store: the database is one of the things being checked
	proc := processor.New(cfg, processor.Deps{
		Converter: audio.NewFFmpeg(cfg.FFmpeg.Path, exec, log),
		Executor:  exec,
		Logger:    log,
	})
	checks := proc.Doctor(context.Background())

	fmt.Println(TitleStyle.Render("minutes doctor"))
	for _, c := range checks {
		fmt.Printf("%s %s %s\n", nameColumn.Render(c.Name), statusStyle(c.Status).Render(strings.ToUpper(string(c.Status))), c.Detail)
	}
	if doctor.Failed(checks) {
		return exitUsage
	}
	return exitOK
}

func printExports(paths map[string]string) {
	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		fmt.Printf("%s %s\n", LabelStyle.Render(fmt.Sprintf("%-5s", f+":")), paths[f])
	}
}
