package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsonbind/internal/analyzer"
	"github.com/mcncl/jsonbind/internal/binder"
	"github.com/mcncl/jsonbind/internal/config"
	"github.com/mcncl/jsonbind/internal/errors"
	"github.com/mcncl/jsonbind/internal/generator"
	"github.com/mcncl/jsonbind/internal/logger"
	"github.com/mcncl/jsonbind/internal/models"
	"github.com/mcncl/jsonbind/internal/parser"
	"github.com/mcncl/jsonbind/internal/records"
	"github.com/mcncl/jsonbind/internal/resolver"
	"github.com/mcncl/jsonbind/internal/schema"
)

// CLI defines the command-line interface
type CLI struct {
	Config     string `help:"Path to config file. Defaults to the nearest .jsonbind.yml." short:"c" type:"path"`
	Debug      bool   `help:"Trace skipped fields to stderr." short:"d"`
	Version    bool   `help:"Show version information." short:"v"`
	DateFormat string `help:"Date pattern for date fields, e.g. yyyy-MM-dd HH:mm." name:"date-format"`
	Timezone   string `help:"Time zone dates are read and written in, e.g. Asia/Shanghai."`
	KeyStyle   string `help:"How declared names become keys (none, snake, camel, lower_camel, kebab)." name:"key-style"`
	Pretty     bool   `help:"Indent the output."`

	Bind     BindCmd     `cmd:"" default:"1" help:"Bind JSON into a record and print the record as JSON."`
	Get      GetCmd      `cmd:"" help:"Print the part of a document found at a path."`
	Fields   FieldsCmd   `cmd:"" help:"List the fields a record registers, or the available records."`
	Scaffold ScaffoldCmd `cmd:"" help:"Generate record declarations from a sample document."`
}

// Context holds the runtime context shared by all commands
type Context struct {
	Config *config.Config
	Binder *binder.Binder
	Logger *logger.Logger
	Stdin  io.Reader
	Out    io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	app, err := kong.New(&cli,
		kong.Name("jsonbind"),
		kong.Description("Bind JSON documents onto typed records and back"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	kctx, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "jsonbind: error: %s\n", err)
		fmt.Fprintf(stderr, "\nFor help, run: jsonbind --help\n")
		return 1
	}

	// Show version and exit if requested
	if cli.Version {
		fmt.Fprintf(stdout, "jsonbind version %s\n", Version)
		return 0
	}

	ctx, err := newContext(&cli, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	if err := kctx.Run(ctx); err != nil {
		ctx.Logger.Error("command failed", "command", kctx.Command(), "error", err)
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: jsonbind --help\n")
		return 1
	}
	return 0
}

// newContext loads configuration with CLI precedence and builds the binder
func newContext(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := cli.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.Overrides{
		DateFormat: cli.DateFormat,
		Timezone:   cli.Timezone,
		KeyStyle:   cli.KeyStyle,
		Debug:      cli.Debug,
	}
	if cli.Pretty {
		pretty := true
		overrides.Pretty = &pretty
	}

	level := logger.LevelWarn
	if cli.Debug {
		level = logger.LevelDebug
	}
	log := logger.New(stderr, level)

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}
	// the config file may turn debugging on as well
	if cfg.Dev.Debug {
		log.SetLevel(logger.LevelDebug)
	}
	if configPath != "" {
		log.Debug("config loaded", "path", configPath)
	}

	b, err := binder.FromConfig(cfg, log)
	if err != nil {
		return nil, errors.NewConfigError(err.Error(), err)
	}

	return &Context{
		Config: cfg,
		Binder: b,
		Logger: log,
		Stdin:  stdin,
		Out:    stdout,
	}, nil
}

// BindCmd binds a document into one of the registered records
type BindCmd struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Path   string `help:"Path of the object to bind from, e.g. result or data/items/0. Defaults to binding.path." short:"p"`
	Record string `help:"Record type to bind into." short:"r" default:"person"`
	Show   bool   `help:"Print the record's text form instead of JSON." short:"s"`
}

// Run executes the bind command
func (c *BindCmd) Run(ctx *Context) error {
	factory, err := records.Lookup(c.Record)
	if err != nil {
		return err
	}

	ir, err := readInput(c.Input, ctx.Stdin)
	if err != nil {
		return err
	}

	path := c.Path
	if path == "" {
		path = ctx.Config.Binding.Path
	}
	target, found := resolver.Lookup(ir.Root, path)
	if !found {
		ctx.Logger.Warn("path not found, nothing bound", "path", path)
	}

	rec := factory()
	ctx.Binder.BindValue(rec, target)
	if ctx.Logger.Enabled(logger.LevelDebug) {
		ctx.Logger.Debug("record bound", "record", c.Record, "path", path, "fields", len(ctx.Binder.Describe(rec)))
	}

	if s, ok := rec.(fmt.Stringer); ok && c.Show {
		return writeOutput(ctx.Out, s.String())
	}
	return writeOutput(ctx.Out, ctx.Binder.Marshal(rec))
}

// GetCmd prints the subtree at a path
type GetCmd struct {
	Path  string `arg:"" optional:"" help:"Path to resolve. The whole document when omitted."`
	Input string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
}

// Run executes the get command
func (c *GetCmd) Run(ctx *Context) error {
	ir, err := readInput(c.Input, ctx.Stdin)
	if err != nil {
		return err
	}

	v, found := resolver.Lookup(ir.Root, c.Path)
	if !found {
		ctx.Logger.Debug("path not found", "path", c.Path)
		v = models.NullValue()
	}
	return writeOutput(ctx.Out, ctx.Binder.Render(v))
}

// FieldsCmd describes the registered fields of a record
type FieldsCmd struct {
	Record string `arg:"" optional:"" help:"Record type to describe. Lists the record types when omitted."`
}

// Run executes the fields command
func (c *FieldsCmd) Run(ctx *Context) error {
	if c.Record == "" {
		return writeOutput(ctx.Out, strings.Join(records.Names(), "\n"))
	}

	factory, err := records.Lookup(c.Record)
	if err != nil {
		return err
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tKIND\tTYPE\tOPTIONAL")
	for _, info := range ctx.Binder.Describe(factory()) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", info.Key, info.Name, info.Kind, info.Type, info.Optional)
	}
	if err := w.Flush(); err != nil {
		return errors.NewOutputError("failed to render field table", err)
	}
	return writeOutput(ctx.Out, sb.String())
}

// ScaffoldCmd generates record declarations from a sample document or a
// JSON Schema
type ScaffoldCmd struct {
	Input   string `help:"Path to sample JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Path    string `help:"Path of the object to scaffold from. Defaults to the whole document." short:"p"`
	Name    string `help:"Name for the root record. Defaults to the schema title, or Record." short:"n"`
	Package string `help:"Package name for generated code." default:"records"`
	Output  string `help:"Path to output Go file. If not specified, writes to stdout." short:"o" type:"path"`
	Schema  bool   `help:"Treat the input as a JSON Schema document instead of a sample."`
}

// Run executes the scaffold command
func (c *ScaffoldCmd) Run(ctx *Context) error {
	var result analyzer.Result
	var err error
	if c.Schema {
		result, err = c.fromSchema(ctx)
	} else {
		result, err = c.fromSample(ctx)
	}
	if err != nil {
		return err
	}
	ctx.Logger.Debug("records inferred", "records", len(result.Records), "schema", c.Schema)

	code, err := generator.NewGenerator().GenerateRecords(result, c.Package)
	if err != nil {
		return errors.NewScaffoldError("failed to generate records", err)
	}

	if c.Output == "" {
		return writeOutput(ctx.Out, code)
	}
	if err := os.WriteFile(c.Output, []byte(code), 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
	}
	ctx.Logger.Info("records written", "path", c.Output)
	return nil
}

func (c *ScaffoldCmd) fromSample(ctx *Context) (analyzer.Result, error) {
	ir, err := readInput(c.Input, ctx.Stdin)
	if err != nil {
		return analyzer.Result{}, err
	}

	root, found := resolver.Lookup(ir.Root, c.Path)
	if !found {
		return analyzer.Result{}, errors.NewInputError(fmt.Sprintf("path %q not found in sample", c.Path), nil)
	}
	sample := models.IntermediateRepresentation{Root: root, RootIsArray: root.Kind() == models.Array}

	result, err := analyzer.NewAnalyzer().Analyze(sample, c.Name)
	if err != nil {
		return analyzer.Result{}, errors.NewScaffoldError("failed to analyze JSON structure", err)
	}
	return result, nil
}

func (c *ScaffoldCmd) fromSchema(ctx *Context) (analyzer.Result, error) {
	if c.Path != "" {
		return analyzer.Result{}, errors.NewInputError("--path cannot be combined with --schema", nil)
	}

	var doc *schema.Schema
	var err error
	if c.Input != "" {
		doc, err = schema.ParseFile(c.Input)
	} else {
		var data []byte
		data, err = io.ReadAll(ctx.Stdin)
		if err != nil {
			return analyzer.Result{}, errors.NewInputError("failed to read from stdin", err)
		}
		doc, err = schema.ParseBytes(data)
	}
	if err != nil {
		return analyzer.Result{}, errors.NewParsingError("failed to parse JSON Schema", err)
	}

	result, err := schema.NewConverter(doc).Convert(c.Name)
	if err != nil {
		return analyzer.Result{}, errors.NewScaffoldError("failed to convert JSON Schema", err)
	}
	return result, nil
}

// readInput parses JSON from a file or stdin
func readInput(path string, stdin io.Reader) (models.IntermediateRepresentation, error) {
	if path != "" {
		return parser.ParseFile(path)
	}

	// A terminal on stdin means nothing was piped in
	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	return parser.Parse(stdin)
}

// writeOutput writes text followed by a newline
func writeOutput(out io.Writer, text string) error {
	if _, err := fmt.Fprintln(out, strings.TrimSpace(text)); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}
