package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kailas-cloud/paramsearch/internal/config"
	dbRedis "github.com/kailas-cloud/paramsearch/internal/db/redis"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/params"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/query"
	"github.com/kailas-cloud/paramsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/paramsearch/internal/usecase/search"
	"github.com/kailas-cloud/paramsearch/pkg/sdk"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	ConfigPath string
	Index      string
	JSON       bool
	Remote     bool
}

// compileOutput is the JSON form of an offline compilation.
type compileOutput struct {
	Index      string          `json:"index"`
	Mode       string          `json:"mode"`
	Body       *query.Compiled `json:"body"`
	RedisQuery string          `json:"redis_query"`
	Sort       string          `json:"sort"`
	Dropped    []string        `json:"dropped,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [query|-]",
		Short: "Compile parameters without running them",
		Long: `Compile a query string such as "name_cont=war&s=name+desc" (or a JSON
object with --json) into an Elasticsearch request body and a Redis FT.SEARCH
query. Compilation runs locally using field types from --config unless
--remote is given. Reads stdin when the argument is "-" or missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if opts.Remote {
				return runRemoteCompile(cmd.Context(), opts, input, cmd.OutOrStdout())
			}
			return runCompile(cmd.Context(), opts, input, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "server config file with index field types")
	cmd.Flags().StringVarP(&opts.Index, "index", "i", "default", "index whose schema applies")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "input is a JSON object")
	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "compile on the server")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, input string, w io.Writer) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := opts.Logger()
	defer func() { _ = logger.Sync() }()

	compilerOpts, err := cfg.CompilerOptions(logger.Named("compiler"))
	if err != nil {
		return err
	}
	svc := searchuc.New(query.NewCompiler(compilerOpts...), nil, nil, searchuc.Config{
		Globalize:     *cfg.Search.Globalize,
		Escape:        *cfg.Search.Escape,
		DefaultLocale: cfg.Search.DefaultLocale,
		Schemas:       cfg.Schemas(),
	}, logger)

	p, err := parseParams(input, opts.JSON)
	if err != nil {
		return err
	}
	req, err := request.New(opts.Index, p, request.DefaultPageWindow(), nil, opts.Locale)
	if err != nil {
		return err
	}
	compiled, err := svc.Compile(ctx, req)
	if err != nil {
		return err
	}
	ft, err := dbRedis.RenderQuery(compiled.Query())
	if err != nil {
		return fmt.Errorf("render redis query: %w", err)
	}

	out := compileOutput{
		Index:      opts.Index,
		Mode:       string(compiled.Mode),
		Body:       compiled,
		RedisQuery: ft,
		Sort:       compiled.Sort.String(),
		Dropped:    compiled.Dropped,
	}
	if opts.Format == "json" {
		return printJSON(w, out)
	}

	body, err := compiled.MarshalJSON()
	if err != nil {
		return err
	}
	section(w, "Elasticsearch", indentJSON(body))
	section(w, "Redis", ft)
	section(w, "Sort", out.Sort)
	section(w, "Mode", out.Mode)
	section(w, "Dropped", dropped(out.Dropped))
	return nil
}

func runRemoteCompile(ctx context.Context, opts *CompileOptions, input string, w io.Writer) error {
	c, err := opts.client()
	if err != nil {
		return err
	}

	var res *sdk.CompileResponse
	if opts.JSON {
		m, perr := parseOrdered(input)
		if perr != nil {
			return perr
		}
		res, err = c.CompileParams(ctx, opts.Index, m)
	} else {
		res, err = c.Compile(ctx, opts.Index, input)
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return printJSON(w, res)
	}
	section(w, "Elasticsearch", indentJSON(res.Body))
	section(w, "Mode", res.Mode)
	section(w, "Dropped", dropped(res.Dropped))
	return nil
}

// loadConfig parses the config file at path, or returns defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		var cfg config.Config
		cfg.ApplyDefaults()
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	return config.Parse(data)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func parseParams(input string, isJSON bool) (*params.Params, error) {
	if !isJSON {
		p, err := params.ParseQuery(input)
		if err != nil {
			return nil, fmt.Errorf("parse query: %w", err)
		}
		return p, nil
	}
	p := params.New()
	if input == "" {
		return p, nil
	}
	if err := p.UnmarshalJSON([]byte(input)); err != nil {
		return nil, err
	}
	return p, nil
}

func parseOrdered(input string) (*orderedmap.OrderedMap[string, any], error) {
	m := orderedmap.New[string, any]()
	if input == "" {
		return m, nil
	}
	if err := m.UnmarshalJSON([]byte(input)); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	return m, nil
}
