package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/botexec/code"
	"github.com/jonwraymond/botexec/config"
	"github.com/jonwraymond/botexec/exec"
	"github.com/jonwraymond/botexec/logging"
	"github.com/jonwraymond/botexec/mcpserver"
	"github.com/jonwraymond/botexec/world"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "botexec",
		Short:        "Run robot control scripts against grid levels",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ~/.botexec/config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(runCmd(flags))
	root.AddCommand(vetCmd(flags))
	root.AddCommand(levelsCmd(flags))
	root.AddCommand(capsCmd(flags))
	root.AddCommand(serveCmd(flags))
	return root
}

// load builds an Exec from the config file, environment and flags.
// A missing default config file is not an error.
func load(flags *globalFlags) (*exec.Exec, code.Logger, error) {
	path := flags.configPath
	if path == "" {
		if p := config.DefaultPath(); fileExists(p) {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.LogFormat = flags.logFormat
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	opts, err := cfg.ExecOptions(logger)
	if err != nil {
		return nil, nil, err
	}
	e, err := exec.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return e, logger, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readScript reads the script named by args, or stdin when args is empty
// or "-".
func readScript(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

func runCmd(flags *globalFlags) *cobra.Command {
	var levelKey string
	var asJSON bool
	var requireComplete bool

	cmd := &cobra.Command{
		Use:   "run [FILE]",
		Short: "Run a script on a level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := load(flags)
			if err != nil {
				return err
			}
			src, err := readScript(cmd, args)
			if err != nil {
				return err
			}

			res, err := e.Run(cmd.Context(), levelKey, src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printResult(out, res)
			}
			if requireComplete && !res.OK() {
				return fmt.Errorf("level %q not complete", res.Level)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&levelKey, "level", "l", "1", "level name or number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&requireComplete, "require-complete", false, "exit non-zero unless the level is solved")
	return cmd
}

func printResult(w io.Writer, res exec.Result) {
	fmt.Fprintf(w, "level:     %s\n", res.Level)
	fmt.Fprintf(w, "state:     %s\n", res.State)
	if res.Error != "" {
		fmt.Fprintf(w, "error:     %s\n", res.Error)
	}
	fmt.Fprintf(w, "actions:   %s\n", strings.Join(res.Actions, " "))
	if len(res.Partial) > 0 {
		fmt.Fprintf(w, "partial:   %s\n", strings.Join(res.Partial, " "))
	}
	fmt.Fprintf(w, "position:  (%d, %d) facing %s\n", res.Position[0], res.Position[1], title(res.Facing))
	fmt.Fprintf(w, "collected: %d (remaining %d)\n", res.Collected, res.Remaining)
	fmt.Fprintf(w, "complete:  %t\n", res.Complete)
	if res.Stdout != "" {
		fmt.Fprintf(w, "output:\n%s", res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			fmt.Fprintln(w)
		}
	}
}

// title renders a direction name for display, "east" as "East".
func title(facing string) string {
	d, err := world.ParseDirection(facing)
	if err != nil {
		return facing
	}
	return d.Title()
}

func vetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "vet [FILE]",
		Short: "Check a script without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := load(flags)
			if err != nil {
				return err
			}
			src, err := readScript(cmd, args)
			if err != nil {
				return err
			}
			if err := e.Vet(cmd.Context(), src); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func levelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := load(flags)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tGRID\tSTART\tFACING\tGOAL\tGEMS\tHINT")
			for _, l := range e.Levels() {
				fmt.Fprintf(tw, "%d\t%s\t%dx%d\t(%d, %d)\t%s\t(%d, %d)\t%d\t%s\n",
					l.Number, l.Name, l.GridSize, l.GridSize, l.Start[0], l.Start[1],
					title(l.Facing), l.Goal[0], l.Goal[1], l.Collectibles, l.Hint)
			}
			return tw.Flush()
		},
	}
}

func capsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "caps", Short: "Browse the functions scripts can call"}
	cmd.AddCommand(capsSearchCmd(flags))
	cmd.AddCommand(capsDescribeCmd(flags))
	return cmd
}

func capsSearchCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search capabilities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := load(flags)
			if err != nil {
				return err
			}
			hits, err := e.SearchCapabilities(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			for _, h := range hits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", h.Name, h.ShortDescription)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of results")
	return cmd
}

func capsDescribeCmd(flags *globalFlags) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "describe NAME",
		Short: "Show documentation for a capability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := load(flags)
			if err != nil {
				return err
			}
			detail := tooldoc.DetailFull
			if summary {
				detail = tooldoc.DetailSummary
			}
			doc, err := e.DescribeCapability(cmd.Context(), args[0], detail)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, doc.Summary)
			if doc.Notes != "" {
				fmt.Fprintln(out, doc.Notes)
			}
			if summary {
				return nil
			}
			examples, err := e.Catalog().Examples(args[0], 3)
			if err != nil {
				return err
			}
			for _, ex := range examples {
				fmt.Fprintf(out, "example: %s\n", ex.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print only the summary")
	return cmd
}

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, logger, err := load(flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("mcp server starting", "transport", "stdio", "levels", len(e.Levels()))
			err = mcpserver.New(e, logger).ServeStdio(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
