// The commands package holds the tubes command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/teichholz/go-tubes/config"
	"github.com/teichholz/go-tubes/ctc"
	"github.com/teichholz/go-tubes/files"
	"github.com/teichholz/go-tubes/plot"
	"github.com/teichholz/go-tubes/tube"
)

var Version = "dev"

type App struct {
	log       *slog.Logger
	level     *slog.LevelVar
	cfg       *config.Config
	passes    *Passes
	newScreen func() (tcell.Screen, error)

	verbose     bool
	outPath     string
	propagation string
	metricsAddr string
}

// level is raised to debug by --verbose.
func NewApp(log *slog.Logger, level *slog.LevelVar) *App {
	return &App{
		log:       log,
		level:     level,
		cfg:       config.NewConfig(log),
		passes:    NewPasses(),
		newScreen: tcell.NewScreen,
	}
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "tubes",
		Short:         "Contract interval tubes enclosing a trajectory and its derivative",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose && a.level != nil {
				a.level.Set(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVarP(&a.propagation, "propagation", "p", "", "override the scenario propagation (forward, backward, both)")

	contract := &cobra.Command{
		Use:   "contract [scenario]",
		Short: "Contract a scenario to its fixpoint and print the slices",
		Long: `Contract a scenario to its fixpoint and print the slices.
Without a scenario the default scenario of the configuration directory is
used, written there from the built-in one when missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(args)
			if err != nil {
				return err
			}
			_, err = a.contract(s, cmd.OutOrStdout())
			return err
		},
	}
	contract.Flags().StringVarP(&a.outPath, "out", "o", "", "also write the slice table to this file")

	watch := &cobra.Command{
		Use:   "watch <scenario>",
		Short: "Contract a scenario again whenever its file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
	watch.Flags().StringVarP(&a.outPath, "out", "o", "", "also write the slice table to this file")
	watch.Flags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	plotCmd := &cobra.Command{
		Use:   "plot [scenario]",
		Short: "Contract a scenario and draw it on the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(args)
			if err != nil {
				return err
			}
			return a.plot(cmd.Context(), s)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tubes %s\n", Version)
		},
	}

	root.AddCommand(contract, watch, plotCmd, version)
	return root
}

func (a *App) load(args []string) (*config.Scenario, error) {
	if len(args) > 0 {
		return config.Load(args[0])
	}
	if err := a.cfg.Init(); err != nil {
		return nil, err
	}
	return config.Load(a.cfg.ScenarioPath())
}

func (a *App) deriv(s *config.Scenario, dir ctc.Propagation) (*ctc.Deriv, error) {
	sc := *s
	if dir != 0 {
		sc.Propagation = dir.String()
	} else if a.propagation != "" {
		p, err := a.passes.Find(a.propagation)
		if err != nil {
			return nil, err
		}
		sc.Propagation = p.String()
	}
	return sc.Deriv(a.log)
}

func (a *App) contract(s *config.Scenario, out io.Writer) (*tube.Tube, error) {
	x, v, err := s.Build()
	if err != nil {
		return nil, err
	}
	d, err := a.deriv(s, 0)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	before := x.Volume()
	passes := ctc.Fixpoint(d.Contractor(), []ctc.Domain{ctc.Tube(x), ctc.Tube(v)}, s.MaxIter)
	a.log.Info("contracted scenario",
		"scenario", s.Name,
		"mode", d.Mode(),
		"passes", passes,
		"slices", x.Size(),
		"volume_before", before,
		"volume", x.Volume(),
		"codomain", x.Codomain().String(),
		"elapsed", time.Since(start))
	if x.IsEmpty() {
		a.log.Warn("scenario has no solution", "scenario", s.Name)
	}

	if err := x.WriteTable(out); err != nil {
		return nil, fmt.Errorf("print slices: %w", err)
	}
	if a.outPath != "" {
		if err := files.Write(a.outPath, x.Table()); err != nil {
			return nil, fmt.Errorf("write slices: %w", err)
		}
		a.log.Debug("wrote slices", "path", a.outPath)
	}
	return x, nil
}

func (a *App) watch(ctx context.Context, path string, out io.Writer) error {
	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server stopped", "addr", a.metricsAddr, "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		a.log.Info("serving metrics", "addr", a.metricsAddr)
	}

	run := func(s *config.Scenario, err error) {
		if err != nil {
			a.log.Error("could not load scenario", "path", path, "err", err)
			return
		}
		if _, err := a.contract(s, out); err != nil {
			a.log.Error("could not contract scenario", "scenario", s.Name, "err", err)
		}
	}
	run(config.Load(path))
	return a.cfg.Watch(ctx, path, run)
}

func (a *App) plot(ctx context.Context, s *config.Scenario) error {
	x, err := a.contract(s, io.Discard)
	if err != nil {
		return err
	}
	_, v, err := s.Build()
	if err != nil {
		return err
	}

	screen, err := a.newScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(plot.DefaultStyle)
	screen.Clear()

	session := plot.NewSession(screen, a.log, s.Name, x)
	session.OnStep(func(dir ctc.Propagation) bool {
		d, err := a.deriv(s, dir)
		if err != nil {
			a.log.Error("could not build contractor", "err", err)
			return false
		}
		return d.Contract(x, v)
	})
	return session.Run(ctx)
}
