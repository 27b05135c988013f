package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pandharkardeep/minisocial/internal/config"
	"github.com/pandharkardeep/minisocial/internal/graph"
	"github.com/pandharkardeep/minisocial/internal/loader"
	"github.com/pandharkardeep/minisocial/internal/logging"
	"github.com/pandharkardeep/minisocial/internal/metrics"
	"github.com/pandharkardeep/minisocial/internal/pymk"
	"github.com/pandharkardeep/minisocial/internal/server"
)

// app carries the state every subcommand shares once the root pre-run
// has loaded configuration and data.
type app struct {
	out    io.Writer
	errOut io.Writer

	cfgPath   string
	logLevel  string
	logFormat string
	edges     string
	users     string
	snapshot  string

	cfg config.Config
	log *slog.Logger
	g   *graph.SocialGraph
	svc *pymk.Service
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "minisocial",
		Short:         "Friend suggestions over an in-memory social graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "YAML config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug | info | warn | error")
	pf.StringVar(&a.logFormat, "log-format", "", "text | json")
	pf.StringVar(&a.edges, "edges", "", "edges CSV (u,v per line)")
	pf.StringVar(&a.users, "users", "", "users CSV (id,name,age,city,tags[,email])")
	pf.StringVar(&a.snapshot, "snapshot", "", "load the graph from a JSON snapshot instead of CSV")

	root.AddCommand(
		a.serveCmd(),
		a.suggestCmd(),
		a.statsCmd(),
		a.profileCmd(),
		a.exportCmd(),
		a.snapshotCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("edges") {
		cfg.Data.Edges = a.edges
	}
	if flags.Changed("users") {
		cfg.Data.Users = a.users
	}
	a.cfg = cfg
	a.log = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "minisocial"}, a.errOut)

	if a.g, err = a.loadGraph(); err != nil {
		return err
	}
	a.svc = pymk.NewService(a.g, a.g.Users, cfg.PYMK(), a.log)
	metrics.ObserveGraph(a.g.NumVertices(), a.g.NumEdges())
	a.log.Info("graph loaded", "vertices", a.g.NumVertices(), "edges", a.g.NumEdges(), "users", a.g.Users.Len())
	return nil
}

// loadGraph reads the snapshot when one is given, otherwise the edges CSV
// (required) and the users CSV. A missing users file only warns; a bad one
// fails.
func (a *app) loadGraph() (*graph.SocialGraph, error) {
	if a.snapshot != "" {
		return loader.LoadJSONFile(a.snapshot, a.cfg.GraphOptions()...)
	}
	g := graph.New(a.cfg.GraphOptions()...)
	if _, err := loader.LoadEdgesFile(a.cfg.Data.Edges, g); err != nil {
		return nil, err
	}
	if a.cfg.Data.Users != "" {
		_, err := loader.LoadUsersFile(a.cfg.Data.Users, g.Users)
		switch {
		case errors.Is(err, os.ErrNotExist):
			a.log.Warn("users file not found", "path", a.cfg.Data.Users)
		case err != nil:
			return nil, err
		}
	}
	return g, nil
}

func parseUserID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad user id %q: %w", s, err)
	}
	return id, nil
}

// displayName falls back to the numeric id for users without a profile.
func (a *app) displayName(id uint64) string {
	if u, ok := a.g.Users.Get(id); ok {
		return u.Name
	}
	return strconv.FormatUint(id, 10)
}

// -------- serve --------

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			mux := http.NewServeMux()
			server.AttachRoutes(mux, a.svc, a.g, server.Defaults{
				K:               a.cfg.Suggest.K,
				Radius:          a.cfg.Suggest.Radius,
				DiameterSamples: a.cfg.Graph.DiameterSamples,
			}, a.log)

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           server.RequestLog(a.log, metrics.HTTPMetricsMiddleware(mux)),
				ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errc := make(chan error, 1)
			go func() {
				a.log.Info("minisocial listening", "addr", srv.Addr)
				errc <- srv.ListenAndServe()
			}()
			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// -------- suggest --------

type suggestFlags struct {
	k       int
	radius  int
	weights []int
}

func (f *suggestFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.k, "k", 0, "number of suggestions (default from config)")
	cmd.Flags().IntVar(&f.radius, "radius", 0, "maximum hop distance (default from config)")
	cmd.Flags().IntSliceVar(&f.weights, "weights", nil, "scoring weights mutual,tags,distance")
}

// apply resolves k and radius against the config and installs any weights.
func (f *suggestFlags) apply(cmd *cobra.Command, a *app) (k, radius int, err error) {
	k, radius = a.cfg.Suggest.K, a.cfg.Suggest.Radius
	if cmd.Flags().Changed("k") {
		k = f.k
	}
	if cmd.Flags().Changed("radius") {
		radius = f.radius
	}
	if cmd.Flags().Changed("weights") {
		if len(f.weights) != 3 {
			return 0, 0, errors.New("--weights wants exactly three integers: mutual,tags,distance")
		}
		a.svc.SetWeights(f.weights[0], f.weights[1], f.weights[2])
	}
	return k, radius, nil
}

func (a *app) suggestCmd() *cobra.Command {
	var f suggestFlags
	cmd := &cobra.Command{
		Use:   "suggest <user-id>",
		Short: "Print friend suggestions for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			k, radius, err := f.apply(cmd, a)
			if err != nil {
				return err
			}
			recs := a.svc.Suggest(uid, k, radius)
			name := a.displayName(uid)
			if len(recs) == 0 {
				fmt.Fprintf(a.out, "No suggestions for %s\n", name)
				return nil
			}
			fmt.Fprintf(a.out, "Suggestions for %s:\n", name)
			for _, v := range recs {
				if u, ok := a.g.Users.Get(v); ok {
					fmt.Fprintf(a.out, "  - %s (%d, %d, %s)\n", u.Name, v, u.Age, u.City)
				} else {
					fmt.Fprintf(a.out, "  - %d (%d)\n", v, v)
				}
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// -------- stats --------

func (a *app) statsCmd() *cobra.Command {
	var samples int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print global graph metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("samples") {
				samples = a.cfg.Graph.DiameterSamples
			}
			st := a.g.Stats(samples)
			fmt.Fprintf(a.out, "Vertices: %d, Edges: %d\n", st.Vertices, st.Edges)
			fmt.Fprintf(a.out, "Components: %d\n", st.Components)
			fmt.Fprintf(a.out, "Average degree: %.4f\n", st.AvgDegree)
			fmt.Fprintf(a.out, "Approx. diameter: %d\n", st.Diameter)
			fmt.Fprintf(a.out, "Average clustering: %.4f\n", st.Clustering)
			return nil
		},
	}
	cmd.Flags().IntVar(&samples, "samples", graph.DefaultDiameterSamples, "BFS roots for the diameter estimate")
	return cmd
}

// -------- profile --------

func (a *app) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Print a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			u, ok := a.g.Users.Get(uid)
			if !ok {
				fmt.Fprintf(a.out, "User %d not found.\n", uid)
				return nil
			}
			fmt.Fprintf(a.out, "Profile of %s (%d)\n", u.Name, u.ID)
			fmt.Fprintf(a.out, "  Age: %d\n  City: %s\n  Tags: %s\n", u.Age, u.City, strings.Join(u.Tags, ", "))
			fmt.Fprintf(a.out, "  Friends: %d\n", a.g.Degree(uid))
			return nil
		},
	}
}

// -------- export --------

func (a *app) exportCmd() *cobra.Command {
	var f suggestFlags
	cmd := &cobra.Command{
		Use:   "export <user-id> [path]",
		Short: "Write suggestions for a user to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			path := fmt.Sprintf("suggestions_%d.csv", uid)
			if len(args) == 2 {
				path = args[1]
			}
			k, radius, err := f.apply(cmd, a)
			if err != nil {
				return err
			}
			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := loader.ExportSuggestions(file, a.svc.Suggest(uid, k, radius), a.g.Users); err != nil {
				file.Close()
				return fmt.Errorf("write %s: %w", path, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Suggestions exported to %s\n", path)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// -------- snapshot --------

func (a *app) snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <path>",
		Short: "Save the loaded graph as a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.SaveJSONFile(args[0], a.g); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved JSON snapshot to %q\n", args[0])
			return nil
		},
	}
}
