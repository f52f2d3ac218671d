// Command rewind-demo is an interactive walkthrough of the undo engine: it
// spawns a player, applies moves and level changes as reversible commands,
// and persists the whole session, history included, through the configured
// scene store.
//
//	w/a/s/d  move the player by 100 units
//	1..9     set the level
//	u / r    undo / redo
//	i / o    save / load the scene
//	e        export the scene to the blob archive
//	p        print the history
//	q        quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rewindcore/internal/core"
	"rewindcore/internal/game"
	"rewindcore/internal/infra/blob"
	"rewindcore/internal/infra/persistence"
	"rewindcore/internal/infra/persistence/scene"
	"rewindcore/pkg/domain"
)

func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "rewind-demo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := core.NewSlogLogger(slogger)

	world := domain.NewWorld()
	registry := scene.NewRegistry()
	if err := game.Register(world, registry); err != nil {
		return fmt.Errorf("register game types: %w", err)
	}
	player, err := game.SpawnPlayer(world, "player")
	if err != nil {
		return fmt.Errorf("spawn player: %w", err)
	}

	opts := []core.Option{core.WithLogger(logger)}
	if addr := os.Getenv("REWINDCORE_METRICS_ADDR"); addr != "" {
		reg := prometheus.NewRegistry()
		metrics, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, core.WithMetrics(metrics))
		go serveMetrics(addr, reg, slogger)
	} else {
		opts = append(opts, core.WithMetrics(core.NewExpvarMetricsRecorder("")))
	}
	if path := os.Getenv("REWINDCORE_TRACE_FILE"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}
	svc := core.NewService(world, opts...)

	store, err := persistence.OpenSceneStore(ctx)
	if err != nil {
		return fmt.Errorf("open scene store: %w", err)
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintln(out, "w/a/s/d move, 1-9 level, u undo, r redo, i save, o load, e export, p history, q quit")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		switch {
		case key == "q":
			return nil
		case key == "w":
			svc.Enqueue(core.Perform(game.MoveEntity{Target: player, DY: 100}))
		case key == "s":
			svc.Enqueue(core.Perform(game.MoveEntity{Target: player, DY: -100}))
		case key == "a":
			svc.Enqueue(core.Perform(game.MoveEntity{Target: player, DX: -100}))
		case key == "d":
			svc.Enqueue(core.Perform(game.MoveEntity{Target: player, DX: 100}))
		case key == "u":
			svc.Enqueue(core.Undo{})
		case key == "r":
			svc.Enqueue(core.Redo{})
		case key == "p":
			fmt.Fprintln(out, game.DescribeHistory(world))
			continue
		case key == "i":
			if err := saveScene(ctx, registry, world, store); err != nil {
				return err
			}
			fmt.Fprintln(out, "scene saved")
			continue
		case key == "o":
			player, err = loadScene(ctx, registry, world, store)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "scene loaded")
			continue
		case key == "e":
			info, err := exportScene(ctx, registry, world)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "scene archived as %s (%d bytes)\n", info.Key, info.Size)
			continue
		case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
			svc.Enqueue(core.Perform(game.SetLevel{Value: uint32(key[0] - '0')}))
		default:
			fmt.Fprintf(out, "unknown key %q\n", key)
			continue
		}
		if err := svc.Drain(ctx); err != nil {
			return err
		}
		printState(out, world, player)
	}
	return scanner.Err()
}

func saveScene(ctx context.Context, registry *scene.Registry, world *domain.World, store scene.Store) error {
	snap, err := registry.Capture(world)
	if err != nil {
		return fmt.Errorf("capture scene: %w", err)
	}
	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	return nil
}

// loadScene clears the world and replays the persisted snapshot into it,
// returning the relocated player handle.
func loadScene(ctx context.Context, registry *scene.Registry, world *domain.World, store scene.Store) (domain.Handle, error) {
	snap, ok, err := store.Load(ctx)
	if err != nil {
		return domain.Handle{}, fmt.Errorf("load scene: %w", err)
	}
	if !ok {
		return domain.Handle{}, fmt.Errorf("no saved scene")
	}
	for _, h := range world.Handles() {
		world.Destroy(h)
	}
	domain.RemoveResource[core.History](world)
	domain.RemoveResource[game.Level](world)
	if _, err := registry.Restore(world, snap); err != nil {
		return domain.Handle{}, fmt.Errorf("restore scene: %w", err)
	}
	player, ok := findPlayer(world)
	if !ok {
		return domain.Handle{}, fmt.Errorf("saved scene has no player")
	}
	return player, nil
}

func exportScene(ctx context.Context, registry *scene.Registry, world *domain.World) (blob.Info, error) {
	snap, err := registry.Capture(world)
	if err != nil {
		return blob.Info{}, fmt.Errorf("capture scene: %w", err)
	}
	archive, err := blob.Open(ctx)
	if err != nil {
		return blob.Info{}, fmt.Errorf("open archive: %w", err)
	}
	return blob.ExportSnapshot(ctx, archive, snap, time.Now())
}

func findPlayer(world *domain.World) (domain.Handle, bool) {
	var player domain.Handle
	found := false
	domain.Each(world, func(h domain.Handle, _ *game.Player) {
		if !found {
			player, found = h, true
		}
	})
	return player, found
}

func printState(out io.Writer, world *domain.World, player domain.Handle) {
	pos, _ := domain.Get[game.Position](world, player)
	level, _ := domain.Resource[game.Level](world)
	fmt.Fprintf(out, "position (%g, %g, %g) level %d\n", pos.X, pos.Y, pos.Z, level.Value)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("metrics listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server stopped", "error", err.Error())
	}
}
