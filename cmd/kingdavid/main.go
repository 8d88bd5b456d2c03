package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kingdavid/internal/config"
	"kingdavid/internal/http/handlers"
	"kingdavid/internal/imaging"
	applog "kingdavid/internal/log"
	"kingdavid/internal/media"
	"kingdavid/internal/parse"
	"kingdavid/internal/repos"
	"kingdavid/internal/services"
	"kingdavid/internal/store"
)

var (
	views     string
	forceSeed bool
	outFile   string
)

var rootCmd = &cobra.Command{
	Use:           "kingdavid",
	Short:         "King David & Sons appliance shop: storefront and admin panel",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront and admin web server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the seed catalog into an empty store",
	RunE:  runSeed,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <image>",
	Short: "Resize and re-encode an image the way uploads are stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&views, "views", "./web/templates", "template directory")
	seedCmd.Flags().BoolVar(&forceSeed, "force", false, "insert seed items even if the store has products")
	normalizeCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the JPEG here instead of printing the data URI")
	rootCmd.AddCommand(serveCmd, seedCmd, normalizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		applog.Error(nil, "cmd.fail", err, nil)
		applog.Sync()
		os.Exit(1)
	}
	applog.Sync()
}

// Optional file logging
func setupLogging(cfg config.Config) (io.Closer, error) {
	if cfg.LogFile == "" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", cfg.LogFile, err)
	}
	applog.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverParse {
		if cfg.Parse.AppID == "" || cfg.Parse.RESTKey == "" {
			return nil, nil, errors.New("parse driver needs PARSE_APP_ID and PARSE_REST_KEY")
		}
		c := parse.New(parse.Config{
			ServerURL: cfg.Parse.ServerURL,
			AppID:     cfg.Parse.AppID,
			RESTKey:   cfg.Parse.RESTKey,
			Timeout:   cfg.Parse.Timeout,
		})
		return c, func() {}, nil
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return repos.NewProductRepo(db), func() { _ = db.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if closer, err := setupLogging(cfg); err != nil {
		applog.Error(nil, "log.file.fail", err, nil)
	} else if closer != nil {
		defer closer.Close()
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		// the shop still works, just without a fallback catalog
		applog.Error(nil, "seed.load.fail", err, map[string]any{"file": cfg.SeedFile})
	}

	var pub services.Publisher
	if cfg.Media.Bucket != "" {
		p, err := media.NewS3Publisher(cfg.Media)
		if err != nil {
			return err
		}
		pub = p
	}

	app := handlers.NewApp(cfg, handlers.NewDeps(st, cfg, seed, pub), views)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "store": cfg.StoreDriver})
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		applog.Info(nil, "server.stop", nil)
		return app.ShutdownWithContext(sctx)
	})
	return g.Wait()
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	existing, err := st.QueryAll(ctx, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !forceSeed {
		applog.Info(nil, "seed.skip", map[string]any{"reason": "store not empty"})
		return nil
	}
	for _, it := range items {
		saved, err := st.Insert(ctx, it)
		if err != nil {
			return fmt.Errorf("seed %q: %w", it.Title, err)
		}
		applog.Audit(nil, "seed.insert", map[string]any{"id": saved.ID, "title": saved.Title})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(items))
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	n := imaging.New()
	if err := n.CheckSize(int64(len(raw))); err != nil {
		return err
	}
	res, err := n.Normalize(raw)
	if err != nil {
		return err
	}
	applog.Info(nil, "upload.normalize", map[string]any{
		"from": fmt.Sprintf("%dx%d", res.SourceWidth, res.SourceHeight),
		"to":   fmt.Sprintf("%dx%d", res.Width, res.Height),
	})
	if outFile == "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.DataURI)
		return nil
	}
	return os.WriteFile(outFile, res.JPEG, 0644)
}
