package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	infrapdf "github.com/jhoicas/magazzino-api/internal/infrastructure/pdf"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/postgres"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/magazzino-api/internal/interfaces/http"
	"github.com/jhoicas/magazzino-api/pkg/config"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "magazzino-api",
		Short:        "Stock ledger, capacidad de UDC e inventarios por committente",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Levanta la API HTTP",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Aplica las migraciones embebidas sobre PostgreSQL",
			RunE:  func(cmd *cobra.Command, args []string) error { return migrate() },
		},
		&cobra.Command{
			Use:   "version",
			Short: "Muestra la versión",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("magazzino-api %s\n", version)
			},
		},
	)
	return cmd
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}

func migrate() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()
	return postgres.Migrate(ctx, pool, log)
}

func serve() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	locker := st.locker
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer rdb.Close()
		locker = redislock.New(rdb, time.Duration(cfg.Redis.LockTTL)*time.Second, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock de sesiones distribuido (Redis)")
	}

	udcs := inventory.NewUDCCapacityManager(st.tx, st.reads, cfg.Ledger.MaxRetries, log)
	ledger := inventory.NewStockLedger(st.tx, st.reads, udcs, inventory.LedgerConfig{
		MaxRetries:           cfg.Ledger.MaxRetries,
		DefaultAllowNegative: cfg.Ledger.DefaultAllowNegative,
	}, log)
	counts := inventory.NewReconciliationUseCase(st.tx, st.reads, ledger, locker, inventory.ReconciliationConfig{
		MaxRetries:        cfg.Ledger.MaxRetries,
		AdjustmentCausale: cfg.Ledger.AdjustmentCausale,
	}, log)
	countSheet := inventory.NewCountSheetUseCase(st.reads, infrapdf.NewCountSheetGenerator(), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:     ledger,
		UDCs:       udcs,
		Counts:     counts,
		CountSheet: countSheet,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}
