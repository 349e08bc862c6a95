// Package app wires the three warden processes: the interactive process
// (control API + session controller), the enforcement daemon, and the config
// API server.
package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"warden/internal/aggregator"
	"warden/internal/app/control"
	"warden/internal/app/server"
	"warden/internal/config"
	"warden/internal/database"
	"warden/internal/enforcement"
	"warden/internal/jobs/interval"
	"warden/internal/jobs/runtime"
	"warden/internal/remote"
	"warden/internal/session"
	"warden/internal/state"
	"warden/internal/support"
)

const (
	defaultControlPort   = 8086
	defaultConfigAPIPort = 8085

	enforcerLockTTL = 15 * time.Second
)

func bootstrapEnv() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.SetLevel(log.DebugLevel)
	config.ReadSettings()
}

func buildRemoteClient() (*remote.Client, error) {
	baseURL := support.GetEnv("CONFIG_API_URL", fmt.Sprintf("http://localhost:%d", defaultConfigAPIPort))
	serviceID := support.GetEnv("SERVICE_ID", "warden-engine")
	serviceSecret := support.GetEnv("SERVICE_SECRET", "warden-dev-secret")
	return remote.NewClient(baseURL, serviceID, serviceSecret)
}

// envAuthorization treats the platform permission as an environment switch.
// Real platform adapters implement session.AuthorizationPort instead.
type envAuthorization struct{}

func (envAuthorization) Status(context.Context) (bool, error) {
	return support.GetEnvBool("AUTHORIZATION_GRANTED", true), nil
}

func (envAuthorization) Request(context.Context) (bool, error) {
	return support.GetEnvBool("AUTHORIZATION_GRANTED", true), nil
}

// RunInteractive starts the interactive process: session controller, rule
// aggregator, monitoring window scheduler, and the loopback control API.
func RunInteractive() error {
	bootstrapEnv()

	portFlag := flag.Int("control-port", defaultControlPort, "Port for the loopback control API")
	flag.Parse()
	port := resolvePort("CONTROL_PORT", *portFlag)

	redisClient, err := support.GetRedisClient()
	if err != nil {
		return fmt.Errorf("failed to get redis client: %w", err)
	}
	defer support.CloseRedisClient()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.EnableRedisSynchronization(ctx, redisClient)

	client, err := buildRemoteClient()
	if err != nil {
		return fmt.Errorf("failed to build config client: %w", err)
	}

	store := state.NewRedisStore(redisClient)
	agg := aggregator.New(client, aggregator.WithProfileStore(store))
	adapter := enforcement.NewAdapter(store, agg, enforcement.NewLogPort())

	scheduler, err := interval.NewScheduler(adapter)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("error stopping interval scheduler", "error", err)
		}
	}()

	controller := session.NewController(client, store, scheduler, envAuthorization{}, agg)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := controller.StopMonitoring(shutdownCtx); err != nil {
			log.Warn("error stopping monitoring on shutdown", "error", err)
		}
	}()

	return control.Serve(port, &control.Handlers{
		Controller: controller,
		Aggregator: agg,
		Store:      store,
	})
}

// RunEnforcer starts the enforcement daemon. The Redis lease guarantees a
// single enforcer per store even when the daemon is launched twice.
func RunEnforcer() error {
	bootstrapEnv()

	redisClient, err := support.GetRedisClient()
	if err != nil {
		return fmt.Errorf("failed to get redis client: %w", err)
	}
	defer support.CloseRedisClient()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := state.AcquireEnforcerLock(ctx, redisClient, enforcerLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire enforcer lease: %w", err)
	}
	defer lock.Release()

	config.EnableRedisSynchronization(ctx, redisClient)

	client, err := buildRemoteClient()
	if err != nil {
		return fmt.Errorf("failed to build config client: %w", err)
	}

	store := state.NewRedisStore(redisClient)
	agg := aggregator.New(client, aggregator.WithProfileStore(store))
	adapter := enforcement.NewAdapter(store, agg, enforcement.NewHostsFilePort(""))

	scheduler, err := interval.NewScheduler(adapter)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Warn("error stopping interval scheduler", "error", err)
		}
	}()

	log.Info("Enforcement daemon running")
	runtime.StartEnforcementRoutine(ctx, adapter, scheduler, store)
	return nil
}

// RunConfigAPI starts the config repository server.
func RunConfigAPI() error {
	bootstrapEnv()

	portFlag := flag.Int("port", defaultConfigAPIPort, "Port for the config API")
	flag.Parse()
	port := resolvePort("CONFIG_API_PORT", *portFlag)

	if _, err := database.SetupDB(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	return server.OpenRoutes(port)
}

func resolvePort(envKey string, fallback int) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return fallback
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port == 0 {
		log.Warn("invalid port override", "env", envKey, "value", raw)
		return fallback
	}
	return port
}
