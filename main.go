package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	capabilityx "github.com/prajwalh/krishi-mitra/agent/capability"
	routerx "github.com/prajwalh/krishi-mitra/agent/router"
	speechx "github.com/prajwalh/krishi-mitra/agent/speech"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
	configx "github.com/prajwalh/krishi-mitra/pkg/config"
	geminix "github.com/prajwalh/krishi-mitra/pkg/gemini"
	_ "github.com/prajwalh/krishi-mitra/pkg/logger/autoload"
	serverx "github.com/prajwalh/krishi-mitra/server"
)

type AppConfig struct {
	DetectorModel     string        `envconfig:"DETECTOR_MODEL" split_words:"true"`
	TreatmentModel    string        `envconfig:"TREATMENT_MODEL" split_words:"true"`
	CapabilityTimeout time.Duration `envconfig:"CAPABILITY_TIMEOUT" split_words:"true" default:"30s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[geminix.Config]("GEMINI")
	agmarknetCfg := configx.MustNew[capabilityx.AgmarknetConfig]("AGMARKNET")
	weatherCfg := configx.MustNew[capabilityx.WeatherConfig]("WEATHER")
	serverCfg := configx.MustNew[serverx.Config]("SERVER")

	registry, err := capabilityx.NewRegistry(ctx, capabilityx.RegistryConfig{
		LLM:            *llmCfg,
		DetectorModel:  appCfg.DetectorModel,
		TreatmentModel: appCfg.TreatmentModel,
		Agmarknet:      *agmarknetCfg,
		Weather:        *weatherCfg,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build capability registry")
	}

	store := newSessionStore()
	profiles := newProfileSource(ctx)

	turns, err := routerx.New(store, registry, nil, profiles, routerx.Config{
		CapabilityTimeout: appCfg.CapabilityTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build turn router")
	}

	var opts []serverx.Option
	if speechCfg, err := configx.New[speechx.Config]("SPEECH"); err == nil && speechCfg.APIKey != "" {
		voice := speechx.NewClient(*speechCfg)
		opts = append(opts, serverx.WithVoice(voice, voice))
		log.Info().Msg("voice endpoint enabled")
	}

	srv := serverx.New(*serverCfg, turns, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
}

// newSessionStore prefers Upstash Redis when configured and falls back to
// the in-process store for local runs.
func newSessionStore() statex.Store {
	cfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if err != nil {
		log.Info().Msg("using in-memory session store")
		return statex.NewMemoryStore()
	}
	store, err := statex.NewUpstashRedisStore(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("upstash store unavailable, using in-memory store")
		return statex.NewMemoryStore()
	}
	log.Info().Msg("using upstash redis session store")
	return store
}

// newProfileSource returns nil when Postgres is not configured; sessions
// then start from built-in profile defaults.
func newProfileSource(ctx context.Context) statex.ProfileSource {
	cfg, err := configx.New[statex.PostgresConfig]("POSTGRES")
	if err != nil {
		return nil
	}
	profiles, err := statex.NewProfileStore(*cfg)
	if err != nil {
		log.Warn().Err(err).Msg("profile store unavailable")
		return nil
	}
	if err := profiles.Migrate(ctx); err != nil {
		log.Warn().Err(err).Msg("profile store migration failed")
	}
	log.Info().Msg("postgres profile store connected")
	return profiles
}
