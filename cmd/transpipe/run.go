package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"transpipe/internal/cliconfig"
	"transpipe/internal/fqueue"
	"transpipe/internal/hecrypto"
	"transpipe/internal/pipeline"
	"transpipe/internal/telemetry"
	"transpipe/internal/transport"
)

// runRole wires one role from configuration and runs it to completion or
// until a shutdown signal.
func runRole(cfg *cliconfig.Config, log zerolog.Logger, role string) error {
	params, err := cfg.PipelineParams()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.NewMetrics(role)
	sampler := telemetry.StartSampler(metrics.HeapBytes, cfg.SampleInterval)
	defer sampler.Stop()

	if cfg.MetricsAddr != "" {
		srv := telemetry.NewServer(cfg.MetricsAddr, telemetry.NewRegistry(metrics), log)
		srv.Start()
		defer srv.Stop()
	}

	timeline, err := telemetry.OpenTimeline(cfg.TimelineDir, role, log)
	if err != nil {
		return err
	}
	defer timeline.Close()

	queue := fqueue.New(log)
	pool := transport.NewPool("transpipe-"+role, cfg.Linger, log)
	defer pool.Close()

	switch role {
	case "initiator":
		return runInitiator(ctx, cfg, params, queue, pool, metrics, timeline, log)
	case "relay":
		return runRelay(ctx, cfg, params, queue, pool, metrics, timeline, log)
	case "resolver":
		return runResolver(ctx, cfg, params, queue, metrics, timeline, log)
	default:
		return fmt.Errorf("unknown role %q", role)
	}
}

func runInitiator(ctx context.Context, cfg *cliconfig.Config, params pipeline.Params,
	queue *fqueue.Queue, pool *transport.Pool,
	metrics *telemetry.Metrics, timeline *telemetry.Timeline, log zerolog.Logger,
) error {
	var (
		encrypt  hecrypto.Encryptor
		endpoint string
		outDir   string
	)
	switch params.Variant {
	case pipeline.VariantHHE:
		key, err := hecrypto.LoadStreamKey(cfg.KeyDir)
		if err != nil {
			return err
		}
		encrypt = hecrypto.NewHybridEncryptor(key)
		endpoint = cfg.RelayEndpoint
		outDir = cfg.SymmetricDir()
	case pipeline.VariantHE:
		engine, err := loadEngine(cfg.KeyDir)
		if err != nil {
			return err
		}
		encrypt = hecrypto.NewHEEncryptor(engine)
		endpoint = cfg.ResolverEndpoint
		outDir = cfg.HEDir()
	}

	ini := &pipeline.Initiator{
		Params:   params,
		Queue:    queue,
		Sender:   pool,
		Encrypt:  encrypt,
		Endpoint: endpoint,
		OutDir:   outDir,
		Drain: pipeline.DrainOptions{
			RemoveAfterSend: cfg.RemoveAfterSend,
			ArchiveDrained:  cfg.ArchiveDrained,
		},
		Settle:   cfg.Settle,
		Metrics:  metrics,
		Timeline: timeline,
		Log:      log,
	}
	return ini.Run(ctx)
}

func runRelay(ctx context.Context, cfg *cliconfig.Config, params pipeline.Params,
	queue *fqueue.Queue, pool *transport.Pool,
	metrics *telemetry.Metrics, timeline *telemetry.Timeline, log zerolog.Logger,
) error {
	streamKey, err := hecrypto.LoadStreamKey(cfg.KeyDir)
	if err != nil {
		return err
	}
	engine, err := loadEngine(cfg.KeyDir)
	if err != nil {
		return err
	}

	rel := &pipeline.Relay{
		Params:      params,
		Queue:       queue,
		Sender:      pool,
		Receive:     transport.Receive,
		Transform:   hecrypto.NewHybridTranscipherer(streamKey, engine),
		InEndpoint:  cfg.RelayEndpoint,
		OutEndpoint: cfg.ResolverEndpoint,
		InDir:       cfg.SymmetricDir(),
		OutDir:      cfg.HEDir(),
		Wait:        cfg.Wait,
		Drain: pipeline.DrainOptions{
			RemoveAfterSend: cfg.RemoveAfterSend,
			ArchiveDrained:  cfg.ArchiveDrained,
		},
		Settle:   cfg.Settle,
		Metrics:  metrics,
		Timeline: timeline,
		Log:      log,
	}
	return rel.Run(ctx)
}

func runResolver(ctx context.Context, cfg *cliconfig.Config, params pipeline.Params,
	queue *fqueue.Queue,
	metrics *telemetry.Metrics, timeline *telemetry.Timeline, log zerolog.Logger,
) error {
	engine, err := loadEngine(cfg.KeyDir)
	if err != nil {
		return err
	}

	res := &pipeline.Resolver{
		Params:     params,
		Queue:      queue,
		Receive:    transport.Receive,
		Decrypt:    hecrypto.NewHEDecryptor(engine),
		InEndpoint: cfg.ResolverEndpoint,
		InDir:      cfg.HEDir(),
		OutDir:     cfg.PlainDir(),
		Wait:       cfg.Wait,
		Metrics:    metrics,
		Timeline:   timeline,
		Log:        log,
	}
	return res.Run(ctx)
}

func loadEngine(keyDir string) (*hecrypto.Engine, error) {
	secret, err := hecrypto.LoadSecretKey(keyDir)
	if err != nil {
		return nil, err
	}
	params, err := hecrypto.LoadParamsDir(keyDir)
	if err != nil {
		return nil, err
	}
	return hecrypto.NewEngine(secret, params)
}
