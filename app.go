package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v3"

	"github.com/tanpawarit/smart-dfd-agent/agent/archive"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/tanpawarit/smart-dfd-agent/agent/counter"
	"github.com/tanpawarit/smart-dfd-agent/agent/generator"
	"github.com/tanpawarit/smart-dfd-agent/agent/llm"
	"github.com/tanpawarit/smart-dfd-agent/agent/naming"
	"github.com/tanpawarit/smart-dfd-agent/agent/pipeline"
	"github.com/tanpawarit/smart-dfd-agent/agent/prompt"
	"github.com/tanpawarit/smart-dfd-agent/agent/render"
	"github.com/tanpawarit/smart-dfd-agent/agent/report"
	configx "github.com/tanpawarit/smart-dfd-agent/pkg/config"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
	postgresx "github.com/tanpawarit/smart-dfd-agent/pkg/postgres"
	qstashx "github.com/tanpawarit/smart-dfd-agent/pkg/qstash"
	redisx "github.com/tanpawarit/smart-dfd-agent/pkg/redis"
)

// app holds the wired collaborators for one CLI invocation.
type app struct {
	fs       afero.Fs
	archive  archive.Config
	graphviz render.Config
	renderer *render.Graphviz

	db      *bun.DB
	closers []func() error
}

// setup loads the environment and logging config shared by every command.
func setup(cmd *cli.Command) (*app, error) {
	configx.SetEnvFile(cmd.String("env"))

	logCfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return nil, fmt.Errorf("%w: log config: %v", contractx.ErrValidation, err)
	}
	logx.Init(*logCfg)

	archiveCfg, err := configx.New[archive.Config]("ARCHIVE")
	if err != nil {
		return nil, fmt.Errorf("%w: archive config: %v", contractx.ErrValidation, err)
	}
	if err := archiveCfg.Validate(); err != nil {
		return nil, err
	}

	graphvizCfg, err := configx.New[render.Config]("GRAPHVIZ")
	if err != nil {
		return nil, fmt.Errorf("%w: graphviz config: %v", contractx.ErrValidation, err)
	}

	fs := afero.NewOsFs()
	renderer, err := render.New(*graphvizCfg, render.WithFs(fs))
	if err != nil {
		return nil, err
	}

	return &app{
		fs:       fs,
		archive:  *archiveCfg,
		graphviz: *graphvizCfg,
		renderer: renderer,
	}, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// postgres opens the shared database handle on first use.
func (a *app) postgres(ctx context.Context) (*bun.DB, *postgresx.Config, error) {
	cfg, err := configx.New[postgresx.Config]("POSTGRES")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: postgres config: %v", contractx.ErrValidation, err)
	}
	if a.db != nil {
		return a.db, cfg, nil
	}

	db, err := cfg.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	return db, cfg, nil
}

func (a *app) counterStore(ctx context.Context) (contractx.CounterStore, error) {
	switch a.archive.CounterBackend {
	case archive.BackendRedis:
		cfg, err := configx.New[redisx.Config]("REDIS")
		if err != nil {
			return nil, fmt.Errorf("%w: redis config: %v", contractx.ErrValidation, err)
		}
		client, err := cfg.New(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return counter.NewRedisStore(client, cfg.Key), nil

	case archive.BackendUpstash:
		cfg, err := configx.New[counter.UpstashConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, fmt.Errorf("%w: upstash config: %v", contractx.ErrValidation, err)
		}
		return counter.NewUpstashStore(*cfg)

	case archive.BackendPostgres:
		db, cfg, err := a.postgres(ctx)
		if err != nil {
			return nil, err
		}
		store := counter.NewPostgresStore(db, cfg.Counter)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return counter.NewFileStore(a.fs, a.archive.CounterPath()), nil
	}
}

func (a *app) archiveIndex(ctx context.Context) (*archive.PostgresIndex, error) {
	db, _, err := a.postgres(ctx)
	if err != nil {
		return nil, err
	}
	index := archive.NewPostgresIndex(db)
	if err := index.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return index, nil
}

// pipeline wires the generation service for the configured backends.
func (a *app) pipeline(ctx context.Context, document bool) (*pipeline.Service, error) {
	llmCfg, err := configx.New[llm.Config]("LLM")
	if err != nil {
		return nil, fmt.Errorf("%w: llm config: %v", contractx.ErrValidation, err)
	}

	prompts := prompt.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	gen, err := generator.New(ctx, *llmCfg, prompts.System)
	if err != nil {
		return nil, err
	}

	store, err := a.counterStore(ctx)
	if err != nil {
		return nil, err
	}
	namer, err := naming.New(store)
	if err != nil {
		return nil, err
	}

	writer := archive.NewWriter(a.fs, a.archive)
	if err := writer.Prepare(); err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithImagePath(a.graphviz.OutputPath)}
	if document || a.archive.Document {
		opts = append(opts, pipeline.WithDocuments(report.NewDocumentWriter(a.fs, a.archive.OutputDir)))
	}
	if a.archive.Index {
		index, err := a.archiveIndex(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithIndex(index))
	}
	if a.archive.Notify {
		cfg, err := configx.New[qstashx.Config]("QSTASH")
		if err != nil {
			return nil, fmt.Errorf("%w: qstash config: %v", contractx.ErrValidation, err)
		}
		client, err := qstashx.NewClient(*cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: qstash client: %v", contractx.ErrValidation, err)
		}
		opts = append(opts, pipeline.WithIndex(archive.NewNotifier(client, cfg.Destination)))
	}

	logx.Debug().
		Str("provider", llmCfg.Provider).
		Str("model", llmCfg.Model).
		Str("backend", a.archive.CounterBackend).
		Bool("index", a.archive.Index).
		Bool("notify", a.archive.Notify).
		Msg("pipeline wired")

	return pipeline.New(ctx, gen, namer, writer, a.renderer, opts...)
}
