package main

import (
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jahidulislamseo/image-converter-tool/internal/analyzer"
	"github.com/jahidulislamseo/image-converter-tool/internal/env"
	"github.com/jahidulislamseo/image-converter-tool/internal/ratelimiter"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg := config{
		addr:           env.GetString("ADDR", ":8080"),
		maxUploadBytes: int64(env.GetInt("MAX_UPLOAD_BYTES", 16<<20)),
		openaiCfg: openaiConfig{
			apiKey: env.GetString("OPENAI_API_KEY", ""),
			model:  env.GetString("OPENAI_MODEL", analyzer.DefaultModel),
		},
		ratelimiter: ratelimiter.Config{
			RequestPerTimeFrame: env.GetInt("RL_REQS_COUNT", 15),
			TimeFrame:           5 * time.Second,
			Enabled:             env.GetBool("RL_ENABLED", true),
		},
	}

	//Logger (Zap)
	logger := zap.Must(zap.NewProduction()).Sugar()

	defer logger.Sync() //flushes buffer, if any

	//AI describer, resolved once at startup. Absent key means the analyze
	//endpoint reports the feature as unavailable.
	var describer *analyzer.Client
	if cfg.openaiCfg.apiKey != "" {
		describer = analyzer.NewClient(cfg.openaiCfg.apiKey, cfg.openaiCfg.model)
		logger.Info("image analysis enabled")
	} else {
		logger.Info("OPENAI_API_KEY not set, image analysis disabled")
	}

	//Rate Limiter
	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.ratelimiter.RequestPerTimeFrame,
		cfg.ratelimiter.TimeFrame,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		describer:   describer,
		rateLimiter: rateLimiter,
		metrics:     newMetrics(),
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
