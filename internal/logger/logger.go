package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

var Logger zerolog.Logger = zerolog.Nop()

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures the package and global zerolog loggers from
// LOG_LEVEL (default info) and LOG_FORMAT ("json" or "console").
func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if os.Getenv("LOG_FORMAT") != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(out).
		With().
		Timestamp().
		Str("service", "docvault").
		Logger().
		Level(level)

	zlog.Logger = Logger
}

// WithCtx returns a logger enriched with the request id and acting user
// found in ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	lc := Logger.With()
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		lc = lc.Str("request_id", rid)
	}
	if uid := pkgctx.GetActorID(ctx); uid != "" {
		lc = lc.Str("actor_id", uid)
	}
	l := lc.Logger()
	return &l
}
