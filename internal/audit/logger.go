package audit

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	pkgctx "github.com/baechuer/docvault/internal/pkg/context"
)

// Logger provides structured audit logging for security-relevant events.
// Record has the func(ctx, action, fields) shape the application services
// accept through WithAudit.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record writes one audit line. Failed outcomes and admin actions are
// logged at warn, everything else at info. Email fields are masked.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if fields["result"] == "error" || strings.HasPrefix(action, "admin.") {
		ev = l.log.Warn()
	}

	ev = ev.Str("action", action)
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}
	ev.Msg("audit")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
