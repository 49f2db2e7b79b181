// logging.go — журнал HTTP-запросов verisure.
// Каждый запрос пишется одной записью: шаблон маршрута chi, статус,
// субъект и его роль. Субъект известен только после Authenticate, поэтому
// RequestLogger кладёт в контекст запись, которую заполняет Authenticate.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// contextKeyRequestEntry — запись журнала текущего запроса.
const contextKeyRequestEntry contextKey = "request_entry"

// requestEntry — данные запроса, собираемые по ходу обработки.
type requestEntry struct {
	status int
	bytes  int64
	claims *AuthClaims
}

func requestEntryFromContext(ctx context.Context) *requestEntry {
	entry, _ := ctx.Value(contextKeyRequestEntry).(*requestEntry)
	return entry
}

// entryWriter пишет статус и размер ответа в requestEntry.
type entryWriter struct {
	http.ResponseWriter
	entry       *requestEntry
	wroteHeader bool
}

func (ew *entryWriter) WriteHeader(code int) {
	if !ew.wroteHeader {
		ew.entry.status = code
		ew.wroteHeader = true
	}
	ew.ResponseWriter.WriteHeader(code)
}

func (ew *entryWriter) Write(b []byte) (int, error) {
	ew.wroteHeader = true
	n, err := ew.ResponseWriter.Write(b)
	ew.entry.bytes += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (ew *entryWriter) Unwrap() http.ResponseWriter {
	return ew.ResponseWriter
}

// RequestLogger возвращает middleware журнала запросов.
// Уровень: INFO для 1xx-3xx, WARN для 4xx, ERROR для 5xx.
// Запросы без аутентификации (health, metrics, 401) пишутся без subject.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := &requestEntry{status: http.StatusOK}
			r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestEntry, entry))

			next.ServeHTTP(&entryWriter{ResponseWriter: w, entry: entry}, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.String("path", r.URL.Path),
				slog.Int("status", entry.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", entry.bytes),
			}
			if sub := SubjectFromContext(r.Context()); sub != "" {
				attrs = append(attrs,
					slog.String("subject", sub),
					slog.String("role", entry.claims.EffectiveRole),
				)
			}
			logger.LogAttrs(r.Context(), logLevel(entry.status), "HTTP запрос", attrs...)
		})
	}
}

func logLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
