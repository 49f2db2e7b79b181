// instrument.go — обёртка реестра: Prometheus-метрики и перехват паник.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики реестра.
var (
	ledgerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vs_ledger_calls_total",
			Help: "Количество обращений к реестру по операциям и исходам",
		},
		[]string{"operation", "outcome"},
	)

	ledgerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vs_ledger_call_duration_seconds",
			Help:    "Длительность обращений к реестру в секундах",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	ledgerAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vs_ledger_available",
		Help: "Результат последней проверки доступности реестра (1 — доступен)",
	})
)

// Instrumented — Gateway и CapabilityProvider с метриками.
// Паника внутри бэкенда превращается в ErrContract.
type Instrumented struct {
	gw         Gateway
	capability CapabilityProvider
	logger     *slog.Logger
}

var (
	_ Gateway            = (*Instrumented)(nil)
	_ CapabilityProvider = (*Instrumented)(nil)
)

// Instrument оборачивает бэкенд реестра.
func Instrument(gw Gateway, capability CapabilityProvider, logger *slog.Logger) *Instrumented {
	return &Instrumented{
		gw:         gw,
		capability: capability,
		logger:     logger.With(slog.String("component", "ledger")),
	}
}

// IsAvailable проверяет доступность реестра. Паника считается недоступностью.
func (i *Instrumented) IsAvailable(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Паника при проверке доступности реестра", slog.Any("panic", r))
			ok = false
		}
		if ok {
			ledgerAvailable.Set(1)
		} else {
			ledgerAvailable.Set(0)
		}
	}()
	return i.capability.IsAvailable(ctx)
}

func (i *Instrumented) Register(ctx context.Context, productID, name string) error {
	return i.call("register", func() error {
		return i.gw.Register(ctx, productID, name)
	})
}

func (i *Instrumented) Verify(ctx context.Context, productID string) (*Entry, error) {
	var entry *Entry
	err := i.call("verify", func() error {
		var err error
		entry, err = i.gw.Verify(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (i *Instrumented) FlagAsFake(ctx context.Context, productID string) error {
	return i.call("flag_as_fake", func() error {
		return i.gw.FlagAsFake(ctx, productID)
	})
}

// call выполняет fn, учитывая исход и длительность.
func (i *Instrumented) call(op string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Паника в бэкенде реестра",
				slog.String("operation", op),
				slog.Any("panic", r),
			)
			err = fmt.Errorf("%w: паника в %s: %v", ErrContract, op, r)
		}
		ledgerCallsTotal.WithLabelValues(op, string(Classify(err))).Inc()
		ledgerCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()
	return fn()
}
