package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/citypredict/api"
	"github.com/kilianp07/citypredict/config"
	"github.com/kilianp07/citypredict/core/events"
	"github.com/kilianp07/citypredict/core/history"
	coremetrics "github.com/kilianp07/citypredict/core/metrics"
	coremon "github.com/kilianp07/citypredict/core/monitoring"
	"github.com/kilianp07/citypredict/core/prediction"
	"github.com/kilianp07/citypredict/core/store"
	"github.com/kilianp07/citypredict/infra/logger"
	"github.com/kilianp07/citypredict/infra/metrics"
	"github.com/kilianp07/citypredict/infra/monitoring"
	"github.com/kilianp07/citypredict/infra/mqtt"
	"github.com/kilianp07/citypredict/internal/eventbus"
)

// Service wires the dispatcher, the prediction store, the event consumers
// and the HTTP server.
type Service struct {
	Dispatcher *prediction.Dispatcher
	Store      *store.MemoryStore

	cfg       *config.Config
	audit     store.Store
	bus       *eventbus.Bus[events.Event]
	sink      coremetrics.Sink
	publisher *mqtt.Publisher
	monitor   coremon.Monitor
	handler   http.Handler
	server    *http.Server
	log       logger.Logger
}

// New creates a Service from the configuration. Model load failures only
// disable the affected domains unless models.strict is set.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	src := history.NewCSVSource(cfg.History.Path, cfg.History.ReadTimeout)
	disp, err := prediction.Load(prediction.Options{
		Dir:     cfg.Models.Dir,
		Files:   cfg.Models.Files,
		History: src,
		Log:     logger.New("loader"),
	})
	if err != nil {
		if cfg.Models.Strict {
			return nil, fmt.Errorf("load models: %w", err)
		}
		var lerr *prediction.LoadError
		if !errors.As(err, &lerr) || disp == nil {
			logg.Errorf("models not loaded, serving in degraded mode: %v", err)
			disp = prediction.Unavailable()
		}
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{
		Dispatcher: disp,
		Store:      store.NewMemoryStore(cfg.Store.Capacity),
		cfg:        cfg,
		bus:        eventbus.New[events.Event](eventbus.DefaultBuffer),
		sink:       sink,
		monitor:    mon,
		log:        logg,
	}
	if cfg.Store.AuditEnabled() {
		audit, err := store.New(cfg.Store.Audit)
		if err != nil {
			return nil, fmt.Errorf("audit store: %w", err)
		}
		svc.audit = audit
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			svc.closeStores()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}

	svc.handler = api.NewRouter(api.Options{
		Predictor:      disp,
		Store:          svc.Store,
		Bus:            svc.bus,
		Log:            logger.New("api"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.Handler(),
	})
	svc.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      svc.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return svc, nil
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler { return s.handler }

// Start attaches the event consumers and reports model availability. The
// consumers stop with ctx.
func (s *Service) Start(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	monitoring.StartErrorReporter(ctx, s.bus, s.monitor)
	if s.audit != nil {
		s.startAudit(ctx)
	}
	if s.publisher != nil {
		s.publisher.Start(ctx, s.bus)
	}
	for _, d := range prediction.Domains() {
		err := s.Dispatcher.Available(d)
		s.bus.Publish(events.AvailabilityEvent{Domain: d, Available: err == nil, Err: err})
	}
}

func (s *Service) startAudit(ctx context.Context) {
	sub := s.bus.Subscribe()
	go func() {
		defer s.bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				pe, ok := ev.(events.PredictionEvent)
				if !ok {
					continue
				}
				if err := s.audit.Append(ctx, pe.Record); err != nil {
					s.log.Errorf("audit %s: %v", pe.Record.ID, err)
				}
			}
		}
	}()
}

// Run starts the service and serves HTTP until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	s.log.Infof("listening on %s (water variant: %q)", ln.Addr(), s.Dispatcher.WaterVariant())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.monitor.Flush(2 * time.Second)
	return s.closeStores()
}

func (s *Service) closeStores() error {
	var errs []error
	if err := s.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
