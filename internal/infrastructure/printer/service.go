// Package printer implementa la impresión de tickets y comandas contra el
// puente de impresión del local (un agente HTTP que reenvía a la térmica).
// Los trabajos se encolan y un worker los despacha en segundo plano: la
// venta nunca espera ni falla por la impresora.
package printer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mbenitez/factupos-api/internal/application/sales"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/pkg/logger"
)

var _ sales.Printer = (*Service)(nil)

// Config opciones del servicio de impresión.
type Config struct {
	Enabled   bool
	BridgeURL string        // endpoint del puente, ej. http://192.168.0.50:9100/print
	Timeout   time.Duration // timeout por trabajo
	QueueSize int
}

type jobKind int

const (
	jobTicket jobKind = iota
	jobKitchen
)

type job struct {
	kind jobKind
	sale *entity.Sale
}

// Service encola y despacha trabajos de impresión.
type Service struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
	jobs   chan job
	done   chan struct{}
}

// New construye el servicio y arranca el worker. Con Enabled en false los
// trabajos se descartan en silencio (útil en desarrollo y tests).
func New(cfg Config, log *logger.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	s := &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
		jobs:   make(chan job, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	go s.worker()
	return s
}

// PrintCustomerTicket encola el ticket de venta para el cliente.
func (s *Service) PrintCustomerTicket(sale *entity.Sale) {
	s.enqueue(job{kind: jobTicket, sale: sale})
}

// PrintKitchenOrder encola la comanda para cocina.
func (s *Service) PrintKitchenOrder(sale *entity.Sale) {
	s.enqueue(job{kind: jobKitchen, sale: sale})
}

// Close deja de aceptar trabajos y espera a que el worker drene la cola.
func (s *Service) Close() {
	close(s.jobs)
	<-s.done
}

func (s *Service) enqueue(j job) {
	if !s.cfg.Enabled {
		return
	}
	select {
	case s.jobs <- j:
	default:
		// Cola llena: mejor perder un ticket que bloquear la venta.
		s.log.Warn().Str("sale_id", j.sale.ID).Msg("cola de impresión llena, trabajo descartado")
	}
}

func (s *Service) worker() {
	defer close(s.done)
	for j := range s.jobs {
		if err := s.print(j); err != nil {
			s.log.Error().Err(err).
				Str("sale_id", j.sale.ID).
				Int64("daily_id", j.sale.DailyID).
				Msg("fallo de impresión")
		}
	}
}

func (s *Service) print(j job) error {
	var body []byte
	var contentType string
	var err error
	switch j.kind {
	case jobTicket:
		body, err = RenderTicket(j.sale)
		contentType = "application/pdf"
	case jobKitchen:
		// La comanda va como texto plano CP850: la térmica de cocina la
		// imprime directo, sin pasar por el driver de PDF.
		body, err = RenderKitchenOrder(j.sale)
		contentType = "application/octet-stream"
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return s.send(body, contentType)
}

func (s *Service) send(body []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BridgeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("armar request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("enviar al puente: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("puente respondió %d", resp.StatusCode)
	}
	return nil
}
