package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mbenitez/factupos-api/internal/domain/entity"
)

func TestCanTransition_TablaDeEstados(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{entity.SaleStatusPending, entity.SaleStatusCompleted, true},
		{entity.SaleStatusPending, entity.SaleStatusCanceled, true},
		{entity.SaleStatusOrdered, entity.SaleStatusCompleted, true},
		{entity.SaleStatusOrdered, entity.SaleStatusCanceled, true},
		{entity.SaleStatusCompleted, entity.SaleStatusAnnulled, true},
		// no permitidas
		{entity.SaleStatusPending, entity.SaleStatusAnnulled, false},
		{entity.SaleStatusCompleted, entity.SaleStatusPending, false},
		{entity.SaleStatusCompleted, entity.SaleStatusCanceled, false},
		{entity.SaleStatusCanceled, entity.SaleStatusCompleted, false},
		{entity.SaleStatusAnnulled, entity.SaleStatusCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, entity.CanTransition(c.from, c.to),
			"transición %s → %s", c.from, c.to)
	}
}

func TestStageFor_ProyeccionDelStatus(t *testing.T) {
	assert.Equal(t, entity.SaleStageProcessed, entity.StageFor(entity.SaleStatusPending))
	assert.Equal(t, entity.SaleStageProcessed, entity.StageFor(entity.SaleStatusOrdered))
	assert.Equal(t, entity.SaleStageDelivered, entity.StageFor(entity.SaleStatusCompleted))
	assert.Equal(t, entity.SaleStageClosed, entity.StageFor(entity.SaleStatusCanceled))
	assert.Equal(t, entity.SaleStageClosed, entity.StageFor(entity.SaleStatusAnnulled))
}

func TestPaymentTotal_SumaEntradas(t *testing.T) {
	sale := entity.Sale{Payments: []entity.PaymentEntry{
		{Method: entity.PaymentMethodCash, Amount: decimal.NewFromInt(10000)},
		{Method: entity.PaymentMethodCard, Amount: decimal.NewFromInt(6500)},
	}}

	assert.True(t, sale.PaymentTotal().Equal(decimal.NewFromInt(16500)))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, entity.ValidStatus("pending"))
	assert.True(t, entity.ValidStatus("annulled"))
	assert.False(t, entity.ValidStatus("paid"))
	assert.False(t, entity.ValidStatus(""))
}

func TestValidInitialStatus(t *testing.T) {
	for _, s := range []string{"pending", "ordered", "completed"} {
		assert.True(t, entity.ValidInitialStatus(s), s)
	}
	assert.False(t, entity.ValidInitialStatus("canceled"))
	assert.False(t, entity.ValidInitialStatus("annulled"))
	assert.False(t, entity.ValidInitialStatus(""))
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{"cash", "card", "qr", "transfer"} {
		assert.True(t, entity.ValidPaymentMethod(m), m)
	}
	assert.False(t, entity.ValidPaymentMethod("cheque"))
}
