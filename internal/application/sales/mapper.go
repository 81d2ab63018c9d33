package sales

import (
	"time"

	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func decimalZero() decimal.Decimal { return decimal.Zero }

func toLineItems(in []dto.SaleItemRequest) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(in))
	for _, r := range in {
		items = append(items, entity.LineItem{
			ProductID:  r.ProductID,
			VariantID:  r.VariantID,
			Name:       r.Name,
			Unit:       r.Unit,
			Quantity:   r.Quantity,
			IVARate:    r.IVARate,
			IVAAmount:  r.IVAAmount, // fiscal.Aggregate lo reescribe
			TotalPrice: r.TotalPrice,
		})
	}
	return items
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:          s.ID,
		DailyID:     s.DailyID,
		TotalAmount: s.TotalAmount,
		Totals: dto.TaxTotalsResponse{
			Gravada10: s.Totals.Gravada10,
			Gravada5:  s.Totals.Gravada5,
			Exenta:    s.Totals.Exenta,
			IVA10:     s.Totals.IVA10,
			IVA5:      s.Totals.IVA5,
		},
		RUC:            s.RUC,
		CustomerName:   s.CustomerName,
		Status:         s.Status,
		Stage:          s.Stage,
		Mode:           s.Mode,
		Invoiced:       s.Invoiced,
		InvoiceNumber:  s.InvoiceNumber,
		TimbradoNumber: s.TimbradoNumber,
		Date:           s.Date.Format(time.RFC3339),
	}
	if s.TimbradoInit != nil {
		resp.TimbradoInit = s.TimbradoInit.Format("2006-01-02")
	}
	resp.Products = make([]dto.SaleItemResponse, 0, len(s.Products))
	for _, item := range s.Products {
		resp.Products = append(resp.Products, dto.SaleItemResponse{
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Name:       item.Name,
			Unit:       item.Unit,
			Quantity:   item.Quantity,
			IVARate:    item.IVARate,
			IVAAmount:  item.IVAAmount,
			TotalPrice: item.TotalPrice,
		})
	}
	resp.Payments = make([]dto.SalePaymentResponse, 0, len(s.Payments))
	for _, p := range s.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{
			Method: p.Method,
			Amount: p.Amount,
			Date:   p.Date.Format(time.RFC3339),
		})
	}
	return resp
}
