package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"masterbot/internal/constants"
)

// ExportXLSX выгружает заказы и отзывы одной книгой XLSX (админ-отчёт).
// ExportXLSX exports orders and reviews as a single XLSX workbook.
func (h *apiHandlers) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	store := h.deps.Service.Store()

	orders, err := store.ListAllOrders()
	if err != nil {
		log.Error().Err(err).Msg("экспорт: ошибка выборки заказов")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	reviews, err := store.ListAllReviews()
	if err != nil {
		log.Error().Err(err).Msg("экспорт: ошибка выборки отзывов")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const ordersSheet = "Заказы"
	f.SetSheetName("Sheet1", ordersSheet)

	orderHeaders := []string{"ID", "Заказчик (ID)", "Заголовок", "Город", "Категория", "Бюджет", "Статус", "Создан"}
	for i, header := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ordersSheet, cell, header)
	}
	for rowIdx, order := range orders {
		budget := "по договорённости"
		if order.BudgetValue.Valid {
			budget = fmt.Sprintf("%.2f", order.BudgetValue.Float64)
		}
		values := []interface{}{
			order.ID,
			order.ClientID,
			order.Title,
			order.City,
			constants.CategoryDisplayMap[order.Category],
			budget,
			constants.OrderStatusDisplayMap[order.Status],
			order.CreatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(ordersSheet, cell, value)
		}
	}

	const reviewsSheet = "Отзывы"
	f.NewSheet(reviewsSheet)
	reviewHeaders := []string{"ID", "Заказ", "От (ID)", "Кому (ID)", "Роль автора", "Оценка", "Комментарий", "Создан"}
	for i, header := range reviewHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reviewsSheet, cell, header)
	}
	for rowIdx, review := range reviews {
		values := []interface{}{
			review.ID,
			review.OrderID,
			review.FromUserID,
			review.ToUserID,
			review.RoleFrom,
			review.Rating,
			review.Comment,
			review.CreatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(reviewsSheet, cell, value)
		}
	}

	filename := fmt.Sprintf("masterbot_export_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("экспорт: ошибка записи XLSX в ответ")
	}
}
