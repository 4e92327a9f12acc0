package utils

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"papertrader/internal/domain"
)

// WriteTradesToCSV dumps trade records to a CSV file. Exit columns are left
// empty for trades that are still open.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"id", "symbol", "type", "quantity", "entry_price", "entry_date", "status", "exit_price", "exit_date", "pnl"})

	for _, t := range trades {
		exitPrice, exitDate, pnl := "", "", ""
		if !t.IsOpen() {
			exitPrice = strconv.FormatFloat(t.ExitPrice, 'f', -1, 64)
			exitDate = t.ExitDate.Format(time.RFC3339)
			pnl = strconv.FormatFloat(t.PNL, 'f', -1, 64)
		}
		writer.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Type),
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			t.EntryDate.Format(time.RFC3339),
			string(t.Status),
			exitPrice,
			exitDate,
			pnl,
		})
	}
	return writer.Error()
}
