// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pduarte/feira-be/internal/adapters/liststore"
	"github.com/pduarte/feira-be/internal/core/ports"
	"github.com/pduarte/feira-be/internal/pkg/config"
	"github.com/pduarte/feira-be/internal/pkg/logger"
)

// Demo pantry staples used to populate development lists.
var demoProducts = []struct {
	productID string
	quantity  string
	notes     string
}{
	{"prod-arroz-5kg", "2", "tipo 1"},
	{"prod-feijao-1kg", "3", ""},
	{"prod-cafe-500g", "1", "moido"},
	{"prod-leite-1l", "6", ""},
	{"prod-banana-kg", "1.5", "prata"},
	{"prod-tomate-kg", "0.8", ""},
	{"prod-queijo-500g", "1", "minas"},
	{"prod-pao-frances-kg", "0.5", ""},
}

func main() {
	listCount := flag.Int("lists", 3, "number of demo lists to create")
	flag.Parse()

	slogger := logger.SetupLogger("info", "text")

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := liststore.NewClient(&liststore.Config{
		BaseURL: cfg.ListStore.BaseURL,
		APIKey:  cfg.ListStore.APIKey,
		Timeout: cfg.ListStore.Timeout,
	}, slogger.Logger)
	if err != nil {
		slogger.Error("failed to create list store client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		slogger.Error("list store unreachable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for i := 0; i < *listCount; i++ {
		listID := fmt.Sprintf("demo-list-%03d", i+1)
		req := buildDemoList(i)

		list, err := client.ReplaceList(ctx, listID, req)
		if err != nil {
			slogger.Error("failed to seed list",
				slog.String("list_id", listID),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		slogger.Info("list seeded",
			slog.String("list_id", list.ID),
			slog.String("name", list.Name),
			slog.Int("items", len(list.Items)))
	}

	slogger.Info("seeding complete", slog.Int("lists", *listCount))
}

func buildDemoList(index int) ports.ReplaceListRequest {
	// Vary item counts so the demo lists are not identical.
	count := 3 + (index % (len(demoProducts) - 2))

	items := make([]ports.ReplaceItem, 0, count)
	for j := 0; j < count; j++ {
		p := demoProducts[(index+j)%len(demoProducts)]
		qty, err := decimal.NewFromString(p.quantity)
		if err != nil {
			qty = decimal.NewFromInt(1)
		}
		items = append(items, ports.ReplaceItem{
			ProductID:     p.productID,
			Quantity:      qty,
			Notes:         p.notes,
			CorrelationID: uuid.New(),
		})
	}

	return ports.ReplaceListRequest{
		Name:        fmt.Sprintf("Feira da semana %d", index+1),
		Description: "lista de demonstracao",
		Items:       items,
	}
}
