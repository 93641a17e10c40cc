package receipts

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

func TestRenderIncludesOrderAndItems(t *testing.T) {
	data := Data{
		OrderDisplayID: "PED-1042",
		StoreName:      "Loja da Ana",
		StorePhone:     "+55 11 99999-0000",
		Customer:       types.CustomerInfo{Name: "Carlos", Phone: "+55 11 98888-0000"},
		Items: []LineItem{
			{Name: "Bota Couro", Reference: "BT-01", Quantity: 2, UnitPrice: decimal.NewFromInt(150), LineTotal: decimal.NewFromInt(300)},
		},
		Total:      decimal.NewFromInt(300),
		ShowPrices: true,
		IssuedAt:   time.Date(2025, 8, 1, 10, 30, 0, 0, time.UTC),
	}

	raw, err := Render(data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	doc := string(raw)

	for _, want := range []string{"PED-1042", "Loja da Ana", "Carlos", "Bota Couro", "R$ 300.00", "01/08/2025"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected receipt to contain %q", want)
		}
	}
}

func TestRenderHidesPricesWhenGated(t *testing.T) {
	data := Data{
		OrderDisplayID: "PED-7",
		StoreName:      "Loja",
		Customer:       types.CustomerInfo{Name: "B", Phone: "1"},
		Items: []LineItem{
			{Name: "Item", Reference: "R1", Quantity: 1, UnitPrice: decimal.NewFromInt(99), LineTotal: decimal.NewFromInt(99)},
		},
		Total:      decimal.NewFromInt(99),
		ShowPrices: false,
	}

	raw, err := Render(data)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(string(raw), "R$ 99.00") {
		t.Fatal("expected prices to be omitted when gated")
	}
}

func TestRenderRequiresDisplayID(t *testing.T) {
	if _, err := Render(Data{}); err == nil {
		t.Fatal("expected error for missing display id")
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName("receipts", "PED 1042"); got != "receipts/ped-1042.html" {
		t.Fatalf("unexpected object name %q", got)
	}
	if got := ObjectName("", "PED-1"); got != "ped-1.html" {
		t.Fatalf("unexpected object name %q", got)
	}
}
