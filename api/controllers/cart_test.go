package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
)

func TestCartAddSuccess(t *testing.T) {
	stub := &stubEngine{cart: &cart.Cart{Lines: []cart.Line{{
		ProductID: "prod-1",
		Name:      "Tinta spray",
		Price:     decimal.RequireFromString("25.00"),
		Quantity:  2,
	}}}}
	handler := CartAdd(stub, nil)

	body := bytes.NewBufferString(`{"product_id":"prod-1","quantity":2}`)
	req := scopedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/stores/loja-teste/cart/items", body))

	rec := serve(handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastProductID != "prod-1" || stub.lastQuantity != 2 {
		t.Fatalf("unexpected call: %q qty %d", stub.lastProductID, stub.lastQuantity)
	}
	if stub.lastSlug != "loja-teste" || stub.lastSession != "sess-1" {
		t.Fatalf("scope not forwarded: %q %q", stub.lastSlug, stub.lastSession)
	}

	var envelope struct {
		Data cart.Cart `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Lines) != 1 || envelope.Data.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart payload: %+v", envelope.Data)
	}
}

func TestCartAddRejectsMissingProduct(t *testing.T) {
	stub := &stubEngine{}
	handler := CartAdd(stub, nil)

	body := bytes.NewBufferString(`{"quantity":2}`)
	req := scopedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/stores/loja-teste/cart/items", body))

	rec := serve(handler, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if stub.lastProductID != "" {
		t.Fatal("engine should not be called on invalid payload")
	}
}

func TestCartAddRequiresScope(t *testing.T) {
	handler := CartAdd(&stubEngine{}, nil)

	body := bytes.NewBufferString(`{"product_id":"prod-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stores/loja-teste/cart/items", body)

	rec := serve(handler, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartUpdateQuantityForwardsDelta(t *testing.T) {
	stub := &stubEngine{cart: &cart.Cart{}}
	handler := CartUpdateQuantity(stub, nil)

	body := bytes.NewBufferString(`{"product_id":"prod-1","delta":-1}`)
	req := scopedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/stores/loja-teste/cart/items", body))

	rec := serve(handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastDelta != -1 {
		t.Fatalf("expected delta -1 got %d", stub.lastDelta)
	}
}

func TestCartClear(t *testing.T) {
	stub := &stubEngine{}
	handler := CartClear(stub, nil)

	req := scopedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/stores/loja-teste/cart", nil))

	rec := serve(handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.clearCalls != 1 {
		t.Fatalf("expected one clear call got %d", stub.clearCalls)
	}
}
