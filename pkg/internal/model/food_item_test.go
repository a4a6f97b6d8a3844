package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
	"github.com/yeisme/xianshiji/pkg/internal/model"
)

func TestFoodItemRefresh(t *testing.T) {
	today := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local)
	expiry := model.DateOf(today).AddDays(2)

	item := model.FoodItem{
		Quantity:   decimal.NewFromInt(10),
		ExpiryDate: &expiry,
		Status:     foodstatus.Normal,
	}

	if !item.Refresh(today) {
		t.Fatal("Refresh() should report a change")
	}

	if item.Status != foodstatus.NearExpiry {
		t.Fatalf("status = %s, want NEAR_EXPIRY", item.Status)
	}

	if item.Refresh(today) {
		t.Error("second Refresh() should be a no-op")
	}
}

func TestFoodItemJSONNumbers(t *testing.T) {
	minQty := decimal.RequireFromString("1.5")
	item := model.FoodItem{Quantity: decimal.RequireFromString("2.25"), MinQuantity: &minQty}

	out, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(out), `"quantity":2.25`) || !strings.Contains(string(out), `"minQuantity":1.5`) {
		t.Errorf("Marshal() = %s, want numeric quantities", out)
	}
}
