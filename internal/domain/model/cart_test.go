package model_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"app/internal/domain/model"
)

func gormTag(t *testing.T, typ reflect.Type, field string) string {
	t.Helper()
	f, ok := typ.FieldByName(field)
	if !ok {
		t.Fatalf("field %s not found on %s", field, typ.Name())
	}
	return f.Tag.Get("gorm")
}

// 行ロックは既存行にしか効かないので、同時の初回INSERTは一意制約で潰す。
// ACTIVEカートが2つできたり、同一商品の明細が2行できたりしないこと。
func TestCartSchema_UniqueConstraints(t *testing.T) {
	cart := reflect.TypeOf(model.Cart{})
	assert.Contains(t, gormTag(t, cart, "UserID"), "uniqueIndex:uq_carts_user_status")
	assert.Contains(t, gormTag(t, cart, "Status"), "uniqueIndex:uq_carts_user_status")

	item := reflect.TypeOf(model.CartItem{})
	assert.Contains(t, gormTag(t, item, "CartID"), "uniqueIndex:uq_cart_items_cart_product")
	assert.Contains(t, gormTag(t, item, "ProductID"), "uniqueIndex:uq_cart_items_cart_product")
}
