package controllers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tableorder/events"
	"tableorder/middlewares"
	"tableorder/models"
	"tableorder/services"
	"tableorder/storage"
	"tableorder/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	driver, err := storage.NewFileDriver(t.TempDir())
	if err != nil {
		t.Fatalf("file driver: %v", err)
	}
	menus := storage.NewCollection[models.ShopMenu](driver, storage.CollectionMenus)
	orderSvc := services.NewOrderService(storage.NewCollection[models.Order](driver, storage.CollectionOrders), &events.Recorder{}, true)
	reservationSvc := services.NewReservationService(storage.NewCollection[models.Reservation](driver, storage.CollectionReservations), &events.Recorder{}, true, nil)
	shopSvc := services.NewShopService(
		storage.NewCollection[models.Shop](driver, storage.CollectionShops),
		storage.NewCollection[models.Table](driver, storage.CollectionTables),
		menus,
	)
	menuSvc := services.NewMenuService(menus)
	tokens := utils.NewTableTokens("test-secret")

	r := gin.New()
	api := r.Group("/api")
	NewOrderController(orderSvc).Register(api)
	NewReservationController(reservationSvc).Register(api)
	NewShopController(shopSvc, menuSvc, tokens).Register(api)
	NewCustomerController(orderSvc, menuSvc, tokens).Register(api)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func createOrderBody() gin.H {
	return gin.H{
		"shopId":  "shop-1",
		"tableNo": "A1",
		"items":   []gin.H{{"menuItemId": "m1", "name": "beef noodles", "price": 150, "quantity": 2}},
	}
}

func TestOrderRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/orders", createOrderBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	order := decode[models.Order](t, w)
	if order.Subtotal != 300 || order.TotalPrice != 300 || order.Status != models.OrderStatusNew {
		t.Fatalf("unexpected order: %+v", order)
	}

	w = do(t, r, http.MethodPost, "/api/orders/"+order.ID+"/adjustments", gin.H{
		"name": "service fee", "type": "surcharge", "valueType": "percentage", "value": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add adjustment: %d %s", w.Code, w.Body.String())
	}
	order = decode[models.Order](t, w)
	if order.TotalPrice != 330 {
		t.Fatalf("totalPrice = %d, want 330", order.TotalPrice)
	}

	w = do(t, r, http.MethodPatch, "/api/orders/"+order.ID+"/adjustments/"+order.Adjustments[0].ID, gin.H{"value": 20})
	if w.Code != http.StatusOK || decode[models.Order](t, w).TotalPrice != 360 {
		t.Fatalf("update adjustment: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodDelete, "/api/orders/"+order.ID+"/adjustments/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("remove missing adjustment: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/orders?shopId=shop-1", nil)
	if list := decode[[]models.Order](t, w); w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/orders?shopId=shop-2", nil)
	if list := decode[[]models.Order](t, w); len(list) != 0 {
		t.Fatalf("list other shop returned %d orders", len(list))
	}

	w = do(t, r, http.MethodGet, "/api/orders/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", w.Code)
	}
}

func TestOrderRoutes_Errors(t *testing.T) {
	r := newRouter(t)

	body := createOrderBody()
	body["items"] = []gin.H{}
	w := do(t, r, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty items: %d", w.Code)
	}
	if got := decode[map[string]string](t, w)["field"]; got != "items" {
		t.Fatalf("field = %q, want items", got)
	}

	order := decode[models.Order](t, do(t, r, http.MethodPost, "/api/orders", createOrderBody()))

	w = do(t, r, http.MethodPatch, "/api/orders/"+order.ID, gin.H{"status": "paid"})
	if w.Code != http.StatusConflict {
		t.Fatalf("new -> paid: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPatch, "/api/orders/"+order.ID, gin.H{"status": "cooking"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", w.Code)
	}
	w = do(t, r, http.MethodPatch, "/api/orders/"+order.ID, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing status: %d", w.Code)
	}

	if w = do(t, r, http.MethodPost, "/api/orders/"+order.ID+"/serve", nil); w.Code != http.StatusOK {
		t.Fatalf("serve: %d", w.Code)
	}
	w = do(t, r, http.MethodPost, "/api/orders/"+order.ID+"/pay", nil)
	if w.Code != http.StatusOK || decode[models.Order](t, w).Status != models.OrderStatusPaid {
		t.Fatalf("pay: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/orders/"+order.ID+"/adjustments", gin.H{"type": "tip", "valueType": "fixed", "value": 5})
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, w)["field"] != "type" {
		t.Fatalf("bad adjustment: %d %s", w.Code, w.Body.String())
	}
}

func TestOrderRoutes_AmountsOutsideInt64(t *testing.T) {
	r := newRouter(t)

	body := createOrderBody()
	body["items"] = []gin.H{{"name": "gold leaf", "price": int64(math.MaxInt64 / 2), "quantity": 3}}
	w := do(t, r, http.MethodPost, "/api/orders", body)
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, w)["field"] != "items[0].price" {
		t.Fatalf("overflowing subtotal: %d %s", w.Code, w.Body.String())
	}

	order := decode[models.Order](t, do(t, r, http.MethodPost, "/api/orders", createOrderBody()))
	w = do(t, r, http.MethodPost, "/api/orders/"+order.ID+"/adjustments", gin.H{
		"type": "discount", "valueType": "fixed", "value": 1e19,
	})
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, w)["field"] != "value" {
		t.Fatalf("overflowing discount: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/orders/"+order.ID, nil)
	if got := decode[models.Order](t, w); got.TotalPrice != 300 || len(got.Adjustments) != 0 {
		t.Fatalf("rejected adjustment was stored: %+v", got)
	}
}

func TestReservationRoutes(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/reservations", gin.H{
		"shopId": "shop-1", "tableNo": "B2", "time": "2024-05-01T19:00", "phone": "0912", "source": "預訂",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	res := decode[models.Reservation](t, w)
	if res.Status != models.ReservationPending {
		t.Fatalf("status = %q", res.Status)
	}

	w = do(t, r, http.MethodPost, "/api/reservations/"+res.ID+"/check-in", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("check in: %d", w.Code)
	}
	seated := decode[models.Reservation](t, w)
	if seated.CheckInTime == nil || *seated.CheckInTime > time.Now().UnixMilli() {
		t.Fatalf("bad check-in stamp: %+v", seated)
	}

	w = do(t, r, http.MethodPost, "/api/reservations/"+res.ID+"/cancel", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("cancel after seat: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/reservations?shopId=shop-1", nil)
	if list := decode[[]models.Reservation](t, w); len(list) != 1 {
		t.Fatalf("list: %s", w.Body.String())
	}
	if w = do(t, r, http.MethodGet, "/api/reservations/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", w.Code)
	}
}

func TestShopTokenAndCustomerFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/shops", gin.H{"name": "Noodle Bar"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create shop: %d %s", w.Code, w.Body.String())
	}
	shop := decode[models.Shop](t, w)

	if w = do(t, r, http.MethodPost, "/api/shops", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("nameless shop: %d", w.Code)
	}

	if w = do(t, r, http.MethodPut, "/api/tables/"+shop.ID, gin.H{"tables": []string{"A1", "A2"}}); w.Code != http.StatusOK {
		t.Fatalf("tables: %d %s", w.Code, w.Body.String())
	}
	if w = do(t, r, http.MethodGet, "/api/shops/"+shop.ID+"/tables/Z9/token", nil); w.Code != http.StatusNotFound {
		t.Fatalf("token for unknown table: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/shops/"+shop.ID+"/tables/A1/token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("token: %d %s", w.Code, w.Body.String())
	}
	token := decode[map[string]string](t, w)["token"]

	w = do(t, r, http.MethodPut, "/api/shops/"+shop.ID+"/menu", gin.H{
		"brandName": "Noodle Bar",
		"items":     []gin.H{{"name": "beef noodles", "price": 150}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("menu: %d %s", w.Code, w.Body.String())
	}
	if w = do(t, r, http.MethodGet, "/api/customer/menu", nil, middlewares.TableTokenHeader, token); w.Code != http.StatusNotFound {
		t.Fatalf("unpublished menu visible: %d", w.Code)
	}
	do(t, r, http.MethodPost, "/api/shops/"+shop.ID+"/menu/publish", nil)
	if w = do(t, r, http.MethodGet, "/api/customer/menu", nil, middlewares.TableTokenHeader, token); w.Code != http.StatusOK {
		t.Fatalf("published menu: %d", w.Code)
	}

	if w = do(t, r, http.MethodPost, "/api/customer/orders", createOrderBody()); w.Code != http.StatusUnauthorized {
		t.Fatalf("customer order without token: %d", w.Code)
	}

	earlier := createOrderBody()
	earlier["guestId"] = "g0"
	if w = do(t, r, http.MethodPost, "/api/customer/orders", earlier, middlewares.TableTokenHeader, token); w.Code != http.StatusCreated {
		t.Fatalf("earlier guest order: %d %s", w.Code, w.Body.String())
	}

	body := createOrderBody()
	body["guestId"] = "g1"
	body["shopId"] = "someone-else"
	body["adjustments"] = []gin.H{{"type": "discount", "valueType": "percentage", "value": 100}}
	w = do(t, r, http.MethodPost, "/api/customer/orders", body, middlewares.TableTokenHeader, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("customer order: %d %s", w.Code, w.Body.String())
	}
	order := decode[models.Order](t, w)
	if order.ShopID != shop.ID || order.TableNo != "A1" || len(order.Adjustments) != 0 || order.TotalPrice != 300 {
		t.Fatalf("token did not scope the order: %+v", order)
	}

	w = do(t, r, http.MethodGet, "/api/customer/orders", nil, middlewares.TableTokenHeader, token)
	if w.Code != http.StatusBadRequest || decode[map[string]string](t, w)["field"] != "guestId" {
		t.Fatalf("history without guestId: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodGet, "/api/customer/orders?guestId=g1", nil, middlewares.TableTokenHeader, token)
	if list := decode[[]models.Order](t, w); len(list) != 1 || list[0].ID != order.ID {
		t.Fatalf("customer history: %s", w.Body.String())
	}

	if w = do(t, r, http.MethodDelete, "/api/shops/"+shop.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete shop: %d", w.Code)
	}
	if w = do(t, r, http.MethodDelete, "/api/shops/"+shop.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing shop: %d", w.Code)
	}
	if w = do(t, r, http.MethodGet, "/api/shops/"+shop.ID+"/menu", nil); w.Code != http.StatusNotFound {
		t.Fatalf("menu survived shop delete: %d", w.Code)
	}
}
