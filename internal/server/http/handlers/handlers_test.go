package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
	"github.com/mizanur-rahman/homemeal/internal/server/http/dto"
	"github.com/mizanur-rahman/homemeal/internal/server/http/middleware"
	testhelpers "github.com/mizanur-rahman/homemeal/internal/test"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, path, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asBuyer(c *gin.Context) {
	c.Set(middleware.IdentityContextKey, middleware.Identity{UserID: 1, Email: "buyer@example.com", Role: model.RoleUser})
}

func asChef(c *gin.Context) {
	c.Set(middleware.IdentityContextKey, middleware.Identity{UserID: 2, Email: "chef@example.com", Role: model.RoleChef})
}

func TestCurrentIdentity(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentIdentity(c); got.UserID != 0 {
		t.Fatalf("expected empty identity when not set, got %+v", got)
	}

	c.Set(middleware.IdentityContextKey, middleware.Identity{UserID: 42, Email: "x@example.com", Role: model.RoleAdmin})
	got := CurrentIdentity(c)
	if got.UserID != 42 || got.Role != model.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	body, _ := json.Marshal(dto.RegisterRequest{Email: "user@example.com", Name: "User", Password: "pass"})
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(ctx context.Context, email, name, password string) (string, error) {
		if email != "user@example.com" || name != "User" || password != "pass" {
			t.Fatalf("unexpected payload passed to facade: %q %q %q", email, name, password)
		}
		return "session-token", nil
	}})
	resp := performRequest(t, http.MethodPost, "/register", "/register", handler.Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}

	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	foundCookie := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == "homemeal_token" {
			if cookie.Value != "session-token" {
				t.Fatalf("unexpected token stored in cookie: %q", cookie.Value)
			}
			foundCookie = true
			break
		}
	}
	if !foundCookie {
		t.Fatal("expected auth cookie named homemeal_token")
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid credentials", body: []byte(`{"email":"","password":""}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusBadRequest},
		{name: "already exists", body: []byte(`{"email":"a@b.c","password":"p"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", body: []byte(`{"email":"a@b.c","password":"p"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/register", "/register", NewAuthHandler(tt.facade).Register, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	body, _ := json.Marshal(dto.LoginRequest{Email: "user@example.com", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(testhelpers.AuthFacadeStub{}).Login, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.TokenResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Token == "" {
		t.Fatal("expected token in response")
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid", body: []byte(`{"email":"a@b.c","password":"p"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusUnauthorized},
		{name: "internal", body: []byte(`{"email":"a@b.c","password":"p"}`), facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(tt.facade).Login, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestMealHandlerList(t *testing.T) {
	meals := []model.Meal{{ID: 1, Name: "beef curry"}, {ID: 2, Name: "khichuri"}}
	handler := NewMealHandler(testhelpers.MealFacadeStub{ListFn: func(context.Context) ([]model.Meal, error) {
		return meals, nil
	}})
	resp := performRequest(t, http.MethodGet, "/meals", "/meals", handler.List, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.MealResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != len(meals) {
		t.Fatalf("expected %d meals, got %d", len(meals), len(decoded))
	}

	failing := NewMealHandler(testhelpers.MealFacadeStub{ListFn: func(context.Context) ([]model.Meal, error) {
		return nil, errors.New("boom")
	}})
	resp = performRequest(t, http.MethodGet, "/meals", "/meals", failing.List, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestMealHandlerGet(t *testing.T) {
	handler := NewMealHandler(testhelpers.MealFacadeStub{GetFn: func(_ context.Context, id int64) (*model.Meal, error) {
		return &model.Meal{ID: id, Name: "beef curry", Rating: 4.5, ReviewCount: 2}, nil
	}})
	resp := performRequest(t, http.MethodGet, "/meals/:id", "/meals/7", handler.Get, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.MealResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != 7 || decoded.Rating != 4.5 {
		t.Fatalf("unexpected meal: %+v", decoded)
	}

	resp = performRequest(t, http.MethodGet, "/meals/:id", "/meals/abc", handler.Get, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	missing := NewMealHandler(testhelpers.MealFacadeStub{GetFn: func(context.Context, int64) (*model.Meal, error) {
		return nil, domainErrors.ErrNotFound
	}})
	resp = performRequest(t, http.MethodGet, "/meals/:id", "/meals/7", missing.Get, nil, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestMealHandlerCreate(t *testing.T) {
	body, _ := json.Marshal(dto.MealRequest{Name: "beef curry", Price: 12.5})
	handler := NewMealHandler(testhelpers.MealFacadeStub{CreateFn: func(_ context.Context, chefID int64, name, _ string, price float64, _ string) (*model.Meal, error) {
		if chefID != 2 {
			t.Fatalf("expected chef id 2, got %d", chefID)
		}
		return &model.Meal{ID: 1, ChefID: chefID, Name: name, Price: price}, nil
	}})
	resp := performRequest(t, http.MethodPost, "/meals", "/meals", handler.Create, asChef, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
}

func TestMealHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.MealFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "invalid price", body: []byte(`{"name":"x","price":-1}`), facade: testhelpers.MealFacadeStub{CreateFn: func(context.Context, int64, string, string, float64, string) (*model.Meal, error) {
			return nil, domainErrors.ErrInvalidAmount
		}}, status: http.StatusUnprocessableEntity},
		{name: "internal", body: []byte(`{"name":"x","price":1}`), facade: testhelpers.MealFacadeStub{CreateFn: func(context.Context, int64, string, string, float64, string) (*model.Meal, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/meals", "/meals", NewMealHandler(tt.facade).Create, asChef, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestMealHandlerUpdate(t *testing.T) {
	body := []byte(`{"price":15}`)
	handler := NewMealHandler(testhelpers.MealFacadeStub{UpdateFn: func(_ context.Context, actorID int64, role model.Role, mealID int64, patch repository.MealPatch) error {
		if actorID != 2 || role != model.RoleChef || mealID != 5 {
			t.Fatalf("unexpected arguments: actor=%d role=%s meal=%d", actorID, role, mealID)
		}
		if patch.Price == nil || *patch.Price != 15 {
			t.Fatalf("unexpected patch: %+v", patch)
		}
		return nil
	}})
	resp := performRequest(t, http.MethodPatch, "/meals/:id", "/meals/5", handler.Update, asChef, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestMealHandlerUpdateFailures(t *testing.T) {
	tests := []struct {
		name   string
		target string
		facade testhelpers.MealFacadeStub
		body   []byte
		status int
	}{
		{name: "bad id", target: "/meals/zero", body: []byte(`{}`), status: http.StatusBadRequest},
		{name: "bad json", target: "/meals/5", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "not found", target: "/meals/5", body: []byte(`{}`), facade: testhelpers.MealFacadeStub{UpdateFn: func(context.Context, int64, model.Role, int64, repository.MealPatch) error {
			return domainErrors.ErrNotFound
		}}, status: http.StatusNotFound},
		{name: "forbidden", target: "/meals/5", body: []byte(`{}`), facade: testhelpers.MealFacadeStub{UpdateFn: func(context.Context, int64, model.Role, int64, repository.MealPatch) error {
			return domainErrors.ErrForbidden
		}}, status: http.StatusForbidden},
		{name: "invalid price", target: "/meals/5", body: []byte(`{"price":-1}`), facade: testhelpers.MealFacadeStub{UpdateFn: func(context.Context, int64, model.Role, int64, repository.MealPatch) error {
			return domainErrors.ErrInvalidAmount
		}}, status: http.StatusUnprocessableEntity},
		{name: "internal", target: "/meals/5", body: []byte(`{}`), facade: testhelpers.MealFacadeStub{UpdateFn: func(context.Context, int64, model.Role, int64, repository.MealPatch) error {
			return errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPatch, "/meals/:id", tt.target, NewMealHandler(tt.facade).Update, asChef, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestMealHandlerDelete(t *testing.T) {
	handler := NewMealHandler(testhelpers.MealFacadeStub{})
	resp := performRequest(t, http.MethodDelete, "/meals/:id", "/meals/5", handler.Delete, asChef, nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}

	forbidden := NewMealHandler(testhelpers.MealFacadeStub{DeleteFn: func(context.Context, int64, model.Role, int64) error {
		return domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodDelete, "/meals/:id", "/meals/5", forbidden.Delete, asChef, nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}

	missing := NewMealHandler(testhelpers.MealFacadeStub{DeleteFn: func(context.Context, int64, model.Role, int64) error {
		return domainErrors.ErrNotFound
	}})
	resp = performRequest(t, http.MethodDelete, "/meals/:id", "/meals/5", missing.Delete, asChef, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestReviewHandlerListByMeal(t *testing.T) {
	handler := NewReviewHandler(testhelpers.ReviewFacadeStub{ListFn: func(_ context.Context, mealID int64) ([]model.Review, error) {
		return []model.Review{{ID: 1, MealID: mealID, Rating: 5}}, nil
	}})
	resp := performRequest(t, http.MethodGet, "/meals/:id/reviews", "/meals/3/reviews", handler.ListByMeal, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.ReviewResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 1 || decoded[0].MealID != 3 {
		t.Fatalf("unexpected reviews: %+v", decoded)
	}

	resp = performRequest(t, http.MethodGet, "/meals/:id/reviews", "/meals/bad/reviews", handler.ListByMeal, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestReviewHandlerCreate(t *testing.T) {
	body, _ := json.Marshal(dto.ReviewRequest{MealID: 3, Rating: 5, Body: "great"})
	handler := NewReviewHandler(testhelpers.ReviewFacadeStub{CreateFn: func(_ context.Context, authorID int64, authorEmail string, mealID int64, rating int, reviewBody string) (*model.Review, error) {
		if authorID != 1 || authorEmail != "buyer@example.com" || mealID != 3 || rating != 5 {
			t.Fatalf("unexpected arguments: %d %q %d %d", authorID, authorEmail, mealID, rating)
		}
		return &model.Review{ID: 9, MealID: mealID, UserEmail: authorEmail, Rating: rating, Body: reviewBody}, nil
	}})
	resp := performRequest(t, http.MethodPost, "/reviews", "/reviews", handler.Create, asBuyer, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
}

func TestReviewHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.ReviewFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "invalid rating", body: []byte(`{"mealId":3,"rating":6}`), facade: testhelpers.ReviewFacadeStub{CreateFn: func(context.Context, int64, string, int64, int, string) (*model.Review, error) {
			return nil, domainErrors.ErrInvalidRating
		}}, status: http.StatusUnprocessableEntity},
		{name: "missing meal", body: []byte(`{"mealId":99,"rating":5}`), facade: testhelpers.ReviewFacadeStub{CreateFn: func(context.Context, int64, string, int64, int, string) (*model.Review, error) {
			return nil, domainErrors.ErrNotFound
		}}, status: http.StatusNotFound},
		{name: "internal", body: []byte(`{"mealId":3,"rating":5}`), facade: testhelpers.ReviewFacadeStub{CreateFn: func(context.Context, int64, string, int64, int, string) (*model.Review, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/reviews", "/reviews", NewReviewHandler(tt.facade).Create, asBuyer, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestReviewHandlerUpdate(t *testing.T) {
	body := []byte(`{"rating":4}`)
	handler := NewReviewHandler(testhelpers.ReviewFacadeStub{})
	resp := performRequest(t, http.MethodPatch, "/reviews/:id", "/reviews/9", handler.Update, asBuyer, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid rating", err: domainErrors.ErrInvalidRating, status: http.StatusUnprocessableEntity},
		{name: "not found", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "forbidden", err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing := NewReviewHandler(testhelpers.ReviewFacadeStub{UpdateFn: func(context.Context, int64, int64, repository.ReviewPatch) error {
				return tt.err
			}})
			resp := performRequest(t, http.MethodPatch, "/reviews/:id", "/reviews/9", failing.Update, asBuyer, body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestReviewHandlerDelete(t *testing.T) {
	handler := NewReviewHandler(testhelpers.ReviewFacadeStub{})
	resp := performRequest(t, http.MethodDelete, "/reviews/:id", "/reviews/9", handler.Delete, asBuyer, nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}

	forbidden := NewReviewHandler(testhelpers.ReviewFacadeStub{DeleteFn: func(context.Context, int64, model.Role, int64) error {
		return domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodDelete, "/reviews/:id", "/reviews/9", forbidden.Delete, asBuyer, nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func marketFacadeWithOrders(orders testhelpers.OrderFacadeStub, auth testhelpers.AuthFacadeStub) testhelpers.MarketFacadeStub {
	return testhelpers.MarketFacadeStub{OrderFacadeStub: orders, AuthFacadeStub: auth}
}

func TestOrderHandlerPlace(t *testing.T) {
	body, _ := json.Marshal(dto.OrderRequest{MealID: 3, Quantity: 2})
	facade := marketFacadeWithOrders(testhelpers.OrderFacadeStub{PlaceFn: func(_ context.Context, buyer *model.User, mealID int64, quantity int) (*model.Order, error) {
		if buyer.ID != 1 || mealID != 3 || quantity != 2 {
			t.Fatalf("unexpected arguments: buyer=%d meal=%d qty=%d", buyer.ID, mealID, quantity)
		}
		return &model.Order{ID: 10, Reference: "ref-10", BuyerEmail: buyer.Email, MealID: mealID, Quantity: quantity, Status: model.OrderStatusPlaced, PaymentStatus: model.PaymentStatusUnpaid}, nil
	}}, testhelpers.AuthFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade).Place, asBuyer, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Reference != "ref-10" || decoded.Status != "placed" || decoded.PaymentStatus != "unpaid" {
		t.Fatalf("unexpected order: %+v", decoded)
	}
}

func TestOrderHandlerPlaceFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.MarketFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", facade: testhelpers.MarketFacadeStub{}, body: []byte("oops"), status: http.StatusBadRequest},
		{name: "unknown buyer", facade: marketFacadeWithOrders(testhelpers.OrderFacadeStub{}, testhelpers.AuthFacadeStub{UserFn: func(context.Context, int64) (*model.User, error) {
			return nil, domainErrors.ErrNotFound
		}}), body: []byte(`{"mealId":3,"quantity":1}`), status: http.StatusUnauthorized},
		{name: "invalid quantity", facade: marketFacadeWithOrders(testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, *model.User, int64, int) (*model.Order, error) {
			return nil, domainErrors.ErrInvalidQuantity
		}}, testhelpers.AuthFacadeStub{}), body: []byte(`{"mealId":3,"quantity":0}`), status: http.StatusUnprocessableEntity},
		{name: "missing meal", facade: marketFacadeWithOrders(testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, *model.User, int64, int) (*model.Order, error) {
			return nil, domainErrors.ErrNotFound
		}}, testhelpers.AuthFacadeStub{}), body: []byte(`{"mealId":99,"quantity":1}`), status: http.StatusNotFound},
		{name: "internal", facade: marketFacadeWithOrders(testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, *model.User, int64, int) (*model.Order, error) {
			return nil, errors.New("boom")
		}}, testhelpers.AuthFacadeStub{}), body: []byte(`{"mealId":3,"quantity":1}`), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(tt.facade).Place, asBuyer, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerLists(t *testing.T) {
	facade := marketFacadeWithOrders(testhelpers.OrderFacadeStub{BuyerFn: func(_ context.Context, buyerID int64) ([]model.Order, error) {
		return []model.Order{{ID: 1, BuyerID: buyerID}, {ID: 2, BuyerID: buyerID}}, nil
	}}, testhelpers.AuthFacadeStub{})
	resp := performRequest(t, http.MethodGet, "/orders", "/orders", NewOrderHandler(facade).ListMine, asBuyer, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(decoded))
	}

	chefFacade := marketFacadeWithOrders(testhelpers.OrderFacadeStub{ChefFn: func(_ context.Context, chefID int64) ([]model.Order, error) {
		return []model.Order{{ID: 3, ChefID: chefID}}, nil
	}}, testhelpers.AuthFacadeStub{})
	resp = performRequest(t, http.MethodGet, "/chef/orders", "/chef/orders", NewOrderHandler(chefFacade).ListForChef, asChef, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	failing := marketFacadeWithOrders(testhelpers.OrderFacadeStub{BuyerFn: func(context.Context, int64) ([]model.Order, error) {
		return nil, errors.New("boom")
	}}, testhelpers.AuthFacadeStub{})
	resp = performRequest(t, http.MethodGet, "/orders", "/orders", NewOrderHandler(failing).ListMine, asBuyer, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestOrderHandlerUpdateStatus(t *testing.T) {
	body := []byte(`{"status":"accepted"}`)
	facade := marketFacadeWithOrders(testhelpers.OrderFacadeStub{TransitionFn: func(_ context.Context, actorID int64, role model.Role, orderID int64, to model.OrderStatus) error {
		if actorID != 2 || role != model.RoleChef || orderID != 10 || to != model.OrderStatusAccepted {
			t.Fatalf("unexpected arguments: actor=%d role=%s order=%d to=%s", actorID, role, orderID, to)
		}
		return nil
	}}, testhelpers.AuthFacadeStub{})
	resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/10/status", NewOrderHandler(facade).UpdateStatus, asChef, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestOrderHandlerUpdateStatusFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unknown status", err: domainErrors.ErrUnknownStatus, status: http.StatusUnprocessableEntity},
		{name: "lost race", err: domainErrors.ErrInvalidTransition, status: http.StatusConflict},
		{name: "not found", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "forbidden", err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	body := []byte(`{"status":"accepted"}`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := marketFacadeWithOrders(testhelpers.OrderFacadeStub{TransitionFn: func(context.Context, int64, model.Role, int64, model.OrderStatus) error {
				return tt.err
			}}, testhelpers.AuthFacadeStub{})
			resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/10/status", NewOrderHandler(facade).UpdateStatus, asChef, body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}

	facade := testhelpers.MarketFacadeStub{}
	resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/bad/status", NewOrderHandler(facade).UpdateStatus, asChef, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPaymentHandlerCreateSession(t *testing.T) {
	body, _ := json.Marshal(dto.CheckoutSessionRequest{OrderID: 10})
	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{SessionFn: func(_ context.Context, buyerID, orderID int64) (string, error) {
		if buyerID != 1 || orderID != 10 {
			t.Fatalf("unexpected arguments: buyer=%d order=%d", buyerID, orderID)
		}
		return "https://checkout.example.com/s/abc", nil
	}})
	resp := performRequest(t, http.MethodPost, "/payments/checkout-session", "/payments/checkout-session", handler.CreateSession, asBuyer, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.CheckoutSessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.URL != "https://checkout.example.com/s/abc" {
		t.Fatalf("unexpected URL: %q", decoded.URL)
	}
}

func TestPaymentHandlerCreateSessionFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "forbidden", err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "already paid", err: domainErrors.ErrOrderAlreadyPaid, status: http.StatusConflict},
		{name: "invalid amount", err: domainErrors.ErrInvalidAmount, status: http.StatusUnprocessableEntity},
		{name: "provider down", err: errors.New("connection refused"), status: http.StatusBadGateway},
	}

	body := []byte(`{"orderId":10}`)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{SessionFn: func(context.Context, int64, int64) (string, error) {
				return "", tt.err
			}})
			resp := performRequest(t, http.MethodPost, "/payments/checkout-session", "/payments/checkout-session", handler.CreateSession, asBuyer, body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}

	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/payments/checkout-session", "/payments/checkout-session", handler.CreateSession, asBuyer, []byte("oops"), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPaymentHandlerSuccess(t *testing.T) {
	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{ConfirmFn: func(_ context.Context, sessionID string) (*usecase.SettlementResult, error) {
		if sessionID != "cs_1" {
			t.Fatalf("unexpected session id %q", sessionID)
		}
		return &usecase.SettlementResult{Record: &model.PaymentRecord{TransactionID: "txn-1"}, Replayed: false}, nil
	}})
	resp := performRequest(t, http.MethodPatch, "/payments/success", "/payments/success?session_id=cs_1", handler.Success, asBuyer, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.SettlementResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Status != "settled" || decoded.TransactionID != "txn-1" || decoded.Replayed {
		t.Fatalf("unexpected settlement: %+v", decoded)
	}
}

func TestPaymentHandlerSuccessReplay(t *testing.T) {
	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{ConfirmFn: func(context.Context, string) (*usecase.SettlementResult, error) {
		return &usecase.SettlementResult{Record: &model.PaymentRecord{TransactionID: "txn-1"}, Replayed: true}, nil
	}})
	resp := performRequest(t, http.MethodPatch, "/payments/success", "/payments/success?session_id=cs_1", handler.Success, asBuyer, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.SettlementResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !decoded.Replayed {
		t.Fatalf("expected replayed flag, got %+v", decoded)
	}
}

func TestPaymentHandlerSuccessFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "payment pending", err: domainErrors.ErrPaymentPending, status: http.StatusPaymentRequired},
		{name: "unknown order", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "unknown session", err: checkout.ErrSessionNotFound, status: http.StatusNotFound},
		{name: "rate limited", err: checkout.TooManyRequestsError{RetryAfter: time.Second}, status: http.StatusServiceUnavailable},
		{name: "provider failure", err: errors.New("boom"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{ConfirmFn: func(context.Context, string) (*usecase.SettlementResult, error) {
				return nil, tt.err
			}})
			resp := performRequest(t, http.MethodPatch, "/payments/success", "/payments/success?session_id=cs_1", handler.Success, asBuyer, nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}

	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{})
	resp := performRequest(t, http.MethodPatch, "/payments/success", "/payments/success", handler.Success, asBuyer, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without session_id, got %d", resp.Code)
	}
}

func TestPaymentHandlerHistory(t *testing.T) {
	handler := NewPaymentHandler(testhelpers.PaymentFacadeStub{HistoryFn: func(_ context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
		if buyerEmail != "buyer@example.com" {
			t.Fatalf("unexpected email %q", buyerEmail)
		}
		return []model.PaymentRecord{{TransactionID: "txn-1", OrderID: 10, AmountMinor: 2500, PaidAt: time.Unix(0, 0)}}, nil
	}})
	resp := performRequest(t, http.MethodGet, "/payments", "/payments", handler.History, asBuyer, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.PaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 1 || decoded[0].AmountMinor != 2500 {
		t.Fatalf("unexpected history: %+v", decoded)
	}

	failing := NewPaymentHandler(testhelpers.PaymentFacadeStub{HistoryFn: func(context.Context, string) ([]model.PaymentRecord, error) {
		return nil, errors.New("boom")
	}})
	resp = performRequest(t, http.MethodGet, "/payments", "/payments", failing.History, asBuyer, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestRoleRequestHandlerSubmit(t *testing.T) {
	body, _ := json.Marshal(dto.RoleRequestRequest{Role: "chef"})
	handler := NewRoleRequestHandler(testhelpers.RoleRequestFacadeStub{SubmitFn: func(_ context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
		if userID != 1 || role != model.RoleChef {
			t.Fatalf("unexpected arguments: user=%d role=%s", userID, role)
		}
		return &model.RoleRequest{ID: 4, UserID: userID, RequestedRole: role, Status: model.RoleRequestPending}, nil
	}})
	resp := performRequest(t, http.MethodPost, "/role-requests", "/role-requests", handler.Submit, asBuyer, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var decoded dto.RoleRequestResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Status != "pending" || decoded.RequestedRole != "chef" {
		t.Fatalf("unexpected request: %+v", decoded)
	}
}

func TestRoleRequestHandlerSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.RoleRequestFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "invalid role", body: []byte(`{"role":"superuser"}`), facade: testhelpers.RoleRequestFacadeStub{SubmitFn: func(context.Context, int64, model.Role) (*model.RoleRequest, error) {
			return nil, domainErrors.ErrInvalidRole
		}}, status: http.StatusUnprocessableEntity},
		{name: "internal", body: []byte(`{"role":"chef"}`), facade: testhelpers.RoleRequestFacadeStub{SubmitFn: func(context.Context, int64, model.Role) (*model.RoleRequest, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/role-requests", "/role-requests", NewRoleRequestHandler(tt.facade).Submit, asBuyer, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestRoleRequestHandlerListPending(t *testing.T) {
	handler := NewRoleRequestHandler(testhelpers.RoleRequestFacadeStub{})
	resp := performRequest(t, http.MethodGet, "/admin/role-requests", "/admin/role-requests", handler.ListPending, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.RoleRequestResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(decoded))
	}

	failing := NewRoleRequestHandler(testhelpers.RoleRequestFacadeStub{PendingFn: func(context.Context) ([]model.RoleRequest, error) {
		return nil, errors.New("boom")
	}})
	resp = performRequest(t, http.MethodGet, "/admin/role-requests", "/admin/role-requests", failing.ListPending, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestRoleRequestHandlerDecide(t *testing.T) {
	body := []byte(`{"approve":true}`)
	handler := NewRoleRequestHandler(testhelpers.RoleRequestFacadeStub{DecideFn: func(_ context.Context, requestID int64, approve bool) (*model.RoleRequest, error) {
		if requestID != 4 || !approve {
			t.Fatalf("unexpected arguments: id=%d approve=%v", requestID, approve)
		}
		now := time.Unix(0, 0)
		return &model.RoleRequest{ID: requestID, Status: model.RoleRequestApproved, DecidedAt: &now}, nil
	}})
	resp := performRequest(t, http.MethodPatch, "/admin/role-requests/:id", "/admin/role-requests/4", handler.Decide, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.RoleRequestResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Status != "approved" || decoded.DecidedAt == nil {
		t.Fatalf("unexpected request: %+v", decoded)
	}
}

func TestRoleRequestHandlerDecideFailures(t *testing.T) {
	tests := []struct {
		name   string
		target string
		facade testhelpers.RoleRequestFacadeStub
		body   []byte
		status int
	}{
		{name: "bad id", target: "/admin/role-requests/bad", body: []byte(`{}`), status: http.StatusBadRequest},
		{name: "bad json", target: "/admin/role-requests/4", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "not found", target: "/admin/role-requests/4", body: []byte(`{"approve":true}`), facade: testhelpers.RoleRequestFacadeStub{DecideFn: func(context.Context, int64, bool) (*model.RoleRequest, error) {
			return nil, domainErrors.ErrNotFound
		}}, status: http.StatusNotFound},
		{name: "already decided", target: "/admin/role-requests/4", body: []byte(`{"approve":false}`), facade: testhelpers.RoleRequestFacadeStub{DecideFn: func(context.Context, int64, bool) (*model.RoleRequest, error) {
			return nil, domainErrors.ErrInvalidTransition
		}}, status: http.StatusConflict},
		{name: "internal", target: "/admin/role-requests/4", body: []byte(`{"approve":true}`), facade: testhelpers.RoleRequestFacadeStub{DecideFn: func(context.Context, int64, bool) (*model.RoleRequest, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPatch, "/admin/role-requests/:id", tt.target, NewRoleRequestHandler(tt.facade).Decide, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}
