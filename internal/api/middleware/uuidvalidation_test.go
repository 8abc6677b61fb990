package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avermeer/stock-ledger-backend/internal/api/middleware"
)

func TestValidateAccountIDMiddleware(t *testing.T) {
	newRequest := func(accountID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rctx := chi.NewRouteContext()
		if accountID != "" {
			rctx.URLParams.Add("accountId", accountID)
		}
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("passes a valid UUID through", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateAccountIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest("550e8400-e29b-41d4-a716-446655440000"))

		if !handlerCalled {
			t.Error("Expected request to reach the handler.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed account ID", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateAccountIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest("not-a-uuid"))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a missing account ID", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateAccountIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest(""))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestValidateTransactionIDMiddleware(t *testing.T) {
	newRequest := func(transactionID string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rctx := chi.NewRouteContext()
		if transactionID != "" {
			rctx.URLParams.Add("uuid", transactionID)
		}
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("passes a valid UUID through", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateTransactionIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest("550e8400-e29b-41d4-a716-446655440000"))

		if !handlerCalled {
			t.Error("Expected request to reach the handler.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed transaction ID", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateTransactionIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest("not-a-uuid"))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a missing transaction ID", func(t *testing.T) {
		handlerCalled := false
		mw := middleware.ValidateTransactionIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
		}))

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, newRequest(""))

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
