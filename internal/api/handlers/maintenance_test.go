package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/testutil"
)

func setupMaintenanceHandler(t *testing.T) (*MaintenanceHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewMaintenanceHandler(
		testutil.NewTestReconciliationSync(t, db),
		testutil.NewTestConsistencyValidator(t, db),
	), db
}

func TestMaintenanceHandler_Backfill(t *testing.T) {
	t.Run("backfills missing cash entries", func(t *testing.T) {
		handler, db := setupMaintenanceHandler(t)
		account := testutil.CreateAccount(t, db, "Brokerage")
		testutil.NewTransaction(account.ID).
			WithTradeDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Build(t, db)

		req := withAccountID(httptest.NewRequest(http.MethodPost, "/api/account/x/reconcile", nil), account.ID)
		w := httptest.NewRecorder()

		handler.Backfill(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.BackfillResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Created != 1 {
			t.Errorf("Expected 1 created, got %+v", response)
		}
		testutil.AssertRowCount(t, db, "cash_entry", 1)
	})

	t.Run("returns 404 for an unknown account", func(t *testing.T) {
		handler, _ := setupMaintenanceHandler(t)

		req := withAccountID(httptest.NewRequest(http.MethodPost, "/api/account/x/reconcile", nil), testutil.MakeID())
		w := httptest.NewRecorder()

		handler.Backfill(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestMaintenanceHandler_Validate(t *testing.T) {
	t.Run("returns empty array for a consistent account", func(t *testing.T) {
		handler, db := setupMaintenanceHandler(t)
		account := testutil.CreateAccount(t, db, "Brokerage")

		req := withAccountID(httptest.NewRequest(http.MethodGet, "/api/account/x/validate", nil), account.ID)
		w := httptest.NewRecorder()

		handler.Validate(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Violation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected no violations, got %+v", response)
		}
	})

	t.Run("reports violations with 200, not an error status", func(t *testing.T) {
		handler, db := setupMaintenanceHandler(t)
		account := testutil.CreateAccount(t, db, "Brokerage")

		// A transaction with no cash entry and no lot: cash-link and
		// share-mismatch findings.
		testutil.NewTransaction(account.ID).Build(t, db)

		req := withAccountID(httptest.NewRequest(http.MethodGet, "/api/account/x/validate", nil), account.ID)
		w := httptest.NewRecorder()

		handler.Validate(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Violation
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected 2 violations, got %+v", response)
		}
	})
}
