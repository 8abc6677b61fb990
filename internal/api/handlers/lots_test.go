package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avermeer/stock-ledger-backend/internal/model"
	"github.com/avermeer/stock-ledger-backend/internal/repository"
	"github.com/avermeer/stock-ledger-backend/internal/service"
	"github.com/avermeer/stock-ledger-backend/internal/testutil"
)

func TestLotHandler_OpenLots(t *testing.T) {
	t.Run("returns only open lots by default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewLotHandler(service.NewLotService(repository.NewLotRepository(db)))
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).Build(t, db)
		t2 := testutil.NewTransaction(account.ID).Build(t, db)
		open := testutil.NewLot(account.ID, t1.ID).Build(t, db)
		testutil.NewLot(account.ID, t2.ID).WithQuantities("10", "0").Build(t, db)

		req := withAccountID(httptest.NewRequest(http.MethodGet, "/api/account/x/lots", nil), account.ID)
		w := httptest.NewRecorder()

		handler.OpenLots(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Lot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 open lot, got %d", len(response))
		}
		if response[0].ID != open.ID {
			t.Errorf("Expected lot %s, got %s", open.ID, response[0].ID)
		}
	})

	t.Run("includes closed lots with all=true", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewLotHandler(service.NewLotService(repository.NewLotRepository(db)))
		account := testutil.CreateAccount(t, db, "Brokerage")

		t1 := testutil.NewTransaction(account.ID).Build(t, db)
		testutil.NewLot(account.ID, t1.ID).WithQuantities("10", "0").Build(t, db)

		req := withAccountID(httptest.NewRequest(http.MethodGet, "/api/account/x/lots?all=true", nil), account.ID)
		w := httptest.NewRecorder()

		handler.OpenLots(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Lot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Errorf("Expected 1 lot including closed, got %d", len(response))
		}
	})
}
