package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/five82/tote/internal/shop"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// backend serves a small store with one cart line, two addresses and no
// orders. failDefault makes the set-default call fail.
func backend(t *testing.T, failDefault bool) string {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/user", func(r chi.Router) {
		r.Get("/cart", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{{
				"_id": "c1", "size": "M", "quantity": 2,
				"productId": map[string]any{
					"_id": "p1", "productName": "Classic Tee", "salePrice": 499,
					"stock": []map[string]any{{"size": "M", "stock": 3}},
				},
			}}})
		})
		r.Get("/addresses", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"addresses": []map[string]any{
				{"_id": "A1", "firstName": "Asha", "city": "Pune", "isDefaultAddress": true},
				{"_id": "A2", "firstName": "Ravi", "city": "Goa"},
			}})
		})
		r.Get("/orders/user-orders", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"orders": []any{}, "currentPage": 1, "totalPages": 0})
		})
		r.Patch("/addresses/{addressId}/default", func(w http.ResponseWriter, req *http.Request) {
			if failDefault {
				writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Address is locked"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"address": map[string]any{
				"_id": chi.URLParam(req, "addressId"), "isDefaultAddress": true,
			}})
		})
	})
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server.URL + "/api"
}

func writeConfig(t *testing.T, apiBase string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("api_base = %q\ntoken = \"secret\"\nlog_file = %q\n", apiBase, filepath.Join(dir, "tote.log"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TOTE_TOKEN", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCartCommand(t *testing.T) {
	cfg := writeConfig(t, backend(t, false))
	out, err := execute(t, "--config", cfg, "cart")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	for _, want := range []string{"Classic Tee", "₹998.00", "only 3 left", "Subtotal ₹998.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAddressesCommandMarksDefault(t *testing.T) {
	cfg := writeConfig(t, backend(t, false))
	out, err := execute(t, "--config", cfg, "addresses")
	if err != nil {
		t.Fatalf("addresses: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "A1") && !strings.HasPrefix(line, "*") {
			t.Fatalf("default address not marked: %q", line)
		}
	}
}

func TestDefaultCommand(t *testing.T) {
	cfg := writeConfig(t, backend(t, false))
	out, err := execute(t, "--config", cfg, "default", "A2")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if !strings.Contains(out, "Default address updated.") {
		t.Fatalf("output = %q", out)
	}

	out, err = execute(t, "--config", cfg, "default", "A1")
	if err != nil {
		t.Fatalf("default A1: %v", err)
	}
	if !strings.Contains(out, "Already the default address.") {
		t.Fatalf("output = %q", out)
	}
}

func TestDefaultCommandReportsServerMessage(t *testing.T) {
	cfg := writeConfig(t, backend(t, true))
	_, err := execute(t, "--config", cfg, "default", "A2")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := describe(err); got != "Address is locked" {
		t.Fatalf("describe = %q, want server message", got)
	}
	if shop.KindOf(err) != shop.KindValidation {
		t.Fatalf("kind = %v, want validation", shop.KindOf(err))
	}
}

func TestReturnCommandRequiresReason(t *testing.T) {
	cfg := writeConfig(t, backend(t, false))
	_, err := execute(t, "--config", cfg, "return", "o1", "i1")
	if shop.KindOf(err) != shop.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestDescribe(t *testing.T) {
	if got := describe(errors.New("boom")); got != "boom" {
		t.Fatalf("describe = %q, want boom", got)
	}
	err := fmt.Errorf("wrap: %w", shop.NewError("op", shop.KindNotFound, ""))
	if got := describe(err); got != "That item no longer exists." {
		t.Fatalf("describe = %q", got)
	}
}
