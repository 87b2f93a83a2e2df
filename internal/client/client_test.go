package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"driver-portal-api-server/internal/models"
)

func TestAuthenticateAdmin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/admin/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Password != "right-pw" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(models.AdminUser{ID: "adm-1", Email: req.Email, FullName: "Portal Admin"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zap.NewNop())

	user, err := c.AuthenticateAdmin(context.Background(), "admin@portal.test", "right-pw")
	if err != nil {
		t.Fatalf("AuthenticateAdmin returned error: %v", err)
	}
	if user.ID != "adm-1" || user.FullName != "Portal Admin" {
		t.Errorf("AuthenticateAdmin returned %+v", user)
	}

	if _, err := c.AuthenticateAdmin(context.Background(), "admin@portal.test", "wrong-pw"); err == nil {
		t.Error("AuthenticateAdmin succeeded with the wrong password")
	}
}

func TestRegisterSendsAllParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("fullName"); got != "Ana Silva" {
			t.Errorf("fullName = %q", got)
		}
		for _, pose := range models.PhotoTypes {
			if _, _, err := r.FormFile(string(pose)); err != nil {
				t.Errorf("missing photo part %s: %v", pose, err)
			}
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Driver{ID: "drv-1", Status: models.StatusPending})
	}))
	defer server.Close()

	photos := map[models.PhotoType][]byte{
		models.PhotoLeftProfile:  []byte("l"),
		models.PhotoFrontFace:    []byte("f"),
		models.PhotoRightProfile: []byte("r"),
	}

	c := NewClient(server.URL, zap.NewNop())
	driver, err := c.Register(context.Background(), Registration{
		FullName:    "Ana Silva",
		CPF:         "12345678901",
		CompanyName: "Transporte Azul",
		CompanyID:   "TA-01",
		Phone:       "11912345678",
		Email:       "ana@transporte.com",
		Password:    "s3cret-pw",
	}, photos)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if driver.ID != "drv-1" || driver.Status != models.StatusPending {
		t.Errorf("Register returned %+v", driver)
	}
}

func TestListDriversSendsBearerAndFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer the-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("search"); got != "ana" {
			t.Errorf("search = %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "pending" {
			t.Errorf("status = %q", got)
		}
		json.NewEncoder(w).Encode([]models.DriverWithPhotos{
			{Driver: models.Driver{ID: "drv-1", FullName: "Ana Silva", Status: models.StatusPending}},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, zap.NewNop())
	c.SetBearer("the-token")

	drivers, err := c.ListDrivers(context.Background(), "ana", "pending")
	if err != nil {
		t.Fatalf("ListDrivers returned error: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != "drv-1" {
		t.Errorf("ListDrivers returned %+v", drivers)
	}
}

func TestSetStatusSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Driver not found"})
	}))
	defer server.Close()

	c := NewClient(server.URL, zap.NewNop())
	c.SetBearer("the-token")

	_, err := c.SetStatus(context.Background(), "missing-id", models.StatusApproved)
	if err == nil {
		t.Fatal("SetStatus succeeded for an unknown id")
	}
	if !strings.Contains(err.Error(), "Driver not found") {
		t.Errorf("error = %v, want the server's message surfaced", err)
	}
}
