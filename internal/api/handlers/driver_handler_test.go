package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driver-portal-api-server/internal/models"
)

func driverNamed(name, cpf, email, company, status string) models.DriverWithPhotos {
	return models.DriverWithPhotos{Driver: models.Driver{
		ID:          "drv-" + name,
		FullName:    name,
		CPF:         cpf,
		Email:       email,
		CompanyName: company,
		Status:      status,
	}}
}

func TestFilterDrivers(t *testing.T) {
	records := []models.DriverWithPhotos{
		driverNamed("Ana Silva", "12345678901", "ana@transporte.com", "Transporte Azul", models.StatusPending),
		driverNamed("Bruno", "10987654321", "bruno@carga.com", "Carga Pesada", models.StatusApproved),
	}

	cases := []struct {
		name    string
		search  string
		status  string
		wantIDs []string
	}{
		{"search by name", "ana", "", []string{"drv-Ana Silva"}},
		{"search case-insensitive", "BRUNO", "", []string{"drv-Bruno"}},
		{"search by cpf", "0987654", "", []string{"drv-Bruno"}},
		{"search by email", "transporte.com", "", []string{"drv-Ana Silva"}},
		{"search by company", "carga", "", []string{"drv-Bruno"}},
		{"search no match", "xyz", "", nil},
		{"status approved", "", models.StatusApproved, []string{"drv-Bruno"}},
		{"status pending", "", models.StatusPending, []string{"drv-Ana Silva"}},
		{"status all", "", "all", []string{"drv-Ana Silva", "drv-Bruno"}},
		{"status empty", "", "", []string{"drv-Ana Silva", "drv-Bruno"}},
		{"search and status combined", "a", models.StatusApproved, []string{"drv-Bruno"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterDrivers(records, tc.search, tc.status)
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("FilterDrivers returned %d records, want %d", len(got), len(tc.wantIDs))
			}
			for i, want := range tc.wantIDs {
				if got[i].ID != want {
					t.Errorf("record %d = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestFilterDriversNeverNil(t *testing.T) {
	if got := FilterDrivers(nil, "anything", "pending"); got == nil {
		t.Error("FilterDrivers returned nil, want empty slice")
	}
}

// registrationForm builds a multipart body with the standard applicant
// fields and a photo part for each listed pose.
func registrationForm(t *testing.T, poses ...models.PhotoType) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"fullName":    "Ana Silva",
		"cpf":         "123.456.789-01",
		"companyName": "Transporte Azul",
		"companyId":   "TA-01",
		"phone":       "(11) 91234-5678",
		"email":       "ana@transporte.com",
		"password":    "s3cret-pw",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatal(err)
		}
	}
	for _, pose := range poses {
		part, err := writer.CreateFormFile(string(pose), string(pose)+".jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("jpeg-bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, writer.FormDataContentType()
}

// A submission missing any pose must be refused before the handler
// touches the database or storage; the nil dependencies prove it.
func TestRegisterIncompletePhotos(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := &DriverHandler{DB: nil, Uploader: nil, Hub: nil, Logger: zap.NewNop()}
	router := gin.New()
	router.POST("/api/v1/register", handler.Register)

	subsets := [][]models.PhotoType{
		{},
		{models.PhotoLeftProfile},
		{models.PhotoLeftProfile, models.PhotoFrontFace},
		{models.PhotoLeftProfile, models.PhotoRightProfile},
	}
	for _, poses := range subsets {
		body, contentType := registrationForm(t, poses...)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("submission with %d photos: status = %d, want 400", len(poses), w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("incomplete photos")) {
			t.Errorf("submission with %d photos: body = %s, want incomplete photos error", len(poses), w.Body.String())
		}
	}
}

func TestRegisterRejectsBadCPF(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := &DriverHandler{Logger: zap.NewNop()}
	router := gin.New()
	router.POST("/api/v1/register", handler.Register)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"fullName":    "Ana Silva",
		"cpf":         "1234",
		"companyName": "Transporte Azul",
		"companyId":   "TA-01",
		"phone":       "11912345678",
		"email":       "ana@transporte.com",
		"password":    "s3cret-pw",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatal(err)
		}
	}
	for _, pose := range models.PhotoTypes {
		part, err := writer.CreateFormFile(string(pose), string(pose)+".jpg")
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("jpeg-bytes"))
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for short CPF", w.Code)
	}
}

func TestDigitsOnly(t *testing.T) {
	cases := []struct{ in, want string }{
		{"123.456.789-01", "12345678901"},
		{"(11) 91234-5678", "11912345678"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := digitsOnly(tc.in); got != tc.want {
			t.Errorf("digitsOnly(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
