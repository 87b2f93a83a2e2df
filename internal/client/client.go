package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"driver-portal-api-server/internal/models"
)

// Client talks to the portal API server on behalf of portalctl.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	// bearer is the serialized credential attached to admin requests.
	bearer string
}

// Registration carries the applicant form fields for Register.
type Registration struct {
	FullName     string
	CPF          string
	CompanyName  string
	CompanyID    string
	Phone        string
	Email        string
	LicensePlate string
	Password     string
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // photo uploads can be slow
		},
		logger: logger,
	}
}

// SetBearer attaches an admin credential to subsequent requests.
func (c *Client) SetBearer(token string) {
	c.bearer = token
}

// AuthenticateAdmin performs the remote admin verification call. It
// satisfies the session manager's Authenticator interface; any non-OK
// answer is an error for the manager to collapse.
func (c *Client) AuthenticateAdmin(ctx context.Context, email, password string) (models.AdminUser, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/admin/login", bytes.NewBuffer(payload))
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AdminUser{}, fmt.Errorf("authentication refused: %s", resp.Status)
	}

	var user models.AdminUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return user, nil
}

// Register submits a driver application with its three captured photos.
func (c *Client) Register(ctx context.Context, reg Registration, photos map[models.PhotoType][]byte) (models.Driver, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"fullName":     reg.FullName,
		"cpf":          reg.CPF,
		"companyName":  reg.CompanyName,
		"companyId":    reg.CompanyID,
		"phone":        reg.Phone,
		"email":        reg.Email,
		"licensePlate": reg.LicensePlate,
		"password":     reg.Password,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return models.Driver{}, fmt.Errorf("failed to build form: %w", err)
		}
	}
	for pose, blob := range photos {
		part, err := writer.CreateFormFile(string(pose), fmt.Sprintf("%s.jpg", pose))
		if err != nil {
			return models.Driver{}, fmt.Errorf("failed to build form: %w", err)
		}
		if _, err := part.Write(blob); err != nil {
			return models.Driver{}, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return models.Driver{}, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/register", &body)
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return models.Driver{}, apiError(resp)
	}

	var driver models.Driver
	if err := json.NewDecoder(resp.Body).Decode(&driver); err != nil {
		return models.Driver{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return driver, nil
}

// ListDrivers fetches applications matching the search/status filter.
func (c *Client) ListDrivers(ctx context.Context, search, status string) ([]models.DriverWithPhotos, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if status != "" {
		query.Set("status", status)
	}

	endpoint := c.baseURL + "/api/v1/admin/drivers/"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var drivers []models.DriverWithPhotos
	if err := c.getJSON(ctx, endpoint, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// GetDriver fetches one application with its photos.
func (c *Client) GetDriver(ctx context.Context, driverID string) (models.DriverWithPhotos, error) {
	var driver models.DriverWithPhotos
	err := c.getJSON(ctx, c.baseURL+"/api/v1/admin/drivers/"+driverID, &driver)
	return driver, err
}

// SetStatus approves or rejects an application and returns the updated
// record.
func (c *Client) SetStatus(ctx context.Context, driverID, status string) (models.Driver, error) {
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/admin/drivers/"+driverID+"/status", bytes.NewBuffer(payload))
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Driver{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Driver{}, apiError(resp)
	}

	var driver models.Driver
	if err := json.NewDecoder(resp.Body).Decode(&driver); err != nil {
		return models.Driver{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return driver, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status, parsed.Error)
	}
	return fmt.Errorf("unexpected response: %s", resp.Status)
}
