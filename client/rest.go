package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nnhatnam05/pizza-dolce-staff-console/models"
)

// Taksonomi error transport. Controller memetakan ini ke respon HTTP
// dan memutuskan apakah perlu reconcile ulang.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// RestClient membungkus HTTP client ke backend Pizza Dolce.
// Token diambil lewat callback supaya selalu memakai token terbaru
// setelah staff login ulang.
type RestClient struct {
	BaseURL string
	Token   func() string
	HTTP    *http.Client
}

func NewRestClient(baseURL string, token func() string) *RestClient {
	return &RestClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (rc *RestClient) do(method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := rc.BaseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rc.Token != nil {
		if token := rc.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := rc.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, ErrForbidden)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrServer)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// FetchTables -> GET /tables
func (rc *RestClient) FetchTables() ([]models.Table, error) {
	var tables []models.Table
	if err := rc.do(http.MethodGet, "/tables", nil, nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// FetchTableOrders -> GET /dinein/table/{number}/all-orders
func (rc *RestClient) FetchTableOrders(tableNumber string) ([]models.Order, error) {
	var orders []models.Order
	path := fmt.Sprintf("/dinein/table/%s/all-orders", url.PathEscape(tableNumber))
	if err := rc.do(http.MethodGet, path, nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchAllOrders -> GET /dinein/orders/all
func (rc *RestClient) FetchAllOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := rc.do(http.MethodGet, "/dinein/orders/all", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// FetchSessions -> GET /dinein/sessions/all (staff calls + payment requests)
func (rc *RestClient) FetchSessions() (*models.SessionSnapshot, error) {
	var snapshot models.SessionSnapshot
	if err := rc.do(http.MethodGet, "/dinein/sessions/all", nil, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// UpdateOrderStatus -> PUT /dinein/orders/{id}/status (dine-in dan takeaway)
func (rc *RestClient) UpdateOrderStatus(orderID uint, status string) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/dinein/orders/%d/status", orderID)
	body := map[string]string{"status": status}
	if err := rc.do(http.MethodPut, path, nil, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateDeliveryStatus -> PUT /orders/{id}/delivery-status?status&note|cancelReason
func (rc *RestClient) UpdateDeliveryStatus(orderID uint, status, note, cancelReason string) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/orders/%d/delivery-status", orderID)
	query := url.Values{}
	query.Set("status", status)
	if cancelReason != "" {
		query.Set("cancelReason", cancelReason)
	} else if note != "" {
		query.Set("note", note)
	}
	if err := rc.do(http.MethodPut, path, query, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder -> PUT /orders/cancel/{id}?reason
// Backend meng-cancel hanya jika order masih bisa dibatalkan dan
// mengembalikan status final versi server.
func (rc *RestClient) CancelOrder(orderID uint, reason string) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/orders/cancel/%d", orderID)
	query := url.Values{}
	query.Set("reason", reason)
	if err := rc.do(http.MethodPut, path, query, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchPaymentStatus -> GET /orders/payment/status/{id}
func (rc *RestClient) FetchPaymentStatus(orderID uint) (*models.Order, error) {
	var order models.Order
	path := fmt.Sprintf("/orders/payment/status/%d", orderID)
	if err := rc.do(http.MethodGet, path, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ResolveStaffCall -> POST /dinein/staff-calls/{tableId}/resolve
func (rc *RestClient) ResolveStaffCall(tableID uint) error {
	path := fmt.Sprintf("/dinein/staff-calls/%d/resolve", tableID)
	return rc.do(http.MethodPost, path, nil, nil, nil)
}

// ResolvePaymentRequest -> POST /dinein/payment-requests/{tableId}/resolve
func (rc *RestClient) ResolvePaymentRequest(tableID uint) error {
	path := fmt.Sprintf("/dinein/payment-requests/%d/resolve", tableID)
	return rc.do(http.MethodPost, path, nil, nil, nil)
}
