//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/edumartvn/commerce-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderItemPayload struct {
	Type      string `json:"type"`
	RefID     string `json:"refId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type createOrderPayload struct {
	UserID string             `json:"userId"`
	Items  []orderItemPayload `json:"items"`
}

type orderPayload struct {
	OrderNo       string             `json:"orderNo"`
	UserID        string             `json:"userId"`
	Items         []orderItemPayload `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	Tax           int64              `json:"tax"`
	Total         int64              `json:"total"`
	Currency      string             `json:"currency"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestCheckoutPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.PortalConsumerName,
		Provider: pacttest.APIProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	requestOrder := createOrderPayload{
		UserID: pacttest.PortalUserID,
		Items: []orderItemPayload{{
			Type:      "course",
			RefID:     pacttest.PortalCourseID,
			Name:      pacttest.PortalCourseName,
			UnitPrice: pacttest.PortalUnitPrice,
			Quantity:  1,
		}},
	}
	itemMatcher := matchers.Map{
		"type":      matchers.Term("course", "course|product|service"),
		"refId":     matchers.S(pacttest.PortalCourseID),
		"name":      matchers.Like(pacttest.PortalCourseName),
		"unitPrice": matchers.Like(pacttest.PortalUnitPrice),
		"quantity":  matchers.Like(1),
	}
	orderBodyMatcher := matchers.Map{
		"orderNo":       matchers.Regex(pacttest.ExistingOrderNo, pacttest.OrderNoPattern),
		"userId":        matchers.S(pacttest.PortalUserID),
		"items":         matchers.EachLike(itemMatcher, 1),
		"subtotal":      matchers.Like(500000),
		"tax":           matchers.Like(50000),
		"total":         matchers.Like(550000),
		"currency":      matchers.S("VND"),
		"status":        matchers.Term("pending", "pending|processing|paid|confirmed|delivering|delivered|completed|cancelled|refunded|failed"),
		"paymentStatus": matchers.Term("pending", "pending|processing|completed|failed|refunded"),
		"createdAt":     matchers.Regex("2026-08-31T10:00:00Z", pacttest.RFC3339Pattern),
		"updatedAt":     matchers.Regex("2026-08-31T10:00:00Z", pacttest.RFC3339Pattern),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to place an order").
		WithRequest("POST", "/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"userId": matchers.S(pacttest.PortalUserID),
				"items":  matchers.EachLike(itemMatcher, 1),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderExists).
		UponReceiving("a request to fetch an existing order").
		WithRequest("GET", "/v1/orders/"+pacttest.ExistingOrderNo).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBodyMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", "/v1/orders/"+pacttest.MissingOrderNo).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrderClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, requestOrder)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created == nil || created.OrderNo == "" {
			return fmt.Errorf("expected the created order to carry an order number")
		}

		fetched, err := client.GetOrder(ctx, pacttest.ExistingOrderNo)
		if err != nil {
			return fmt.Errorf("get order: %w", err)
		}
		if fetched == nil || fetched.OrderNo != pacttest.ExistingOrderNo {
			return fmt.Errorf("expected order %s, got %+v", pacttest.ExistingOrderNo, fetched)
		}

		if _, err := client.GetOrder(ctx, pacttest.MissingOrderNo); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderNo)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		return nil
	})
	require.NoError(t, err)
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrderClient(config pactconsumer.MockServerConfig) *orderClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &orderClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *orderClient) CreateOrder(ctx context.Context, order createOrderPayload) (*orderPayload, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload orderPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *orderClient) GetOrder(ctx context.Context, orderNo string) (*orderPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+orderNo, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload orderPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
