package momo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumartvn/commerce-api/internal/domains/payments/adapters/gateway/sign"
	"github.com/edumartvn/commerce-api/internal/domains/payments/domain"
	apperrors "github.com/edumartvn/commerce-api/internal/shared/errors"
)

const (
	testAccessKey = "ACCESSKEY"
	testSecretKey = "MOMOTESTSECRET"
)

func testConfig() Config {
	return Config{
		PartnerCode: "EDUMART",
		AccessKey:   testAccessKey,
		SecretKey:   testSecretKey,
		RedirectURL: "https://edumart.vn/v1/payments/momo/return",
		IPNURL:      "https://edumart.vn/v1/webhooks/momo",
	}
}

func signedCallback(overrides map[string]string) map[string]string {
	params := map[string]string{
		"partnerCode": "EDUMART",
		"orderId":     "EDM2608310001",
		"requestId":   "9f1c2ad2-4f63-4fa6-9a3c-1f2d3e4a5b6c",
		"amount":      "990000",
		"transId":     "2147483901",
		"resultCode":  "0",
		"message":     "Successful.",
	}
	for key, value := range overrides {
		params[key] = value
	}
	params["signature"] = sign.HMACSHA256(testSecretKey, sign.Canonical(params))
	return params
}

func TestCreatePayment_SignsRequestAndReturnsPayURL(t *testing.T) {
	var received createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/gateway/api/create", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(createResponse{
			ResultCode: 0,
			PayURL:     "https://test-payment.momo.vn/pay/abc",
			QRCodeURL:  "https://test-payment.momo.vn/qr/abc",
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)
	g := New(testConfig(), client)

	link, err := g.CreatePayment(context.Background(), domain.PaymentIntent{
		OrderNo: "EDM2608310001",
		Amount:  990000,
	})
	require.NoError(t, err)
	require.Equal(t, "https://test-payment.momo.vn/pay/abc", link.RedirectURL)
	require.Equal(t, "https://test-payment.momo.vn/qr/abc", link.QRCodeURL)

	// The requestId is a fresh uuid, distinct from the orderId.
	require.NotEmpty(t, received.RequestID)
	require.NotEqual(t, received.OrderID, received.RequestID)
	require.Equal(t, link.Reference, received.RequestID)
	// Amount travels as-is, no ×100.
	require.Equal(t, int64(990000), received.Amount)

	expected := sign.HMACSHA256(testSecretKey, sign.Canonical(map[string]string{
		"accessKey":   testAccessKey,
		"partnerCode": received.PartnerCode,
		"requestId":   received.RequestID,
		"orderId":     received.OrderID,
		"amount":      strconv.FormatInt(received.Amount, 10),
		"orderInfo":   received.OrderInfo,
		"redirectUrl": received.RedirectURL,
		"ipnUrl":      received.IPNURL,
		"requestType": received.RequestType,
		"extraData":   received.ExtraData,
	}))
	require.Equal(t, expected, received.Signature)
}

func TestCreatePayment_DeclinedResultCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(createResponse{ResultCode: 41, Message: "duplicate orderId"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)
	g := New(testConfig(), client)

	_, err = g.CreatePayment(context.Background(), domain.PaymentIntent{OrderNo: "EDM1", Amount: 1000})
	require.True(t, apperrors.IsKind(err, apperrors.KindPayment))
}

func TestCreatePayment_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)
	g := New(testConfig(), client)

	_, err = g.CreatePayment(context.Background(), domain.PaymentIntent{OrderNo: "EDM1", Amount: 1000})
	require.True(t, apperrors.IsKind(err, apperrors.KindNetwork))
}

func TestVerifyCallback_RoundTrip(t *testing.T) {
	g := New(testConfig(), nil)

	result, err := g.VerifyCallback(signedCallback(nil))
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.True(t, result.Success)
	require.Equal(t, "EDM2608310001", result.OrderNo)
	require.Equal(t, int64(990000), result.Amount)
	require.Equal(t, "2147483901", result.TransactionID)
	require.Equal(t, "Successful.", result.Message)
}

func TestVerifyCallback_TamperedFieldFails(t *testing.T) {
	g := New(testConfig(), nil)

	for _, field := range []string{"orderId", "amount", "transId", "resultCode"} {
		params := signedCallback(nil)
		params[field] = params[field] + "x"
		result, err := g.VerifyCallback(params)
		require.NoError(t, err)
		assert.False(t, result.Valid, "tampered %s must not verify", field)
		assert.False(t, result.Success)
		assert.Equal(t, "invalid signature", result.Message)
	}
}

func TestVerifyCallback_ForgedSuccessNotTrusted(t *testing.T) {
	g := New(testConfig(), nil)

	params := signedCallback(map[string]string{"resultCode": "1006", "message": "user denied"})
	params["resultCode"] = "0"

	result, err := g.VerifyCallback(params)
	require.NoError(t, err)
	require.False(t, result.Valid)
	require.False(t, result.Success)
}

func TestVerifyCallback_ValidFailureCode(t *testing.T) {
	g := New(testConfig(), nil)

	result, err := g.VerifyCallback(signedCallback(map[string]string{"resultCode": "1006", "message": "user denied the payment"}))
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.False(t, result.Success)
	require.Equal(t, "user denied the payment", result.Message)
}

func TestRefund_SignsAndDispatches(t *testing.T) {
	var received refundRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/gateway/api/refund", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(refundResponse{ResultCode: 0})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)
	g := New(testConfig(), client)

	err = g.Refund(context.Background(), domain.RefundOrder{
		OrderNo:       "EDM2608310001",
		TransactionID: "2147483901",
		Amount:        990000,
		Reason:        "customer request",
	})
	require.NoError(t, err)
	require.Equal(t, "2147483901", received.TransID)
	require.NotEmpty(t, received.Signature)

	expected := sign.HMACSHA256(testSecretKey, sign.Canonical(map[string]string{
		"accessKey":   testAccessKey,
		"partnerCode": received.PartnerCode,
		"requestId":   received.RequestID,
		"orderId":     received.OrderID,
		"amount":      strconv.FormatInt(received.Amount, 10),
		"transId":     received.TransID,
		"description": received.Description,
	}))
	require.Equal(t, expected, received.Signature)
}

func TestRefund_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(refundResponse{ResultCode: 1080, Message: "refund window exceeded at provider"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, nil)
	require.NoError(t, err)
	g := New(testConfig(), client)

	err = g.Refund(context.Background(), domain.RefundOrder{OrderNo: "EDM1", Amount: 1000})
	require.True(t, apperrors.IsKind(err, apperrors.KindPayment))
}
