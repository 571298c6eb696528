package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession_Success(t *testing.T) {
	var gotPath, gotAuth, gotIdemKey string
	var gotReq createSessionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdemKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{ID: "sess_42", URL: "https://pay.example.com/sess_42"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test_key", 5*time.Second)
	session, err := client.CreateSession(context.Background(),
		[]Line{{Quantity: 2, UnitAmount: 500, Currency: "USD", ProductName: "Mug", ProductImages: []string{}}},
		RedirectURLs{SuccessURL: "https://shop.example.com/thankyou", CancelURL: "https://shop.example.com/cart"},
		map[string]string{"cart_id": "c1"},
	)
	require.NoError(t, err)

	assert.Equal(t, "sess_42", session.ID)
	assert.Equal(t, "https://pay.example.com/sess_42", session.URL)

	assert.Equal(t, "/v1/checkout/sessions", gotPath)
	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.NotEmpty(t, gotIdemKey)
	require.Len(t, gotReq.Lines, 1)
	assert.Equal(t, "Mug", gotReq.Lines[0].ProductName)
	assert.Equal(t, "https://shop.example.com/thankyou", gotReq.Redirect.SuccessURL)
	assert.Equal(t, "c1", gotReq.Metadata["cart_id"])
}

func TestCreateSession_FreshIdempotencyKeyPerCall(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		json.NewEncoder(w).Encode(Session{ID: "sess_1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk", 5*time.Second)
	for i := 0; i < 2; i++ {
		_, err := client.CreateSession(context.Background(), nil, RedirectURLs{}, nil)
		require.NoError(t, err)
	}

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestCreateSession_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"card_declined"}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk", 5*time.Second)
	_, err := client.CreateSession(context.Background(), nil, RedirectURLs{}, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "402")
	assert.ErrorContains(t, err, "card_declined")
}

func TestCreateSession_MissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk", 5*time.Second)
	_, err := client.CreateSession(context.Background(), nil, RedirectURLs{}, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "without an id")
}
