package postlogistics

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trobz/delivery-carrier/internal/models"
)

// carrierAPIStub fakes the token and label endpoints of the carrier API.
type carrierAPIStub struct {
	token        string
	labelStatus  int
	labelBody    string
	gotAuth      string
	gotTokenForm map[string]string
	gotRequest   *LabelRequest
}

func (a *carrierAPIStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/WEDECOAuth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.gotTokenForm = map[string]string{
			"grant_type":    r.PostFormValue("grant_type"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"scope":         r.PostFormValue("scope"),
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": a.token})
	})
	mux.HandleFunc("/api/barcode/v1/generateAddressLabel", func(w http.ResponseWriter, r *http.Request) {
		a.gotAuth = r.Header.Get("Authorization")
		var req LabelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.gotRequest = &req
		w.WriteHeader(a.labelStatus)
		_, _ = w.Write([]byte(a.labelBody))
	})
	return mux
}

func testLabelRequest() *LabelRequest {
	return &LabelRequest{
		Language:        "EN",
		FrankingLicense: "60072468",
		Item:            &Item{ItemID: "OUT00007+OUT00007-01"},
	}
}

func TestGetAccessToken(t *testing.T) {
	t.Run("missing endpoint URL", func(t *testing.T) {
		carrier := &models.CarrierConfig{ClientID: "id", ClientSecret: "secret"}
		_, err := NewClient().GenerateLabel(context.Background(), carrier, testLabelRequest())
		var confErr *ConfigurationError
		if !errors.As(err, &confErr) || confErr.Field != "endpoint URL" {
			t.Fatalf("expected an endpoint URL ConfigurationError, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		carrier := &models.CarrierConfig{EndpointURL: "https://wedecint.post.ch/"}
		_, err := NewClient().GenerateLabel(context.Background(), carrier, testLabelRequest())
		var confErr *ConfigurationError
		if !errors.As(err, &confErr) || confErr.Field != "client ID and client secret" {
			t.Fatalf("expected a credentials ConfigurationError, got %v", err)
		}
	})

	t.Run("empty access token", func(t *testing.T) {
		api := &carrierAPIStub{token: ""}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{EndpointURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
		_, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest())
		if !errors.Is(err, ErrNoAccessToken) {
			t.Fatalf("expected ErrNoAccessToken, got %v", err)
		}
	})

	t.Run("sends the client-credentials form", func(t *testing.T) {
		api := &carrierAPIStub{token: "test-token", labelStatus: http.StatusOK, labelBody: successBody(t)}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{
			EndpointURL:  srv.URL,
			ClientID:     "my-id",
			ClientSecret: "my-secret",
			OutputFormat: "PDF",
		}
		if _, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     "my-id",
			"client_secret": "my-secret",
			"scope":         "WEDEC_BARCODE_READ",
		}
		for k, v := range want {
			if api.gotTokenForm[k] != v {
				t.Errorf("expected form %s=%q, got %q", k, v, api.gotTokenForm[k])
			}
		}
	})
}

func successBody(t *testing.T) string {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"item": map[string]interface{}{
			"itemID":    "OUT00007+OUT00007-01",
			"identCode": "99.00.123456",
			"label":     []string{"%PDF-1.4 label bytes"},
		},
	})
	if err != nil {
		t.Fatalf("failed to build response body: %v", err)
	}
	return string(body)
}

func TestGenerateLabel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &carrierAPIStub{token: "test-token", labelStatus: http.StatusOK, labelBody: successBody(t)}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{
			EndpointURL:  srv.URL,
			ClientID:     "id",
			ClientSecret: "secret",
			OutputFormat: "SPDF",
		}
		value, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if api.gotAuth != "Bearer test-token" {
			t.Errorf("expected the bearer token, got %q", api.gotAuth)
		}
		if api.gotRequest == nil || api.gotRequest.Item.ItemID != "OUT00007+OUT00007-01" {
			t.Errorf("expected the label request forwarded, got %+v", api.gotRequest)
		}
		if value.ItemID != "OUT00007+OUT00007-01" {
			t.Errorf("unexpected item id %q", value.ItemID)
		}
		if value.TrackingNumber != "99.00.123456" {
			t.Errorf("unexpected tracking number %q", value.TrackingNumber)
		}
		if value.FileType != "pdf" {
			t.Errorf("expected file type pdf for SPDF output, got %q", value.FileType)
		}
		decoded, err := base64.StdEncoding.DecodeString(value.Binary)
		if err != nil {
			t.Fatalf("binary is not base64: %v", err)
		}
		if string(decoded) != "%PDF-1.4 label bytes" {
			t.Errorf("unexpected label binary %q", decoded)
		}
	})

	t.Run("non-200 response", func(t *testing.T) {
		api := &carrierAPIStub{token: "test-token", labelStatus: http.StatusBadRequest, labelBody: `{"error":"invalid frankingLicense"}`}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{EndpointURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
		_, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest())
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected a TransportError, got %v", err)
		}
		if transportErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", transportErr.StatusCode)
		}
		if transportErr.Body != `{"error":"invalid frankingLicense"}` {
			t.Errorf("expected the raw body surfaced, got %q", transportErr.Body)
		}
	})

	t.Run("item errors", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"item": map[string]interface{}{
				"itemID": "OUT00007",
				"errors": []map[string]string{
					{"code": "2000", "message": "invalid zip code"},
				},
			},
		})
		api := &carrierAPIStub{token: "test-token", labelStatus: http.StatusOK, labelBody: string(body)}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{EndpointURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
		_, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest())
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected a ValidationError, got %v", err)
		}
		if len(validationErr.Errors) != 1 || validationErr.Errors[0].Code != "2000" {
			t.Errorf("unexpected carrier errors %+v", validationErr.Errors)
		}
	})

	t.Run("empty label payload", func(t *testing.T) {
		api := &carrierAPIStub{token: "test-token", labelStatus: http.StatusOK, labelBody: `{"item":{"identCode":"99.00.123456","label":[]}}`}
		srv := httptest.NewServer(api.handler())
		defer srv.Close()

		carrier := &models.CarrierConfig{EndpointURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
		if _, err := NewClientWithHTTPClient(srv.Client()).GenerateLabel(context.Background(), carrier, testLabelRequest()); err == nil {
			t.Fatal("expected an error for an empty label payload")
		}
	})
}

func TestFileTypeForOutputFormat(t *testing.T) {
	tests := []struct {
		outputFormat string
		want         string
	}{
		{"PDF", "pdf"},
		{"SPDF", "pdf"},
		{"spdf", "pdf"},
		{"ZPL2", "zpl2"},
		{"PNG", "png"},
	}
	for _, tt := range tests {
		if got := FileTypeForOutputFormat(tt.outputFormat); got != tt.want {
			t.Errorf("FileTypeForOutputFormat(%q) = %q, want %q", tt.outputFormat, got, tt.want)
		}
	}
}

func TestJoinURL(t *testing.T) {
	if got := joinURL("https://wedecint.post.ch/", "/WEDECOAuth/token"); got != "https://wedecint.post.ch/WEDECOAuth/token" {
		t.Errorf("unexpected url %q", got)
	}
	if got := joinURL("https://wedecint.post.ch", "/WEDECOAuth/token"); got != "https://wedecint.post.ch/WEDECOAuth/token" {
		t.Errorf("unexpected url %q", got)
	}
}
