package postlogistics

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trobz/delivery-carrier/internal/models"
)

// API paths relative to the carrier endpoint URL.
const (
	authPath          = "/WEDECOAuth/token"
	generateLabelPath = "/api/barcode/v1/generateAddressLabel"
)

// oauthScope is the fixed scope of the client-credentials token request.
const oauthScope = "WEDEC_BARCODE_READ"

// requestTimeout bounds every carrier call. Requests are not retried; a
// timeout propagates to the caller.
const requestTimeout = 60 * time.Second

// Client talks to the PostLogistics "Digital Commerce" barcode API.
//
// Handbook: https://developer.post.ch/en/digital-commerce-api
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client with the standard 60 second timeout.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: requestTimeout}}
}

// NewClientWithHTTPClient returns a Client using the given HTTP client.
func NewClientWithHTTPClient(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// getAccessToken performs the OAuth2 client-credentials flow against the
// carrier token endpoint. A fresh token is fetched per label-generation
// call; tokens are never cached.
func (c *Client) getAccessToken(ctx context.Context, carrier *models.CarrierConfig) (string, error) {
	if carrier.EndpointURL == "" {
		return "", &ConfigurationError{Field: "endpoint URL"}
	}
	if carrier.ClientID == "" || carrier.ClientSecret == "" {
		return "", &ConfigurationError{Field: "client ID and client secret"}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", carrier.ClientID)
	form.Set("client_secret", carrier.ClientSecret)
	form.Set("scope", oauthScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(carrier.EndpointURL, authPath), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call the token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return tokenResp.AccessToken, nil
}

// GenerateLabel submits one label request to the carrier and extracts the
// label binary and tracking number from the response. The request carries
// a single item; the caller loops over items, one call per item.
func (c *Client) GenerateLabel(ctx context.Context, carrier *models.CarrierConfig, request *LabelRequest) (*LabelValue, error) {
	token, err := c.getAccessToken(ctx, carrier)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal label request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(carrier.EndpointURL, generateLabelPath), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create label request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call the label endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read label response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed labelResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse label response: %w", err)
	}
	if len(parsed.Item.Errors) > 0 {
		return nil, &ValidationError{Errors: parsed.Item.Errors}
	}
	if len(parsed.Item.Label) == 0 {
		return nil, fmt.Errorf("label response contained no label payload")
	}

	return &LabelValue{
		ItemID:         request.Item.ItemID,
		Binary:         base64.StdEncoding.EncodeToString([]byte(parsed.Item.Label[0])),
		TrackingNumber: parsed.Item.IdentCode,
		FileType:       FileTypeForOutputFormat(carrier.OutputFormat),
	}, nil
}

// FileTypeForOutputFormat maps a carrier output format code to a file
// extension. The self-printing "spdf" format still produces a pdf file;
// every other code passes through lower-cased.
func FileTypeForOutputFormat(outputFormat string) string {
	fileType := strings.ToLower(outputFormat)
	if fileType == "spdf" {
		return "pdf"
	}
	return fileType
}

// joinURL appends an API path to the configured endpoint URL.
func joinURL(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}
