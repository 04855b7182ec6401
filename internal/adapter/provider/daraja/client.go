package daraja

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/rs/zerolog"
)

// Client implements ports.DisburserClient against the Daraja B2C API.
// Tokens are cached in memory and refreshed shortly before the provider
// expires them.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
	log        zerolog.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a Daraja client.
func NewClient(cfg config.ProviderConfig, log zerolog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "daraja").Logger(),
	}
}

// SupportsDestination reports whether a destination type can be paid.
// Business-to-business transfers are not offered on this channel.
func (c *Client) SupportsDestination(destType domain.DestinationType) bool {
	return destType == domain.DestinationTypePhone
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperror.ErrProviderUnavailable(fmt.Errorf("fetching token: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", apperror.ErrProviderUnavailable(fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body)))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", apperror.ErrProviderUnavailable(fmt.Errorf("decoding token response: %w", err))
	}

	c.token = tok.AccessToken
	// Refresh before the provider's one-hour expiry.
	c.tokenExpiry = time.Now().Add(50 * time.Minute)

	return c.token, nil
}

type b2cRequest struct {
	OriginatorConversationID string `json:"OriginatorConversationID"`
	InitiatorName            string `json:"InitiatorName"`
	SecurityCredential       string `json:"SecurityCredential"`
	CommandID                string `json:"CommandID"`
	Amount                   int64  `json:"Amount"`
	PartyA                   string `json:"PartyA"`
	PartyB                   string `json:"PartyB"`
	Remarks                  string `json:"Remarks"`
	QueueTimeOutURL          string `json:"QueueTimeOutURL"`
	ResultURL                string `json:"ResultURL"`
}

type b2cResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// Disburse submits a B2C payment request. Acceptance here is only the
// dispatch acknowledgement; the final outcome arrives on the result
// callback keyed by the originator conversation id.
func (c *Client) Disburse(ctx context.Context, dreq ports.DisburseRequest) (*ports.DisburseResponse, error) {
	if !c.SupportsDestination(dreq.DestinationType) {
		return nil, apperror.ErrProviderRejected(fmt.Sprintf("destination type %s not supported", dreq.DestinationType))
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	// Daraja amounts are whole shillings.
	payload := b2cRequest{
		OriginatorConversationID: dreq.OriginatorID,
		InitiatorName:            c.cfg.InitiatorName,
		SecurityCredential:       c.cfg.SecurityCredential,
		CommandID:                "BusinessPayment",
		Amount:                   dreq.Amount / 100,
		PartyA:                   c.cfg.ShortCode,
		PartyB:                   dreq.DestinationRef,
		Remarks:                  dreq.Remarks,
		QueueTimeOutURL:          c.cfg.TimeoutURL,
		ResultURL:                c.cfg.ResultURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling b2c request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/mpesa/b2c/v3/paymentrequest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building b2c request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(fmt.Errorf("b2c request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperror.ErrProviderUnavailable(fmt.Errorf("b2c endpoint returned %d", resp.StatusCode))
	}

	var b2c b2cResponse
	if err := json.NewDecoder(resp.Body).Decode(&b2c); err != nil {
		return nil, apperror.ErrProviderUnavailable(fmt.Errorf("decoding b2c response: %w", err))
	}

	accepted := resp.StatusCode == http.StatusOK && b2c.ResponseCode == "0"
	if !accepted {
		c.log.Warn().
			Str("originator_id", dreq.OriginatorID).
			Str("response_code", b2c.ResponseCode).
			Str("description", b2c.ResponseDescription).
			Msg("b2c dispatch rejected")
	}

	return &ports.DisburseResponse{
		ProviderRequestID: b2c.ConversationID,
		Accepted:          accepted,
		Description:       b2c.ResponseDescription,
	}, nil
}
