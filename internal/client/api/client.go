package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gobblet/internal/core"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://pax.ulaval.ca/gobblet/api"

var (
	// ErrUnauthorized is returned on 401: the player name or secret was refused.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected is returned on 406: the server refused the request.
	ErrRejected = errors.New("rejected by server")
	// ErrConnection covers transport failures and unexpected statuses.
	ErrConnection = errors.New("connection error")
)

// Client talks to the game server with HTTP basic auth.
type Client struct {
	BaseURL    string
	Player     string
	Secret     string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL, player, secret string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Player:  player,
		Secret:  secret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	url := c.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		if c.Verbose {
			log.Debug().RawJSON("body", jsonData).Msgf("%s %s", method, path)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Player, c.Secret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrConnection, err)
	}

	event := log.Debug()
	if resp.StatusCode != http.StatusOK {
		event = log.Warn()
	}
	event.Int("status", resp.StatusCode).Msgf("%s %s", method, path)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message(respBody))
	case http.StatusNotAcceptable:
		return fmt.Errorf("%w: %s", ErrRejected, message(respBody))
	default:
		return fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			log.Debug().Str("raw", string(respBody)).Msg("response parse error")
			return &core.ValidationError{Field: "response", Err: err}
		}
	}
	return nil
}

// message extracts the server's explanation from an error body.
func message(body []byte) string {
	var errResp core.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return strings.TrimSpace(string(body))
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}

// API Methods

// ListGames returns the player's recent games.
func (c *Client) ListGames(ctx context.Context) ([]core.GameSummary, error) {
	var resp core.GameListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/games", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Games, nil
}

// StartGame opens a new game against the server.
func (c *Client) StartGame(ctx context.Context) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodPost, "/game", nil, &resp)
	return &resp, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(ctx, http.MethodGet, "/game/"+gameID, nil, &resp)
	return &resp, err
}

// PlayMove submits m. The answer is either the new snapshot or, when
// Terminal reports true, the declared winner.
func (c *Client) PlayMove(ctx context.Context, gameID string, m core.Move) (*core.GameResponse, error) {
	req := &core.MoveRequest{ID: gameID, Origin: m.Origin, Destination: m.Destination}
	var resp core.GameResponse
	if err := c.doRequest(ctx, http.MethodPut, "/play", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the server answers.
func (c *Client) Health(ctx context.Context) (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}
