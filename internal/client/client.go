// Package client talks to a running revisit-server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"resty.dev/v3"

	"github.com/at-ishikawa/revisit/internal/dispatch"
	"github.com/at-ishikawa/revisit/internal/review"
)

type Client struct {
	httpClient *resty.Client
}

func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// Dispatch sends a command and returns the state after it was applied.
func (client *Client) Dispatch(ctx context.Context, cmd dispatch.Command) (review.State, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(cmd).
		SetResult(&review.State{}).
		Post("/api/commands")
	if err != nil {
		return review.State{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return review.State{}, responseError(response)
	}
	return *response.Result().(*review.State), nil
}

func (client *Client) State(ctx context.Context) (review.State, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&review.State{}).
		Get("/api/state")
	if err != nil {
		return review.State{}, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return review.State{}, responseError(response)
	}
	return *response.Result().(*review.State), nil
}

// Replace overwrites the server's whole state if it still equals base.
func (client *Client) Replace(ctx context.Context, base, state review.State) (review.State, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(dispatch.ReplaceRequest{Base: base, State: state}).
		SetResult(&review.State{}).
		Put("/api/state")
	if err != nil {
		return review.State{}, fmt.Errorf("httpClient.Put > %w", err)
	}
	if response.IsError() {
		return review.State{}, responseError(response)
	}
	return *response.Result().(*review.State), nil
}

func (client *Client) Schedule(ctx context.Context, id string) (dispatch.Schedule, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&dispatch.Schedule{}).
		Get("/api/items/" + url.PathEscape(id) + "/schedule")
	if err != nil {
		return dispatch.Schedule{}, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return dispatch.Schedule{}, responseError(response)
	}
	return *response.Result().(*dispatch.Schedule), nil
}

// responseError turns an error response back into the domain error the server mapped it from.
func responseError(response *resty.Response) error {
	message := response.String()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(response.String()), &body); err == nil && body.Error != "" {
		message = body.Error
	}

	switch response.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("server: %s > %w", message, review.ErrInvalidCommand)
	case http.StatusNotFound:
		return fmt.Errorf("server: %s > %w", message, review.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("server: %s > %w", message, review.ErrConflict)
	default:
		return fmt.Errorf("response error %d: %s", response.StatusCode(), message)
	}
}
