// Package logistics queries shipment tracking through an express-info API.
package logistics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrNotConfigured = errors.New("logistics service not configured")

type Trace struct {
	Content string `json:"content"`
	Time    string `json:"time"`
}

type Tracking struct {
	Number  string  `json:"number"`
	Carrier string  `json:"carrier,omitempty"`
	Traces  []Trace `json:"traces"`
}

type Client struct {
	http    *http.Client
	baseURL string
	appCode string
}

func NewClient(baseURL, appCode string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		appCode: appCode,
	}
}

func (c *Client) QueryTracking(ctx context.Context, trackingNumber string) (*Tracking, error) {
	if c.appCode == "" {
		return nil, ErrNotConfigured
	}

	u := c.baseURL + "?no=" + url.QueryEscape(trackingNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "APPCODE "+c.appCode)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("logistics query failed: %s", res.Status)
	}

	var body struct {
		Code string  `json:"code"`
		No   string  `json:"no"`
		Type string  `json:"type"`
		List []Trace `json:"list"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Code != "OK" {
		return nil, fmt.Errorf("logistics query failed: code=%s", body.Code)
	}
	return &Tracking{Number: body.No, Carrier: body.Type, Traces: body.List}, nil
}
