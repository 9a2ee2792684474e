// Package sms sends verification codes through an Aliyun-market SMS API.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

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

func (c *Client) SendCode(ctx context.Context, phone, code string) error {
	if c.appCode == "" {
		return fmt.Errorf("sms service not configured")
	}

	form := url.Values{}
	form.Set("mobile", phone)
	form.Set("param", "**code**:"+code+",**minute**:5")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "APPCODE "+c.appCode)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("sms send failed: %s", res.Status)
	}
	return nil
}
