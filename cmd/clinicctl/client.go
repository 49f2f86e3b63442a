// cmd/clinicctl/client.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// apiClient держит cookie-jar, чтобы сессионная кука после логина
// автоматически уходила с последующими запросами.
type apiClient struct {
	addr string
	http *http.Client
}

func newAPIClient(cmd *cobra.Command) (*apiClient, error) {
	addr, _ := cmd.Flags().GetString("addr")
	addr = strings.TrimRight(addr, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cookie-jar: %w", err)
	}
	return &apiClient{
		addr: addr,
		http: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

func (c *apiClient) do(method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.addr+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("сервер недоступен по адресу %s: %w", c.addr, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}
	return resp.StatusCode, data, nil
}

// login авторизует клиента под учетной записью из флагов команды.
func (c *apiClient) login(cmd *cobra.Command) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if username == "" || password == "" {
		return fmt.Errorf("для этой команды нужны флаги --username и --password")
	}

	status, data, err := c.do(http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("логин отклонен сервером (HTTP %d): %s", status, apiMessage(data))
	}
	return nil
}

// apiMessage достает человекочитаемое сообщение из JSON-ответа API.
func apiMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}
