package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// APIResponse mirrors the program API envelope with a typed payload
type APIResponse[T any] struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Data        T        `json:"data"`
	ErrorCode   *int     `json:"error_code"`
	ProgramLogs []string `json:"program_logs"`
}

func doGet[T any](url string) (*T, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return do[T](req)
}

func doPost[T any](url string, body any) (*T, error) {
	rawReq, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(rawReq))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do[T](req)
}

func do[T any](req *http.Request) (*T, error) {
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rawResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error %d: %s", resp.StatusCode, string(rawResp))
	}

	var result T
	if err := json.Unmarshal(rawResp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
