// Package broker is the HTTP client for the StudioVault credential broker:
// batch credential issuance, single-key renewal, and upload confirmation.
// It implements uploader.Broker.
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/uploader"
)

// Client talks JSON to the broker's REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type credentialsRequest struct {
	Files []uploader.CredentialRequest `json:"files"`
}

type renewRequest struct {
	Key string `json:"key"`
}

type confirmRequest struct {
	Files []uploader.UploadClaim `json:"files"`
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) RequestCredentials(ctx context.Context, collectionID string, files []uploader.CredentialRequest) (*uploader.CredentialGrant, error) {
	var grant uploader.CredentialGrant
	err := c.post(ctx, fmt.Sprintf("/api/v1/collections/%s/credentials", collectionID), "", credentialsRequest{Files: files}, &grant)
	if err != nil {
		return nil, fmt.Errorf("request credentials: %w", err)
	}
	return &grant, nil
}

func (c *Client) RenewCredential(ctx context.Context, collectionID, key string) (*uploader.Credential, error) {
	var cred uploader.Credential
	err := c.post(ctx, fmt.Sprintf("/api/v1/collections/%s/credentials/renew", collectionID), "", renewRequest{Key: key}, &cred)
	if err != nil {
		return nil, fmt.Errorf("renew credential: %w", err)
	}
	return &cred, nil
}

func (c *Client) ConfirmUploads(ctx context.Context, collectionID, batchToken string, claims []uploader.UploadClaim) (*uploader.ConfirmResult, error) {
	var verdict uploader.ConfirmResult
	err := c.post(ctx, fmt.Sprintf("/api/v1/collections/%s/confirm", collectionID), batchToken, confirmRequest{Files: claims}, &verdict)
	if err != nil {
		return nil, fmt.Errorf("confirm uploads: %w", err)
	}
	return &verdict, nil
}

func (c *Client) post(ctx context.Context, path, batchToken string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if batchToken != "" {
		req.Header.Set(common.BatchTokenHeaderName, batchToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if jsonErr := json.Unmarshal(data, &ae); jsonErr == nil && ae.Error != "" {
			return fmt.Errorf("broker returned %d: %s", resp.StatusCode, ae.Error)
		}
		return fmt.Errorf("broker returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
