// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/apa-formatter/internal/httputil"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

const (
	huggingFaceBaseURL = "https://api-inference.huggingface.co/models/"
	huggingFaceModel   = "facebook/bart-large-mnli"
)

// errNoGeneratedText is returned when the inference response carries no
// generated_text field.
var errNoGeneratedText = errors.New("response has no generated_text")

// HuggingFaceProvider calls the Hugging Face inference API.
type HuggingFaceProvider struct {
	client     *http.Client
	url        string
	apiKey     string
	userAgent  string
	maxRetries int
}

// NewHuggingFaceProvider requires cfg.APIKey.
func NewHuggingFaceProvider(cfg types.CleanupConfig) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = huggingFaceBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = huggingFaceModel
	}
	return &HuggingFaceProvider{
		client:     &http.Client{Timeout: cfg.Timeout},
		url:        strings.TrimSuffix(base, "/") + "/" + model,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Name implements Provider.
func (p *HuggingFaceProvider) Name() string { return types.CleanupHuggingFace }

// Clean implements Provider.
func (p *HuggingFaceProvider) Clean(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, p.url)
	}
	return generatedText(body)
}

type generation struct {
	GeneratedText *string `json:"generated_text"`
}

// generatedText reads generated_text from either a list response (first
// element) or an object response.
func generatedText(body []byte) (string, error) {
	var list []generation
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 || list[0].GeneratedText == nil {
			return "", errNoGeneratedText
		}
		return *list[0].GeneratedText, nil
	}

	var obj generation
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if obj.GeneratedText == nil {
		return "", errNoGeneratedText
	}
	return *obj.GeneratedText, nil
}
