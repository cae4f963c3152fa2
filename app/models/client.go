package models

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"GoForgeAI/app/utils/restclient"
)

const (
	endpoint           = "/v1/chat/completions"
	defaultTemperature = 0.25
	defaultMaxTokens   = 1000
	transportRetries   = 3
)

// BackendError marks a failure to obtain any response from the inference
// backend (network, auth, quota). It is fatal for a run, unlike compiler
// rejections, which the loop retries.
type BackendError struct {
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inference backend returned HTTP %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("inference backend unreachable: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

var _ Interface = &LLMClient{}

type LLMClient struct {
	restClient *restclient.RestClient
	model      string
}

func NewLLMClient(baseURL, apiKey, model string) *LLMClient {
	return &LLMClient{
		restClient: restclient.NewRestClient(baseURL, apiKey, nil),
		model:      model,
	}
}

// Generate requests one completion and records the wall clock of the remote
// call. Transport-level hiccups are retried internally with backoff; once
// retries run out the failure surfaces as a *BackendError.
func (mc *LLMClient) Generate(ctx context.Context, messages []Message) (*Generation, error) {
	payload := requestPayload{
		Model:       mc.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Stream:      false,
	}

	start := time.Now()
	response, err := mc.sendRequestAndParse(ctx, payload, transportRetries)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	var content string
	if len(response.Choices) > 0 {
		content = response.Choices[0].Message.Content
	}

	return &Generation{Content: content, Duration: elapsed}, nil
}

func (mc *LLMClient) sendRequestAndParse(ctx context.Context, payload requestPayload, maxRetries int) (*ResponseLLM, error) {
	var err error
	var response []byte
	var status int
	var generatedResponse ResponseLLM

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			log.Println("🚨 Request canceled before execution")
			return nil, ctx.Err()
		default:
			if err != nil {
				time.Sleep(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond)
			}
			response, status, err = mc.restClient.Post(ctx, endpoint, payload, nil)
			if err != nil {
				log.Printf("⚠️ Attempt %d failed: HTTP %d | Error: %v", i, status, err)
				continue
			}
			if status != http.StatusOK {
				err = fmt.Errorf("unexpected status %d: %s", status, response)
				log.Printf("⚠️ Attempt %d failed: %v", i, err)
				continue
			}

			if err = json.Unmarshal(response, &generatedResponse); err != nil {
				log.Printf("⚠️ Error parsing response: %v", err)
				continue
			}

			return &generatedResponse, nil
		}
	}

	return nil, &BackendError{Status: status, Err: err}
}
