package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nextlevel/config"
	"nextlevel/services/catalog"

	"github.com/go-resty/resty/v2"
)

// StorageClient talks to the media storage API.
type StorageClient struct {
	client *resty.Client
}

func NewStorageClient(baseURL, apiKey string) *StorageClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &StorageClient{client: client}
}

// Delete removes the object stored under key. A missing object is not an error.
func (s *StorageClient) Delete(ctx context.Context, key string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("key", key).
		Delete("/objects/{key}")
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound || resp.IsSuccess() {
		return nil
	}
	return fmt.Errorf("storage delete %s: status %d: %s", key, resp.StatusCode(), resp.String())
}

// ConfiguredStorage returns the storage client for the configured API, or nil
// when no storage API is configured.
func ConfiguredStorage() catalog.ObjectRemover {
	if config.AppConfig == nil || config.AppConfig.StorageAPIURL == "" {
		return nil
	}
	return NewStorageClient(config.AppConfig.StorageAPIURL, config.AppConfig.StorageAPIKey)
}
