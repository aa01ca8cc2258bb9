package utils

import (
	"context"
	"fmt"
	"time"

	"nextlevel/services/certification"

	"github.com/go-resty/resty/v2"
)

// CertificateRenderer turns certificate fields into a PDF through the
// rendering service.
type CertificateRenderer struct {
	client *resty.Client
	url    string
}

func NewCertificateRenderer(url string) *CertificateRenderer {
	return &CertificateRenderer{
		client: resty.New().SetTimeout(30 * time.Second),
		url:    url,
	}
}

func (r *CertificateRenderer) Render(ctx context.Context, f certification.Fields) ([]byte, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetBody(f).
		Post(r.url)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("renderer returned %d: %s", resp.StatusCode(), resp.String())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("renderer returned an empty document")
	}
	return resp.Body(), nil
}
