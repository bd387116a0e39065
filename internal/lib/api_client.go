package lib

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AnotherFullstackDev/httpreqx"
)

type ApiClient struct {
	baseURL *url.URL
	*httpreqx.HttpClient
}

// NewApiClient builds a JSON API client without authentication. Used for
// unauthenticated surfaces such as the deployed service's liveness endpoint.
func NewApiClient(baseURL string) (*ApiClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base url: %w", err)
	}

	httpClient := httpreqx.NewHttpClient().
		SetBodyMarshaler(httpreqx.NewJSONBodyMarshaler()).
		SetBodyUnmarshaler(httpreqx.NewJSONBodyUnmarshaler()).
		SetHeaders(map[string]string{
			"Accept": "application/json",
		}).
		SetStackTraceEnabled(false)

	return &ApiClient{
		baseURL:    base,
		HttpClient: httpClient,
	}, nil
}

func (c *ApiClient) buildUrl(path string) *url.URL {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return c.baseURL.JoinPath(segments...)
}

func (c *ApiClient) URL(path string) string {
	return c.buildUrl(path).String()
}
