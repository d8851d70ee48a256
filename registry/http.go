package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPTransport implements Transport against a schema registry's REST
// surface:
//
//	GET /subjects                                  -> []string
//	GET /subjects/{subject}/versions               -> []uint32
//	GET /subjects/{subject}/versions/{version}     -> {"schema": "..."}
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPTransport builds an HTTPTransport against baseURL, defaulting
// to http.DefaultClient when client is nil.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{BaseURL: baseURL, Client: client}
}

func (t *HTTPTransport) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s", ErrParsing, err)
	}
	return nil
}

func (t *HTTPTransport) Subjects(ctx context.Context) ([]string, error) {
	var subjects []string
	if err := t.getJSON(ctx, "/subjects", &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (t *HTTPTransport) Versions(ctx context.Context, subject string) ([]uint32, error) {
	var versions []uint32
	if err := t.getJSON(ctx, fmt.Sprintf("/subjects/%s/versions", subject), &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func (t *HTTPTransport) SchemaText(ctx context.Context, subject string, version uint32) (string, error) {
	var body struct {
		Schema string `json:"schema"`
	}
	path := fmt.Sprintf("/subjects/%s/versions/%d", subject, version)
	if err := t.getJSON(ctx, path, &body); err != nil {
		return "", err
	}
	if body.Schema == "" {
		return "", fmt.Errorf("%w: response missing schema field", ErrParsing)
	}
	return body.Schema, nil
}
