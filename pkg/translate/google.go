package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kuroonai/submaker/pkg/utils"
)

// The free endpoint spoken by the legacy googletrans releases. Later
// versions of that client moved to a token-signed API that breaks
// regularly, which is why the original tool pinned the old one.
const googleTranslateEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator translates text between languages through the legacy
// translate endpoint.
type GoogleTranslator struct {
	Endpoint string
	Client   *http.Client
}

// NewGoogleTranslator creates a translator with a sane request timeout.
func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		Endpoint: googleTranslateEndpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate converts text from source into target. Source "auto" lets the
// endpoint detect the language.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == "" {
		source = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating translate request: %w", err)
	}

	utils.Debug("translating %d chars to %s", len(text), target)

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate endpoint returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseTranslateResponse(body)
}

// parseTranslateResponse extracts the translated text from the endpoint's
// nested-array reply: resp[0] is a list of chunks, each chunk's first
// element is a piece of the translation.
func parseTranslateResponse(body []byte) (string, error) {
	var doc []interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("parsing translate response: %w", err)
	}

	if len(doc) == 0 {
		return "", fmt.Errorf("empty translate response")
	}

	chunks, ok := doc[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translate response shape")
	}

	var b strings.Builder
	for _, c := range chunks {
		chunk, ok := c.([]interface{})
		if !ok || len(chunk) == 0 {
			continue
		}
		if piece, ok := chunk[0].(string); ok {
			b.WriteString(piece)
		}
	}

	return b.String(), nil
}
