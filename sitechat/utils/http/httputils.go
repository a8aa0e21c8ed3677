// sitechat/utils/http/httputils.go
package httputils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// MaxPageBytes caps how much of a response body GetPage will read.
const MaxPageBytes = 10 << 20

// GetPage performs a GET with a browser user agent and returns the body together
// with the response Content-Type. Error pages are returned like any other page;
// a non-2xx status is an error only when the body is empty.
func GetPage(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	r, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxPageBytes))
	if err != nil {
		return nil, "", err
	}
	if (r.StatusCode < 200 || r.StatusCode > 299) && len(bytes.TrimSpace(body)) == 0 {
		return nil, "", fmt.Errorf("bad status: %d", r.StatusCode)
	}
	return body, r.Header.Get("Content-Type"), nil
}
