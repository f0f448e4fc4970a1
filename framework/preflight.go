package framework

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Preflight checks that the site under test is reachable before a browser is pointed at it. It
// polls url until the server answers with a status below 500, or fails when timeout elapses.
func Preflight(ctx context.Context, url string, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Checking site at %s", url)

	// a request still in flight at the deadline is abandoned
	reqCtx, cancel := context.WithDeadline(ctx, time.Now().Add(timeout))
	defer cancel()

	var lastStatus int
	err := WaitFor(ctx, timeout, DefaultPollInterval, func() (bool, error) {
		fmt.Fprintf(output, ".")
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false, err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastStatus = resp.StatusCode
		if resp.StatusCode >= 500 {
			return false, fmt.Errorf("site returned status code %d", resp.StatusCode)
		}
		return true, nil
	})
	fmt.Fprintln(output)
	if err != nil {
		return fmt.Errorf("site at %s is not available: %w", url, err)
	}
	fmt.Fprintf(output, "Site answered with status %d\n", lastStatus)
	return nil
}
