package uploader

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ameledin/studiovault/internal/common"
)

// objectWriter performs a single authenticated write to object storage using
// an issued credential. Success is any 2xx response; anything else is
// transient-retryable except an expired credential, which is reported
// distinctly so the scheduler can renew before retrying.
type objectWriter interface {
	Put(ctx context.Context, cred Credential, file File, progress func(loaded, total int64)) error
}

type httpObjectWriter struct {
	client *http.Client
}

func newHTTPObjectWriter(client *http.Client) *httpObjectWriter {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpObjectWriter{client: client}
}

func (w *httpObjectWriter) Put(ctx context.Context, cred Credential, file File, progress func(loaded, total int64)) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", common.ErrTransferFailed, file.Name(), err)
	}
	defer rc.Close()

	body := &progressReader{r: rc, total: file.Size(), fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cred.URL, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", common.ErrTransferFailed, err)
	}
	req.ContentLength = file.Size()
	req.Header.Set("Content-Type", file.ContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransferFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		// Presigned URLs past their expiry come back as 403.
		return fmt.Errorf("%w: status %d", common.ErrCredentialExpired, resp.StatusCode)
	default:
		return fmt.Errorf("%w: unexpected status %d", common.ErrTransferFailed, resp.StatusCode)
	}
}

// progressReader reports cumulative bytes read to fn as the request body is
// consumed.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	fn     func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.fn != nil {
			p.fn(p.loaded, p.total)
		}
	}
	return n, err
}
