// Package streaming copies an engine response to a client without buffering,
// for endpoints whose body is unbounded or long-lived: container and service
// logs, the ping/version probes, and every other passthrough route.
package streaming

import (
	"io"
	"net/http"
)

// CopyResponse writes resp's status and headers to w, then copies its body
// byte-for-byte. If w supports flushing, each write is flushed immediately so
// a client tailing logs sees bytes as the engine produces them rather than
// whenever an internal buffer fills.
func CopyResponse(w http.ResponseWriter, resp *http.Response) error {
	defer resp.Body.Close()

	header := w.Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		_, err := io.Copy(w, resp.Body)
		return err
	}

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			flusher.Flush()
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
