package integration

import (
	"io"
	"net/http"
	"strconv"
	"testing"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(data)
}
