package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeaderRoundTripper_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.Header.Get("Custom-Header")))
	}))
	defer server.Close()

	tests := []struct {
		name          string
		headers       map[string]string
		requestHeader map[string]string
		wantHeader    string
	}{
		{
			name:          "add default header when not present",
			headers:       map[string]string{"Custom-Header": "default-value"},
			requestHeader: map[string]string{},
			wantHeader:    "default-value",
		},
		{
			name:          "preserve existing request header",
			headers:       map[string]string{"Custom-Header": "default-value"},
			requestHeader: map[string]string{"Custom-Header": "request-value"},
			wantHeader:    "request-value",
		},
		{
			name:          "nil headers map",
			headers:       nil,
			requestHeader: map[string]string{},
			wantHeader:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hrt := &HeaderRoundTripper{
				Headers: tt.headers,
				Next:    http.DefaultTransport,
			}

			client := &http.Client{
				Transport: hrt,
			}

			req, err := http.NewRequest("GET", server.URL, nil)
			if err != nil {
				t.Fatal(err)
			}

			for k, v := range tt.requestHeader {
				req.Header.Set(k, v)
			}

			resp, err := client.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}

			if string(body) != tt.wantHeader {
				t.Errorf("Expected header value %q, got %q", tt.wantHeader, string(body))
			}
		})
	}
}

func TestHeaderRoundTripper_NoNext(t *testing.T) {
	hrt := &HeaderRoundTripper{}

	req, err := http.NewRequest("GET", "http://example.com", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = hrt.RoundTrip(req)
	if err == nil {
		t.Error("Expected error when Next is nil")
	}
}

func TestGetPipegrantHTTPClient(t *testing.T) {
	t.Run("client configuration", func(t *testing.T) {
		client := GetPipegrantHTTPClient(nil)
		if client == nil {
			t.Fatal("Expected non-nil client")
			return
		}
		if client.Logger != nil {
			t.Error("Expected logger to be nil")
		}
	})

	t.Run("client with default headers", func(t *testing.T) {
		headers := map[string]string{
			"Accept": "application/json",
		}
		client := GetPipegrantHTTPClient(headers)

		hrt, ok := client.HTTPClient.Transport.(*HeaderRoundTripper)
		if !ok {
			t.Fatal("Expected HeaderRoundTripper transport")
		}

		if hrt.Headers["Accept"] != "application/json" {
			t.Errorf("Expected Accept header to be 'application/json', got %q", hrt.Headers["Accept"])
		}
	})

	t.Run("retries on 429 then succeeds", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := GetPipegrantHTTPClient(nil)
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatal(err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
		if attempts != 2 {
			t.Errorf("Expected 2 attempts, got %d", attempts)
		}
	})

	t.Run("does not retry 403", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := GetPipegrantHTTPClient(nil)
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatal(err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})
}
