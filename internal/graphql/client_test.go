package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

var testOp = Operation{Name: "GetThing", Query: "query GetThing($id: String) { thing(id: $id) { id } }"}

func newTestClient(url string, cfg Config) *Client {
	cfg.Endpoint = url
	return New(cfg)
}

func TestExecuteSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get(HeaderRequestID) == "" {
			t.Error("expected request id header")
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["operationName"] != "GetThing" {
			t.Errorf("operationName = %v", body["operationName"])
		}
		if body["query"] != testOp.Query {
			t.Errorf("query not sent verbatim: %v", body["query"])
		}
		vars, _ := body["variables"].(map[string]any)
		if vars["id"] != "abc" {
			t.Errorf("variables = %v", body["variables"])
		}

		_, _ = w.Write([]byte(`{"data":{"thing":{"id":"abc"}}}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, Config{TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})})

	var out struct {
		Thing struct {
			ID string `json:"id"`
		} `json:"thing"`
	}
	if err := c.Execute(context.Background(), testOp, map[string]any{"id": "abc"}, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Thing.ID != "abc" {
		t.Errorf("id = %q", out.Thing.ID)
	}
}

func TestExecuteOptionalHeaders(t *testing.T) {
	tests := []struct {
		name      string
		workspace string
		org       string
	}{
		{"both set", "ws-1", "org-1"},
		{"workspace only", "ws-1", ""},
		{"org only", "", "org-1"},
		{"neither", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, wsSet := r.Header[http.CanonicalHeaderKey(HeaderWorkspaceID)]
				_, orgSet := r.Header[http.CanonicalHeaderKey(HeaderOrganizationID)]
				if wsSet != (tt.workspace != "") {
					t.Errorf("workspace header present=%v, want %v", wsSet, tt.workspace != "")
				}
				if orgSet != (tt.org != "") {
					t.Errorf("org header present=%v, want %v", orgSet, tt.org != "")
				}
				if tt.workspace != "" && r.Header.Get(HeaderWorkspaceID) != tt.workspace {
					t.Errorf("workspace header = %q", r.Header.Get(HeaderWorkspaceID))
				}
				if tt.org != "" && r.Header.Get(HeaderOrganizationID) != tt.org {
					t.Errorf("org header = %q", r.Header.Get(HeaderOrganizationID))
				}
				_, _ = w.Write([]byte(`{"data":{}}`))
			}))
			defer ts.Close()

			c := newTestClient(ts.URL, Config{WorkspaceID: tt.workspace, OrganizationID: tt.org})
			if err := c.Execute(context.Background(), testOp, nil, nil); err != nil {
				t.Fatalf("Execute: %v", err)
			}
		})
	}
}

func TestExecuteErrorsKeyAlwaysFails(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMsgs int
	}{
		{"errors with data", `{"data":{"thing":null},"errors":[{"message":"not found"}]}`, 1},
		{"errors only", `{"errors":[{"message":"a"},{"message":"b"}]}`, 2},
		{"empty errors", `{"data":{"thing":{}},"errors":[]}`, 0},
		{"null errors", `{"data":{"thing":{}},"errors":null}`, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			err := newTestClient(ts.URL, Config{}).Execute(context.Background(), testOp, nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsGraphQL(err) {
				t.Fatalf("expected graphql error, got %v", err)
			}
			var re *RequestError
			if !errors.As(err, &re) {
				t.Fatal("expected *RequestError")
			}
			if len(re.Errors) != tt.wantMsgs {
				t.Errorf("expected %d messages, got %d", tt.wantMsgs, len(re.Errors))
			}
			if string(re.Response) != tt.body {
				t.Errorf("raw response not kept: %s", re.Response)
			}
			if re.Operation != "GetThing" {
				t.Errorf("operation = %q", re.Operation)
			}
		})
	}
}

func TestExecuteGraphQLErrorOnNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad variable"}]}`))
	}))
	defer ts.Close()

	err := newTestClient(ts.URL, Config{}).Execute(context.Background(), testOp, nil, nil)
	if !IsGraphQL(err) {
		t.Fatalf("expected graphql error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad variable") {
		t.Errorf("message missing from %q", err.Error())
	}
}

func TestExecuteNon2xxWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := newTestClient(ts.URL, Config{}).Execute(context.Background(), testOp, nil, nil)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var re *RequestError
	errors.As(err, &re)
	if re.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", re.StatusCode)
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := newTestClient(url, Config{}).Execute(context.Background(), testOp, nil, nil)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("expected wrapped cause")
	}
}

func TestExecuteDecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no data", `{}`},
		{"null data", `{"data":null}`},
		{"array", `[1,2]`},
		{"null body", `null`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			err := newTestClient(ts.URL, Config{}).Execute(context.Background(), testOp, nil, nil)
			var re *RequestError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RequestError, got %v", err)
			}
			if re.Kind != KindDecode {
				t.Errorf("kind = %s, want decode", re.Kind)
			}
		})
	}
}

func TestExecuteNoAuthorizationWithoutTokenSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("expected no Authorization header")
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer ts.Close()

	if err := newTestClient(ts.URL, Config{}).Execute(context.Background(), testOp, nil, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestExecuteCanceledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestClient(ts.URL, Config{}).Execute(ctx, testOp, nil, nil)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
