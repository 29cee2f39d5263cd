package whatsapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

type capturedRequest struct {
	path string
	form map[string]string
}

func newGateway(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{form: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		captured.path = r.URL.Path
		for k := range r.PostForm {
			captured.form[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestSendDirectMessage(t *testing.T) {
	srv, captured := newGateway(t, http.StatusOK, `{"status":"success"}`)
	client, err := NewClient(srv.URL+"/", "device-1")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.Send(context.Background(), Message{To: "628123", Text: "Selamat datang"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if captured.path != "/api/send" {
		t.Fatalf("unexpected path %q", captured.path)
	}
	if captured.form["device_id"] != "device-1" || captured.form["number"] != "628123" || captured.form["message"] != "Selamat datang" {
		t.Fatalf("unexpected form %v", captured.form)
	}
	if _, ok := captured.form["group"]; ok {
		t.Fatal("direct message must not carry a group field")
	}
}

func TestSendGroupMessage(t *testing.T) {
	srv, captured := newGateway(t, http.StatusOK, `{"status":"ok"}`)
	client, _ := NewClient(srv.URL, "device-1")

	if err := client.Send(context.Background(), Message{To: "1203@g.us", Text: "report", IsGroup: true}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if captured.path != "/api/sendGroup" || captured.form["group"] != "1203@g.us" {
		t.Fatalf("unexpected request %s %v", captured.path, captured.form)
	}
}

func TestSendGatewayFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non 2xx", status: http.StatusInternalServerError, body: `oops`},
		{name: "error status in body", status: http.StatusOK, body: `{"status":"error","message":"device offline"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newGateway(t, tc.status, tc.body)
			client, _ := NewClient(srv.URL, "device-1")
			err := client.Send(context.Background(), Message{To: "628123", Text: "hi"})
			if !pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
				t.Fatalf("expected gateway error, got %v", err)
			}
		})
	}
}

func TestSendAcceptsNonJSONSuccessBody(t *testing.T) {
	srv, _ := newGateway(t, http.StatusCreated, `queued`)
	client, _ := NewClient(srv.URL, "device-1")
	if err := client.Send(context.Background(), Message{To: "628123", Text: "hi"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestNewClientRequiresDevice(t *testing.T) {
	if _, err := NewClient("http://gw", " "); err == nil {
		t.Fatal("expected missing device id to fail")
	}
	if _, err := NewClient("", "device"); err == nil {
		t.Fatal("expected missing base url to fail")
	}
}

func TestSendValidatesMessage(t *testing.T) {
	client, _ := NewClient("http://gw.invalid", "device-1")
	if err := client.Send(context.Background(), Message{Text: "hi"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
