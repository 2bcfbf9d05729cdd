package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/draintech/drainwatch/internal/auth"
)

func TestSignIn_ParsesSessionAndCachesIt(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"localId": "uid-123",
			"email": "ana@example.com",
			"idToken": "token-abc",
			"refreshToken": "refresh-xyz",
			"expiresIn": "3600"
		}`))
	}))
	defer server.Close()

	client := auth.NewClient(server.URL, "api-key-1")
	session, err := client.SignIn(context.Background(), "ana@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if gotPath != "/v1/accounts:signInWithPassword" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "api-key-1" {
		t.Errorf("key = %q", gotKey)
	}
	if gotBody["email"] != "ana@example.com" || gotBody["password"] != "hunter2" {
		t.Errorf("credentials payload = %v", gotBody)
	}
	if gotBody["returnSecureToken"] != true {
		t.Errorf("returnSecureToken = %v", gotBody["returnSecureToken"])
	}

	if session.UID != "uid-123" {
		t.Errorf("UID = %q", session.UID)
	}
	if session.Email != "ana@example.com" {
		t.Errorf("Email = %q", session.Email)
	}
	if session.IDToken != "token-abc" {
		t.Errorf("IDToken = %q", session.IDToken)
	}
	if session.RefreshToken != "refresh-xyz" {
		t.Errorf("RefreshToken = %q", session.RefreshToken)
	}
	if session.ExpiresAt.IsZero() {
		t.Error("ExpiresAt not set")
	}

	cached, ok := client.Current()
	if !ok {
		t.Fatal("no cached session after sign-in")
	}
	if cached.UID != "uid-123" {
		t.Errorf("cached UID = %q", cached.UID)
	}
}

func TestSignUp_HitsSignUpEndpoint(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"localId":"uid-9","email":"new@example.com","idToken":"t","refreshToken":"r","expiresIn":"3600"}`))
	}))
	defer server.Close()

	client := auth.NewClient(server.URL, "")
	if _, err := client.SignUp(context.Background(), "new@example.com", "secret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if gotPath != "/v1/accounts:signUp" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestSignIn_SurfacesServiceMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
	}))
	defer server.Close()

	client := auth.NewClient(server.URL, "key")
	_, err := client.SignIn(context.Background(), "ana@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "INVALID_PASSWORD") {
		t.Errorf("error does not carry the service message: %v", err)
	}

	if _, ok := client.Current(); ok {
		t.Error("failed sign-in must not cache a session")
	}
}

func TestSignOut_DropsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"localId":"uid-1","email":"a@b.c","idToken":"t","refreshToken":"r","expiresIn":"60"}`))
	}))
	defer server.Close()

	client := auth.NewClient(server.URL, "")
	if _, err := client.SignIn(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	client.SignOut()
	if _, ok := client.Current(); ok {
		t.Error("session still cached after sign-out")
	}
}
