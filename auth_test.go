package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxapi-go/boxapi/internal/tokenfile"
)

// newAuthServer serves the ticket flow. tokenStatus controls the
// get_auth_token reply.
func newAuthServer(t *testing.T, tokenStatus string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/rest", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))

		switch r.URL.Query().Get("action") {
		case "get_ticket":
			fmt.Fprint(w, `<response><status>get_ticket_ok</status><ticket>tkt-1</ticket></response>`)
		case "get_auth_token":
			if tokenStatus != "get_auth_token_ok" {
				fmt.Fprintf(w, `<response><status>%s</status></response>`, tokenStatus)
				return
			}

			fmt.Fprint(w, `<response><status>get_auth_token_ok</status><auth_token>fresh-token</auth_token></response>`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

// stubBrowser records opened URLs for the duration of a test.
func stubBrowser(t *testing.T, openErr error) *[]string {
	t.Helper()

	var opened []string

	old := openBrowser
	openBrowser = func(url string) error {
		opened = append(opened, url)
		return openErr
	}

	t.Cleanup(func() { openBrowser = old })

	return &opened
}

func TestLogin_Success(t *testing.T) {
	srv := newAuthServer(t, "get_auth_token_ok")
	env := newCLIEnv(t, srv.URL)
	opened := stubBrowser(t, nil)

	_, stderr, err := env.runWithInput("\n", "login")
	require.NoError(t, err)

	assert.Equal(t, []string{srv.URL + "/auth/auth/tkt-1"}, *opened)
	assert.Contains(t, stderr, "To authorize, visit: "+srv.URL+"/auth/auth/tkt-1")
	assert.Contains(t, stderr, "Login successful.")

	tf, err := tokenfile.LoadFor(env.tokenPath, testAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", tf.AuthToken())
}

func TestLogin_NoBrowser(t *testing.T) {
	srv := newAuthServer(t, "get_auth_token_ok")
	env := newCLIEnv(t, srv.URL)
	opened := stubBrowser(t, nil)

	_, _, err := env.runWithInput("", "login", "--no-browser")
	require.NoError(t, err)
	assert.Empty(t, *opened)
}

func TestLogin_BrowserFailureIsNotFatal(t *testing.T) {
	srv := newAuthServer(t, "get_auth_token_ok")
	env := newCLIEnv(t, srv.URL)
	stubBrowser(t, errors.New("no display"))

	_, stderr, err := env.runWithInput("\n", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "could not open browser")
}

func TestLogin_NotApproved(t *testing.T) {
	srv := newAuthServer(t, "not_logged_in")
	env := newCLIEnv(t, srv.URL)
	stubBrowser(t, nil)

	_, _, err := env.runWithInput("\n", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchanging ticket")

	tf, err := tokenfile.Load(env.tokenPath)
	require.NoError(t, err)
	assert.Nil(t, tf)
}

func TestLogin_NoAPIKey(t *testing.T) {
	env := newCLIEnv(t, "")
	require.NoError(t, os.WriteFile(env.cfgPath, []byte("log_format = \"text\"\n"), 0o600))

	_, _, err := env.run("login")
	assert.ErrorIs(t, err, errNoAPIKey)
}

func TestLogout(t *testing.T) {
	env := newCLIEnv(t, "")
	env.login()

	_, stderr, err := env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged out.")

	_, stderr, err = env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Not logged in.")
}
