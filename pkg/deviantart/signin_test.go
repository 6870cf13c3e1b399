package deviantart

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseForm(t *testing.T, req *http.Request) url.Values {
	t.Helper()

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	form, err := url.ParseQuery(string(body))
	require.NoError(t, err)
	return form
}

func TestSignInTwoStep(t *testing.T) {
	loginPage := statePageHTML(`{
		"@@publicSession": {"isLoggedIn": false},
		"csrfToken": "csrf-login",
		"luToken": "lu-1"
	}`)
	passwordPage := statePageHTML(`{
		"@@publicSession": {"isLoggedIn": false},
		"csrfToken": "csrf-password",
		"luToken": "lu-2",
		"luToken2": "lu-2b"
	}`)
	signedInPage := statePageHTML(`{"@@publicSession": {"isLoggedIn": true}}`)

	var step2Form, signinForm url.Values
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case LoginURL:
			return newResponse(http.StatusOK, loginPage), nil
		case signInStep2URL:
			step2Form = parseForm(t, req)
			return newResponse(http.StatusOK, passwordPage), nil
		case signInURL:
			signinForm = parseForm(t, req)
			return newResponse(http.StatusOK, signedInPage), nil
		}
		return newResponse(http.StatusNotFound, ""), nil
	})

	err := client.SignIn(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	require.NotNil(t, step2Form)
	assert.Equal(t, "csrf-login", step2Form.Get("csrf_token"))
	assert.Equal(t, "lu-1", step2Form.Get("lu_token"))
	assert.Equal(t, "alice", step2Form.Get("username"))
	assert.Equal(t, "0", step2Form.Get("challenge"))
	assert.Equal(t, "on", step2Form.Get("remember"))

	require.NotNil(t, signinForm)
	assert.Equal(t, "csrf-password", signinForm.Get("csrf_token"))
	assert.Equal(t, "lu-2", signinForm.Get("lu_token"))
	assert.Equal(t, "lu-2b", signinForm.Get("lu_token2"))
	assert.Equal(t, "hunter2", signinForm.Get("password"))

	// The username was already bound by the step2 request.
	assert.Equal(t, "", signinForm.Get("username"))
}

func TestSignInSingleStep(t *testing.T) {
	loginPage := statePageHTML(`{
		"@@config": {"csrfToken": "csrf-legacy"},
		"@@publicSession": {"isLoggedIn": false}
	}`)
	signedInPage := statePageHTML(`{"@@publicSession": {"isLoggedIn": true}}`)

	var signinForm url.Values
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case LoginURL:
			return newResponse(http.StatusOK, loginPage), nil
		case signInURL:
			signinForm = parseForm(t, req)
			return newResponse(http.StatusOK, signedInPage), nil
		}
		return newResponse(http.StatusNotFound, ""), nil
	})

	err := client.SignIn(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	require.NotNil(t, signinForm)
	assert.Equal(t, "csrf-legacy", signinForm.Get("csrf_token"))
	assert.Equal(t, "alice", signinForm.Get("username"))
	assert.Equal(t, "hunter2", signinForm.Get("password"))
	assert.Equal(t, "0", signinForm.Get("challenge"))
	assert.Equal(t, "on", signinForm.Get("remember"))
}

func TestSignInRejected(t *testing.T) {
	loginPage := statePageHTML(`{
		"@@config": {"csrfToken": "csrf-legacy"},
		"@@publicSession": {"isLoggedIn": false}
	}`)
	stillAnonymous := statePageHTML(`{"@@publicSession": {"isLoggedIn": false}}`)

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case LoginURL:
			return newResponse(http.StatusOK, loginPage), nil
		case signInURL:
			return newResponse(http.StatusOK, stillAnonymous), nil
		}
		return newResponse(http.StatusNotFound, ""), nil
	})

	err := client.SignIn(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrSignInFailed)
}

func TestSignInMissingTokens(t *testing.T) {
	t.Run("missing csrf token", func(t *testing.T) {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(http.StatusOK, statePageHTML(`{"@@publicSession": {"isLoggedIn": false}}`)), nil
		})

		err := client.SignIn(context.Background(), "alice", "hunter2")
		var fieldErr *MissingFieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "csrfToken", fieldErr.Name)
	})

	t.Run("missing luToken2 on password page", func(t *testing.T) {
		loginPage := statePageHTML(`{
			"@@publicSession": {"isLoggedIn": false},
			"csrfToken": "csrf-login",
			"luToken": "lu-1"
		}`)
		passwordPage := statePageHTML(`{
			"@@publicSession": {"isLoggedIn": false},
			"csrfToken": "csrf-password",
			"luToken": "lu-2"
		}`)

		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			switch req.URL.String() {
			case LoginURL:
				return newResponse(http.StatusOK, loginPage), nil
			case signInStep2URL:
				return newResponse(http.StatusOK, passwordPage), nil
			}
			return newResponse(http.StatusNotFound, ""), nil
		})

		err := client.SignIn(context.Background(), "alice", "hunter2")
		var fieldErr *MissingFieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "luToken2", fieldErr.Name)
	})
}
