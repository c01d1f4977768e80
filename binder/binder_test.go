package binder_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessiongate/binder"
)

func TestBindJSON(t *testing.T) {
	t.Parallel()

	type sendRequest struct {
		Number  string `json:"number"`
		Message string `json:"message"`
	}

	newRequest := func(body, contentType string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/send-message", bytes.NewBufferString(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`{"number":"123","message":"hi"}`, "application/json; charset=utf-8"), &got)
		require.NoError(t, err)
		assert.Equal(t, sendRequest{Number: "123", Message: "hi"}, got)
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`{"number":"123"}`, ""), &got)
		assert.ErrorIs(t, err, binder.ErrMissingContentType)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`number=123`, "application/x-www-form-urlencoded"), &got)
		assert.ErrorIs(t, err, binder.ErrUnsupportedMediaType)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`{"number":`, "application/json"), &got)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`{"number":"1","extra":true}`, "application/json"), &got)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		err := binder.BindJSON()(newRequest(`{"number":"1"}{"number":"2"}`, "application/json"), &got)
		assert.ErrorIs(t, err, binder.ErrInvalidJSON)
	})

	t.Run("empty body is not applicable", func(t *testing.T) {
		t.Parallel()
		var got sendRequest
		req := httptest.NewRequest(http.MethodPost, "/sessions/a", nil)
		err := binder.BindJSON()(req, &got)
		assert.ErrorIs(t, err, binder.ErrBinderNotApplicable)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	type request struct {
		SessionID string `path:"id"`
		Attempt   int    `path:"attempt"`
		Ignored   string `path:"-"`
		Untagged  string
	}

	params := map[string]string{"id": "tenant-1", "attempt": "3", "Untagged": "x"}
	extractor := func(_ *http.Request, name string) string { return params[name] }

	var got request
	err := binder.Path(extractor)(httptest.NewRequest(http.MethodGet, "/", nil), &got)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", got.SessionID)
	assert.Equal(t, 3, got.Attempt)
	assert.Empty(t, got.Ignored)
	assert.Empty(t, got.Untagged)

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		var got request
		err := binder.Path(nil)(httptest.NewRequest(http.MethodGet, "/", nil), &got)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("invalid integer", func(t *testing.T) {
		t.Parallel()
		bad := func(_ *http.Request, name string) string {
			if name == "attempt" {
				return "three"
			}
			return ""
		}
		var got request
		err := binder.Path(bad)(httptest.NewRequest(http.MethodGet, "/", nil), &got)
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})

	t.Run("non pointer target", func(t *testing.T) {
		t.Parallel()
		err := binder.Path(extractor)(httptest.NewRequest(http.MethodGet, "/", nil), request{})
		assert.ErrorIs(t, err, binder.ErrInvalidPath)
	})
}

func TestBindQuery(t *testing.T) {
	t.Parallel()

	type request struct {
		Format string `query:"format"`
		Size   *int   `query:"size"`
		Raw    bool   `query:"raw"`
	}

	t.Run("binds values", func(t *testing.T) {
		t.Parallel()
		var got request
		req := httptest.NewRequest(http.MethodGet, "/qr?format=png&size=256&raw=true", nil)
		require.NoError(t, binder.BindQuery()(req, &got))
		assert.Equal(t, "png", got.Format)
		require.NotNil(t, got.Size)
		assert.Equal(t, 256, *got.Size)
		assert.True(t, got.Raw)
	})

	t.Run("missing values keep zero", func(t *testing.T) {
		t.Parallel()
		var got request
		req := httptest.NewRequest(http.MethodGet, "/qr", nil)
		require.NoError(t, binder.BindQuery()(req, &got))
		assert.Empty(t, got.Format)
		assert.Nil(t, got.Size)
	})

	t.Run("invalid bool", func(t *testing.T) {
		t.Parallel()
		var got request
		req := httptest.NewRequest(http.MethodGet, "/qr?raw=maybe", nil)
		assert.ErrorIs(t, binder.BindQuery()(req, &got), binder.ErrInvalidQuery)
	})
}
