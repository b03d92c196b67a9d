package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
)

func TestFail_MapsKind(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, zap.NewNop(), apperr.Forbidden("You can only delete your own posts"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"You can only delete your own posts"}`, rec.Body.String())
}

func TestFail_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, zap.NewNop(), errors.New("dial tcp: refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestDecode(t *testing.T) {
	var body struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, Decode(httptest.NewRecorder(), req, &body))
	assert.Equal(t, "a@b.c", body.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	err := Decode(httptest.NewRecorder(), req, &body)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	assert.NoError(t, Decode(httptest.NewRecorder(), req, &body))
}

func TestIDParam(t *testing.T) {
	var got uint
	var gotErr error
	r := chi.NewRouter()
	r.Get("/posts/{post_id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = IDParam(r, "post_id")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, uint(42), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
	assert.True(t, apperr.Is(gotErr, apperr.KindValidation))
}
