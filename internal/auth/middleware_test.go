package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	users map[string]int64
	next  int
	err   error
}

func (f *fakeSessions) Create(_ context.Context, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	id := "s" + strconv.Itoa(f.next)
	f.users[id] = userID
	return id, nil
}

func (f *fakeSessions) GetUserID(_ context.Context, id string) (int64, bool) {
	u, ok := f.users[id]
	return u, ok
}

func newTestRouter(s Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(EnsureSession(s, 3600))
	r.GET("/who", func(c *gin.Context) {
		id := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"session": id.SessionID, "user": id.UserID})
	})
	return r
}

func TestEnsureSession_IssuesAnonymousSession(t *testing.T) {
	s := &fakeSessions{users: map[string]int64{}}
	rec := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"session":"s1","user":0}`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "s1", cookies[0].Value)
}

func TestEnsureSession_KeepsKnownSession(t *testing.T) {
	s := &fakeSessions{users: map[string]int64{"abc": 42}}
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(rec, req)

	assert.JSONEq(t, `{"session":"abc","user":42}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestEnsureSession_StoreDown(t *testing.T) {
	s := &fakeSessions{users: map[string]int64{}, err: errors.New("redis down")}
	rec := httptest.NewRecorder()
	newTestRouter(s).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
