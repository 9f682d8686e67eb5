package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, calls *[]string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer good" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		*calls = append(*calls, c.Request.URL.Path)
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful"})
	}
	r.POST("/withdraw", handler)
	r.POST("/withdraw/cheap", handler)
	r.POST("/broken", func(c *gin.Context) { c.String(http.StatusBadGateway, "upstream down") })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestWithdraw_SelectsVariant(t *testing.T) {
	var calls []string
	srv := newServer(t, &calls)
	c := New(srv.URL+"/", "good")

	msg, err := c.Withdraw(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Withdrawal successful", msg)

	_, err = c.Withdraw(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/withdraw", "/withdraw/cheap"}, calls)
}

func TestWithdraw_ReportsServerError(t *testing.T) {
	var calls []string
	srv := newServer(t, &calls)

	_, err := New(srv.URL, "bad").Withdraw(context.Background(), false)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "HTTP 401: Invalid or expired token")
	assert.Empty(t, calls)

	err = New(srv.URL, "good").post(context.Background(), "/broken", nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestWithdraw_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "good").Withdraw(context.Background(), false)
	assert.ErrorIs(t, err, ErrRequestFailed)
}
