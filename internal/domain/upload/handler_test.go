package upload

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupHandler(t *testing.T, userID int64) (*gin.Engine, *MockGateway, *Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, gw, ledger, _ := setupService(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	RegisterRoutes(r, NewHandler(svc))
	return r, gw, ledger
}

func postDelete(r *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete_file/"+id, nil))
	return w
}

func TestHandler_Delete_Success(t *testing.T) {
	r, gw, ledger := setupHandler(t, adminID)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(nil)

	w := postDelete(r, "7")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"File deleted"}`, w.Body.String())
	assert.Zero(t, ledger.Len())
}

func TestHandler_Delete_NotFound(t *testing.T) {
	r, _, _ := setupHandler(t, adminID)

	w := postDelete(r, "404")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"File not found or deletion failed"}`, w.Body.String())
}

func TestHandler_Delete_GatewayFailure(t *testing.T) {
	r, gw, ledger := setupHandler(t, adminID)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))
	gw.On("DeleteMessage", mock.Anything, channel, int64(7)).Return(errors.New("boom"))

	w := postDelete(r, "7")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, ledger.Len())
}

func TestHandler_Delete_BadID(t *testing.T) {
	r, _, _ := setupHandler(t, adminID)

	for _, id := range []string{"abc", "0", "-3"} {
		w := postDelete(r, id)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestHandler_Delete_Denied(t *testing.T) {
	r, _, ledger := setupHandler(t, otherID)
	require.NoError(t, ledger.Insert(rec(7, ownerID, 1)))

	w := postDelete(r, "7")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Access denied"}`, w.Body.String())
	assert.Equal(t, 1, ledger.Len())
}
