package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Set(zap.NewNop())
}

// asSalon stands in for the auth middleware.
func asSalon(f dbtest.Fixture) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextSalonID, f.Salon.ID)
		c.Set(middleware.ContextUserID, f.User.ID)
		c.Set(middleware.ContextActor, f.User.FullName)
		c.Next()
	}
}

func openDB(t *testing.T) (*gorm.DB, dbtest.Fixture) {
	t.Helper()
	db := dbtest.Open(t)
	return db, dbtest.Seed(t, db)
}

func call(t *testing.T, r http.Handler, method, path string, body any, header map[string]string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}
