package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-blog-api/internal/core/auth"
	"go-blog-api/internal/core/config"
	"go-blog-api/internal/domain"
	"go-blog-api/internal/repo"
	"go-blog-api/internal/service"
	"go-blog-api/internal/transport/http/handler"
	"go-blog-api/internal/upload"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Post{}))

	cfg := &config.Config{}
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.ThumbnailMaxBytes = 2 << 20
	cfg.Upload.AvatarMaxBytes = 500 << 10
	cfg.Limits = config.Limits{RPS: 10000, Burst: 10000, Concurrency: 100, MaxBodyBytes: 16 << 20}

	store, err := upload.NewStore(cfg.Upload.Dir)
	require.NoError(t, err)

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: 120 * time.Hour}
	log := zap.NewNop()

	userSvc := service.NewUserService(repo.NewUserRepo(db), store, jwter, log, cfg.Upload.AvatarMaxBytes)
	postSvc := service.NewPostService(repo.NewPostRepo(db), store, log, cfg.Upload.ThumbnailMaxBytes)

	return NewAPIEngine(log, cfg, jwter, handler.NewUserHandler(userSvc), handler.NewPostHandler(postSvc))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, fileField, fileName string, fileContent []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, name, email, password string) (id, token string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/users/register", gin.H{
		"name": name, "email": email,
		"password": password, "confirmPassword": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.ID, out.Token
}

func getUserPosts(t *testing.T, r *gin.Engine, id string) int {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/api/users/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var u struct {
		Posts int `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u.Posts
}

func TestRegisterValidation(t *testing.T) {
	r := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/users/register", gin.H{
		"name": "A", "email": "a@example.com", "password": "abc", "confirmPassword": "abc",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newTestServer(t)
	registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	w := doJSON(t, r, http.MethodPost, "/api/users/register", gin.H{
		"name": "Other", "email": "ALICE@example.com",
		"password": "secret1", "confirmPassword": "secret1",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	r := newTestServer(t)

	w := doMultipart(t, r, http.MethodPost, "/api/posts",
		map[string]string{"title": "T", "description": "a 12+ char description", "category": "Education"},
		"thumbnail", "t.png", []byte("img"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"authorization header required"}`, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/posts", nil, "not-a-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	r := newTestServer(t)

	// 同一密钥签发、已过期超出容忍窗口的 token
	expired := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: -5 * time.Minute}
	token, err := expired.Issue("u1", "Alice")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodDelete, "/api/posts/p1", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"invalid or expired token"}`, w.Body.String())
}

func TestPostLifecycle(t *testing.T) {
	r := newTestServer(t)
	aliceID, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	thumb := bytes.Repeat([]byte("x"), 1024)
	w := doMultipart(t, r, http.MethodPost, "/api/posts",
		map[string]string{"title": "T", "description": "a 12+ char description", "category": "Education"},
		"thumbnail", "thumb.png", thumb, tokenA)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Success bool        `json:"success"`
		Data    domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, aliceID, created.Data.CreatorID)
	assert.Equal(t, 1, getUserPosts(t, r, aliceID))

	// 缩略图可静态访问
	w = doJSON(t, r, http.MethodGet, "/uploads/"+created.Data.Thumbnail, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// 删除后：计数归零、文件不可达
	w = doJSON(t, r, http.MethodDelete, "/api/posts/"+created.Data.ID, nil, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, 0, getUserPosts(t, r, aliceID))

	w = doJSON(t, r, http.MethodGet, "/api/posts/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodGet, "/uploads/"+created.Data.Thumbnail, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteByNonCreator(t *testing.T) {
	r := newTestServer(t)
	aliceID, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")
	_, tokenB := registerAndLogin(t, r, "Bob", "bob@example.com", "secret2")

	w := doMultipart(t, r, http.MethodPost, "/api/posts",
		map[string]string{"title": "T", "description": "a 12+ char description", "category": "Education"},
		"thumbnail", "thumb.png", []byte("img"), tokenA)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodDelete, "/api/posts/"+created.Data.ID, nil, tokenB)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 帖子仍在，计数未变
	w = doJSON(t, r, http.MethodGet, "/api/posts/"+created.Data.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, getUserPosts(t, r, aliceID))
}

func TestEditByNonCreator(t *testing.T) {
	r := newTestServer(t)
	_, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")
	_, tokenB := registerAndLogin(t, r, "Bob", "bob@example.com", "secret2")

	w := doMultipart(t, r, http.MethodPost, "/api/posts",
		map[string]string{"title": "T", "description": "a 12+ char description", "category": "Education"},
		"thumbnail", "thumb.png", []byte("img"), tokenA)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data domain.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodPatch, "/api/posts/"+created.Data.ID, gin.H{
		"title": "Hacked", "description": "a 12+ char description", "category": "Education",
	}, tokenB)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/posts/"+created.Data.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "T", got.Title)
}

func TestOversizedThumbnailCreatesNothing(t *testing.T) {
	r := newTestServer(t)
	aliceID, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	big := bytes.Repeat([]byte("x"), (2<<20)+1)
	w := doMultipart(t, r, http.MethodPost, "/api/posts",
		map[string]string{"title": "T", "description": "a 12+ char description", "category": "Education"},
		"thumbnail", "big.png", big, tokenA)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, getUserPosts(t, r, aliceID))

	w = doJSON(t, r, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListEndpoints(t *testing.T) {
	r := newTestServer(t)
	_, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	for _, cat := range []string{"Education", "Art"} {
		w := doMultipart(t, r, http.MethodPost, "/api/posts",
			map[string]string{"title": "T-" + cat, "description": "a 12+ char description", "category": cat},
			"thumbnail", "t.png", []byte("img"), tokenA)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/posts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []domain.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = doJSON(t, r, http.MethodGet, "/api/posts/categories/Art", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var art []domain.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &art))
	require.Len(t, art, 1)
	assert.Equal(t, "T-Art", art[0].Title)

	w = doJSON(t, r, http.MethodGet, "/api/posts/categories/Investment", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestChangeAvatar(t *testing.T) {
	r := newTestServer(t)
	aliceID, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	w := doMultipart(t, r, http.MethodPost, "/api/users/change-avatar",
		nil, "avatar", "me.png", []byte("img"), tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, aliceID, u.ID)
	assert.NotEmpty(t, u.Avatar)

	// 超限头像被拒
	big := bytes.Repeat([]byte("x"), (500<<10)+1)
	w = doMultipart(t, r, http.MethodPost, "/api/users/change-avatar",
		nil, "avatar", "big.png", big, tokenA)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEditUser(t *testing.T) {
	r := newTestServer(t)
	_, tokenA := registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	w := doJSON(t, r, http.MethodPatch, "/api/users/edit-user", gin.H{
		"name": "Alice2", "email": "alice2@example.com",
		"currentPassword": "secret1", "newPassword": "secret2", "confirmPassword": "secret2",
	}, tokenA)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)

	// 旧口令失效、新口令可登录
	w = doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{
		"email": "alice2@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{
		"email": "alice2@example.com", "password": "secret2",
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorsExcludesPasswordHash(t *testing.T) {
	r := newTestServer(t)
	registerAndLogin(t, r, "Alice", "alice@example.com", "secret1")

	w := doJSON(t, r, http.MethodGet, "/api/users/authors", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "$2a$")
}

func TestUnknownRoute(t *testing.T) {
	r := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"not found"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
