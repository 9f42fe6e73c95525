package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-marketplace/internal/app"
	"github.com/ignatzorin/freelance-marketplace/internal/http/router"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/handler"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/usecasetest"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterBindingRules())

	store := usecasetest.NewStore()
	media, err := storage.NewMediaStorage(t.TempDir(), 5)
	require.NoError(t, err)

	tokens := service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	mem := cache.NewMemory()

	handlers := app.NewHandlers(app.Repositories{
		Users:       store.Users(),
		Freelancers: store.Freelancers(),
		Skills:      store.Skills(),
		Reviews:     store.Reviews(),
		Listings:    store.Listings(),
		Interests:   store.Interests(),
		Chats:       store.Chats(),
		Messages:    store.Messages(),
		Outbox:      store.OutboxWriter(),
		Tx:          usecasetest.Tx{},
	}, app.Services{
		Hasher:    service.NewPasswordHasher(bcrypt.MinCost),
		Tokens:    tokens,
		Blacklist: cache.NewTokenBlacklistWithStore(mem),
		Cache:     mem,
		CacheTTL:  time.Minute,
		Media:     media,
	})
	handlers.Health = handler.NewHealthHandler(nil)

	engine := router.SetupRouter(router.Options{
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}, handlers, tokens)

	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) decode(env envelope, out any) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, out))
}

// signup регистрирует пользователя и возвращает его access токен.
func (a *testAPI) signup(username, role string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/accounts/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error)

	code, env = a.do(http.MethodPost, "/api/accounts/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(a.t, http.StatusOK, code)

	var login struct {
		Access string `json:"access"`
		Role   string `json:"role"`
	}
	a.decode(env, &login)
	assert.Equal(a.t, role, login.Role)
	return login.Access
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestRegister_Validation(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/accounts/register", "", map[string]string{
		"username": "short",
		"email":    "a@example.com",
		"password": "secret123",
		"role":     "client",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = api.do(http.MethodPost, "/api/accounts/register", "", map[string]string{
		"username": "someuser1",
		"email":    "a@example.com",
		"password": "secret123",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestProfile_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodGet, "/api/accounts/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestMarketplaceFlow(t *testing.T) {
	api := newTestAPI(t)
	clientToken := api.signup("clientuser1", "client")
	freelancerToken := api.signup("freelancer1", "freelancer")

	code, env := api.do(http.MethodPatch, "/api/accounts/profile", freelancerToken, map[string]any{
		"portfolio":   "https://github.com/freelancer1",
		"skill_names": []string{"Python", "django"},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var profile struct {
		FreelancerProfile struct {
			Skills []string `json:"skills"`
		} `json:"freelancer_profile"`
	}
	api.decode(env, &profile)
	assert.ElementsMatch(t, []string{"python", "django"}, profile.FreelancerProfile.Skills)

	// фрилансер не может создать заказ
	code, _ = api.do(http.MethodPost, "/api/listings/create", freelancerToken, map[string]any{
		"title": "Build API", "price": "100",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPost, "/api/listings/create", clientToken, map[string]any{
		"title":       "Build Django API",
		"description": "REST API для магазина",
		"price":       150.5,
		"skill_names": []string{"python"},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		Slug   string `json:"slug"`
		Price  string `json:"price"`
		Status string `json:"status"`
	}
	api.decode(env, &created)
	assert.Equal(t, "build-django-api", created.Slug)
	assert.Equal(t, "150.50", created.Price)
	assert.Equal(t, "open", created.Status)

	code, env = api.do(http.MethodGet, "/api/listings/open?skills=python,go&min_price=100", "", nil)
	require.Equal(t, http.StatusOK, code)
	var open []struct {
		Slug string `json:"slug"`
	}
	api.decode(env, &open)
	require.Len(t, open, 1)
	assert.Equal(t, created.Slug, open[0].Slug)

	code, env = api.do(http.MethodGet, "/api/listings/open?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, "/api/listings/open/matched", freelancerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var matched []struct {
		Slug    string `json:"slug"`
		Matched int    `json:"matched_skills_count"`
	}
	api.decode(env, &matched)
	require.Len(t, matched, 1)
	assert.Equal(t, 1, matched[0].Matched)

	code, _ = api.do(http.MethodPost, "/api/listings/"+created.Slug+"/take", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPost, "/api/listings/"+created.Slug+"/take", freelancerToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var taken struct {
		ChatID string `json:"chat_id"`
	}
	api.decode(env, &taken)
	require.NotEmpty(t, taken.ChatID)

	code, env = api.do(http.MethodGet, "/api/listings/"+created.Slug+"/interests", clientToken, nil)
	require.Equal(t, http.StatusOK, code)
	var interests []struct {
		Freelancer string `json:"freelancer"`
	}
	api.decode(env, &interests)
	require.Len(t, interests, 1)
	assert.Equal(t, "freelancer1", interests[0].Freelancer)

	code, env = api.do(http.MethodPost, "/api/chat/"+taken.ChatID+"/message", clientToken, map[string]string{"content": "Когда сможете начать?"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = api.do(http.MethodGet, "/api/chat", freelancerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var chats []struct {
		ID          string `json:"id"`
		Counterpart string `json:"counterpart"`
		Unread      int    `json:"unread_count"`
	}
	api.decode(env, &chats)
	require.Len(t, chats, 1)
	assert.Equal(t, "clientuser1", chats[0].Counterpart)
	assert.Equal(t, 1, chats[0].Unread)

	code, env = api.do(http.MethodPost, "/api/chat/"+taken.ChatID+"/read", freelancerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var marked struct {
		Marked int `json:"marked"`
	}
	api.decode(env, &marked)
	assert.Equal(t, 1, marked.Marked)

	code, env = api.do(http.MethodGet, "/api/chat/"+taken.ChatID, clientToken, nil)
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Messages []struct {
			Author string `json:"author"`
		} `json:"messages"`
	}
	api.decode(env, &detail)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "freelancer1", detail.Messages[0].Author)
	assert.Equal(t, "clientuser1", detail.Messages[1].Author)

	code, _ = api.do(http.MethodGet, "/api/chat/not-a-uuid", clientToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPost, "/api/listings/"+created.Slug+"/close", clientToken, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = api.do(http.MethodPost, "/api/accounts/freelancer/freelancer1/review", clientToken, map[string]any{
		"rating": 4, "text": "Отличная работа",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = api.do(http.MethodPost, "/api/accounts/freelancer/freelancer1/review", clientToken, map[string]any{
		"rating": 5,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE", env.Error.Code)

	code, env = api.do(http.MethodGet, "/api/accounts/freelancer/freelancer1", "", nil)
	require.Equal(t, http.StatusOK, code)
	var card struct {
		FreelancerProfile struct {
			AverageRating float64 `json:"average_rating"`
		} `json:"freelancer_profile"`
		Reviews []struct {
			Client string `json:"client"`
		} `json:"reviews"`
	}
	api.decode(env, &card)
	assert.Equal(t, 4.0, card.FreelancerProfile.AverageRating)
	require.Len(t, card.Reviews, 1)
	assert.Equal(t, "clientuser1", card.Reviews[0].Client)
}
