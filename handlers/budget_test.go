package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lifeonloan/wealth-api/middleware"
	"github.com/lifeonloan/wealth-api/models"
	"github.com/lifeonloan/wealth-api/services"
)

type fakeStore struct {
	mu      sync.Mutex
	records []models.BudgetRecord
}

func (f *fakeStore) Insert(ctx context.Context, record *models.BudgetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeStore) FindRecent(ctx context.Context, userID string, limit int) ([]models.BudgetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BudgetRecord
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) FindByID(ctx context.Context, userID, id string) (*models.BudgetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.ID == id && record.UserID == userID {
			r := record
			return &r, nil
		}
	}
	return nil, services.ErrNotFound
}

type fixedRenderer struct{}

func (fixedRenderer) RenderAllocation(essential, discretionary float64) (string, error) {
	return "data:image/png;base64,cGll", nil
}

func newTestRouter(store *fakeStore, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := services.NewBudgetService(
		store,
		services.NewAggregator(false),
		fixedRenderer{},
		services.NewAdviceClient(nil),
	)
	h := NewBudgetHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			middleware.SetUserID(c, userID)
		}
		c.Next()
	})
	router.POST("/budgets", h.SubmitBudget)
	router.GET("/budgets/:id", h.GetBudget)
	router.GET("/dashboard", h.GetDashboard)
	router.GET("/history", h.GetHistory)

	return router
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitBudgetForm(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	form := url.Values{}
	form.Set("tuition", "500")
	form.Set("housing", "800")
	form.Set("entertainment", "100")

	w := postForm(router, "/budgets", form)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.BudgetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.TotalExpenses != 1400 {
		t.Errorf("grand total = %v, want 1400", resp.TotalExpenses)
	}
	if resp.EssentialPercentage != 92.86 || resp.DiscretionaryPercentage != 7.14 {
		t.Errorf("percentages = %v/%v, want 92.86/7.14",
			resp.EssentialPercentage, resp.DiscretionaryPercentage)
	}
	if resp.Advice == "" {
		t.Error("advice must not be empty")
	}
	if !strings.HasPrefix(resp.Visualization, "data:image/png;base64,") {
		t.Errorf("visualization = %.40q", resp.Visualization)
	}
}

func TestSubmitBudgetJSON(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	body := `{"tuition": 250.50, "coffee_snacks": "12"}`
	req := httptest.NewRequest("POST", "/budgets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp models.BudgetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.TotalExpenses != 262.5 {
		t.Errorf("grand total = %v, want 262.5", resp.TotalExpenses)
	}
}

func TestSubmitBudgetInvalidAmount(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	form := url.Values{}
	form.Set("tuition", "abc")

	w := postForm(router, "/budgets", form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "tuition") {
		t.Errorf("response does not name the offending field: %s", w.Body.String())
	}
	if len(store.records) != 0 {
		t.Errorf("store has %d records, want 0", len(store.records))
	}
}

func TestGetBudgetOwnership(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	form := url.Values{}
	form.Set("food", "42")
	w := postForm(router, "/budgets", form)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var created models.BudgetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	// Same store, different authenticated user.
	otherRouter := newTestRouter(store, "user-2")
	req := httptest.NewRequest("GET", "/budgets/"+created.ID, nil)
	rec := httptest.NewRecorder()
	otherRouter.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for another user's record", rec.Code)
	}

	// Owner still sees it.
	req = httptest.NewRequest("GET", "/budgets/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for the owner", rec.Code)
	}
}

func TestGetBudgetMalformedID(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	req := httptest.NewRequest("GET", "/budgets/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a malformed id", w.Code)
	}
}

func TestDashboardLimit(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "user-1")

	for i := 0; i < 7; i++ {
		form := url.Values{}
		form.Set("food", "10")
		if w := postForm(router, "/budgets", form); w.Code != http.StatusCreated {
			t.Fatalf("seed submission failed: %d", w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var dashboard []models.BudgetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dashboard); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(dashboard) != 5 {
		t.Errorf("dashboard has %d entries, want 5", len(dashboard))
	}

	req = httptest.NewRequest("GET", "/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var history []models.BudgetResponse
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(history) != 7 {
		t.Errorf("history has %d entries, want 7", len(history))
	}
}

func TestBudgetRoutesRequireAuth(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(store, "")

	form := url.Values{}
	form.Set("food", "10")
	if w := postForm(router, "/budgets", form); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a user", w.Code)
	}
}
