package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meetcasa/casa-waitlist-api/config"
	"github.com/meetcasa/casa-waitlist-api/config/router"
	"github.com/meetcasa/casa-waitlist-api/domain"
	"github.com/meetcasa/casa-waitlist-api/domain/waitlist"
	"github.com/meetcasa/casa-waitlist-api/internal/log"
	"github.com/meetcasa/casa-waitlist-api/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type WaitlistAPITestSuite struct {
	suite.Suite
	db        *gorm.DB
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

func (suite *WaitlistAPITestSuite) SetupSuite() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.WaitlistEntry{})
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()

	suite.appConfig = &config.ApplicationConfig{
		DB:     suite.db,
		Logger: suite.logger,
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(suite.appConfig)

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *WaitlistAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *WaitlistAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM waitlist_entries")
}

func (suite *WaitlistAPITestSuite) postWaitlist(body map[string]string) (*http.Response, map[string]interface{}) {
	jsonBody, err := json.Marshal(body)
	suite.Require().NoError(err)

	resp, err := http.Post(suite.baseURL+"/api/waitlist", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	return resp, response
}

func (suite *WaitlistAPITestSuite) countEntries() int64 {
	var count int64
	suite.Require().NoError(suite.db.Model(&models.WaitlistEntry{}).Count(&count).Error)
	return count
}

func (suite *WaitlistAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	suite.Equal(true, response["ok"])
	suite.Equal(float64(1), response["database"])
}

func (suite *WaitlistAPITestSuite) TestJoinWaitlistNormalizesEmail() {
	resp, response := suite.postWaitlist(map[string]string{
		"contact":    "  John.Doe@Example.COM ",
		"type":       "email",
		"sourcePage": "/landing",
	})

	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	suite.Equal("john.doe@example.com", data["email"])
	suite.Equal("/landing", data["source_page"])
	suite.Contains(data, "id")

	var entry models.WaitlistEntry
	suite.Require().NoError(suite.db.First(&entry).Error)
	suite.Require().NotNil(entry.Email)
	suite.Equal("john.doe@example.com", *entry.Email)
	suite.Nil(entry.Phone)
	suite.NotNil(entry.UserAgent) // Go's http client always sends one
}

func (suite *WaitlistAPITestSuite) TestDuplicateEmailConflict() {
	body := map[string]string{"contact": "dup@example.com", "type": "email"}

	first, _ := suite.postWaitlist(body)
	suite.Equal(http.StatusCreated, first.StatusCode)

	second, response := suite.postWaitlist(map[string]string{"contact": " DUP@example.com ", "type": "email"})
	suite.Equal(http.StatusConflict, second.StatusCode)
	suite.Contains(response["message"], "already on the waitlist")

	suite.Equal(int64(1), suite.countEntries())
}

func (suite *WaitlistAPITestSuite) TestPhoneNormalization() {
	resp, response := suite.postWaitlist(map[string]string{
		"contact": "+1 (555) 010-9999",
		"type":    "phone",
	})

	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	suite.Equal("15550109999", data["phone"])
}

func (suite *WaitlistAPITestSuite) TestDuplicatePhoneAcrossFormats() {
	first, _ := suite.postWaitlist(map[string]string{"contact": "+1 555-010-9999", "type": "phone"})
	suite.Equal(http.StatusCreated, first.StatusCode)

	second, _ := suite.postWaitlist(map[string]string{"contact": "(1) 555 010 9999", "type": "phone"})
	suite.Equal(http.StatusConflict, second.StatusCode)

	suite.Equal(int64(1), suite.countEntries())
}

func (suite *WaitlistAPITestSuite) TestRejectsUnknownType() {
	resp, _ := suite.postWaitlist(map[string]string{"contact": "user@example.com", "type": "fax"})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(int64(0), suite.countEntries())
}

func (suite *WaitlistAPITestSuite) TestRejectsPhoneWithoutDigits() {
	resp, _ := suite.postWaitlist(map[string]string{"contact": "abc-def", "type": "phone"})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(int64(0), suite.countEntries())
}

func (suite *WaitlistAPITestSuite) TestRejectsMissingContact() {
	resp, _ := suite.postWaitlist(map[string]string{"type": "email"})

	suite.Equal(http.StatusBadRequest, resp.StatusCode)
	suite.Equal(int64(0), suite.countEntries())
}

func TestWaitlistAPITestSuite(t *testing.T) {
	suite.Run(t, new(WaitlistAPITestSuite))
}

// The write path carries its own admission budget; exhausting it must reject
// further submissions without touching the store.
func TestWaitlistSubmissionRateLimit(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.WaitlistEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := log.NewLoggerWithJSONOutput()

	const budget = 3
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: budget,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(waitlist.NewWaitlistController(db, logger))

	post := func(contact string) int {
		body, _ := json.Marshal(map[string]string{"contact": contact, "type": "email"})
		req := httptest.NewRequest(http.MethodPost, "/api/waitlist", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "198.51.100.7:4242"

		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < budget; i++ {
		if code := post(fmt.Sprintf("user%d@example.com", i)); code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, code)
		}
	}

	if code := post("overflow@example.com"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the budget is spent, got %d", code)
	}

	var count int64
	if err := db.Model(&models.WaitlistEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != budget {
		t.Fatalf("rejected request must not create a row: want %d entries, got %d", budget, count)
	}
}

// A dead database must fail the liveness probe with ok:false instead of
// crashing the handler.
func TestHealthCheckUnhealthyDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	logger := log.NewLoggerWithJSONOutput()

	appConfig := &config.ApplicationConfig{DB: db, Logger: logger}
	appConfig.RouterService = router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	domain.SetupCoreDomain(appConfig)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	appConfig.RouterService.GetEngine().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unreachable store, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response["ok"] != false {
		t.Fatalf("expected ok:false, got %v", response["ok"])
	}
}
