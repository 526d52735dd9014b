package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orderstack/internal/api/dto"
	"orderstack/internal/controller"
	"orderstack/internal/middleware"
	"orderstack/internal/model"
	"orderstack/internal/repository"
	"orderstack/internal/router"
	"orderstack/internal/service"
	"orderstack/pkg/response"
)

// ==================== 测试辅助 ====================

type apiResp struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(
		&model.ShippingTemplate{}, &model.ShippingTemplateRule{},
		&model.ProductShippingTemplate{}, &model.PlatformProductShippingTemplate{},
	)

	templateRepo := repository.NewShippingTemplateRepository(db)
	ruleRepo := repository.NewShippingTemplateRuleRepository(db)
	productBindingRepo := repository.NewProductShippingTemplateRepository(db)
	platformBindingRepo := repository.NewPlatformProductShippingTemplateRepository(db)
	txManager := repository.NewTxManager(db)

	bindingSvc := service.NewBindingService(templateRepo, productBindingRepo, platformBindingRepo, txManager)
	templateSvc := service.NewShippingTemplateService(templateRepo, ruleRepo, productBindingRepo, platformBindingRepo, txManager)
	calculatorSvc := service.NewCalculatorService(templateRepo, ruleRepo, bindingSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, &router.Controllers{
		ShippingTemplate: controller.NewShippingTemplateController(templateSvc, calculatorSvc),
		Binding:          controller.NewBindingController(bindingSvc),
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *apiResp) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("序列化请求失败: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body = %s", err, w.Body.String())
	}
	return w, &resp
}

func createTemplateViaAPI(t *testing.T, r *gin.Engine, name string, rules []dto.RuleCreateReq) dto.TemplateResp {
	w, resp := doJSON(t, r, http.MethodPost, "/api/shipping/templates", dto.TemplateCreateReq{
		Name:    name,
		Carrier: "测试物流",
		Rules:   rules,
	})
	if w.Code != http.StatusCreated || resp.Code != response.CodeOK {
		t.Fatalf("创建模板失败: status=%d, resp=%+v", w.Code, resp)
	}

	var template dto.TemplateResp
	if err := json.Unmarshal(resp.Data, &template); err != nil {
		t.Fatalf("解析模板响应失败: %v", err)
	}
	return template
}

// ==================== 模板接口 ====================

func TestTemplateAPI_CRUD(t *testing.T) {
	r := setupTestRouter(t)

	template := createTemplateViaAPI(t, r, "美线标准", []dto.RuleCreateReq{
		{ToRegion: "US", FirstWeight: 0.5, FirstPrice: 5, AdditionalUnit: 0.5, AdditionalPrice: 2},
	})
	if template.RuleCount != 1 {
		t.Errorf("rule_count = %d, want 1", template.RuleCount)
	}

	// 详情
	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/shipping/templates/%d", template.ID), nil)
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("获取详情失败: status=%d, resp=%+v", w.Code, resp)
	}
	var detail dto.TemplateResp
	json.Unmarshal(resp.Data, &detail)
	if len(detail.Rules) != 1 || detail.Rules[0].ToRegion != "US" {
		t.Errorf("detail.Rules = %+v, want 1 条 US 规则", detail.Rules)
	}

	// 更新
	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/shipping/templates/%d", template.ID), dto.TemplateUpdateReq{
		Name: "美线加急",
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("更新失败: status=%d, resp=%+v", w.Code, resp)
	}

	// 列表
	w, resp = doJSON(t, r, http.MethodGet, "/api/shipping/templates?keyword=加急", nil)
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("列表失败: status=%d, resp=%+v", w.Code, resp)
	}
	var list dto.TemplateListResp
	json.Unmarshal(resp.Data, &list)
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}

	// 删除
	w, resp = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/shipping/templates/%d", template.ID), nil)
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("删除失败: status=%d, resp=%+v", w.Code, resp)
	}

	// 删除后详情返回业务 not found
	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/shipping/templates/%d", template.ID), nil)
	if w.Code != http.StatusOK || resp.Code != response.CodeNotFound {
		t.Errorf("status=%d, code=%d, want 200/%d", w.Code, resp.Code, response.CodeNotFound)
	}
}

func TestTemplateAPI_BadRequest(t *testing.T) {
	r := setupTestRouter(t)

	// 缺少必填 name
	w, _ := doJSON(t, r, http.MethodPost, "/api/shipping/templates", map[string]string{"carrier": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	// 非数字 ID
	w, _ = doJSON(t, r, http.MethodGet, "/api/shipping/templates/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ==================== 规则接口 ====================

func TestRuleAPI_OverlapConflict(t *testing.T) {
	r := setupTestRouter(t)

	template := createTemplateViaAPI(t, r, "美线", []dto.RuleCreateReq{
		{ToRegion: "US", MinWeight: 0, MaxWeight: 2, FirstPrice: 5, AdditionalUnit: 0.5},
	})

	// 区间冲突走业务信封，HTTP 仍为 200
	w, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/shipping/templates/%d/rules", template.ID), dto.RuleCreateReq{
		ToRegion: "US", MinWeight: 1, MaxWeight: 3, FirstPrice: 8, AdditionalUnit: 0.5,
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeConflict {
		t.Errorf("status=%d, code=%d, want 200/%d", w.Code, resp.Code, response.CodeConflict)
	}

	// 相接区间正常创建
	w, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/shipping/templates/%d/rules", template.ID), dto.RuleCreateReq{
		ToRegion: "US", MinWeight: 2, MaxWeight: 0, FirstPrice: 10, AdditionalUnit: 0.5,
	})
	if w.Code != http.StatusCreated || resp.Code != response.CodeOK {
		t.Errorf("status=%d, code=%d, want 201/0", w.Code, resp.Code)
	}

	// 非法规则参数
	w, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/shipping/templates/%d/rules", template.ID), dto.RuleCreateReq{
		ToRegion: "EU", MinWeight: 2, MaxWeight: 1, FirstPrice: 10, AdditionalUnit: 0.5,
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeInvalidParam {
		t.Errorf("status=%d, code=%d, want 200/%d", w.Code, resp.Code, response.CodeInvalidParam)
	}
}

// ==================== 计算接口 ====================

func TestCalculateAPI(t *testing.T) {
	r := setupTestRouter(t)

	template := createTemplateViaAPI(t, r, "欧线", []dto.RuleCreateReq{
		{ToRegion: "EU", FirstWeight: 0.5, FirstPrice: 5, AdditionalUnit: 0.5, AdditionalPrice: 1.5, Currency: "EUR"},
	})

	w, resp := doJSON(t, r, http.MethodPost, "/api/shipping/calculate", dto.CalculateReq{
		TemplateID: template.ID, ToRegion: "EU", Weight: 1.0,
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("计算失败: status=%d, resp=%+v", w.Code, resp)
	}
	var result dto.CalculateResp
	json.Unmarshal(resp.Data, &result)
	if result.ShippingFee != 6.5 || result.Currency != "EUR" {
		t.Errorf("result = %+v, want fee=6.5 EUR", result)
	}

	// 区域无规则
	w, resp = doJSON(t, r, http.MethodPost, "/api/shipping/calculate", dto.CalculateReq{
		TemplateID: template.ID, ToRegion: "JP", Weight: 1.0,
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeNoRateForRegion {
		t.Errorf("status=%d, code=%d, want 200/%d", w.Code, resp.Code, response.CodeNoRateForRegion)
	}

	// weight 必填，0 值直接被参数校验拦下
	w, _ = doJSON(t, r, http.MethodPost, "/api/shipping/calculate", dto.CalculateReq{
		TemplateID: template.ID, ToRegion: "EU",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCalculateBatchAPI_Cooldown(t *testing.T) {
	r := setupTestRouter(t)

	template := createTemplateViaAPI(t, r, "欧线", []dto.RuleCreateReq{
		{ToRegion: "EU", FirstWeight: 0.5, FirstPrice: 5, AdditionalUnit: 0.5, AdditionalPrice: 1.5},
	})

	// httptest 的默认客户端地址
	middleware.GetLimiter().Reset("shipping:calculate_batch:192.0.2.1")

	w, resp := doJSON(t, r, http.MethodPost, "/api/shipping/calculate/batch", dto.BatchCalculateReq{
		Items: []dto.CalculateReq{
			{TemplateID: template.ID, ToRegion: "EU", Weight: 0.5},
			{TemplateID: template.ID, ToRegion: "JP", Weight: 1.0},
		},
	})
	if w.Code != http.StatusOK || resp.Code != response.CodeOK {
		t.Fatalf("批量计算失败: status=%d, resp=%+v", w.Code, resp)
	}
	var batch dto.BatchCalculateResp
	json.Unmarshal(resp.Data, &batch)
	if len(batch.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(batch.Results))
	}
	if !batch.Results[0].Success || batch.Results[1].Success {
		t.Errorf("results = %+v, want [成功, 失败]", batch.Results)
	}

	// 冷却期内重复调用被限流
	w, _ = doJSON(t, r, http.MethodPost, "/api/shipping/calculate/batch", dto.BatchCalculateReq{
		Items: []dto.CalculateReq{{TemplateID: template.ID, ToRegion: "EU", Weight: 0.5}},
	})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("限流响应应带 Retry-After")
	}

	middleware.GetLimiter().Reset("shipping:calculate_batch:192.0.2.1")
}
