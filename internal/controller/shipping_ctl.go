package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orderstack/internal/api/dto"
	"orderstack/internal/service"
	"orderstack/pkg/response"
)

// ShippingTemplateController 运费模板与计算接口
type ShippingTemplateController struct {
	templateSvc   *service.ShippingTemplateService
	calculatorSvc *service.CalculatorService
}

// NewShippingTemplateController 创建运费模板控制器
func NewShippingTemplateController(
	templateSvc *service.ShippingTemplateService,
	calculatorSvc *service.CalculatorService,
) *ShippingTemplateController {
	return &ShippingTemplateController{
		templateSvc:   templateSvc,
		calculatorSvc: calculatorSvc,
	}
}

// bizCode 业务错误到响应码的映射
func bizCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRule), errors.Is(err, service.ErrInvalidWeight):
		return response.CodeInvalidParam
	case errors.Is(err, service.ErrRuleOverlap), errors.Is(err, service.ErrDuplicateBinding):
		return response.CodeConflict
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, service.ErrBindingNotFound):
		return response.CodeNotFound
	case errors.Is(err, service.ErrNoRateForRegion):
		return response.CodeNoRateForRegion
	case errors.Is(err, service.ErrNoTemplateBound):
		return response.CodeNoTemplateBound
	default:
		return response.CodeInternal
	}
}

// replyError 按错误类别输出响应
// 业务错误走信封 code，存储错误走 500
func replyError(c *gin.Context, err error) {
	code := bizCode(err)
	if code == response.CodeInternal {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.BizError(c, code, err.Error())
}

// ==================== 模板 ====================

// ListTemplates 获取运费模板列表
// @Summary 获取运费模板列表
// @Description 分页查询运费模板，支持名称/物流商关键字与状态筛选
// @Tags ShippingTemplate (运费模板)
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param keyword query string false "关键字"
// @Param status query string false "状态 active/inactive"
// @Success 200 {object} response.Response{data=dto.TemplateListResp}
// @Router /api/shipping/templates [get]
func (ctl *ShippingTemplateController) ListTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	keyword := c.Query("keyword")
	status := c.Query("status")

	templates, total, err := ctl.templateSvc.ListTemplates(c.Request.Context(), page, pageSize, keyword, status)
	if err != nil {
		replyError(c, err)
		return
	}

	list := make([]dto.TemplateResp, 0, len(templates))
	for i := range templates {
		list = append(list, service.ConvertTemplateToResp(&templates[i], false))
	}

	response.Success(c, http.StatusOK, "获取成功", dto.TemplateListResp{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListAllTemplates 获取所有启用的运费模板
// @Summary 获取所有启用的运费模板
// @Description 返回启用状态模板的 id/name，用于绑定时下拉选择
// @Tags ShippingTemplate (运费模板)
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.TemplateOptionResp}
// @Router /api/shipping/templates/all [get]
func (ctl *ShippingTemplateController) ListAllTemplates(c *gin.Context) {
	templates, err := ctl.templateSvc.ListAllTemplates(c.Request.Context())
	if err != nil {
		replyError(c, err)
		return
	}

	list := make([]dto.TemplateOptionResp, 0, len(templates))
	for _, t := range templates {
		list = append(list, dto.TemplateOptionResp{ID: t.ID, Name: t.Name})
	}

	response.Success(c, http.StatusOK, "获取成功", list)
}

// GetTemplate 获取运费模板详情
// @Summary 获取运费模板详情
// @Description 返回模板及其全部规则
// @Tags ShippingTemplate (运费模板)
// @Produce json
// @Param id path int true "模板ID"
// @Success 200 {object} response.Response{data=dto.TemplateResp}
// @Router /api/shipping/templates/{id} [get]
func (ctl *ShippingTemplateController) GetTemplate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	template, err := ctl.templateSvc.GetTemplate(c.Request.Context(), id)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "获取成功", service.ConvertTemplateToResp(template, true))
}

// CreateTemplate 创建运费模板
// @Summary 创建运费模板
// @Description 创建模板，可同时携带初始规则；规则重叠时整体拒绝
// @Tags ShippingTemplate (运费模板)
// @Accept json
// @Produce json
// @Param request body dto.TemplateCreateReq true "模板参数"
// @Success 201 {object} response.Response{data=dto.TemplateResp}
// @Router /api/shipping/templates [post]
func (ctl *ShippingTemplateController) CreateTemplate(c *gin.Context) {
	var req dto.TemplateCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	template, err := ctl.templateSvc.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "创建成功", service.ConvertTemplateToResp(template, true))
}

// UpdateTemplate 更新运费模板
// @Summary 更新运费模板
// @Tags ShippingTemplate (运费模板)
// @Accept json
// @Produce json
// @Param id path int true "模板ID"
// @Param request body dto.TemplateUpdateReq true "更新参数"
// @Success 200 {object} response.Response
// @Router /api/shipping/templates/{id} [put]
func (ctl *ShippingTemplateController) UpdateTemplate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	var req dto.TemplateUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := ctl.templateSvc.UpdateTemplate(c.Request.Context(), id, &req); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "更新成功", nil)
}

// DeleteTemplate 删除运费模板
// @Summary 删除运费模板
// @Description 级联删除模板下的规则与所有产品绑定
// @Tags ShippingTemplate (运费模板)
// @Produce json
// @Param id path int true "模板ID"
// @Success 200 {object} response.Response
// @Router /api/shipping/templates/{id} [delete]
func (ctl *ShippingTemplateController) DeleteTemplate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	if err := ctl.templateSvc.DeleteTemplate(c.Request.Context(), id); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "删除成功", nil)
}

// ==================== 规则 ====================

// GetRules 获取模板的运费规则列表
// @Summary 获取模板的运费规则列表
// @Tags ShippingTemplateRule (运费规则)
// @Produce json
// @Param id path int true "模板ID"
// @Success 200 {object} response.Response{data=[]dto.RuleResp}
// @Router /api/shipping/templates/{id}/rules [get]
func (ctl *ShippingTemplateController) GetRules(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	rules, err := ctl.templateSvc.GetRules(c.Request.Context(), templateID)
	if err != nil {
		replyError(c, err)
		return
	}

	list := make([]dto.RuleResp, 0, len(rules))
	for i := range rules {
		list = append(list, service.ConvertRuleToResp(&rules[i]))
	}

	response.Success(c, http.StatusOK, "获取成功", list)
}

// CreateRule 创建运费规则
// @Summary 创建运费规则
// @Description 与同模板同区域的已有规则区间重叠时拒绝
// @Tags ShippingTemplateRule (运费规则)
// @Accept json
// @Produce json
// @Param id path int true "模板ID"
// @Param request body dto.RuleCreateReq true "规则参数"
// @Success 201 {object} response.Response{data=dto.RuleResp}
// @Router /api/shipping/templates/{id}/rules [post]
func (ctl *ShippingTemplateController) CreateRule(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}

	var req dto.RuleCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	rule, err := ctl.templateSvc.CreateRule(c.Request.Context(), templateID, &req)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "创建成功", service.ConvertRuleToResp(rule))
}

// UpdateRule 更新运费规则
// @Summary 更新运费规则
// @Tags ShippingTemplateRule (运费规则)
// @Accept json
// @Produce json
// @Param id path int true "模板ID"
// @Param ruleId path int true "规则ID"
// @Param request body dto.RuleUpdateReq true "更新参数"
// @Success 200 {object} response.Response{data=dto.RuleResp}
// @Router /api/shipping/templates/{id}/rules/{ruleId} [put]
func (ctl *ShippingTemplateController) UpdateRule(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}
	ruleID, err := strconv.ParseInt(c.Param("ruleId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的规则ID")
		return
	}

	var req dto.RuleUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	rule, err := ctl.templateSvc.UpdateRule(c.Request.Context(), templateID, ruleID, &req)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "更新成功", service.ConvertRuleToResp(rule))
}

// DeleteRule 删除运费规则
// @Summary 删除运费规则
// @Tags ShippingTemplateRule (运费规则)
// @Produce json
// @Param id path int true "模板ID"
// @Param ruleId path int true "规则ID"
// @Success 200 {object} response.Response
// @Router /api/shipping/templates/{id}/rules/{ruleId} [delete]
func (ctl *ShippingTemplateController) DeleteRule(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的模板ID")
		return
	}
	ruleID, err := strconv.ParseInt(c.Param("ruleId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的规则ID")
		return
	}

	if err := ctl.templateSvc.DeleteRule(c.Request.Context(), templateID, ruleID); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "删除成功", nil)
}

// ==================== 计算 ====================

// Calculate 计算运费
// @Summary 计算运费
// @Description 按模板规则计算指定区域和重量的运费
// @Tags ShippingCalculate (运费计算)
// @Accept json
// @Produce json
// @Param request body dto.CalculateReq true "计算参数"
// @Success 200 {object} response.Response{data=dto.CalculateResp}
// @Router /api/shipping/calculate [post]
func (ctl *ShippingTemplateController) Calculate(c *gin.Context) {
	var req dto.CalculateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	result, err := ctl.calculatorSvc.Calculate(c.Request.Context(), req.TemplateID, req.ToRegion, req.Weight)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "计算成功", result)
}

// CalculateBatch 批量计算运费
// @Summary 批量计算运费
// @Description 每项独立计算，失败项标记错误原因，结果顺序与输入一致。
// @Description 同一客户端 1 秒内只允许一次批量调用，冷却期内返回 429 并带 Retry-After 头。
// @Tags ShippingCalculate (运费计算)
// @Accept json
// @Produce json
// @Param request body dto.BatchCalculateReq true "批量计算参数"
// @Success 200 {object} response.Response{data=dto.BatchCalculateResp}
// @Failure 429 {object} response.Response "冷却期内重复调用"
// @Router /api/shipping/calculate/batch [post]
func (ctl *ShippingTemplateController) CalculateBatch(c *gin.Context) {
	var req dto.BatchCalculateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	results := ctl.calculatorSvc.CalculateBatch(c.Request.Context(), req.Items)
	response.Success(c, http.StatusOK, "计算成功", dto.BatchCalculateResp{Results: results})
}
