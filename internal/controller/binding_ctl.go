package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orderstack/internal/api/dto"
	"orderstack/internal/service"
	"orderstack/pkg/response"
)

// BindingController 产品运费模板绑定接口
type BindingController struct {
	bindingSvc *service.BindingService
}

// NewBindingController 创建绑定控制器
func NewBindingController(bindingSvc *service.BindingService) *BindingController {
	return &BindingController{bindingSvc: bindingSvc}
}

// ==================== 本地产品 ====================

// BindProduct 绑定本地产品运费模板
// @Summary 绑定本地产品运费模板
// @Tags ProductBinding (产品绑定)
// @Accept json
// @Produce json
// @Param request body dto.ProductBindingCreateReq true "绑定参数"
// @Success 201 {object} response.Response{data=dto.ProductBindingResp}
// @Router /api/shipping/product-templates [post]
func (ctl *BindingController) BindProduct(c *gin.Context) {
	var req dto.ProductBindingCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	binding, err := ctl.bindingSvc.BindProduct(c.Request.Context(), &req)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "绑定成功", service.ConvertProductBindingToResp(binding))
}

// UnbindProduct 解绑本地产品运费模板
// @Summary 解绑本地产品运费模板
// @Tags ProductBinding (产品绑定)
// @Produce json
// @Param id path int true "绑定ID"
// @Success 200 {object} response.Response
// @Router /api/shipping/product-templates/{id} [delete]
func (ctl *BindingController) UnbindProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的绑定ID")
		return
	}

	if err := ctl.bindingSvc.UnbindProduct(c.Request.Context(), id); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "解绑成功", nil)
}

// GetProductBindings 获取本地产品的绑定列表
// @Summary 获取本地产品的运费模板绑定列表
// @Description 按解析顺序返回：默认优先，其次 sort_order 升序，再按创建先后
// @Tags ProductBinding (产品绑定)
// @Produce json
// @Param productId path int true "产品ID"
// @Success 200 {object} response.Response{data=[]dto.ProductBindingResp}
// @Router /api/shipping/products/{productId}/templates [get]
func (ctl *BindingController) GetProductBindings(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	bindings, err := ctl.bindingSvc.GetProductBindings(c.Request.Context(), productID)
	if err != nil {
		replyError(c, err)
		return
	}

	list := make([]dto.ProductBindingResp, 0, len(bindings))
	for i := range bindings {
		list = append(list, service.ConvertProductBindingToResp(&bindings[i]))
	}

	response.Success(c, http.StatusOK, "获取成功", list)
}

// GetProductDefaultBinding 获取本地产品的默认绑定
// @Summary 获取本地产品的默认运费模板
// @Tags ProductBinding (产品绑定)
// @Produce json
// @Param productId path int true "产品ID"
// @Success 200 {object} response.Response{data=dto.ProductBindingResp}
// @Router /api/shipping/products/{productId}/default-template [get]
func (ctl *BindingController) GetProductDefaultBinding(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	binding, err := ctl.bindingSvc.GetProductDefaultBinding(c.Request.Context(), productID)
	if err != nil {
		replyError(c, err)
		return
	}
	if binding == nil {
		response.BizError(c, response.CodeNoTemplateBound, service.ErrNoTemplateBound.Error())
		return
	}

	response.Success(c, http.StatusOK, "获取成功", service.ConvertProductBindingToResp(binding))
}

// SetProductDefault 设置本地产品的默认运费模板
// @Summary 设置本地产品的默认运费模板
// @Description 原默认绑定与新默认绑定在同一事务内切换
// @Tags ProductBinding (产品绑定)
// @Accept json
// @Produce json
// @Param productId path int true "产品ID"
// @Param request body dto.SetDefaultTemplateReq true "模板参数"
// @Success 200 {object} response.Response
// @Router /api/shipping/products/{productId}/default-template [put]
func (ctl *BindingController) SetProductDefault(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的产品ID")
		return
	}

	var req dto.SetDefaultTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := ctl.bindingSvc.SetProductDefault(c.Request.Context(), productID, req.ShippingTemplateID); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "设置成功", nil)
}

// ==================== 平台产品 ====================

// BindPlatformProduct 绑定平台产品运费模板
// @Summary 绑定平台产品运费模板
// @Tags PlatformProductBinding (平台产品绑定)
// @Accept json
// @Produce json
// @Param request body dto.PlatformProductBindingCreateReq true "绑定参数"
// @Success 201 {object} response.Response{data=dto.PlatformProductBindingResp}
// @Router /api/shipping/platform-product-templates [post]
func (ctl *BindingController) BindPlatformProduct(c *gin.Context) {
	var req dto.PlatformProductBindingCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	binding, err := ctl.bindingSvc.BindPlatformProduct(c.Request.Context(), &req)
	if err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "绑定成功", service.ConvertPlatformProductBindingToResp(binding))
}

// UnbindPlatformProduct 解绑平台产品运费模板
// @Summary 解绑平台产品运费模板
// @Tags PlatformProductBinding (平台产品绑定)
// @Produce json
// @Param id path int true "绑定ID"
// @Success 200 {object} response.Response
// @Router /api/shipping/platform-product-templates/{id} [delete]
func (ctl *BindingController) UnbindPlatformProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的绑定ID")
		return
	}

	if err := ctl.bindingSvc.UnbindPlatformProduct(c.Request.Context(), id); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "解绑成功", nil)
}

// GetPlatformProductBindings 获取平台产品的绑定列表
// @Summary 获取平台产品的运费模板绑定列表
// @Tags PlatformProductBinding (平台产品绑定)
// @Produce json
// @Param platformProductId path int true "平台产品ID"
// @Success 200 {object} response.Response{data=[]dto.PlatformProductBindingResp}
// @Router /api/shipping/platform-products/{platformProductId}/templates [get]
func (ctl *BindingController) GetPlatformProductBindings(c *gin.Context) {
	platformProductID, err := strconv.ParseInt(c.Param("platformProductId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的平台产品ID")
		return
	}

	bindings, err := ctl.bindingSvc.GetPlatformProductBindings(c.Request.Context(), platformProductID)
	if err != nil {
		replyError(c, err)
		return
	}

	list := make([]dto.PlatformProductBindingResp, 0, len(bindings))
	for i := range bindings {
		list = append(list, service.ConvertPlatformProductBindingToResp(&bindings[i]))
	}

	response.Success(c, http.StatusOK, "获取成功", list)
}

// GetPlatformProductDefaultBinding 获取平台产品的默认绑定
// @Summary 获取平台产品的默认运费模板
// @Tags PlatformProductBinding (平台产品绑定)
// @Produce json
// @Param platformProductId path int true "平台产品ID"
// @Success 200 {object} response.Response{data=dto.PlatformProductBindingResp}
// @Router /api/shipping/platform-products/{platformProductId}/default-template [get]
func (ctl *BindingController) GetPlatformProductDefaultBinding(c *gin.Context) {
	platformProductID, err := strconv.ParseInt(c.Param("platformProductId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的平台产品ID")
		return
	}

	binding, err := ctl.bindingSvc.GetPlatformProductDefaultBinding(c.Request.Context(), platformProductID)
	if err != nil {
		replyError(c, err)
		return
	}
	if binding == nil {
		response.BizError(c, response.CodeNoTemplateBound, service.ErrNoTemplateBound.Error())
		return
	}

	response.Success(c, http.StatusOK, "获取成功", service.ConvertPlatformProductBindingToResp(binding))
}

// SetPlatformProductDefault 设置平台产品的默认运费模板
// @Summary 设置平台产品的默认运费模板
// @Tags PlatformProductBinding (平台产品绑定)
// @Accept json
// @Produce json
// @Param platformProductId path int true "平台产品ID"
// @Param request body dto.SetDefaultTemplateReq true "模板参数"
// @Success 200 {object} response.Response
// @Router /api/shipping/platform-products/{platformProductId}/default-template [put]
func (ctl *BindingController) SetPlatformProductDefault(c *gin.Context) {
	platformProductID, err := strconv.ParseInt(c.Param("platformProductId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "无效的平台产品ID")
		return
	}

	var req dto.SetDefaultTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	if err := ctl.bindingSvc.SetPlatformProductDefault(c.Request.Context(), platformProductID, req.ShippingTemplateID); err != nil {
		replyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "设置成功", nil)
}
