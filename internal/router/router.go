package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"orderstack/internal/controller"
	"orderstack/internal/middleware"
)

// Controllers 路由依赖的控制器集合
type Controllers struct {
	ShippingTemplate *controller.ShippingTemplateController
	Binding          *controller.BindingController
}

// SetupRouter 创建引擎并注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	InitRoutes(r, ctls)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers) {
	api := r.Group("/api")
	{
		shipping := api.Group("/shipping")
		{
			// 运费模板
			templates := shipping.Group("/templates")
			{
				templates.GET("", ctls.ShippingTemplate.ListTemplates)
				templates.GET("/all", ctls.ShippingTemplate.ListAllTemplates)
				templates.GET("/:id", ctls.ShippingTemplate.GetTemplate)
				templates.POST("", ctls.ShippingTemplate.CreateTemplate)
				templates.PUT("/:id", ctls.ShippingTemplate.UpdateTemplate)
				templates.DELETE("/:id", ctls.ShippingTemplate.DeleteTemplate)

				// 模板下的运费规则
				templates.GET("/:id/rules", ctls.ShippingTemplate.GetRules)
				templates.POST("/:id/rules", ctls.ShippingTemplate.CreateRule)
				templates.PUT("/:id/rules/:ruleId", ctls.ShippingTemplate.UpdateRule)
				templates.DELETE("/:id/rules/:ruleId", ctls.ShippingTemplate.DeleteRule)
			}

			// 运费计算；批量接口加冷却限流，防止前端反复全量重算
			shipping.POST("/calculate", ctls.ShippingTemplate.Calculate)
			shipping.POST("/calculate/batch",
				middleware.Cooldown("shipping:calculate_batch", time.Second),
				ctls.ShippingTemplate.CalculateBatch)

			// 本地产品绑定
			shipping.POST("/product-templates", ctls.Binding.BindProduct)
			shipping.DELETE("/product-templates/:id", ctls.Binding.UnbindProduct)
			shipping.GET("/products/:productId/templates", ctls.Binding.GetProductBindings)
			shipping.GET("/products/:productId/default-template", ctls.Binding.GetProductDefaultBinding)
			shipping.PUT("/products/:productId/default-template", ctls.Binding.SetProductDefault)

			// 平台产品绑定
			shipping.POST("/platform-product-templates", ctls.Binding.BindPlatformProduct)
			shipping.DELETE("/platform-product-templates/:id", ctls.Binding.UnbindPlatformProduct)
			shipping.GET("/platform-products/:platformProductId/templates", ctls.Binding.GetPlatformProductBindings)
			shipping.GET("/platform-products/:platformProductId/default-template", ctls.Binding.GetPlatformProductDefaultBinding)
			shipping.PUT("/platform-products/:platformProductId/default-template", ctls.Binding.SetPlatformProductDefault)
		}
	}
}
