package dto

// ==================== 运费模板 DTO ====================

// TemplateCreateReq 创建运费模板请求
type TemplateCreateReq struct {
	Name        string          `json:"name" binding:"required"`
	Carrier     string          `json:"carrier"`
	FromRegion  string          `json:"from_region"`
	Description string          `json:"description"`
	Rules       []RuleCreateReq `json:"rules"`
}

// TemplateUpdateReq 更新运费模板请求（空字段不更新）
type TemplateUpdateReq struct {
	Name        string `json:"name"`
	Carrier     string `json:"carrier"`
	FromRegion  string `json:"from_region"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// TemplateResp 运费模板响应
type TemplateResp struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Carrier     string     `json:"carrier"`
	FromRegion  string     `json:"from_region"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	RuleCount   int        `json:"rule_count"`
	Rules       []RuleResp `json:"rules,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// TemplateListResp 运费模板列表响应
type TemplateListResp struct {
	List     []TemplateResp `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// TemplateOptionResp 模板下拉选项响应
type TemplateOptionResp struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ==================== 运费规则 DTO ====================

// RuleCreateReq 创建运费规则请求
type RuleCreateReq struct {
	ToRegion        string  `json:"to_region" binding:"required"`
	MinWeight       float64 `json:"min_weight"`
	MaxWeight       float64 `json:"max_weight"`
	FirstWeight     float64 `json:"first_weight"`
	FirstPrice      float64 `json:"first_price"`
	AdditionalUnit  float64 `json:"additional_unit"`
	AdditionalPrice float64 `json:"additional_price"`
	Currency        string  `json:"currency"`
	EstimatedDays   int     `json:"estimated_days"`
}

// RuleUpdateReq 更新运费规则请求
type RuleUpdateReq struct {
	ToRegion        string  `json:"to_region"`
	MinWeight       float64 `json:"min_weight"`
	MaxWeight       float64 `json:"max_weight"`
	FirstWeight     float64 `json:"first_weight"`
	FirstPrice      float64 `json:"first_price"`
	AdditionalUnit  float64 `json:"additional_unit"`
	AdditionalPrice float64 `json:"additional_price"`
	Currency        string  `json:"currency"`
	EstimatedDays   int     `json:"estimated_days"`
}

// RuleResp 运费规则响应
type RuleResp struct {
	ID              int64   `json:"id"`
	TemplateID      int64   `json:"template_id"`
	ToRegion        string  `json:"to_region"`
	MinWeight       float64 `json:"min_weight"`
	MaxWeight       float64 `json:"max_weight"`
	FirstWeight     float64 `json:"first_weight"`
	FirstPrice      float64 `json:"first_price"`
	AdditionalUnit  float64 `json:"additional_unit"`
	AdditionalPrice float64 `json:"additional_price"`
	Currency        string  `json:"currency"`
	EstimatedDays   int     `json:"estimated_days"`
	CreatedAt       string  `json:"created_at"`
}

// ==================== 运费计算 DTO ====================

// CalculateReq 计算运费请求（重量单位：kg）
type CalculateReq struct {
	TemplateID int64   `json:"template_id" binding:"required"`
	ToRegion   string  `json:"to_region" binding:"required"`
	Weight     float64 `json:"weight" binding:"required"`
}

// CalculateResp 计算运费响应
type CalculateResp struct {
	TemplateID    int64   `json:"template_id"`
	TemplateName  string  `json:"template_name"`
	ToRegion      string  `json:"to_region"`
	Weight        float64 `json:"weight"`
	ShippingFee   float64 `json:"shipping_fee"`
	Currency      string  `json:"currency"`
	EstimatedDays int     `json:"estimated_days"`
}

// BatchCalculateReq 批量计算运费请求
type BatchCalculateReq struct {
	Items []CalculateReq `json:"items" binding:"required"`
}

// BatchCalculateItemResp 批量计算单项结果
// 失败项保留在原位置并标记错误，不影响其他项
type BatchCalculateItemResp struct {
	CalculateResp
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchCalculateResp 批量计算运费响应
type BatchCalculateResp struct {
	Results []BatchCalculateItemResp `json:"results"`
}

// ==================== 产品绑定 DTO ====================

// ProductBindingCreateReq 绑定本地产品运费模板请求
type ProductBindingCreateReq struct {
	ProductID          int64 `json:"product_id" binding:"required"`
	ShippingTemplateID int64 `json:"shipping_template_id" binding:"required"`
	IsDefault          bool  `json:"is_default"`
	SortOrder          int   `json:"sort_order"`
}

// PlatformProductBindingCreateReq 绑定平台产品运费模板请求
type PlatformProductBindingCreateReq struct {
	PlatformProductID  int64 `json:"platform_product_id" binding:"required"`
	ShippingTemplateID int64 `json:"shipping_template_id" binding:"required"`
	IsDefault          bool  `json:"is_default"`
	SortOrder          int   `json:"sort_order"`
}

// SetDefaultTemplateReq 设置默认运费模板请求
type SetDefaultTemplateReq struct {
	ShippingTemplateID int64 `json:"shipping_template_id" binding:"required"`
}

// ProductBindingResp 本地产品绑定响应
type ProductBindingResp struct {
	ID                 int64  `json:"id"`
	ProductID          int64  `json:"product_id"`
	ShippingTemplateID int64  `json:"shipping_template_id"`
	TemplateName       string `json:"template_name,omitempty"`
	Carrier            string `json:"carrier,omitempty"`
	IsDefault          bool   `json:"is_default"`
	SortOrder          int    `json:"sort_order"`
	CreatedAt          string `json:"created_at"`
}

// PlatformProductBindingResp 平台产品绑定响应
type PlatformProductBindingResp struct {
	ID                 int64  `json:"id"`
	PlatformProductID  int64  `json:"platform_product_id"`
	ShippingTemplateID int64  `json:"shipping_template_id"`
	TemplateName       string `json:"template_name,omitempty"`
	Carrier            string `json:"carrier,omitempty"`
	IsDefault          bool   `json:"is_default"`
	SortOrder          int    `json:"sort_order"`
	CreatedAt          string `json:"created_at"`
}
