package model

// 模板状态常量
const (
	TemplateStatusActive   = "active"   // 启用
	TemplateStatusInactive = "inactive" // 停用
)

// ShippingTemplate 运费模板模型
// 一张承运商报价卡，规则随模板级联删除
type ShippingTemplate struct {
	BaseModel

	Name        string `gorm:"size:100;not null;comment:模板名称"`
	Carrier     string `gorm:"size:100;comment:物流商名称"`
	FromRegion  string `gorm:"size:100;comment:发货区域"`
	Description string `gorm:"size:500;comment:描述"`
	Status      string `gorm:"size:20;default:'active';index;comment:状态 active/inactive"`

	// 关联数据（一对多）
	Rules []ShippingTemplateRule `gorm:"foreignKey:TemplateID"`
}

// ShippingTemplateRule 运费模板规则模型
// 重量区间为 [min_weight, max_weight)，max_weight 为 0 表示不封顶
type ShippingTemplateRule struct {
	BaseModel

	TemplateID int64  `gorm:"index;not null;comment:关联模板ID"`
	ToRegion   string `gorm:"size:100;not null;index;comment:收货区域/国家"`

	// 重量区间（单位：kg）
	MinWeight float64 `gorm:"default:0;comment:最小重量(kg)"`
	MaxWeight float64 `gorm:"default:0;comment:最大重量(kg)，0表示不限"`

	// 首重 + 续重计价
	FirstWeight     float64 `gorm:"default:0;comment:首重(kg)"`
	FirstPrice      float64 `gorm:"type:decimal(10,2);default:0;comment:首重费用"`
	AdditionalUnit  float64 `gorm:"default:0.1;comment:续重单位(kg)"`
	AdditionalPrice float64 `gorm:"type:decimal(10,2);default:0;comment:续重单价"`

	Currency      string `gorm:"size:10;default:'CNY';comment:货币代码"`
	EstimatedDays int    `gorm:"default:0;comment:预估时效(天)"`
}

// ProductShippingTemplate 本地产品与运费模板的绑定
// 同一产品最多一条 is_default 记录，sort_order 越小优先级越高
type ProductShippingTemplate struct {
	BaseModel

	ProductID          int64 `gorm:"index;not null;comment:本地产品ID"`
	ShippingTemplateID int64 `gorm:"index;not null;comment:运费模板ID"`
	IsDefault          bool  `gorm:"default:false;comment:是否默认模板"`
	SortOrder          int   `gorm:"default:0;comment:排序，越小优先级越高"`

	ShippingTemplate *ShippingTemplate `gorm:"foreignKey:ShippingTemplateID"`
}

// PlatformProductShippingTemplate 平台产品与运费模板的绑定
type PlatformProductShippingTemplate struct {
	BaseModel

	PlatformProductID  int64 `gorm:"index;not null;comment:平台产品ID"`
	ShippingTemplateID int64 `gorm:"index;not null;comment:运费模板ID"`
	IsDefault          bool  `gorm:"default:false;comment:是否默认模板"`
	SortOrder          int   `gorm:"default:0;comment:排序，越小优先级越高"`

	ShippingTemplate *ShippingTemplate `gorm:"foreignKey:ShippingTemplateID"`
}

func (ShippingTemplate) TableName() string {
	return "shipping_templates"
}
func (ShippingTemplateRule) TableName() string {
	return "shipping_template_rules"
}
func (ProductShippingTemplate) TableName() string {
	return "product_shipping_templates"
}
func (PlatformProductShippingTemplate) TableName() string {
	return "platform_product_shipping_templates"
}
