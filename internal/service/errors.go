package service

import "errors"

// 运费模块业务错误
// controller 层按 errors.Is 分类映射为响应码
var (
	ErrTemplateNotFound = errors.New("运费模板不存在")
	ErrRuleNotFound     = errors.New("运费规则不存在")
	ErrBindingNotFound  = errors.New("绑定关系不存在")

	ErrInvalidRule   = errors.New("运费规则参数不合法")
	ErrInvalidWeight = errors.New("重量必须大于0")

	ErrRuleOverlap      = errors.New("同一区域的重量区间存在重叠")
	ErrDuplicateBinding = errors.New("该产品已绑定此运费模板")

	ErrNoRateForRegion = errors.New("未找到该区域的运费规则")
	ErrNoTemplateBound = errors.New("产品未绑定运费模板")
)
