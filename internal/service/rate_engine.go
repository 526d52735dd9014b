package service

import (
	"fmt"
	"math"

	"orderstack/internal/model"
)

// 运费规则匹配与计费的纯函数实现
// 不做任何 I/O，调用方传入规则快照，可在任意并发下安全执行

// FindApplicableRule 在规则快照中查找适用于 (toRegion, weight) 的规则
// 区域为精确匹配；重量区间为 [min_weight, max_weight)，max_weight 为 0 表示不封顶。
// 没有区间命中时取该区域最重的一档（超出报价卡的重量按续重公式外推），
// 该区域一条规则都没有时返回 ErrNoRateForRegion。
func FindApplicableRule(rules []model.ShippingTemplateRule, toRegion string, weight float64) (*model.ShippingTemplateRule, error) {
	var regional []*model.ShippingTemplateRule
	for i := range rules {
		if rules[i].ToRegion == toRegion {
			regional = append(regional, &rules[i])
		}
	}
	if len(regional) == 0 {
		return nil, ErrNoRateForRegion
	}

	for _, r := range regional {
		if weight >= r.MinWeight && (r.MaxWeight == 0 || weight < r.MaxWeight) {
			return r, nil
		}
	}

	// 无区间命中，取最重的一档：不封顶的优先，其次 max_weight 最大的
	heaviest := regional[0]
	for _, r := range regional[1:] {
		if heaviest.MaxWeight == 0 {
			break
		}
		if r.MaxWeight == 0 || r.MaxWeight > heaviest.MaxWeight {
			heaviest = r
		}
	}
	return heaviest, nil
}

// ComputeFee 按首重+续重公式计算运费
// weight <= first_weight 时收首重费用，否则按续重单位向上取整累加。
// 结果四舍五入（round half up）保留两位小数。
func ComputeFee(rule *model.ShippingTemplateRule, weight float64) (float64, error) {
	if weight <= 0 {
		return 0, ErrInvalidWeight
	}
	if rule.AdditionalUnit <= 0 {
		return 0, fmt.Errorf("%w: 续重单位必须大于0", ErrInvalidRule)
	}

	if weight <= rule.FirstWeight {
		return roundFee(rule.FirstPrice), nil
	}

	// 重量折算为克做整数除法，避免浮点误差影响向上取整
	extraGrams := int64(math.Round((weight - rule.FirstWeight) * 1000))
	unitGrams := int64(math.Round(rule.AdditionalUnit * 1000))
	if unitGrams <= 0 {
		return 0, fmt.Errorf("%w: 续重单位必须大于0", ErrInvalidRule)
	}
	units := (extraGrams + unitGrams - 1) / unitGrams

	fee := rule.FirstPrice + float64(units)*rule.AdditionalPrice
	return roundFee(fee), nil
}

// roundFee 四舍五入到分（round half up）
func roundFee(fee float64) float64 {
	return math.Floor(fee*100+0.5) / 100
}

// ValidateRule 写入前校验单条规则
// 拒绝：max <= min（两者均设置时）、负的重量/价格、负的续重单位
func ValidateRule(rule *model.ShippingTemplateRule) error {
	if rule.ToRegion == "" {
		return fmt.Errorf("%w: 收货区域不能为空", ErrInvalidRule)
	}
	if rule.MinWeight < 0 || rule.MaxWeight < 0 || rule.FirstWeight < 0 {
		return fmt.Errorf("%w: 重量不能为负", ErrInvalidRule)
	}
	if rule.MaxWeight > 0 && rule.MaxWeight <= rule.MinWeight {
		return fmt.Errorf("%w: 最大重量必须大于最小重量", ErrInvalidRule)
	}
	if rule.FirstPrice < 0 || rule.AdditionalPrice < 0 {
		return fmt.Errorf("%w: 价格不能为负", ErrInvalidRule)
	}
	if rule.AdditionalUnit <= 0 {
		return fmt.Errorf("%w: 续重单位必须大于0", ErrInvalidRule)
	}
	return nil
}

// CheckRuleOverlap 检查候选规则与已有规则是否在同一区域上区间重叠
// 区间按 [min, max) 比较，max 为 0 视为正无穷；重叠返回 ErrRuleOverlap。
// 更新已入库规则时按 ID 排除自身；未入库规则 ID 为 0，彼此之间照常比较
func CheckRuleOverlap(existing []model.ShippingTemplateRule, candidate *model.ShippingTemplateRule) error {
	for i := range existing {
		r := &existing[i]
		if (candidate.ID != 0 && r.ID == candidate.ID) || r.ToRegion != candidate.ToRegion {
			continue
		}
		if bandsOverlap(r.MinWeight, r.MaxWeight, candidate.MinWeight, candidate.MaxWeight) {
			return fmt.Errorf("%w: [%s] 与规则 #%d 冲突", ErrRuleOverlap, candidate.ToRegion, r.ID)
		}
	}
	return nil
}

func bandsOverlap(aMin, aMax, bMin, bMax float64) bool {
	aUnbounded := aMax == 0
	bUnbounded := bMax == 0
	return (aUnbounded || bMin < aMax) && (bUnbounded || aMin < bMax)
}
