// Package rule 封装 go-playground/validator，统一使用 `rule` 标签.
//
// 全局实例复用 gin 的 validator 引擎，因此请求体绑定（ShouldBindJSON）与配置校验共享同一套规则，
// 并预注册了领域规则：
//   - food_status: NORMAL/INSUFFICIENT/NEAR_EXPIRY/EXPIRED（忽略大小写）
//   - invite_code: 8 位大写字母或数字
//
// decimal.Decimal 字段按数值参与 gte/lte 等比较.
package rule

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yeisme/xianshiji/pkg/internal/foodstatus"
)

var (
	inst *validator.Validate
	once sync.Once

	inviteCodePattern = regexp.MustCompile(`^[0-9A-Z]{8}$`)
)

// initValidator 尝试复用 gin 的 validator 引擎；若不可用则新建.
func initValidator() {
	inst = nil

	if engine := binding.Validator.Engine(); engine != nil {
		if v, ok := engine.(*validator.Validate); ok {
			inst = v
		}
	}

	if inst == nil {
		inst = validator.New()
	}

	inst.SetTagName("rule")
	inst.RegisterTagNameFunc(jsonName)
	inst.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	_ = inst.RegisterValidation("food_status", func(fl validator.FieldLevel) bool {
		_, ok := foodstatus.Parse(fl.Field().String())
		return ok
	})
	_ = inst.RegisterValidation("invite_code", func(fl validator.FieldLevel) bool {
		return inviteCodePattern.MatchString(fl.Field().String())
	})
}

func decimalValue(v reflect.Value) any {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	f, _ := d.Float64()

	return f
}

// lazyInit 初始化全局 validator（幂等）.
func lazyInit() {
	once.Do(initValidator)
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	lazyInit()

	return inst
}

// RegisterValidation 注册自定义规则.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	lazyInit()

	return inst.RegisterValidation(tag, fn, opts...)
}

// ValidationErrors 字段名（JSON 名优先）到失败规则的映射.
type ValidationErrors map[string]string

// Error 按字段名排序输出，形如 "name: required; quantity: gt=0".
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}

	return strings.Join(parts, "; ")
}

// jsonName 校验错误使用 json 标签中的字段名.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		if name, _, _ = strings.Cut(f.Tag.Get("mapstructure"), ","); name != "" {
			return name
		}

		return f.Name
	}

	return name
}

// Errors 把 validator 错误展开为 ValidationErrors，非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[fe.Field()] = msg
	}

	return out
}

// ValidateStruct 对结构体执行完整校验.
func ValidateStruct(s any) error {
	lazyInit()

	return inst.Struct(s)
}

// ValidateVar 按规则校验单个变量，例如 ValidateVar("abc", "required,email").
func ValidateVar(field any, tag string) error {
	lazyInit()

	return inst.Var(field, tag)
}

// RegisterAlias 注册别名规则.
func RegisterAlias(alias, rules string) {
	lazyInit()

	inst.RegisterAlias(alias, rules)
}
