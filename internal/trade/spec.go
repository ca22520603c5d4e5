package trade

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"tradebridge/internal/model"
	"tradebridge/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Spec 注册交易时的输入，SetTrade 前统一校验
type Spec struct {
	Key         string                  `validate:"required"`
	Symbol      string                  `validate:"required,symbol"`
	Calculation model.AmountCalculation `validate:"calculation"`
	Amount      decimal.Decimal
	Side        model.OrderSide `validate:"oneof=buy sell"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
			_, _, err := model.SplitSymbol(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("calculation", func(fl validator.FieldLevel) bool {
			return model.AmountCalculation(fl.Field().Int()).Valid()
		})
		v.RegisterStructValidation(validateAmount, Spec{})
		validate = v
	})
	return validate
}

// 数量不能为负，百分比模式必须在 [0,1]
func validateAmount(sl validator.StructLevel) {
	s := sl.Current().Interface().(Spec)
	if s.Amount.IsNegative() {
		sl.ReportError(s.Amount, "Amount", "Amount", "nonnegative", "")
		return
	}
	if s.Calculation.IsPercentage() && s.Amount.GreaterThan(decimal.NewFromInt(1)) {
		sl.ReportError(s.Amount, "Amount", "Amount", "fraction", "")
	}
}

// Validate 校验交易配置，错误统一包装成 ErrConfiguration
func (s Spec) Validate() error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: trade %q: %s", model.ErrConfiguration, s.Key, strings.Join(msgs, "; "))
}

// ParseSpec 从配置文件的文本字段构造 Spec 并校验，symbol 支持 BTCUSDT 这类写法
func ParseSpec(key, symbol, calculation, amount, side string) (Spec, error) {
	calc, err := model.ParseAmountCalculation(calculation)
	if err != nil {
		return Spec{}, err
	}
	s, err := model.ParseOrderSide(side)
	if err != nil {
		return Spec{}, err
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Spec{}, fmt.Errorf("%w: trade %q: invalid amount %q", model.ErrConfiguration, key, amount)
	}
	spec := Spec{
		Key:         key,
		Symbol:      utils.FormatSymbol(symbol),
		Calculation: calc,
		Amount:      amt,
		Side:        s,
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
